package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"slices"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/rendergraph"
)

// Chart geometry in pixels.
const (
	chartMargin   = 16
	chartColumn   = 150
	chartLane     = 56
	chartBoxPadX  = 8
	chartBoxPadY  = 10
	chartFontSize = 12
)

var (
	chartBackground = color.RGBA{R: 0xfa, G: 0xfa, B: 0xfa, A: 0xff}
	chartLaneFill   = color.RGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}
	chartGraphics   = color.RGBA{R: 0x4a, G: 0x7a, B: 0xc8, A: 0xff}
	chartCompute    = color.RGBA{R: 0x9a, G: 0x5a, B: 0xb8, A: 0xff}
	chartSync       = color.RGBA{R: 0xd8, G: 0x90, B: 0x20, A: 0xff}
	chartText       = color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff}
)

// chartSize returns the image size for a schedule.
func chartSize(passes, lanes int) image.Point {
	return image.Pt(2*chartMargin+max(passes, 1)*chartColumn, 2*chartMargin+max(lanes, 1)*chartLane)
}

// writeChart draws a prepared graph as a PNG timeline: one lane per queue
// family, one box per pass in submission order, and a line from every
// signalling pass to each pass waiting on its semaphore.
func writeChart(w io.Writer, g *rendergraph.Graph) error {
	passes := make([]rendergraph.PassInfo, g.PassCount())
	var families []uint32
	for i := range passes {
		p, err := g.Pass(i)
		if err != nil {
			return err
		}
		passes[i] = p
		if !slices.Contains(families, p.QueueFamily) {
			families = append(families, p.QueueFamily)
		}
	}
	slices.Sort(families)

	face, err := chartFace()
	if err != nil {
		return err
	}
	defer func() {
		_ = face.Close()
	}()

	size := chartSize(len(passes), len(families))
	img := image.NewRGBA(image.Rectangle{Max: size})
	fill(img, img.Bounds(), chartBackground)

	text := &font.Drawer{Dst: img, Src: image.NewUniform(chartText), Face: face}
	for lane, family := range families {
		r := image.Rect(chartMargin, chartMargin+lane*chartLane, size.X-chartMargin, chartMargin+(lane+1)*chartLane)
		if lane%2 == 0 {
			fill(img, r, chartLaneFill)
		}
		label(text, r.Min.X+2, r.Min.Y+chartFontSize, fmt.Sprintf("family %d", family))
	}

	boxes := make([]image.Rectangle, len(passes))
	for i, p := range passes {
		lane := slices.Index(families, p.QueueFamily)
		boxes[i] = image.Rect(
			chartMargin+i*chartColumn+chartBoxPadX, chartMargin+lane*chartLane+chartBoxPadY+4,
			chartMargin+(i+1)*chartColumn-chartBoxPadX, chartMargin+(lane+1)*chartLane-chartBoxPadY+4,
		)
		c := chartGraphics
		if p.Compute {
			c = chartCompute
		}
		fill(img, boxes[i], c)
		text.Src = image.White
		label(text, boxes[i].Min.X+4, boxes[i].Max.Y-(boxes[i].Dy()-chartFontSize)/2, p.Name)
		text.Src = image.NewUniform(chartText)
	}

	for i, p := range passes {
		for _, wait := range p.Waits {
			for j := range passes[:i] {
				if passes[j].SignalSemaphore != wait.Semaphore {
					continue
				}
				from := image.Pt(boxes[j].Max.X, (boxes[j].Min.Y+boxes[j].Max.Y)/2)
				to := image.Pt(boxes[i].Min.X, (boxes[i].Min.Y+boxes[i].Max.Y)/2)
				line(img, from, to, chartSync)
			}
		}
	}

	return png.Encode(w, img)
}

func chartFace() (font.Face, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse chart font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    chartFontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create chart font face: %w", err)
	}
	return face, nil
}

func fill(dst *image.RGBA, r image.Rectangle, c color.Color) {
	xdraw.Draw(dst, r, image.NewUniform(c), image.Point{}, xdraw.Src)
}

func label(d *font.Drawer, x, y int, s string) {
	d.Dot = fixed.P(x, y)
	d.DrawString(s)
}

// line draws a one pixel wide segment with Bresenham's algorithm.
func line(dst *image.RGBA, from, to image.Point, c color.RGBA) {
	dx, dy := abs(to.X-from.X), -abs(to.Y-from.Y)
	sx, sy := sign(to.X-from.X), sign(to.Y-from.Y)
	e := dx + dy
	for p := from; ; {
		dst.SetRGBA(p.X, p.Y, c)
		if p == to {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			p.X += sx
		}
		if e2 <= dx {
			e += dx
			p.Y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
