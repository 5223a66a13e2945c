package semaphore

import (
	"errors"
	"sync"
	"testing"

	"github.com/gogpu/wgpu/hal"
)

// mockFenceSource is a test double for FenceSource. It hands out nil
// fences and counts calls.
type mockFenceSource struct {
	created   int
	destroyed int
	err       error
}

//nolint:nilnil // Mock: fences are opaque to the pool.
func (m *mockFenceSource) CreateFence() (hal.Fence, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.created++
	return nil, nil
}

func (m *mockFenceSource) DestroyFence(hal.Fence) { m.destroyed++ }

func TestPoolGetCreates(t *testing.T) {
	src := &mockFenceSource{}
	p := NewPool(src, 0)

	if p.Horizon() != DefaultInFlightFrames {
		t.Errorf("Horizon() = %d, want %d", p.Horizon(), DefaultInFlightFrames)
	}

	a, err := p.Get()
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	b, _ := p.Get()
	if a == b {
		t.Fatal("two in-flight semaphores are the same")
	}
	if a.ID() == b.ID() {
		t.Errorf("IDs collide: %d", a.ID())
	}
	if a.Value() != 1 {
		t.Errorf("first issue Value() = %d, want 1", a.Value())
	}
	if src.created != 2 {
		t.Errorf("created %d fences, want 2", src.created)
	}
	if st := p.Stats(); st.Created != 2 || st.InFlight != 2 || st.Free != 0 {
		t.Errorf("Stats() = %+v", st)
	}
}

func TestPoolInFlightHorizon(t *testing.T) {
	p := NewPool(nil, 3)
	s, _ := p.Get()

	for frame := 1; frame <= 3; frame++ {
		p.NextFrame()
		if p.IsFree(s) {
			t.Fatalf("semaphore free after %d frames, horizon is 3", frame)
		}
		if other, _ := p.Get(); other == s {
			t.Fatalf("semaphore reissued after %d frames", frame)
		}
	}

	p.NextFrame()
	if !p.IsFree(s) {
		t.Fatalf("semaphore not free after passing the horizon")
	}
}

func TestPoolReuseBumpsValue(t *testing.T) {
	src := &mockFenceSource{}
	p := NewPool(src, 1)
	s, _ := p.Get()

	p.NextFrame()
	p.NextFrame()

	again, _ := p.Get()
	if again != s {
		t.Fatalf("free semaphore not reused")
	}
	if again.Value() != 2 {
		t.Errorf("reissued Value() = %d, want 2", again.Value())
	}
	if src.created != 1 {
		t.Errorf("created %d fences, want 1", src.created)
	}
}

func TestPoolCreateError(t *testing.T) {
	errLost := errors.New("device lost")
	p := NewPool(&mockFenceSource{err: errLost}, 3)

	if _, err := p.Get(); !errors.Is(err, errLost) {
		t.Errorf("Get error = %v, want device lost", err)
	}
	if st := p.Stats(); st.InFlight != 0 || st.Created != 0 {
		t.Errorf("failed Get changed stats: %+v", st)
	}
}

func TestPoolDestroy(t *testing.T) {
	src := &mockFenceSource{}
	p := NewPool(src, 1)
	_, _ = p.Get()
	_, _ = p.Get()
	p.NextFrame()
	p.NextFrame()
	_, _ = p.Get()

	p.Destroy()
	// Fences are nil in the mock, so nothing reaches DestroyFence.
	if src.destroyed != 0 {
		t.Errorf("DestroyFence called %d times for nil fences", src.destroyed)
	}
	if st := p.Stats(); st != (Stats{}) {
		t.Errorf("Stats() after Destroy = %+v", st)
	}
}

func TestPoolConcurrentGet(t *testing.T) {
	p := NewPool(nil, 3)
	var wg sync.WaitGroup
	seen := make(chan *Semaphore, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := p.Get()
			if err != nil {
				t.Error(err)
				return
			}
			seen <- s
		}()
	}
	wg.Wait()
	close(seen)

	unique := make(map[*Semaphore]bool)
	for s := range seen {
		unique[s] = true
	}
	if len(unique) != 64 {
		t.Errorf("got %d distinct semaphores, want 64", len(unique))
	}
}

func TestSemaphoreString(t *testing.T) {
	var s *Semaphore
	if s.String() != "sem(nil)" {
		t.Errorf("nil String() = %q", s.String())
	}
	p := NewPool(nil, 3)
	s, _ = p.Get()
	if s.String() != "sem1@1" {
		t.Errorf("String() = %q, want sem1@1", s.String())
	}
}
