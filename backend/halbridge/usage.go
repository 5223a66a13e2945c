// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package halbridge

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/rendergraph/access"
)

// textureUsage maps an image layout to the HAL usage that implies it.
// PresentSrc has no HAL usage: the surface transitions the image itself
// when it is presented, so ok is false.
func textureUsage(l access.ImageLayout) (u gputypes.TextureUsage, ok bool) {
	switch l {
	case access.LayoutUndefined:
		return 0, true
	case access.LayoutGeneral:
		return gputypes.TextureUsageStorageBinding, true
	case access.LayoutColorAttachmentOptimal,
		access.LayoutDepthStencilAttachmentOptimal,
		access.LayoutDepthStencilReadOnlyOptimal:
		return gputypes.TextureUsageRenderAttachment, true
	case access.LayoutShaderReadOnlyOptimal:
		return gputypes.TextureUsageTextureBinding, true
	case access.LayoutTransferSrcOptimal:
		return gputypes.TextureUsageCopySrc, true
	case access.LayoutTransferDstOptimal:
		return gputypes.TextureUsageCopyDst, true
	default:
		return 0, false
	}
}

// bufferUsage maps an access mask to HAL buffer usage. Shader reads of a
// buffer created without storage usage are uniform reads.
func bufferUsage(f access.Flags, created gputypes.BufferUsage) gputypes.BufferUsage {
	var u gputypes.BufferUsage
	if f&access.AccessShaderWrite != 0 {
		u |= gputypes.BufferUsageStorage
	}
	if f&access.AccessShaderRead != 0 {
		if created&gputypes.BufferUsageStorage != 0 || created == 0 {
			u |= gputypes.BufferUsageStorage
		} else {
			u |= gputypes.BufferUsageUniform
		}
	}
	if f&access.AccessUniformRead != 0 {
		u |= gputypes.BufferUsageUniform
	}
	if f&access.AccessVertexAttributeRead != 0 {
		u |= gputypes.BufferUsageVertex
	}
	if f&access.AccessIndexRead != 0 {
		u |= gputypes.BufferUsageIndex
	}
	if f&access.AccessIndirectCommandRead != 0 {
		u |= gputypes.BufferUsageIndirect
	}
	if f&access.AccessTransferRead != 0 {
		u |= gputypes.BufferUsageCopySrc
	}
	if f&access.AccessTransferWrite != 0 {
		u |= gputypes.BufferUsageCopyDst
	}
	return u
}
