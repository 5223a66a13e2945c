// Package access holds the synchronization tables of the render graph.
//
// It maps an abstract operation kind (a color attachment write, a compute
// read, a present) to the access mask, pipeline stage, image layout and
// queue family a resource must be in around that operation. The numeric
// values of Flags, PipelineStage, ImageLayout and Aspect mirror the Vulkan
// enumerants, so a native backend can convert them with a plain cast.
//
// This is the only package that knows about native synchronization rules.
// The rest of the graph treats State values as opaque.
//
//	dst, err := access.For(access.ColorAttachment, graphicsFamily, false)
//	src, err := access.For(access.ComputeShaderReadWrite, computeFamily, true)
package access
