// Package recording is a software backend for rendergraph.
//
// Recorder captures each pass as a CommandBuffer of typed commands
// (barriers, target pass begin/end, markers) instead of issuing GPU work,
// and Timeline collects the submissions of every frame. Together they let a
// graph be rendered, inspected and dumped as text without a device, which
// is how the rgplan tool and the tests use them.
//
// A recorded CommandBuffer can be replayed into any other
// rendergraph.Recorder with Playback.
package recording
