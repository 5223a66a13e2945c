// Package cache provides the structural map behind the render graph caches.
//
// # Map[V]
//
// A thread-safe get-or-create map keyed by a 32-bit structural hash. Each
// hash owns a small bucket so that two unequal configurations whose hashes
// collide still receive distinct values:
//
//	m := cache.NewMap[*RenderPass]()
//	rp, err := m.GetOrCreate(hash, func(v *RenderPass) bool {
//	    return v.Equal(init)
//	}, func() (*RenderPass, error) {
//	    return newRenderPass(init)
//	})
//
// Entries are never evicted. Values are removed only by Clear, because
// callers hand out the cached pointers and rely on them staying valid across
// frames.
//
// # Thread Safety
//
// Map is safe for concurrent use. Lookups take a read lock; creation runs
// under the write lock after a second lookup, so create is called at most
// once per configuration. Map must not be copied after creation.
package cache
