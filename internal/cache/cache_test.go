package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func equalTo(want int) func(int) bool {
	return func(v int) bool { return v == want }
}

func TestMapGetOrCreate(t *testing.T) {
	m := NewMap[int]()
	createCalled := 0

	// First call should create
	v, err := m.GetOrCreate(7, equalTo(100), func() (int, error) {
		createCalled++
		return 100, nil
	})
	if err != nil {
		t.Fatalf("GetOrCreate error: %v", err)
	}
	if v != 100 {
		t.Errorf("expected 100, got %d", v)
	}

	// Second call should return cached
	v, _ = m.GetOrCreate(7, equalTo(100), func() (int, error) {
		createCalled++
		return 200, nil
	})
	if v != 100 {
		t.Errorf("expected 100 (cached), got %d", v)
	}
	if createCalled != 1 {
		t.Errorf("expected create called once, got %d", createCalled)
	}

	st := m.Stats()
	if st.Hits != 1 || st.Misses != 1 || st.Len != 1 {
		t.Errorf("Stats() = %+v, want 1 hit, 1 miss, 1 entry", st)
	}
	if st.HitRate() != 0.5 {
		t.Errorf("HitRate() = %v, want 0.5", st.HitRate())
	}
}

func TestMapCollision(t *testing.T) {
	m := NewMap[int]()

	// Same hash, different configurations: both must be stored.
	a, _ := m.GetOrCreate(1, equalTo(10), func() (int, error) { return 10, nil })
	b, _ := m.GetOrCreate(1, equalTo(20), func() (int, error) { return 20, nil })
	if a == b {
		t.Fatalf("colliding configurations shared value %d", a)
	}
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}
	if got := m.Stats().Collisions; got != 1 {
		t.Errorf("Collisions = %d, want 1", got)
	}

	if v, ok := m.Get(1, equalTo(20)); !ok || v != 20 {
		t.Errorf("Get(1, 20) = %d, %v", v, ok)
	}
}

func TestMapCreateError(t *testing.T) {
	m := NewMap[int]()
	errBoom := errors.New("boom")

	_, err := m.GetOrCreate(3, equalTo(1), func() (int, error) { return 0, errBoom })
	if !errors.Is(err, errBoom) {
		t.Fatalf("GetOrCreate error = %v, want errBoom", err)
	}
	if m.Len() != 0 {
		t.Errorf("failed create stored a value, Len() = %d", m.Len())
	}
}

func TestMapClear(t *testing.T) {
	m := NewMap[int]()
	for i := 0; i < 5; i++ {
		v := i
		_, _ = m.GetOrCreate(uint32(i%2), equalTo(v), func() (int, error) { return v, nil })
	}

	removed := m.Clear()
	if len(removed) != 5 {
		t.Errorf("Clear() returned %d values, want 5", len(removed))
	}
	if m.Len() != 0 {
		t.Errorf("Len() after Clear = %d", m.Len())
	}
	if st := m.Stats(); st.Hits != 0 || st.Misses != 0 {
		t.Errorf("Stats() after Clear = %+v", st)
	}
}

func TestMapRange(t *testing.T) {
	m := NewMap[int]()
	for i := 1; i <= 3; i++ {
		v := i
		_, _ = m.GetOrCreate(uint32(i), equalTo(v), func() (int, error) { return v, nil })
	}
	sum := 0
	m.Range(func(v int) { sum += v })
	if sum != 6 {
		t.Errorf("Range sum = %d, want 6", sum)
	}
}

func TestMapConcurrentCreateOnce(t *testing.T) {
	m := NewMap[int]()
	var created atomic.Int32

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.GetOrCreate(9, equalTo(42), func() (int, error) {
				created.Add(1)
				return 42, nil
			})
		}()
	}
	wg.Wait()

	if created.Load() != 1 {
		t.Errorf("create called %d times, want 1", created.Load())
	}
}
