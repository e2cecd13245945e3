package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time { return f.t }

func newTestCache(size int, ttl time.Duration) (*LRUCache[[]byte], *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[[]byte](size, ttl)
	c.now = clock.Now
	return c, clock
}

func TestLRUCache_GetSet(t *testing.T) {
	c, _ := newTestCache(2, time.Hour)

	if _, ok := c.Get("am"); ok {
		t.Fatal("empty cache returned a value")
	}
	c.Set("am", []byte(`{"type":"FeatureCollection"}`))
	got, ok := c.Get("am")
	if !ok || string(got) != `{"type":"FeatureCollection"}` {
		t.Fatalf("Get = %q, %v", got, ok)
	}

	c.Set("am", []byte("v2"))
	if got, _ := c.Get("am"); string(got) != "v2" {
		t.Fatalf("Set did not replace value: %q", got)
	}
	if c.Size() != 1 {
		t.Fatalf("Size = %d, want 1", c.Size())
	}

	st := c.Stats()
	if st.Hits != 2 || st.Misses != 1 {
		t.Fatalf("Stats = %+v", st)
	}
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(2, time.Hour)
	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))
	c.Get("a")
	c.Set("c", []byte("3"))

	if _, ok := c.Get("b"); ok {
		t.Fatal("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a was recently used and should remain")
	}
	if _, ok := c.Get("c"); !ok {
		t.Fatal("c should be present")
	}
}

func TestLRUCache_Expiry(t *testing.T) {
	c, clock := newTestCache(4, time.Minute)
	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))

	clock.t = clock.t.Add(30 * time.Second)
	c.Set("c", []byte("3"))

	clock.t = clock.t.Add(45 * time.Second)
	if _, ok := c.Get("a"); ok {
		t.Fatal("a should have expired")
	}
	if n := c.CleanExpired(); n != 1 {
		t.Fatalf("CleanExpired removed %d, want 1", n)
	}
	if _, ok := c.Get("c"); !ok {
		t.Fatal("c has not expired yet")
	}
}

func TestLRUCache_Delete(t *testing.T) {
	c, _ := newTestCache(2, time.Hour)
	c.Set("a", []byte("1"))
	c.Delete("a")
	c.Delete("missing")
	if c.Size() != 0 {
		t.Fatalf("Size = %d after delete", c.Size())
	}
}

func TestManager_Sweep(t *testing.T) {
	c, clock := newTestCache(4, time.Minute)
	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))

	m := NewManager(nil)
	m.Register(c)
	if n := m.Sweep(); n != 0 {
		t.Fatalf("Sweep removed %d fresh entries", n)
	}
	clock.t = clock.t.Add(2 * time.Minute)
	if n := m.Sweep(); n != 2 {
		t.Fatalf("Sweep removed %d, want 2", n)
	}

	m.StartCleanup(time.Hour)
	m.Stop()
	m.Stop()
}
