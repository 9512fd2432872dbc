package vfs

import "testing"

// TestByteBudgetEviction reproduces testable property E3: cap 10 bytes,
// three entries of 4 bytes each inserted in order A, B, C; A is evicted to
// make room for C, leaving B and C resident.
func TestByteBudgetEviction(t *testing.T) {
	c := newByteBudgetCache(10)
	a := cacheKey{mountID: "m", path: "a"}
	b := cacheKey{mountID: "m", path: "b"}
	d := cacheKey{mountID: "m", path: "c"}

	c.put(a, []byte{1, 1, 1, 1})
	c.put(b, []byte{2, 2, 2, 2})
	c.put(d, []byte{3, 3, 3, 3})

	if _, ok := c.get(a); ok {
		t.Fatal("expected A to have been evicted")
	}
	if _, ok := c.get(b); !ok {
		t.Fatal("expected B to still be resident")
	}
	if _, ok := c.get(d); !ok {
		t.Fatal("expected C to still be resident")
	}
}

func TestByteBudgetCacheHitBumpsRecency(t *testing.T) {
	c := newByteBudgetCache(8)
	a := cacheKey{mountID: "m", path: "a"}
	b := cacheKey{mountID: "m", path: "b"}
	d := cacheKey{mountID: "m", path: "c"}

	c.put(a, []byte{1, 1, 1, 1})
	c.put(b, []byte{2, 2, 2, 2})
	c.get(a) // bump A to most-recently-used; B is now the eviction candidate

	c.put(d, []byte{3, 3, 3, 3})

	if _, ok := c.get(b); ok {
		t.Fatal("expected B to have been evicted instead of A")
	}
	if _, ok := c.get(a); !ok {
		t.Fatal("expected A to remain resident after being bumped")
	}
}

func TestOversizedEntryNeverInserted(t *testing.T) {
	c := newByteBudgetCache(4)
	k := cacheKey{mountID: "m", path: "big"}
	c.put(k, []byte{1, 2, 3, 4, 5})
	if _, ok := c.get(k); ok {
		t.Fatal("an entry larger than capacity must never be inserted")
	}
}

func TestInvalidateMount(t *testing.T) {
	c := newByteBudgetCache(100)
	c.put(cacheKey{mountID: "m1", path: "a"}, []byte{1})
	c.put(cacheKey{mountID: "m2", path: "b"}, []byte{2})
	c.invalidateMount("m1")
	if _, ok := c.get(cacheKey{mountID: "m1", path: "a"}); ok {
		t.Fatal("m1's entries should have been dropped")
	}
	if _, ok := c.get(cacheKey{mountID: "m2", path: "b"}); !ok {
		t.Fatal("m2's entries should be unaffected")
	}
}
