package cache

import (
	"testing"
	"time"
)

func TestCacheBasicOperations(t *testing.T) {
	c := New[[]string](10, time.Minute)

	c.Set("7001004", []string{"S5", "2"})

	got, ok := c.Get("7001004")
	if !ok {
		t.Fatal("expected to find 7001004")
	}
	if len(got) != 2 || got[0] != "S5" {
		t.Errorf("Get = %v, want [S5 2]", got)
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestCacheExpiration(t *testing.T) {
	c := New[int](10, 50*time.Millisecond)
	c.Set("k", 1)

	if _, ok := c.Get("k"); !ok {
		t.Fatal("expected hit before expiration")
	}

	time.Sleep(80 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("expected item to be expired")
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("expected a to survive")
	}
}

func TestCacheDeleteAndClear(t *testing.T) {
	c := New[string](10, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("expected a to be deleted")
	}
	if c.Size() != 1 {
		t.Errorf("Size = %d, want 1", c.Size())
	}

	c.Clear()
	if c.Size() != 0 {
		t.Errorf("Size after Clear = %d, want 0", c.Size())
	}
}
