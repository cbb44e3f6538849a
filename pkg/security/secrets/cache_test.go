package secrets

import (
	"testing"
	"time"
)

func TestCache_TTL(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := newCache(time.Minute)
	c.now = func() time.Time { return now }

	c.set("a", "1")
	if v, ok := c.get("a"); !ok || v != "1" {
		t.Fatalf("get() = %q, %v", v, ok)
	}

	now = now.Add(time.Minute)
	if _, ok := c.get("a"); ok {
		t.Error("entry should expire after the TTL")
	}
	if c.len() != 0 {
		t.Errorf("len() = %d, want 0 after expiry", c.len())
	}
}

func TestCache_Disabled(t *testing.T) {
	for _, ttl := range []time.Duration{0, -1} {
		c := newCache(ttl)
		c.set("a", "1")
		if _, ok := c.get("a"); ok {
			t.Errorf("ttl %v: cache should be disabled", ttl)
		}
	}
}

func TestCache_Clear(t *testing.T) {
	c := newCache(time.Hour)
	c.set("a", "1")
	c.set("b", "2")
	c.clear()
	if c.len() != 0 {
		t.Errorf("len() = %d, want 0", c.len())
	}
}
