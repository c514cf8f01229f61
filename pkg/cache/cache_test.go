package cache

import (
	"testing"
	"time"
)

func TestSetAndGet(t *testing.T) {
	c := New()
	c.Set("key1", "value1", 1*time.Second)
	val, ok := c.Get("key1")
	if !ok || val != "value1" {
		t.Fatalf("expected value1, got %v, exists=%v", val, ok)
	}
}

func TestExpiration(t *testing.T) {
	c := New()
	c.Set("key1", "value1", 100*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	_, ok := c.Get("key1")
	if ok {
		t.Fatalf("expected expired key to return false")
	}
}

func TestDelete(t *testing.T) {
	c := New()
	c.Set("key1", "value1", 1*time.Second)
	c.Delete("key1")
	_, ok := c.Get("key1")
	if ok {
		t.Fatalf("expected deleted key to return false")
	}
}

func TestInvalidate(t *testing.T) {
	c := New()
	c.Set("pwreset:tok1", int64(1), 1*time.Second)
	c.Set("pwreset:tok2", int64(2), 1*time.Second)
	c.Set("session:abc", int64(3), 1*time.Second)
	c.Invalidate("pwreset:")
	_, ok1 := c.Get("pwreset:tok1")
	_, ok2 := c.Get("pwreset:tok2")
	_, ok3 := c.Get("session:abc")
	if ok1 || ok2 {
		t.Fatalf("expected reset tokens to be invalidated")
	}
	if !ok3 {
		t.Fatalf("expected session:abc to still exist")
	}
}
