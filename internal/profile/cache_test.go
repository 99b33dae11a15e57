package profile

import (
	"sync"
	"testing"
)

func TestCacheGetPut(t *testing.T) {
	c := NewCache()

	if _, ok := c.Get("123"); ok {
		t.Error("empty cache should miss")
	}

	p := Profile{Username: "builderman"}
	c.Put("123", p)

	got, ok := c.Get("123")
	if !ok {
		t.Fatal("expected hit after Put")
	}
	if got.Username != "builderman" {
		t.Errorf("got %+v", got)
	}
	if c.Len() != 1 {
		t.Errorf("Len: got %d", c.Len())
	}
}

func TestCacheOverwrite(t *testing.T) {
	c := NewCache()
	c.Put("123", Profile{Username: "old"})
	c.Put("123", Profile{Username: "new"})

	got, _ := c.Get("123")
	if got.Username != "new" {
		t.Errorf("expected overwrite, got %q", got.Username)
	}
	if c.Len() != 1 {
		t.Errorf("Len after overwrite: got %d", c.Len())
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := NewCache()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Put("shared", Profile{Username: "u"})
				c.Get("shared")
			}
		}(i)
	}
	wg.Wait()
	if c.Len() != 1 {
		t.Errorf("Len: got %d", c.Len())
	}
}
