package cache

import (
	"testing"
	"time"
)

func TestDayCache_PutGet(t *testing.T) {
	c := NewDayCache(time.Minute, time.Minute)

	c.Put("report", "2025-07-31", []byte("payload"))

	val, found := c.Get("report", "2025-07-31")
	if !found {
		t.Fatal("Expected entry to be found")
	}
	if string(val) != "payload" {
		t.Errorf("Got %q", val)
	}
}

func TestDayCache_StagesAreSeparate(t *testing.T) {
	c := NewDayCache(time.Minute, time.Minute)

	c.Put("report", "2025-07-31", []byte("report data"))

	if _, found := c.Get("cleaned", "2025-07-31"); found {
		t.Error("Expected miss for a different stage on the same day")
	}
	if _, found := c.Get("report", "2025-07-30"); found {
		t.Error("Expected miss for a different day")
	}
}

func TestDayCache_Invalidate(t *testing.T) {
	c := NewDayCache(time.Minute, time.Minute)

	c.Put("report", "2025-07-31", []byte("payload"))
	c.Invalidate("report", "2025-07-31")

	if _, found := c.Get("report", "2025-07-31"); found {
		t.Error("Expected invalidated entry gone")
	}
}
