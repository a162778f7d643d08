package clock

import (
	"testing"
	"time"
)

func TestMonotonic_NonDecreasing(t *testing.T) {
	c := NewMonotonic()

	prev := c.NowNanos()
	for i := 0; i < 100; i++ {
		now := c.NowNanos()
		if now < prev {
			t.Fatalf("NowNanos went backwards: %d then %d", prev, now)
		}
		prev = now
	}
}

func TestMonotonic_Advances(t *testing.T) {
	c := NewMonotonic()

	before := c.NowNanos()
	time.Sleep(time.Millisecond)
	after := c.NowNanos()

	if after <= before {
		t.Errorf("NowNanos() did not advance across a sleep: %d then %d", before, after)
	}
}

func TestFixed(t *testing.T) {
	c := Fixed(42)
	if got := c.NowNanos(); got != 42 {
		t.Errorf("Fixed(42).NowNanos() = %d", got)
	}
	if got := c.NowNanos(); got != 42 {
		t.Errorf("Fixed is not stable: %d", got)
	}
}
