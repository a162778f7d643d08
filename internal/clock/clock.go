package clock

import "time"

// Clock supplies trace timestamps in nanoseconds on a monotonic timebase.
type Clock interface {
	NowNanos() uint64
}

// Monotonic measures nanoseconds elapsed since it was created. All packets
// from one Monotonic share a single timebase, so event ordering in the trace
// matches call ordering.
type Monotonic struct {
	start time.Time
}

// NewMonotonic creates a Monotonic anchored at the current instant.
func NewMonotonic() *Monotonic {
	return &Monotonic{start: time.Now()}
}

// NowNanos returns nanoseconds elapsed since the clock was created.
func (m *Monotonic) NowNanos() uint64 {
	//nolint:gosec // time.Since is non-negative here, conversion is safe
	return uint64(time.Since(m.start))
}

// Fixed is a Clock that always reports the same timestamp. Useful in tests
// and for replaying captured events with explicit times.
type Fixed uint64

// NowNanos returns the fixed timestamp.
func (f Fixed) NowNanos() uint64 { return uint64(f) }
