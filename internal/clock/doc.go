// Package clock provides the monotonic timebase for trace packets.
//
// Trace timestamps are nanoseconds on a single monotonic timebase, matching
// what the packet stream declares. Wall-clock time never appears in packets,
// so the only requirements are monotonicity and a shared origin.
package clock
