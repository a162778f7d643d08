// Package tracer adapts host instrumentation hooks to trace packet
// emissions.
//
// Each hook is a short synchronous method: look up cached interned ids,
// derive the target track, emit. One mutex serializes all hooks, which is
// the only locking in the pipeline; the encoder below it is single-writer.
//
// Slice discipline follows the host's own call discipline. Thread switch
// in/out pairs bound the per-thread "Running" slice, ISR enter/exit pairs
// nest on one shared ISR track, and synchronization operations open a slice
// on the calling thread's track for the duration of the call. The adapter
// does not verify pairing; an unbalanced host produces an unbalanced trace.
package tracer
