// Package encoder builds and emits Perfetto trace packets.
//
// Every public Emit method assembles one TracePacket into fixed scratch
// buffers and hands the framed bytes to the sink in the same call; nothing
// is buffered across calls. A packet that does not fit the scratch buffers
// is dropped whole, with zero bytes reaching the sink.
//
// The encoder is single-writer: callers serialize access themselves (the
// tracer adapter holds one mutex around each hook). Keeping the lock out of
// this package lets the start sequence call back into Emit methods through
// registered start hooks without re-entering a lock.
package encoder
