// Package wire implements the protobuf wire-format primitives used by the
// trace encoder: base-128 varints, length-delimited fields, and the
// top-level Trace.packet framing.
//
// Everything is built on fixed scratch buffers. A Buffer never grows; an
// append that would exceed its capacity sets a sticky overflow flag and the
// caller drops the packet. This keeps the encoder allocation-free after
// initialization, which is the whole point of the design.
//
// The only framing primitive needed by the transport is Frame: every emitted
// unit is a single TracePacket wrapped as field 1 of the implicit Trace
// message (tag 0x0A), so concatenated units always form a valid stream.
package wire
