// Package track defines the identity scheme for trace tracks: fixed UUIDs
// for the well-known tracks, deterministic arithmetic derivations for
// everything else, and the bookkeeping of which thread descriptors have
// already been emitted.
//
// A "UUID" here is a 64-bit track identifier, not a cryptographic UUID.
// Each track class owns a disjoint numeric range, so re-deriving a UUID
// from the same identity is idempotent and derivations from different
// classes cannot collide:
//
//	1..5      well-known tracks (process, ISR, Trace, Peripherals, UART group)
//	0x1000+   threads, offset by the host's stable thread handle
//	0x2000+   UART devices, stride 4 per ordinal (device, TX, RX)
//	0x4000+   GPIO ports, stride 512 per ordinal (pins 0..255, group at +256)
//
// The GPIO stride is 512 rather than the pin range of 256 so that a port's
// group slot can never alias pin 0 of the next ordinal.
package track
