package wire

import "io"

// Protobuf wire types. Only varint and length-delimited fields are needed
// for the trace packet schema.
const (
	typeVarint          = 0
	typeLengthDelimited = 2
)

// MaxVarintLen is the maximum encoded size of a 64-bit varint.
const MaxVarintLen = 10

// Buffer is a fixed-capacity append buffer for one wire-format message.
// Appends past capacity set a sticky overflow flag instead of growing;
// callers check Overflowed before handing the bytes to the sink.
type Buffer struct {
	buf      []byte
	n        int
	overflow bool
}

// NewBuffer allocates a Buffer with the given fixed capacity. This is the
// only allocation a Buffer ever performs.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{buf: make([]byte, capacity)}
}

// Reset empties the buffer and clears the overflow flag.
func (b *Buffer) Reset() {
	b.n = 0
	b.overflow = false
}

// Len returns the number of bytes written so far.
func (b *Buffer) Len() int { return b.n }

// Bytes returns the encoded contents. Invalid once Reset is called.
func (b *Buffer) Bytes() []byte { return b.buf[:b.n] }

// Overflowed reports whether any append did not fit. Once set, it stays set
// until Reset, and the buffer contents must be considered garbage.
func (b *Buffer) Overflowed() bool { return b.overflow }

func (b *Buffer) putByte(c byte) {
	if b.n >= len(b.buf) {
		b.overflow = true
		return
	}
	b.buf[b.n] = c
	b.n++
}

func (b *Buffer) putUvarint(v uint64) {
	for v >= 0x80 {
		b.putByte(byte(v) | 0x80)
		v >>= 7
	}
	b.putByte(byte(v))
}

func (b *Buffer) putTag(field, wireType int) {
	b.putUvarint(uint64(field)<<3 | uint64(wireType))
}

// Uvarint appends a varint field.
func (b *Buffer) Uvarint(field int, v uint64) {
	b.putTag(field, typeVarint)
	b.putUvarint(v)
}

// String appends a length-delimited string field.
func (b *Buffer) String(field int, s string) {
	b.putTag(field, typeLengthDelimited)
	b.putUvarint(uint64(len(s)))
	for i := 0; i < len(s); i++ {
		b.putByte(s[i])
	}
}

// Embedded appends a length-delimited field holding an already-encoded
// message.
func (b *Buffer) Embedded(field int, payload []byte) {
	b.putTag(field, typeLengthDelimited)
	b.putUvarint(uint64(len(payload)))
	for _, c := range payload {
		b.putByte(c)
	}
}

// Message appends sub as a length-delimited field, propagating sub's
// overflow state so a truncated nested message can never be emitted as if
// it were complete.
func (b *Buffer) Message(field int, sub *Buffer) {
	if sub.Overflowed() {
		b.overflow = true
		return
	}
	b.Embedded(field, sub.Bytes())
}

// AppendUvarint encodes v into dst and returns the number of bytes written.
// dst must have room for MaxVarintLen bytes.
func AppendUvarint(dst []byte, v uint64) int {
	i := 0
	for v >= 0x80 {
		dst[i] = byte(v) | 0x80
		v >>= 7
		i++
	}
	dst[i] = byte(v)
	return i + 1
}

// Frame writes one Trace.packet unit to w: the field-1 length-delimited tag
// (0x0A), the payload length as a varint, then the payload itself. Sink
// failures are not surfaced; the transport is assumed reliable and a failed
// write only costs trace completeness.
func Frame(w io.Writer, payload []byte) {
	var header [1 + MaxVarintLen]byte
	header[0] = 0x0A
	n := 1 + AppendUvarint(header[1:], uint64(len(payload)))

	_, _ = w.Write(header[:n]) //nolint:errcheck // sink failure is not surfaced
	_, _ = w.Write(payload)    //nolint:errcheck // sink failure is not surfaced
}
