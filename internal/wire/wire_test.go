package wire

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuffer_Uvarint(t *testing.T) {
	tests := []struct {
		name  string
		value uint64
		want  []byte
	}{
		{
			name:  "zero",
			value: 0,
			want:  []byte{0x08, 0x00},
		},
		{
			name:  "one",
			value: 1,
			want:  []byte{0x08, 0x01},
		},
		{
			name:  "single byte max",
			value: 0x7f,
			want:  []byte{0x08, 0x7f},
		},
		{
			name:  "two bytes min",
			value: 0x80,
			want:  []byte{0x08, 0x80, 0x01},
		},
		{
			name:  "300",
			value: 300,
			want:  []byte{0x08, 0xac, 0x02},
		},
		{
			name:  "max uint64",
			value: ^uint64(0),
			want:  []byte{0x08, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuffer(64)
			b.Uvarint(1, tt.value)
			if b.Overflowed() {
				t.Fatal("unexpected overflow")
			}
			if diff := cmp.Diff(tt.want, b.Bytes()); diff != "" {
				t.Errorf("Uvarint(1, %d) mismatch (-want +got):\n%s", tt.value, diff)
			}
		})
	}
}

func TestBuffer_String(t *testing.T) {
	b := NewBuffer(64)
	b.String(2, "ISR")

	// tag = (2<<3)|2 = 0x12, length 3, then the bytes.
	want := []byte{0x12, 0x03, 'I', 'S', 'R'}
	if diff := cmp.Diff(want, b.Bytes()); diff != "" {
		t.Errorf("String field mismatch (-want +got):\n%s", diff)
	}
}

func TestBuffer_Message(t *testing.T) {
	sub := NewBuffer(16)
	sub.Uvarint(1, 5)

	b := NewBuffer(16)
	b.Message(3, sub)

	want := []byte{0x1a, 0x02, 0x08, 0x05}
	if diff := cmp.Diff(want, b.Bytes()); diff != "" {
		t.Errorf("Message field mismatch (-want +got):\n%s", diff)
	}
}

func TestBuffer_OverflowIsSticky(t *testing.T) {
	b := NewBuffer(4)
	b.String(1, "this does not fit")
	if !b.Overflowed() {
		t.Fatal("expected overflow")
	}

	// Further appends must not clear the flag.
	b.Uvarint(2, 1)
	if !b.Overflowed() {
		t.Fatal("overflow flag must be sticky")
	}

	b.Reset()
	if b.Overflowed() {
		t.Fatal("Reset must clear overflow")
	}
	if b.Len() != 0 {
		t.Fatalf("Len after Reset = %d, want 0", b.Len())
	}
}

func TestBuffer_OverflowedSubmessagePropagates(t *testing.T) {
	sub := NewBuffer(2)
	sub.String(1, "too long for the sub buffer")
	if !sub.Overflowed() {
		t.Fatal("expected sub overflow")
	}

	b := NewBuffer(64)
	b.Message(3, sub)
	if !b.Overflowed() {
		t.Fatal("embedding an overflowed submessage must overflow the parent")
	}
}

func TestFrame(t *testing.T) {
	var sink bytes.Buffer
	payload := []byte{0xde, 0xad, 0xbe, 0xef}
	Frame(&sink, payload)

	want := append([]byte{0x0a, 0x04}, payload...)
	if diff := cmp.Diff(want, sink.Bytes()); diff != "" {
		t.Errorf("Frame output mismatch (-want +got):\n%s", diff)
	}
}

func TestFrame_LongPayloadLength(t *testing.T) {
	var sink bytes.Buffer
	payload := make([]byte, 200)
	Frame(&sink, payload)

	// 200 needs a two-byte varint: 0xc8 0x01.
	got := sink.Bytes()
	wantHeader := []byte{0x0a, 0xc8, 0x01}
	if !bytes.Equal(got[:3], wantHeader) {
		t.Errorf("frame header = %x, want %x", got[:3], wantHeader)
	}
	if len(got) != 3+200 {
		t.Errorf("frame length = %d, want %d", len(got), 3+200)
	}
}
