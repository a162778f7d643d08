package track

import "testing"

func TestThreadUUID_Deterministic(t *testing.T) {
	id := ThreadID(0xdead)
	if ThreadUUID(id) != ThreadUUID(id) {
		t.Fatal("ThreadUUID is not deterministic")
	}
	if ThreadUUID(1) == ThreadUUID(2) {
		t.Fatal("distinct thread identities share a UUID")
	}
}

func TestUARTUUIDs(t *testing.T) {
	dev := UARTDeviceUUID(3)
	if want := uint64(UARTUUIDBase + 3*4); dev != want {
		t.Errorf("UARTDeviceUUID(3) = %#x, want %#x", dev, want)
	}
	if UARTTxUUID(3) != dev+1 {
		t.Errorf("UARTTxUUID(3) = %#x, want %#x", UARTTxUUID(3), dev+1)
	}
	if UARTRxUUID(3) != dev+2 {
		t.Errorf("UARTRxUUID(3) = %#x, want %#x", UARTRxUUID(3), dev+2)
	}

	// Consecutive ordinals must not overlap.
	if UARTRxUUID(3) >= UARTDeviceUUID(4) {
		t.Error("UART ranges for consecutive ordinals overlap")
	}
}

func TestGPIOUUIDs_DisjointAcrossOrdinals(t *testing.T) {
	// The group slot of ordinal n must not alias any pin of ordinal n+1.
	group := GPIOGroupUUID(0)
	nextPin0 := GPIOPinUUID(1, 0)
	if group >= nextPin0 {
		t.Errorf("GPIOGroupUUID(0) = %#x collides with GPIOPinUUID(1, 0) = %#x", group, nextPin0)
	}

	seen := map[uint64]string{}
	for ord := uint32(0); ord < 4; ord++ {
		for pin := uint8(0); pin < 32; pin++ {
			uuid := GPIOPinUUID(ord, pin)
			if prev, dup := seen[uuid]; dup {
				t.Fatalf("GPIO pin UUID %#x duplicated (%s)", uuid, prev)
			}
			seen[uuid] = "pin"
		}
		if _, dup := seen[GPIOGroupUUID(ord)]; dup {
			t.Fatalf("GPIO group UUID %#x duplicated", GPIOGroupUUID(ord))
		}
		seen[GPIOGroupUUID(ord)] = "group"
	}
}

func TestClassRangesDisjoint(t *testing.T) {
	// Spot checks that the derived classes sit in their reserved ranges.
	if u := ThreadUUID(1); u < ThreadUUIDBase || u >= UARTUUIDBase {
		t.Errorf("thread UUID %#x outside thread range", u)
	}
	if u := UARTRxUUID(100); u < UARTUUIDBase || u >= GPIOUUIDBase {
		t.Errorf("UART UUID %#x outside UART range", u)
	}
	if u := GPIOPinUUID(0, 0); u < GPIOUUIDBase {
		t.Errorf("GPIO UUID %#x below GPIO range", u)
	}
}

func TestEmittedSet(t *testing.T) {
	var set EmittedSet

	if set.Contains(1) {
		t.Fatal("empty set contains identity 1")
	}

	set.Mark(1)
	if !set.Contains(1) {
		t.Fatal("Mark(1) not visible")
	}
	if set.Contains(2) {
		t.Fatal("unmarked identity reported as emitted")
	}

	// Marking twice is harmless.
	set.Mark(1)
	if !set.Contains(1) {
		t.Fatal("re-Mark broke membership")
	}
}

func TestEmittedSet_ZeroIdentity(t *testing.T) {
	var set EmittedSet
	set.Mark(0)
	if set.Contains(0) {
		t.Fatal("zero identity must never be tracked")
	}
}

func TestEmittedSet_CapacityDegradation(t *testing.T) {
	var set EmittedSet

	for i := 1; i <= MaxTrackedThreads; i++ {
		set.Mark(ThreadID(i))
	}
	for i := 1; i <= MaxTrackedThreads; i++ {
		if !set.Contains(ThreadID(i)) {
			t.Fatalf("identity %d lost before capacity", i)
		}
	}

	// Past capacity: the mark is dropped and Contains stays false, which
	// makes callers re-emit descriptors. Degraded but correct.
	extra := ThreadID(MaxTrackedThreads + 1)
	set.Mark(extra)
	if set.Contains(extra) {
		t.Fatal("identity past capacity must not be tracked")
	}

	set.Reset()
	if set.Contains(1) {
		t.Fatal("Reset did not clear the set")
	}
}
