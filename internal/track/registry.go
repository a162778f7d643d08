package track

// Fixed UUIDs for the well-known tracks, emitted once at start.
const (
	ProcessUUID     = 1
	ISRTrackUUID    = 2
	TraceTrackUUID  = 3
	PeripheralsUUID = 4
	UARTGroupUUID   = 5
)

// Base offsets for the derived track classes. Each class reserves its own
// range; see the package documentation for the layout.
const (
	ThreadUUIDBase = 0x1000
	UARTUUIDBase   = 0x2000
	GPIOUUIDBase   = 0x4000
)

const (
	uartStrideShift = 2
	gpioStrideShift = 9

	// GPIOGroupOffset is the port-group slot within a port's GPIO range;
	// pins occupy offsets 0..255 below it.
	GPIOGroupOffset = 256
)

// ThreadID is the host's stable numeric identity for a thread (a handle or
// object address). It must be nonzero and constant for the thread's
// lifetime.
type ThreadID uint64

// ThreadUUID derives the track UUID for a thread. The same identity always
// maps to the same UUID for the process lifetime.
func ThreadUUID(id ThreadID) uint64 {
	return ThreadUUIDBase + uint64(id)
}

// UARTDeviceUUID derives the device track UUID for a UART instance.
func UARTDeviceUUID(ordinal uint32) uint64 {
	return UARTUUIDBase + uint64(ordinal)<<uartStrideShift
}

// UARTTxUUID derives the TX sub-track UUID for a UART instance.
func UARTTxUUID(ordinal uint32) uint64 {
	return UARTDeviceUUID(ordinal) + 1
}

// UARTRxUUID derives the RX sub-track UUID for a UART instance.
func UARTRxUUID(ordinal uint32) uint64 {
	return UARTDeviceUUID(ordinal) + 2
}

// GPIOPinUUID derives the counter track UUID for one pin of a GPIO port.
func GPIOPinUUID(ordinal uint32, pin uint8) uint64 {
	return GPIOUUIDBase + uint64(ordinal)<<gpioStrideShift + uint64(pin)
}

// GPIOGroupUUID derives the grouping track UUID for a GPIO port.
func GPIOGroupUUID(ordinal uint32) uint64 {
	return GPIOUUIDBase + uint64(ordinal)<<gpioStrideShift + GPIOGroupOffset
}

// MaxTrackedThreads bounds the thread-descriptor bookkeeping. Once the set
// is full, additional threads are simply not tracked: their descriptors get
// re-emitted on every reference, which is redundant but valid.
const MaxTrackedThreads = 32

// EmittedSet records which thread identities have had a descriptor packet
// emitted. Fixed capacity, no eviction. Not safe for concurrent use.
type EmittedSet struct {
	ids   [MaxTrackedThreads]ThreadID
	flags uint32
}

// Contains reports whether id's descriptor has been emitted. Untracked
// identities (including everything past capacity) report false.
func (s *EmittedSet) Contains(id ThreadID) bool {
	if id == 0 {
		return false
	}
	for i := 0; i < MaxTrackedThreads; i++ {
		if s.ids[i] == id {
			return s.flags&(1<<uint(i)) != 0
		}
	}
	return false
}

// Mark records that id's descriptor has been emitted. A full set drops the
// mark silently.
func (s *EmittedSet) Mark(id ThreadID) {
	if id == 0 {
		return
	}
	for i := 0; i < MaxTrackedThreads; i++ {
		if s.ids[i] == id {
			s.flags |= 1 << uint(i)
			return
		}
		if s.ids[i] == 0 {
			s.ids[i] = id
			s.flags |= 1 << uint(i)
			return
		}
	}
	// Set full; this thread's descriptor will be re-emitted on every
	// reference.
}

// Reset forgets every tracked identity.
func (s *EmittedSet) Reset() {
	*s = EmittedSet{}
}
