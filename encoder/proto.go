package encoder

// Field numbers from the Perfetto trace protos. Only the subset this
// producer emits is listed.
const (
	// TracePacket
	packetTimestamp       = 8
	packetSequenceID      = 10
	packetTrackEvent      = 11
	packetInternedData    = 12
	packetSequenceFlags   = 13
	packetTrackDescriptor = 60

	// TrackDescriptor
	descUUID       = 1
	descName       = 2
	descProcess    = 3
	descThread     = 4
	descParentUUID = 5
	descCounter    = 8

	// ProcessDescriptor
	procPID  = 1
	procName = 6

	// ThreadDescriptor
	threadPID  = 1
	threadTID  = 2
	threadName = 5

	// CounterDescriptor
	counterUnit = 3
	unitCount   = 1

	// TrackEvent
	eventCategoryIIDs = 3
	eventType         = 9
	eventNameIID      = 10
	eventTrackUUID    = 11
	eventName         = 23
	eventCounterValue = 30

	// TrackEvent.Type
	typeSliceBegin = 1
	typeSliceEnd   = 2
	typeInstant    = 3
	typeCounter    = 4

	// InternedData; both entry lists hold {iid = 1, name = 2} messages.
	internedCategories = 1
	internedEventNames = 2
	internedIID        = 1
	internedText       = 2
)

// TracePacket.sequence_flags bits.
const (
	flagIncrementalStateCleared = 1
	flagNeedsIncrementalState   = 2
)
