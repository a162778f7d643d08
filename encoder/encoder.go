package encoder

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"perfetto_trace/internal/clock"
	"perfetto_trace/internal/config"
	"perfetto_trace/internal/intern"
	"perfetto_trace/internal/track"
	"perfetto_trace/internal/wire"
)

// ScratchBufferSize is the fixed capacity of each scratch buffer. A packet
// whose encoding exceeds it at any nesting level is dropped whole.
const ScratchBufferSize = 256

// pid is the single-process system's fixed process id.
const pid = 1

// StartHook runs once inside the start sequence, after the process and
// "Trace" track descriptors have been emitted. Hooks may call Emit methods.
type StartHook func(*Encoder)

// Encoder assembles trace packets and writes them to the sink. Single
// writer; see the package documentation.
type Encoder struct {
	cfg     config.Config
	sink    io.Writer
	clock   clock.Clock
	enabled func() bool
	log     *zap.Logger

	names      *intern.Table
	categories *intern.Table
	emitted    track.EmittedSet

	started    bool
	startHooks []StartHook

	// Scratch buffers, innermost-first: sub holds the deepest nested
	// message, msg the packet payload, packet the TracePacket itself.
	packet *wire.Buffer
	msg    *wire.Buffer
	sub    *wire.Buffer
}

// New creates an Encoder writing framed packets to sink. A nil clk falls
// back to a fresh monotonic clock, a nil enabled predicate means always
// enabled, and a nil log disables logging.
func New(cfg config.Config, sink io.Writer, clk clock.Clock, enabled func() bool, log *zap.Logger) *Encoder {
	if clk == nil {
		clk = clock.NewMonotonic()
	}
	if enabled == nil {
		enabled = func() bool { return true }
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Encoder{
		cfg:        cfg,
		sink:       sink,
		clock:      clk,
		enabled:    enabled,
		log:        log,
		names:      intern.New(cfg.InternedStrings),
		categories: intern.New(cfg.InternedStrings),
		packet:     wire.NewBuffer(ScratchBufferSize),
		msg:        wire.NewBuffer(ScratchBufferSize),
		sub:        wire.NewBuffer(ScratchBufferSize),
	}
}

// RegisterStartHook adds a hook to the one-time start sequence. Hooks
// registered after the sequence has run are never invoked.
func (e *Encoder) RegisterStartHook(h StartHook) {
	e.startHooks = append(e.startHooks, h)
}

// Start runs the one-time start sequence if tracing is enabled: process
// descriptor, "Trace" group track, then the registered hooks in order. It
// reports whether the session is started. Safe to call repeatedly; the
// sequence runs at most once.
func (e *Encoder) Start() bool {
	return e.ensureStarted()
}

// Started reports whether the start sequence has run.
func (e *Encoder) Started() bool { return e.started }

func (e *Encoder) ensureStarted() bool {
	if e.started {
		return true
	}
	if !e.enabled() {
		return false
	}
	// Set before emitting so the descriptors and hooks below pass the
	// gate themselves.
	e.started = true

	e.EmitProcessDescriptor()
	e.EmitTrackDescriptor(track.TraceTrackUUID, track.ProcessUUID, "Trace")
	for _, h := range e.startHooks {
		h(e)
	}
	return true
}

// InternEventName interns text into the event-name table. Returns 0 when
// text is empty or the table is full.
func (e *Encoder) InternEventName(text string) uint64 {
	return e.names.Intern(text)
}

// InternCategory interns text into the category table. Returns 0 when text
// is empty or the table is full.
func (e *Encoder) InternCategory(text string) uint64 {
	return e.categories.Intern(text)
}

// ThreadDescriptorEmitted reports whether id's thread descriptor has been
// emitted this session. False for untracked identities, which makes callers
// re-emit (redundant but valid).
func (e *Encoder) ThreadDescriptorEmitted(id track.ThreadID) bool {
	return e.emitted.Contains(id)
}

// EmitProcessDescriptor emits the fixed pid=1 process track descriptor with
// INCREMENTAL_STATE_CLEARED set. It is the first packet of a session and the
// only emission that does not check the start gate, because the start
// sequence itself calls it.
func (e *Encoder) EmitProcessDescriptor() {
	e.sub.Reset()
	e.sub.Uvarint(procPID, pid)
	e.sub.String(procName, e.cfg.ProcessName)

	e.msg.Reset()
	e.msg.Uvarint(descUUID, track.ProcessUUID)
	e.msg.String(descName, e.cfg.ProcessName)
	e.msg.Message(descProcess, e.sub)

	e.emitPacket(packetTrackDescriptor, e.msg, e.clock.NowNanos(), flagIncrementalStateCleared)
}

// EmitTrackDescriptor declares a plain track. parent 0 means root level.
func (e *Encoder) EmitTrackDescriptor(uuid, parent uint64, name string) {
	if !e.ensureStarted() {
		return
	}
	e.msg.Reset()
	e.msg.Uvarint(descUUID, uuid)
	e.msg.String(descName, name)
	if parent != 0 {
		e.msg.Uvarint(descParentUUID, parent)
	}
	e.emitPacket(packetTrackDescriptor, e.msg, e.clock.NowNanos(), 0)
}

// EmitCounterTrackDescriptor declares a counter track with unit COUNT.
func (e *Encoder) EmitCounterTrackDescriptor(uuid, parent uint64, name string) {
	if !e.ensureStarted() {
		return
	}
	e.sub.Reset()
	e.sub.Uvarint(counterUnit, unitCount)

	e.msg.Reset()
	e.msg.Uvarint(descUUID, uuid)
	e.msg.String(descName, name)
	if parent != 0 {
		e.msg.Uvarint(descParentUUID, parent)
	}
	e.msg.Message(descCounter, e.sub)

	e.emitPacket(packetTrackDescriptor, e.msg, e.clock.NowNanos(), 0)
}

// EmitThreadDescriptor declares the thread track for id, parented to the
// process. An empty name falls back to "thread_<identity>". On a successful
// write the identity is marked emitted.
func (e *Encoder) EmitThreadDescriptor(id track.ThreadID, name string) {
	if !e.ensureStarted() {
		return
	}
	if name == "" {
		name = fmt.Sprintf("thread_%x", uint64(id))
	}

	e.sub.Reset()
	e.sub.Uvarint(threadPID, pid)
	e.sub.Uvarint(threadTID, uint64(uint32(id)))
	e.sub.String(threadName, name)

	e.msg.Reset()
	e.msg.Uvarint(descUUID, track.ThreadUUID(id))
	e.msg.String(descName, name)
	e.msg.Uvarint(descParentUUID, track.ProcessUUID)
	e.msg.Message(descThread, e.sub)

	if e.emitPacket(packetTrackDescriptor, e.msg, e.clock.NowNanos(), 0) {
		e.emitted.Mark(id)
	}
}

// EmitISRTrackDescriptor declares the shared ISR track under the process.
// Callers emit it lazily before the first ISR slice.
func (e *Encoder) EmitISRTrackDescriptor() {
	e.EmitTrackDescriptor(track.ISRTrackUUID, track.ProcessUUID, "ISR")
}

// EmitSliceBegin opens a slice on a track, naming it by interned id. Zero
// iids are omitted from the event.
func (e *Encoder) EmitSliceBegin(trackUUID, nameIID, categoryIID uint64) {
	if !e.ensureStarted() {
		return
	}
	e.emitEvent(trackUUID, typeSliceBegin, nameIID, categoryIID)
}

// EmitSliceBeginText opens a slice with an inline, un-interned name. Used
// when interning failed or the name is one-shot.
func (e *Encoder) EmitSliceBeginText(trackUUID uint64, name string, categoryIID uint64) {
	if !e.ensureStarted() {
		return
	}
	flags := uint64(0)
	if categoryIID != 0 {
		e.emitInternedData(0, categoryIID)
		flags = flagNeedsIncrementalState
	}

	e.msg.Reset()
	if categoryIID != 0 {
		e.msg.Uvarint(eventCategoryIIDs, categoryIID)
	}
	e.msg.Uvarint(eventType, typeSliceBegin)
	e.msg.Uvarint(eventTrackUUID, trackUUID)
	e.msg.String(eventName, name)
	e.emitPacket(packetTrackEvent, e.msg, e.clock.NowNanos(), flags)
}

// EmitSliceEnd closes the most recently opened slice on a track.
func (e *Encoder) EmitSliceEnd(trackUUID uint64) {
	if !e.ensureStarted() {
		return
	}
	e.msg.Reset()
	e.msg.Uvarint(eventType, typeSliceEnd)
	e.msg.Uvarint(eventTrackUUID, trackUUID)
	e.emitPacket(packetTrackEvent, e.msg, e.clock.NowNanos(), 0)
}

// EmitSliceWithDuration emits a complete interval with explicit timestamps,
// for spans whose extent is only known after the fact. The name is carried
// inline, without interning.
func (e *Encoder) EmitSliceWithDuration(trackUUID uint64, name string, startNs, durationNs uint64) {
	if !e.ensureStarted() {
		return
	}
	e.msg.Reset()
	e.msg.Uvarint(eventType, typeSliceBegin)
	e.msg.Uvarint(eventTrackUUID, trackUUID)
	e.msg.String(eventName, name)
	e.emitPacket(packetTrackEvent, e.msg, startNs, 0)

	e.msg.Reset()
	e.msg.Uvarint(eventType, typeSliceEnd)
	e.msg.Uvarint(eventTrackUUID, trackUUID)
	e.emitPacket(packetTrackEvent, e.msg, startNs+durationNs, 0)
}

// EmitInstant emits a zero-duration marker event.
func (e *Encoder) EmitInstant(trackUUID, nameIID, categoryIID uint64) {
	if !e.ensureStarted() {
		return
	}
	e.emitEvent(trackUUID, typeInstant, nameIID, categoryIID)
}

// EmitCounter updates a counter track's value. Gated like every other
// event emission.
func (e *Encoder) EmitCounter(trackUUID uint64, value int64) {
	if !e.ensureStarted() {
		return
	}
	e.msg.Reset()
	e.msg.Uvarint(eventType, typeCounter)
	e.msg.Uvarint(eventTrackUUID, trackUUID)
	e.msg.Uvarint(eventCounterValue, uint64(value))
	e.emitPacket(packetTrackEvent, e.msg, e.clock.NowNanos(), 0)
}

// emitEvent emits one iid-named track event, declaring the referenced
// interned strings first.
func (e *Encoder) emitEvent(trackUUID uint64, eventTyp int, nameIID, categoryIID uint64) {
	flags := uint64(0)
	if nameIID != 0 || categoryIID != 0 {
		e.emitInternedData(nameIID, categoryIID)
		flags = flagNeedsIncrementalState
	}

	e.msg.Reset()
	if categoryIID != 0 {
		e.msg.Uvarint(eventCategoryIIDs, categoryIID)
	}
	e.msg.Uvarint(eventType, uint64(eventTyp))
	if nameIID != 0 {
		e.msg.Uvarint(eventNameIID, nameIID)
	}
	e.msg.Uvarint(eventTrackUUID, trackUUID)
	e.emitPacket(packetTrackEvent, e.msg, e.clock.NowNanos(), flags)
}

// emitInternedData declares id-to-text mappings for the given iids. The
// tables are re-scanned on every use and the declarations re-emitted;
// consumers treat repeats as redundant-but-valid incremental state.
func (e *Encoder) emitInternedData(nameIID, categoryIID uint64) {
	e.msg.Reset()

	if text, ok := e.categories.TextFor(categoryIID); ok {
		e.sub.Reset()
		e.sub.Uvarint(internedIID, categoryIID)
		e.sub.String(internedText, text)
		e.msg.Message(internedCategories, e.sub)
	}
	if text, ok := e.names.TextFor(nameIID); ok {
		e.sub.Reset()
		e.sub.Uvarint(internedIID, nameIID)
		e.sub.String(internedText, text)
		e.msg.Message(internedEventNames, e.sub)
	}
	if e.msg.Len() == 0 {
		return
	}
	e.emitPacket(packetInternedData, e.msg, e.clock.NowNanos(), 0)
}

// emitPacket wraps payload in a TracePacket, frames it, and writes it to
// the sink. On scratch overflow the packet is dropped whole and false is
// returned; nothing reaches the sink.
func (e *Encoder) emitPacket(payloadField int, payload *wire.Buffer, ts uint64, flags uint64) bool {
	e.packet.Reset()
	e.packet.Uvarint(packetTimestamp, ts)
	e.packet.Uvarint(packetSequenceID, uint64(e.cfg.SequenceID))
	if flags != 0 {
		e.packet.Uvarint(packetSequenceFlags, flags)
	}
	e.packet.Message(payloadField, payload)

	if e.packet.Overflowed() {
		e.log.Debug("trace packet dropped on scratch overflow",
			zap.Int("payload_field", payloadField),
			zap.Uint64("timestamp", ts))
		return false
	}
	wire.Frame(e.sink, e.packet.Bytes())
	return true
}
