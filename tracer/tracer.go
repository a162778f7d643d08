package tracer

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"perfetto_trace/encoder"
	"perfetto_trace/internal/config"
	"perfetto_trace/internal/track"
)

// gpioPort carries the last observed pin mask for one port, used to emit
// counter updates only for pins that actually changed.
type gpioPort struct {
	cfg  config.GPIOPort
	last uint32
}

// Tracer maps host lifecycle hooks onto the encoder. Safe for concurrent
// use; one mutex serializes every hook.
type Tracer struct {
	mu  sync.Mutex
	enc *encoder.Encoder
	log *zap.Logger

	// Interned ids cached at construction. A zero id means the intern
	// table was full; the encoder omits zero ids from events.
	catKernel uint64
	catThread uint64
	catISR    uint64
	catSync   uint64

	nameRunning     uint64
	nameISR         uint64
	nameIdle        uint64
	nameSemTake     uint64
	nameSemGive     uint64
	nameMutexLock   uint64
	nameMutexUnlock uint64

	isrTrackEmitted bool

	gpio  []gpioPort
	uarts []config.UART
}

// New creates a Tracer over enc, pre-interning the category and event
// names the hooks use and registering the peripheral track setup with the
// encoder's start sequence. A nil log disables logging.
func New(enc *encoder.Encoder, cfg config.Config, log *zap.Logger) *Tracer {
	if log == nil {
		log = zap.NewNop()
	}
	t := &Tracer{
		enc: enc,
		log: log,

		catKernel: enc.InternCategory("kernel"),
		catThread: enc.InternCategory("thread"),
		catISR:    enc.InternCategory("isr"),
		catSync:   enc.InternCategory("sync"),

		nameRunning:     enc.InternEventName("Running"),
		nameISR:         enc.InternEventName("ISR"),
		nameIdle:        enc.InternEventName("Idle"),
		nameSemTake:     enc.InternEventName("sem_take"),
		nameSemGive:     enc.InternEventName("sem_give"),
		nameMutexLock:   enc.InternEventName("mutex_lock"),
		nameMutexUnlock: enc.InternEventName("mutex_unlock"),

		uarts: cfg.UARTs,
	}
	t.gpio = make([]gpioPort, len(cfg.GPIOPorts))
	for i, port := range cfg.GPIOPorts {
		t.gpio[i] = gpioPort{cfg: port}
	}

	enc.RegisterStartHook(t.initGPIOTracks)
	enc.RegisterStartHook(t.initUARTTracks)
	return t
}

// Start triggers the encoder's one-time start sequence. Hooks also trigger
// it implicitly on their first enabled call; Start exists for hosts that
// want the setup cost paid at a known point.
func (t *Tracer) Start() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enc.Start()
}

// initGPIOTracks runs inside the encoder start sequence. Each port gets a
// group track under the Trace group and one counter track per pin,
// seeded with a 0 sample so every pin renders from the session origin.
func (t *Tracer) initGPIOTracks(e *encoder.Encoder) {
	for i := range t.gpio {
		port := &t.gpio[i]
		group := track.GPIOGroupUUID(port.cfg.Ordinal)
		e.EmitTrackDescriptor(group, track.TraceTrackUUID, port.cfg.Name)
		for pin := uint8(0); pin < port.cfg.Pins; pin++ {
			uuid := track.GPIOPinUUID(port.cfg.Ordinal, pin)
			e.EmitCounterTrackDescriptor(uuid, group, fmt.Sprintf("%s.%02d", port.cfg.Name, pin))
			e.EmitCounter(uuid, 0)
		}
		port.last = 0
	}
}

// initUARTTracks runs inside the encoder start sequence, emitting the
// Peripherals / UART / device / TX+RX track tree.
func (t *Tracer) initUARTTracks(e *encoder.Encoder) {
	if len(t.uarts) == 0 {
		return
	}
	e.EmitTrackDescriptor(track.PeripheralsUUID, track.ProcessUUID, "Peripherals")
	e.EmitTrackDescriptor(track.UARTGroupUUID, track.PeripheralsUUID, "UART")
	for _, dev := range t.uarts {
		device := track.UARTDeviceUUID(dev.Ordinal)
		e.EmitTrackDescriptor(device, track.UARTGroupUUID, dev.Name)
		e.EmitTrackDescriptor(track.UARTTxUUID(dev.Ordinal), device, "TX")
		e.EmitTrackDescriptor(track.UARTRxUUID(dev.Ordinal), device, "RX")
	}
}

// ensureThreadDescriptor emits id's descriptor if this session has not
// seen it yet. Callers hold t.mu.
func (t *Tracer) ensureThreadDescriptor(id track.ThreadID, name string) {
	if t.enc.ThreadDescriptorEmitted(id) {
		return
	}
	t.enc.EmitThreadDescriptor(id, name)
}

// ThreadCreate declares a new thread's track.
func (t *Tracer) ThreadCreate(id track.ThreadID, name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ensureThreadDescriptor(id, name)
}

// ThreadNameSet re-emits the thread descriptor with the new name. The
// redundant descriptor is how a rename reaches the consumer.
func (t *Tracer) ThreadNameSet(id track.ThreadID, name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enc.EmitThreadDescriptor(id, name)
}

// ThreadSwitchedIn opens the thread's "Running" slice.
func (t *Tracer) ThreadSwitchedIn(id track.ThreadID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ensureThreadDescriptor(id, "")
	t.enc.EmitSliceBegin(track.ThreadUUID(id), t.nameRunning, t.catThread)
}

// ThreadSwitchedOut closes the thread's "Running" slice.
func (t *Tracer) ThreadSwitchedOut(id track.ThreadID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enc.EmitSliceEnd(track.ThreadUUID(id))
}

// ISREnter opens a slice on the shared ISR track, declaring the track on
// first use. Nested ISRs stack begin/end pairs on the same track.
func (t *Tracer) ISREnter() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.isrTrackEmitted {
		t.enc.EmitISRTrackDescriptor()
		// Not marked while the session is gated off, so the descriptor
		// is retried once tracing is enabled.
		t.isrTrackEmitted = t.enc.Started()
	}
	t.enc.EmitSliceBegin(track.ISRTrackUUID, t.nameISR, t.catISR)
}

// ISRExit closes the current ISR slice.
func (t *Tracer) ISRExit() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enc.EmitSliceEnd(track.ISRTrackUUID)
}

// IdleEnter marks the scheduler going idle with an instant on the process
// track.
func (t *Tracer) IdleEnter() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enc.EmitInstant(track.ProcessUUID, t.nameIdle, t.catKernel)
}

// IdleExit is a no-op: the next ThreadSwitchedIn already marks the end of
// the idle period.
func (t *Tracer) IdleExit() {}

// SemInit is a no-op; semaphore identity does not get its own track.
func (t *Tracer) SemInit() {}

// SemGiveEnter opens a "sem_give" slice on the calling thread's track.
func (t *Tracer) SemGiveEnter(thread track.ThreadID) {
	t.syncEnter(thread, t.nameSemGive)
}

// SemGiveExit closes the calling thread's "sem_give" slice.
func (t *Tracer) SemGiveExit(thread track.ThreadID) {
	t.syncExit(thread)
}

// SemTakeEnter opens a "sem_take" slice on the calling thread's track.
func (t *Tracer) SemTakeEnter(thread track.ThreadID) {
	t.syncEnter(thread, t.nameSemTake)
}

// SemTakeBlocking is a no-op; the enclosing take slice already spans the
// wait.
func (t *Tracer) SemTakeBlocking(thread track.ThreadID) {}

// SemTakeExit closes the calling thread's "sem_take" slice.
func (t *Tracer) SemTakeExit(thread track.ThreadID) {
	t.syncExit(thread)
}

// MutexInit is a no-op; mutex identity does not get its own track.
func (t *Tracer) MutexInit() {}

// MutexLockEnter opens a "mutex_lock" slice on the calling thread's track.
func (t *Tracer) MutexLockEnter(thread track.ThreadID) {
	t.syncEnter(thread, t.nameMutexLock)
}

// MutexLockBlocking is a no-op; the enclosing lock slice already spans the
// wait.
func (t *Tracer) MutexLockBlocking(thread track.ThreadID) {}

// MutexLockExit closes the calling thread's "mutex_lock" slice.
func (t *Tracer) MutexLockExit(thread track.ThreadID) {
	t.syncExit(thread)
}

// MutexUnlockEnter opens a "mutex_unlock" slice on the calling thread's
// track.
func (t *Tracer) MutexUnlockEnter(thread track.ThreadID) {
	t.syncEnter(thread, t.nameMutexUnlock)
}

// MutexUnlockExit closes the calling thread's "mutex_unlock" slice.
func (t *Tracer) MutexUnlockExit(thread track.ThreadID) {
	t.syncExit(thread)
}

func (t *Tracer) syncEnter(thread track.ThreadID, nameIID uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ensureThreadDescriptor(thread, "")
	t.enc.EmitSliceBegin(track.ThreadUUID(thread), nameIID, t.catSync)
}

func (t *Tracer) syncExit(thread track.ThreadID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enc.EmitSliceEnd(track.ThreadUUID(thread))
}

// GPIOPortGetRaw is a no-op; reads do not change pin state.
func (t *Tracer) GPIOPortGetRaw(ordinal uint32) {}

// GPIOPortSetMaskedRaw applies value under mask to the port's pins.
func (t *Tracer) GPIOPortSetMaskedRaw(ordinal, mask, value uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gpioApply(ordinal, func(last uint32) uint32 { return (last &^ mask) | (value & mask) })
}

// GPIOPortSetBitsRaw drives the given pins high.
func (t *Tracer) GPIOPortSetBitsRaw(ordinal, pins uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gpioApply(ordinal, func(last uint32) uint32 { return last | pins })
}

// GPIOPortClearBitsRaw drives the given pins low.
func (t *Tracer) GPIOPortClearBitsRaw(ordinal, pins uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gpioApply(ordinal, func(last uint32) uint32 { return last &^ pins })
}

// GPIOPortToggleBits inverts the given pins.
func (t *Tracer) GPIOPortToggleBits(ordinal, pins uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gpioApply(ordinal, func(last uint32) uint32 { return last ^ pins })
}

// gpioApply computes the port's new pin mask, emits one counter update per
// changed pin, and stores the new mask. Unchanged pins emit nothing.
// Callers hold t.mu.
func (t *Tracer) gpioApply(ordinal uint32, op func(uint32) uint32) {
	port := t.portByOrdinal(ordinal)
	if port == nil {
		t.log.Debug("GPIO event for unconfigured port", zap.Uint32("ordinal", ordinal))
		return
	}
	next := op(port.last)
	diff := port.last ^ next
	for pin := uint8(0); pin < port.cfg.Pins; pin++ {
		if diff&(1<<pin) == 0 {
			continue
		}
		value := int64((next >> pin) & 1)
		t.enc.EmitCounter(track.GPIOPinUUID(ordinal, pin), value)
	}
	port.last = next
}

func (t *Tracer) portByOrdinal(ordinal uint32) *gpioPort {
	for i := range t.gpio {
		if t.gpio[i].cfg.Ordinal == ordinal {
			return &t.gpio[i]
		}
	}
	return nil
}

// UARTTxComplete records a finished transmission as a complete interval on
// the device's TX track.
func (t *Tracer) UARTTxComplete(ordinal uint32, startNs, durationNs uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enc.EmitSliceWithDuration(track.UARTTxUUID(ordinal), "TX", startNs, durationNs)
}

// UARTRxComplete records a finished reception as a complete interval on
// the device's RX track.
func (t *Tracer) UARTRxComplete(ordinal uint32, startNs, durationNs uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enc.EmitSliceWithDuration(track.UARTRxUUID(ordinal), "RX", startNs, durationNs)
}
