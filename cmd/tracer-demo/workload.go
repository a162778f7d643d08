package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"perfetto_trace/internal/clock"
	"perfetto_trace/internal/track"
	"perfetto_trace/tracer"
)

// simThread is one simulated thread in the round-robin schedule.
type simThread struct {
	id   track.ThreadID
	name string
}

// runWorkload drives the tracer hooks the way an embedded scheduler would:
// round-robin thread switches with sync-primitive activity, periodic ISRs,
// GPIO pin wiggling, and UART transfers. It returns when the duration
// elapses or the context is canceled.
func runWorkload(ctx context.Context, tr *tracer.Tracer, clk *clock.Monotonic, duration, tick time.Duration, log *zap.Logger) error {
	threads := []simThread{
		{id: 0x1001, name: "main"},
		{id: 0x1002, name: "sensor"},
		{id: 0x1003, name: "comms"},
	}

	tr.Start()
	for _, th := range threads {
		tr.ThreadCreate(th.id, th.name)
	}

	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	deadline := time.After(duration)

	for iteration := 0; ; iteration++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			log.Debug("workload finished", zap.Int("iterations", iteration))
			return nil
		case <-ticker.C:
		}

		th := threads[iteration%len(threads)]
		tr.ThreadSwitchedIn(th.id)

		switch iteration % 4 {
		case 0:
			tr.MutexLockEnter(th.id)
			tr.MutexLockExit(th.id)
			tr.MutexUnlockEnter(th.id)
			tr.MutexUnlockExit(th.id)
		case 1:
			tr.SemTakeEnter(th.id)
			tr.SemTakeBlocking(th.id)
			tr.SemTakeExit(th.id)
		case 2:
			tr.SemGiveEnter(th.id)
			tr.SemGiveExit(th.id)
		case 3:
			tr.GPIOPortToggleBits(0, uint32(1)<<(iteration%8))
		}

		if iteration%7 == 0 {
			tr.ISREnter()
			tr.GPIOPortSetBitsRaw(1, 0b0001)
			tr.ISRExit()
			tr.GPIOPortClearBitsRaw(1, 0b0001)
		}

		if iteration%11 == 0 {
			// A transfer that completed just before this tick.
			end := clk.NowNanos()
			span := uint64(tick.Nanoseconds()) / 2
			if end > span {
				tr.UARTTxComplete(0, end-span, span)
			}
		}
		if iteration%13 == 0 {
			end := clk.NowNanos()
			span := uint64(tick.Nanoseconds()) / 4
			if end > span {
				tr.UARTRxComplete(0, end-span, span)
			}
		}

		tr.ThreadSwitchedOut(th.id)
		tr.IdleEnter()
		tr.IdleExit()
	}
}
