package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/oklog/run"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/peterbourgon/ff/v4/ffval"
	"go.uber.org/zap"

	"perfetto_trace/encoder"
	"perfetto_trace/internal/clock"
	"perfetto_trace/internal/config"
	"perfetto_trace/tracer"
)

func main() {
	err := exec(context.Background(), os.Stderr, os.Args[1:])
	switch {
	case err == nil:
		os.Exit(0)
	case errors.As(err, &(run.SignalError{})):
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func exec(ctx context.Context, stderr io.Writer, args []string) error {
	var flags struct {
		output      string
		processName string
		duration    time.Duration
		tick        time.Duration
		debug       bool
	}

	fs := ff.NewFlags("tracer-demo")
	{
		fs.AddFlag(ff.CoreFlagConfig{ShortName: 'o', LongName: "output", Value: ffval.NewValueDefault(&flags.output, "demo.perfetto-trace"), Usage: "trace output file"})
		fs.AddFlag(ff.CoreFlagConfig{ShortName: 'p', LongName: "process-name", Value: ffval.NewValue(&flags.processName), Usage: "process name in the trace (overrides PERFETTO_PROCESS_NAME)"})
		fs.AddFlag(ff.CoreFlagConfig{ShortName: 'd', LongName: "duration", Value: ffval.NewValueDefault(&flags.duration, 2*time.Second), Usage: "how long to run the simulated workload"})
		fs.AddFlag(ff.CoreFlagConfig{ /*          */ LongName: "tick", Value: ffval.NewValueDefault(&flags.tick, 5*time.Millisecond), Usage: "simulated scheduler tick"})
		fs.AddFlag(ff.CoreFlagConfig{ /*          */ LongName: "debug", Value: ffval.NewValue(&flags.debug), Usage: "log debug information", NoDefault: true})
	}

	if err := ff.Parse(fs, args); err != nil {
		fmt.Fprintf(stderr, "%s\n", ffhelp.Flags(fs, usage))
		if errors.Is(err, ff.ErrHelp) {
			err = nil
		}
		return err
	}

	logger, err := newLogger(flags.debug)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	if flags.processName != "" {
		cfg.ProcessName = flags.processName
	}
	cfg.GPIOPorts = []config.GPIOPort{
		{Name: "gpio0", Ordinal: 0, Pins: 8},
		{Name: "gpio1", Ordinal: 1, Pins: 4},
	}
	cfg.UARTs = []config.UART{
		{Name: "uart0", Ordinal: 0},
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	out, err := os.Create(flags.output)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer func() {
		if err := out.Close(); err != nil {
			logger.Warn("closing output file", zap.Error(err))
		}
	}()

	clk := clock.NewMonotonic()
	enc := encoder.New(cfg, out, clk, nil, logger)
	tr := tracer.New(enc, cfg, logger)

	logger.Info("writing trace",
		zap.String("output", flags.output),
		zap.String("process_name", cfg.ProcessName),
		zap.Duration("duration", flags.duration))

	var g run.Group

	{
		ctx, cancel := context.WithCancel(ctx)
		g.Add(func() error {
			return runWorkload(ctx, tr, clk, flags.duration, flags.tick, logger)
		}, func(error) {
			cancel()
		})
	}

	{
		g.Add(run.SignalHandler(ctx, os.Interrupt))
	}

	return g.Run()
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

const usage = "Write a simulated embedded workload as a Perfetto trace file."
