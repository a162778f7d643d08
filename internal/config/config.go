package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Defaults for the encoder settings. The environment overrides them via
// FromEnv; the demo binary overrides them via flags.
const (
	DefaultProcessName     = "embedded"
	DefaultSequenceID      = 1
	DefaultInternedStrings = 64
)

// MaxGPIOPins is the widest supported GPIO port; port state is a 32-bit
// pin mask.
const MaxGPIOPins = 32

// GPIOPort describes one statically enumerated GPIO controller instance.
type GPIOPort struct {
	// Name is the stable device name, e.g. "gpio@48000000".
	Name string
	// Ordinal is the instance's enumeration index, used to derive its
	// track UUID range.
	Ordinal uint32
	// Pins is the number of pins on the port (1..MaxGPIOPins).
	Pins uint8
}

// UART describes one statically enumerated UART instance.
type UART struct {
	Name    string
	Ordinal uint32
}

// Config holds the encoder settings plus the static device enumeration.
// It is assembled once at startup and treated as immutable afterwards.
type Config struct {
	// ProcessName is the single process's display name in the trace.
	ProcessName string `env:"PERFETTO_PROCESS_NAME"`
	// SequenceID is the constant trusted_packet_sequence_id stamped on
	// every packet this producer emits.
	SequenceID uint32 `env:"PERFETTO_TRUSTED_SEQUENCE_ID"`
	// InternedStrings is the fixed capacity of each interning table.
	InternedStrings int `env:"PERFETTO_MAX_INTERNED_STRINGS"`

	// GPIOPorts and UARTs enumerate the hardware instances to trace.
	// They come from the host's static configuration, not the
	// environment.
	GPIOPorts []GPIOPort `env:"-"`
	UARTs     []UART     `env:"-"`
}

// Default returns a Config with the default encoder settings and no
// devices.
func Default() Config {
	return Config{
		ProcessName:     DefaultProcessName,
		SequenceID:      DefaultSequenceID,
		InternedStrings: DefaultInternedStrings,
	}
}

// FromEnv returns the default Config with any PERFETTO_* environment
// overrides applied.
func FromEnv() (Config, error) {
	cfg := Default()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the encoder cannot work
// with.
func (c *Config) Validate() error {
	if c.ProcessName == "" {
		return fmt.Errorf("process name must not be empty")
	}
	if c.SequenceID == 0 {
		return fmt.Errorf("trusted sequence id must be nonzero")
	}
	if c.InternedStrings <= 0 {
		return fmt.Errorf("interned string capacity must be positive, got %d", c.InternedStrings)
	}

	seenGPIO := make(map[uint32]string, len(c.GPIOPorts))
	for _, port := range c.GPIOPorts {
		if port.Name == "" {
			return fmt.Errorf("GPIO port with ordinal %d has no name", port.Ordinal)
		}
		if port.Pins == 0 || port.Pins > MaxGPIOPins {
			return fmt.Errorf("GPIO port %q has %d pins, want 1..%d", port.Name, port.Pins, MaxGPIOPins)
		}
		if prev, dup := seenGPIO[port.Ordinal]; dup {
			return fmt.Errorf("GPIO ordinal %d used by both %q and %q", port.Ordinal, prev, port.Name)
		}
		seenGPIO[port.Ordinal] = port.Name
	}

	seenUART := make(map[uint32]string, len(c.UARTs))
	for _, dev := range c.UARTs {
		if dev.Name == "" {
			return fmt.Errorf("UART with ordinal %d has no name", dev.Ordinal)
		}
		if prev, dup := seenUART[dev.Ordinal]; dup {
			return fmt.Errorf("UART ordinal %d used by both %q and %q", dev.Ordinal, prev, dev.Name)
		}
		seenUART[dev.Ordinal] = dev.Name
	}

	return nil
}
