// Package config holds the encoder settings and the static hardware
// enumeration (GPIO ports, UART devices) that the tracer derives its track
// layout from. Values come from defaults, PERFETTO_* environment variables,
// and the host's own configuration, in that order.
package config
