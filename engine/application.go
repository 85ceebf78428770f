package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

type ApplicationConfig struct {
	// The application name used in logs.
	Name string
	// Configuration file to load. Empty runs on the defaults.
	ConfigPath string
	// Reload the configuration file when it changes on disk.
	WatchConfig bool
	// LogLevel overrides the [log] level of the configuration file when set.
	LogLevel string
	// Registerer receives the frame metrics; nil uses the global registry.
	Registerer prometheus.Registerer
	// TracerProvider receives the frame spans; nil uses the global provider.
	TracerProvider trace.TracerProvider
}
