package telemetry

import "github.com/felixgeelhaar/devflow/internal/version"

// Config selects whether and where spans and metrics are exported
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string

	// Enabled false installs noop providers
	Enabled bool

	// Endpoint is an OTLP/HTTP collector, host:port or a full URL. Empty
	// means record but never export.
	Endpoint string

	// SampleRate is the fraction of runs traced, 0 to 1
	SampleRate float64
}

// DefaultConfig has telemetry off
func DefaultConfig() Config {
	return Config{
		ServiceName:    version.Name,
		ServiceVersion: version.Version,
		Environment:    "development",
		SampleRate:     1.0,
	}
}
