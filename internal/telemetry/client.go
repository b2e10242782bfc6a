// Package telemetry forwards validation analytics to a tracing backend.
// Callers receive a Client explicitly; there is no package-level instance.
package telemetry

import "context"

// Client receives analytics. Implementations are safe for concurrent use.
type Client interface {
	TrackEvent(name string, properties map[string]string, measurements map[string]float64)
	TrackMetric(name string, value float64, properties map[string]string)
	TrackTrace(message string, properties map[string]string)
	TrackException(err error, properties map[string]string)

	// Flush exports anything buffered
	Flush(ctx context.Context) error
	// Shutdown flushes and releases the exporter. The client is unusable
	// afterwards.
	Shutdown(ctx context.Context) error
}

// Noop discards everything. It is the client used when no connection
// string is configured.
type Noop struct{}

var _ Client = Noop{}

func (Noop) TrackEvent(string, map[string]string, map[string]float64) {}
func (Noop) TrackMetric(string, float64, map[string]string)           {}
func (Noop) TrackTrace(string, map[string]string)                     {}
func (Noop) TrackException(error, map[string]string)                  {}
func (Noop) Flush(context.Context) error                              { return nil }
func (Noop) Shutdown(context.Context) error                           { return nil }
