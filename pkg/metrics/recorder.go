// Package metrics defines the pipeline's nil-safe metrics capability.
// Components hold a Recorder and call it unconditionally; when metrics are
// not enabled, Recorder is the Disabled no-op, so no call site needs an
// IsEnabled() check of its own.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Recorder is the metrics capability every pipeline component records
// through: events validated, delete requests emitted, batches flushed,
// deletion command outcomes, and vanish-stream parsing outcomes.
type Recorder interface {
	// EventValidated records one validator verdict ("accept", "reject").
	EventValidated(verdict string)
	// DeleteRequestEmitted records one DeleteRequest by kind.
	DeleteRequestEmitted(kind string)
	// BatchFlushed records the size of one aggregator flush.
	BatchFlushed(size int)
	// DeletionCommandResult records one relay commander call's outcome.
	DeletionCommandResult(success bool)
	// VanishEntryParsed records one stream entry's parse outcome.
	VanishEntryParsed(skipped bool)
	// CursorAdvanced records one persisted-cursor advance.
	CursorAdvanced()
}

// Disabled is a Recorder whose every method is a no-op. It is the default
// for components that are never given a Prometheus-backed Recorder.
var Disabled Recorder = disabledRecorder{}

type disabledRecorder struct{}

func (disabledRecorder) EventValidated(verdict string)       {}
func (disabledRecorder) DeleteRequestEmitted(kind string)    {}
func (disabledRecorder) BatchFlushed(size int)               {}
func (disabledRecorder) DeletionCommandResult(success bool)  {}
func (disabledRecorder) VanishEntryParsed(skipped bool)      {}
func (disabledRecorder) CursorAdvanced()                     {}

var (
	enabled  bool
	registry *prometheus.Registry
)

// InitRegistry enables metrics and creates a fresh Prometheus registry.
// Must be called before any component's Recorder is constructed.
func InitRegistry() *prometheus.Registry {
	enabled = true
	registry = prometheus.NewRegistry()
	return registry
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	return enabled
}

// GetRegistry returns the registry created by InitRegistry, or nil if
// metrics are disabled.
func GetRegistry() *prometheus.Registry {
	return registry
}
