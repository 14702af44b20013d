// Package prometheus is the Prometheus-backed implementation of
// metrics.Recorder.
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nostrtools/eventdeleter/pkg/metrics"
)

// Recorder is the Prometheus-backed metrics.Recorder. Every method guards
// against a nil receiver, so a *Recorder obtained any way other than
// NewRecorder (e.g. its zero value) is still safe to call.
type Recorder struct {
	eventsValidated       *prometheus.CounterVec
	deleteRequestsEmitted *prometheus.CounterVec
	batchSize             prometheus.Histogram
	deletionResults       *prometheus.CounterVec
	vanishEntriesParsed   *prometheus.CounterVec
	cursorAdvances        prometheus.Counter
}

// NewRecorder returns a metrics.Recorder registered against
// metrics.GetRegistry(), or metrics.Disabled if metrics are not enabled.
func NewRecorder() metrics.Recorder {
	if !metrics.IsEnabled() {
		return metrics.Disabled
	}
	reg := metrics.GetRegistry()

	return &Recorder{
		eventsValidated: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventdeleter_events_validated_total",
				Help: "Events classified by the validator, by verdict.",
			},
			[]string{"verdict"},
		),
		deleteRequestsEmitted: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventdeleter_delete_requests_emitted_total",
				Help: "DeleteRequests emitted, by kind.",
			},
			[]string{"kind"},
		),
		batchSize: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "eventdeleter_aggregator_batch_size",
				Help:    "Size of each aggregator flush.",
				Buckets: prometheus.LinearBuckets(1, 5, 10),
			},
		),
		deletionResults: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventdeleter_deletion_command_results_total",
				Help: "Relay commander calls, by outcome.",
			},
			[]string{"result"},
		),
		vanishEntriesParsed: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventdeleter_vanish_entries_total",
				Help: "Vanish stream entries read, by parse outcome.",
			},
			[]string{"outcome"},
		),
		cursorAdvances: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "eventdeleter_vanish_cursor_advances_total",
				Help: "Number of times the persisted vanish cursor advanced.",
			},
		),
	}
}

func (r *Recorder) EventValidated(verdict string) {
	if r == nil {
		return
	}
	r.eventsValidated.WithLabelValues(verdict).Inc()
}

func (r *Recorder) DeleteRequestEmitted(kind string) {
	if r == nil {
		return
	}
	r.deleteRequestsEmitted.WithLabelValues(kind).Inc()
}

func (r *Recorder) BatchFlushed(size int) {
	if r == nil {
		return
	}
	r.batchSize.Observe(float64(size))
}

func (r *Recorder) DeletionCommandResult(success bool) {
	if r == nil {
		return
	}
	result := "success"
	if !success {
		result = "failure"
	}
	r.deletionResults.WithLabelValues(result).Inc()
}

func (r *Recorder) VanishEntryParsed(skipped bool) {
	if r == nil {
		return
	}
	outcome := "parsed"
	if skipped {
		outcome = "skipped"
	}
	r.vanishEntriesParsed.WithLabelValues(outcome).Inc()
}

func (r *Recorder) CursorAdvanced() {
	if r == nil {
		return
	}
	r.cursorAdvances.Inc()
}
