// Command spam-cleaner reads Nostr events as JSONL on stdin, validates each
// one against the reference reply-copy/forbidden-name policy, and issues
// deletions for whatever it rejects (C1-C5).
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/nostrtools/eventdeleter/internal/config"
	"github.com/nostrtools/eventdeleter/internal/jsonlreader"
	"github.com/nostrtools/eventdeleter/internal/logger"
	"github.com/nostrtools/eventdeleter/pkg/aggregator"
	"github.com/nostrtools/eventdeleter/pkg/metrics"
	metricsprom "github.com/nostrtools/eventdeleter/pkg/metrics/prometheus"
	"github.com/nostrtools/eventdeleter/pkg/model"
	"github.com/nostrtools/eventdeleter/pkg/relaycommander"
	"github.com/nostrtools/eventdeleter/pkg/shutdown"
	"github.com/nostrtools/eventdeleter/pkg/validationworker"
	"github.com/nostrtools/eventdeleter/pkg/validator"
	"github.com/nostrtools/eventdeleter/pkg/workerpool"
)

// defaultFlushPeriod is the aggregator's flush interval (§6: "default
// 10-30s"); it is not exposed as a flag, only max_batch_size and the
// per-task timeout are.
const defaultFlushPeriod = 15 * time.Second

var metricsAddr string

var rootCmd = &cobra.Command{
	Use:           "spam-cleaner",
	Short:         "Validate Nostr events from stdin and delete what fails policy",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().IntP("buffer-size", "b", 10, "max_batch_size for the deletion aggregator")
	rootCmd.Flags().IntP("concurrency-limit", "c", 10, "num_workers for the validation pool")
	rootCmd.Flags().IntP("validation-timeout", "t", 10, "per-task timeout in seconds, for both the pool and the validator")
	rootCmd.Flags().BoolP("dry-run", "d", false, "pass --dry-run to the external deletion command")
	rootCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address to serve Prometheus /metrics on (default: disabled)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadSpamCleaner(cmd.Flags())
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if err := logger.Init(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	var recorder metrics.Recorder = metrics.Disabled
	if metricsAddr != "" {
		reg := metrics.InitRegistry()
		recorder = metricsprom.NewRecorder()
		serveMetrics(metricsAddr, reg)
	}

	coord := shutdown.New(context.Background())
	coord.WatchSignals()
	ctx := coord.Context()

	logger.Info("connecting to relay", "url", cfg.RelayURL)
	relayClient, err := validator.DialRelayClient(ctx, cfg.RelayURL)
	if err != nil {
		return fmt.Errorf("connect to relay: %w", err)
	}

	policy := validator.NewPolicyValidator(relayClient, nil)
	commander := relaycommander.New(relaycommander.NewShellDeleter())

	deleteReqs := make(chan model.DeleteRequest, cfg.BufferSize)
	sinkDone := make(chan struct{})
	ackSink := make(chan model.DeleteRequest, cfg.BufferSize)
	ackSinkDone := make(chan struct{})

	vWorker := validationworker.New(policy, cfg.ValidationTimeout, deleteReqs, sinkDone).WithMetrics(recorder)
	pool := workerpool.New(cfg.ConcurrencyLimit, cfg.ValidationTimeout, vWorker.Task)

	agg := aggregator.New(commander, aggregator.Config{
		BatchSize:   cfg.BufferSize,
		FlushPeriod: defaultFlushPeriod,
		DryRun:      cfg.DryRun,
	}).WithMetrics(recorder)

	events := make(chan *model.Event, cfg.BufferSize)

	coord.Go(func() {
		defer close(deleteReqs)
		pool.Run(ctx, events)
	})

	coord.Go(func() {
		agg.Run(ctx, deleteReqs, ackSink, ackSinkDone)
		close(sinkDone)
	})

	coord.Go(func() {
		// Acknowledgement means "dequeued and attempted" (§4.5); stdin has no
		// upstream to ack against, so draining is all this does. The
		// aggregator closes ackSink after its final flush, including the
		// batch flushed while draining on shutdown, so this loop always sees
		// every ack before exiting.
		for range ackSink {
		}
	})

	// Not tracked by the coordinator: a blocking read on stdin cannot be
	// interrupted by cancellation, so on shutdown this goroutine may be
	// abandoned mid-read once the pool stops accepting events. The normal
	// path (EOF) still closes events and lets the pipeline drain per §4.7.
	go func() {
		defer close(events)
		jsonlreader.ReadInto(os.Stdin, events)
	}()

	coord.Wait()
	logger.Info("spam-cleaner drained, exiting")
	return nil
}

// serveMetrics starts a background HTTP server exposing /metrics. It is not
// tracked by the shutdown coordinator: it has no state to drain, and the
// process exits right after coord.Wait() returns.
func serveMetrics(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("metrics server stopped", "error", err)
		}
	}()
	logger.Info("metrics server listening", "addr", addr)
}
