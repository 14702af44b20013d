// Command vanish-listener is the older variant of vanish-subscriber (§6):
// same stream, same deletion pipeline, its own persisted cursor so the two
// can run side by side without racing each other's progress.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/nostrtools/eventdeleter/internal/config"
	"github.com/nostrtools/eventdeleter/internal/logger"
	"github.com/nostrtools/eventdeleter/pkg/aggregator"
	"github.com/nostrtools/eventdeleter/pkg/metrics"
	metricsprom "github.com/nostrtools/eventdeleter/pkg/metrics/prometheus"
	"github.com/nostrtools/eventdeleter/pkg/model"
	"github.com/nostrtools/eventdeleter/pkg/relaycommander"
	"github.com/nostrtools/eventdeleter/pkg/shutdown"
	"github.com/nostrtools/eventdeleter/pkg/vanishstream"
)

// maxBatchSize and channelCapacity are hardcoded for the vanish daemons (§6).
const (
	maxBatchSize       = 50
	channelCapacity    = 10
	defaultFlushPeriod = 10 * time.Second
)

var metricsAddr string

var rootCmd = &cobra.Command{
	Use:           "vanish-listener",
	Short:         "Delete events by author in response to vanish requests on a Redis stream",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
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
	cfg, err := config.LoadVanishDaemon(cmd.Flags())
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

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("parse REDIS_URL: %w", err)
	}
	redisClient := redis.NewClient(opts)

	stream := vanishstream.NewRedisStreamClient(redisClient)
	cursorStore := vanishstream.NewRedisCursorStore(redisClient, vanishstream.ListenerCursorKey)
	commander := relaycommander.New(relaycommander.NewShellDeleter())

	deleteReqs := make(chan model.DeleteRequest, channelCapacity)
	ackSink := make(chan model.DeleteRequest, channelCapacity)
	ackSinkDone := make(chan struct{})

	consumer := vanishstream.NewConsumer(stream, cursorStore, deleteReqs).WithMetrics(recorder)
	agg := aggregator.New(commander, aggregator.Config{
		BatchSize:   maxBatchSize,
		FlushPeriod: defaultFlushPeriod,
		DryRun:      cfg.DryRun,
	}).WithMetrics(recorder)

	coord.Go(func() {
		defer close(deleteReqs)
		consumer.RunReader(ctx)
	})

	coord.Go(func() {
		agg.Run(ctx, deleteReqs, ackSink, ackSinkDone)
	})

	coord.Go(func() {
		consumer.RunAckTask(ctx, ackSink)
	})

	coord.Wait()
	logger.Info("vanish-listener drained, exiting")
	return nil
}

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
