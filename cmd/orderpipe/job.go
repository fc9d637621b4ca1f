package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zoobzio/eventz"
)

// runJob wires and runs the full dataflow:
//
//	orders -> timestamps -> keyed 1s count windows -+
//	                                                 +-> join -> Sink-1
//	type stats ------------------------------------+         \
//	                                                           +-> constant
//	                                                           timestamps ->
//	                                                           re-window -> Sink-2
func runJob(parent context.Context, cfg config) error {
	logger := eventz.NewLogger()
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = eventz.WithLogger(ctx, logger)

	logger.Infow("starting orderpipe",
		"orders", cfg.Orders,
		"window", cfg.Window,
		"rewindow", cfg.Rewindow,
		"parallelism", cfg.Parallelism,
	)

	// Branch A: orders, timestamped from the order time, counted per type.
	orders := newOrderSource(cfg.Orders, cfg.Seed).Emit(ctx)
	assigner := eventz.NewTimestampAssigner(orderTimestamp(cfg.TZOffset)).
		WithName("order-timestamps").
		WithLogger(logger)
	counts := countOrders(ctx, cfg, assigner.Process(ctx, orders), logger)
	countValues := eventz.NewEventValues[eventz.WindowResult[int, int64]]().Process(ctx, counts)

	// Branch B: per-type price statistics, no meaningful event time.
	stats := newTypeStatSource().Emit(ctx)

	join := eventz.NewJoin(
		func(c eventz.WindowResult[int, int64]) int { return c.Key },
		func(s TypeStat) int { return s.Type },
		func(c eventz.WindowResult[int, int64], s TypeStat) OrderStat {
			return OrderStat{Type: c.Key, Count: c.Result, AvgPrice: s.AvgPrice}
		},
	).WithName("order-stat-join")
	joined := join.Process(ctx, countValues, stats)

	branches := eventz.NewFanOut[OrderStat](2).Process(ctx, joined)

	// Second branch: degenerate timestamps, one huge window, count again.
	rewindowIn := eventz.NewConstantTimestamps[OrderStat](time.Unix(0, 0)).
		WithName("rewindow-timestamps").
		Process(ctx, branches[1])
	rewindow := eventz.NewTumblingWindow(
		cfg.Rewindow,
		func(s OrderStat) int { return s.Type },
		eventz.NewCountAggregator[OrderStat](),
	).WithName("rewindow-count").WithLogger(logger)
	rewindowed := eventz.NewEventValues[eventz.WindowResult[int, int64]]().
		Process(ctx, rewindow.Process(ctx, rewindowIn))

	pipeline := eventz.NewPipeline().WithLogger(logger)
	eventz.RunSink(ctx, pipeline, branches[0], eventz.NewWriterSink[OrderStat](os.Stdout).WithName("Sink-1"))
	eventz.RunSink(ctx, pipeline, rewindowed, eventz.NewWriterSink[eventz.WindowResult[int, int64]](os.Stdout).WithName("Sink-2"))

	done := make(chan struct{})
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(done)
		return pipeline.Wait()
	})

	if cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           promhttp.Handler(),
			ReadHeaderTimeout: 3 * time.Second,
		}
		g.Go(func() error {
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			select {
			case <-done:
			case <-ctx.Done():
			}
			return srv.Shutdown(context.Background())
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("orderpipe failed: %w", err)
	}
	logger.Infow("orderpipe complete")
	return nil
}

// countOrders builds the keyed tumbling count window over the order
// stream, partitioned by type when parallelism is above one.
func countOrders(ctx context.Context, cfg config, elements <-chan eventz.Element[Order], logger *zap.SugaredLogger) <-chan eventz.Element[eventz.WindowResult[int, int64]] {
	keyFn := func(o Order) int { return o.Type }

	if cfg.Parallelism <= 1 {
		window := eventz.NewTumblingWindow(cfg.Window, keyFn, eventz.NewCountAggregator[Order]()).
			WithName("order-count").
			WithLogger(logger)
		return window.Process(ctx, elements)
	}

	partition := eventz.NewPartition(cfg.Parallelism, keyFn).WithName("order-partition")
	outputs := make([]<-chan eventz.Element[eventz.WindowResult[int, int64]], 0, cfg.Parallelism)
	for i, branch := range partition.Process(ctx, elements) {
		window := eventz.NewTumblingWindow(cfg.Window, keyFn, eventz.NewCountAggregator[Order]()).
			WithName(fmt.Sprintf("order-count-%d", i)).
			WithLogger(logger)
		outputs = append(outputs, window.Process(ctx, branch))
	}
	return eventz.NewFanIn[eventz.WindowResult[int, int64]]().Process(ctx, outputs...)
}
