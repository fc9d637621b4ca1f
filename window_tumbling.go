package eventz

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
)

// TumblingWindow groups a keyed event-time stream into fixed-size,
// non-overlapping windows and aggregates each (key, window) pair
// incrementally. Windows are created lazily on the first record that falls
// inside them and fire exactly once, when the stream's watermark reaches or
// passes their end. Firing emits one WindowResult per non-empty key and
// purges the window's state; wall-clock time never triggers a firing.
//
// Records whose window has already fired are late: they are dropped,
// counted in the late_records_dropped_total metric, and logged at debug
// level. They never alter an already-emitted result.
type TumblingWindow[T any, K comparable, A, R any] struct {
	size      time.Duration
	keyFn     func(T) K
	agg       AggregateFunction[T, A, R]
	watermark *Watermark
	logger    *zap.SugaredLogger
	name      string
}

// NewTumblingWindow creates a keyed event-time tumbling window aggregator.
// Each record is assigned to the window [floor(ts/size)*size, +size) for
// its key; the pluggable AggregateFunction folds records into per-window
// accumulators as they arrive, so firing is O(windows), not O(records).
//
// When to use:
//   - Per-key counts or sums over fixed event-time intervals
//   - Downsampling an event stream into periodic aggregates
//   - Re-windowing derived streams (any T with a key and a timestamp)
//
// Example:
//
//	// Count orders per type in 1-second windows.
//	window := eventz.NewTumblingWindow(
//		time.Second,
//		func(o Order) int { return o.Type },
//		eventz.NewCountAggregator[Order](),
//	)
//
//	results := window.Process(ctx, elements)
//	for el := range results {
//		if el.IsEvent() {
//			fmt.Printf("%v: %v orders until %s\n",
//				el.Value.Key, el.Value.Result, el.Value.End)
//		}
//	}
//
// Parameters:
//   - size: Window length (e.g. time.Second); must be positive
//   - keyFn: Extracts the grouping key from each record
//   - agg: AggregateFunction folding records into per-window state
//
// Returns a new TumblingWindow processor emitting WindowResult events whose
// event timestamp is the fired window's end, with the input's watermarks
// forwarded downstream.
func NewTumblingWindow[T any, K comparable, A, R any](size time.Duration, keyFn func(T) K, agg AggregateFunction[T, A, R]) *TumblingWindow[T, K, A, R] {
	if size <= 0 {
		size = time.Nanosecond
	}
	return &TumblingWindow[T, K, A, R]{
		size:      size,
		keyFn:     keyFn,
		agg:       agg,
		watermark: NewWatermark(),
		name:      "tumbling-window",
	}
}

// WithName sets a custom name for this processor instance.
func (w *TumblingWindow[T, K, A, R]) WithName(name string) *TumblingWindow[T, K, A, R] {
	w.name = name
	return w
}

// WithLogger sets the logger used to report dropped late records.
func (w *TumblingWindow[T, K, A, R]) WithLogger(logger *zap.SugaredLogger) *TumblingWindow[T, K, A, R] {
	w.logger = logger
	return w
}

// Process consumes an element stream and emits one WindowResult element per
// fired (key, window) pair, interleaved with the forwarded watermarks that
// triggered them. The output closes when the input closes.
func (w *TumblingWindow[T, K, A, R]) Process(ctx context.Context, in <-chan Element[T]) <-chan Element[WindowResult[K, R]] {
	out := make(chan Element[WindowResult[K, R]])
	logger := w.logger

	go func() {
		defer close(out)
		if logger == nil {
			logger = LoggerFromContext(ctx)
		}

		// Accumulator arena indexed by (key, window start). Purge on fire
		// is a single delete.
		accumulators := make(map[windowKey[K]]A)

		for el := range in {
			switch el.Kind {
			case EventElement:
				window := WindowOf(el.Time, w.size)
				if !window.End.After(w.watermark.Current()) {
					// The owning window already fired.
					lateRecordsDropped.WithLabelValues(w.name).Inc()
					logger.Debugw("dropped late record",
						"operator", w.name,
						"timestamp", el.Time,
						"watermark", w.watermark.Current(),
					)
					continue
				}

				wk := windowKey[K]{key: w.keyFn(el.Value), start: window.Start.UnixNano()}
				acc, ok := accumulators[wk]
				if !ok {
					acc = w.agg.CreateAccumulator()
				}
				accumulators[wk] = w.agg.Add(el.Value, acc)

			case WatermarkElement:
				if !w.watermark.Advance(el.Time) && el.Time.Before(w.watermark.Current()) {
					// Upstream should have clamped this; never regress.
					watermarkRegressions.WithLabelValues(w.name).Inc()
					continue
				}

				if !w.fire(ctx, accumulators, out) {
					return
				}

				select {
				case out <- WatermarkOf[WindowResult[K, R]](el.Time):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}

// fire emits and purges every window whose end the watermark has reached,
// oldest first. Returns false if the context was canceled mid-flush.
func (w *TumblingWindow[T, K, A, R]) fire(ctx context.Context, accumulators map[windowKey[K]]A, out chan<- Element[WindowResult[K, R]]) bool {
	watermark := w.watermark.Current()

	var due []windowKey[K]
	for wk := range accumulators {
		end := time.Unix(0, wk.start).Add(w.size)
		if !end.After(watermark) {
			due = append(due, wk)
		}
	}
	if len(due) == 0 {
		return true
	}

	// Deterministic emission order: earliest window first.
	sort.Slice(due, func(i, j int) bool { return due[i].start < due[j].start })

	for _, wk := range due {
		window := Window{Start: time.Unix(0, wk.start), End: time.Unix(0, wk.start).Add(w.size)}
		result := WindowResult[K, R]{
			Key:    wk.key,
			Result: w.agg.GetResult(accumulators[wk]),
			Start:  window.Start,
			End:    window.End,
		}
		delete(accumulators, wk)
		windowsFired.WithLabelValues(w.name).Inc()

		select {
		case out <- EventOf(result, window.End):
		case <-ctx.Done():
			return false
		}
	}
	return true
}

func (w *TumblingWindow[T, K, A, R]) Name() string {
	return w.name
}
