package eventz

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// TimestampExtractor derives an event timestamp from a record.
type TimestampExtractor[T any] func(T) time.Time

// TimestampAssigner stamps each record with an event timestamp and
// interleaves watermark punctuations into the output stream. It is the
// entry point of every event-time pipeline: downstream windows fire only
// when the watermark this operator emits passes their end.
//
// Two strategies are supported:
//   - NewTimestampAssigner: derive the timestamp from a record field. The
//     watermark tracks the maximum timestamp seen so far with no extra
//     out-of-orderness allowance, so sorted inputs fire windows as soon as
//     a record beyond the boundary arrives.
//   - NewConstantTimestamps: stamp every record with the same instant. The
//     watermark is pinned there until end of stream, so all records share
//     one window that fires exactly once when the input is exhausted.
//
// When the input channel closes, the assigner emits the EndOfStream
// watermark before closing its output. Every pending window downstream is
// therefore flushed on bounded-source exhaustion; a bounded stream can
// never leak windows.
type TimestampAssigner[T any] struct {
	extract   TimestampExtractor[T]
	watermark *Watermark
	logger    *zap.SugaredLogger
	name      string
	constant  bool
}

// NewTimestampAssigner creates an assigner that derives each record's
// event timestamp with extract and advances the watermark to the maximum
// assigned timestamp observed so far.
//
// Example:
//
//	assigner := eventz.NewTimestampAssigner(func(o Order) time.Time {
//		return o.OrderTime
//	})
//	elements := assigner.Process(ctx, orders)
//
// A record whose timestamp is at or before the current watermark does not
// move the watermark backwards: the candidate is rejected, counted in the
// watermark_regressions_total metric, and the record is still forwarded
// (downstream windows decide whether it is late).
func NewTimestampAssigner[T any](extract TimestampExtractor[T]) *TimestampAssigner[T] {
	return &TimestampAssigner[T]{
		extract:   extract,
		watermark: NewWatermark(),
		name:      "timestamp-assigner",
	}
}

// NewConstantTimestamps creates an assigner that stamps every record with
// the fixed instant t. Use it for streams whose records carry no meaningful
// event time but must still flow through a time-windowed pipeline, such as
// a re-windowed join result.
func NewConstantTimestamps[T any](t time.Time) *TimestampAssigner[T] {
	fixed := t
	return &TimestampAssigner[T]{
		extract:   func(T) time.Time { return fixed },
		watermark: NewWatermark(),
		name:      "constant-timestamps",
		constant:  true,
	}
}

// WithName sets a custom name for this assigner instance.
func (a *TimestampAssigner[T]) WithName(name string) *TimestampAssigner[T] {
	a.name = name
	return a
}

// WithLogger sets the logger used to report watermark regressions.
func (a *TimestampAssigner[T]) WithLogger(logger *zap.SugaredLogger) *TimestampAssigner[T] {
	a.logger = logger
	return a
}

// Watermark exposes the assigner's monotonic watermark tracker.
func (a *TimestampAssigner[T]) Watermark() *Watermark {
	return a.watermark
}

// Process stamps records from in and emits them as events interleaved with
// watermark punctuations. The output is closed after the EndOfStream
// watermark once in is closed.
func (a *TimestampAssigner[T]) Process(ctx context.Context, in <-chan T) <-chan Element[T] {
	out := make(chan Element[T])
	logger := a.logger

	go func() {
		defer close(out)
		if logger == nil {
			logger = LoggerFromContext(ctx)
		}

		for record := range in {
			ts := a.extract(record)

			select {
			case out <- EventOf(record, ts):
			case <-ctx.Done():
				return
			}

			// A candidate equal to the current watermark is a no-op; only
			// a strictly earlier one is an out-of-order regression.
			regressed := !a.constant && ts.Before(a.watermark.Current())
			if a.watermark.Advance(ts) {
				select {
				case out <- WatermarkOf[T](a.watermark.Current()):
				case <-ctx.Done():
					return
				}
			} else if regressed {
				watermarkRegressions.WithLabelValues(a.name).Inc()
				logger.Debugw("rejected out-of-order watermark candidate",
					"operator", a.name,
					"candidate", ts,
					"watermark", a.watermark.Current(),
				)
			}
		}

		// Bounded input exhausted: flush everything downstream.
		a.watermark.Advance(EndOfStream)
		select {
		case out <- WatermarkOf[T](EndOfStream):
		case <-ctx.Done():
		}
	}()

	return out
}

func (a *TimestampAssigner[T]) Name() string {
	return a.name
}
