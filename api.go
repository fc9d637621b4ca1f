// Package eventz provides type-safe, composable event-time stream processing
// primitives that work with Go channels: timestamp assignment, watermarks,
// keyed tumbling window aggregation, and stream joins.
//
// Unlike wall-clock windowing, every operator in eventz is driven by event
// time. Records are wrapped into Element values carrying their assigned
// timestamp, and watermark punctuations flow in-band through the same
// channels. A watermark asserts that no earlier-timestamped record will
// arrive; it is the sole trigger for window firing, which makes pipelines
// deterministic and independent of processing speed.
//
// Basic usage:
//
//	ctx := context.Background()
//	orders := make(chan Order)
//
//	// Assign event timestamps; the watermark tracks the max seen so far.
//	assigner := eventz.NewTimestampAssigner(func(o Order) time.Time {
//		return o.OrderTime
//	})
//
//	// Count orders per type in 1-second tumbling windows.
//	window := eventz.NewTumblingWindow(
//		time.Second,
//		func(o Order) int { return o.Type },
//		eventz.NewCountAggregator[Order](),
//	)
//
//	counts := window.Process(ctx, assigner.Process(ctx, orders))
//	for el := range counts {
//		if el.IsEvent() {
//			r := el.Value
//			fmt.Printf("type=%d count=%d end=%s\n", r.Key, r.Result, r.End)
//		}
//	}
//
// Closing a bounded source's channel advances the watermark to EndOfStream,
// flushing every pending window, so no result is lost on completion.
//
// The package also provides:
//   - Stream equi-joins over two keyed streams (Join)
//   - Key-partitioned parallel execution (Partition, FanIn)
//   - Fan-out to independent consumers (FanOut)
//   - Sink drivers with branch-isolated failure handling (Pipeline)
package eventz

import (
	"context"
)

// Processor is the core interface for stream processing components.
// It transforms an input channel of type In to an output channel of type Out.
// Processors should:
//   - Close the output channel when the input channel is closed
//   - Respect context cancellation
//   - Handle errors gracefully (typically by skipping problematic items)
//   - Be safe for concurrent use
type Processor[In, Out any] interface {
	// Process transforms the input channel to an output channel.
	// It should close the output channel when processing is complete.
	Process(ctx context.Context, in <-chan In) <-chan Out

	// Name returns a descriptive name for the processor, useful for debugging.
	Name() string
}
