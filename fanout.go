package eventz

import (
	"context"
)

// FanOut duplicates a stream to multiple output channels, giving each
// downstream consumer a complete, independent replay of the input. It is
// the delivery edge between one upstream operator and several sinks or
// branches, such as a join result consumed directly by one sink and
// re-windowed for another.
type FanOut[T any] struct {
	name  string
	count int
}

// NewFanOut creates a processor that duplicates each input item to count
// output channels.
//
// When to use:
//   - Feeding the same stream to independent sinks
//   - Branching a pipeline (e.g. direct output plus re-windowed output)
//   - Broadcasting events to parallel consumers
//
// Example:
//
//	fanout := eventz.NewFanOut[OrderStat](2)
//	branches := fanout.Process(ctx, joined)
//
//	// Branch one goes straight to a sink; branch two is re-windowed.
//	go drain(branches[0])
//	rewindowed := window.Process(ctx, assigner.Process(ctx, branches[1]))
//
// No ordering guarantee holds between the branches; each receives every
// item in input order. A slow branch backpressures the others, since
// delivery is sequential per item.
//
// Parameters:
//   - count: Number of output channels to create
//
// Returns a new FanOut processor that broadcasts to multiple outputs.
func NewFanOut[T any](count int) *FanOut[T] {
	if count < 1 {
		count = 1
	}
	return &FanOut[T]{
		count: count,
		name:  "fanout",
	}
}

func (f *FanOut[T]) Process(ctx context.Context, in <-chan T) []<-chan T {
	outs := make([]<-chan T, f.count)
	channels := make([]chan T, f.count)

	for i := 0; i < f.count; i++ {
		channels[i] = make(chan T)
		outs[i] = channels[i]
	}

	go func() {
		defer func() {
			for _, ch := range channels {
				close(ch)
			}
		}()

		for item := range in {
			for _, ch := range channels {
				select {
				case ch <- item:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return outs
}

func (f *FanOut[T]) Name() string {
	return f.name
}
