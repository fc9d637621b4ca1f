package eventz

import (
	"context"
	"sync"
	"time"
)

// FanIn merges multiple Element streams into one while keeping the merged
// watermark honest: events pass through as they arrive, but a watermark is
// only forwarded once every input has reached it. The merged watermark is
// the minimum across all inputs, so a window downstream can never fire
// while a slower partition might still deliver records belonging to it.
//
// A closed input is treated as having reached EndOfStream and stops holding
// the minimum back.
type FanIn[T any] struct {
	name string
}

// NewFanIn creates a processor that merges multiple Element channels into
// one with min-watermark semantics.
//
// When to use:
//   - Rejoining the outputs of key-partitioned parallel operators
//   - Merging several assigned source streams into one logical stream
//
// Example:
//
//	branches := partition.Process(ctx, elements)
//	outputs := make([]<-chan Element[WindowResult[int, int64]], len(branches))
//	for i, branch := range branches {
//		outputs[i] = windows[i].Process(ctx, branch)
//	}
//	merged := eventz.NewFanIn[WindowResult[int, int64]]().Process(ctx, outputs...)
//
// Returns a new FanIn processor. Its output closes after all inputs close,
// final EndOfStream watermark included.
func NewFanIn[T any]() *FanIn[T] {
	return &FanIn[T]{
		name: "fanin",
	}
}

// Process merges the inputs into a single Element channel. Events are
// forwarded immediately; watermarks are withheld until the minimum across
// all inputs advances.
func (f *FanIn[T]) Process(ctx context.Context, ins ...<-chan Element[T]) <-chan Element[T] {
	out := make(chan Element[T])

	type update struct {
		el    Element[T]
		input int
		eos   bool
	}

	updates := make(chan update)
	var wg sync.WaitGroup

	for i, in := range ins {
		wg.Add(1)
		go func(idx int, ch <-chan Element[T]) {
			defer wg.Done()
			for {
				select {
				case el, ok := <-ch:
					if !ok {
						select {
						case updates <- update{input: idx, eos: true}:
						case <-ctx.Done():
						}
						return
					}
					select {
					case updates <- update{el: el, input: idx}:
					case <-ctx.Done():
						return
					}
				case <-ctx.Done():
					return
				}
			}
		}(i, in)
	}

	go func() {
		wg.Wait()
		close(updates)
	}()

	go func() {
		defer close(out)

		merged := newMinWatermarks(len(ins))
		emitted := NewWatermark()

		for u := range updates {
			if u.eos {
				if !f.forward(ctx, out, merged.markClosed(u.input), emitted) {
					return
				}
				continue
			}

			if u.el.IsWatermark() {
				if !f.forward(ctx, out, merged.update(u.input, u.el.Time), emitted) {
					return
				}
				continue
			}

			select {
			case out <- u.el:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// forward emits the merged watermark if it advanced. Returns false on
// cancellation.
func (f *FanIn[T]) forward(ctx context.Context, out chan<- Element[T], min time.Time, emitted *Watermark) bool {
	if !emitted.Advance(min) {
		return true
	}
	select {
	case out <- WatermarkOf[T](min):
		return true
	case <-ctx.Done():
		return false
	}
}

func (f *FanIn[T]) Name() string {
	return f.name
}
