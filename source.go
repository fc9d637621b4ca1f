package eventz

import (
	"context"
	"time"
)

// Source produces a sequence of typed records onto a channel. A bounded
// source has a known end-of-stream point: its channel closes on exhaustion,
// which is the signal that lets a downstream TimestampAssigner advance the
// watermark to EndOfStream and flush all pending windows.
type Source[T any] interface {
	// Emit starts producing records. The returned channel is closed when
	// the source is exhausted or the context is canceled.
	Emit(ctx context.Context) <-chan T

	// Bounded reports whether the source has a known end of stream.
	Bounded() bool

	// Name returns a descriptive name for the source.
	Name() string
}

// SliceSource is a bounded source that replays an in-memory slice in order,
// optionally pacing emissions on a Clock.
type SliceSource[T any] struct {
	records []T
	clock   Clock
	pace    time.Duration
	name    string
}

// NewSliceSource creates a bounded source over the given records. With the
// default configuration records are emitted as fast as downstream consumes
// them.
//
// Example:
//
//	source := eventz.NewSliceSource(orders).WithPace(10*time.Millisecond, clk)
//	elements := assigner.Process(ctx, source.Emit(ctx))
func NewSliceSource[T any](records []T) *SliceSource[T] {
	return &SliceSource[T]{
		records: records,
		clock:   RealClock,
		name:    "slice-source",
	}
}

// WithPace spaces emissions by d on the given clock. Tests pass a fake
// clock for deterministic pacing.
func (s *SliceSource[T]) WithPace(d time.Duration, clock Clock) *SliceSource[T] {
	if d < 0 {
		d = 0
	}
	s.pace = d
	if clock != nil {
		s.clock = clock
	}
	return s
}

// WithName sets a custom name for this source instance.
func (s *SliceSource[T]) WithName(name string) *SliceSource[T] {
	s.name = name
	return s
}

func (s *SliceSource[T]) Emit(ctx context.Context) <-chan T {
	out := make(chan T)

	go func() {
		defer close(out)

		for _, record := range s.records {
			select {
			case out <- record:
			case <-ctx.Done():
				return
			}

			if s.pace > 0 {
				timer := s.clock.NewTimer(s.pace)
				select {
				case <-timer.C():
				case <-ctx.Done():
					timer.Stop()
					return
				}
			}
		}
	}()

	return out
}

func (s *SliceSource[T]) Bounded() bool {
	return true
}

func (s *SliceSource[T]) Name() string {
	return s.name
}

// FuncSource is a source driven by a generator function. The generator
// returns the next record, or false when the source is exhausted. A
// generator that never reports exhaustion makes the source unbounded; such
// a source only stops through context cancellation.
type FuncSource[T any] struct {
	next    func(i int) (T, bool)
	bounded bool
	name    string
}

// NewFuncSource creates a source that calls next with an incrementing index
// until it returns false.
//
// Example:
//
//	source := eventz.NewFuncSource(true, func(i int) (Order, bool) {
//		if i >= 50 {
//			var zero Order
//			return zero, false
//		}
//		return makeOrder(i), true
//	})
func NewFuncSource[T any](bounded bool, next func(i int) (T, bool)) *FuncSource[T] {
	return &FuncSource[T]{
		next:    next,
		bounded: bounded,
		name:    "func-source",
	}
}

// WithName sets a custom name for this source instance.
func (s *FuncSource[T]) WithName(name string) *FuncSource[T] {
	s.name = name
	return s
}

func (s *FuncSource[T]) Emit(ctx context.Context) <-chan T {
	out := make(chan T)

	go func() {
		defer close(out)

		for i := 0; ; i++ {
			record, ok := s.next(i)
			if !ok {
				return
			}
			select {
			case out <- record:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

func (s *FuncSource[T]) Bounded() bool {
	return s.bounded
}

func (s *FuncSource[T]) Name() string {
	return s.name
}
