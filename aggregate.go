package eventz

import (
	"fmt"
)

// AggregateFunction folds records of type T into an accumulator of type A
// and extracts a result of type R when the owning window fires.
//
// Implementations must be pure with respect to the accumulator: Add and
// Merge return the updated state rather than mutating shared structures, so
// a single function instance can serve every (key, window) pair.
type AggregateFunction[T, A, R any] interface {
	// CreateAccumulator returns the identity state for a new window.
	CreateAccumulator() A

	// Add folds one record into the accumulator and returns the new state.
	Add(value T, acc A) A

	// Merge combines two accumulators of the same window. It is only
	// invoked when partial aggregates are consolidated; tumbling windows
	// with exclusive state never call it during normal operation.
	Merge(a, b A) A

	// GetResult extracts the final value when the window fires.
	GetResult(acc A) R
}

// CountAggregator counts records: the accumulator starts at zero, every Add
// increments it by one, Merge sums two counts, and GetResult returns the
// count unchanged.
type CountAggregator[T any] struct{}

// NewCountAggregator returns a counting AggregateFunction.
func NewCountAggregator[T any]() CountAggregator[T] {
	return CountAggregator[T]{}
}

func (CountAggregator[T]) CreateAccumulator() int64 { return 0 }

func (CountAggregator[T]) Add(_ T, acc int64) int64 { return acc + 1 }

func (CountAggregator[T]) Merge(a, b int64) int64 { return a + b }

func (CountAggregator[T]) GetResult(acc int64) int64 { return acc }

// SumAggregator sums a numeric field extracted from each record.
type SumAggregator[T any, N ~int | ~int32 | ~int64 | ~float32 | ~float64] struct {
	field func(T) N
}

// NewSumAggregator returns an AggregateFunction summing field over the
// window's records.
func NewSumAggregator[T any, N ~int | ~int32 | ~int64 | ~float32 | ~float64](field func(T) N) SumAggregator[T, N] {
	return SumAggregator[T, N]{field: field}
}

func (s SumAggregator[T, N]) CreateAccumulator() N { return 0 }

func (s SumAggregator[T, N]) Add(value T, acc N) N { return acc + s.field(value) }

func (s SumAggregator[T, N]) Merge(a, b N) N { return a + b }

func (s SumAggregator[T, N]) GetResult(acc N) N { return acc }

// Average is the accumulator of AvgAggregator.
type Average struct {
	Sum   float64
	Count int64
}

// Value returns the computed average.
func (a Average) Value() float64 {
	if a.Count == 0 {
		return 0
	}
	return a.Sum / float64(a.Count)
}

// String returns a string representation of the running average.
func (a Average) String() string {
	return fmt.Sprintf("Sum: %v, Count: %d, Avg: %v", a.Sum, a.Count, a.Value())
}

// AvgAggregator computes the mean of a numeric field over a window.
type AvgAggregator[T any] struct {
	field func(T) float64
}

// NewAvgAggregator returns an AggregateFunction averaging field over the
// window's records.
func NewAvgAggregator[T any](field func(T) float64) AvgAggregator[T] {
	return AvgAggregator[T]{field: field}
}

func (AvgAggregator[T]) CreateAccumulator() Average { return Average{} }

func (v AvgAggregator[T]) Add(value T, acc Average) Average {
	acc.Sum += v.field(value)
	acc.Count++
	return acc
}

func (AvgAggregator[T]) Merge(a, b Average) Average {
	return Average{Sum: a.Sum + b.Sum, Count: a.Count + b.Count}
}

func (AvgAggregator[T]) GetResult(acc Average) float64 { return acc.Value() }
