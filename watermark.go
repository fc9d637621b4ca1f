package eventz

import (
	"math"
	"time"

	"go.uber.org/atomic"
)

// Watermark tracks a monotonically non-decreasing event-time bound for a
// single logical stream. It starts at -inf and only moves forward: an
// Advance with an earlier candidate is rejected and the current value is
// retained, so a regressing assigner can never un-fire a window.
//
// The value is stored as unix nanoseconds in an atomic, so readers on other
// goroutines (partitioned operators, metrics) observe it without locking.
type Watermark struct {
	nanos *atomic.Int64
}

// NewWatermark returns a watermark initialized to -inf, i.e. before any
// assignable event timestamp.
func NewWatermark() *Watermark {
	return &Watermark{
		nanos: atomic.NewInt64(math.MinInt64),
	}
}

// Current returns the watermark's present value. Before any advance this is
// earlier than every valid timestamp.
func (w *Watermark) Current() time.Time {
	return time.Unix(0, w.nanos.Load())
}

// Advance proposes a new watermark value. It returns true if the watermark
// moved forward. A candidate at or before the current value leaves the
// watermark unchanged and returns false; callers treat that as the
// out-of-order-watermark condition and count it rather than failing.
func (w *Watermark) Advance(t time.Time) bool {
	candidate := t.UnixNano()
	for {
		current := w.nanos.Load()
		if candidate <= current {
			return false
		}
		if w.nanos.CompareAndSwap(current, candidate) {
			return true
		}
	}
}

// Closed reports whether the watermark has reached EndOfStream.
func (w *Watermark) Closed() bool {
	return w.nanos.Load() >= EndOfStream.UnixNano()
}

// minWatermarks holds one watermark value per merged input and exposes the
// minimum across all of them. FanIn uses it so a merged stream never claims
// a watermark a slower input has not reached yet.
type minWatermarks struct {
	inputs []int64
}

func newMinWatermarks(n int) *minWatermarks {
	inputs := make([]int64, n)
	for i := range inputs {
		inputs[i] = math.MinInt64
	}
	return &minWatermarks{inputs: inputs}
}

// update records input i reaching t and returns the minimum watermark
// across all inputs afterwards. Closed inputs are pinned at EndOfStream via
// markClosed so they stop holding the minimum back.
func (m *minWatermarks) update(i int, t time.Time) time.Time {
	if nanos := t.UnixNano(); nanos > m.inputs[i] {
		m.inputs[i] = nanos
	}
	return m.min()
}

func (m *minWatermarks) markClosed(i int) time.Time {
	m.inputs[i] = EndOfStream.UnixNano()
	return m.min()
}

func (m *minWatermarks) min() time.Time {
	lowest := int64(math.MaxInt64)
	for _, nanos := range m.inputs {
		if nanos < lowest {
			lowest = nanos
		}
	}
	return time.Unix(0, lowest)
}
