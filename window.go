package eventz

import (
	"time"
)

// Window is a fixed-length, non-overlapping event-time bucket identified by
// its boundaries. Windows are left-inclusive and right-exclusive: a record
// with timestamp t belongs to the window with Start <= t < End.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// WindowOf computes the tumbling window of the given size that contains ts:
// start = floor(ts/size)*size relative to the unix epoch, end = start+size.
// Size must be positive.
func WindowOf(ts time.Time, size time.Duration) Window {
	nanos := ts.UnixNano()
	span := size.Nanoseconds()
	// Euclidean modulo keeps the floor correct for pre-epoch timestamps.
	offset := ((nanos % span) + span) % span
	start := time.Unix(0, nanos-offset)
	return Window{Start: start, End: start.Add(size)}
}

// WindowResult is the immutable tuple emitted exactly once when a keyed
// window fires: the key, the extracted aggregate, and the window bounds.
type WindowResult[K comparable, R any] struct {
	// Key is the grouping attribute the window was keyed by.
	Key K

	// Result is the aggregate extracted by AggregateFunction.GetResult.
	Result R

	// Start and End are the fired window's boundaries. End doubles as the
	// result's own event timestamp when results are re-windowed.
	Start time.Time
	End   time.Time
}

// windowKey is the composite accumulator-arena index. Keeping one flat map
// keyed by (key, window start) makes purge-on-fire a single delete.
type windowKey[K comparable] struct {
	key   K
	start int64
}
