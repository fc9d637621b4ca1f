package eventz

import (
	"context"

	"go.uber.org/zap"
)

// Join correlates two keyed, append-only streams by key equality: a
// streaming inner equi-join over two changelogs. Each side keeps the
// most-recently-seen value per key (last-write-wins); whenever an arrival's
// key already has a value on the other side, exactly one joined tuple is
// emitted from both sides' latest values.
//
// The operator retains state for every key it has seen and never evicts,
// which is appropriate for bounded keyspaces and bounded inputs. A key
// present on one side only never emits; that is the normal unmatched case,
// not a fault.
type Join[L, R any, K comparable, O any] struct {
	leftKey  func(L) K
	rightKey func(R) K
	joinFn   func(L, R) O
	logger   *zap.SugaredLogger
	name     string
}

// NewJoin creates a streaming equi-join over two keyed streams.
//
// When to use:
//   - Enriching windowed aggregates with reference data keyed the same way
//   - Correlating the latest state of two asynchronously produced streams
//   - Any inner join where last-value-wins per key is the right semantics
//
// Example:
//
//	// Join per-type order counts with per-type price stats.
//	join := eventz.NewJoin(
//		func(c OrderCount) int { return c.Key },
//		func(s TypeStat) int { return s.Type },
//		func(c OrderCount, s TypeStat) OrderStat {
//			return OrderStat{Type: c.Key, Count: c.Result, AvgPrice: s.AvgPrice}
//		},
//	)
//
//	joined := join.Process(ctx, counts, stats)
//
// Arrival order between the two sides does not matter: whichever side
// completes a key triggers the emission. A repeated value for a key
// replaces the stored one and re-emits with the other side's latest value.
//
// Parameters:
//   - leftKey: Extracts the join key from left-side values
//   - rightKey: Extracts the join key from right-side values
//   - joinFn: Combines both sides' latest values into the output tuple
//
// Returns a new Join processor. Its output closes once both inputs are
// closed.
func NewJoin[L, R any, K comparable, O any](leftKey func(L) K, rightKey func(R) K, joinFn func(L, R) O) *Join[L, R, K, O] {
	return &Join[L, R, K, O]{
		leftKey:  leftKey,
		rightKey: rightKey,
		joinFn:   joinFn,
		name:     "join",
	}
}

// WithName sets a custom name for this processor instance.
func (j *Join[L, R, K, O]) WithName(name string) *Join[L, R, K, O] {
	j.name = name
	return j
}

// WithLogger sets the logger for this processor instance.
func (j *Join[L, R, K, O]) WithLogger(logger *zap.SugaredLogger) *Join[L, R, K, O] {
	j.logger = logger
	return j
}

// Process runs the join state machine over both inputs. Left and right
// updates are serialized through a single goroutine, so the two per-side
// maps need no locking and every emission sees a consistent pair.
func (j *Join[L, R, K, O]) Process(ctx context.Context, left <-chan L, right <-chan R) <-chan O {
	out := make(chan O)

	go func() {
		defer close(out)

		leftState := make(map[K]L)
		rightState := make(map[K]R)

		for left != nil || right != nil {
			select {
			case value, ok := <-left:
				if !ok {
					left = nil
					continue
				}
				key := j.leftKey(value)
				leftState[key] = value
				if other, matched := rightState[key]; matched {
					if !j.emit(ctx, out, j.joinFn(value, other)) {
						return
					}
				}

			case value, ok := <-right:
				if !ok {
					right = nil
					continue
				}
				key := j.rightKey(value)
				rightState[key] = value
				if other, matched := leftState[key]; matched {
					if !j.emit(ctx, out, j.joinFn(other, value)) {
						return
					}
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

func (j *Join[L, R, K, O]) emit(ctx context.Context, out chan<- O, tuple O) bool {
	joinedTuples.WithLabelValues(j.name).Inc()
	select {
	case out <- tuple:
		return true
	case <-ctx.Done():
		return false
	}
}

func (j *Join[L, R, K, O]) Name() string {
	return j.name
}
