package eventz

import (
	"context"
	"math"
	"time"
)

// ElementKind discriminates the two kinds of stream elements.
type ElementKind int

const (
	// EventElement is a record with an assigned event timestamp.
	EventElement ElementKind = iota

	// WatermarkElement is a punctuation asserting that no record with an
	// event timestamp at or before Time will arrive on this stream.
	WatermarkElement
)

// EndOfStream is the terminal watermark. A bounded source's exhaustion
// advances the stream's watermark to EndOfStream, which is later than any
// assignable event timestamp and therefore flushes every pending window.
var EndOfStream = time.Unix(0, math.MaxInt64)

// Element is the unit of flow on an event-time stream: either an event
// carrying a value and its assigned timestamp, or a watermark punctuation.
// Watermarks travel in-band so every downstream operator observes time
// advance at the correct point in stream order.
type Element[T any] struct {
	// Value is the record payload. Zero for watermarks.
	Value T

	// Time is the event timestamp for events, or the watermark value for
	// watermark elements.
	Time time.Time

	// Kind tells events and watermarks apart.
	Kind ElementKind
}

// IsEvent reports whether the element is a record.
func (e Element[T]) IsEvent() bool {
	return e.Kind == EventElement
}

// IsWatermark reports whether the element is a watermark punctuation.
func (e Element[T]) IsWatermark() bool {
	return e.Kind == WatermarkElement
}

// EventOf wraps a value and its assigned event timestamp into an Element.
func EventOf[T any](value T, ts time.Time) Element[T] {
	return Element[T]{Value: value, Time: ts, Kind: EventElement}
}

// WatermarkOf builds a watermark punctuation element.
func WatermarkOf[T any](ts time.Time) Element[T] {
	return Element[T]{Time: ts, Kind: WatermarkElement}
}

// EventValues strips watermark punctuations from an element stream,
// yielding the plain record values. It is the bridge from an event-time
// stream back to a value stream for operators that do not care about
// time, such as joins and sinks.
type EventValues[T any] struct {
	name string
}

// NewEventValues creates a processor that unwraps events from an
// Element stream and discards watermarks.
//
// Example:
//
//	results := window.Process(ctx, elements)
//	values := eventz.NewEventValues[WindowResult[int, int64]]().Process(ctx, results)
//	for r := range values {
//		fmt.Println(r.Key, r.Result)
//	}
func NewEventValues[T any]() *EventValues[T] {
	return &EventValues[T]{
		name: "event-values",
	}
}

func (v *EventValues[T]) Process(ctx context.Context, in <-chan Element[T]) <-chan T {
	out := make(chan T)

	go func() {
		defer close(out)

		for el := range in {
			if !el.IsEvent() {
				continue
			}
			select {
			case out <- el.Value:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

func (v *EventValues[T]) Name() string {
	return v.name
}
