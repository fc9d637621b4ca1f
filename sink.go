package eventz

import (
	"fmt"
	"io"
)

// Sink consumes emitted output tuples one at a time. Consume is
// side-effecting (print, persist, forward) and should return quickly; a
// sink that blocks indefinitely wedges its branch. An error returned from
// Consume is fatal to the branch it serves and to that branch only.
type Sink[T any] interface {
	// Consume handles one emitted tuple.
	Consume(tuple T) error

	// Name returns a descriptive name for the sink.
	Name() string
}

// SinkFunc adapts a plain function into a Sink.
type SinkFunc[T any] func(T) error

// Consume calls the function.
func (f SinkFunc[T]) Consume(tuple T) error {
	return f(tuple)
}

// Name returns the generic sink-func name.
func (SinkFunc[T]) Name() string {
	return "sink-func"
}

// WriterSink prints each tuple to an io.Writer, one per line, prefixed with
// the sink's name. It mirrors the classic print sink of streaming demos.
type WriterSink[T any] struct {
	w    io.Writer
	name string
}

// NewWriterSink creates a sink writing formatted tuples to w.
//
// Example:
//
//	sink := eventz.NewWriterSink[OrderStat](os.Stdout).WithName("Sink-1")
//	// Sink-1: {Type:1 Count:3 AvgPrice:42}
func NewWriterSink[T any](w io.Writer) *WriterSink[T] {
	return &WriterSink[T]{
		w:    w,
		name: "writer-sink",
	}
}

// WithName sets the prefix and name for this sink instance.
func (s *WriterSink[T]) WithName(name string) *WriterSink[T] {
	s.name = name
	return s
}

func (s *WriterSink[T]) Consume(tuple T) error {
	_, err := fmt.Fprintf(s.w, "%s: %+v\n", s.name, tuple)
	return err
}

func (s *WriterSink[T]) Name() string {
	return s.name
}
