package eventz

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/clockz"
)

type recordingSink[T any] struct {
	mu     sync.Mutex
	items  []T
	failOn func(T) error
}

func (s *recordingSink[T]) Consume(tuple T) error {
	if s.failOn != nil {
		if err := s.failOn(tuple); err != nil {
			return err
		}
	}
	s.mu.Lock()
	s.items = append(s.items, tuple)
	s.mu.Unlock()
	return nil
}

func (s *recordingSink[T]) Name() string { return "recording-sink" }

func (s *recordingSink[T]) collected() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]T(nil), s.items...)
}

func TestPipelineDrainsIntoSink(t *testing.T) {
	ctx := context.Background()
	in := make(chan int)
	sink := &recordingSink[int]{}

	p := NewPipeline()
	RunSink(ctx, p, in, sink)

	go func() {
		for i := 0; i < 4; i++ {
			in <- i
		}
		close(in)
	}()

	require.NoError(t, p.Wait())
	assert.Equal(t, []int{0, 1, 2, 3}, sink.collected())
}

func TestPipelineSinkFailureIsolatedToBranch(t *testing.T) {
	ctx := context.Background()
	in := make(chan int)
	branches := NewFanOut[int](2).Process(ctx, in)

	failing := &recordingSink[int]{failOn: func(v int) error {
		if v == 1 {
			return errors.New("disk full")
		}
		return nil
	}}
	healthy := &recordingSink[int]{}

	p := NewPipeline()
	RunSink(ctx, p, branches[0], failing)
	RunSink(ctx, p, branches[1], healthy)

	go func() {
		for i := 0; i < 4; i++ {
			in <- i
		}
		close(in)
	}()

	err := p.Wait()
	require.Error(t, err)
	assert.ErrorContains(t, err, "disk full")

	var streamErr *StreamError[int]
	require.ErrorAs(t, err, &streamErr)
	assert.Equal(t, 1, streamErr.Item)

	// The healthy branch received a complete replay despite the sibling
	// failure, and the failed branch kept draining so nothing blocked.
	assert.Equal(t, []int{0, 1, 2, 3}, healthy.collected())
	assert.Equal(t, []int{0}, failing.collected())
}

func TestPipelineConsumeTimeout(t *testing.T) {
	ctx := context.Background()
	clock := clockz.NewFakeClock()
	in := make(chan int)

	blocked := make(chan struct{})
	stuck := SinkFunc[int](func(int) error {
		<-blocked
		return nil
	})

	p := NewPipeline().WithConsumeTimeout(time.Second, clock)
	RunSink(ctx, p, in, stuck)

	go func() {
		in <- 1
		close(in)
	}()

	// Give the branch a moment to enter Consume, then fire the timeout.
	time.Sleep(20 * time.Millisecond)
	clock.Advance(time.Second)
	clock.BlockUntilReady()

	err := p.Wait()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "consume timeout"))
	close(blocked)
}

func TestWriterSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewWriterSink[string](&buf).WithName("Sink-1")
	require.NoError(t, sink.Consume("hello"))
	assert.Equal(t, "Sink-1: hello\n", buf.String())
	assert.Equal(t, "Sink-1", sink.Name())
}
