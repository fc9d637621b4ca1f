package eventz

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampAssignerTracksMaxTimestamp(t *testing.T) {
	ctx := context.Background()
	in := make(chan tick)
	assigner := NewTimestampAssigner(func(tk tick) time.Time { return tk.At })
	out := assigner.Process(ctx, in)

	go func() {
		in <- tick{Key: 1, At: at(100)}
		in <- tick{Key: 1, At: at(900)}
		close(in)
	}()

	elements := collectElements(out)
	require.Len(t, elements, 5)

	assert.True(t, elements[0].IsEvent())
	assert.Equal(t, at(100), elements[0].Time)
	assert.True(t, elements[1].IsWatermark())
	assert.Equal(t, at(100), elements[1].Time)

	assert.True(t, elements[2].IsEvent())
	assert.True(t, elements[3].IsWatermark())
	assert.Equal(t, at(900), elements[3].Time)

	// Bounded input exhausted: terminal watermark.
	assert.True(t, elements[4].IsWatermark())
	assert.Equal(t, EndOfStream, elements[4].Time)
	assert.True(t, assigner.Watermark().Closed())
}

func TestTimestampAssignerRejectsRegression(t *testing.T) {
	ctx := context.Background()
	in := make(chan tick)
	assigner := NewTimestampAssigner(func(tk tick) time.Time { return tk.At })
	out := assigner.Process(ctx, in)

	go func() {
		in <- tick{Key: 1, At: at(900)}
		// Out of order: forwarded as an event, but the watermark must not
		// move backwards and no regressed watermark may be emitted.
		in <- tick{Key: 1, At: at(200)}
		close(in)
	}()

	elements := collectElements(out)
	require.Len(t, elements, 4)

	assert.True(t, elements[2].IsEvent())
	assert.Equal(t, at(200), elements[2].Time)
	for _, el := range elements {
		if el.IsWatermark() && !el.Time.Equal(EndOfStream) {
			assert.Equal(t, at(900), el.Time)
		}
	}
}

func TestConstantTimestampsPinsWatermark(t *testing.T) {
	ctx := context.Background()
	in := make(chan string)
	assigner := NewConstantTimestamps[string](time.Unix(0, 0))
	out := assigner.Process(ctx, in)

	go func() {
		in <- "a"
		in <- "b"
		close(in)
	}()

	elements := collectElements(out)
	// Two events, the initial pinned watermark, and the terminal one.
	require.Len(t, elements, 4)

	assert.True(t, elements[0].IsEvent())
	assert.Equal(t, time.Unix(0, 0), elements[0].Time)
	assert.True(t, elements[1].IsWatermark())
	assert.Equal(t, time.Unix(0, 0), elements[1].Time)
	assert.True(t, elements[2].IsEvent())
	assert.Equal(t, time.Unix(0, 0), elements[2].Time)
	assert.Equal(t, EndOfStream, elements[3].Time)
}

func TestTimestampAssignerEndOfStreamAlwaysEmitted(t *testing.T) {
	ctx := context.Background()
	in := make(chan tick)
	assigner := NewTimestampAssigner(func(tk tick) time.Time { return tk.At })
	out := assigner.Process(ctx, in)

	close(in)

	elements := collectElements(out)
	// Even an empty bounded stream must advance its watermark to
	// EndOfStream, otherwise downstream windows would leak.
	require.Len(t, elements, 1)
	assert.True(t, elements[0].IsWatermark())
	assert.Equal(t, EndOfStream, elements[0].Time)
}
