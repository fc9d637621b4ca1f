package eventz

import (
	"context"
	"testing"
	"time"
)

// feedElements sends the given elements in order and closes the channel.
func feedElements[T any](in chan<- Element[T], elements ...Element[T]) {
	go func() {
		for _, el := range elements {
			in <- el
		}
		close(in)
	}()
}

// collectElements drains the channel into a slice.
func collectElements[T any](out <-chan Element[T]) []Element[T] {
	var collected []Element[T]
	for el := range out {
		collected = append(collected, el)
	}
	return collected
}

// results filters the fired window results out of an element stream.
func results[K comparable, R any](elements []Element[WindowResult[K, R]]) []WindowResult[K, R] {
	var rs []WindowResult[K, R]
	for _, el := range elements {
		if el.IsEvent() {
			rs = append(rs, el.Value)
		}
	}
	return rs
}

type tick struct {
	Key int
	At  time.Time
}

func at(ms int64) time.Time {
	return time.Unix(0, ms*int64(time.Millisecond))
}

func tickWindow(size time.Duration) *TumblingWindow[tick, int, int64, int64] {
	return NewTumblingWindow(size, func(t tick) int { return t.Key }, NewCountAggregator[tick]())
}

func TestTumblingWindowCountScenario(t *testing.T) {
	ctx := context.Background()
	in := make(chan Element[tick])
	out := tickWindow(time.Second).Process(ctx, in)

	feedElements(in,
		EventOf(tick{Key: 1, At: at(100)}, at(100)),
		EventOf(tick{Key: 1, At: at(300)}, at(300)),
		EventOf(tick{Key: 1, At: at(900)}, at(900)),
		WatermarkOf[tick](at(1000)),
		EventOf(tick{Key: 1, At: at(1200)}, at(1200)),
		WatermarkOf[tick](at(2000)),
	)

	rs := results(collectElements(out))
	if len(rs) != 2 {
		t.Fatalf("expected 2 window results, got %d: %v", len(rs), rs)
	}

	if rs[0].Key != 1 || rs[0].Result != 3 || !rs[0].End.Equal(at(1000)) {
		t.Errorf("first window: expected (key=1, count=3, end=1s), got %+v", rs[0])
	}
	if rs[1].Key != 1 || rs[1].Result != 1 || !rs[1].End.Equal(at(2000)) {
		t.Errorf("second window: expected (key=1, count=1, end=2s), got %+v", rs[1])
	}
}

func TestTumblingWindowFiresOnce(t *testing.T) {
	ctx := context.Background()
	in := make(chan Element[tick])
	out := tickWindow(time.Second).Process(ctx, in)

	feedElements(in,
		EventOf(tick{Key: 1, At: at(100)}, at(100)),
		WatermarkOf[tick](at(1000)),
		WatermarkOf[tick](at(1500)),
		WatermarkOf[tick](at(3000)),
	)

	rs := results(collectElements(out))
	if len(rs) != 1 {
		t.Fatalf("window fired %d times, expected exactly once: %v", len(rs), rs)
	}
}

func TestTumblingWindowDropsLateRecords(t *testing.T) {
	ctx := context.Background()
	in := make(chan Element[tick])
	out := tickWindow(time.Second).Process(ctx, in)

	feedElements(in,
		EventOf(tick{Key: 1, At: at(100)}, at(100)),
		WatermarkOf[tick](at(1000)),
		// Window [0s,1s) fired; this record belongs to it and must be dropped.
		EventOf(tick{Key: 1, At: at(500)}, at(500)),
		WatermarkOf[tick](at(2000)),
	)

	rs := results(collectElements(out))
	if len(rs) != 1 {
		t.Fatalf("expected 1 result, got %d: %v", len(rs), rs)
	}
	if rs[0].Result != 1 {
		t.Errorf("late record altered the emitted result: %+v", rs[0])
	}
}

func TestTumblingWindowOnTimeRecordNotDropped(t *testing.T) {
	ctx := context.Background()
	in := make(chan Element[tick])
	out := tickWindow(time.Second).Process(ctx, in)

	feedElements(in,
		WatermarkOf[tick](at(500)),
		// Watermark is 0.5s; the [0s,1s) window has not fired yet, so an
		// earlier-timestamped record still counts.
		EventOf(tick{Key: 1, At: at(200)}, at(200)),
		WatermarkOf[tick](at(1000)),
	)

	rs := results(collectElements(out))
	if len(rs) != 1 || rs[0].Result != 1 {
		t.Fatalf("on-time record was dropped: %v", rs)
	}
}

func TestTumblingWindowEmptyWindowNeverFires(t *testing.T) {
	ctx := context.Background()
	in := make(chan Element[tick])
	out := tickWindow(time.Second).Process(ctx, in)

	feedElements(in,
		WatermarkOf[tick](at(1000)),
		WatermarkOf[tick](at(5000)),
	)

	elements := collectElements(out)
	if rs := results(elements); len(rs) != 0 {
		t.Fatalf("empty windows fired: %v", rs)
	}
	// Watermarks still flow downstream.
	if len(elements) != 2 {
		t.Errorf("expected 2 forwarded watermarks, got %d", len(elements))
	}
}

func TestTumblingWindowEndOfStreamFlushesAll(t *testing.T) {
	ctx := context.Background()
	in := make(chan Element[tick])
	out := tickWindow(time.Second).Process(ctx, in)

	feedElements(in,
		EventOf(tick{Key: 1, At: at(100)}, at(100)),
		EventOf(tick{Key: 2, At: at(1100)}, at(1100)),
		EventOf(tick{Key: 1, At: at(2100)}, at(2100)),
		WatermarkOf[tick](EndOfStream),
	)

	rs := results(collectElements(out))
	if len(rs) != 3 {
		t.Fatalf("end of stream left windows unflushed: %v", rs)
	}
	// Oldest window first.
	for i := 1; i < len(rs); i++ {
		if rs[i].Start.Before(rs[i-1].Start) {
			t.Errorf("results out of start order: %v", rs)
		}
	}
}

func TestTumblingWindowKeysFireIndependently(t *testing.T) {
	ctx := context.Background()
	in := make(chan Element[tick])
	out := tickWindow(time.Second).Process(ctx, in)

	feedElements(in,
		EventOf(tick{Key: 1, At: at(100)}, at(100)),
		EventOf(tick{Key: 2, At: at(200)}, at(200)),
		EventOf(tick{Key: 2, At: at(300)}, at(300)),
		WatermarkOf[tick](at(1000)),
	)

	rs := results(collectElements(out))
	if len(rs) != 2 {
		t.Fatalf("expected one result per key, got %v", rs)
	}

	counts := map[int]int64{}
	for _, r := range rs {
		counts[r.Key] = r.Result
		if !r.End.Equal(at(1000)) {
			t.Errorf("unexpected window end for key %d: %s", r.Key, r.End)
		}
	}
	if counts[1] != 1 || counts[2] != 2 {
		t.Errorf("wrong per-key counts: %v", counts)
	}
}

func TestTumblingWindowRewindowsDerivedStream(t *testing.T) {
	ctx := context.Background()

	// A single joined tuple with a degenerate constant timestamp and a
	// very large window still yields exactly one count of one.
	type joined struct {
		Type     int
		Count    int64
		AvgPrice float64
	}
	values := make(chan joined, 1)
	values <- joined{Type: 1, Count: 3, AvgPrice: 42.0}
	close(values)

	elements := NewConstantTimestamps[joined](time.Unix(0, 0)).Process(ctx, values)
	window := NewTumblingWindow(
		10000*24*time.Hour,
		func(j joined) int { return j.Type },
		NewCountAggregator[joined](),
	)

	rs := results(collectElements(window.Process(ctx, elements)))
	if len(rs) != 1 {
		t.Fatalf("expected exactly one re-windowed result, got %v", rs)
	}
	if rs[0].Key != 1 || rs[0].Result != 1 {
		t.Errorf("expected (key=1, count=1), got %+v", rs[0])
	}
}
