package main

import (
	"math/rand"
	"time"

	"github.com/zoobzio/eventz"
)

// Order is one purchase record: a categorical type, a price, and the wall
// clock instant the order was placed.
type Order struct {
	ID        int
	Type      int
	Price     float64
	OrderTime time.Time
}

// TypeStat is the per-type reference statistic joined against the windowed
// order counts.
type TypeStat struct {
	Type     int
	AvgPrice float64
}

// OrderStat is the joined tuple delivered to the sinks.
type OrderStat struct {
	Type     int
	Count    int64
	AvgPrice float64
}

const orderTypes = 3

// orderBase is the wall-clock time of the first generated order. Orders
// are spaced a few hundred milliseconds apart so a one-second window
// covers a handful of them.
var orderBase = time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC)

// newOrderSource returns a bounded source of n sequential orders with
// strictly increasing order times and pseudo-random types and prices.
func newOrderSource(n int, seed int64) eventz.Source[Order] {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic seed for reproducible demo runs
	return eventz.NewFuncSource(true, func(i int) (Order, bool) {
		if i >= n {
			return Order{}, false
		}
		return Order{
			ID:        i,
			Type:      rng.Intn(orderTypes),
			Price:     10 + rng.Float64()*90,
			OrderTime: orderBase.Add(time.Duration(i) * 200 * time.Millisecond),
		}, true
	}).WithName("order-source")
}

// newTypeStatSource returns a bounded source with one average-price record
// per order type.
func newTypeStatSource() eventz.Source[TypeStat] {
	stats := []TypeStat{
		{Type: 0, AvgPrice: 42.0},
		{Type: 1, AvgPrice: 18.5},
		{Type: 2, AvgPrice: 27.3},
	}
	return eventz.NewSliceSource(stats).WithName("type-stat-source")
}

// orderTimestamp extracts the event timestamp of an order at second
// granularity, interpreting the stored wall-clock time in a fixed zone
// offset the way the upstream system recorded it.
func orderTimestamp(tzOffsetHours int) eventz.TimestampExtractor[Order] {
	offset := time.Duration(tzOffsetHours) * time.Hour
	return func(o Order) time.Time {
		epoch := o.OrderTime.Add(-offset)
		return time.Unix(epoch.Unix(), 0)
	}
}
