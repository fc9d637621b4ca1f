package eventz

import (
	"context"
	"fmt"
	"hash/fnv"
)

// Partitioner determines which partition a key should be routed to.
type Partitioner[K comparable] func(key K, numPartitions int) int

// DefaultPartitioner hashes the key's formatted value with FNV-1a and takes
// it modulo the partition count. Items with the same key always land on the
// same partition.
func DefaultPartitioner[K comparable](key K, numPartitions int) int {
	if numPartitions <= 0 {
		return 0
	}
	h := fnv.New32a()
	fmt.Fprintf(h, "%v", key)
	sum := uint64(h.Sum32())
	np := uint64(numPartitions)
	return int(sum % np) //nolint:gosec // modulo keeps the result within int range
}

// Partition splits an event-time stream into key-disjoint sub-streams for
// parallel windowing. Events are routed by the hash of their key, so each
// (key, window) accumulator is owned by exactly one partition and no state
// is shared across workers. Watermark punctuations are broadcast to every
// partition: each sub-stream carries the full time signal of its upstream,
// so a partition's windows fire at the same watermark crossings they would
// in a single-threaded run.
//
// Merge the per-partition outputs back with FanIn, which re-establishes a
// single watermark as the minimum across all partitions before forwarding
// it.
type Partition[T any, K comparable] struct {
	keyFn         func(T) K
	partitioner   Partitioner[K]
	numPartitions int
	name          string
}

// NewPartition creates a processor that splits an Element stream into
// numPartitions key-disjoint sub-streams.
//
// Example:
//
//	partition := eventz.NewPartition(4, func(o Order) int { return o.Type })
//	branches := partition.Process(ctx, elements)
//
//	outputs := make([]<-chan Element[WindowResult[int, int64]], len(branches))
//	for i, branch := range branches {
//		window := eventz.NewTumblingWindow(time.Second, keyFn, agg)
//		outputs[i] = window.Process(ctx, branch)
//	}
//	merged := eventz.NewFanIn[WindowResult[int, int64]]().Process(ctx, outputs...)
//
// Parameters:
//   - numPartitions: Number of sub-streams to create (at least 1)
//   - keyFn: Extracts the routing key from each record
//
// Returns a new Partition processor with fluent configuration methods.
func NewPartition[T any, K comparable](numPartitions int, keyFn func(T) K) *Partition[T, K] {
	if numPartitions < 1 {
		numPartitions = 1
	}
	return &Partition[T, K]{
		keyFn:         keyFn,
		partitioner:   DefaultPartitioner[K],
		numPartitions: numPartitions,
		name:          "partition",
	}
}

// WithPartitioner sets a custom partitioning function. The function
// receives the key and the number of partitions and returns a partition
// index in [0, numPartitions).
func (p *Partition[T, K]) WithPartitioner(partitioner Partitioner[K]) *Partition[T, K] {
	if partitioner != nil {
		p.partitioner = partitioner
	}
	return p
}

// WithName sets a custom name for this processor.
func (p *Partition[T, K]) WithName(name string) *Partition[T, K] {
	p.name = name
	return p
}

// Process routes the input stream into key-disjoint sub-streams. Events go
// to their key's partition; watermarks go to every partition. All outputs
// close when the input closes.
func (p *Partition[T, K]) Process(ctx context.Context, in <-chan Element[T]) []<-chan Element[T] {
	outputs := make([]chan Element[T], p.numPartitions)
	partitions := make([]<-chan Element[T], p.numPartitions)
	for i := range outputs {
		outputs[i] = make(chan Element[T])
		partitions[i] = outputs[i]
	}

	go func() {
		defer func() {
			for _, ch := range outputs {
				close(ch)
			}
		}()

		for el := range in {
			if el.IsWatermark() {
				for _, ch := range outputs {
					select {
					case ch <- el:
					case <-ctx.Done():
						return
					}
				}
				continue
			}

			idx := p.partitioner(p.keyFn(el.Value), p.numPartitions)
			if idx < 0 || idx >= p.numPartitions {
				idx = 0
			}
			select {
			case outputs[idx] <- el:
			case <-ctx.Done():
				return
			}
		}
	}()

	return partitions
}

func (p *Partition[T, K]) Name() string {
	return p.name
}
