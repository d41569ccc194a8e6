package memutils

import (
	"github.com/dolthub/swiss"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// CountingAllocator wraps another Allocator and records per-call
// statistics, so consumers and tests can verify that every Allocate is
// matched by exactly one Deallocate. It also tracks the identity and size
// of each live allocation and panics when Deallocate is handed storage it
// did not provide, or storage it has already reclaimed.
type CountingAllocator struct {
	inner Allocator
	stats Statistics
	live  *swiss.Map[any, int]
}

// NewCountingAllocator wraps inner in a CountingAllocator. A nil inner
// wraps DefaultAllocator.
func NewCountingAllocator(inner Allocator) *CountingAllocator {
	if inner == nil {
		inner = DefaultAllocator
	}

	return &CountingAllocator{
		inner: inner,
		live:  swiss.NewMap[any, int](42),
	}
}

func (a *CountingAllocator) Allocate(size int, construct func() any) (any, error) {
	v, err := a.inner.Allocate(size, construct)
	if err != nil {
		return nil, err
	}

	a.stats.AddAllocation(size)
	a.live.Put(v, size)
	return v, nil
}

func (a *CountingAllocator) Deallocate(v any, size int) {
	recordedSize, ok := a.live.Get(v)
	if !ok {
		panic("attempting to deallocate storage this allocator did not provide")
	}
	if recordedSize != size {
		panic("deallocation size does not match the size recorded at allocation")
	}

	a.live.Delete(v)
	a.stats.RemoveAllocation(size)
	a.inner.Deallocate(v, size)
}

// Stats returns a snapshot of the allocator's accumulated statistics.
func (a *CountingAllocator) Stats() Statistics {
	return a.stats
}

// LiveCount returns the number of allocations that have not yet been
// deallocated.
func (a *CountingAllocator) LiveCount() int {
	return a.live.Count()
}

// BuildStatsString returns the allocator's statistics as a JSON document.
func (a *CountingAllocator) BuildStatsString() string {
	writer := jwriter.NewWriter()

	obj := writer.Object()
	a.stats.PrintJson(obj)
	obj.End()

	return string(writer.Bytes())
}
