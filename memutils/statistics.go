package memutils

import "github.com/launchdarkly/go-jsonstream/v3/jwriter"

// Statistics describes allocator traffic: how many block allocations are
// currently live, and cumulative totals since the statistics were cleared.
type Statistics struct {
	// BlockCount is the number of allocations currently live
	BlockCount int
	// AllocationCount is the total number of allocations performed
	AllocationCount int
	// BlockBytes is the number of bytes held by live allocations
	BlockBytes int
	// AllocationBytes is the total number of bytes ever allocated
	AllocationBytes int
}

func (s *Statistics) Clear() {
	s.BlockCount = 0
	s.AllocationCount = 0
	s.BlockBytes = 0
	s.AllocationBytes = 0
}

func (s *Statistics) AddStatistics(other *Statistics) {
	s.BlockCount += other.BlockCount
	s.AllocationCount += other.AllocationCount
	s.BlockBytes += other.BlockBytes
	s.AllocationBytes += other.AllocationBytes
}

func (s *Statistics) AddAllocation(size int) {
	s.BlockCount++
	s.AllocationCount++
	s.BlockBytes += size
	s.AllocationBytes += size
}

func (s *Statistics) RemoveAllocation(size int) {
	s.BlockCount--
	s.BlockBytes -= size
}

// PrintJson populates a json object with this Statistics object's data
func (s *Statistics) PrintJson(json jwriter.ObjectState) {
	json.Name("BlockCount").Int(s.BlockCount)
	json.Name("AllocationCount").Int(s.AllocationCount)
	json.Name("BlockBytes").Int(s.BlockBytes)
	json.Name("AllocationBytes").Int(s.AllocationBytes)
}
