package alloc

// Stats holds engine operation counters.
type Stats struct {
	AllocCalls       int `json:"alloc_calls"`       // Total Allocate() calls
	AllocSuccesses   int `json:"alloc_successes"`   // Allocations that placed the process
	AllocFailures    int `json:"alloc_failures"`    // Rejected or unplaceable requests
	Splits           int `json:"splits"`            // Placements that split a partition
	ExactFits        int `json:"exact_fits"`        // Placements that took a whole partition
	RetryCompactions int `json:"retry_compactions"` // Compactions triggered by a miss
	Compactions      int `json:"compactions"`       // Explicit Compact() calls
	DeallocCalls     int `json:"dealloc_calls"`     // Total Deallocate() calls
	DeallocMisses    int `json:"dealloc_misses"`    // Deallocations of unknown processes
	Merges           int `json:"merges"`            // Adjacent free pairs merged
}
