package partition

// Usage summarizes how the address space is used.
type Usage struct {
	Total       int `json:"total"`
	Used        int `json:"used"`
	Free        int `json:"free"`
	FreeBlocks  int `json:"free_blocks"`
	LargestFree int `json:"largest_free"`
	Occupied    int `json:"occupied"`

	// Fragmentation is 1 - LargestFree/Free: 0 when all free memory is one
	// block, approaching 1 as it is scattered. Zero when nothing is free.
	Fragmentation float64 `json:"fragmentation"`
}

// Usage computes the current usage summary.
func (t *Table) Usage() Usage {
	u := Usage{Total: t.total}
	for _, p := range t.parts {
		if !p.IsFree() {
			u.Used += p.Size
			u.Occupied++
			continue
		}
		u.Free += p.Size
		u.FreeBlocks++
		if p.Size > u.LargestFree {
			u.LargestFree = p.Size
		}
	}
	if u.Free > 0 {
		u.Fragmentation = 1 - float64(u.LargestFree)/float64(u.Free)
	}
	return u
}
