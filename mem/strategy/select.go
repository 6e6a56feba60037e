package strategy

import "github.com/joshuapare/memsim/mem/partition"

func firstFit(t *partition.Table, size int) (int, bool) {
	for i := range t.Len() {
		p := t.At(i)
		if p.IsFree() && p.Size >= size {
			return i, true
		}
	}
	return -1, false
}

// bestFit keeps the first minimal remainder and stops at an exact match.
func bestFit(t *partition.Table, size int) (int, bool) {
	best, bestRem := -1, 0
	for i := range t.Len() {
		p := t.At(i)
		rem := p.Size - size
		if !p.IsFree() || rem < 0 {
			continue
		}
		if best < 0 || rem < bestRem {
			best, bestRem = i, rem
			if rem == 0 {
				break
			}
		}
	}
	return best, best >= 0
}

// worstFit keeps the first maximal remainder; later equal remainders lose.
func worstFit(t *partition.Table, size int) (int, bool) {
	best, bestRem := -1, -1
	for i := range t.Len() {
		p := t.At(i)
		rem := p.Size - size
		if !p.IsFree() || rem < 0 {
			continue
		}
		if rem > bestRem {
			best, bestRem = i, rem
		}
	}
	return best, best >= 0
}
