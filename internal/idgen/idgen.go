// Package idgen provides the sequential id source used for partition numbers.
package idgen

// ID is a sequential identifier. Zero is never issued.
type ID uint64

// Generator issues ids 1, 2, 3, ...
//
// The zero value is ready to use. A Generator is a plain value: copying it
// forks the sequence, which is how a cloned partition table keeps numbering
// from where the original left off without sharing state with it.
type Generator struct {
	last ID
}

// After returns a generator whose next id is last+1.
func After(last ID) Generator {
	return Generator{last: last}
}

// Next issues the next id.
func (g *Generator) Next() ID {
	g.last++
	return g.last
}

// Last returns the most recently issued id, or 0 if none was issued.
func (g Generator) Last() ID {
	return g.last
}
