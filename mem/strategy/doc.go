// Package strategy implements the placement policies that choose which free
// partition receives an allocation.
//
// # Strategies
//
//   - FirstFit: the first free partition, in address order, that is large enough
//   - BestFit: the free partition leaving the smallest remainder
//   - WorstFit: the free partition leaving the largest remainder
//
// Ties go to the lowest index for both BestFit and WorstFit. BestFit stops
// scanning at an exact match since nothing can beat a zero remainder.
//
// # Selecting a Strategy
//
// A Strategy is a closed enumeration. Text coming from flags, prompts or
// scenario files is resolved once with Parse, so an unknown name is a
// configuration error at the boundary and never reaches the allocator:
//
//	s, err := strategy.Parse("Best Fit")
//	if err != nil {
//	    return err
//	}
//	i, ok := s.Select(tbl, 20)
//
// Select is a pure function of the table and the requested size.
package strategy
