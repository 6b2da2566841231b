// Package index classifies the index labels of an indexed expression into
// free and summed labels.
//
// A label occurring exactly once is free and indexes the result. A label
// occurring exactly twice is summed, which is only allowed between a space
// and its dual (the natural pairing). Any other multiplicity is an error.
package index

import (
	"fmt"

	"github.com/born-ml/tensoralg/internal/space"
)

// Label names an index slot in an expression. It carries no value, only
// identity.
type Label string

// Slot is one occurrence of a label together with the space it indexes.
type Slot struct {
	Label Label
	Space *space.Space
}

// String renders the slot as "label:space".
func (s Slot) String() string {
	return fmt.Sprintf("%s:%s", s.Label, s.Space)
}

// Contraction is a summed label with both of its occurrences.
// First is the occurrence that appeared first in the slot list.
type Contraction struct {
	Label  Label
	First  Slot
	Second Slot
}

// Partition is the result of Classify.
type Partition struct {
	// Free holds the free slots in first-occurrence order.
	Free []Slot
	// Summed holds the contractions in first-occurrence order.
	Summed []Contraction
}

// SummedLabels returns the labels of the contractions.
func (p Partition) SummedLabels() []Label {
	out := make([]Label, len(p.Summed))
	for i, c := range p.Summed {
		out[i] = c.Label
	}
	return out
}

// Classify partitions slots into free and summed labels.
//
// It returns ErrLabelMultiplicity for a label occurring three or more times
// and ErrNonDualPairing for a label occurring twice over spaces that are not
// dual to each other.
func Classify(slots []Slot) (Partition, error) {
	type entry struct {
		first, count int
		second       int
	}
	seen := make(map[Label]*entry, len(slots))
	order := make([]Label, 0, len(slots))
	for i, s := range slots {
		if s.Label == "" {
			return Partition{}, fmt.Errorf("%w: empty label at position %d", ErrLabelMultiplicity, i)
		}
		e, ok := seen[s.Label]
		if !ok {
			seen[s.Label] = &entry{first: i, count: 1}
			order = append(order, s.Label)
			continue
		}
		e.count++
		e.second = i
		if e.count > 2 {
			return Partition{}, fmt.Errorf("%w: label %q occurs %d times", ErrLabelMultiplicity, s.Label, e.count)
		}
	}

	var p Partition
	for _, l := range order {
		e := seen[l]
		if e.count == 1 {
			p.Free = append(p.Free, slots[e.first])
			continue
		}
		a, b := slots[e.first], slots[e.second]
		if !a.Space.IsDualOf(b.Space) {
			return Partition{}, fmt.Errorf("%w: label %q pairs %s with %s", ErrNonDualPairing, l, a.Space, b.Space)
		}
		p.Summed = append(p.Summed, Contraction{Label: l, First: a, Second: b})
	}
	return p, nil
}

// Labels returns the labels of slots, in order.
func Labels(slots []Slot) []Label {
	out := make([]Label, len(slots))
	for i, s := range slots {
		out[i] = s.Label
	}
	return out
}

// Find returns the position of label l in slots, or -1.
func Find(slots []Slot, l Label) int {
	for i, s := range slots {
		if s.Label == l {
			return i
		}
	}
	return -1
}

// CheckDistinct returns ErrDuplicateFree if any label occurs twice in slots.
func CheckDistinct(slots []Slot) error {
	seen := make(map[Label]bool, len(slots))
	for _, s := range slots {
		if seen[s.Label] {
			return fmt.Errorf("%w: %q", ErrDuplicateFree, s.Label)
		}
		seen[s.Label] = true
	}
	return nil
}

// SameSet reports whether a and b hold the same labels over equal spaces,
// regardless of order. Both must already be free of duplicates.
func SameSet(a, b []Slot) bool {
	if len(a) != len(b) {
		return false
	}
	for _, s := range a {
		j := Find(b, s.Label)
		if j < 0 || !b[j].Space.Equal(s.Space) {
			return false
		}
	}
	return true
}

// Permutation returns perm with to[i].Label == from[perm[i]].Label.
// It returns ErrLabelMismatch if a label of to is missing from from.
func Permutation(from []Slot, to []Label) ([]int, error) {
	perm := make([]int, len(to))
	for i, l := range to {
		j := Find(from, l)
		if j < 0 {
			return nil, fmt.Errorf("%w: %q", ErrLabelMismatch, l)
		}
		perm[i] = j
	}
	return perm, nil
}
