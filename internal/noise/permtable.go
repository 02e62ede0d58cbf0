package noise

import "math/rand"

// TableSize is the number of entries in a PermutationTable.
const TableSize = 256

// PermutationTable maps integer lattice coordinates to pseudo-random indices.
// It is immutable once built and may be shared freely.
type PermutationTable struct {
	values [TableSize]uint8
}

// NewPermutationTable builds the table for seed with a Fisher-Yates shuffle
// driven by a math/rand source seeded with seed. Equal seeds always produce
// identical tables.
func NewPermutationTable(seed int64) *PermutationTable {
	r := rand.New(rand.NewSource(seed))
	t := &PermutationTable{}
	for i := range t.values {
		t.values[i] = uint8(i)
	}
	for i := TableSize - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		t.values[i], t.values[j] = t.values[j], t.values[i]
	}
	return t
}

// Hash folds coords left to right through the table: the first axis indexes
// the table directly, each further axis indexes it with the previous result
// XORed with the axis value. Coordinates are wrapped to the table size.
func (t *PermutationTable) Hash(coords []int) uint8 {
	if len(coords) == 0 {
		return 0
	}
	h := t.values[coords[0]&0xff]
	for _, c := range coords[1:] {
		h = t.values[int(h)^(c&0xff)]
	}
	return h
}

// Values returns a copy of the permutation.
func (t *PermutationTable) Values() [TableSize]uint8 {
	return t.values
}
