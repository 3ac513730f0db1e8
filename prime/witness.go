package prime

import "sort"

// WitnessBound maps an exclusive upper bound on n to a witness set that makes the
// strong-pseudoprime test deterministic for every n below it.
type WitnessBound struct {
	Below     uint64
	Witnesses []uint64
}

// WitnessTable selects the minimal witness set for n. Bounds are sorted ascending;
// n at or above the last bound uses Fallback.
//
// The table is the load-bearing correctness artifact of the oracle. Changing an
// entry requires re-deriving the bound.
type WitnessTable struct {
	Bounds   []WitnessBound
	Fallback []uint64
}

// fullRangeWitnesses is deterministic for all n < 2^64.
var fullRangeWitnesses = []uint64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37}

// DefaultWitnessTable returns the published minimal witness sets
// (Jaeschke; Pomerance, Selfridge & Wagstaff).
func DefaultWitnessTable() WitnessTable {
	return WitnessTable{
		Bounds: []WitnessBound{
			{Below: 2_047, Witnesses: []uint64{2}},
			{Below: 1_373_653, Witnesses: []uint64{2, 3}},
			{Below: 9_080_191, Witnesses: []uint64{31, 73}},
			{Below: 25_326_001, Witnesses: []uint64{2, 3, 5}},
			{Below: 3_215_031_751, Witnesses: []uint64{2, 3, 5, 7}},
			{Below: 4_759_123_141, Witnesses: []uint64{2, 7, 61}},
		},
		Fallback: fullRangeWitnesses,
	}
}

// Select returns the witness set for n. The returned slice must not be modified.
func (t WitnessTable) Select(n uint64) []uint64 {
	i := sort.Search(len(t.Bounds), func(i int) bool { return n < t.Bounds[i].Below })
	if i < len(t.Bounds) {
		return t.Bounds[i].Witnesses
	}
	return t.Fallback
}
