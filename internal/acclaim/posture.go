package acclaim

import (
	"slices"

	"gonum.org/v1/gonum/spatial/r3"
)

// Posture is one frame of motion: per-bone rotation angles in degrees and
// translations in scaled units, both indexed by bone index. Channels a
// bone does not expose stay zero.
type Posture struct {
	Rotations    []r3.Vec
	Translations []r3.Vec
}

// NewPosture returns a zero posture for a skeleton of n bones.
func NewPosture(n int) Posture {
	return Posture{
		Rotations:    make([]r3.Vec, n),
		Translations: make([]r3.Vec, n),
	}
}

// Len returns the number of bones the posture covers.
func (p Posture) Len() int { return len(p.Rotations) }

// Clone returns a copy that shares no storage with p.
func (p Posture) Clone() Posture {
	return Posture{
		Rotations:    slices.Clone(p.Rotations),
		Translations: slices.Clone(p.Translations),
	}
}

// ClonePostures deep-copies a posture sequence.
func ClonePostures(ps []Posture) []Posture {
	out := make([]Posture, len(ps))
	for i, p := range ps {
		out[i] = p.Clone()
	}
	return out
}
