package acclaim

import (
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"acclaim-fk/internal/mathutil"
)

// NoBone marks an absent parent, child or sibling link.
const NoBone = -1

// DOF is a bitmask of the channels a bone exposes in motion data.
type DOF uint8

const (
	DOFRX DOF = 1 << iota
	DOFRY
	DOFRZ
	DOFTX
	DOFTY
	DOFTZ

	DOFNone DOF = 0
	DOFAll      = DOFRX | DOFRY | DOFRZ | DOFTX | DOFTY | DOFTZ
)

// channelOrder is the order in which AMC values fill enabled channels.
var channelOrder = []struct {
	flag DOF
	name string
}{
	{DOFTX, "tx"}, {DOFTY, "ty"}, {DOFTZ, "tz"},
	{DOFRX, "rx"}, {DOFRY, "ry"}, {DOFRZ, "rz"},
}

// Has reports whether every channel in c is enabled.
func (d DOF) Has(c DOF) bool { return d&c == c }

// Count returns the number of enabled channels.
func (d DOF) Count() int {
	n := 0
	for _, ch := range channelOrder {
		if d.Has(ch.flag) {
			n++
		}
	}
	return n
}

func (d DOF) String() string {
	var names []string
	for _, ch := range channelOrder {
		if d.Has(ch.flag) {
			names = append(names, ch.name)
		}
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, " ")
}

// Bone is one node of a Skeleton. Links are indices into the owning
// skeleton's bone slice, NoBone when absent.
type Bone struct {
	Index int
	Name  string

	Parent  int
	Child   int // first child
	Sibling int // next sibling under the same parent

	// Dir is the unit rest direction in the bone's local frame once the
	// skeleton has been prepared (global ASF axes before that).
	Dir    r3.Vec
	Length float64 // already multiplied by the skeleton scale
	Axis   r3.Vec  // local frame orientation, degrees
	DOF    DOF
	Limits [][2]float64 // per enabled rotation/translation channel, not enforced

	// RotParentCurrent maps the bone's local frame into its parent's frame.
	RotParentCurrent mathutil.Quat

	// Written by kinematics.Solve.
	StartPosition r3.Vec
	EndPosition   r3.Vec
	Rotation      mathutil.Quat
}

// HasParent reports whether b is not the root.
func (b *Bone) HasParent() bool { return b.Parent != NoBone }
