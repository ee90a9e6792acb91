package kinematics

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"acclaim-fk/internal/acclaim"
	"acclaim-fk/internal/mathutil"
)

// Solve writes world-space start, end and rotation into every bone of sk
// for posture p. Bones are visited in pre-order from the root, so a bone's
// parent is always solved before it:
//
//	local    = RotParentCurrent · Rz·Ry·Rx(posture angles)
//	rotation = parent.Rotation · local            (local alone for the root)
//	start    = parent.EndPosition + translation   (translation alone for the root)
//	end      = start + rotation(Dir · Length)
//
// sk must be prepared and p must come from the same skeleton; either
// violation is a programming error and panics.
func Solve(sk *acclaim.Skeleton, p acclaim.Posture) {
	if !sk.Prepared() {
		panic("kinematics: skeleton has not been prepared")
	}
	n := sk.BoneCount()
	if len(p.Rotations) < n || len(p.Translations) < n {
		panic(fmt.Sprintf("kinematics: posture has %d/%d entries, skeleton has %d bones",
			len(p.Rotations), len(p.Translations), n))
	}

	stack := make([]int, 0, 16)
	stack = append(stack, acclaim.RootIndex)
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		b := sk.Bone(i)
		solveBone(sk, b, p)

		// b is solved; its child and next sibling may now be visited.
		if b.Sibling != acclaim.NoBone {
			stack = append(stack, b.Sibling)
		}
		if b.Child != acclaim.NoBone {
			stack = append(stack, b.Child)
		}
	}
}

func solveBone(sk *acclaim.Skeleton, b *acclaim.Bone, p acclaim.Posture) {
	local := mathutil.QuatMul(b.RotParentCurrent, mathutil.RotateDegreeZYX(p.Rotations[b.Index]))

	if b.HasParent() {
		parent := sk.Bone(b.Parent)
		b.StartPosition = r3.Add(parent.EndPosition, p.Translations[b.Index])
		b.Rotation = mathutil.QuatMul(parent.Rotation, local)
	} else {
		b.StartPosition = p.Translations[b.Index]
		b.Rotation = local
	}

	b.EndPosition = r3.Add(b.StartPosition, BoneOffset(b))
}

// BoneOffset returns the bone's rest vector rotated into world space, the
// difference EndPosition - StartPosition after a solve.
func BoneOffset(b *acclaim.Bone) r3.Vec {
	return b.Rotation.Rotate(r3.Scale(b.Length, b.Dir))
}

// SetBoneTransform solves frame i of m into m's skeleton.
func SetBoneTransform(m *acclaim.Motion, frame int) {
	Solve(m.Skeleton(), m.Posture(frame))
}
