package kinematics

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"acclaim-fk/internal/acclaim"
)

func assertVecInDelta(t *testing.T, want, got r3.Vec, delta float64, msgAndArgs ...any) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, delta, msgAndArgs...)
	assert.InDelta(t, want.Y, got.Y, delta, msgAndArgs...)
	assert.InDelta(t, want.Z, got.Z, delta, msgAndArgs...)
}

// twoBoneSkeleton is a root with one child of length 1 along +Z.
func twoBoneSkeleton(t *testing.T) (*acclaim.Skeleton, int) {
	t.Helper()
	sk := acclaim.NewSkeleton(1)
	child, err := sk.AddBone(acclaim.BoneSpec{
		Name:   "child",
		Dir:    r3.Vec{Z: 1},
		Length: 1,
		DOF:    acclaim.DOFRX | acclaim.DOFRY | acclaim.DOFRZ,
	})
	require.NoError(t, err)
	require.NoError(t, sk.Link(acclaim.RootIndex, child))
	require.NoError(t, sk.Prepare())
	return sk, child
}

// branchySkeleton has two limbs off the root with tilted local frames.
func branchySkeleton(t *testing.T) *acclaim.Skeleton {
	t.Helper()
	sk := acclaim.NewSkeleton(0.2)
	specs := []struct {
		spec   acclaim.BoneSpec
		parent string
	}{
		{acclaim.BoneSpec{Name: "lhip", Dir: r3.Vec{X: 0.7, Y: -0.7}, Length: 2.4, Axis: r3.Vec{Z: -20}}, "root"},
		{acclaim.BoneSpec{Name: "lfemur", Dir: r3.Vec{X: 0.34, Y: -0.94}, Length: 7.1, Axis: r3.Vec{Z: 20}, DOF: acclaim.DOFRX | acclaim.DOFRY | acclaim.DOFRZ}, "lhip"},
		{acclaim.BoneSpec{Name: "ltibia", Dir: r3.Vec{X: 0.34, Y: -0.94}, Length: 7.5, Axis: r3.Vec{Z: 20}, DOF: acclaim.DOFRX}, "lfemur"},
		{acclaim.BoneSpec{Name: "lowerback", Dir: r3.Vec{X: 0.01, Y: 0.99, Z: -0.05}, Length: 2.0, DOF: acclaim.DOFRX | acclaim.DOFRY | acclaim.DOFRZ}, "root"},
		{acclaim.BoneSpec{Name: "upperback", Dir: r3.Vec{Y: 1}, Length: 2.1, Axis: r3.Vec{X: 10, Y: -5, Z: 3}, DOF: acclaim.DOFRX | acclaim.DOFRY | acclaim.DOFRZ | acclaim.DOFTY}, "lowerback"},
		{acclaim.BoneSpec{Name: "lclavicle", Dir: r3.Vec{X: 0.9, Y: 0.3, Z: -0.2}, Length: 3.6, Axis: r3.Vec{Y: -20, Z: 30}, DOF: acclaim.DOFRY | acclaim.DOFRZ}, "upperback"},
		{acclaim.BoneSpec{Name: "rclavicle", Dir: r3.Vec{X: -0.9, Y: 0.3, Z: -0.2}, Length: 3.6, Axis: r3.Vec{Y: 20, Z: -30}, DOF: acclaim.DOFRY | acclaim.DOFRZ}, "upperback"},
	}
	for _, s := range specs {
		s.spec.Dir = r3.Unit(s.spec.Dir)
		idx, err := sk.AddBone(s.spec)
		require.NoError(t, err)
		parent, ok := sk.BoneByName(s.parent)
		require.True(t, ok)
		require.NoError(t, sk.Link(parent.Index, idx))
	}
	require.NoError(t, sk.Prepare())
	return sk
}

func randomPosture(rng *rand.Rand, n int) acclaim.Posture {
	p := acclaim.NewPosture(n)
	for i := 0; i < n; i++ {
		p.Rotations[i] = r3.Vec{X: rng.Float64()*180 - 90, Y: rng.Float64()*180 - 90, Z: rng.Float64()*180 - 90}
		p.Translations[i] = r3.Vec{X: rng.Float64() - 0.5, Y: rng.Float64() - 0.5, Z: rng.Float64() - 0.5}
	}
	return p
}

func TestSolveTwoBoneRotation(t *testing.T) {
	sk, child := twoBoneSkeleton(t)
	p := acclaim.NewPosture(sk.BoneCount())
	p.Rotations[child] = r3.Vec{Y: 90}

	Solve(sk, p)

	root := sk.Root()
	assert.Equal(t, r3.Vec{}, root.StartPosition)
	assert.Equal(t, root.StartPosition, root.EndPosition)

	b := sk.Bone(child)
	assert.Equal(t, root.EndPosition, b.StartPosition)
	assertVecInDelta(t, r3.Vec{X: 1}, r3.Sub(b.EndPosition, root.EndPosition), 1e-12)
}

func TestSolveParentRotationAppliedFirst(t *testing.T) {
	sk, child := twoBoneSkeleton(t)
	p := acclaim.NewPosture(sk.BoneCount())
	p.Rotations[acclaim.RootIndex] = r3.Vec{X: 90}
	p.Rotations[child] = r3.Vec{Y: 90}
	p.Translations[acclaim.RootIndex] = r3.Vec{X: 1, Y: 2, Z: 3}

	Solve(sk, p)

	// Rx(90)·Ry(90) takes +Z to +X; the reverse order would give -Y.
	b := sk.Bone(child)
	assertVecInDelta(t, r3.Vec{X: 1, Y: 2, Z: 3}, b.StartPosition, 0)
	assertVecInDelta(t, r3.Vec{X: 2, Y: 2, Z: 3}, b.EndPosition, 1e-12)
}

func TestSolveInvariants(t *testing.T) {
	sk := branchySkeleton(t)
	rng := rand.New(rand.NewSource(7))

	for k := 0; k < 25; k++ {
		p := randomPosture(rng, sk.BoneCount())
		Solve(sk, p)

		root := sk.Root()
		assert.Equal(t, p.Translations[acclaim.RootIndex], root.StartPosition)

		for i := 0; i < sk.BoneCount(); i++ {
			b := sk.Bone(i)
			want := r3.Add(b.StartPosition, b.Rotation.Rotate(r3.Scale(b.Length, b.Dir)))
			assert.Equal(t, want, b.EndPosition, b.Name)

			if b.HasParent() {
				parent := sk.Bone(b.Parent)
				assert.Equal(t, r3.Add(parent.EndPosition, p.Translations[i]), b.StartPosition, b.Name)
			}
		}
	}
}

func TestSolveRotationsStayUnit(t *testing.T) {
	sk := branchySkeleton(t)
	p := randomPosture(rand.New(rand.NewSource(3)), sk.BoneCount())
	Solve(sk, p)

	for i := 0; i < sk.BoneCount(); i++ {
		b := sk.Bone(i)
		offset := r3.Sub(b.EndPosition, b.StartPosition)
		assert.InDelta(t, b.Length, r3.Norm(offset), 1e-9, b.Name)
	}
}

func TestSolveDeterministic(t *testing.T) {
	sk := branchySkeleton(t)
	p := randomPosture(rand.New(rand.NewSource(11)), sk.BoneCount())

	snapshot := func() []acclaim.Bone {
		out := make([]acclaim.Bone, sk.BoneCount())
		for i := range out {
			out[i] = *sk.Bone(i)
		}
		return out
	}

	Solve(sk, p)
	first := snapshot()

	// Solve something else in between so stale state would show up.
	Solve(sk, randomPosture(rand.New(rand.NewSource(12)), sk.BoneCount()))
	Solve(sk, p)
	assert.Equal(t, first, snapshot())
}

func TestSolveIgnoresOtherSkeletons(t *testing.T) {
	sk := branchySkeleton(t)
	clone := sk.Clone()
	p := randomPosture(rand.New(rand.NewSource(5)), sk.BoneCount())

	Solve(clone, p)
	assert.Equal(t, r3.Vec{}, sk.Bone(3).EndPosition)
	assert.NotEqual(t, r3.Vec{}, clone.Bone(3).EndPosition)
}

func TestSolvePanicsOnShortPosture(t *testing.T) {
	sk := branchySkeleton(t)
	assert.Panics(t, func() {
		Solve(sk, acclaim.NewPosture(sk.BoneCount()-1))
	})
}

func TestSolvePanicsOnUnpreparedSkeleton(t *testing.T) {
	sk := acclaim.NewSkeleton(1)
	idx, err := sk.AddBone(acclaim.BoneSpec{Name: "a", Dir: r3.Vec{Y: 1}, Length: 1, Axis: r3.Vec{Z: 30}})
	require.NoError(t, err)
	require.NoError(t, sk.Link(acclaim.RootIndex, idx))

	p := acclaim.NewPosture(sk.BoneCount())
	assert.PanicsWithValue(t, "kinematics: skeleton has not been prepared", func() { Solve(sk, p) })

	require.NoError(t, sk.Prepare())
	assert.NotPanics(t, func() { Solve(sk, p) })
	assert.True(t, sk.Clone().Prepared())
}

func TestSetBoneTransform(t *testing.T) {
	sk, child := twoBoneSkeleton(t)
	p0 := acclaim.NewPosture(sk.BoneCount())
	p1 := acclaim.NewPosture(sk.BoneCount())
	p1.Rotations[child] = r3.Vec{X: -90}

	m, err := acclaim.NewMotion(sk, []acclaim.Posture{p0, p1})
	require.NoError(t, err)

	SetBoneTransform(m, 0)
	assertVecInDelta(t, r3.Vec{Z: 1}, sk.Bone(child).EndPosition, 1e-12)

	SetBoneTransform(m, 1)
	// Rx(-90) takes +Z to +Y.
	assertVecInDelta(t, r3.Vec{Y: 1}, sk.Bone(child).EndPosition, 1e-12)
	assert.Equal(t, BoneOffset(sk.Bone(child)), r3.Sub(sk.Bone(child).EndPosition, sk.Bone(child).StartPosition))
}
