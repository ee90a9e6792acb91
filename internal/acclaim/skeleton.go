package acclaim

import (
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"

	"acclaim-fk/internal/mathutil"
)

// RootIndex is the index of the root bone in every skeleton.
const RootIndex = 0

var (
	ErrUnknownBone   = errors.New("unknown bone")
	ErrDuplicateBone = errors.New("duplicate bone name")
	ErrBadLink       = errors.New("invalid hierarchy link")
	ErrPrepared      = errors.New("skeleton already prepared")
)

// BoneSpec describes a bone as written in a skeleton file: Dir is in
// global axes and Length is unscaled.
type BoneSpec struct {
	Name   string
	Dir    r3.Vec
	Length float64
	Axis   r3.Vec
	DOF    DOF
	Limits [][2]float64
}

// Skeleton is an arena of bones linked first-child/next-sibling by index.
// Its shape is fixed once Prepare has run; only the solved pose fields of
// each bone change afterwards. A Skeleton must not be solved from two
// goroutines at once; use Clone to give each its own copy.
type Skeleton struct {
	scale    float64
	movable  int
	prepared bool
	bones    []Bone
	byName   map[string]int
}

// NewSkeleton returns a skeleton holding only the root bone, which has
// all six channels enabled and no length.
func NewSkeleton(scale float64) *Skeleton {
	root := Bone{
		Index:            RootIndex,
		Name:             "root",
		Parent:           NoBone,
		Child:            NoBone,
		Sibling:          NoBone,
		DOF:              DOFAll,
		RotParentCurrent: mathutil.QuatIdentity(),
		Rotation:         mathutil.QuatIdentity(),
	}
	return &Skeleton{
		scale:   scale,
		movable: 1,
		bones:   []Bone{root},
		byName:  map[string]int{root.Name: RootIndex},
	}
}

// AddBone appends an unlinked bone and returns its index.
func (s *Skeleton) AddBone(spec BoneSpec) (int, error) {
	if s.prepared {
		return NoBone, ErrPrepared
	}
	if _, ok := s.byName[spec.Name]; ok {
		return NoBone, fmt.Errorf("%w: %s", ErrDuplicateBone, spec.Name)
	}
	idx := len(s.bones)
	s.bones = append(s.bones, Bone{
		Index:            idx,
		Name:             spec.Name,
		Parent:           NoBone,
		Child:            NoBone,
		Sibling:          NoBone,
		Dir:              spec.Dir,
		Length:           spec.Length * s.scale,
		Axis:             spec.Axis,
		DOF:              spec.DOF,
		Limits:           spec.Limits,
		RotParentCurrent: mathutil.QuatIdentity(),
		Rotation:         mathutil.QuatIdentity(),
	})
	s.byName[spec.Name] = idx
	if spec.DOF != DOFNone {
		s.movable++
	}
	return idx, nil
}

// Link makes child the last child of parent.
func (s *Skeleton) Link(parent, child int) error {
	if s.prepared {
		return ErrPrepared
	}
	if !s.valid(parent) || !s.valid(child) {
		return fmt.Errorf("%w: %d -> %d out of range", ErrBadLink, parent, child)
	}
	if child == RootIndex || parent == child {
		return fmt.Errorf("%w: %s -> %s", ErrBadLink, s.bones[parent].Name, s.bones[child].Name)
	}
	if s.bones[child].HasParent() {
		return fmt.Errorf("%w: %s already has parent %s", ErrBadLink,
			s.bones[child].Name, s.bones[s.bones[child].Parent].Name)
	}
	for p := parent; p != NoBone; p = s.bones[p].Parent {
		if p == child {
			return fmt.Errorf("%w: %s -> %s forms a cycle", ErrBadLink, s.bones[parent].Name, s.bones[child].Name)
		}
	}

	s.bones[child].Parent = parent
	if s.bones[parent].Child == NoBone {
		s.bones[parent].Child = child
		return nil
	}
	last := s.bones[parent].Child
	for s.bones[last].Sibling != NoBone {
		last = s.bones[last].Sibling
	}
	s.bones[last].Sibling = child
	return nil
}

// Prepare validates the hierarchy, converts every rest direction into its
// bone's local frame and computes RotParentCurrent. It runs once; the shape
// is frozen afterwards.
func (s *Skeleton) Prepare() error {
	if s.prepared {
		return nil
	}
	for i := 1; i < len(s.bones); i++ {
		if !s.bones[i].HasParent() {
			return fmt.Errorf("%w: %s is not attached to the hierarchy", ErrBadLink, s.bones[i].Name)
		}
	}

	for i := 1; i < len(s.bones); i++ {
		b := &s.bones[i]
		b.Dir = mathutil.RotateDegreeXYZ(r3.Scale(-1, b.Axis)).Rotate(b.Dir)
	}

	root := &s.bones[RootIndex]
	root.RotParentCurrent = mathutil.QuatNormalize(mathutil.RotateDegreeZYX(root.Axis))
	for i := 1; i < len(s.bones); i++ {
		b := &s.bones[i]
		p := &s.bones[b.Parent]
		toParent := mathutil.QuatMul(
			mathutil.RotateDegreeXYZ(r3.Scale(-1, p.Axis)),
			mathutil.RotateDegreeZYX(b.Axis),
		)
		b.RotParentCurrent = mathutil.QuatNormalize(toParent)
	}

	s.prepared = true
	return nil
}

// Prepared reports whether Prepare has run.
func (s *Skeleton) Prepared() bool { return s.prepared }

func (s *Skeleton) valid(i int) bool { return i >= 0 && i < len(s.bones) }

func (s *Skeleton) Scale() float64 { return s.scale }

func (s *Skeleton) BoneCount() int { return len(s.bones) }

// MovableBoneCount counts the root plus every bone with at least one channel.
func (s *Skeleton) MovableBoneCount() int { return s.movable }

// Root returns the root bone.
func (s *Skeleton) Root() *Bone { return &s.bones[RootIndex] }

// Bone returns the bone at index i. It panics when i is out of range.
func (s *Skeleton) Bone(i int) *Bone { return &s.bones[i] }

// BoneByName looks a bone up by name.
func (s *Skeleton) BoneByName(name string) (*Bone, bool) {
	i, ok := s.byName[name]
	if !ok {
		return nil, false
	}
	return &s.bones[i], true
}

// Children returns the direct children of bone i in link order.
func (s *Skeleton) Children(i int) []int {
	var out []int
	for c := s.bones[i].Child; c != NoBone; c = s.bones[c].Sibling {
		out = append(out, c)
	}
	return out
}

// PreOrder returns bone indices with every parent before its children.
func (s *Skeleton) PreOrder() []int {
	order := make([]int, 0, len(s.bones))
	stack := []int{RootIndex}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		order = append(order, i)

		children := s.Children(i)
		for j := len(children) - 1; j >= 0; j-- {
			stack = append(stack, children[j])
		}
	}
	return order
}

// Clone returns an independent copy; indices stay valid in the copy.
func (s *Skeleton) Clone() *Skeleton {
	c := &Skeleton{
		scale:    s.scale,
		movable:  s.movable,
		prepared: s.prepared,
		bones:    slices.Clone(s.bones),
		byName:   make(map[string]int, len(s.byName)),
	}
	for i := range c.bones {
		c.bones[i].Limits = slices.Clone(s.bones[i].Limits)
	}
	for k, v := range s.byName {
		c.byName[k] = v
	}
	return c
}
