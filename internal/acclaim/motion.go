package acclaim

import (
	"errors"
	"fmt"
)

var ErrPostureSize = errors.New("posture size does not match skeleton")

// Motion is a skeleton together with the frames that drive it.
type Motion struct {
	skeleton *Skeleton
	postures []Posture
}

// NewMotion checks that every posture covers every bone of sk.
func NewMotion(sk *Skeleton, postures []Posture) (*Motion, error) {
	m := &Motion{skeleton: sk}
	if err := m.SetPostures(postures); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Motion) Skeleton() *Skeleton { return m.skeleton }

func (m *Motion) FrameCount() int { return len(m.postures) }

// Posture returns frame i. It panics when i is out of range.
func (m *Motion) Posture(i int) Posture { return m.postures[i] }

// Postures returns the frame sequence. Callers must not modify it.
func (m *Motion) Postures() []Posture { return m.postures }

// SetPostures replaces the frame sequence.
func (m *Motion) SetPostures(postures []Posture) error {
	n := m.skeleton.BoneCount()
	for i, p := range postures {
		if len(p.Rotations) != n || len(p.Translations) != n {
			return fmt.Errorf("%w: frame %d has %d/%d entries, skeleton has %d bones",
				ErrPostureSize, i, len(p.Rotations), len(p.Translations), n)
		}
	}
	m.postures = postures
	return nil
}

// Clone deep-copies the skeleton and every posture.
func (m *Motion) Clone() *Motion {
	return &Motion{
		skeleton: m.skeleton.Clone(),
		postures: ClonePostures(m.postures),
	}
}
