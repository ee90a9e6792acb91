package kinematics

import (
	"errors"
	"fmt"
	"math"

	"acclaim-fk/internal/acclaim"
	"acclaim-fk/internal/mathutil"
)

var ErrInvalidKeyframe = errors.New("kinematics: invalid keyframe")

// Warp retimes postures so that the frame at oldKeyframe lands on
// newKeyframe. Output frame i samples source time
//
//	i·old/new       for i <= new
//	i - (new - old) for i > new
//
// Translations are interpolated linearly; rotations are slerped between
// the Rx·Ry·Rz orientations of the neighbouring frames and decomposed back
// to XYZ degrees. Output frames whose source time falls past the end keep
// their original pose. The result has the same length as postures and
// shares no storage with it.
//
// newKeyframe must be positive and oldKeyframe must index a frame.
func Warp(postures []acclaim.Posture, oldKeyframe, newKeyframe int) ([]acclaim.Posture, error) {
	n := len(postures)
	if newKeyframe <= 0 {
		return nil, fmt.Errorf("%w: new keyframe %d must be positive", ErrInvalidKeyframe, newKeyframe)
	}
	if oldKeyframe < 0 || oldKeyframe >= n {
		return nil, fmt.Errorf("%w: old keyframe %d outside clip of %d frames", ErrInvalidKeyframe, oldKeyframe, n)
	}

	out := acclaim.ClonePostures(postures)
	difference := newKeyframe - oldKeyframe

	for i := 0; i < n; i++ {
		var oldTime float64
		if i <= newKeyframe {
			// Same as (old/new)·i, but exact whenever new divides old·i.
			oldTime = float64(oldKeyframe*i) / float64(newKeyframe)
		} else {
			oldTime = float64(i - difference)
		}
		if oldTime >= float64(n) {
			break
		}

		lower := int(math.Floor(oldTime))
		frac := oldTime - float64(lower)
		if frac == 0 {
			out[i] = postures[lower].Clone()
			continue
		}
		// Unreachable with oldKeyframe < n, kept so rounding can never read past the end.
		upper := min(lower+1, n-1)

		out[i] = interpolate(postures[lower], postures[upper], frac)
	}
	return out, nil
}

// MustWarp is Warp for callers that have already validated the keyframes.
func MustWarp(postures []acclaim.Posture, oldKeyframe, newKeyframe int) []acclaim.Posture {
	out, err := Warp(postures, oldKeyframe, newKeyframe)
	if err != nil {
		panic(err)
	}
	return out
}

// TimeWarp replaces m's frames with their warped version.
func TimeWarp(m *acclaim.Motion, oldKeyframe, newKeyframe int) error {
	out, err := Warp(m.Postures(), oldKeyframe, newKeyframe)
	if err != nil {
		return err
	}
	return m.SetPostures(out)
}

func interpolate(a, b acclaim.Posture, frac float64) acclaim.Posture {
	p := acclaim.NewPosture(a.Len())
	for j := range p.Rotations {
		p.Translations[j] = mathutil.Lerp(a.Translations[j], b.Translations[j], frac)

		qa := mathutil.RotateDegreeXYZ(a.Rotations[j])
		qb := mathutil.RotateDegreeXYZ(b.Rotations[j])
		q := mathutil.QuatNormalize(mathutil.Slerp(qa, qb, frac))
		p.Rotations[j] = mathutil.EulerDegreeXYZ(q)
	}
	return p
}
