package mathutil

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Quat is a unit quaternion orientation (Real is w).
// It is gonum's r3.Rotation, so q.Rotate(v) applies it to a vector.
type Quat = r3.Rotation

// QuatIdentity returns the identity rotation.
func QuatIdentity() Quat {
	return Quat{Real: 1}
}

// QuatMul returns a·b: b is applied to a vector first, then a.
func QuatMul(a, b Quat) Quat {
	return Quat(quat.Mul(quat.Number(a), quat.Number(b)))
}

// QuatDot returns the 4D dot product of a and b.
func QuatDot(a, b Quat) float64 {
	return a.Real*b.Real + a.Imag*b.Imag + a.Jmag*b.Jmag + a.Kmag*b.Kmag
}

// QuatNormalize scales q to unit length. A zero quaternion becomes identity.
func QuatNormalize(q Quat) Quat {
	l := quat.Abs(quat.Number(q))
	if l < 1e-12 {
		return QuatIdentity()
	}
	return Quat(quat.Scale(1/l, quat.Number(q)))
}

// Slerp spherically interpolates between unit quaternions from a (t=0) to
// b (t=1) along the shorter arc.
func Slerp(a, b Quat, t float64) Quat {
	qa, qb := quat.Number(a), quat.Number(b)
	if QuatDot(a, b) < 0 {
		qb = quat.Scale(-1, qb)
	}

	// Half-angle form stays accurate for nearly parallel inputs, where acos(dot) does not.
	theta := 2 * math.Atan2(quat.Abs(quat.Sub(qa, qb)), quat.Abs(quat.Add(qa, qb)))
	sinTheta := math.Sin(theta)
	if sinTheta < 1e-12 {
		q := quat.Add(quat.Scale(1-t, qa), quat.Scale(t, qb))
		return QuatNormalize(Quat(q))
	}

	wa := math.Sin((1-t)*theta) / sinTheta
	wb := math.Sin(t*theta) / sinTheta
	return Quat(quat.Add(quat.Scale(wa, qa), quat.Scale(wb, qb)))
}

// QuatToMat3 converts a quaternion to a 3×3 rotation matrix.
func QuatToMat3(q Quat) Mat3 {
	x, y, z, w := q.Imag, q.Jmag, q.Kmag, q.Real
	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z

	return Mat3{
		1 - 2*(yy+zz), 2 * (xy - wz), 2 * (xz + wy),
		2 * (xy + wz), 1 - 2*(xx+zz), 2 * (yz - wx),
		2 * (xz - wy), 2 * (yz + wx), 1 - 2*(xx+yy),
	}
}

// EulerXYZ decomposes q into angles (radians) such that
// q == Rx(e.X)·Ry(e.Y)·Rz(e.Z). e.Y lies in [-π/2, π/2].
// At gimbal lock (|e.Y| == π/2) the Z angle is folded into X.
func EulerXYZ(q Quat) r3.Vec {
	m := QuatToMat3(QuatNormalize(q))

	// m[0], m[1] are cos(y)cos(z) and -cos(y)sin(z).
	cy := math.Hypot(m[0], m[1])
	if cy < 1e-9 {
		return r3.Vec{X: math.Atan2(m[7], m[4]), Y: math.Copysign(math.Pi/2, m[2]), Z: 0}
	}
	return r3.Vec{
		X: math.Atan2(-m[5], m[8]),
		Y: math.Atan2(m[2], cy),
		Z: math.Atan2(-m[1], m[0]),
	}
}

// EulerDegreeXYZ is EulerXYZ with the result in degrees.
func EulerDegreeXYZ(q Quat) r3.Vec {
	e := EulerXYZ(q)
	return r3.Vec{X: Rad2Deg(e.X), Y: Rad2Deg(e.Y), Z: Rad2Deg(e.Z)}
}
