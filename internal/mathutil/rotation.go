package mathutil

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// QuatX returns a rotation around the X axis. Angle in radians.
func QuatX(a float64) Quat {
	s, c := math.Sincos(a * 0.5)
	return Quat{Real: c, Imag: s}
}

// QuatY returns a rotation around the Y axis.
func QuatY(a float64) Quat {
	s, c := math.Sincos(a * 0.5)
	return Quat{Real: c, Jmag: s}
}

// QuatZ returns a rotation around the Z axis.
func QuatZ(a float64) Quat {
	s, c := math.Sincos(a * 0.5)
	return Quat{Real: c, Kmag: s}
}

// RotateDegreeZYX builds Rz(v.Z)·Ry(v.Y)·Rx(v.X) from per-axis degrees,
// i.e. the X rotation is applied to a vector first.
func RotateDegreeZYX(v r3.Vec) Quat {
	return QuatMul(QuatMul(QuatZ(Deg2Rad(v.Z)), QuatY(Deg2Rad(v.Y))), QuatX(Deg2Rad(v.X)))
}

// RotateDegreeXYZ builds Rx(v.X)·Ry(v.Y)·Rz(v.Z) from per-axis degrees,
// i.e. the Z rotation is applied to a vector first.
func RotateDegreeXYZ(v r3.Vec) Quat {
	return QuatMul(QuatMul(QuatX(Deg2Rad(v.X)), QuatY(Deg2Rad(v.Y))), QuatZ(Deg2Rad(v.Z)))
}

// Deg2Rad converts degrees to radians.
func Deg2Rad(d float64) float64 {
	return d * math.Pi / 180
}

// Rad2Deg converts radians to degrees.
func Rad2Deg(r float64) float64 {
	return r * 180 / math.Pi
}
