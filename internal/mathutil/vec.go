package mathutil

import "gonum.org/v1/gonum/spatial/r3"

// Lerp returns a + (b-a)·t.
func Lerp(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}

// Array returns v as a fixed-size array, the layout used in JSON output.
func Array(v r3.Vec) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// FromArray is the inverse of Array.
func FromArray(a [3]float64) r3.Vec {
	return r3.Vec{X: a[0], Y: a[1], Z: a[2]}
}
