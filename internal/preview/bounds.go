package preview

import (
	"math"

	"acclaim-fk/internal/mathutil"
)

// Bounds is a view-space rectangle used to frame snapshots. Sharing one
// Bounds across a clip keeps the camera still between frames.
// A zero-extent Bounds is a real point; only EmptyBounds is empty.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// EmptyBounds returns the inverted rectangle that Union treats as nothing.
func EmptyBounds() Bounds {
	return Bounds{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
}

// Empty reports whether nothing has been added to b.
func (b Bounds) Empty() bool {
	return b.MinX > b.MaxX || b.MinY > b.MaxY
}

func (b Bounds) Center() (float64, float64) {
	return (b.MinX + b.MaxX) / 2, (b.MinY + b.MaxY) / 2
}

// Union returns the smallest rectangle holding both b and o.
func (b Bounds) Union(o Bounds) Bounds {
	if b.Empty() {
		return o
	}
	if o.Empty() {
		return b
	}
	return Bounds{
		MinX: math.Min(b.MinX, o.MinX),
		MinY: math.Min(b.MinY, o.MinY),
		MaxX: math.Max(b.MaxX, o.MaxX),
		MaxY: math.Max(b.MaxY, o.MaxY),
	}
}

// FitBounds returns the view-space extent of segs under view.
func FitBounds(view mathutil.Mat3, segs []Segment) Bounds {
	projected := make([]Segment, len(segs))
	for i, s := range segs {
		projected[i] = Segment{Start: view.MulVec3(s.Start), End: view.MulVec3(s.End)}
	}
	return fit(projected)
}

func fit(projected []Segment) Bounds {
	b := EmptyBounds()
	for _, s := range projected {
		for _, v := range [2]struct{ X, Y float64 }{{s.Start.X, s.Start.Y}, {s.End.X, s.End.Y}} {
			b.MinX = math.Min(b.MinX, v.X)
			b.MinY = math.Min(b.MinY, v.Y)
			b.MaxX = math.Max(b.MaxX, v.X)
			b.MaxY = math.Max(b.MaxY, v.Y)
		}
	}
	return b
}
