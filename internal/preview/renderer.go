package preview

import (
	"image"
	"image/color"
	"math"
	"sort"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
	"gonum.org/v1/gonum/spatial/r3"

	"acclaim-fk/internal/mathutil"
)

// Segment is one solved bone in world space.
type Segment struct {
	Start, End r3.Vec
}

// Options controls snapshot rendering.
type Options struct {
	Size        int           // output width and height in pixels
	Supersample int           // render at Size*Supersample, then downscale
	View        mathutil.Mat3 // world -> view rotation; view +Y is up, +Z faces the camera
	Bounds      *Bounds       // view-space framing; nil or empty fits the segments
	LineWidth   float64       // bone thickness in output pixels
}

var (
	background = color.RGBA{24, 26, 32, 255}
	farColor   = color.RGBA{90, 90, 40, 255}
	nearColor  = color.RGBA{235, 220, 90, 255}
)

// Render draws segs as thick anti-aliased lines, far bones first, and
// returns an opaque Size×Size image.
func Render(segs []Segment, opt Options) *image.RGBA {
	if opt.Size <= 0 {
		opt.Size = 256
	}
	if opt.Supersample <= 0 {
		opt.Supersample = 1
	}
	if opt.LineWidth <= 0 {
		opt.LineWidth = 2
	}
	if opt.View == (mathutil.Mat3{}) {
		opt.View = mathutil.ViewFront
	}

	renderSize := opt.Size * opt.Supersample
	img := image.NewRGBA(image.Rect(0, 0, renderSize, renderSize))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	projected := make([]Segment, len(segs))
	for i, s := range segs {
		projected[i] = Segment{Start: opt.View.MulVec3(s.Start), End: opt.View.MulVec3(s.End)}
	}

	if len(projected) == 0 {
		return downsample(img, opt.Size)
	}
	bounds := fit(projected)
	if opt.Bounds != nil && !opt.Bounds.Empty() {
		bounds = *opt.Bounds
	}

	cx, cy := bounds.Center()
	span := math.Max(bounds.MaxX-bounds.MinX, bounds.MaxY-bounds.MinY)
	if span < 1e-3 {
		span = 1e-3
	}
	margin := float64(16 * opt.Supersample)
	scale := (float64(renderSize) - 2*margin) / span
	half := float64(renderSize) / 2
	toScreen := func(v r3.Vec) (float32, float32) {
		return float32(half + (v.X-cx)*scale), float32(half - (v.Y-cy)*scale)
	}

	minZ, maxZ := math.Inf(1), math.Inf(-1)
	for _, s := range projected {
		z := (s.Start.Z + s.End.Z) / 2
		minZ, maxZ = math.Min(minZ, z), math.Max(maxZ, z)
	}
	sort.SliceStable(projected, func(i, j int) bool {
		return projected[i].Start.Z+projected[i].End.Z < projected[j].Start.Z+projected[j].End.Z
	})

	width := opt.LineWidth * float64(opt.Supersample)
	z := vector.NewRasterizer(renderSize, renderSize)
	for _, s := range projected {
		x0, y0 := toScreen(s.Start)
		x1, y1 := toScreen(s.End)

		z.Reset(renderSize, renderSize)
		z.DrawOp = draw.Over
		thickLine(z, x0, y0, x1, y1, float32(width))

		depth := 0.5
		if maxZ > minZ {
			depth = ((s.Start.Z+s.End.Z)/2 - minZ) / (maxZ - minZ)
		}
		z.Draw(img, img.Bounds(), image.NewUniform(shade(depth)), image.Point{})
	}

	return downsample(img, opt.Size)
}

// thickLine adds a w-wide quad from (x0,y0) to (x1,y1), or a w-wide
// square when the segment is shorter than a pixel.
func thickLine(z *vector.Rasterizer, x0, y0, x1, y1, w float32) {
	dx, dy := x1-x0, y1-y0
	l := float32(math.Hypot(float64(dx), float64(dy)))
	h := w / 2
	if l < 1 {
		z.MoveTo(x0-h, y0-h)
		z.LineTo(x0+h, y0-h)
		z.LineTo(x0+h, y0+h)
		z.LineTo(x0-h, y0+h)
		z.ClosePath()
		return
	}
	nx, ny := -dy/l*h, dx/l*h
	z.MoveTo(x0+nx, y0+ny)
	z.LineTo(x1+nx, y1+ny)
	z.LineTo(x1-nx, y1-ny)
	z.LineTo(x0-nx, y0-ny)
	z.ClosePath()
}

func shade(depth float64) color.RGBA {
	mix := func(a, b uint8) uint8 {
		return uint8(float64(a) + (float64(b)-float64(a))*depth + 0.5)
	}
	return color.RGBA{
		R: mix(farColor.R, nearColor.R),
		G: mix(farColor.G, nearColor.G),
		B: mix(farColor.B, nearColor.B),
		A: 255,
	}
}
