package batch

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"acclaim-fk/internal/acclaim"
	"acclaim-fk/internal/kinematics"
	"acclaim-fk/internal/mathutil"
	"acclaim-fk/internal/preview"
)

// Config holds all shared settings for a bake run.
type Config struct {
	OutputDir     string
	Workers       int
	PreviewEvery  int // 0 disables previews
	PreviewSize   int
	Supersample   int
	PreviewFormat string
	View          mathutil.Mat3
	Progress      io.Writer // nil keeps the run quiet
}

// BoneTransform is one bone's solved placement in world space.
// Rotation is a unit quaternion stored as (w, x, y, z).
type BoneTransform struct {
	Name     string     `json:"name"`
	Start    [3]float64 `json:"start"`
	End      [3]float64 `json:"end"`
	Rotation [4]float64 `json:"rotation"`
}

// Result holds the outcome of solving one frame. A frame that solved but
// whose preview could not be written keeps Success and carries Error.
type Result struct {
	Frame   int
	Bones   []BoneTransform
	Preview string // path relative to OutputDir, empty when none was written
	Success bool
	Error   string
}

// Run solves every frame of m using a worker pool, then renders a
// preview for every PreviewEvery-th frame. m is not modified; each worker
// solves against its own copy of the skeleton.
func Run(cfg Config, m *acclaim.Motion) []Result {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	total := m.FrameCount()
	results := make([]Result, total)

	pool(cfg, "frames", total, func() func(int) {
		sk := m.Skeleton().Clone()
		return func(i int) {
			results[i] = solveFrame(sk, m.Posture(i), i)
		}
	})

	if cfg.PreviewEvery <= 0 || cfg.OutputDir == "" {
		return results
	}

	var frames []int
	bounds := preview.EmptyBounds()
	for i := 0; i < total; i += cfg.PreviewEvery {
		if !results[i].Success {
			continue
		}
		frames = append(frames, i)
		bounds = bounds.Union(preview.FitBounds(cfg.View, segments(results[i].Bones)))
	}

	opt := preview.Options{
		Size:        cfg.PreviewSize,
		Supersample: cfg.Supersample,
		View:        cfg.View,
		Bounds:      &bounds,
	}
	pool(cfg, "previews", len(frames), func() func(int) {
		return func(k int) {
			r := &results[frames[k]]
			rel := filepath.Join("previews", fmt.Sprintf("%05d%s", r.Frame, preview.Ext(cfg.PreviewFormat)))
			img := preview.Render(segments(r.Bones), opt)
			if err := preview.WriteFile(filepath.Join(cfg.OutputDir, rel), img, cfg.PreviewFormat); err != nil {
				r.Error = err.Error()
				return
			}
			r.Preview = filepath.ToSlash(rel)
		}
	})

	return results
}

// pool runs n jobs over cfg.Workers goroutines. newWorker is called once
// per goroutine so each can own private state.
func pool(cfg Config, label string, n int, newWorker func() func(int)) {
	if n == 0 {
		return
	}
	var processed atomic.Int64
	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	if cfg.Progress != nil {
		go func() {
			ticker := time.NewTicker(2 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					p := processed.Load()
					if p > 0 {
						elapsed := time.Since(start).Seconds()
						rate := float64(p) / elapsed
						fmt.Fprintf(cfg.Progress, "  [%d/%d] %.1f %s/sec\n", p, n, rate, label)
					}
				}
			}
		}()
	}

	jobs := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			work := newWorker()
			for idx := range jobs {
				work(idx)
				processed.Add(1)
			}
		}()
	}

	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	close(done)
}

func solveFrame(sk *acclaim.Skeleton, p acclaim.Posture, frame int) (res Result) {
	res.Frame = frame
	defer func() {
		if r := recover(); r != nil {
			res = Result{Frame: frame, Error: fmt.Sprint(r)}
		}
	}()

	kinematics.Solve(sk, p)

	order := sk.PreOrder()
	res.Bones = make([]BoneTransform, len(order))
	for k, i := range order {
		b := sk.Bone(i)
		q := b.Rotation
		res.Bones[k] = BoneTransform{
			Name:     b.Name,
			Start:    mathutil.Array(b.StartPosition),
			End:      mathutil.Array(b.EndPosition),
			Rotation: [4]float64{q.Real, q.Imag, q.Jmag, q.Kmag},
		}
	}
	res.Success = true
	return res
}

func segments(bones []BoneTransform) []preview.Segment {
	segs := make([]preview.Segment, len(bones))
	for i, b := range bones {
		segs[i] = preview.Segment{Start: mathutil.FromArray(b.Start), End: mathutil.FromArray(b.End)}
	}
	return segs
}
