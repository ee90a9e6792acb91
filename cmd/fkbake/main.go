package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"acclaim-fk/internal/acclaim"
	"acclaim-fk/internal/batch"
	"acclaim-fk/internal/config"
	"acclaim-fk/internal/kinematics"
	"acclaim-fk/internal/mathutil"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	skeletonFile := flag.String("skeleton", "", "ASF skeleton file")
	motionFile := flag.String("motion", "", "AMC motion file")
	outputDir := flag.String("output", "", "Output directory (default: <motion>-baked next to the motion file)")
	scale := flag.Float64("scale", 0, "Skeleton length scale (default: 0.2)")
	warpOld := flag.Int("warp-old", 0, "Time warp: source keyframe")
	warpNew := flag.Int("warp-new", 0, "Time warp: target keyframe")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	previewEvery := flag.Int("preview-every", 0, "Write a preview image every N frames (default: off)")
	format := flag.String("format", "", "Preview format: webp or tga (default: webp)")
	view := flag.String("view", "", "Preview camera: front, side or threequarter")
	frames := flag.Int("frames", 0, "Bake only the first N frames for testing")

	flag.Parse()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		SkeletonFile:  *skeletonFile,
		MotionFile:    *motionFile,
		OutputDir:     *outputDir,
		Scale:         *scale,
		WarpOld:       *warpOld,
		WarpNew:       *warpNew,
		Workers:       *workers,
		PreviewEvery:  *previewEvery,
		PreviewFormat: *format,
		PreviewView:   *view,
	})

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Load skeleton
	sk, warnings, err := acclaim.LoadSkeleton(cfg.SkeletonFile, cfg.Scale)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading skeleton: %v\n", err)
		os.Exit(1)
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}
	fmt.Printf("Skeleton: %d bones (%d movable)\n", sk.BoneCount(), sk.MovableBoneCount())

	// Load motion
	motion, err := acclaim.LoadMotion(cfg.MotionFile, sk)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading motion: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Motion: %d frames\n", motion.FrameCount())

	if cfg.WarpEnabled() {
		if err := kinematics.TimeWarp(motion, cfg.WarpOldKeyframe, cfg.WarpNewKeyframe); err != nil {
			fmt.Fprintf(os.Stderr, "Error: time warp: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Time warp: keyframe %d -> %d\n", cfg.WarpOldKeyframe, cfg.WarpNewKeyframe)
	}

	// Limit for testing
	if *frames > 0 && *frames < motion.FrameCount() {
		motion, err = acclaim.NewMotion(sk, motion.Postures()[:*frames])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	if motion.FrameCount() == 0 {
		fmt.Println("No frames to bake.")
		os.Exit(0)
	}

	// Print summary
	mode := ""
	if *frames > 0 {
		mode = fmt.Sprintf(" (TEST: first %d)", *frames)
	}

	fmt.Printf("Acclaim forward kinematics bake%s\n", mode)
	fmt.Printf("Frames: %d, Workers: %d\n", motion.FrameCount(), cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	// Run batch
	batchCfg := batch.Config{
		OutputDir:     cfg.OutputDir,
		Workers:       cfg.Workers,
		PreviewEvery:  cfg.PreviewEvery,
		PreviewSize:   cfg.PreviewSize,
		Supersample:   cfg.Supersample,
		PreviewFormat: cfg.PreviewFormat,
		View:          mathutil.Views[cfg.PreviewView],
		Progress:      os.Stdout,
	}

	results := batch.Run(batchCfg, motion)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success, failed, previews := 0, 0, 0
	var errors []batch.Result
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failed++
		}
		if r.Preview != "" {
			previews++
		}
		if r.Error != "" {
			errors = append(errors, r)
		}
	}

	fmt.Printf("Solved: %d/%d\n", success, len(results))
	if cfg.PreviewEvery > 0 {
		fmt.Printf("Previews: %d\n", previews)
	}

	if len(errors) > 0 {
		fmt.Printf("\nFailed (%d):\n", len(errors))
		limit := min(20, len(errors))
		for _, e := range errors[:limit] {
			fmt.Printf("  frame %d: %s\n", e.Frame, e.Error)
		}
	}

	// Write manifest
	manifest := batch.NewManifest(results)
	manifest.Skeleton = cfg.SkeletonFile
	manifest.Motion = cfg.MotionFile
	manifest.Scale = cfg.Scale
	if cfg.WarpEnabled() {
		manifest.Warp = &batch.WarpEntry{OldKeyframe: cfg.WarpOldKeyframe, NewKeyframe: cfg.WarpNewKeyframe}
	}

	manifestPath, err := writeManifest(cfg.OutputDir, manifest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if failed > 0 || len(errors) > 0 {
		os.Exit(1)
	}
}

// writeManifest creates outputDir if needed and writes manifest.json into it.
func writeManifest(outputDir string, m batch.Manifest) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("create %s: %w", outputDir, err)
	}
	path := filepath.Join(outputDir, "manifest.json")
	return path, batch.WriteManifest(path, m)
}
