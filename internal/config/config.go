package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"acclaim-fk/internal/mathutil"
)

// Config holds input paths, warp settings and bake/preview settings.
type Config struct {
	// Paths
	SkeletonFile string `json:"skeleton_file"`
	MotionFile   string `json:"motion_file"`
	OutputDir    string `json:"output_dir"`

	// Skeleton
	Scale float64 `json:"scale"`

	// Time warp; both zero disables it
	WarpOldKeyframe int `json:"warp_old_keyframe"`
	WarpNewKeyframe int `json:"warp_new_keyframe"`

	// Bake settings
	Workers int `json:"workers"`

	// Preview settings
	PreviewEvery  int    `json:"preview_every"`
	PreviewSize   int    `json:"preview_size"`
	Supersample   int    `json:"supersample"`
	PreviewFormat string `json:"preview_format"`
	PreviewView   string `json:"preview_view"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values; relative paths are
// resolved against the file's directory.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	base := filepath.Dir(path)
	for _, p := range []*string{&cfg.SkeletonFile, &cfg.MotionFile, &cfg.OutputDir} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}

	return cfg, nil
}

// WarpEnabled reports whether a time warp was requested.
func (c *Config) WarpEnabled() bool {
	return c.WarpOldKeyframe != 0 || c.WarpNewKeyframe != 0
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.SkeletonFile != "" {
		c.SkeletonFile = flags.SkeletonFile
	}
	if flags.MotionFile != "" {
		c.MotionFile = flags.MotionFile
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Scale > 0 {
		c.Scale = flags.Scale
	}
	if flags.WarpOld != 0 || flags.WarpNew != 0 {
		c.WarpOldKeyframe = flags.WarpOld
		c.WarpNewKeyframe = flags.WarpNew
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.PreviewEvery > 0 {
		c.PreviewEvery = flags.PreviewEvery
	}
	if flags.PreviewFormat != "" {
		c.PreviewFormat = flags.PreviewFormat
	}
	if flags.PreviewView != "" {
		c.PreviewView = flags.PreviewView
	}

	// Output next to the motion file by default
	if c.OutputDir == "" && c.MotionFile != "" {
		stem := strings.TrimSuffix(filepath.Base(c.MotionFile), filepath.Ext(c.MotionFile))
		c.OutputDir = filepath.Join(filepath.Dir(c.MotionFile), stem+"-baked")
	}

	if c.Scale <= 0 {
		c.Scale = 0.2
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.PreviewSize <= 0 {
		c.PreviewSize = 256
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.PreviewFormat == "" {
		c.PreviewFormat = "webp"
	}
	if c.PreviewView == "" {
		c.PreviewView = "threequarter"
	}
}

// Validate reports settings Resolve cannot repair.
func (c *Config) Validate() error {
	if c.SkeletonFile == "" {
		return fmt.Errorf("config: skeleton_file is required")
	}
	if c.MotionFile == "" {
		return fmt.Errorf("config: motion_file is required")
	}
	if c.WarpEnabled() && c.WarpNewKeyframe <= 0 {
		return fmt.Errorf("config: warp_new_keyframe must be positive, got %d", c.WarpNewKeyframe)
	}
	switch c.PreviewFormat {
	case "webp", "tga":
	default:
		return fmt.Errorf("config: unknown preview_format %q", c.PreviewFormat)
	}
	if _, ok := mathutil.Views[c.PreviewView]; !ok {
		return fmt.Errorf("config: unknown preview_view %q", c.PreviewView)
	}
	return nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	SkeletonFile  string
	MotionFile    string
	OutputDir     string
	Scale         float64
	WarpOld       int
	WarpNew       int
	Workers       int
	PreviewEvery  int
	PreviewFormat string
	PreviewView   string
}
