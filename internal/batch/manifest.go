package batch

import (
	"encoding/json"
	"os"
)

// Manifest describes a bake: its inputs, the warp applied and every
// solved frame.
type Manifest struct {
	Skeleton   string          `json:"skeleton"`
	Motion     string          `json:"motion"`
	Scale      float64         `json:"scale"`
	Warp       *WarpEntry      `json:"warp,omitempty"`
	FrameCount int             `json:"frame_count"`
	BoneCount  int             `json:"bone_count"`
	Frames     []ManifestEntry `json:"frames"`
}

// WarpEntry records the keyframe pair of a time warp.
type WarpEntry struct {
	OldKeyframe int `json:"old_keyframe"`
	NewKeyframe int `json:"new_keyframe"`
}

// ManifestEntry represents one frame in the output manifest.
type ManifestEntry struct {
	Frame   int             `json:"frame"`
	Preview string          `json:"preview,omitempty"`
	Error   string          `json:"error,omitempty"`
	Bones   []BoneTransform `json:"bones,omitempty"`
}

// NewManifest fills Frames from results.
func NewManifest(results []Result) Manifest {
	m := Manifest{FrameCount: len(results), Frames: make([]ManifestEntry, len(results))}
	for i, r := range results {
		m.Frames[i] = ManifestEntry{
			Frame:   r.Frame,
			Preview: r.Preview,
			Error:   r.Error,
			Bones:   r.Bones,
		}
		if len(r.Bones) > m.BoneCount {
			m.BoneCount = len(r.Bones)
		}
	}
	return m
}

// WriteManifest writes m as indented JSON to path.
func WriteManifest(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	err = json.Unmarshal(data, &m)
	return m, err
}
