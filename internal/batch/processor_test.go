package batch

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"acclaim-fk/internal/acclaim"
	"acclaim-fk/internal/kinematics"
	"acclaim-fk/internal/mathutil"
)

func testMotion(t *testing.T, frames int) *acclaim.Motion {
	t.Helper()
	sk := acclaim.NewSkeleton(1)
	prev := acclaim.RootIndex
	for _, name := range []string{"spine", "neck", "head"} {
		idx, err := sk.AddBone(acclaim.BoneSpec{
			Name:   name,
			Dir:    r3.Vec{Y: 1},
			Length: 1,
			DOF:    acclaim.DOFRX | acclaim.DOFRZ,
		})
		require.NoError(t, err)
		require.NoError(t, sk.Link(prev, idx))
		prev = idx
	}
	arm, err := sk.AddBone(acclaim.BoneSpec{Name: "arm", Dir: r3.Vec{X: 1}, Length: 2, DOF: acclaim.DOFRZ})
	require.NoError(t, err)
	require.NoError(t, sk.Link(1, arm))
	require.NoError(t, sk.Prepare())

	postures := make([]acclaim.Posture, frames)
	for i := range postures {
		p := acclaim.NewPosture(sk.BoneCount())
		p.Translations[acclaim.RootIndex] = r3.Vec{X: 0.1 * float64(i)}
		p.Rotations[1] = r3.Vec{X: 5 * float64(i)}
		p.Rotations[arm] = r3.Vec{Z: -10 * float64(i)}
		postures[i] = p
	}
	m, err := acclaim.NewMotion(sk, postures)
	require.NoError(t, err)
	return m
}

func TestRunMatchesSolve(t *testing.T) {
	m := testMotion(t, 12)
	results := Run(Config{Workers: 3}, m)
	require.Len(t, results, 12)

	sk := m.Skeleton().Clone()
	for i, r := range results {
		require.True(t, r.Success, "frame %d: %s", i, r.Error)
		assert.Equal(t, i, r.Frame)
		assert.Empty(t, r.Preview)

		kinematics.Solve(sk, m.Posture(i))
		order := sk.PreOrder()
		require.Len(t, r.Bones, len(order))
		for k, idx := range order {
			b := sk.Bone(idx)
			assert.Equal(t, b.Name, r.Bones[k].Name)
			assert.Equal(t, mathutil.Array(b.StartPosition), r.Bones[k].Start)
			assert.Equal(t, mathutil.Array(b.EndPosition), r.Bones[k].End)
			assert.Equal(t, [4]float64{b.Rotation.Real, b.Rotation.Imag, b.Rotation.Jmag, b.Rotation.Kmag}, r.Bones[k].Rotation)
		}
	}

	// The motion's own skeleton is left untouched.
	assert.Equal(t, r3.Vec{}, m.Skeleton().Bone(3).EndPosition)
}

func TestRunWorkerCountDoesNotMatter(t *testing.T) {
	m := testMotion(t, 20)
	assert.Equal(t, Run(Config{Workers: 1}, m), Run(Config{Workers: 8}, m))
	assert.Len(t, Run(Config{}, m), 20)
}

func TestRunWritesPreviews(t *testing.T) {
	dir := t.TempDir()
	m := testMotion(t, 7)
	var progress bytes.Buffer

	results := Run(Config{
		OutputDir:     dir,
		Workers:       2,
		PreviewEvery:  3,
		PreviewSize:   32,
		Supersample:   1,
		PreviewFormat: "tga",
		View:          mathutil.ViewFront,
		Progress:      &progress,
	}, m)

	for i, r := range results {
		if i%3 != 0 {
			assert.Empty(t, r.Preview, "frame %d", i)
			continue
		}
		require.Empty(t, r.Error)
		assert.Equal(t, fmt.Sprintf("previews/%05d.tga", i), r.Preview)
		assert.FileExists(t, filepath.Join(dir, r.Preview))
	}
}

func TestRunEmptyMotion(t *testing.T) {
	m := testMotion(t, 0)
	assert.Empty(t, Run(Config{Workers: 2, PreviewEvery: 1, OutputDir: t.TempDir()}, m))
}

func TestManifestRoundTrip(t *testing.T) {
	m := testMotion(t, 4)
	results := Run(Config{Workers: 2}, m)
	results[2].Error = "disk full"

	man := NewManifest(results)
	man.Skeleton = "body.asf"
	man.Motion = "walk.amc"
	man.Scale = 1
	man.Warp = &WarpEntry{OldKeyframe: 1, NewKeyframe: 2}
	assert.Equal(t, 4, man.FrameCount)
	assert.Equal(t, 5, man.BoneCount)

	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, WriteManifest(path, man))

	got, err := ReadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, man, got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"old_keyframe": 1`)
	assert.Contains(t, string(data), `"error": "disk full"`)
}
