// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bytes"
	goimage "image"
	"image/png"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"

	"github.com/ajroetker/go-stereo/stereo"
	"github.com/ajroetker/go-stereo/stereo/aggregate"
	"github.com/ajroetker/go-stereo/stereo/image"
	"github.com/ajroetker/go-stereo/stereo/score"
)

const (
	pairWidth  = 64
	pairHeight = 24
	pairShift  = 6
)

// writePair writes a random texture and its copy shifted left by
// pairShift pixels as PNG files.
func writePair(t *testing.T) (leftPath, rightPath string) {
	t.Helper()
	rng := rand.New(rand.NewPCG(7, 11))
	left := goimage.NewGray(goimage.Rect(0, 0, pairWidth, pairHeight))
	right := goimage.NewGray(goimage.Rect(0, 0, pairWidth, pairHeight))
	for y := range pairHeight {
		for x := range pairWidth {
			left.Pix[y*left.Stride+x] = uint8(rng.IntN(256))
		}
		for x := range pairWidth {
			if x+pairShift < pairWidth {
				right.Pix[y*right.Stride+x] = left.Pix[y*left.Stride+x+pairShift]
			} else {
				right.Pix[y*right.Stride+x] = uint8(rng.IntN(256))
			}
		}
	}
	dir := t.TempDir()
	leftPath = filepath.Join(dir, "left.png")
	rightPath = filepath.Join(dir, "right.png")
	for path, img := range map[string]*goimage.Gray{leftPath: left, rightPath: right} {
		f, err := os.Create(path)
		require.NoError(t, err)
		require.NoError(t, png.Encode(f, img))
		require.NoError(t, f.Close())
	}
	return leftPath, rightPath
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestOptions_Config(t *testing.T) {
	o := defaultOptions()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o.register(fs)
	require.NoError(t, fs.Parse([]string{
		"--metric", "SAD", "--min", "4", "--max", "40",
		"--radius-x", "3", "--radius-y", "1",
		"--border", "value", "--border-value", "17",
		"--aggregation", "bestfive", "--rtol", "2",
		"--texture", "0.25", "--max-error", "900",
		"--subpixel", "--squared", "--band-height", "8",
	}))
	cfg, metric, err := o.config()
	require.NoError(t, err)
	assert.Equal(t, metricChoice{}, metric)
	assert.Equal(t, 4, cfg.DisparityMin)
	assert.Equal(t, 40, cfg.DisparityMax)
	assert.Equal(t, 3, cfg.RadiusX)
	assert.Equal(t, 1, cfg.RadiusY)
	assert.Equal(t, image.Border{Kind: image.BorderValue, Value: 17}, cfg.Border)
	assert.Equal(t, aggregate.BestFive, cfg.Aggregation)
	assert.Equal(t, 8, cfg.BandHeight)
	assert.Equal(t, 2, cfg.Select.RightToLeftTolerance)
	assert.Equal(t, 0.25, cfg.Select.TextureThreshold)
	assert.Equal(t, 900.0, cfg.Select.MaxError)
	assert.True(t, cfg.Select.SubPixel)
	assert.True(t, cfg.Select.SquaredError)
}

func TestOptions_Defaults(t *testing.T) {
	cfg, metric, err := defaultOptions().config()
	require.NoError(t, err)
	assert.Equal(t, stereo.DefaultConfig(), cfg)
	assert.True(t, metric.census)
	assert.Equal(t, float32(score.DefaultNCCEpsilon), defaultOptions().nccEps)
}

func TestOptions_Errors(t *testing.T) {
	tests := []struct {
		name string
		set  func(o *options)
		want string
	}{
		{"metric", func(o *options) { o.metric = "ssd" }, "census3x3|census5x5|census7x7|ncc|sad"},
		{"border", func(o *options) { o.border = "mirror" }, "clip|extend|reflect|value|wrap"},
		{"aggregation", func(o *options) { o.aggregation = "three" }, "bestfive|single"},
		{"scale", func(o *options) { o.scale = 0 }, "--scale"},
		{"out-scale", func(o *options) { o.outScale = -1 }, "--out-scale"},
		{"workers", func(o *options) { o.workers = -2 }, "--workers"},
		{"range", func(o *options) { o.min, o.max = 9, 9 }, "range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := defaultOptions()
			tt.set(o)
			_, _, err := o.config()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestOptions_Points(t *testing.T) {
	o := defaultOptions()
	o.at = []string{"3,4", " 10 , 20 "}
	pts, err := o.points()
	require.NoError(t, err)
	assert.Equal(t, []point{{3, 4}, {10, 20}}, pts)

	o.at = []string{"3,4", "7", "a,b"}
	_, err = o.points()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"7"`)
	assert.Contains(t, err.Error(), `"a,b"`)
}

func TestDense_PNG(t *testing.T) {
	leftPath, rightPath := writePair(t)
	out := filepath.Join(t.TempDir(), "disp.png")
	_, stderr, err := execute(t, leftPath, rightPath,
		"-o", out, "--metric", "sad", "--max", "15", "--rtol", "0", "--out-scale", "4", "-j", "3", "-v")
	require.NoError(t, err)
	assert.Contains(t, stderr, "wrote disparity")
	assert.Contains(t, stderr, "band schedule")

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	gray, ok := img.(*goimage.Gray16)
	require.True(t, ok, "decoded %T, want *image.Gray16", img)
	require.Equal(t, goimage.Rect(0, 0, pairWidth, pairHeight), gray.Bounds())

	margin := 2*2 + 2
	for y := range pairHeight {
		for x := 15 + margin; x < pairWidth-margin; x++ {
			require.Equal(t, uint16(4*pairShift), gray.Gray16At(x, y).Y, "pixel (%d, %d)", x, y)
		}
	}
}

func TestToGray16(t *testing.T) {
	disp, err := image.FromSlice(4, 1, []float32{0, 4, 2.6, 1e6})
	require.NoError(t, err)
	gray := toGray16(disp, 0, 4, 1)
	got := []uint16{gray.Gray16At(0, 0).Y, gray.Gray16At(1, 0).Y, gray.Gray16At(2, 0).Y, gray.Gray16At(3, 0).Y}
	assert.Equal(t, []uint16{0, 65535, 3, 65534}, got, "disparity 0 must differ from invalid")

	gray = toGray16(disp, 3, 4, 2)
	assert.Equal(t, uint16(6), gray.Gray16At(0, 0).Y)
	assert.Equal(t, uint16(65535), gray.Gray16At(1, 0).Y)
}

func TestDense_TIFF(t *testing.T) {
	leftPath, rightPath := writePair(t)
	out := filepath.Join(t.TempDir(), "disp.tiff")
	_, _, err := execute(t, leftPath, rightPath,
		"-o", out, "--metric", "census3x3", "--min", "2", "--max", "15", "--rtol", "0",
		"--aggregation", "bestfive")
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := tiff.Decode(f)
	require.NoError(t, err)
	r, _, _, _ := img.At(pairWidth/2, pairHeight/2).RGBA()
	assert.Equal(t, uint32(pairShift), r)
}

func TestQuery(t *testing.T) {
	leftPath, rightPath := writePair(t)
	stdout, _, err := execute(t, leftPath, rightPath,
		"--metric", "sad", "--max", "15", "--rtol", "0", "--at", "40,10", "--at", "100,10")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	assert.Equal(t, []string{"40 10 6", "100 10 invalid"}, lines)
}

func TestRun_Errors(t *testing.T) {
	leftPath, rightPath := writePair(t)
	dir := t.TempDir()

	_, _, err := execute(t, leftPath)
	require.Error(t, err)

	_, _, err = execute(t, leftPath, filepath.Join(dir, "missing.png"), "-o", filepath.Join(dir, "d.png"))
	require.Error(t, err)

	_, _, err = execute(t, leftPath, rightPath, "-o", filepath.Join(dir, "d.jpg"))
	require.ErrorContains(t, err, "unsupported output format")

	_, _, err = execute(t, leftPath, rightPath, "--metric", "ncc", "--border", "clip", "-o", filepath.Join(dir, "d.png"))
	require.ErrorIs(t, err, stereo.ErrBorderRequired)
}

func TestLoadGray_Scale(t *testing.T) {
	leftPath, _ := writePair(t)
	img, err := loadGray(t.Context(), leftPath, 0.5)
	require.NoError(t, err)
	assert.Equal(t, pairWidth/2, img.Width())
	assert.Equal(t, pairHeight/2, img.Height())
}
