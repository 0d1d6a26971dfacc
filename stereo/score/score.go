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

package score

import (
	"errors"
	"fmt"
	"math"

	"github.com/ajroetker/go-stereo/stereo/image"
	"github.com/ajroetker/go-stereo/stereo/workerpool"
)

var (
	// ErrRadius reports a negative region radius.
	ErrRadius = errors.New("invalid region radius")

	// ErrRange reports an invalid disparity range.
	ErrRange = errors.New("invalid disparity range")

	// ErrSize reports invalid or mismatched image dimensions.
	ErrSize = errors.New("invalid image size")

	// ErrBorder reports a border policy the metric cannot work with.
	ErrBorder = errors.New("unsupported border policy")
)

// Score is the element type of score arrays.
type Score interface {
	int32 | float32
}

// Kind is the direction of a metric.
type Kind int

const (
	// Error metrics are minimized (SAD, census).
	Error Kind = iota

	// Correlation metrics are maximized (NCC).
	Correlation
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	if k == Correlation {
		return "correlation"
	}
	return "error"
}

// Worst returns the worst possible score of type S for the kind:
// +Inf or MaxInt32 for error metrics, -Inf or MinInt32 for correlation.
func Worst[S Score](k Kind) S {
	var z S
	switch any(z).(type) {
	case int32:
		if k == Correlation {
			return any(int32(math.MinInt32)).(S)
		}
		return any(int32(math.MaxInt32)).(S)
	default:
		if k == Correlation {
			return any(float32(math.Inf(-1))).(S)
		}
		return any(float32(math.Inf(1))).(S)
	}
}

// Geometry describes the images and the search performed on them.
type Geometry struct {
	Width, Height int

	// RadiusX and RadiusY are the window radii; the window is
	// (2*RadiusX+1) x (2*RadiusY+1).
	RadiusX, RadiusY int

	// DisparityMin and DisparityMax bound the search, both inclusive.
	DisparityMin, DisparityMax int

	Border image.Border
}

// Validate fails fast on configurations that cannot be processed.
func (g Geometry) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrSize, g.Width, g.Height)
	}
	if g.RadiusX < 0 || g.RadiusY < 0 {
		return fmt.Errorf("%w: (%d, %d)", ErrRadius, g.RadiusX, g.RadiusY)
	}
	if g.DisparityMin < 0 || g.DisparityMin >= g.DisparityMax {
		return fmt.Errorf("%w: [%d, %d]", ErrRange, g.DisparityMin, g.DisparityMax)
	}
	if err := g.Border.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrBorder, err)
	}
	return nil
}

// Range returns the number of disparities searched.
func (g Geometry) Range() int {
	return g.DisparityMax - g.DisparityMin + 1
}

// BlockWidth returns the window width.
func (g Geometry) BlockWidth() int {
	return 2*g.RadiusX + 1
}

// RegionHeight returns the window height.
func (g Geometry) RegionHeight() int {
	return 2*g.RadiusY + 1
}

// MaxAt returns the largest disparity that can be evaluated at column x.
func (g Geometry) MaxAt(x int) int {
	return min(x, g.DisparityMax)
}

// LocalRange returns the number of disparities that can be evaluated at
// column x, or 0 when x < DisparityMin.
func (g Geometry) LocalRange(x int) int {
	return max(g.MaxAt(x)-g.DisparityMin+1, 0)
}

// Len returns the length of a score array for one row.
func (g Geometry) Len() int {
	return g.Range() * g.Width
}

// Metric is a block matching cost strategy. Implementations are immutable
// and may be shared.
type Metric[T image.Sample, S Score] interface {
	// Name identifies the metric, e.g. "sad".
	Name() string

	// Kind reports whether scores are minimized or maximized.
	Kind() Kind

	// Bind prepares per-call state for an image pair. The pool, if not
	// nil, is used for whole-image preprocessing.
	Bind(pool *workerpool.Pool, left, right *image.Image[T], g Geometry) (Bound[S], error)
}

// Bound is a metric bound to an image pair. It is read-only and safe to
// share across workers; mutable row buffers live in a Scratch.
type Bound[S Score] interface {
	Geometry() Geometry
	Kind() Kind

	// NewScratch allocates worker-private row buffers.
	NewScratch() Scratch

	// ScoreRow writes the horizontal window scores of one row into out,
	// which must hold at least Geometry().Len() elements. Row may lie
	// outside the image; the border policy decides what it contains.
	ScoreRow(row int, out []S, scratch Scratch)

	// RequiresNormalize reports whether window sums must go through
	// NormalizeRegionScores before selection.
	RequiresNormalize() bool

	// NormalizeRegionScores converts the raw window sums centred on row
	// into final scores. Row may lie up to RadiusY outside the image.
	NormalizeRegionScores(row int, raw, dst []S)
}

// Scratch holds worker-private buffers created by Bound.NewScratch.
type Scratch interface {
	rowScratch()
}

// checkBind validates the images against the geometry.
func checkBind[T image.Sample](left, right *image.Image[T], g Geometry) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if left == nil || right == nil {
		return fmt.Errorf("%w: nil image", ErrSize)
	}
	if !image.SameSize(left, right) {
		return fmt.Errorf("%w: left %dx%d, right %dx%d", ErrSize,
			left.Width(), left.Height(), right.Width(), right.Height())
	}
	if left.Width() != g.Width || left.Height() != g.Height {
		return fmt.Errorf("%w: images %dx%d, geometry %dx%d", ErrSize,
			left.Width(), left.Height(), g.Width, g.Height)
	}
	return nil
}
