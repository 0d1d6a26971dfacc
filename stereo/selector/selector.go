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

// Package selector turns aggregated region scores into disparities.
//
// For every column the winner-take-all candidate is chosen and then
// validated by the configured checks, in this order:
//
//   - max error: an error metric whose best score exceeds MaxError
//   - texture: the best score does not stand out from the second best
//     (ignoring the two neighbours of the best)
//   - right to left: matching back from the right image column disagrees
//     by more than RightToLeftTolerance
//
// A column that fails a check, or that lies left of DisparityMin, is set to
// the invalid sentinel, which equals the number of disparities searched.
// Valid columns hold the disparity relative to DisparityMin, optionally with
// a parabolic sub-pixel correction.
package selector

import (
	"errors"
	"fmt"
	"math"

	"github.com/ajroetker/go-stereo/stereo/score"
)

// ErrConfig reports an invalid selector configuration.
var ErrConfig = errors.New("invalid selector configuration")

// ErrDisparityType reports a disparity image type that cannot hold the
// output, either because the sentinel does not fit or because sub-pixel
// output needs float32.
var ErrDisparityType = errors.New("disparity image type cannot hold output")

// Disparity is the element type of disparity images.
type Disparity interface {
	uint8 | uint16 | float32
}

// Config controls validation and refinement.
type Config struct {
	// RightToLeftTolerance is the largest accepted difference between the
	// left-to-right and right-to-left disparities. Negative disables.
	RightToLeftTolerance int

	// TextureThreshold is the smallest accepted relative contrast between
	// the best and second best score. Zero or negative disables.
	TextureThreshold float64

	// MaxError is the largest accepted best score for error metrics.
	// Negative disables. Ignored for correlation metrics.
	MaxError float64

	// SubPixel enables the parabolic fit. Requires float32 disparities.
	SubPixel bool

	// SquaredError squares the three scores before the sub-pixel fit.
	SquaredError bool
}

// DefaultConfig returns a configuration with every check disabled.
func DefaultConfig() Config {
	return Config{
		RightToLeftTolerance: -1,
		TextureThreshold:     0,
		MaxError:             -1,
	}
}

// Validate checks the configuration for the metric kind.
func (c Config) Validate(k score.Kind) error {
	if math.IsNaN(c.TextureThreshold) || math.IsInf(c.TextureThreshold, 0) {
		return fmt.Errorf("%w: texture threshold %v", ErrConfig, c.TextureThreshold)
	}
	if math.IsNaN(c.MaxError) {
		return fmt.Errorf("%w: max error is NaN", ErrConfig)
	}
	if k != score.Error && k != score.Correlation {
		return fmt.Errorf("%w: unknown score kind %d", ErrConfig, int(k))
	}
	return nil
}

// Best returns the index of the best of n scores read at
// scores[off + i*stride], or -1 when n is 0. Ties keep the first index.
func Best[S score.Score](k score.Kind, scores []S, off, stride, n int) int {
	if n <= 0 {
		return -1
	}
	best := 0
	bestScore := scores[off]
	if k == score.Correlation {
		for i := 1; i < n; i++ {
			if s := scores[off+i*stride]; s > bestScore {
				best, bestScore = i, s
			}
		}
		return best
	}
	for i := 1; i < n; i++ {
		if s := scores[off+i*stride]; s < bestScore {
			best, bestScore = i, s
		}
	}
	return best
}

// SecondBest returns the best score among the n candidates excluding best
// and its two neighbours. ok is false when no candidate remains.
func SecondBest[S score.Score](k score.Kind, scores []S, off, stride, n, best int) (second S, ok bool) {
	for i := range n {
		if i >= best-1 && i <= best+1 {
			continue
		}
		s := scores[off+i*stride]
		if !ok || (k == score.Correlation && s > second) || (k == score.Error && s < second) {
			second, ok = s, true
		}
	}
	return second, ok
}

// Contrast returns the relative contrast of best over second:
// (second-best)/second for error metrics and (best-second)/|second| for
// correlation. Equal scores give 0 even when both are zero.
func Contrast(k score.Kind, best, second float64) float64 {
	if best == second {
		return 0
	}
	if k == score.Correlation {
		return (best - second) / math.Abs(second)
	}
	return (second - best) / second
}

// SubPixelOffset returns the vertex offset of the parabola through
// (-1, c0), (0, c1), (1, c2). A degenerate fit (near zero curvature or a
// non-finite result) returns 0.
func SubPixelOffset(c0, c1, c2 float64) float64 {
	den := c0 - 2*c1 + c2
	if math.Abs(den) <= 1e-12 {
		return 0
	}
	off := (c0 - c2) / (2 * den)
	if math.IsNaN(off) || math.IsInf(off, 0) {
		return 0
	}
	return off
}

// CheckRange fails when a disparity image of type D cannot hold the
// values 0..rng, the largest being the invalid sentinel.
func CheckRange[D Disparity](rng int) error {
	var z D
	limit := -1
	switch any(z).(type) {
	case uint8:
		limit = math.MaxUint8
	case uint16:
		limit = math.MaxUint16
	}
	if limit >= 0 && rng > limit {
		return fmt.Errorf("%w: invalid sentinel %d overflows %T", ErrDisparityType, rng, z)
	}
	return nil
}

func isFloat[D Disparity]() bool {
	var z D
	_, ok := any(z).(float32)
	return ok
}
