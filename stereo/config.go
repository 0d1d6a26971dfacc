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

package stereo

import (
	"fmt"
	"os"
	"strconv"

	"github.com/ajroetker/go-stereo/stereo/aggregate"
	"github.com/ajroetker/go-stereo/stereo/image"
	"github.com/ajroetker/go-stereo/stereo/score"
	"github.com/ajroetker/go-stereo/stereo/selector"
)

// Configuration errors. They are the sentinels of the packages that detect
// them, so errors.Is works with either name.
var (
	// ErrInvalidRadius reports a negative region radius.
	ErrInvalidRadius = score.ErrRadius

	// ErrInvalidRange reports a disparity range with a negative minimum or
	// a minimum not below the maximum.
	ErrInvalidRange = score.ErrRange

	// ErrSizeMismatch reports missing, empty or differently sized images.
	ErrSizeMismatch = score.ErrSize

	// ErrBorderRequired reports a clipping border for a metric that needs
	// synthetic border samples (NCC).
	ErrBorderRequired = score.ErrBorder

	// ErrDisparityType reports a disparity image type that cannot hold the
	// output range or the sub-pixel values.
	ErrDisparityType = selector.ErrDisparityType

	// ErrInvalidConfig reports any other invalid setting.
	ErrInvalidConfig = selector.ErrConfig
)

// SequentialEnvVar names the environment variable that forces sequential
// processing even when a worker pool is given.
const SequentialEnvVar = "STEREO_SEQUENTIAL"

// SequentialEnv reports whether STEREO_SEQUENTIAL is set. Any value that
// does not parse as a bool counts as set.
func SequentialEnv() bool {
	val := os.Getenv(SequentialEnvVar)
	if val == "" {
		return false
	}
	if b, err := strconv.ParseBool(val); err == nil {
		return b
	}
	return true
}

// Config describes one dense disparity search.
type Config struct {
	// DisparityMin and DisparityMax bound the search, both inclusive.
	DisparityMin, DisparityMax int

	// RadiusX and RadiusY are the window radii.
	RadiusX, RadiusY int

	// Border decides how windows reaching past the image edges are scored.
	Border image.Border

	// Aggregation selects the single window or the best-five variant.
	Aggregation aggregate.Mode

	// Select configures the validity checks and sub-pixel refinement.
	Select selector.Config

	// BandHeight is the number of output rows per parallel task. Zero picks
	// a height from the image size and the pool size.
	BandHeight int
}

// DefaultConfig returns a 5x5 window search over disparities 0..63 with an
// extending border and a right-to-left tolerance of one pixel.
func DefaultConfig() Config {
	sel := selector.DefaultConfig()
	sel.RightToLeftTolerance = 1
	return Config{
		DisparityMin: 0,
		DisparityMax: 63,
		RadiusX:      2,
		RadiusY:      2,
		Border:       image.Border{Kind: image.BorderExtend},
		Aggregation:  aggregate.Single,
		Select:       sel,
	}
}

// Validate checks everything that does not depend on the images or the
// metric.
func (c Config) Validate() error {
	if c.RadiusX < 0 || c.RadiusY < 0 {
		return fmt.Errorf("%w: (%d, %d)", ErrInvalidRadius, c.RadiusX, c.RadiusY)
	}
	if c.DisparityMin < 0 || c.DisparityMin >= c.DisparityMax {
		return fmt.Errorf("%w: [%d, %d]", ErrInvalidRange, c.DisparityMin, c.DisparityMax)
	}
	if err := c.Border.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Aggregation != aggregate.Single && c.Aggregation != aggregate.BestFive {
		return fmt.Errorf("%w: unknown aggregation %d", ErrInvalidConfig, int(c.Aggregation))
	}
	if c.BandHeight < 0 {
		return fmt.Errorf("%w: band height %d", ErrInvalidConfig, c.BandHeight)
	}
	return nil
}

// Range returns the number of disparities searched.
func (c Config) Range() int {
	return c.DisparityMax - c.DisparityMin + 1
}

// Geometry returns the score geometry for a width x height image pair.
func (c Config) Geometry(width, height int) score.Geometry {
	return score.Geometry{
		Width:        width,
		Height:       height,
		RadiusX:      c.RadiusX,
		RadiusY:      c.RadiusY,
		DisparityMin: c.DisparityMin,
		DisparityMax: c.DisparityMax,
		Border:       c.Border,
	}
}
