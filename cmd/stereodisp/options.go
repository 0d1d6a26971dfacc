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
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/pflag"

	"github.com/ajroetker/go-stereo/stereo"
	"github.com/ajroetker/go-stereo/stereo/aggregate"
	"github.com/ajroetker/go-stereo/stereo/image"
	"github.com/ajroetker/go-stereo/stereo/score"
)

// metricChoice names a matching cost. census is set for the census
// patterns, ncc for normalized cross-correlation; neither means SAD.
type metricChoice struct {
	census  bool
	pattern score.CensusPattern
	ncc     bool
}

var metrics = map[string]metricChoice{
	"sad":       {},
	"census3x3": {census: true, pattern: score.Census3x3},
	"census5x5": {census: true, pattern: score.Census5x5},
	"census7x7": {census: true, pattern: score.Census7x7},
	"ncc":       {ncc: true},
}

var borders = map[string]image.BorderKind{
	"clip":    image.BorderClip,
	"extend":  image.BorderExtend,
	"reflect": image.BorderReflect,
	"wrap":    image.BorderWrap,
	"value":   image.BorderValue,
}

var aggregations = map[string]aggregate.Mode{
	"single":   aggregate.Single,
	"bestfive": aggregate.BestFive,
}

// choices lists the keys of a name table for help and error messages.
func choices[V any](m map[string]V) string {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return strings.Join(keys, "|")
}

func lookup[V any](table map[string]V, what, name string) (V, error) {
	v, ok := table[strings.ToLower(name)]
	if !ok {
		return v, fmt.Errorf("unknown %s %q, want one of %s", what, name, choices(table))
	}
	return v, nil
}

type options struct {
	output      string
	metric      string
	nccEps      float32
	min, max    int
	radiusX     int
	radiusY     int
	border      string
	borderValue float64
	aggregation string
	rightToLeft int
	texture     float64
	maxError    float64
	subPixel    bool
	squared     bool
	bandHeight  int
	workers     int
	scale       float64
	outScale    float64
	at          []string
	verbose     bool
}

func defaultOptions() *options {
	def := stereo.DefaultConfig()
	return &options{
		output:      "disparity.png",
		metric:      "census5x5",
		nccEps:      score.DefaultNCCEpsilon,
		min:         def.DisparityMin,
		max:         def.DisparityMax,
		radiusX:     def.RadiusX,
		radiusY:     def.RadiusY,
		border:      def.Border.Kind.String(),
		aggregation: def.Aggregation.String(),
		rightToLeft: def.Select.RightToLeftTolerance,
		texture:     def.Select.TextureThreshold,
		maxError:    def.Select.MaxError,
		scale:       1,
		outScale:    1,
	}
}

func (o *options) register(fs *pflag.FlagSet) {
	fs.StringVarP(&o.output, "output", "o", o.output, "disparity image to write (.png, .tif or .tiff)")
	fs.StringVarP(&o.metric, "metric", "m", o.metric, "matching cost: "+choices(metrics))
	fs.Float32Var(&o.nccEps, "ncc-eps", o.nccEps, "variance floor of the ncc metric")
	fs.IntVar(&o.min, "min", o.min, "smallest disparity searched")
	fs.IntVar(&o.max, "max", o.max, "largest disparity searched")
	fs.IntVar(&o.radiusX, "radius-x", o.radiusX, "horizontal window radius")
	fs.IntVar(&o.radiusY, "radius-y", o.radiusY, "vertical window radius")
	fs.StringVar(&o.border, "border", o.border, "border policy: "+choices(borders))
	fs.Float64Var(&o.borderValue, "border-value", o.borderValue, "outside sample for --border value")
	fs.StringVar(&o.aggregation, "aggregation", o.aggregation, "window aggregation: "+choices(aggregations))
	fs.IntVar(&o.rightToLeft, "rtol", o.rightToLeft, "right-to-left consistency tolerance in pixels, negative disables")
	fs.Float64Var(&o.texture, "texture", o.texture, "minimum relative contrast between the best and the second best score, 0 disables")
	fs.Float64Var(&o.maxError, "max-error", o.maxError, "largest accepted error score, negative disables")
	fs.BoolVar(&o.subPixel, "subpixel", o.subPixel, "refine disparities with a parabola fit")
	fs.BoolVar(&o.squared, "squared", o.squared, "the error scores are squared differences")
	fs.IntVar(&o.bandHeight, "band-height", o.bandHeight, "rows per parallel task, 0 picks one")
	fs.IntVarP(&o.workers, "workers", "j", o.workers, "worker goroutines, 0 uses GOMAXPROCS")
	fs.Float64Var(&o.scale, "scale", o.scale, "resample both inputs by this factor before matching")
	fs.Float64Var(&o.outScale, "out-scale", o.outScale, "multiplier applied to disparities in the output image")
	fs.StringArrayVar(&o.at, "at", nil, "query the disparity of pixel X,Y only; repeatable")
	fs.BoolVarP(&o.verbose, "verbose", "v", o.verbose, "log the matcher configuration and band schedule")
}

// config translates the flags into a matcher configuration.
func (o *options) config() (stereo.Config, metricChoice, error) {
	cfg := stereo.DefaultConfig()
	metric, err := lookup(metrics, "metric", o.metric)
	if err != nil {
		return cfg, metric, err
	}
	kind, err := lookup(borders, "border", o.border)
	if err != nil {
		return cfg, metric, err
	}
	mode, err := lookup(aggregations, "aggregation", o.aggregation)
	if err != nil {
		return cfg, metric, err
	}
	if o.scale <= 0 || o.scale > 16 {
		return cfg, metric, fmt.Errorf("--scale %g out of (0, 16]", o.scale)
	}
	if o.outScale <= 0 {
		return cfg, metric, fmt.Errorf("--out-scale %g must be positive", o.outScale)
	}
	if o.workers < 0 {
		return cfg, metric, fmt.Errorf("--workers %d must not be negative", o.workers)
	}

	cfg.DisparityMin = o.min
	cfg.DisparityMax = o.max
	cfg.RadiusX = o.radiusX
	cfg.RadiusY = o.radiusY
	cfg.Border = image.Border{Kind: kind, Value: o.borderValue}
	cfg.Aggregation = mode
	cfg.BandHeight = o.bandHeight
	cfg.Select.RightToLeftTolerance = o.rightToLeft
	cfg.Select.TextureThreshold = o.texture
	cfg.Select.MaxError = o.maxError
	cfg.Select.SubPixel = o.subPixel
	cfg.Select.SquaredError = o.squared
	if err := cfg.Validate(); err != nil {
		return cfg, metric, err
	}
	return cfg, metric, nil
}

type point struct{ x, y int }

// points parses the --at queries.
func (o *options) points() ([]point, error) {
	var errs []string
	pts := lo.FilterMap(o.at, func(s string, _ int) (point, bool) {
		xs, ys, ok := strings.Cut(s, ",")
		if !ok {
			errs = append(errs, s)
			return point{}, false
		}
		x, errX := strconv.Atoi(strings.TrimSpace(xs))
		y, errY := strconv.Atoi(strings.TrimSpace(ys))
		if errX != nil || errY != nil {
			errs = append(errs, s)
			return point{}, false
		}
		return point{x, y}, true
	})
	if len(errs) > 0 {
		return nil, fmt.Errorf("--at wants X,Y, got %q", errs)
	}
	return pts, nil
}
