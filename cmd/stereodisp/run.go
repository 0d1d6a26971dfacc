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
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ajroetker/go-stereo/stereo"
	"github.com/ajroetker/go-stereo/stereo/image"
	"github.com/ajroetker/go-stereo/stereo/score"
	"github.com/ajroetker/go-stereo/stereo/sparse"
	"github.com/ajroetker/go-stereo/stereo/workerpool"
)

func run(ctx context.Context, o *options, leftPath, rightPath string, stdout, stderr io.Writer) error {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	stereo.SetLogger(logger)
	defer stereo.SetLogger(nil)

	cfg, metric, err := o.config()
	if err != nil {
		return err
	}
	pts, err := o.points()
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	left, right, err := loadPair(ctx, leftPath, rightPath, o.scale)
	if err != nil {
		return err
	}
	logger.Debug("loaded pair", "width", left.Width(), "height", left.Height())

	if len(pts) > 0 {
		return query(cfg, metric, o.nccEps, left, right, pts, stdout)
	}

	pool := workerpool.New(o.workers)
	defer pool.Close()
	start := time.Now()
	disp, err := dense(cfg, metric, o.nccEps, pool, left, right)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	valid := 0
	invalid := float32(cfg.Range())
	for y := range disp.Height() {
		for _, d := range disp.RowSlice(y) {
			if d != invalid {
				valid++
			}
		}
	}
	if err := writeImage(o.output, toGray16(disp, cfg.DisparityMin, invalid, o.outScale)); err != nil {
		return err
	}
	logger.Info("wrote disparity",
		"path", o.output,
		"valid", fmt.Sprintf("%.1f%%", 100*float64(valid)/float64(disp.Width()*disp.Height())),
		"elapsed", elapsed.Round(time.Millisecond),
		"workers", pool.NumWorkers())
	return nil
}

// dense runs a matcher for the chosen metric. Disparities are float32 so
// that sub-pixel output and any range fit.
func dense(cfg stereo.Config, mc metricChoice, eps float32, pool *workerpool.Pool, left, right *image.Image[uint8]) (*image.Image[float32], error) {
	switch {
	case mc.ncc:
		return match[float32](cfg, score.NewNCC[uint8](eps), pool, left, right)
	case mc.census:
		return match[int32](cfg, score.NewCensus[uint8, int32](mc.pattern), pool, left, right)
	default:
		return match[int32](cfg, score.NewSAD[uint8, int32](), pool, left, right)
	}
}

func match[S score.Score](cfg stereo.Config, metric score.Metric[uint8, S], pool *workerpool.Pool, left, right *image.Image[uint8]) (*image.Image[float32], error) {
	m, err := stereo.NewMatcher[uint8, S, float32](cfg, metric)
	if err != nil {
		return nil, err
	}
	return m.Disparity(pool, left, right)
}

// query prints the disparity of each point using the per-pixel scorer.
func query(cfg stereo.Config, mc metricChoice, eps float32, left, right *image.Image[uint8], pts []point, w io.Writer) error {
	switch {
	case mc.ncc:
		return querySparse(cfg, sparse.NCC[uint8](eps), left, right, pts, w)
	case mc.census:
		return querySparse(cfg, sparse.Census[uint8, int32](mc.pattern), left, right, pts, w)
	default:
		return querySparse(cfg, sparse.SAD[uint8, int32](), left, right, pts, w)
	}
}

func querySparse[S score.Score](cfg stereo.Config, metric sparse.Metric[uint8, S], left, right *image.Image[uint8], pts []point, w io.Writer) error {
	s, err := sparse.New(metric, cfg.Geometry(left.Width(), left.Height()))
	if err != nil {
		return err
	}
	if err := s.SetImages(left, right); err != nil {
		return err
	}
	sel, err := sparse.NewSelector(s, cfg.Select)
	if err != nil {
		return err
	}
	for _, p := range pts {
		if d, ok := sel.Select(p.x, p.y); ok {
			fmt.Fprintf(w, "%d %d %g\n", p.x, p.y, d)
		} else {
			fmt.Fprintf(w, "%d %d invalid\n", p.x, p.y)
		}
	}
	return nil
}
