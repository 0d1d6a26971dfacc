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
	"errors"
	"fmt"
	"sync"

	"github.com/ajroetker/go-stereo/stereo/aggregate"
	"github.com/ajroetker/go-stereo/stereo/image"
	"github.com/ajroetker/go-stereo/stereo/score"
	"github.com/ajroetker/go-stereo/stereo/selector"
	"github.com/ajroetker/go-stereo/stereo/workerpool"
)

// minBandRegions is the smallest band height in window heights; shorter
// bands spend most of their time on the rows they share with neighbours.
const minBandRegions = 4

// bandsPerWorker oversubscribes the pool so that work stealing can even out
// bands of different cost.
const bandsPerWorker = 4

// Matcher computes dense disparity images. It is immutable after
// NewMatcher and safe for concurrent use; Work Spaces are recycled across
// calls.
type Matcher[T image.Sample, S score.Score, D selector.Disparity] struct {
	cfg    Config
	metric score.Metric[T, S]
	agg    aggregate.Aggregator[S]
	sel    *selector.WTA[S, D]
	spaces sync.Pool
}

// NewMatcher validates the configuration against the metric and the
// disparity type D.
func NewMatcher[T image.Sample, S score.Score, D selector.Disparity](cfg Config, metric score.Metric[T, S]) (*Matcher[T, S, D], error) {
	if metric == nil {
		return nil, fmt.Errorf("%w: nil metric", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if metric.Kind() == score.Correlation && cfg.Border.Clipped() {
		return nil, fmt.Errorf("%w: %s cannot score clipped windows", ErrBorderRequired, metric.Name())
	}
	if err := selector.CheckRange[D](cfg.Range()); err != nil {
		return nil, err
	}
	agg, err := aggregate.New[S](cfg.Aggregation)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	sel, err := selector.New[S, D](cfg.Select, metric.Kind())
	if err != nil {
		return nil, err
	}
	m := &Matcher[T, S, D]{
		cfg:    cfg,
		metric: metric,
		agg:    agg,
		sel:    sel,
	}
	m.spaces.New = func() any { return aggregate.NewWorkSpace[S]() }
	Logger().Debug("stereo: matcher configured",
		"metric", metric.Name(),
		"aggregation", cfg.Aggregation.String(),
		"range", cfg.Range(),
		"cpu", CPUInfo())
	return m, nil
}

// Config returns the matcher configuration.
func (m *Matcher[T, S, D]) Config() Config { return m.cfg }

// Process writes the disparity of every pixel of left into dst. Values are
// relative to DisparityMin; unmatched pixels hold Config.Range(). scoreDst
// is optional and receives the best score of every pixel.
//
// Rows are split into bands processed on pool. A nil pool, or
// STEREO_SEQUENTIAL set, processes the bands in order on the calling
// goroutine. The images are only read.
func (m *Matcher[T, S, D]) Process(pool *workerpool.Pool, left, right *image.Image[T], dst *image.Image[D], scoreDst *image.Image[S]) error {
	if left == nil || right == nil || dst == nil {
		return fmt.Errorf("%w: nil image", ErrSizeMismatch)
	}
	if !image.SameSize(left, right) {
		return fmt.Errorf("%w: left %dx%d, right %dx%d", ErrSizeMismatch,
			left.Width(), left.Height(), right.Width(), right.Height())
	}
	g := m.cfg.Geometry(left.Width(), left.Height())

	sequential := pool == nil || SequentialEnv()
	if sequential {
		pool = nil
	}

	sel := m.sel.Clone()
	if err := sel.Configure(dst, scoreDst, g); err != nil {
		return err
	}
	bound, err := m.metric.Bind(pool, left, right, g)
	if err != nil {
		return fmt.Errorf("stereo: binding %s: %w", m.metric.Name(), err)
	}

	bandHeight := m.bandHeight(pool, g)
	numBands := (g.Height + bandHeight - 1) / bandHeight
	slots := pool.Slots(numBands)
	Logger().Debug("stereo: band schedule",
		"width", g.Width,
		"height", g.Height,
		"bands", numBands,
		"bandHeight", bandHeight,
		"workers", slots,
		"sequential", sequential)

	type workerState struct {
		ws  *aggregate.WorkSpace[S]
		sel *selector.WTA[S, D]
	}
	states := make([]*workerState, slots)
	pool.ParallelForWorker(numBands, func(worker, band int) {
		st := states[worker]
		if st == nil {
			st = &workerState{
				ws:  m.spaces.Get().(*aggregate.WorkSpace[S]),
				sel: sel.Clone(),
			}
			states[worker] = st
		}
		minRow := band * bandHeight
		maxRow := min(minRow+bandHeight, g.Height)
		m.agg.ProcessBand(bound, minRow, maxRow, st.ws, st.sel.ProcessRow)
	})
	for _, st := range states {
		if st != nil {
			m.spaces.Put(st.ws)
		}
	}
	return nil
}

// Disparity allocates the disparity image and runs Process.
func (m *Matcher[T, S, D]) Disparity(pool *workerpool.Pool, left, right *image.Image[T]) (*image.Image[D], error) {
	if left == nil || right == nil {
		return nil, fmt.Errorf("%w: nil image", ErrSizeMismatch)
	}
	if left.Width() <= 0 || left.Height() <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrSizeMismatch, left.Width(), left.Height())
	}
	dst := image.NewImage[D](left.Width(), left.Height())
	if err := m.Process(pool, left, right, dst, nil); err != nil {
		return nil, err
	}
	return dst, nil
}

// bandHeight returns the configured band height or one that gives every
// worker several bands.
func (m *Matcher[T, S, D]) bandHeight(pool *workerpool.Pool, g score.Geometry) int {
	if m.cfg.BandHeight > 0 {
		return min(m.cfg.BandHeight, g.Height)
	}
	if pool == nil {
		return g.Height
	}
	bands := pool.NumWorkers() * bandsPerWorker
	h := (g.Height + bands - 1) / bands
	h = max(h, minBandRegions*g.RegionHeight())
	return min(h, g.Height)
}

// IsConfigError reports whether err is one of the configuration errors of
// this package.
func IsConfigError(err error) bool {
	for _, target := range []error{
		ErrInvalidRadius, ErrInvalidRange, ErrSizeMismatch,
		ErrBorderRequired, ErrDisparityType, ErrInvalidConfig,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
