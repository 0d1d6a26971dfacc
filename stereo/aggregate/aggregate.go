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

// Package aggregate turns per-row window scores into per-pixel region
// scores with a sliding vertical window.
//
// A band of output rows [minRow, maxRow) is processed independently of
// every other band. The aggregator keeps the horizontal scores of the last
// 2*RadiusY+1 rows in a Ring and a running vertical sum: when the window
// moves down one row the oldest row score is subtracted, the entering row is
// scored into the freed slot and added. Nothing is recomputed from scratch.
//
// Bands overlap by 2*RadiusY rows of redundant work at their edges, which is
// what makes them embarrassingly parallel.
package aggregate

import (
	"fmt"

	"github.com/ajroetker/go-stereo/stereo/score"
)

// Mode selects the aggregation variant.
type Mode int

const (
	// Single sums one rectangular window centred on the pixel.
	Single Mode = iota

	// BestFive adds the two best of four corner windows to the centre
	// window.
	BestFive
)

// String returns a human-readable name for the mode.
func (m Mode) String() string {
	switch m {
	case Single:
		return "single"
	case BestFive:
		return "bestfive"
	default:
		return "unknown"
	}
}

// RowFunc receives the final scores of one output row. The slice is only
// valid until the function returns.
type RowFunc[S score.Score] func(row int, scores []S)

// Aggregator processes one band of output rows.
type Aggregator[S score.Score] interface {
	ProcessBand(b score.Bound[S], minRow, maxRow int, ws *WorkSpace[S], emit RowFunc[S])
}

// New returns the aggregator for mode.
func New[S score.Score](m Mode) (Aggregator[S], error) {
	switch m {
	case Single:
		return Region[S]{}, nil
	case BestFive:
		return FiveRegion[S]{}, nil
	default:
		return nil, fmt.Errorf("aggregate: unknown mode %d", int(m))
	}
}

// WorkSpace is the mutable state of one worker. It must never be shared
// between goroutines; create one per worker and reuse it across bands.
type WorkSpace[S score.Score] struct {
	bound   score.Bound[S]
	scratch score.Scratch

	horizontal *Ring[S]
	vertical   []S
	normalized []S

	// Best-five only: recent vertical sums and the combined row.
	verticals *Ring[S]
	combined  []S
}

// NewWorkSpace returns an empty work space; buffers are sized on first use.
func NewWorkSpace[S score.Score]() *WorkSpace[S] {
	return &WorkSpace[S]{
		horizontal: &Ring[S]{},
		verticals:  &Ring[S]{},
	}
}

// prepare sizes the buffers for b. Row scratch is tied to the bound, so a
// new bound gets a new scratch.
func (ws *WorkSpace[S]) prepare(b score.Bound[S], five bool) {
	if ws.bound != b {
		ws.bound = b
		ws.scratch = b.NewScratch()
	}
	g := b.Geometry()
	n := g.Len()
	ws.horizontal.Resize(g.RegionHeight(), n)
	ws.vertical = grow(ws.vertical, n)
	if b.RequiresNormalize() {
		ws.normalized = grow(ws.normalized, n)
	}
	if five {
		ws.verticals.Resize(g.RegionHeight(), n)
		ws.combined = grow(ws.combined, n)
	}
}

func grow[S score.Score](s []S, n int) []S {
	if cap(s) < n {
		return make([]S, n)
	}
	return s[:n]
}

// fill scores the 2*RadiusY+1 rows centred on row into the horizontal ring
// and sets the vertical sum to their total.
func (ws *WorkSpace[S]) fill(b score.Bound[S], row int) {
	ry := b.Geometry().RadiusY
	h := ws.horizontal
	h.Reset()
	clear(ws.vertical)
	for r := row - ry; r <= row+ry; r++ {
		s := h.Oldest()
		b.ScoreRow(r, s, ws.scratch)
		addTo(ws.vertical, s)
		h.Advance()
	}
}

// slide moves the vertical window from centre row-1 to centre row.
func (ws *WorkSpace[S]) slide(b score.Bound[S], row int) {
	ry := b.Geometry().RadiusY
	s := ws.horizontal.Oldest()
	subFrom(ws.vertical, s)
	b.ScoreRow(row+ry, s, ws.scratch)
	addTo(ws.vertical, s)
	ws.horizontal.Advance()
}

// final returns the vertical sum centred on row, normalized when the metric
// requires it. The result aliases a work space buffer.
func (ws *WorkSpace[S]) final(b score.Bound[S], row int) []S {
	if !b.RequiresNormalize() {
		return ws.vertical
	}
	b.NormalizeRegionScores(row, ws.vertical, ws.normalized)
	return ws.normalized
}

func addTo[S score.Score](dst, src []S) {
	src = src[:len(dst)]
	for i := range dst {
		dst[i] += src[i]
	}
}

func subFrom[S score.Score](dst, src []S) {
	src = src[:len(dst)]
	for i := range dst {
		dst[i] -= src[i]
	}
}

// Region aggregates a single (2*RadiusX+1) x (2*RadiusY+1) window.
type Region[S score.Score] struct{}

// ProcessBand implements Aggregator.
func (Region[S]) ProcessBand(b score.Bound[S], minRow, maxRow int, ws *WorkSpace[S], emit RowFunc[S]) {
	if minRow >= maxRow {
		return
	}
	ws.prepare(b, false)

	ws.fill(b, minRow)
	emit(minRow, ws.final(b, minRow))
	for y := minRow + 1; y < maxRow; y++ {
		ws.slide(b, y)
		emit(y, ws.final(b, y))
	}
}
