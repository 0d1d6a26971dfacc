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

package selector

import (
	"fmt"

	"github.com/ajroetker/go-stereo/stereo/image"
	"github.com/ajroetker/go-stereo/stereo/score"
)

// WTA is the winner-take-all selector. Configure it once per image pair
// and give every worker its own Clone; rows written by different clones
// must not overlap.
type WTA[S score.Score, D Disparity] struct {
	cfg  Config
	kind score.Kind

	g        score.Geometry
	dst      *image.Image[D]
	scoreDst *image.Image[S]
	invalid  D
	worst    S
}

// New returns a selector for scores of the given kind.
func New[S score.Score, D Disparity](cfg Config, k score.Kind) (*WTA[S, D], error) {
	if err := cfg.Validate(k); err != nil {
		return nil, err
	}
	if cfg.SubPixel && !isFloat[D]() {
		return nil, fmt.Errorf("%w: sub-pixel output needs float32", ErrDisparityType)
	}
	return &WTA[S, D]{cfg: cfg, kind: k, worst: score.Worst[S](k)}, nil
}

// Config returns the selector configuration.
func (s *WTA[S, D]) Config() Config { return s.cfg }

// Configure sets the output images. scoreDst is optional; when present it
// receives the best score of every column.
func (s *WTA[S, D]) Configure(dst *image.Image[D], scoreDst *image.Image[S], g score.Geometry) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if dst == nil || dst.Width() != g.Width || dst.Height() != g.Height {
		return fmt.Errorf("%w: disparity image does not match %dx%d", score.ErrSize, g.Width, g.Height)
	}
	if scoreDst != nil && !image.SameSize(dst, scoreDst) {
		return fmt.Errorf("%w: score image does not match %dx%d", score.ErrSize, g.Width, g.Height)
	}
	if err := CheckRange[D](g.Range()); err != nil {
		return err
	}
	s.g = g
	s.dst = dst
	s.scoreDst = scoreDst
	s.invalid = D(g.Range())
	return nil
}

// Clone returns an independent copy sharing the configuration and output
// images.
func (s *WTA[S, D]) Clone() *WTA[S, D] {
	c := *s
	return &c
}

// ProcessRow selects the disparities of one output row from its region
// scores, laid out as score.Geometry documents.
func (s *WTA[S, D]) ProcessRow(row int, scores []S) {
	g := s.g
	w := g.Width
	if len(scores) < g.Len() {
		panic("selector: scores slice too short")
	}
	out := s.dst.RowSlice(row)
	var best []S
	if s.scoreDst != nil {
		best = s.scoreDst.RowSlice(row)
	}

	lim := min(g.DisparityMin, w)
	for x := range lim {
		out[x] = s.invalid
		if best != nil {
			best[x] = s.worst
		}
	}
	for x := lim; x < w; x++ {
		d, bs, ok := s.selectColumn(scores, x)
		if !ok {
			out[x] = s.invalid
			if best != nil {
				best[x] = s.worst
			}
			continue
		}
		out[x] = D(d)
		if best != nil {
			best[x] = bs
		}
	}
}

// selectColumn returns the disparity of column x relative to DisparityMin.
func (s *WTA[S, D]) selectColumn(scores []S, x int) (float32, S, bool) {
	g := s.g
	w := g.Width
	n := g.LocalRange(x)
	bi := Best(s.kind, scores, x, w, n)
	bs := scores[bi*w+x]
	// A best score equal to the sentinel means no candidate was evaluable.
	if bs == s.worst {
		return 0, bs, false
	}

	if s.kind == score.Error && s.cfg.MaxError >= 0 && float64(bs) > s.cfg.MaxError {
		return 0, bs, false
	}

	if s.cfg.TextureThreshold > 0 {
		if n < 3 {
			return 0, bs, false
		}
		second, ok := SecondBest(s.kind, scores, x, w, n, bi)
		if !ok || !(Contrast(s.kind, float64(bs), float64(second)) >= s.cfg.TextureThreshold) {
			return 0, bs, false
		}
	}

	if tol := s.cfg.RightToLeftTolerance; tol >= 0 {
		xr := x - (g.DisparityMin + bi)
		nr := min(g.DisparityMax, w-1-xr) - g.DisparityMin + 1
		rb := Best(s.kind, scores, xr+g.DisparityMin, w+1, nr)
		if abs(rb-bi) > tol {
			return 0, bs, false
		}
	}

	d := float32(bi)
	if s.cfg.SubPixel && bi > 0 && bi < n-1 {
		c0 := float64(scores[(bi-1)*w+x])
		c1 := float64(bs)
		c2 := float64(scores[(bi+1)*w+x])
		if scores[(bi-1)*w+x] != s.worst && scores[(bi+1)*w+x] != s.worst {
			if s.cfg.SquaredError {
				c0, c1, c2 = c0*c0, c1*c1, c2*c2
			}
			d += float32(SubPixelOffset(c0, c1, c2))
		}
	}
	return d, bs, true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
