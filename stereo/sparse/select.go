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

package sparse

import (
	"github.com/ajroetker/go-stereo/stereo/image"
	"github.com/ajroetker/go-stereo/stereo/score"
	"github.com/ajroetker/go-stereo/stereo/selector"
)

// Selector picks the disparity of single pixels with the same checks as
// the dense selector.
type Selector[T image.Sample, S score.Score] struct {
	s   *Scorer[T, S]
	cfg selector.Config
}

// NewSelector wraps a scorer.
func NewSelector[T image.Sample, S score.Score](s *Scorer[T, S], cfg selector.Config) (*Selector[T, S], error) {
	if err := cfg.Validate(s.Kind()); err != nil {
		return nil, err
	}
	return &Selector[T, S]{s: s, cfg: cfg}, nil
}

// Scorer returns the wrapped scorer.
func (sel *Selector[T, S]) Scorer() *Scorer[T, S] { return sel.s }

// Select returns the disparity of left pixel (x, y), including
// DisparityMin. ok is false when the pixel cannot be scored or a check
// rejects the match.
func (sel *Selector[T, S]) Select(x, y int) (disparity float64, ok bool) {
	s := sel.s
	cfg := sel.cfg
	g := s.g
	k := s.Kind()
	if !s.ProcessLeftToRight(x, y) {
		return 0, false
	}
	scores := s.ltor
	n := s.nLtoR
	bi := selector.Best(k, scores, 0, 1, n)
	bs := scores[bi]

	if k == score.Error && cfg.MaxError >= 0 && float64(bs) > cfg.MaxError {
		return 0, false
	}
	if cfg.TextureThreshold > 0 {
		if n < 3 {
			return 0, false
		}
		second, found := selector.SecondBest(k, scores, 0, 1, n, bi)
		if !found || !(selector.Contrast(k, float64(bs), float64(second)) >= cfg.TextureThreshold) {
			return 0, false
		}
	}
	if cfg.RightToLeftTolerance >= 0 {
		if !s.ProcessRightToLeft(x-(g.DisparityMin+bi), y) {
			return 0, false
		}
		rb := selector.Best(k, s.rtol, 0, 1, s.nRtoL)
		if diff := rb - bi; diff > cfg.RightToLeftTolerance || -diff > cfg.RightToLeftTolerance {
			return 0, false
		}
	}

	disparity = float64(g.DisparityMin + bi)
	if cfg.SubPixel && bi > 0 && bi < n-1 {
		c0, c1, c2 := float64(scores[bi-1]), float64(bs), float64(scores[bi+1])
		if cfg.SquaredError {
			c0, c1, c2 = c0*c0, c1*c1, c2*c2
		}
		disparity += selector.SubPixelOffset(c0, c1, c2)
	}
	return disparity, true
}
