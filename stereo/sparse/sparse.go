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

// Package sparse computes disparities at individual pixels without scoring
// the whole image.
//
// A Scorer copies only the patches needed for one pixel, the window plus
// whatever extra neighbourhood the metric samples, and scores every locally
// valid disparity. Scores match the dense single-window aggregation.
//
// Scorers and Selectors keep their patches between calls and are not safe
// for concurrent use; create one per goroutine.
package sparse

import (
	"fmt"

	"github.com/ajroetker/go-stereo/stereo/image"
	"github.com/ajroetker/go-stereo/stereo/score"
)

// Scorer scores single pixels.
type Scorer[T image.Sample, S score.Score] struct {
	g      score.Geometry
	metric Metric[T, S]
	k      kernel[T, S]

	left, right *image.Image[T]

	ltor, rtol   []S
	nLtoR, nRtoL int
}

// New returns a scorer for the metric. The geometry's Width and Height must
// match the images later passed to SetImages.
func New[T image.Sample, S score.Score](m Metric[T, S], g score.Geometry) (*Scorer[T, S], error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	k, err := m.newKernel(g)
	if err != nil {
		return nil, err
	}
	return &Scorer[T, S]{
		g:      g,
		metric: m,
		k:      k,
		ltor:   make([]S, g.Range()),
		rtol:   make([]S, g.Range()),
	}, nil
}

// Geometry returns the scorer's geometry.
func (s *Scorer[T, S]) Geometry() score.Geometry { return s.g }

// Kind returns the direction of the metric's scores.
func (s *Scorer[T, S]) Kind() score.Kind { return s.metric.Kind() }

// SetImages sets the image pair. The images are read, never written.
func (s *Scorer[T, S]) SetImages(left, right *image.Image[T]) error {
	if left == nil || right == nil || !image.SameSize(left, right) ||
		left.Width() != s.g.Width || left.Height() != s.g.Height {
		return fmt.Errorf("%w: sparse scorer expects %dx%d images", score.ErrSize, s.g.Width, s.g.Height)
	}
	s.left, s.right = left, right
	return nil
}

// ProcessLeftToRight scores left pixel (x, y) against right pixels (x-d, y)
// for every locally valid d. It returns false, leaving the scores
// untouched, when x < DisparityMin or (x, y) is outside the image.
func (s *Scorer[T, S]) ProcessLeftToRight(x, y int) bool {
	g := s.g
	if x < g.DisparityMin || x >= g.Width || y < 0 || y >= g.Height {
		return false
	}
	rx := g.RadiusX
	maxD := g.MaxAt(x)
	s.nLtoR = maxD - g.DisparityMin + 1

	// Right columns [x-maxD-rx, x-DisparityMin+rx].
	s.k.load(s.left, s.right, y, x-rx, g.BlockWidth(), x-maxD-rx, s.nLtoR+2*rx)
	for i := range s.nLtoR {
		d := g.DisparityMin + i
		s.ltor[i] = s.k.score(rx, maxD-d+rx)
	}
	return true
}

// ProcessRightToLeft scores right pixel (x, y) against left pixels
// (x+d, y) for every locally valid d. It returns false when
// x+DisparityMin >= width or (x, y) is outside the image.
func (s *Scorer[T, S]) ProcessRightToLeft(x, y int) bool {
	g := s.g
	if x < 0 || x+g.DisparityMin >= g.Width || y < 0 || y >= g.Height {
		return false
	}
	rx := g.RadiusX
	maxD := min(g.DisparityMax, g.Width-1-x)
	s.nRtoL = maxD - g.DisparityMin + 1

	// Left columns [x+DisparityMin-rx, x+maxD+rx].
	s.k.load(s.left, s.right, y, x+g.DisparityMin-rx, s.nRtoL+2*rx, x-rx, g.BlockWidth())
	for i := range s.nRtoL {
		s.rtol[i] = s.k.score(i+rx, rx)
	}
	return true
}

// ScoresLtoR returns the scores of the last ProcessLeftToRight, indexed by
// d - DisparityMin. Only the first LocalRangeLtoR entries are valid.
func (s *Scorer[T, S]) ScoresLtoR() []S { return s.ltor }

// LocalRangeLtoR returns the number of disparities the last
// ProcessLeftToRight scored.
func (s *Scorer[T, S]) LocalRangeLtoR() int { return s.nLtoR }

// ScoresRtoL returns the scores of the last ProcessRightToLeft, indexed by
// d - DisparityMin.
func (s *Scorer[T, S]) ScoresRtoL() []S { return s.rtol }

// LocalRangeRtoL returns the number of disparities the last
// ProcessRightToLeft scored.
func (s *Scorer[T, S]) LocalRangeRtoL() int { return s.nRtoL }
