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
	"fmt"
	"math"
	"math/bits"

	"github.com/ajroetker/go-stereo/stereo/image"
	"github.com/ajroetker/go-stereo/stereo/score"
)

// Metric is a block matching cost evaluated one window pair at a time. It
// produces the same scores as the dense metric of the same name.
type Metric[T image.Sample, S score.Score] interface {
	Name() string
	Kind() score.Kind
	newKernel(g score.Geometry) (kernel[T, S], error)
}

// kernel holds the patches of one scorer.
type kernel[T image.Sample, S score.Score] interface {
	// load copies rows [y-RadiusY, y+RadiusY] of left columns
	// [lx0, lx0+lw) and right columns [rx0, rx0+rw) into the patches.
	load(left, right *image.Image[T], y, lx0, lw, rx0, rw int)

	// score compares the left window centred on patch column lc with the
	// right window centred on patch column rc.
	score(lc, rc int) S
}

// patch is a border extended copy of a small image region. ok is false for
// samples that do not exist under BorderClip.
type patch[U image.Sample] struct {
	w, h int
	data []U
	ok   []bool
}

func (p *patch[U]) resize(w, h int) {
	p.w, p.h = w, h
	n := w * h
	if cap(p.data) < n {
		p.data = make([]U, n)
		p.ok = make([]bool, n)
	}
	p.data = p.data[:n]
	p.ok = p.ok[:n]
}

// fill sets every sample from at, called with image coordinates.
func (p *patch[U]) fill(x0, y0, w, h int, at func(x, y int) (U, bool)) {
	p.resize(w, h)
	for j := range h {
		for i := range w {
			p.data[j*w+i], p.ok[j*w+i] = at(x0+i, y0+j)
		}
	}
}

// SAD returns the sum of absolute differences metric.
func SAD[T image.Sample, S score.Score]() Metric[T, S] {
	return sadMetric[T, S]{}
}

type sadMetric[T image.Sample, S score.Score] struct{}

func (sadMetric[T, S]) Name() string     { return "sad" }
func (sadMetric[T, S]) Kind() score.Kind { return score.Error }

func (sadMetric[T, S]) newKernel(g score.Geometry) (kernel[T, S], error) {
	return &sumKernel[T, T, S]{
		g: g,
		at: func(img *image.Image[T], x, y int) (T, bool) {
			return image.BorderAt(g.Border, img, x, y)
		},
		cost: func(l, r T) S {
			v := S(l) - S(r)
			if v < 0 {
				return -v
			}
			return v
		},
	}, nil
}

// Census returns the census metric for the given pattern.
func Census[T image.Sample, S score.Score](p score.CensusPattern) Metric[T, S] {
	return censusMetric[T, S]{pattern: p}
}

type censusMetric[T image.Sample, S score.Score] struct {
	pattern score.CensusPattern
}

func (m censusMetric[T, S]) Name() string { return m.pattern.String() }
func (censusMetric[T, S]) Kind() score.Kind { return score.Error }

// newKernel codes every window position. Positions outside the image take
// the code of the position the border maps them to, or the border value
// itself, the same way the dense scorer extends its code rows.
func (m censusMetric[T, S]) newKernel(g score.Geometry) (kernel[T, S], error) {
	if err := m.pattern.Validate(); err != nil {
		return nil, err
	}
	offsets := m.pattern.Offsets()
	b := g.Border
	return &sumKernel[T, uint64, S]{
		g: g,
		at: func(img *image.Image[T], x, y int) (uint64, bool) {
			w, h := img.Width(), img.Height()
			if x < 0 || x >= w || y < 0 || y >= h {
				switch b.Kind {
				case image.BorderClip:
					return 0, false
				case image.BorderValue:
					return uint64(b.Value), true
				}
				x, y = b.Index(x, w), b.Index(y, h)
			}
			return score.CensusCode(img, x, y, offsets, b), true
		},
		cost: func(l, r uint64) S {
			return S(bits.OnesCount64(l ^ r))
		},
	}, nil
}

// sumKernel sums an element cost over the window, skipping pairs where
// either sample does not exist.
type sumKernel[T image.Sample, U image.Sample, S score.Score] struct {
	g           score.Geometry
	at          func(img *image.Image[T], x, y int) (U, bool)
	cost        func(l, r U) S
	left, right patch[U]
}

func (k *sumKernel[T, U, S]) load(left, right *image.Image[T], y, lx0, lw, rx0, rw int) {
	y0 := y - k.g.RadiusY
	h := k.g.RegionHeight()
	k.left.fill(lx0, y0, lw, h, func(x, y int) (U, bool) { return k.at(left, x, y) })
	k.right.fill(rx0, y0, rw, h, func(x, y int) (U, bool) { return k.at(right, x, y) })
}

func (k *sumKernel[T, U, S]) score(lc, rc int) S {
	rx := k.g.RadiusX
	var sum S
	for j := range k.left.h {
		lrow := j * k.left.w
		rrow := j * k.right.w
		for i := -rx; i <= rx; i++ {
			li, ri := lrow+lc+i, rrow+rc+i
			if k.left.ok[li] && k.right.ok[ri] {
				sum += k.cost(k.left.data[li], k.right.data[ri])
			}
		}
	}
	return sum
}

// NCC returns the normalized cross-correlation metric. A non-positive eps
// selects score.DefaultNCCEpsilon.
func NCC[T image.Sample](eps float32) Metric[T, float32] {
	if eps <= 0 {
		eps = score.DefaultNCCEpsilon
	}
	return nccMetric[T]{eps: float64(eps)}
}

type nccMetric[T image.Sample] struct {
	eps float64
}

func (nccMetric[T]) Name() string     { return "ncc" }
func (nccMetric[T]) Kind() score.Kind { return score.Correlation }

func (m nccMetric[T]) newKernel(g score.Geometry) (kernel[T, float32], error) {
	if g.Border.Clipped() {
		return nil, fmt.Errorf("%w: ncc needs an extending border, got %s", score.ErrBorder, g.Border.Kind)
	}
	return &nccKernel[T]{g: g, eps: m.eps}, nil
}

type nccKernel[T image.Sample] struct {
	g           score.Geometry
	eps         float64
	left, right patch[T]
}

func (k *nccKernel[T]) load(left, right *image.Image[T], y, lx0, lw, rx0, rw int) {
	b := k.g.Border
	y0 := y - k.g.RadiusY
	h := k.g.RegionHeight()
	k.left.fill(lx0, y0, lw, h, func(x, y int) (T, bool) { return image.BorderAt(b, left, x, y) })
	k.right.fill(rx0, y0, rw, h, func(x, y int) (T, bool) { return image.BorderAt(b, right, x, y) })
}

func (k *nccKernel[T]) score(lc, rc int) float32 {
	rx := k.g.RadiusX
	var sl, sr, sll, srr, slr float64
	for j := range k.left.h {
		lrow := j * k.left.w
		rrow := j * k.right.w
		for i := -rx; i <= rx; i++ {
			l := float64(k.left.data[lrow+lc+i])
			r := float64(k.right.data[rrow+rc+i])
			sl += l
			sr += r
			sll += l * l
			srr += r * r
			slr += l * r
		}
	}
	n := float64(k.g.BlockWidth() * k.g.RegionHeight())
	ml, mr := sl/n, sr/n
	sdl := math.Sqrt(max(sll/n-ml*ml, 0))
	sdr := math.Sqrt(max(srr/n-mr*mr, 0))
	return float32((slr/n - ml*mr) / (sdl*sdr + k.eps))
}
