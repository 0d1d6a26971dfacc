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

package score

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ajroetker/go-stereo/stereo/image"
	"github.com/ajroetker/go-stereo/stereo/workerpool"
)

// DefaultNCCEpsilon is added to the product of standard deviations so that
// textureless windows score zero instead of dividing by zero.
const DefaultNCCEpsilon = 1e-4

// NCC is the normalized cross-correlation metric:
//
//	ncc = (sum(L*R)/N - meanL*meanR) / (stdL*stdR + eps)
//
// Rows are scored on the products L*R; the window means and deviations come
// from summed-area tables built once per Bind.
type NCC[T image.Sample] struct {
	eps float32
}

// NewNCC returns the NCC metric. A non-positive eps selects
// DefaultNCCEpsilon.
func NewNCC[T image.Sample](eps float32) NCC[T] {
	if eps <= 0 {
		eps = DefaultNCCEpsilon
	}
	return NCC[T]{eps: eps}
}

func (NCC[T]) Name() string { return "ncc" }
func (NCC[T]) Kind() Kind   { return Correlation }

// Bind implements Metric. NCC needs synthetic samples at the border to keep
// every window the same size, so BorderClip is rejected.
func (m NCC[T]) Bind(pool *workerpool.Pool, left, right *image.Image[T], g Geometry) (Bound[float32], error) {
	if err := checkBind(left, right, g); err != nil {
		return nil, err
	}
	if g.Border.Clipped() {
		return nil, fmt.Errorf("%w: ncc needs an extending border, got %s", ErrBorder, g.Border.Kind)
	}

	ls := newWindowStats(pool, left, g)
	rs := newWindowStats(pool, right, g)
	n := float32(g.BlockWidth() * g.RegionHeight())
	eps := m.eps

	return &rowEngine[T, float32]{
		g:       g,
		kind:    Correlation,
		left:    left,
		right:   right,
		element: product[T],
		normalize: func(row int, raw, dst []float32) {
			w := g.Width
			lm, lsd := ls.row(row)
			rm, rsd := rs.row(row)
			for di := range g.Range() {
				d := g.DisparityMin + di
				off := di * w
				if d >= w {
					clear(dst[off : off+w])
					continue
				}
				clear(dst[off : off+d])
				for x := d; x < w; x++ {
					num := raw[off+x]/n - lm[x]*rm[x-d]
					dst[off+x] = num / (lsd[x]*rsd[x-d] + eps)
				}
			}
		},
	}, nil
}

func product[T image.Sample](left, right []T, el []float32, d, from, to int) {
	l := left[from:to]
	r := right[from-d : to-d]
	e := el[from:to]
	for i := range e {
		e[i] = float32(l[i]) * float32(r[i])
	}
}

// windowStats holds the mean and standard deviation of the window centred
// on every pixel, for rows [-RadiusY, Height+RadiusY) so that window sums
// centred just outside the image can be normalized too.
type windowStats struct {
	width, padY int
	mean, std   []float32
}

func (s *windowStats) row(y int) (mean, std []float32) {
	off := (y + s.padY) * s.width
	return s.mean[off : off+s.width], s.std[off : off+s.width]
}

// newWindowStats builds summed-area tables of the border extended image and
// its squares, then reads every window sum from four corners.
func newWindowStats[T image.Sample](pool *workerpool.Pool, img *image.Image[T], g Geometry) *windowStats {
	rx, ry := g.RadiusX, g.RadiusY
	bw, bh := g.BlockWidth(), g.RegionHeight()

	// The padded image spans columns [-rx, w+rx) and rows [-2ry, h+2ry).
	pw := g.Width + 2*rx
	ph := g.Height + 4*ry
	stride := pw + 1
	sum := make([]float64, stride*(ph+1))
	sq := make([]float64, stride*(ph+1))

	vals := make([]float64, pw)
	sqs := make([]float64, pw)
	cum := make([]float64, pw)
	cumSq := make([]float64, pw)
	for py := range ph {
		y := py - 2*ry
		for px := range pw {
			v, _ := image.BorderAt(g.Border, img, px-rx, y)
			f := float64(v)
			vals[px] = f
			sqs[px] = f * f
		}
		floats.CumSum(cum, vals)
		floats.CumSum(cumSq, sqs)

		prev := py * stride
		cur := (py + 1) * stride
		for px := range pw {
			sum[cur+px+1] = sum[prev+px+1] + cum[px]
			sq[cur+px+1] = sq[prev+px+1] + cumSq[px]
		}
	}

	rows := g.Height + 2*ry
	s := &windowStats{
		width: g.Width,
		padY:  ry,
		mean:  make([]float32, g.Width*rows),
		std:   make([]float32, g.Width*rows),
	}
	n := float64(bw * bh)
	pool.ParallelFor(rows, func(start, end int) {
		for r := start; r < end; r++ {
			// Window centred on image row r-ry covers padded rows
			// [r, r+bh); centred on column x it covers [x, x+bw).
			top := r * stride
			bottom := (r + bh) * stride
			off := r * g.Width
			for x := range g.Width {
				a := sum[bottom+x+bw] - sum[top+x+bw] - sum[bottom+x] + sum[top+x]
				b := sq[bottom+x+bw] - sq[top+x+bw] - sq[bottom+x] + sq[top+x]
				mean := a / n
				variance := b/n - mean*mean
				s.mean[off+x] = float32(mean)
				s.std[off+x] = float32(math.Sqrt(max(variance, 0)))
			}
		}
	})
	return s
}
