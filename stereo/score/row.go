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

import "github.com/ajroetker/go-stereo/stereo/image"

// elementFunc writes element costs el[i] = cost(left[i], right[i-d]) for
// i in [from, to). Row buffers are border extended by RadiusX, so buffer
// index i holds image column i-RadiusX.
type elementFunc[U image.Sample, S Score] func(left, right []U, el []S, d, from, to int)

// normalizeFunc implements Bound.NormalizeRegionScores.
type normalizeFunc[S Score] func(row int, raw, dst []S)

// rowBuffers is the Scratch of rowEngine.
type rowBuffers[U image.Sample, S Score] struct {
	left, right []U
	elements    []S
}

func (*rowBuffers[U, S]) rowScratch() {}

// rowEngine is the Bound shared by all metrics. U is the sample type rows
// are scored on, which differs from the input type for census.
type rowEngine[U image.Sample, S Score] struct {
	g           Geometry
	kind        Kind
	left, right *image.Image[U]
	element     elementFunc[U, S]
	normalize   normalizeFunc[S]
}

func (e *rowEngine[U, S]) Geometry() Geometry {
	return e.g
}

func (e *rowEngine[U, S]) Kind() Kind {
	return e.kind
}

func (e *rowEngine[U, S]) NewScratch() Scratch {
	n := e.g.Width + 2*e.g.RadiusX
	return &rowBuffers[U, S]{
		left:     make([]U, n),
		right:    make([]U, n),
		elements: make([]S, n),
	}
}

func (e *rowEngine[U, S]) RequiresNormalize() bool {
	return e.normalize != nil
}

func (e *rowEngine[U, S]) NormalizeRegionScores(row int, raw, dst []S) {
	if e.normalize == nil {
		copy(dst, raw[:e.g.Len()])
		return
	}
	e.normalize(row, raw, dst)
}

func (e *rowEngine[U, S]) ScoreRow(row int, out []S, scratch Scratch) {
	g := e.g
	w, rx := g.Width, g.RadiusX
	if len(out) < g.Len() {
		panic("score: out slice too short")
	}
	buf := scratch.(*rowBuffers[U, S])

	clip := g.Border.Clipped()
	if clip && (row < 0 || row >= g.Height) {
		clear(out[:g.Len()])
		return
	}
	image.ExtendRow(g.Border, e.left, row, rx, buf.left)
	image.ExtendRow(g.Border, e.right, row, rx, buf.right)

	bw := g.BlockWidth()
	ext := w + 2*rx
	el := buf.elements
	for di := range g.Range() {
		d := g.DisparityMin + di
		dst := out[di*w : (di+1)*w]
		if d >= w {
			clear(dst)
			continue
		}

		// Clipping keeps only columns with both samples inside the image:
		// left column c < w and right column c-d >= 0.
		from, to := d, ext
		if clip {
			from, to = d+rx, w+rx
		}
		clear(el[d:from])
		e.element(buf.left, buf.right, el, d, from, to)
		clear(el[to:ext])

		clear(dst[:d])
		slideWindow(el, dst, d, w, bw)
	}
}

// slideWindow writes dst[x] = sum(el[x : x+bw]) for x in [d, w) using a
// running sum.
func slideWindow[S Score](el, dst []S, d, w, bw int) {
	var sum S
	for i := d; i < d+bw; i++ {
		sum += el[i]
	}
	dst[d] = sum
	for x := d + 1; x < w; x++ {
		sum += el[x+bw-1] - el[x-1]
		dst[x] = sum
	}
}
