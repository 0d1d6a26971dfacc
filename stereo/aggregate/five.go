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

package aggregate

import "github.com/ajroetker/go-stereo/stereo/score"

// FiveRegion is the best-five aggregator. The score of a pixel is its
// centre window plus the two best of the four windows centred at
// (x±RadiusX, y±RadiusY), which suppresses matches spoiled by an occlusion
// or depth edge crossing one side of the window.
//
// The corner windows reuse the vertical sums centred on rows y-RadiusY and
// y+RadiusY, kept in a ring of the last 2*RadiusY+1 vertical sums.
//
// Horizontally the border is clip-and-sentinel: a corner whose centre column
// falls outside [d, width) for disparity d scores Worst before the two best
// are chosen. Vertically the configured border policy applies.
type FiveRegion[S score.Score] struct{}

// ProcessBand implements Aggregator.
func (FiveRegion[S]) ProcessBand(b score.Bound[S], minRow, maxRow int, ws *WorkSpace[S], emit RowFunc[S]) {
	if minRow >= maxRow {
		return
	}
	ws.prepare(b, true)

	g := b.Geometry()
	ry := g.RadiusY
	vr := ws.verticals
	vr.Reset()

	// Vertical sums centred on rows [minRow-ry, maxRow+ry).
	first := minRow - ry
	for c := first; c < maxRow+ry; c++ {
		if c == first {
			ws.fill(b, c)
		} else {
			ws.slide(b, c)
		}

		dst := vr.Oldest()
		if b.RequiresNormalize() {
			b.NormalizeRegionScores(c, ws.vertical, dst)
		} else {
			copy(dst, ws.vertical)
		}
		vr.Advance()

		if c >= minRow+ry {
			combineRows(g, b.Kind(), vr.At(0), vr.At(ry), vr.Newest(), ws.combined)
			emit(c-ry, ws.combined)
		}
	}
}

// combineRows writes the best-five score of every pixel of one row.
func combineRows[S score.Score](g score.Geometry, k score.Kind, top, mid, bottom, out []S) {
	w, rx := g.Width, g.RadiusX
	worst := score.Worst[S](k)
	for di := range g.Range() {
		d := g.DisparityMin + di
		off := di * w
		dst := out[off : off+w]
		if d >= w {
			clear(dst)
			continue
		}
		clear(dst[:d])
		for x := d; x < w; x++ {
			i := off + x
			c0, c2 := worst, worst
			if x-rx >= d {
				c0, c2 = top[i-rx], bottom[i-rx]
			}
			c1, c3 := worst, worst
			if x+rx < w {
				c1, c3 = top[i+rx], bottom[i+rx]
			}
			dst[x] = combine(k, worst, mid[i], c0, c1, c2, c3)
		}
	}
}

// Combine returns the best-five score from a centre score and four corner
// scores. Corners that must not take part should be passed as
// score.Worst. When one of the two kept corners is Worst the result is
// Worst.
func Combine[S score.Score](k score.Kind, center, c0, c1, c2, c3 S) S {
	return combine(k, score.Worst[S](k), center, c0, c1, c2, c3)
}

func combine[S score.Score](k score.Kind, worst, center, c0, c1, c2, c3 S) S {
	var a, b S
	if k == score.Correlation {
		a, b = twoLargest(c0, c1, c2, c3)
	} else {
		a, b = twoSmallest(c0, c1, c2, c3)
	}
	if a == worst || b == worst {
		return worst
	}
	return center + a + b
}

// twoSmallest returns the smallest and second smallest of four values.
func twoSmallest[S score.Score](c0, c1, c2, c3 S) (S, S) {
	lo1, hi1 := c0, c1
	if hi1 < lo1 {
		lo1, hi1 = hi1, lo1
	}
	lo2, hi2 := c2, c3
	if hi2 < lo2 {
		lo2, hi2 = hi2, lo2
	}
	if lo1 <= lo2 {
		return lo1, min(hi1, lo2)
	}
	return lo2, min(lo1, hi2)
}

// twoLargest returns the largest and second largest of four values.
func twoLargest[S score.Score](c0, c1, c2, c3 S) (S, S) {
	lo1, hi1 := c0, c1
	if hi1 < lo1 {
		lo1, hi1 = hi1, lo1
	}
	lo2, hi2 := c2, c3
	if hi2 < lo2 {
		lo2, hi2 = hi2, lo2
	}
	if hi1 >= hi2 {
		return hi1, max(lo1, hi2)
	}
	return hi2, max(hi1, lo2)
}
