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
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/ajroetker/go-stereo/stereo/image"
)

// patternPair is the 15x10 pair used by the hand-computed row tests.
func patternPair() (left, right *image.Image[uint8]) {
	left = image.NewImage[uint8](15, 10)
	right = image.NewImage[uint8](15, 10)
	for y := range 10 {
		for x := range 15 {
			left.Set(x, y, uint8((x*x+3*y)%37))
			right.Set(x, y, uint8((x*5+y*y)%29))
		}
	}
	return left, right
}

func randomImage(rng *rand.Rand, w, h int) *image.Image[uint8] {
	img := image.NewImage[uint8](w, h)
	for y := range h {
		row := img.RowSlice(y)
		for x := range row {
			row[x] = uint8(rng.IntN(256))
		}
	}
	return img
}

// naiveRowSAD sums |L-R| over the horizontal window at (x, y) with no
// running sums.
func naiveRowSAD(left, right *image.Image[uint8], g Geometry, x, y, d int) int32 {
	var sum int32
	for k := -g.RadiusX; k <= g.RadiusX; k++ {
		c := x + k
		l, okL := image.BorderAt(g.Border, left, c, y)
		r, okR := image.BorderAt(g.Border, right, c-d, y)
		if !okL || !okR {
			continue
		}
		v := int32(l) - int32(r)
		if v < 0 {
			v = -v
		}
		sum += v
	}
	return sum
}

func TestScoreRow_HandComputed(t *testing.T) {
	left, right := patternPair()

	tests := []struct {
		border image.Border
		x, d   int
		want   int32
	}{
		{image.Border{Kind: image.BorderExtend}, 7, 3, 37},
		{image.Border{Kind: image.BorderExtend}, 10, 10, 73},
		{image.Border{Kind: image.BorderExtend}, 12, 0, 83},
		{image.Border{Kind: image.BorderExtend}, 2, 2, 73},
		{image.Border{Kind: image.BorderExtend}, 14, 5, 65},
		{image.Border{Kind: image.BorderClip}, 7, 3, 37},
		{image.Border{Kind: image.BorderClip}, 10, 10, 50},
		{image.Border{Kind: image.BorderClip}, 2, 2, 54},
		{image.Border{Kind: image.BorderClip}, 14, 5, 52},
	}

	for _, tt := range tests {
		g := Geometry{Width: 15, Height: 10, RadiusX: 2, RadiusY: 2, DisparityMin: 0, DisparityMax: 10, Border: tt.border}
		bound, err := NewSAD[uint8, int32]().Bind(nil, left, right, g)
		if err != nil {
			t.Fatalf("Bind: %v", err)
		}
		out := make([]int32, g.Len())
		bound.ScoreRow(5, out, bound.NewScratch())

		if got := out[(tt.d-g.DisparityMin)*g.Width+tt.x]; got != tt.want {
			t.Errorf("%s: score(x=%d, d=%d) = %d, want %d", tt.border.Kind, tt.x, tt.d, got, tt.want)
		}
	}
}

func TestScoreRow_MatchesNaive(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	left := randomImage(rng, 23, 7)
	right := randomImage(rng, 23, 7)

	borders := []image.Border{
		{Kind: image.BorderClip},
		{Kind: image.BorderExtend},
		{Kind: image.BorderReflect},
		{Kind: image.BorderWrap},
		{Kind: image.BorderValue, Value: 17},
	}
	for _, b := range borders {
		for _, rx := range []int{0, 1, 3} {
			for _, dr := range [][2]int{{0, 5}, {2, 9}, {4, 30}} {
				g := Geometry{Width: 23, Height: 7, RadiusX: rx, RadiusY: 1,
					DisparityMin: dr[0], DisparityMax: dr[1], Border: b}
				name := fmt.Sprintf("%s/rx=%d/d=%v", b.Kind, rx, dr)
				t.Run(name, func(t *testing.T) {
					bound, err := NewSAD[uint8, int32]().Bind(nil, left, right, g)
					if err != nil {
						t.Fatalf("Bind: %v", err)
					}
					out := make([]int32, g.Len())
					scratch := bound.NewScratch()
					for _, y := range []int{-1, 0, 3, 6, 7} {
						bound.ScoreRow(y, out, scratch)
						for di := range g.Range() {
							d := g.DisparityMin + di
							for x := d; x < g.Width; x++ {
								var want int32
								if !b.Clipped() || (y >= 0 && y < g.Height) {
									want = naiveRowSAD(left, right, g, x, y, d)
								}
								if got := out[di*g.Width+x]; got != want {
									t.Fatalf("row %d: score(x=%d, d=%d) = %d, want %d", y, x, d, got, want)
								}
							}
							for x := 0; x < min(d, g.Width); x++ {
								if got := out[di*g.Width+x]; got != 0 {
									t.Fatalf("row %d: score(x=%d, d=%d) = %d, want 0 for x < d", y, x, d, got)
								}
							}
						}
					}
				})
			}
		}
	}
}

func TestScoreRow_Float(t *testing.T) {
	left := image.NewImage[float32](9, 3)
	right := image.NewImage[float32](9, 3)
	for x := range 9 {
		left.Set(x, 1, float32(x)*0.5)
		right.Set(x, 1, float32(x)*0.25)
	}
	g := Geometry{Width: 9, Height: 3, RadiusX: 1, RadiusY: 0, DisparityMin: 0, DisparityMax: 2,
		Border: image.Border{Kind: image.BorderClip}}
	bound, err := NewSAD[float32, float32]().Bind(nil, left, right, g)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	out := make([]float32, g.Len())
	bound.ScoreRow(1, out, bound.NewScratch())

	// d=1, x=4: |1.5-0.5| + |2-0.75| + |2.5-1| = 1 + 1.25 + 1.5
	if got, want := out[1*9+4], float32(3.75); math.Abs(float64(got-want)) > 1e-5 {
		t.Errorf("score(x=4, d=1) = %v, want %v", got, want)
	}
}

func TestGeometry_Validate(t *testing.T) {
	base := Geometry{Width: 10, Height: 10, RadiusX: 1, RadiusY: 1, DisparityMin: 0, DisparityMax: 5}

	tests := []struct {
		name   string
		modify func(*Geometry)
		want   error
	}{
		{"ok", func(*Geometry) {}, nil},
		{"negative radius", func(g *Geometry) { g.RadiusY = -1 }, ErrRadius},
		{"negative min", func(g *Geometry) { g.DisparityMin = -1 }, ErrRange},
		{"empty range", func(g *Geometry) { g.DisparityMin = 5 }, ErrRange},
		{"zero size", func(g *Geometry) { g.Width = 0 }, ErrSize},
		{"bad border", func(g *Geometry) { g.Border.Kind = 99 }, ErrBorder},
	}
	for _, tt := range tests {
		g := base
		tt.modify(&g)
		err := g.Validate()
		if tt.want == nil {
			if err != nil {
				t.Errorf("%s: unexpected error %v", tt.name, err)
			}
			continue
		}
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestGeometry_LocalRange(t *testing.T) {
	g := Geometry{Width: 20, Height: 1, DisparityMin: 3, DisparityMax: 8}
	tests := []struct{ x, want int }{
		{0, 0},
		{2, 0},
		{3, 1},
		{5, 3},
		{8, 6},
		{19, 6},
	}
	for _, tt := range tests {
		if got := g.LocalRange(tt.x); got != tt.want {
			t.Errorf("LocalRange(%d) = %d, want %d", tt.x, got, tt.want)
		}
	}
}

func TestBind_SizeMismatch(t *testing.T) {
	left := image.NewImage[uint8](10, 5)
	right := image.NewImage[uint8](11, 5)
	g := Geometry{Width: 10, Height: 5, RadiusX: 1, RadiusY: 1, DisparityMin: 0, DisparityMax: 3}
	if _, err := NewSAD[uint8, int32]().Bind(nil, left, right, g); !errors.Is(err, ErrSize) {
		t.Errorf("Bind mismatched sizes: got %v, want %v", err, ErrSize)
	}
}

func TestWorst(t *testing.T) {
	if got := Worst[int32](Error); got != math.MaxInt32 {
		t.Errorf("Worst[int32](Error) = %d", got)
	}
	if got := Worst[int32](Correlation); got != math.MinInt32 {
		t.Errorf("Worst[int32](Correlation) = %d", got)
	}
	if got := Worst[float32](Error); !math.IsInf(float64(got), 1) {
		t.Errorf("Worst[float32](Error) = %v", got)
	}
	if got := Worst[float32](Correlation); !math.IsInf(float64(got), -1) {
		t.Errorf("Worst[float32](Correlation) = %v", got)
	}
}
