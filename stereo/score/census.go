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
	"math/bits"

	"github.com/ajroetker/go-stereo/stereo/image"
	"github.com/ajroetker/go-stereo/stereo/workerpool"
)

// CensusPattern selects the neighbourhood encoded by the census transform.
type CensusPattern int

const (
	// Census3x3 encodes the 8 neighbours of a 3x3 block.
	Census3x3 CensusPattern = iota

	// Census5x5 encodes the 24 neighbours of a 5x5 block.
	Census5x5

	// Census7x7 encodes the 48 neighbours of a 7x7 block.
	Census7x7
)

// String returns a human-readable name for the pattern.
func (p CensusPattern) String() string {
	switch p {
	case Census3x3:
		return "census3x3"
	case Census5x5:
		return "census5x5"
	case Census7x7:
		return "census7x7"
	default:
		return "census?"
	}
}

// Radius returns the neighbourhood radius of the pattern.
func (p CensusPattern) Radius() int {
	return int(p) + 1
}

// Offset is a neighbour position relative to the centre pixel.
type Offset struct {
	DX, DY int
}

// Offsets returns the neighbours in bit order: raster order over the block
// with the centre skipped. Bit k of a code is set when neighbour k is
// strictly brighter than the centre.
func (p CensusPattern) Offsets() []Offset {
	r := p.Radius()
	offsets := make([]Offset, 0, (2*r+1)*(2*r+1)-1)
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			offsets = append(offsets, Offset{DX: dx, DY: dy})
		}
	}
	return offsets
}

// Validate reports an unknown pattern.
func (p CensusPattern) Validate() error {
	if p < Census3x3 || p > Census7x7 {
		return fmt.Errorf("score: unknown census pattern %d", int(p))
	}
	return nil
}

// CensusTransform writes the census code of every pixel of src into dst.
// Neighbours outside the image are sampled through the border policy; with
// BorderClip they contribute a zero bit. Rows are split across the pool when
// it is not nil.
func CensusTransform[T image.Sample](pool *workerpool.Pool, src *image.Image[T], dst *image.Image[uint64], p CensusPattern, b image.Border) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if !image.SameSize(src, dst) {
		return fmt.Errorf("%w: census src %dx%d, dst %dx%d", ErrSize,
			src.Width(), src.Height(), dst.Width(), dst.Height())
	}

	offsets := p.Offsets()
	r := p.Radius()
	w, h := src.Width(), src.Height()

	pool.ParallelFor(h, func(start, end int) {
		for y := start; y < end; y++ {
			out := dst.RowSlice(y)
			row := src.RowSlice(y)
			inner := y-r >= 0 && y+r < h
			for x := range w {
				center := row[x]
				var code uint64
				if inner && x-r >= 0 && x+r < w {
					for k, o := range offsets {
						if src.At(x+o.DX, y+o.DY) > center {
							code |= 1 << uint(k)
						}
					}
				} else {
					code = CensusCode(src, x, y, offsets, b)
				}
				out[x] = code
			}
		}
	})
	return nil
}

// CensusCode returns the census code of pixel (x, y), which must lie inside
// src, for the neighbour offsets of a pattern.
func CensusCode[T image.Sample](src *image.Image[T], x, y int, offsets []Offset, b image.Border) uint64 {
	center := src.At(x, y)
	var code uint64
	for k, o := range offsets {
		if v, ok := image.BorderAt(b, src, x+o.DX, y+o.DY); ok && v > center {
			code |= 1 << uint(k)
		}
	}
	return code
}

// Census is the census transform metric compared by Hamming distance.
type Census[T image.Sample, S Score] struct {
	pattern CensusPattern
}

// NewCensus returns the census metric for the given pattern.
func NewCensus[T image.Sample, S Score](p CensusPattern) Census[T, S] {
	return Census[T, S]{pattern: p}
}

// Pattern returns the census neighbourhood.
func (c Census[T, S]) Pattern() CensusPattern { return c.pattern }

func (c Census[T, S]) Name() string { return c.pattern.String() }
func (Census[T, S]) Kind() Kind     { return Error }

// Bind implements Metric. Both images are census transformed up front; the
// codes are then scored row by row like any other sample.
func (c Census[T, S]) Bind(pool *workerpool.Pool, left, right *image.Image[T], g Geometry) (Bound[S], error) {
	if err := checkBind(left, right, g); err != nil {
		return nil, err
	}
	cl := image.NewImage[uint64](g.Width, g.Height)
	cr := image.NewImage[uint64](g.Width, g.Height)
	if err := CensusTransform(pool, left, cl, c.pattern, g.Border); err != nil {
		return nil, err
	}
	if err := CensusTransform(pool, right, cr, c.pattern, g.Border); err != nil {
		return nil, err
	}
	return &rowEngine[uint64, S]{
		g:       g,
		kind:    Error,
		left:    cl,
		right:   cr,
		element: hamming[S],
	}, nil
}

func hamming[S Score](left, right []uint64, el []S, d, from, to int) {
	l := left[from:to]
	r := right[from-d : to-d]
	e := el[from:to]
	for i := range e {
		e[i] = S(bits.OnesCount64(l[i] ^ r[i]))
	}
}
