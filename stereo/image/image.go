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

package image

import (
	"fmt"
	"slices"
	"unsafe"

	"golang.org/x/sys/cpu"
)

// Sample is the set of element types an Image can hold.
type Sample interface {
	~uint8 | ~uint16 | ~int16 | ~int32 | ~uint32 | ~uint64 | ~float32 | ~float64
}

// cacheLine is the CPU cache line size in bytes, as padded by x/sys/cpu.
var cacheLine = int(unsafe.Sizeof(cpu.CacheLinePad{}))

// CacheLineSize returns the cache line size rows are aligned to.
func CacheLineSize() int {
	return cacheLine
}

// Image is a single-band 2D array with cache-line padded rows.
type Image[T Sample] struct {
	data   []T
	width  int
	height int
	stride int // elements per row (includes padding)
}

// NewImage creates a new zeroed image with the specified dimensions.
// Non-positive dimensions produce an empty 0x0 image.
func NewImage[T Sample](width, height int) *Image[T] {
	if width <= 0 || height <= 0 {
		return &Image[T]{}
	}

	var zero T
	elemSize := int(unsafe.Sizeof(zero))
	perLine := max(cacheLine/elemSize, 1)
	stride := ((width + perLine - 1) / perLine) * perLine

	return &Image[T]{
		data:   make([]T, stride*height),
		width:  width,
		height: height,
		stride: stride,
	}
}

// FromSlice wraps row-major data with no padding (stride == width).
// The slice is used directly, not copied.
func FromSlice[T Sample](width, height int, data []T) (*Image[T], error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("image: invalid dimensions %dx%d", width, height)
	}
	if len(data) < width*height {
		return nil, fmt.Errorf("image: data has %d samples, want %d", len(data), width*height)
	}
	return &Image[T]{
		data:   data[:width*height],
		width:  width,
		height: height,
		stride: width,
	}, nil
}

// Width returns the image width in pixels.
func (img *Image[T]) Width() int { return img.width }

// Height returns the image height in pixels.
func (img *Image[T]) Height() int { return img.height }

// Stride returns the distance in elements between the starts of two rows.
func (img *Image[T]) Stride() int { return img.stride }

func (img *Image[T]) inside(x, y int) bool {
	return img.data != nil && uint(x) < uint(img.width) && uint(y) < uint(img.height)
}

// Row returns row y including its padding, or nil outside the image.
func (img *Image[T]) Row(y int) []T {
	if !img.inside(0, y) {
		return nil
	}
	return img.data[y*img.stride : (y+1)*img.stride]
}

// RowSlice returns the width samples of row y, or nil outside the image.
// The slice aliases the image.
func (img *Image[T]) RowSlice(y int) []T {
	if !img.inside(0, y) {
		return nil
	}
	return img.data[y*img.stride : y*img.stride+img.width]
}

// At returns the sample at (x, y), or zero outside the image.
func (img *Image[T]) At(x, y int) T {
	if !img.inside(x, y) {
		var zero T
		return zero
	}
	return img.data[y*img.stride+x]
}

// Set stores value at (x, y). Positions outside the image are ignored.
func (img *Image[T]) Set(x, y int, value T) {
	if img.inside(x, y) {
		img.data[y*img.stride+x] = value
	}
}

// SameSize reports whether a and b have equal dimensions.
func SameSize[T, U Sample](a *Image[T], b *Image[U]) bool {
	return a.width == b.width && a.height == b.height
}

// Clone returns a deep copy with the same stride.
func (img *Image[T]) Clone() *Image[T] {
	c := *img
	c.data = slices.Clone(img.data)
	return &c
}

// Fill sets every sample, padding included, to value.
func (img *Image[T]) Fill(value T) {
	for i := range img.data {
		img.data[i] = value
	}
}
