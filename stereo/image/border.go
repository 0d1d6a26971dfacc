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

import "fmt"

// BorderKind selects how samples outside the image are produced.
type BorderKind int

const (
	// BorderClip produces no synthetic samples. Windows shrink to the
	// in-bounds samples.
	BorderClip BorderKind = iota

	// BorderExtend repeats the nearest edge sample.
	BorderExtend

	// BorderReflect mirrors the image at its edges.
	BorderReflect

	// BorderWrap tiles the image.
	BorderWrap

	// BorderValue uses Border.Value for every outside sample.
	BorderValue
)

// String returns a human-readable name for the border kind.
func (k BorderKind) String() string {
	switch k {
	case BorderClip:
		return "clip"
	case BorderExtend:
		return "extend"
	case BorderReflect:
		return "reflect"
	case BorderWrap:
		return "wrap"
	case BorderValue:
		return "value"
	default:
		return "unknown"
	}
}

// Border is a border policy. The zero value clips.
type Border struct {
	Kind BorderKind

	// Value is the outside sample for BorderValue, converted to the
	// image element type.
	Value float64
}

// Validate reports an unknown border kind.
func (b Border) Validate() error {
	if b.Kind < BorderClip || b.Kind > BorderValue {
		return fmt.Errorf("image: unknown border kind %d", int(b.Kind))
	}
	return nil
}

// Clipped reports whether the policy produces no synthetic samples.
func (b Border) Clipped() bool {
	return b.Kind == BorderClip
}

// Index maps a possibly out-of-bounds index into [0, size) for the index
// based kinds (extend, reflect, wrap). For clip and value it returns -1 for
// out-of-bounds indices.
func (b Border) Index(i, size int) int {
	if i >= 0 && i < size {
		return i
	}
	switch b.Kind {
	case BorderExtend:
		return Clamp(i, size)
	case BorderReflect:
		return Mirror(i, size)
	case BorderWrap:
		return Wrap(i, size)
	default:
		return -1
	}
}

// BorderAt returns the sample at (x, y) under the border policy. The second
// result is false when the policy is BorderClip and (x, y) is outside.
func BorderAt[T Sample](b Border, img *Image[T], x, y int) (T, bool) {
	if x >= 0 && x < img.width && y >= 0 && y < img.height {
		return img.data[y*img.stride+x], true
	}
	switch b.Kind {
	case BorderClip:
		var zero T
		return zero, false
	case BorderValue:
		return T(b.Value), true
	default:
		return img.data[b.Index(y, img.height)*img.stride+b.Index(x, img.width)], true
	}
}

// ExtendRow copies row y into dst[pad:pad+width] and fills pad samples on
// each side according to the border policy. y may be outside the image.
// dst must hold at least width+2*pad samples.
//
// With BorderClip the padding and any out-of-image row are zero filled;
// callers that clip must ignore those samples.
func ExtendRow[T Sample](b Border, img *Image[T], y, pad int, dst []T) {
	w := img.width
	if len(dst) < w+2*pad {
		panic("image: ExtendRow dst too short")
	}
	dst = dst[:w+2*pad]

	var zero T
	fill := zero
	if b.Kind == BorderValue {
		fill = T(b.Value)
	}

	sy := y
	if y < 0 || y >= img.height {
		sy = b.Index(y, img.height)
	}
	if sy < 0 {
		for i := range dst {
			dst[i] = fill
		}
		return
	}

	row := img.data[sy*img.stride : sy*img.stride+w]
	copy(dst[pad:pad+w], row)

	switch b.Kind {
	case BorderClip, BorderValue:
		for i := 0; i < pad; i++ {
			dst[i] = fill
			dst[pad+w+i] = fill
		}
	default:
		for i := 0; i < pad; i++ {
			dst[i] = row[b.Index(i-pad, w)]
			dst[pad+w+i] = row[b.Index(w+i, w)]
		}
	}
}

// Mirror returns the mirrored index for out-of-bounds coordinates.
// Given bounds [0, size), mirrors index to stay within bounds
// (edge sample repeated: -1 -> 0, size -> size-1).
func Mirror(index, size int) int {
	if size <= 0 {
		return 0
	}
	if index < 0 {
		index = -index - 1
	}
	if index >= size {
		period := 2 * size
		index = index % period
		if index >= size {
			index = period - index - 1
		}
	}
	return index
}

// Clamp returns index clamped to [0, size-1].
func Clamp(index, size int) int {
	if index < 0 {
		return 0
	}
	if index >= size {
		return size - 1
	}
	return index
}

// Wrap returns index wrapped to [0, size) using modulo.
func Wrap(index, size int) int {
	if size <= 0 {
		return 0
	}
	index = index % size
	if index < 0 {
		index += size
	}
	return index
}
