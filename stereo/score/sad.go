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
	"github.com/ajroetker/go-stereo/stereo/image"
	"github.com/ajroetker/go-stereo/stereo/workerpool"
)

// SAD is the sum of absolute differences metric.
type SAD[T image.Sample, S Score] struct{}

// NewSAD returns the SAD metric. Use S=int32 for integer images and
// S=float32 for floating point images.
func NewSAD[T image.Sample, S Score]() SAD[T, S] {
	return SAD[T, S]{}
}

func (SAD[T, S]) Name() string { return "sad" }
func (SAD[T, S]) Kind() Kind   { return Error }

// Bind implements Metric.
func (SAD[T, S]) Bind(_ *workerpool.Pool, left, right *image.Image[T], g Geometry) (Bound[S], error) {
	if err := checkBind(left, right, g); err != nil {
		return nil, err
	}
	return &rowEngine[T, S]{
		g:       g,
		kind:    Error,
		left:    left,
		right:   right,
		element: absDiff[T, S],
	}, nil
}

func absDiff[T image.Sample, S Score](left, right []T, el []S, d, from, to int) {
	l := left[from:to]
	r := right[from-d : to-d]
	e := el[from:to]
	for i := range e {
		v := S(l[i]) - S(r[i])
		if v < 0 {
			v = -v
		}
		e[i] = v
	}
}
