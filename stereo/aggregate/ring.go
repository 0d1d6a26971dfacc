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

// Ring is a fixed set of equally sized score rows addressed from the oldest.
// Advance retires the oldest row, which becomes the newest slot to refill.
type Ring[S score.Score] struct {
	rows [][]S
	head int
}

// NewRing allocates n rows of size elements each.
func NewRing[S score.Score](n, size int) *Ring[S] {
	r := &Ring[S]{}
	r.Resize(n, size)
	return r
}

// Resize reshapes the ring, reusing storage when it is large enough.
// The contents are unspecified afterwards.
func (r *Ring[S]) Resize(n, size int) {
	if n < 1 {
		n = 1
	}
	if len(r.rows) != n || cap(r.rows[0]) < size {
		backing := make([]S, n*size)
		r.rows = make([][]S, n)
		for i := range r.rows {
			r.rows[i] = backing[i*size : (i+1)*size : (i+1)*size]
		}
	} else {
		for i := range r.rows {
			r.rows[i] = r.rows[i][:size]
		}
	}
	r.head = 0
}

// Len returns the number of rows.
func (r *Ring[S]) Len() int {
	return len(r.rows)
}

// Oldest returns the row that Advance retires next.
func (r *Ring[S]) Oldest() []S {
	return r.rows[r.head]
}

// Newest returns the most recently retired-and-refilled row.
func (r *Ring[S]) Newest() []S {
	return r.At(len(r.rows) - 1)
}

// At returns the i-th row counting from the oldest.
func (r *Ring[S]) At(i int) []S {
	i += r.head
	if i >= len(r.rows) {
		i -= len(r.rows)
	}
	return r.rows[i]
}

// Advance makes the current oldest row the newest.
func (r *Ring[S]) Advance() {
	r.head++
	if r.head == len(r.rows) {
		r.head = 0
	}
}

// Reset makes row 0 the oldest again without touching contents.
func (r *Ring[S]) Reset() {
	r.head = 0
}
