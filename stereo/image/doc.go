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

// Package image provides the single-band 2D image type consumed and produced
// by the disparity engine, together with border policies.
//
// Image[T] stores row-major samples. Rows are padded to a whole number of
// CPU cache lines so that concurrent workers writing adjacent output rows
// never share a line.
//
// # Usage Example
//
//	left := image.NewImage[uint8](640, 480)
//	right := image.NewImage[uint8](640, 480)
//	for y := 0; y < left.Height(); y++ {
//	    row := left.RowSlice(y)
//	    // fill row
//	}
//
// # Border Policies
//
// Windows that reach past the image edge are defined by a Border:
//
//	Border{Kind: BorderClip}              - no synthetic samples, window shrinks
//	Border{Kind: BorderExtend}            - repeat edge pixels (Clamp)
//	Border{Kind: BorderReflect}           - reflect at boundaries (Mirror)
//	Border{Kind: BorderWrap}              - tile (Wrap)
//	Border{Kind: BorderValue, Value: 128} - constant outside the image
package image
