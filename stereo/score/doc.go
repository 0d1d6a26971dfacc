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

// Package score computes per-row block matching costs for rectified stereo.
//
// A Metric is chosen once at configuration time and bound to a left/right
// image pair. The resulting Bound fills, for one image row and every
// disparity in range, the horizontal window sum of element costs:
//
//	out[di*width + x] = sum over k in [-rx, rx] of cost(left[x+k], right[x+k-d])
//
// where d = DisparityMin + di. Columns x < d have no match in the right
// image and are written as zero.
//
// Element costs are computed once per (row, disparity) into a scratch buffer
// and the window sum slides across the row:
//
//	score(x) = score(x-1) - element(x-1) + element(x+blockWidth-1)
//
// # Metrics
//
//	NewSAD[T, S]()             absolute difference, lower is better
//	NewCensus[T, S](Census5x5) Hamming distance of census codes, lower is better
//	NewNCC[T](eps)             normalized cross-correlation, higher is better
//
// NCC is not a plain additive window sum. Its Bound reports
// RequiresNormalize and the aggregated window sums must be passed through
// NormalizeRegionScores before selection.
package score
