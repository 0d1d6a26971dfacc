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

// Package stereo computes dense disparity images from rectified stereo
// pairs by block matching.
//
// A Matcher ties together the pieces in the sub-packages:
//
//	score      per-row window costs (SAD, census, NCC)
//	aggregate  sliding vertical sums, single window or best-five
//	selector   winner-take-all with validity checks and sub-pixel fit
//
// The image height is split into bands that are processed independently,
// each by one worker with its own Work Space and selector clone:
//
//	pool := workerpool.New(0)
//	defer pool.Close()
//
//	cfg := stereo.DefaultConfig()
//	cfg.DisparityMax = 127
//	m, err := stereo.NewMatcher[uint8, int32, uint8](cfg, score.NewCensus[uint8, int32](score.Census5x5))
//	if err != nil {
//		return err
//	}
//	disp, err := m.Disparity(pool, left, right)
//
// Disparities are stored relative to DisparityMin. A pixel without a valid
// match holds the invalid sentinel Config.Range().
//
// Set STEREO_SEQUENTIAL=1 to ignore the pool, which is useful when
// comparing against sequential output or profiling a single band.
package stereo
