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

package stereo

import (
	"testing"

	"github.com/ajroetker/go-stereo/stereo/aggregate"
	"github.com/ajroetker/go-stereo/stereo/image"
	"github.com/ajroetker/go-stereo/stereo/score"
	"github.com/ajroetker/go-stereo/stereo/workerpool"
)

// Benchmark sizes
var benchSizes = []struct {
	name   string
	width  int
	height int
}{
	{"320x240", 320, 240},
	{"VGA", 640, 480},
	{"720p", 1280, 720},
}

func benchMatcher[S score.Score](b *testing.B, metric score.Metric[uint8, S], mode aggregate.Mode, pool *workerpool.Pool) {
	for _, size := range benchSizes {
		b.Run(size.name, func(b *testing.B) {
			left, right := shiftedPair(3, size.width, size.height, 9)
			cfg := DefaultConfig()
			cfg.Aggregation = mode
			m, err := NewMatcher[uint8, S, uint8](cfg, metric)
			if err != nil {
				b.Fatal(err)
			}
			dst := image.NewImage[uint8](size.width, size.height)

			b.ResetTimer()
			b.ReportAllocs()
			for b.Loop() {
				if err := m.Process(pool, left, right, dst, nil); err != nil {
					b.Fatal(err)
				}
			}
			// Pixel-disparity pairs per iteration.
			b.SetBytes(int64(size.width * size.height * cfg.Range()))
		})
	}
}

func BenchmarkSAD(b *testing.B) {
	benchMatcher[int32](b, score.NewSAD[uint8, int32](), aggregate.Single, nil)
}

func BenchmarkSADParallel(b *testing.B) {
	pool := workerpool.New(0)
	defer pool.Close()
	benchMatcher[int32](b, score.NewSAD[uint8, int32](), aggregate.Single, pool)
}

func BenchmarkCensus5x5BestFive(b *testing.B) {
	pool := workerpool.New(0)
	defer pool.Close()
	benchMatcher[int32](b, score.NewCensus[uint8, int32](score.Census5x5), aggregate.BestFive, pool)
}

func BenchmarkNCC(b *testing.B) {
	pool := workerpool.New(0)
	defer pool.Close()
	benchMatcher[float32](b, score.NewNCC[uint8](1e-6), aggregate.Single, pool)
}
