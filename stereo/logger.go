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
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"

	"golang.org/x/sys/cpu"

	"github.com/ajroetker/go-stereo/stereo/image"
)

// nopHandler discards every record. Enabled returns false so callers skip
// building attributes altogether.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger sets the logger used by the package. By default nothing is
// logged; nil restores that. Safe for concurrent use.
//
// Only debug records are emitted: the metric binding and the band schedule
// of every Process call. Nothing is logged per row or pixel.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// CPUInfo describes the features relevant to the row buffers: the cache
// line size rows are padded to and the vector extensions present.
func CPUInfo() string {
	var ext string
	switch runtime.GOARCH {
	case "amd64":
		ext = fmt.Sprintf("avx2=%t avx512=%t", cpu.X86.HasAVX2, cpu.X86.HasAVX512F)
	case "arm64":
		ext = fmt.Sprintf("asimd=%t sve=%t", cpu.ARM64.HasASIMD, cpu.ARM64.HasSVE)
	default:
		ext = "simd=unknown"
	}
	return fmt.Sprintf("%s cacheline=%d %s", runtime.GOARCH, image.CacheLineSize(), ext)
}
