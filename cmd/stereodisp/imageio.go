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

package main

import (
	"context"
	"fmt"
	goimage "image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/ajroetker/go-stereo/stereo/image"
)

// loadPair decodes both images concurrently.
func loadPair(ctx context.Context, leftPath, rightPath string, scale float64) (left, right *image.Image[uint8], err error) {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		left, err = loadGray(ctx, leftPath, scale)
		return err
	})
	g.Go(func() error {
		var err error
		right, err = loadGray(ctx, rightPath, scale)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if !image.SameSize(left, right) {
		return nil, nil, fmt.Errorf("%s is %dx%d but %s is %dx%d",
			leftPath, left.Width(), left.Height(), rightPath, right.Width(), right.Height())
	}
	return left, right, nil
}

// loadGray decodes path and converts it to 8-bit gray, resampled by scale.
func loadGray(ctx context.Context, path string, scale float64) (*image.Image[uint8], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	src, format, err := goimage.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := src.Bounds()
	w := int(math.Round(float64(b.Dx()) * scale))
	h := int(math.Round(float64(b.Dy()) * scale))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%s: %dx%d %s scaled by %g is empty", path, b.Dx(), b.Dy(), format, scale)
	}
	gray := goimage.NewGray(goimage.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		xdraw.Draw(gray, gray.Bounds(), src, b.Min, xdraw.Src)
	} else {
		xdraw.ApproxBiLinear.Scale(gray, gray.Bounds(), src, b, xdraw.Src, nil)
	}
	return fromGray(gray), nil
}

func fromGray(g *goimage.Gray) *image.Image[uint8] {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	img := image.NewImage[uint8](w, h)
	for y := range h {
		copy(img.RowSlice(y), g.Pix[y*g.Stride:y*g.Stride+w])
	}
	return img
}

// invalidGray16 marks pixels without a match in the output image. Valid
// values are clamped below it, so a disparity of 0 stays distinguishable.
const invalidGray16 = math.MaxUint16

// toGray16 renders absolute disparities times scale. Pixels holding
// invalid become invalidGray16.
func toGray16(disp *image.Image[float32], minDisparity int, invalid float32, scale float64) *goimage.Gray16 {
	w, h := disp.Width(), disp.Height()
	out := goimage.NewGray16(goimage.Rect(0, 0, w, h))
	for y := range h {
		for x, d := range disp.RowSlice(y) {
			v := float64(invalidGray16)
			if d != invalid {
				v = math.Round((float64(d) + float64(minDisparity)) * scale)
				v = min(max(v, 0), invalidGray16-1)
			}
			out.SetGray16(x, y, color.Gray16{Y: uint16(v)})
		}
	}
	return out
}

// writeImage encodes img in the format named by the extension of path.
func writeImage(path string, img goimage.Image) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".png" && ext != ".tif" && ext != ".tiff" {
		return fmt.Errorf("%s: unsupported output format %q, want .png, .tif or .tiff", path, ext)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if ext == ".png" {
		err = png.Encode(f, img)
	} else {
		err = tiff.Encode(f, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return err
}
