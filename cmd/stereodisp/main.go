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

// Command stereodisp computes a disparity image from a rectified stereo
// pair.
//
// Usage:
//
//	stereodisp left.png right.png -o disp.png --max 127 --metric census5x5
//	stereodisp left.png right.png -o disp.tiff --subpixel --aggregation bestfive
//	stereodisp left.png right.png --at 120,80 --at 300,95   # sparse queries
//
// Inputs may be PNG, JPEG, BMP, TIFF or WebP and are converted to 8-bit
// gray. The output is a 16-bit gray PNG or TIFF holding the absolute
// disparity multiplied by --out-scale, clamped to 65534; unmatched pixels
// are 65535.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	o := defaultOptions()
	cmd := &cobra.Command{
		Use:          "stereodisp LEFT RIGHT",
		Short:        "Compute a disparity image from a rectified stereo pair",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), o, args[0], args[1], cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	o.register(cmd.Flags())
	return cmd
}
