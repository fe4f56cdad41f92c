/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	applog "gocomicbox/internal/log"
	"gocomicbox/internal/textbox"
)

// Format is an output file format.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
	FormatPDF Format = "pdf"
)

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "png":
		return FormatPNG, nil
	case "svg":
		return FormatSVG, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("unknown output format: %s", path)
}

// Options controls WriteAll.
//
// Path semantics:
//   - PNG outputs are composited onto Host at Placement when Host is set,
//     otherwise the bare box is written.
//   - SVG and PDF outputs always contain the box alone.
//   - Missing parent directories are created.
type Options struct {
	Host      image.Image
	Placement textbox.Placement
}

// WriteAll renders c once per output path.
func WriteAll(outputs []string, c *textbox.Composition, st textbox.Style, opt Options) error {
	if len(outputs) == 0 {
		return fmt.Errorf("no outputs")
	}
	lg := applog.WithOperation(applog.WithComponent("export"), "write")
	var raster *image.RGBA
	for _, out := range outputs {
		f, err := FormatOf(out)
		if err != nil {
			return err
		}
		switch f {
		case FormatPNG:
			if raster == nil {
				raster = Raster(c, st)
			}
			var img image.Image = raster
			if opt.Host != nil {
				hb := opt.Host.Bounds()
				top, left := opt.Placement.Resolve(hb.Dx(), hb.Dy(), raster.Bounds().Dx(), raster.Bounds().Dy())
				img = Composite(opt.Host, raster, top, left)
				lg.Debug("composited", "top", top, "left", left, "host_w", hb.Dx(), "host_h", hb.Dy())
			}
			err = WritePNG(out, img)
		case FormatSVG:
			err = WriteSVG(out, c, st)
		case FormatPDF:
			err = WritePDF(out, c, st)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", f, err)
		}
		lg.Info("wrote output", "path", out, "format", string(f))
	}
	return nil
}

// WriteSVG is SVG to a file.
func WriteSVG(path string, c *textbox.Composition, st textbox.Style) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, SVG(c, st), 0o644); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	return nil
}
