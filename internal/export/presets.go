/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetWeb   PresetName = "web"
	PresetPrint PresetName = "print"
)

// Supported output formats.
const (
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatPDF = "pdf"
)

// Render writes b in the given format.
func Render(format string, b Blueprint, opt Options) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatSVG:
		err = SVG(&buf, b, opt)
	case FormatPNG:
		err = PNG(&buf, b, opt)
	case FormatPDF:
		err = PDF(&buf, b, opt)
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile renders b and writes it to path, creating parent directories.
func WriteFile(path, format string, b Blueprint, opt Options) error {
	data, err := Render(format, b, opt)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", format, err)
	}
	return nil
}

// BatchOptions controls batch export across formats.
//
// Files are named layout-<breakpoint>.<format> inside OutDir/<preset>/.
type BatchOptions struct {
	Preset        PresetName
	Formats       []string // allowed: pdf, png, svg; empty means preset defaults
	Scale         float64  // when > 0 overrides the preset scale
	IncludeGuides *bool    // when set, overrides preset's default for guides
	OutDir        string
}

// BatchExport renders every requested format and returns the written paths.
func BatchExport(b Blueprint, opt BatchOptions) ([]string, error) {
	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}
	preset := opt.Preset
	if preset == "" {
		preset = PresetWeb
	}
	base := filepath.Join(opt.OutDir, string(preset))

	ro := Options{
		Scale:         presetScale(preset),
		IncludeGuides: presetIncludeGuides(preset),
		Labels:        true,
	}
	if opt.Scale > 0 {
		ro.Scale = opt.Scale
	}
	if opt.IncludeGuides != nil {
		ro.IncludeGuides = *opt.IncludeGuides
	}

	var written []string
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		out := filepath.Join(base, fmt.Sprintf("layout-%s.%s", b.Breakpoint, f))
		if err := WriteFile(out, f, b, ro); err != nil {
			return written, fmt.Errorf("%s: %w", f, err)
		}
		written = append(written, out)
	}
	return written, nil
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetPrint:
		return []string{FormatPDF, FormatPNG}
	default:
		return []string{FormatPNG, FormatSVG}
	}
}

func presetScale(p PresetName) float64 {
	if p == PresetPrint {
		return 2
	}
	return 0.5
}

func presetIncludeGuides(p PresetName) bool {
	return p == PresetPrint
}
