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
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// PNG rasterizes the blueprint. Output size is the board scaled by opt.Scale; labels use
// the 7x13 bitmap face so output is identical on every platform.
func PNG(w io.Writer, b Blueprint, opt Options) error {
	img := Raster(b, opt)
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// Raster draws the blueprint into a new RGBA image.
func Raster(b Blueprint, opt Options) *image.RGBA {
	opt = opt.withDefaults()
	s := opt.Scale
	pixW := int(math.Round(b.Width * s))
	pixH := int(math.Round(b.Height * s))
	img := image.NewRGBA(image.Rect(0, 0, pixW, pixH))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: toRGBA(opt.Background, 1)}, image.Point{}, draw.Src)

	thick := int(math.Max(1, math.Round(2*s)))
	if opt.IncludeGuides {
		gc := toRGBA(opt.GuideColor, 1)
		strokeRect(img, 0, 0, pixW-1, pixH-1, 1, gc)
		fillRect(img, pixW/2, 0, pixW/2, pixH-1, gc)
		fillRect(img, 0, pixH/2, pixW-1, pixH/2, gc)
	}

	px := func(v float64) int { return int(math.Round(v * s)) }
	for _, it := range b.Items {
		a := opacity(it)
		sc := toRGBA(opt.Stroke, a)
		switch it.Shape {
		case ShapeRect, ShapeSquare:
			x0, y0 := px(it.X), px(it.Y)
			strokeRect(img, x0, y0, x0+px(it.W)-1, y0+px(it.H)-1, thick, sc)
		case ShapeCloud:
			dashedEllipse(img, (it.X+it.W/2)*s, (it.Y+it.H/2)*s, it.W/2*s, it.H/2*s, thick, toRGBA(opt.CloudStroke, a))
		default:
			cx, cy, arm := px(it.X), px(it.Y), px(MarkerArm)
			fillRect(img, cx-arm, cy-thick/2, cx+arm, cy+(thick-1)/2, sc)
			fillRect(img, cx-thick/2, cy-arm, cx+(thick-1)/2, cy+arm, sc)
		}
		if opt.Labels {
			d := &font.Drawer{
				Dst:  img,
				Src:  image.NewUniform(sc),
				Face: basicfont.Face7x13,
				Dot:  fixed.P(px(it.X)+4, px(it.Y)-4),
			}
			d.DrawString(string(it.ID))
		}
	}
	return img
}

func toRGBA(c Color, alpha float64) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(math.Round(float64(c.A) * alpha))}
}

// fillRect blends col over the inclusive rectangle.
func fillRect(img *image.RGBA, x0, y0, x1, y1 int, col color.NRGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	r := image.Rect(x0, y0, x1+1, y1+1).Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(img, r, &image.Uniform{C: col}, image.Point{}, draw.Over)
}

// strokeRect draws an axis-aligned rectangle border of the given thickness inside the bounds.
func strokeRect(img *image.RGBA, x0, y0, x1, y1, t int, col color.NRGBA) {
	if x1-x0 < 2*t || y1-y0 < 2*t {
		fillRect(img, x0, y0, x1, y1, col)
		return
	}
	fillRect(img, x0, y0, x1, y0+t-1, col)
	fillRect(img, x0, y1-t+1, x1, y1, col)
	fillRect(img, x0, y0+t, x0+t-1, y1-t, col)
	fillRect(img, x1-t+1, y0+t, x1, y1-t, col)
}

// dashedEllipse plots a 6 on, 4 off dashed outline.
func dashedEllipse(img *image.RGBA, cx, cy, rx, ry float64, t int, col color.NRGBA) {
	if rx <= 0 || ry <= 0 {
		return
	}
	const on, period = 6.0, 10.0
	steps := int(math.Ceil(2 * math.Pi * math.Max(rx, ry)))
	var walked float64
	px, py := cx+rx, cy
	for i := 1; i <= steps; i++ {
		th := 2 * math.Pi * float64(i) / float64(steps)
		x, y := cx+rx*math.Cos(th), cy+ry*math.Sin(th)
		walked += math.Hypot(x-px, y-py)
		px, py = x, y
		if math.Mod(walked, period) >= on {
			continue
		}
		ix, iy := int(math.Round(x)), int(math.Round(y))
		fillRect(img, ix-t/2, iy-t/2, ix+(t-1)/2, iy+(t-1)/2, col)
	}
}
