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
	"io"

	"github.com/jung-kurt/gofpdf"
)

// PDF writes the blueprint as a single-page PDF. Units are board units mapped 1:1 to points;
// opt.Scale is ignored so the document keeps vector precision.
func PDF(w io.Writer, b Blueprint, opt Options) error {
	opt = opt.withDefaults()
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: b.Width, Ht: b.Height},
		// orientation follows the size
		OrientationStr: "",
	})
	pdf.SetTitle(title(b), false)
	pdf.SetAuthor("Lab Designer", false)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	// Built-in Helvetica keeps text vector without embedding
	pdf.SetFont("Helvetica", "", 10)
	pdf.AddPageFormat("", gofpdf.SizeType{Wd: b.Width, Ht: b.Height})

	setFillColor(pdf, opt.Background)
	pdf.Rect(0, 0, b.Width, b.Height, "F")

	if opt.IncludeGuides {
		setDrawColor(pdf, opt.GuideColor)
		pdf.SetLineWidth(0.5)
		pdf.Rect(0, 0, b.Width, b.Height, "D")
		pdf.Line(b.Width/2, 0, b.Width/2, b.Height)
		pdf.Line(0, b.Height/2, b.Width, b.Height/2)
	}

	pdf.SetLineWidth(2)
	for _, it := range b.Items {
		pdf.SetAlpha(opacity(it), "Normal")
		switch it.Shape {
		case ShapeRect, ShapeSquare:
			setDrawColor(pdf, opt.Stroke)
			pdf.Rect(it.X, it.Y, it.W, it.H, "D")
		case ShapeCloud:
			setDrawColor(pdf, opt.CloudStroke)
			pdf.SetDashPattern([]float64{6, 4}, 0)
			pdf.Ellipse(it.X+it.W/2, it.Y+it.H/2, it.W/2, it.H/2, 0, "D")
			pdf.SetDashPattern([]float64{}, 0)
		default:
			setDrawColor(pdf, opt.Stroke)
			pdf.Line(it.X-MarkerArm, it.Y, it.X+MarkerArm, it.Y)
			pdf.Line(it.X, it.Y-MarkerArm, it.X, it.Y+MarkerArm)
		}
		if opt.Labels {
			pdf.SetTextColor(int(opt.Stroke.R), int(opt.Stroke.G), int(opt.Stroke.B))
			pdf.Text(it.X+4, it.Y-4, string(it.ID))
		}
	}
	pdf.SetAlpha(1, "Normal")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func setDrawColor(pdf *gofpdf.Fpdf, c Color) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c Color) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}
