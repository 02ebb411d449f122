/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders the active registry as a wireframe blueprint of the workshop board.
package export

import (
	"fmt"
	"sort"

	"labdesigner/internal/domain"
)

// Board dimensions of the workshop scene in layout units.
const (
	BoardWidth  = 1725.0
	BoardHeight = 1131.0
)

// Marker geometry for entities that carry no size.
const (
	MarkerArm   = 12.0
	CloudWidth  = 160.0
	CloudHeight = 90.0
)

// LockedOpacity is applied to locked entities.
const LockedOpacity = 0.6

// Shape selects how an item is drawn.
type Shape int

const (
	// ShapeRect is a resizable entity drawn as its box.
	ShapeRect Shape = iota
	// ShapeMarker is a positional entity drawn as a crosshair.
	ShapeMarker
	// ShapeSquare is a positional entity with a uniform size override.
	ShapeSquare
	// ShapeCloud is a dashed cloud marker.
	ShapeCloud
)

// Item is one drawable entity in board coordinates.
type Item struct {
	ID     domain.EntityID
	Shape  Shape
	X, Y   float64
	W, H   float64
	Z      int
	Locked bool
}

// Blueprint is the flattened scene handed to the renderers. Items are in paint order.
type Blueprint struct {
	Breakpoint domain.Breakpoint
	Width      float64
	Height     float64
	Items      []Item
}

// Build flattens a registry snapshot and the cloud list. The board origin follows the
// workshop background when it is present, so the background fills the canvas.
func Build(bp domain.Breakpoint, ui map[domain.EntityID]domain.LayoutRecord, clouds []domain.CloudEntity) Blueprint {
	var ox, oy float64
	if bg, ok := ui[domain.WorkshopBg]; ok {
		ox, oy = bg.X, bg.Y
	}
	b := Blueprint{Breakpoint: bp, Width: BoardWidth, Height: BoardHeight}
	for id, r := range ui {
		it := Item{ID: id, X: r.X - ox, Y: r.Y - oy, Z: r.ZOr(domain.LiveZ), Locked: r.IsLocked()}
		switch {
		case domain.KindOf(id) == domain.Resizable:
			it.Shape = ShapeRect
			def := domain.DefaultRecord(id)
			it.W, it.H = deref(r.W, *def.W), deref(r.H, *def.H)
		case r.Size != nil:
			it.Shape = ShapeSquare
			it.W, it.H = *r.Size, *r.Size
		default:
			it.Shape = ShapeMarker
		}
		b.Items = append(b.Items, it)
	}
	// clouds sit in the sky layer below the live stacking default
	for _, c := range clouds {
		b.Items = append(b.Items, Item{
			ID: c.ID, Shape: ShapeCloud,
			X: c.X - ox, Y: c.Y - oy, W: CloudWidth, H: CloudHeight,
			Z: c.ZOr(0), Locked: c.IsLocked(),
		})
	}
	sort.SliceStable(b.Items, func(i, j int) bool {
		if b.Items[i].Z != b.Items[j].Z {
			return b.Items[i].Z < b.Items[j].Z
		}
		return b.Items[i].ID < b.Items[j].ID
	})
	return b
}

// FromDocument builds a blueprint from an exported document.
func FromDocument(bp domain.Breakpoint, doc domain.Document) Blueprint {
	return Build(bp, doc.UI, doc.Clouds)
}

func deref(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// Color is an 8-bit RGBA color.
type Color struct{ R, G, B, A uint8 }

// Options controls every renderer. Zero values select the defaults.
type Options struct {
	// Scale maps board units to output pixels for raster and SVG sizes.
	Scale         float64
	IncludeGuides bool
	Labels        bool
	Stroke        Color
	CloudStroke   Color
	GuideColor    Color
	Background    Color
}

func (o Options) withDefaults() Options {
	if o.Scale <= 0 {
		o.Scale = 1
	}
	if o.Stroke == (Color{}) {
		o.Stroke = Color{R: 20, G: 40, B: 90, A: 255}
	}
	if o.CloudStroke == (Color{}) {
		o.CloudStroke = Color{R: 90, G: 140, B: 200, A: 255}
	}
	if o.GuideColor == (Color{}) {
		o.GuideColor = Color{R: 255, G: 0, B: 0, A: 255}
	}
	if o.Background == (Color{}) {
		o.Background = Color{R: 255, G: 255, B: 255, A: 255}
	}
	return o
}

func opacity(it Item) float64 {
	if it.Locked {
		return LockedOpacity
	}
	return 1
}

func title(b Blueprint) string {
	return fmt.Sprintf("Lab layout blueprint (%s)", b.Breakpoint)
}
