/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"testing"

	"labdesigner/internal/domain"
)

func TestBuild_DesktopDefaults(t *testing.T) {
	b := Build(domain.Desktop, domain.DesktopLayout(), domain.DesktopClouds())
	if b.Width != BoardWidth || b.Height != BoardHeight {
		t.Fatalf("board = %gx%g", b.Width, b.Height)
	}
	byID := map[domain.EntityID]Item{}
	clouds := 0
	for _, it := range b.Items {
		byID[it.ID] = it
		if it.Shape == ShapeCloud {
			clouds++
		}
	}
	if clouds != len(domain.DesktopClouds()) {
		t.Fatalf("clouds = %d", clouds)
	}
	bg := byID[domain.WorkshopBg]
	if bg.Shape != ShapeRect || bg.X != 0 || bg.Y != 0 || bg.W != 1725 || bg.H != 1131 {
		t.Fatalf("background item = %+v", bg)
	}
	if byID[domain.HeroTitle].Shape != ShapeMarker {
		t.Fatalf("hero title should be a marker: %+v", byID[domain.HeroTitle])
	}
	for i := 1; i < len(b.Items); i++ {
		if b.Items[i-1].Z > b.Items[i].Z {
			t.Fatalf("items not in paint order at %d", i)
		}
	}
}

func TestBuild_LockedAndSized(t *testing.T) {
	ui := map[domain.EntityID]domain.LayoutRecord{
		domain.Pillow1:   {X: 10, Y: 20, Size: domain.F(120)},
		domain.Pegboard:  {X: 5, Y: 5, Locked: domain.B(true)},
		domain.HeroTitle: {X: 1, Y: 1},
	}
	b := Build(domain.Mobile, ui, nil)
	byID := map[domain.EntityID]Item{}
	for _, it := range b.Items {
		byID[it.ID] = it
	}
	if p := byID[domain.Pillow1]; p.Shape != ShapeSquare || p.W != 120 || p.H != 120 {
		t.Fatalf("pillow = %+v", p)
	}
	// absent size falls back to the resizable default
	if p := byID[domain.Pegboard]; !p.Locked || p.W != 400 || p.H != 300 {
		t.Fatalf("pegboard = %+v", p)
	}
	if opacity(byID[domain.Pegboard]) != LockedOpacity || opacity(byID[domain.HeroTitle]) != 1 {
		t.Fatalf("opacity mismatch")
	}
}
