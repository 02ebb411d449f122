/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package domain defines the layout data model shared by the designer runtime:
// per-entity layout records, free-floating cloud entities, the exported snapshot
// document and the viewport observation that selects a breakpoint.
package domain

// EntityID identifies an entity within one registry.
type EntityID string

// Breakpoint is one of the two viewport classes with independently persisted layouts.
type Breakpoint string

const (
	Desktop Breakpoint = "desktop"
	Mobile  Breakpoint = "mobile"
)

func (b Breakpoint) String() string { return string(b) }

// Workshop board dimensions; the scene keeps this aspect ratio at any viewport size.
const (
	BoardWidth  = 1725.0
	BoardHeight = 1131.0
)

// DefaultMobileBreakpoint is the widest viewport (logical px) still treated as mobile.
const DefaultMobileBreakpoint = 1024.0

// LayoutRecord is the stored placement of one entity. Optional fields are pointers so
// that an absent value survives a round trip through JSON unchanged.
type LayoutRecord struct {
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	W      *float64 `json:"w,omitempty"`
	H      *float64 `json:"h,omitempty"`
	Z      *int     `json:"z,omitempty"`
	Locked *bool    `json:"locked,omitempty"`
	Size   *float64 `json:"size,omitempty"`

	// Selected is UI focus only and never persisted.
	Selected bool `json:"-"`
}

// Patch is a partial LayoutRecord; nil fields are left untouched by a merge.
type Patch struct {
	X      *float64
	Y      *float64
	W      *float64
	H      *float64
	Z      *int
	Locked *bool
	Size   *float64
}

// F, I and B return pointers to literals for building records and patches.
func F(v float64) *float64 { return &v }
func I(v int) *int         { return &v }
func B(v bool) *bool       { return &v }

// IsLocked reports the lock flag, treating absent as false.
func (r LayoutRecord) IsLocked() bool { return r.Locked != nil && *r.Locked }

// ZOr returns the stored z or def when absent.
func (r LayoutRecord) ZOr(def int) int {
	if r.Z == nil {
		return def
	}
	return *r.Z
}

// DefaultPillowSize is the uniform size used when no size override is stored.
const DefaultPillowSize = 260.0

// EffectiveSize returns the size override or DefaultPillowSize.
func (r LayoutRecord) EffectiveSize() float64 {
	if r.Size == nil {
		return DefaultPillowSize
	}
	return *r.Size
}

// Clone returns a deep copy; pointer fields are not shared with r.
func (r LayoutRecord) Clone() LayoutRecord {
	c := LayoutRecord{X: r.X, Y: r.Y, Selected: r.Selected}
	if r.W != nil {
		c.W = F(*r.W)
	}
	if r.H != nil {
		c.H = F(*r.H)
	}
	if r.Z != nil {
		c.Z = I(*r.Z)
	}
	if r.Locked != nil {
		c.Locked = B(*r.Locked)
	}
	if r.Size != nil {
		c.Size = F(*r.Size)
	}
	return c
}

// Merge applies the non-nil fields of p on top of r and returns the result.
func (r LayoutRecord) Merge(p Patch) LayoutRecord {
	out := r.Clone()
	if p.X != nil {
		out.X = *p.X
	}
	if p.Y != nil {
		out.Y = *p.Y
	}
	if p.W != nil {
		out.W = F(*p.W)
	}
	if p.H != nil {
		out.H = F(*p.H)
	}
	if p.Z != nil {
		out.Z = I(*p.Z)
	}
	if p.Locked != nil {
		out.Locked = B(*p.Locked)
	}
	if p.Size != nil {
		out.Size = F(*p.Size)
	}
	return out
}

// CloudEntity is a free-floating decorative entity. Clouds live in one flat list
// shared by both breakpoints.
type CloudEntity struct {
	ID        EntityID `json:"id"`
	Src       string   `json:"src"`
	ClassName string   `json:"className"`
	LayoutRecord
}

// Clone returns a deep copy of c.
func (c CloudEntity) Clone() CloudEntity {
	return CloudEntity{ID: c.ID, Src: c.Src, ClassName: c.ClassName, LayoutRecord: c.LayoutRecord.Clone()}
}

// Document is the exported snapshot: every cloud plus the active breakpoint's registry.
type Document struct {
	Clouds []CloudEntity              `json:"clouds"`
	UI     map[EntityID]LayoutRecord `json:"ui"`
}

// Viewport is the host's viewport observation, recomputed on every resize notification.
type Viewport struct {
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	ForcedMobile bool    `json:"forcedMobile"`
}

// Breakpoint selects mobile when the width is at or below threshold or when the
// operator forces a mobile preview. A threshold <= 0 uses DefaultMobileBreakpoint.
func (v Viewport) Breakpoint(threshold float64) Breakpoint {
	if threshold <= 0 {
		threshold = DefaultMobileBreakpoint
	}
	if v.ForcedMobile || v.Width <= threshold {
		return Mobile
	}
	return Desktop
}

// Portrait reports whether the viewport is taller than wide.
func (v Viewport) Portrait() bool { return v.Height > v.Width }
