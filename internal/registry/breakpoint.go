/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package registry

import (
	"log/slog"

	"labdesigner/internal/domain"
	applog "labdesigner/internal/log"
)

// Store holds one registry per breakpoint. Reads and writes go to the active
// registry; switching breakpoints never touches the registry left behind.
type Store struct {
	desktop   *Registry
	mobile    *Registry
	active    domain.Breakpoint
	threshold float64
	viewport  domain.Viewport
	log       *slog.Logger
}

// NewStore seeds both registries from the shipped default tables and starts on desktop.
func NewStore(threshold float64) *Store {
	return NewStoreFrom(domain.DesktopLayout(), domain.MobileLayout(), threshold)
}

// NewStoreFrom seeds the registries from the given tables.
func NewStoreFrom(desktop, mobile map[domain.EntityID]domain.LayoutRecord, threshold float64) *Store {
	if threshold <= 0 {
		threshold = domain.DefaultMobileBreakpoint
	}
	return &Store{
		desktop:   New(desktop),
		mobile:    New(mobile),
		active:    domain.Desktop,
		threshold: threshold,
		log:       applog.WithComponent("breakpoints"),
	}
}

// SetActiveBreakpoint selects which registry subsequent reads and writes target.
func (s *Store) SetActiveBreakpoint(isMobile bool) {
	next := domain.Desktop
	if isMobile {
		next = domain.Mobile
	}
	if next != s.active {
		s.log.Debug("switch breakpoint", slog.String("from", s.active.String()), slog.String("to", next.String()))
	}
	s.active = next
}

// Observe applies a viewport observation and returns the breakpoint it selects.
func (s *Store) Observe(vp domain.Viewport) domain.Breakpoint {
	s.viewport = vp
	bp := vp.Breakpoint(s.threshold)
	s.SetActiveBreakpoint(bp == domain.Mobile)
	return bp
}

// Viewport returns the last observed viewport.
func (s *Store) Viewport() domain.Viewport { return s.viewport }

// Threshold returns the mobile width threshold in logical pixels.
func (s *Store) Threshold() float64 { return s.threshold }

// Breakpoint returns the active breakpoint.
func (s *Store) Breakpoint() domain.Breakpoint { return s.active }

// Active returns the registry currently targeted by writes.
func (s *Store) Active() *Registry { return s.For(s.active) }

// For returns the registry of bp.
func (s *Store) For(bp domain.Breakpoint) *Registry {
	if bp == domain.Mobile {
		return s.mobile
	}
	return s.desktop
}

// Get reads id from the active registry.
func (s *Store) Get(id domain.EntityID) domain.LayoutRecord { return s.Active().Get(id) }

// Update merges p into id in the active registry.
func (s *Store) Update(id domain.EntityID, p domain.Patch) domain.LayoutRecord {
	return s.Active().Update(id, p)
}
