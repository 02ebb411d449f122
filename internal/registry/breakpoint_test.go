/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package registry

import (
	"testing"

	"labdesigner/internal/domain"
)

func TestStoreObserveSelectsBreakpoint(t *testing.T) {
	s := NewStore(0)
	cases := []struct {
		vp   domain.Viewport
		want domain.Breakpoint
	}{
		{domain.Viewport{Width: 1440, Height: 900}, domain.Desktop},
		{domain.Viewport{Width: 1024, Height: 768}, domain.Mobile},
		{domain.Viewport{Width: 1025, Height: 768}, domain.Desktop},
		{domain.Viewport{Width: 1920, Height: 1080, ForcedMobile: true}, domain.Mobile},
		{domain.Viewport{Width: 390, Height: 844}, domain.Mobile},
	}
	for _, c := range cases {
		if got := s.Observe(c.vp); got != c.want {
			t.Fatalf("Observe(%+v) = %s, want %s", c.vp, got, c.want)
		}
		if s.Breakpoint() != c.want {
			t.Fatalf("active breakpoint %s, want %s", s.Breakpoint(), c.want)
		}
	}
}

func TestStoreWritesAreIsolated(t *testing.T) {
	s := NewStore(0)
	desktopBefore := s.For(domain.Desktop).Snapshot()

	s.SetActiveBreakpoint(true)
	s.Update(domain.HeroTitle, domain.Patch{X: domain.F(777), Y: domain.F(-1)})
	s.Active().BringToFront(domain.Pegboard)
	s.Active().ToggleLock(domain.LabNote)

	desktopAfter := s.For(domain.Desktop).Snapshot()
	if len(desktopAfter) != len(desktopBefore) {
		t.Fatalf("desktop entry count changed: %d -> %d", len(desktopBefore), len(desktopAfter))
	}
	for id, before := range desktopBefore {
		after := desktopAfter[id]
		if before.X != after.X || before.Y != after.Y || before.ZOr(-1) != after.ZOr(-1) || before.IsLocked() != after.IsLocked() {
			t.Fatalf("desktop %s changed: %+v -> %+v", id, before, after)
		}
	}
	if got := s.Get(domain.HeroTitle); got.X != 777 {
		t.Fatalf("mobile write lost: %+v", got)
	}

	s.SetActiveBreakpoint(false)
	if got := s.Get(domain.HeroTitle); got.X != 12 || got.Y != -126 {
		t.Fatalf("desktop heroTitle = %+v", got)
	}
}

func TestStoreCustomThreshold(t *testing.T) {
	s := NewStoreFrom(nil, nil, 600)
	if bp := s.Observe(domain.Viewport{Width: 800, Height: 600}); bp != domain.Desktop {
		t.Fatalf("expected desktop at 800 with threshold 600, got %s", bp)
	}
	if s.Threshold() != 600 {
		t.Fatalf("threshold = %v", s.Threshold())
	}
	if s.Viewport().Width != 800 {
		t.Fatalf("viewport not recorded: %+v", s.Viewport())
	}
}
