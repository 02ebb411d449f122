/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestCloudEntityJSONIsFlat(t *testing.T) {
	c := CloudEntity{ID: "c1", Src: "/cloud_new_1.png", ClassName: "c1", LayoutRecord: LayoutRecord{X: 1.5, Y: -2, Selected: true}}
	b, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got := string(b)
	want := `{"id":"c1","src":"/cloud_new_1.png","className":"c1","x":1.5,"y":-2}`
	if got != want {
		t.Fatalf("cloud json\n got %s\nwant %s", got, want)
	}
}

func TestLayoutRecordKeepsExplicitFalseLock(t *testing.T) {
	b, err := json.Marshal(LayoutRecord{X: 1, Y: 2, Locked: B(false)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"locked":false`) {
		t.Fatalf("explicit locked=false lost: %s", b)
	}
	b, _ = json.Marshal(LayoutRecord{X: 1, Y: 2})
	if strings.Contains(string(b), "locked") || strings.Contains(string(b), `"w"`) {
		t.Fatalf("absent fields must be omitted: %s", b)
	}
}

func TestMergePreservesUntouchedFields(t *testing.T) {
	r := LayoutRecord{X: 1, Y: 2, W: F(10), H: F(20), Z: I(3), Locked: B(true), Size: F(90)}
	got := r.Merge(Patch{X: F(5)})
	if got.X != 5 || got.Y != 2 || *got.W != 10 || *got.H != 20 || *got.Z != 3 || !got.IsLocked() || *got.Size != 90 {
		t.Fatalf("unexpected merge result: %+v", got)
	}
	*got.W = 99
	if *r.W != 10 {
		t.Fatalf("merge result shares pointers with source")
	}
}

func TestViewportBreakpoint(t *testing.T) {
	cases := []struct {
		vp   Viewport
		want Breakpoint
	}{
		{Viewport{Width: 1024, Height: 768}, Mobile},
		{Viewport{Width: 1025, Height: 768}, Desktop},
		{Viewport{Width: 1920, Height: 1080, ForcedMobile: true}, Mobile},
		{Viewport{Width: 390, Height: 844}, Mobile},
	}
	for _, tc := range cases {
		if got := tc.vp.Breakpoint(0); got != tc.want {
			t.Fatalf("Breakpoint(%+v) = %s, want %s", tc.vp, got, tc.want)
		}
	}
	if !(Viewport{Width: 390, Height: 844}).Portrait() {
		t.Fatalf("expected portrait")
	}
}

func TestDefaultRecordByKind(t *testing.T) {
	r := DefaultRecord("somethingNew")
	if r.X != 0 || r.Y != 0 || r.W != nil || r.H != nil {
		t.Fatalf("positional default wrong: %+v", r)
	}
	r = DefaultRecord(Pegboard)
	if r.W == nil || *r.W != 400 || r.H == nil || *r.H != 300 {
		t.Fatalf("resizable default wrong: %+v", r)
	}
}

func TestSeedTablesAreIndependentCopies(t *testing.T) {
	a := DesktopLayout()
	a[Pegboard] = LayoutRecord{X: -1}
	if DesktopLayout()[Pegboard].X != 1050 {
		t.Fatalf("seed table mutated through returned map")
	}
	if len(DesktopLayout()) != len(MobileLayout()) {
		t.Fatalf("desktop and mobile tables should cover the same ids")
	}
	if !MobileLayout()[WorkshopBg].IsLocked() || DesktopLayout()[WorkshopBg].IsLocked() {
		t.Fatalf("workshopBg lock seeds differ from expectation")
	}
	if n := len(DesktopClouds()); n != 9 {
		t.Fatalf("expected 9 seeded clouds, got %d", n)
	}
}

func TestZOrDefault(t *testing.T) {
	if got := (LayoutRecord{}).ZOrDefault(true); got != DesignZ {
		t.Fatalf("design default z = %d", got)
	}
	if got := (LayoutRecord{}).ZOrDefault(false); got != LiveZ {
		t.Fatalf("live default z = %d", got)
	}
	if got := (LayoutRecord{Z: I(7)}).ZOrDefault(true); got != 7 {
		t.Fatalf("stored z ignored: %d", got)
	}
}
