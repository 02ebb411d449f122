/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package snapshot

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"labdesigner/internal/clouds"
	"labdesigner/internal/domain"
	"labdesigner/internal/registry"
)

func fixtures() (*clouds.Factory, *registry.Registry) {
	f := clouds.NewFactory(nil, 0)
	f.Seed(domain.DesktopClouds())
	return f, registry.New(domain.DesktopLayout())
}

func TestExportShapeMatchesDocument(t *testing.T) {
	f, r := fixtures()
	data, err := Marshal(Export(f, r))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := Validate(data); err != nil {
		t.Fatalf("exported document invalid: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(raw) != 2 || raw["clouds"] == nil || raw["ui"] == nil {
		t.Fatalf("top-level keys: %v", raw)
	}
	var cl []map[string]any
	_ = json.Unmarshal(raw["clouds"], &cl)
	if len(cl) != 9 {
		t.Fatalf("expected 9 clouds, got %d", len(cl))
	}
	for _, k := range []string{"id", "src", "className", "x", "y"} {
		if _, ok := cl[0][k]; !ok {
			t.Fatalf("cloud missing key %q: %v", k, cl[0])
		}
	}
	var ui map[string]map[string]any
	_ = json.Unmarshal(raw["ui"], &ui)
	if _, ok := ui["heroTitle"]["w"]; ok {
		t.Fatal("absent w should not be serialized")
	}
	if v, ok := ui["founder3"]["locked"]; !ok || v != false {
		t.Fatalf("explicit locked=false lost: %v", ui["founder3"])
	}
	if !strings.Contains(string(data), "\n  \"clouds\"") {
		t.Fatal("expected two-space indentation")
	}
}

func TestExportIsPureRead(t *testing.T) {
	f, r := fixtures()
	doc := Export(f, r)
	doc.Clouds[0].X = 9999
	*doc.UI[domain.Pegboard].W = 1
	if c, _ := f.Get(doc.Clouds[0].ID); c.X == 9999 {
		t.Fatal("export shares cloud memory")
	}
	if *r.Get(domain.Pegboard).W != 644 {
		t.Fatal("export shares registry memory")
	}
}

func TestEmptyExportUsesEmptyCollections(t *testing.T) {
	data, err := Marshal(Export(clouds.NewFactory(nil, 0), registry.New(nil)))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "\"clouds\": []") || !strings.Contains(string(data), "\"ui\": {}") {
		t.Fatalf("unexpected empty document: %s", data)
	}
	if err := Validate(data); err != nil {
		t.Fatalf("empty document invalid: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	bad := []string{
		`{"clouds": []}`,
		`{"clouds": [{"id": "c1", "x": "left", "y": 0}], "ui": {}}`,
		`{"clouds": [], "ui": {"pegboard": {"x": 1}}}`,
		`{"clouds": [], "ui": {"pegboard": {"x": 1, "y": 2, "z": 1.5}}}`,
		`{"clouds": [], "ui": {}, "extra": true}`,
		`not json`,
	}
	for _, in := range bad {
		if err := Validate([]byte(in)); !errors.Is(err, ErrInvalidDocument) {
			t.Fatalf("Validate(%s) = %v, want ErrInvalidDocument", in, err)
		}
	}
}

func TestParseAndApplyRoundTrip(t *testing.T) {
	f, r := fixtures()
	r.ToggleLock(domain.Pegboard)
	data, _ := Marshal(Export(f, r))

	f2 := clouds.NewFactory(nil, 0)
	r2 := registry.New(map[domain.EntityID]domain.LayoutRecord{
		domain.Pegboard: {X: 1, Y: 1, Locked: domain.B(true)},
	})
	doc, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	Apply(doc, f2, r2)
	if f2.Len() != 9 {
		t.Fatalf("clouds after apply: %d", f2.Len())
	}
	got := r2.Get(domain.Pegboard)
	if got.X != 1050 || !got.IsLocked() {
		t.Fatalf("pegboard after apply: %+v", got)
	}
	again, _ := Marshal(Export(f2, r2))
	if string(again) != string(data) {
		t.Fatalf("round trip changed document:\n%s\n---\n%s", data, again)
	}
}
