/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package clouds

import (
	"errors"
	"math"
	"strings"
	"sync"
	"testing"

	"labdesigner/internal/domain"
)

func seeded(t *testing.T) *Factory {
	t.Helper()
	f := NewFactory(NewCounter(0), 0)
	if !f.Seed(domain.DesktopClouds()) {
		t.Fatal("first seed should load")
	}
	return f
}

func TestDuplicateOffsetsCopy(t *testing.T) {
	f := seeded(t)
	if f.Len() != 9 {
		t.Fatalf("expected 9 seeded clouds, got %d", f.Len())
	}
	src, _ := f.Get("c1")
	cp, err := f.DuplicateID("c1")
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	if cp.ID == src.ID {
		t.Fatal("copy reused source id")
	}
	if math.Abs(cp.X-155.33) > 0.01 || math.Abs(cp.Y-27.33) > 0.01 {
		t.Fatalf("copy position = (%v,%v)", cp.X, cp.Y)
	}
	if cp.Src != src.Src || cp.ClassName != src.ClassName {
		t.Fatalf("copy lost fields: %+v", cp)
	}
	if !strings.HasPrefix(string(cp.ID), "c1_copy_") {
		t.Fatalf("unexpected id %q", cp.ID)
	}
	if f.Len() != 10 {
		t.Fatalf("expected 10 clouds, got %d", f.Len())
	}
	orig, _ := f.Get("c1")
	if orig.X != src.X || orig.Y != src.Y {
		t.Fatalf("source changed: %+v", orig)
	}
	all := f.All()
	if all[len(all)-1].ID != cp.ID {
		t.Fatal("copy was not appended")
	}
}

func TestDeletePreservesOrder(t *testing.T) {
	f := seeded(t)
	f.DuplicateID("c1")
	before := f.All()
	if !f.Delete("c1") {
		t.Fatal("expected delete to remove c1")
	}
	after := f.All()
	if len(after) != len(before)-1 {
		t.Fatalf("len %d -> %d", len(before), len(after))
	}
	if _, ok := f.Get("c1"); ok {
		t.Fatal("c1 still present")
	}
	j := 0
	for _, c := range before {
		if c.ID == "c1" {
			continue
		}
		if after[j].ID != c.ID {
			t.Fatalf("order changed at %d: %s != %s", j, after[j].ID, c.ID)
		}
		j++
	}
	if f.Delete("nope") {
		t.Fatal("deleting an absent id reported removal")
	}
	if f.Len() != len(after) {
		t.Fatal("absent delete changed length")
	}
}

func TestDuplicateMinimalSource(t *testing.T) {
	f := NewFactory(nil, 0)
	cp := f.Duplicate(domain.CloudEntity{ID: "x", ClassName: "c9"})
	if cp.X != 40 || cp.Y != 40 || cp.Src != "" || cp.W != nil || cp.Z != nil {
		t.Fatalf("copy of minimal source = %+v", cp)
	}
}

func TestSeedOnlyOnce(t *testing.T) {
	f := seeded(t)
	if f.Seed(nil) {
		t.Fatal("second seed should be ignored")
	}
	if f.Len() != 9 {
		t.Fatalf("len=%d", f.Len())
	}
}

func TestMove(t *testing.T) {
	f := seeded(t)
	c, err := f.Move("c3", 1, 2)
	if err != nil || c.X != 1 || c.Y != 2 {
		t.Fatalf("move: %+v %v", c, err)
	}
	if _, err := f.Move("ghost", 0, 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	f.Replace([]domain.CloudEntity{{ID: "l", LayoutRecord: domain.LayoutRecord{X: 3, Locked: domain.B(true)}}})
	if c, err := f.Move("l", 9, 9); !errors.Is(err, ErrLocked) || c.X != 3 {
		t.Fatalf("locked move: %+v %v", c, err)
	}
}

func TestGeneratorsNeverCollide(t *testing.T) {
	for _, gen := range []IDGenerator{NewCounter(0), UUID{}} {
		seen := make(map[domain.EntityID]bool)
		var mu sync.Mutex
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 250; j++ {
					id := gen.NewID("c4")
					mu.Lock()
					if seen[id] {
						mu.Unlock()
						t.Errorf("duplicate id %s", id)
						return
					}
					seen[id] = true
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
	}
}

func TestCounterFormat(t *testing.T) {
	c := NewCounter(41)
	if id := c.NewID("c6"); id != "c6_copy_42" {
		t.Fatalf("id = %s", id)
	}
	if NewGenerator("uuid") == nil {
		t.Fatal("nil generator")
	}
	if _, ok := NewGenerator("bogus").(*Counter); !ok {
		t.Fatal("unknown strategy should use the counter")
	}
}

func TestFreshIDSkipsExisting(t *testing.T) {
	f := NewFactory(NewCounter(0), 0)
	f.Replace([]domain.CloudEntity{{ID: "c1_copy_1", ClassName: "c1"}})
	cp := f.Duplicate(domain.CloudEntity{ID: "c1_copy_1", ClassName: "c1"})
	if cp.ID != "c1_copy_2" {
		t.Fatalf("expected c1_copy_2, got %s", cp.ID)
	}
}
