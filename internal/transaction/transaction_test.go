/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package transaction

import (
	"errors"
	"testing"

	"labdesigner/internal/domain"
	"labdesigner/internal/registry"
)

// countingTarget wraps a registry and counts commits.
type countingTarget struct {
	*registry.Registry
	updates []domain.Patch
}

func (c *countingTarget) Update(id domain.EntityID, p domain.Patch) domain.LayoutRecord {
	c.updates = append(c.updates, p)
	return c.Registry.Update(id, p)
}

func newTarget() *countingTarget {
	return &countingTarget{Registry: registry.New(domain.DesktopLayout())}
}

func TestDragCommitsOnceOnRelease(t *testing.T) {
	tg := newTarget()
	live := NewLive()
	var frames []Frame
	cancel := live.Subscribe(func(f Frame) { frames = append(frames, f) })
	defer cancel()

	d := NewDragHandler(tg, live)
	before := tg.Get(domain.LabNote)
	if err := d.Begin(domain.LabNote); err != nil {
		t.Fatalf("begin: %v", err)
	}
	for i := 1; i <= 5; i++ {
		if err := d.Move(float64(i*10), float64(-i)); err != nil {
			t.Fatalf("move: %v", err)
		}
		if len(tg.updates) != 0 {
			t.Fatalf("intermediate frame persisted after %d moves", i)
		}
	}
	if f, ok := live.Current(domain.LabNote); !ok || f.X != 50 {
		t.Fatalf("live offset = %+v ok=%v", f, ok)
	}
	rec, err := d.End()
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if len(tg.updates) != 1 {
		t.Fatalf("expected exactly 1 commit, got %d", len(tg.updates))
	}
	p := tg.updates[0]
	if p.W != nil || p.H != nil || p.Z != nil || p.Locked != nil {
		t.Fatalf("drag commit touched more than x/y: %+v", p)
	}
	if rec.X != 50 || rec.Y != -5 || *rec.W != *before.W || *rec.H != *before.H {
		t.Fatalf("committed record = %+v", rec)
	}
	if _, ok := live.Current(domain.LabNote); ok {
		t.Fatal("live offset should be cleared after release")
	}
	if len(frames) != 6 || !frames[5].Done {
		t.Fatalf("expected 5 move frames and a done frame, got %+v", frames)
	}
}

func TestDragOnLockedEntityDoesNotStart(t *testing.T) {
	tg := newTarget()
	tg.ToggleLock(domain.Pegboard)
	tg.updates = nil
	d := NewDragHandler(tg, nil)
	if err := d.Begin(domain.Pegboard); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if _, ok := d.Active(); ok {
		t.Fatal("rejected begin left an active transaction")
	}
	if _, err := d.End(); !errors.Is(err, ErrNoTransaction) {
		t.Fatalf("expected ErrNoTransaction, got %v", err)
	}
	if len(tg.updates) != 0 {
		t.Fatalf("locked drag committed %d updates", len(tg.updates))
	}
}

func TestDragDoesNotMoveOthers(t *testing.T) {
	tg := newTarget()
	before := tg.Snapshot()
	d := NewDragHandler(tg, nil)
	if _, err := d.Commit(domain.HeroTitle, 1, 2); err != nil {
		t.Fatalf("commit: %v", err)
	}
	after := tg.Snapshot()
	for id, rec := range before {
		if id == domain.HeroTitle {
			continue
		}
		if after[id].X != rec.X || after[id].Y != rec.Y {
			t.Fatalf("%s moved: %+v -> %+v", id, rec, after[id])
		}
	}
}

func TestDragWithoutMoveCommitsStartPosition(t *testing.T) {
	tg := newTarget()
	d := NewDragHandler(tg, nil)
	_ = d.Begin(domain.SkyTitle)
	rec, err := d.End()
	if err != nil || rec.X != -25 || rec.Y != 228 {
		t.Fatalf("rec=%+v err=%v", rec, err)
	}
}

func TestSecondDragIsBusy(t *testing.T) {
	d := NewDragHandler(newTarget(), nil)
	_ = d.Begin(domain.HeroBtn)
	if err := d.Begin(domain.HeroPara); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
}

func TestResizeCommitsLiveAndKeepsPosition(t *testing.T) {
	tg := newTarget()
	d := NewDragHandler(tg, nil)
	r := NewResizeHandler(tg, d, 0, 0)
	before := tg.Get(domain.Pegboard)

	if err := r.Begin(domain.Pegboard); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if d.Enabled(domain.Pegboard) {
		t.Fatal("drag should be suspended during resize")
	}
	if err := d.Begin(domain.Pegboard); !errors.Is(err, ErrDragDisabled) {
		t.Fatalf("expected ErrDragDisabled, got %v", err)
	}
	if _, err := r.Step(650, 880); err != nil {
		t.Fatalf("step: %v", err)
	}
	rec, _ := r.Step(700, 900)
	if len(tg.updates) != 2 {
		t.Fatalf("expected a commit per step, got %d", len(tg.updates))
	}
	for _, p := range tg.updates {
		if p.X != nil || p.Y != nil || p.Z != nil || p.Locked != nil {
			t.Fatalf("resize commit touched more than w/h: %+v", p)
		}
	}
	if *rec.W != 700 || *rec.H != 900 || rec.X != before.X || rec.Y != before.Y {
		t.Fatalf("after resize: %+v", rec)
	}
	if err := r.End(); err != nil {
		t.Fatalf("end: %v", err)
	}
	if !d.Enabled(domain.Pegboard) {
		t.Fatal("drag should be re-enabled after resize")
	}
}

func TestResizeEnforcesFloor(t *testing.T) {
	tg := newTarget()
	r := NewResizeHandler(tg, nil, 0, 0)
	rec, err := r.Commit(domain.GearTag, 10, -3)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if *rec.W != MinWidth || *rec.H != MinHeight {
		t.Fatalf("floor not enforced: w=%v h=%v", *rec.W, *rec.H)
	}
}

func TestResizeRejectsPositionalAndLocked(t *testing.T) {
	tg := newTarget()
	r := NewResizeHandler(tg, nil, 0, 0)
	if _, err := r.Commit(domain.HeroTitle, 500, 500); !errors.Is(err, ErrNotResizable) {
		t.Fatalf("expected ErrNotResizable, got %v", err)
	}
	tg.ToggleLock(domain.WorkshopBg)
	if _, err := r.Commit(domain.WorkshopBg, 500, 500); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if _, ok := r.Active(); ok {
		t.Fatal("rejected resize left an active transaction")
	}
}

func TestResizeWhileDraggingSameEntity(t *testing.T) {
	tg := newTarget()
	d := NewDragHandler(tg, nil)
	r := NewResizeHandler(tg, d, 0, 0)
	_ = d.Begin(domain.LaptopVideo)
	if err := r.Begin(domain.LaptopVideo); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
}

// switchTarget routes to one of two registries, like the breakpoint store.
type switchTarget struct {
	maps   [2]*registry.Registry
	active int
}

func (s *switchTarget) Get(id domain.EntityID) domain.LayoutRecord { return s.maps[s.active].Get(id) }
func (s *switchTarget) Update(id domain.EntityID, p domain.Patch) domain.LayoutRecord {
	return s.maps[s.active].Update(id, p)
}
func (s *switchTarget) Scope() Target { return s.maps[s.active] }

func TestGesturesCommitIntoPinnedScope(t *testing.T) {
	tg := &switchTarget{maps: [2]*registry.Registry{registry.New(domain.DesktopLayout()), registry.New(domain.MobileLayout())}}
	other := tg.maps[1].Get(domain.Pegboard)

	d := NewDragHandler(tg, nil)
	if err := d.Begin(domain.Pegboard); err != nil {
		t.Fatal(err)
	}
	tg.active = 1
	_ = d.Move(3, 4)
	if _, err := d.End(); err != nil {
		t.Fatal(err)
	}
	if got := tg.maps[0].Get(domain.Pegboard); got.X != 3 || got.Y != 4 {
		t.Fatalf("pinned map not updated: %+v", got)
	}
	if got := tg.maps[1].Get(domain.Pegboard); got.X != other.X || got.Y != other.Y {
		t.Fatalf("other map changed: %+v", got)
	}

	tg.active = 0
	r := NewResizeHandler(tg, d, 0, 0)
	if err := r.Begin(domain.Pegboard); err != nil {
		t.Fatal(err)
	}
	tg.active = 1
	if _, err := r.Step(300, 200); err != nil {
		t.Fatal(err)
	}
	_ = r.End()
	if got := tg.maps[1].Get(domain.Pegboard); *got.W != *other.W {
		t.Fatalf("other map resized: %+v", got)
	}
	if got := tg.maps[0].Get(domain.Pegboard); *got.W != 300 || *got.H != 200 {
		t.Fatalf("pinned map size = %vx%v", *got.W, *got.H)
	}
}

func TestResizeStepRefusedAfterLock(t *testing.T) {
	tg := newTarget()
	r := NewResizeHandler(tg, nil, 0, 0)
	if err := r.Begin(domain.Pegboard); err != nil {
		t.Fatal(err)
	}
	tg.Registry.Update(domain.Pegboard, domain.Patch{Locked: domain.B(true)})
	before := tg.Get(domain.Pegboard)
	if _, err := r.Step(300, 200); !errors.Is(err, ErrLocked) {
		t.Fatalf("step on locked entity: %v", err)
	}
	if got := tg.Get(domain.Pegboard); *got.W != *before.W {
		t.Fatalf("locked entity resized: %+v", got)
	}
	if err := r.End(); err != nil {
		t.Fatal(err)
	}
}

func TestLiveHoldDefersDelivery(t *testing.T) {
	live := NewLive()
	var got []Frame
	cancel := live.Subscribe(func(f Frame) { got = append(got, f) })
	defer cancel()

	release := live.Hold()
	inner := live.Hold()
	live.publish(Frame{ID: domain.LabNote, X: 1})
	live.publish(Frame{ID: domain.LabNote, X: 2})
	if f, ok := live.Current(domain.LabNote); !ok || f.X != 2 {
		t.Fatalf("current while held = %+v %v", f, ok)
	}
	inner()
	if len(got) != 0 {
		t.Fatalf("frames delivered under an outer hold: %d", len(got))
	}
	release()
	release()
	if len(got) != 2 || got[0].X != 1 || got[1].X != 2 {
		t.Fatalf("delivered = %+v", got)
	}
	live.publish(Frame{ID: domain.LabNote, Done: true})
	if len(got) != 3 {
		t.Fatalf("unheld publish not delivered: %d", len(got))
	}
}
