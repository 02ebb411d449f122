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
	"log/slog"

	"labdesigner/internal/domain"
	applog "labdesigner/internal/log"
)

var (
	// ErrLocked is returned when a gesture is attempted on a locked entity.
	ErrLocked = errors.New("entity is locked")
	// ErrDragDisabled is returned while a resize holds the entity.
	ErrDragDisabled = errors.New("drag disabled for entity")
	// ErrBusy is returned when another gesture is already in flight.
	ErrBusy = errors.New("another transaction is active")
	// ErrNoTransaction is returned by step and end calls without a matching begin.
	ErrNoTransaction = errors.New("no active transaction")
	// ErrNotResizable is returned when resizing a positional entity.
	ErrNotResizable = errors.New("entity is not resizable")
)

// Target is the record store gestures read from and commit into.
type Target interface {
	Get(id domain.EntityID) domain.LayoutRecord
	Update(id domain.EntityID, p domain.Patch) domain.LayoutRecord
}

// Scoper is a Target that routes to one of several record maps. A gesture pins the
// map Scope returns at Begin and commits into it, whatever the routing is by then.
type Scoper interface {
	Target
	Scope() Target
}

func pin(t Target) Target {
	if s, ok := t.(Scoper); ok {
		return s.Scope()
	}
	return t
}

type dragState struct {
	id     domain.EntityID
	target Target
	x, y   float64
}

// DragHandler runs one drag gesture at a time. Intermediate positions go to the
// live observable only; End commits exactly one x/y update.
type DragHandler struct {
	target   Target
	live     *Live
	disabled map[domain.EntityID]bool
	active   *dragState
	log      *slog.Logger
}

func NewDragHandler(target Target, live *Live) *DragHandler {
	if live == nil {
		live = NewLive()
	}
	return &DragHandler{
		target:   target,
		live:     live,
		disabled: make(map[domain.EntityID]bool),
		log:      applog.WithComponent("drag"),
	}
}

// Live returns the observable the handler publishes frames to.
func (d *DragHandler) Live() *Live { return d.live }

// SetEnabled toggles drag eligibility of id independently of its lock flag.
func (d *DragHandler) SetEnabled(id domain.EntityID, enabled bool) {
	if enabled {
		delete(d.disabled, id)
		return
	}
	d.disabled[id] = true
}

// Enabled reports whether id currently accepts a drag.
func (d *DragHandler) Enabled(id domain.EntityID) bool {
	return !d.disabled[id] && !d.target.Get(id).IsLocked()
}

// Active returns the entity being dragged.
func (d *DragHandler) Active() (domain.EntityID, bool) {
	if d.active == nil {
		return "", false
	}
	return d.active.id, true
}

// Begin starts a drag on id. A rejected begin leaves no state behind.
func (d *DragHandler) Begin(id domain.EntityID) error {
	if d.active != nil {
		return ErrBusy
	}
	target := pin(d.target)
	rec := target.Get(id)
	if rec.IsLocked() {
		return ErrLocked
	}
	if d.disabled[id] {
		return ErrDragDisabled
	}
	d.active = &dragState{id: id, target: target, x: rec.X, y: rec.Y}
	d.log.Debug("begin", slog.String("entity", string(id)))
	return nil
}

// Move reports the live offset of the dragged entity. Nothing is persisted.
func (d *DragHandler) Move(x, y float64) error {
	if d.active == nil {
		return ErrNoTransaction
	}
	d.active.x, d.active.y = x, y
	d.live.publish(Frame{ID: d.active.id, X: x, Y: y})
	return nil
}

// End releases the pointer and commits the last live offset into the record map the
// gesture began on. An entity locked while the pointer was down is left untouched.
func (d *DragHandler) End() (domain.LayoutRecord, error) {
	if d.active == nil {
		return domain.LayoutRecord{}, ErrNoTransaction
	}
	st := d.active
	d.active = nil
	if cur := st.target.Get(st.id); cur.IsLocked() {
		d.live.publish(Frame{ID: st.id, X: cur.X, Y: cur.Y, Done: true})
		d.log.Debug("commit refused", slog.String("entity", string(st.id)))
		return cur, ErrLocked
	}
	rec := st.target.Update(st.id, domain.Patch{X: domain.F(st.x), Y: domain.F(st.y)})
	d.live.publish(Frame{ID: st.id, X: st.x, Y: st.y, Done: true})
	d.log.Debug("commit", slog.String("entity", string(st.id)), slog.Float64("x", st.x), slog.Float64("y", st.y))
	return rec, nil
}

// Commit runs a complete gesture that ends at x, y.
func (d *DragHandler) Commit(id domain.EntityID, x, y float64) (domain.LayoutRecord, error) {
	if err := d.Begin(id); err != nil {
		return domain.LayoutRecord{}, err
	}
	if err := d.Move(x, y); err != nil {
		return domain.LayoutRecord{}, err
	}
	return d.End()
}
