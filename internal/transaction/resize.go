/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package transaction

import (
	"log/slog"
	"math"

	"labdesigner/internal/domain"
	applog "labdesigner/internal/log"
)

// Documented minimum size of a resizable entity.
const (
	MinWidth  = 100.0
	MinHeight = 50.0
)

// ResizeHandler runs one resize gesture at a time. Every step is committed and
// dragging of the entity is suspended until End.
type ResizeHandler struct {
	target     Target
	drag       *DragHandler
	minW, minH float64
	active     domain.EntityID
	scoped     Target
	running    bool
	log        *slog.Logger
}

// NewResizeHandler returns a handler enforcing the given floor; zero values use
// MinWidth and MinHeight.
func NewResizeHandler(target Target, drag *DragHandler, minW, minH float64) *ResizeHandler {
	if minW <= 0 {
		minW = MinWidth
	}
	if minH <= 0 {
		minH = MinHeight
	}
	return &ResizeHandler{target: target, drag: drag, minW: minW, minH: minH, log: applog.WithComponent("resize")}
}

// Active returns the entity being resized.
func (r *ResizeHandler) Active() (domain.EntityID, bool) { return r.active, r.running }

// Begin starts a resize on id and suspends its draggability.
func (r *ResizeHandler) Begin(id domain.EntityID) error {
	if r.running {
		return ErrBusy
	}
	if domain.KindOf(id) != domain.Resizable {
		return ErrNotResizable
	}
	target := pin(r.target)
	if target.Get(id).IsLocked() {
		return ErrLocked
	}
	if r.drag != nil {
		if cur, ok := r.drag.Active(); ok && cur == id {
			return ErrBusy
		}
		r.drag.SetEnabled(id, false)
	}
	r.active, r.scoped, r.running = id, target, true
	r.log.Debug("begin", slog.String("entity", string(id)))
	return nil
}

// Step commits a new size, clamped to the floor, into the record map the gesture
// began on and returns the stored record. Steps on an entity locked mid-gesture
// return ErrLocked and change nothing.
func (r *ResizeHandler) Step(w, h float64) (domain.LayoutRecord, error) {
	if !r.running {
		return domain.LayoutRecord{}, ErrNoTransaction
	}
	if cur := r.scoped.Get(r.active); cur.IsLocked() {
		return cur, ErrLocked
	}
	w = math.Max(r.minW, w)
	h = math.Max(r.minH, h)
	return r.scoped.Update(r.active, domain.Patch{W: domain.F(w), H: domain.F(h)}), nil
}

// End finishes the gesture and re-enables dragging.
func (r *ResizeHandler) End() error {
	if !r.running {
		return ErrNoTransaction
	}
	if r.drag != nil {
		r.drag.SetEnabled(r.active, true)
	}
	r.log.Debug("end", slog.String("entity", string(r.active)))
	r.active, r.scoped, r.running = "", nil, false
	return nil
}

// Commit runs a complete single-step resize to w, h.
func (r *ResizeHandler) Commit(id domain.EntityID, w, h float64) (domain.LayoutRecord, error) {
	if err := r.Begin(id); err != nil {
		return domain.LayoutRecord{}, err
	}
	rec, err := r.Step(w, h)
	if endErr := r.End(); err == nil {
		err = endErr
	}
	return rec, err
}
