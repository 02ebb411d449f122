/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package designer

import (
	"log/slog"

	"labdesigner/internal/domain"
	"labdesigner/internal/transaction"
)

// Select focuses id. Locked entities cannot be selected. It reports whether the
// selection changed to id.
func (s *Session) Select(id domain.EntityID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectLocked(id)
}

func (s *Session) selectLocked(id domain.EntityID) bool {
	if !s.designMode || s.store.Get(id).IsLocked() {
		return false
	}
	s.selected = id
	return true
}

// Selected returns the focused entity, if any.
func (s *Session) Selected() (domain.EntityID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected, s.selected != ""
}

// PointerDown begins a drag on id and selects it.
//
// The gesture stays on the breakpoint active now: a viewport change while the
// pointer is down does not move the commit to the other layout.
func (s *Session) PointerDown(id domain.EntityID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.designMode {
		return ErrNotInDesignMode
	}
	if err := s.drag.Begin(id); err != nil {
		s.log.Debug("drag refused", slog.String("entity", string(id)), slog.Any("err", err))
		return err
	}
	s.gestureBP = s.store.Breakpoint()
	s.selectLocked(id)
	return nil
}

// PointerMove reports the live offset of the dragged entity.
func (s *Session) PointerMove(x, y float64) error {
	defer s.lockLive()()
	return s.drag.Move(x, y)
}

// PointerUp releases the pointer and commits the drag.
func (s *Session) PointerUp() (domain.LayoutRecord, error) {
	defer s.lockLive()()
	rec, err := s.drag.End()
	if err != nil {
		s.log.Debug("drag refused", slog.Any("err", err))
		return rec, err
	}
	s.captureFor(s.gestureBP)
	return rec, nil
}

// Drag runs a complete drag gesture on id ending at x, y.
func (s *Session) Drag(id domain.EntityID, x, y float64) (domain.LayoutRecord, error) {
	defer s.lockLive()()
	if !s.designMode {
		return domain.LayoutRecord{}, ErrNotInDesignMode
	}
	rec, err := s.drag.Commit(id, x, y)
	if err != nil {
		s.log.Debug("drag refused", slog.String("entity", string(id)), slog.Any("err", err))
		return rec, err
	}
	s.captureLocked()
	return rec, nil
}

// ResizeStart grabs the resize handle of id.
func (s *Session) ResizeStart(id domain.EntityID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.designMode {
		return ErrNotInDesignMode
	}
	if err := s.resize.Begin(id); err != nil {
		s.log.Debug("resize refused", slog.String("entity", string(id)), slog.Any("err", err))
		return err
	}
	s.gestureBP = s.store.Breakpoint()
	return nil
}

// ResizeStep commits the size reached by the handle.
func (s *Session) ResizeStep(w, h float64) (domain.LayoutRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.resize.Step(w, h)
	if err == nil {
		s.captureFor(s.gestureBP)
	}
	return rec, err
}

// ResizeEnd releases the handle.
func (s *Session) ResizeEnd() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resize.End()
}

// Resize runs a complete single-step resize of id to w, h.
func (s *Session) Resize(id domain.EntityID, w, h float64) (domain.LayoutRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.designMode {
		return domain.LayoutRecord{}, ErrNotInDesignMode
	}
	rec, err := s.resize.Commit(id, w, h)
	if err != nil {
		s.log.Debug("resize refused", slog.String("entity", string(id)), slog.Any("err", err))
		return rec, err
	}
	s.captureLocked()
	return rec, nil
}

// BringToFront raises id above every entity of the active registry.
func (s *Session) BringToFront(id domain.EntityID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.designMode {
		return 0, ErrNotInDesignMode
	}
	z := s.store.Active().BringToFront(id)
	s.captureLocked()
	return z, nil
}

// ToggleLock flips the lock flag of id. Locking the selected entity drops the selection.
func (s *Session) ToggleLock(id domain.EntityID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.designMode {
		return false, ErrNotInDesignMode
	}
	locked := s.store.Active().ToggleLock(id)
	if locked && s.selected == id {
		s.selected = ""
	}
	s.captureLocked()
	return locked, nil
}

// SetSize stores a uniform size override for id.
func (s *Session) SetSize(id domain.EntityID, size float64) (domain.LayoutRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.designMode {
		return domain.LayoutRecord{}, ErrNotInDesignMode
	}
	if s.store.Get(id).IsLocked() {
		return s.store.Get(id), transaction.ErrLocked
	}
	rec := s.store.Update(id, domain.Patch{Size: domain.F(size)})
	s.captureLocked()
	return rec, nil
}

// Clouds returns the cloud list in order.
func (s *Session) Clouds() []domain.CloudEntity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clouds.All()
}

// DuplicateCloud appends a shifted copy of cloud id.
func (s *Session) DuplicateCloud(id domain.EntityID) (domain.CloudEntity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.designMode {
		return domain.CloudEntity{}, ErrNotInDesignMode
	}
	c, err := s.clouds.DuplicateID(id)
	if err != nil {
		return c, err
	}
	s.captureLocked()
	return c, nil
}

// DeleteCloud removes cloud id; an absent id is a no-op.
func (s *Session) DeleteCloud(id domain.EntityID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.designMode {
		return false, ErrNotInDesignMode
	}
	removed := s.clouds.Delete(id)
	if removed {
		if s.selected == id {
			s.selected = ""
		}
		s.captureLocked()
	}
	return removed, nil
}

// MoveCloud commits a cloud drag.
func (s *Session) MoveCloud(id domain.EntityID, x, y float64) (domain.CloudEntity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.designMode {
		return domain.CloudEntity{}, ErrNotInDesignMode
	}
	c, err := s.clouds.Move(id, x, y)
	if err != nil {
		return c, err
	}
	s.captureLocked()
	return c, nil
}
