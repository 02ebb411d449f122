/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package clouds manages the free-floating decorative entities. They share one
// ordered list across breakpoints and are the only entities that can be created
// and destroyed at runtime.
package clouds

import (
	"errors"
	"log/slog"

	"labdesigner/internal/domain"
	applog "labdesigner/internal/log"
)

// DefaultDuplicateOffset is added to both axes of a duplicated cloud.
const DefaultDuplicateOffset = 40.0

var (
	ErrNotFound = errors.New("cloud not found")
	ErrLocked   = errors.New("cloud is locked")
)

// Factory owns the cloud list.
type Factory struct {
	list   []domain.CloudEntity
	gen    IDGenerator
	offset float64
	seeded bool
	log    *slog.Logger
}

// NewFactory returns an empty factory. A nil gen uses a Counter; offset <= 0 uses
// DefaultDuplicateOffset.
func NewFactory(gen IDGenerator, offset float64) *Factory {
	if gen == nil {
		gen = NewCounter(0)
	}
	if offset <= 0 {
		offset = DefaultDuplicateOffset
	}
	return &Factory{gen: gen, offset: offset, log: applog.WithComponent("clouds")}
}

// Seed loads the initial list. Only the first call has an effect; it reports
// whether the list was loaded.
func (f *Factory) Seed(list []domain.CloudEntity) bool {
	if f.seeded {
		return false
	}
	f.Replace(list)
	f.log.Debug("seeded", slog.Int("count", len(list)))
	return true
}

// Replace swaps the whole list, e.g. when a snapshot is loaded.
func (f *Factory) Replace(list []domain.CloudEntity) {
	f.list = make([]domain.CloudEntity, len(list))
	for i, c := range list {
		f.list[i] = c.Clone()
	}
	f.seeded = true
}

func (f *Factory) Len() int { return len(f.list) }

// All returns a copy of the list in order.
func (f *Factory) All() []domain.CloudEntity {
	out := make([]domain.CloudEntity, len(f.list))
	for i, c := range f.list {
		out[i] = c.Clone()
	}
	return out
}

func (f *Factory) index(id domain.EntityID) int {
	for i := range f.list {
		if f.list[i].ID == id {
			return i
		}
	}
	return -1
}

// Get returns the cloud with id.
func (f *Factory) Get(id domain.EntityID) (domain.CloudEntity, bool) {
	i := f.index(id)
	if i < 0 {
		return domain.CloudEntity{}, false
	}
	return f.list[i].Clone(), true
}

// Duplicate appends a copy of src shifted by the duplicate offset under a fresh id.
// src itself is not modified.
func (f *Factory) Duplicate(src domain.CloudEntity) domain.CloudEntity {
	cp := src.Clone()
	cp.ID = f.freshID(src.ClassName)
	cp.X += f.offset
	cp.Y += f.offset
	cp.Selected = false
	f.list = append(f.list, cp)
	f.log.Debug("duplicate", slog.String("src", string(src.ID)), slog.String("id", string(cp.ID)))
	return cp.Clone()
}

// DuplicateID duplicates the stored cloud with id.
func (f *Factory) DuplicateID(id domain.EntityID) (domain.CloudEntity, error) {
	src, ok := f.Get(id)
	if !ok {
		return domain.CloudEntity{}, ErrNotFound
	}
	return f.Duplicate(src), nil
}

func (f *Factory) freshID(className string) domain.EntityID {
	for {
		id := f.gen.NewID(className)
		if f.index(id) < 0 {
			return id
		}
	}
}

// Delete removes the first cloud with id and reports whether one was removed.
// Deleting an absent id is a no-op.
func (f *Factory) Delete(id domain.EntityID) bool {
	i := f.index(id)
	if i < 0 {
		return false
	}
	f.list = append(f.list[:i], f.list[i+1:]...)
	f.log.Debug("delete", slog.String("id", string(id)))
	return true
}

// Move sets the position of a cloud in place. Locked clouds are left untouched.
func (f *Factory) Move(id domain.EntityID, x, y float64) (domain.CloudEntity, error) {
	i := f.index(id)
	if i < 0 {
		return domain.CloudEntity{}, ErrNotFound
	}
	if f.list[i].IsLocked() {
		return f.list[i].Clone(), ErrLocked
	}
	f.list[i].X, f.list[i].Y = x, y
	return f.list[i].Clone(), nil
}
