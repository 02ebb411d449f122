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
)

// MaxZ returns the highest stored z. Absent and zero values do not count, so a
// registry without any positive z yields 0.
func (r *Registry) MaxZ() int {
	maxZ := 0
	for _, rec := range r.records {
		if rec.Z != nil && *rec.Z > maxZ {
			maxZ = *rec.Z
		}
	}
	return maxZ
}

// BringToFront sets z on id to one above every other z in the registry and returns it.
func (r *Registry) BringToFront(id domain.EntityID) int {
	z := r.MaxZ() + 1
	r.Update(id, domain.Patch{Z: domain.I(z)})
	r.log.Debug("bring to front", slog.String("entity", string(id)), slog.Int("z", z))
	return z
}

// ToggleLock flips the lock flag on id and returns the new value.
func (r *Registry) ToggleLock(id domain.EntityID) bool {
	locked := !r.Get(id).IsLocked()
	r.Update(id, domain.Patch{Locked: domain.B(locked)})
	r.log.Debug("toggle lock", slog.String("entity", string(id)), slog.Bool("locked", locked))
	return locked
}

// IsLocked reports whether id is locked; unknown ids are unlocked.
func (r *Registry) IsLocked(id domain.EntityID) bool {
	rec, ok := r.records[id]
	return ok && rec.IsLocked()
}
