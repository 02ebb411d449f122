/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package registry holds entity layout records. A Registry maps entity ids to
// records for one breakpoint; a Store pairs the desktop and mobile registries and
// routes reads and writes to whichever one the viewport selects.
//
// Lookups never fail: an id that has not been stored yields domain.DefaultRecord.
// Neither type is safe for concurrent use; the designer session serialises access.
package registry

import (
	"log/slog"
	"sort"

	"labdesigner/internal/domain"
	applog "labdesigner/internal/log"
)

// Registry is an in-memory mapping of entity id to layout record.
type Registry struct {
	records map[domain.EntityID]domain.LayoutRecord
	log     *slog.Logger
}

// New returns a registry seeded with a deep copy of seed.
func New(seed map[domain.EntityID]domain.LayoutRecord) *Registry {
	r := &Registry{
		records: make(map[domain.EntityID]domain.LayoutRecord, len(seed)),
		log:     applog.WithComponent("registry"),
	}
	for id, rec := range seed {
		r.records[id] = rec.Clone()
	}
	return r
}

// Get returns the stored record or the documented default for id.
func (r *Registry) Get(id domain.EntityID) domain.LayoutRecord {
	if rec, ok := r.records[id]; ok {
		return rec.Clone()
	}
	return domain.DefaultRecord(id)
}

// Lookup returns the stored record and whether it exists.
func (r *Registry) Lookup(id domain.EntityID) (domain.LayoutRecord, bool) {
	rec, ok := r.records[id]
	if !ok {
		return domain.LayoutRecord{}, false
	}
	return rec.Clone(), true
}

// Update merges p into the record for id, creating it from the default when absent,
// and returns the stored result.
func (r *Registry) Update(id domain.EntityID, p domain.Patch) domain.LayoutRecord {
	cur, ok := r.records[id]
	if !ok {
		cur = domain.DefaultRecord(id)
	}
	next := cur.Merge(p)
	r.records[id] = next
	r.log.Debug("update", slog.String("entity", string(id)), slog.Bool("created", !ok))
	return next.Clone()
}

// Set replaces the record for id verbatim.
func (r *Registry) Set(id domain.EntityID, rec domain.LayoutRecord) {
	r.records[id] = rec.Clone()
}

// Len returns the number of stored records.
func (r *Registry) Len() int { return len(r.records) }

// IDs returns the stored ids in lexical order.
func (r *Registry) IDs() []domain.EntityID {
	ids := make([]domain.EntityID, 0, len(r.records))
	for id := range r.records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Snapshot returns a deep copy of all records as a plain map.
func (r *Registry) Snapshot() map[domain.EntityID]domain.LayoutRecord {
	out := make(map[domain.EntityID]domain.LayoutRecord, len(r.records))
	for id, rec := range r.records {
		c := rec.Clone()
		c.Selected = false
		out[id] = c
	}
	return out
}

// Replace discards every record and loads m instead. Locks do not protect
// records from a replace.
func (r *Registry) Replace(m map[domain.EntityID]domain.LayoutRecord) {
	r.records = make(map[domain.EntityID]domain.LayoutRecord, len(m))
	for id, rec := range m {
		r.records[id] = rec.Clone()
	}
}
