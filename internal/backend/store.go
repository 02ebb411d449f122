/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package backend

import (
	"context"
	"errors"
	"sync"
	"time"

	"labdesigner/internal/domain"
)

// ErrNoPublished is returned by Latest when nothing has been published yet.
var ErrNoPublished = errors.New("no published layout")

// Published is one stored layout document.
type Published struct {
	Version   int64           `json:"version"`
	Subject   string          `json:"subject,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	Document  domain.Document `json:"document"`
}

// PublishedStore keeps published layout documents. Versions increase by one per Publish.
type PublishedStore interface {
	Publish(ctx context.Context, subject string, doc domain.Document) (Published, error)
	Latest(ctx context.Context) (Published, error)
	Ping(ctx context.Context) error
}

// MemoryStore is the in-process PublishedStore used when no database is configured.
type MemoryStore struct {
	mu   sync.Mutex
	list []Published
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{now: time.Now} }

func (m *MemoryStore) Publish(_ context.Context, subject string, doc domain.Document) (Published, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := Published{
		Version:   int64(len(m.list)) + 1,
		Subject:   subject,
		CreatedAt: m.now().UTC(),
		Document:  cloneDocument(doc),
	}
	m.list = append(m.list, p)
	return p, nil
}

func (m *MemoryStore) Latest(_ context.Context) (Published, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.list) == 0 {
		return Published{}, ErrNoPublished
	}
	p := m.list[len(m.list)-1]
	p.Document = cloneDocument(p.Document)
	return p, nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func cloneDocument(doc domain.Document) domain.Document {
	out := domain.Document{
		Clouds: make([]domain.CloudEntity, len(doc.Clouds)),
		UI:     make(map[domain.EntityID]domain.LayoutRecord, len(doc.UI)),
	}
	for i, c := range doc.Clouds {
		out.Clouds[i] = c.Clone()
	}
	for id, r := range doc.UI {
		out.UI[id] = r.Clone()
	}
	return out
}
