/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package autosave keeps a bounded in-memory journal of exported layout documents
// waiting to be written to the snapshot history.
package autosave

import (
	"sync"
	"time"

	"labdesigner/internal/domain"
)

// Entry is one captured document for a breakpoint.
// Blob is opaque to the journal; its size is estimated as len(Blob).
type Entry struct {
	Breakpoint domain.Breakpoint
	Blob       []byte
	TS         time.Time
}

// Config controls memory and depth caps and coalescing behavior.
type Config struct {
	// MaxBytes is a soft cap; older entries are pruned when exceeded.
	MaxBytes int
	// MaxPerBreakpoint limits pending entries per breakpoint (0 means unlimited).
	MaxPerBreakpoint int
	// MinInterval coalesces entries captured within the interval for the same breakpoint,
	// replacing the previous one instead of appending. Live resize commits rely on this.
	MinInterval time.Duration
}

// Journal holds pending entries per breakpoint. It is safe for concurrent use.
type Journal struct {
	cfg        Config
	mu         sync.Mutex
	pending    map[domain.Breakpoint][]Entry
	totalBytes int
}

func NewJournal(cfg Config) *Journal {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 4 * 1024 * 1024 // 4 MiB
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = 500 * time.Millisecond
	}
	return &Journal{cfg: cfg, pending: make(map[domain.Breakpoint][]Entry)}
}

// Push records an entry. Within MinInterval of the last entry for the same breakpoint
// it replaces that entry.
func (j *Journal) Push(e Entry) {
	j.mu.Lock()
	defer j.mu.Unlock()
	stack := j.pending[e.Breakpoint]
	if n := len(stack); n > 0 {
		last := stack[n-1]
		if e.TS.Sub(last.TS) < j.cfg.MinInterval {
			j.totalBytes += len(e.Blob) - len(last.Blob)
			stack[n-1] = e
			j.enforceCapsLocked(e.Breakpoint)
			return
		}
	}
	j.pending[e.Breakpoint] = append(stack, e)
	j.totalBytes += len(e.Blob)
	j.enforceCapsLocked(e.Breakpoint)
}

// Latest returns the newest pending entry for bp.
func (j *Journal) Latest(bp domain.Breakpoint) (Entry, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	stack := j.pending[bp]
	if len(stack) == 0 {
		return Entry{}, false
	}
	return stack[len(stack)-1], true
}

// Drain removes and returns every pending entry ordered by capture time.
func (j *Journal) Drain() []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []Entry
	for _, stack := range j.pending {
		out = append(out, stack...)
	}
	j.pending = make(map[domain.Breakpoint][]Entry)
	j.totalBytes = 0
	sortByTS(out)
	return out
}

// Flush drains the journal into sink. Entries the sink rejects are pushed back and
// the first error is returned.
func (j *Journal) Flush(sink func(Entry) error) (int, error) {
	entries := j.Drain()
	for i, e := range entries {
		if err := sink(e); err != nil {
			for _, rest := range entries[i:] {
				j.requeue(rest)
			}
			return i, err
		}
	}
	return len(entries), nil
}

func (j *Journal) requeue(e Entry) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.pending[e.Breakpoint] = append(j.pending[e.Breakpoint], e)
	j.totalBytes += len(e.Blob)
	j.enforceCapsLocked(e.Breakpoint)
}

// Stats returns current sizes for diagnostics.
func (j *Journal) Stats() (totalBytes int, breakpoints int, totalEntries int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	breakpoints = len(j.pending)
	for _, v := range j.pending {
		totalEntries += len(v)
	}
	return j.totalBytes, breakpoints, totalEntries
}

func sortByTS(es []Entry) {
	for i := 1; i < len(es); i++ {
		for k := i; k > 0 && es[k].TS.Before(es[k-1].TS); k-- {
			es[k], es[k-1] = es[k-1], es[k]
		}
	}
}

func (j *Journal) enforceCapsLocked(bp domain.Breakpoint) {
	if j.cfg.MaxPerBreakpoint > 0 {
		stack := j.pending[bp]
		if len(stack) > j.cfg.MaxPerBreakpoint {
			toDrop := len(stack) - j.cfg.MaxPerBreakpoint
			for i := 0; i < toDrop; i++ {
				j.totalBytes -= len(stack[i].Blob)
			}
			j.pending[bp] = append([]Entry{}, stack[toDrop:]...)
		}
	}
	// Global memory cap: prune oldest across breakpoints, always keeping the newest entry.
	for j.cfg.MaxBytes > 0 && j.totalBytes > j.cfg.MaxBytes {
		var oldestBP domain.Breakpoint
		found := false
		var oldestTS time.Time
		for b, stack := range j.pending {
			if len(stack) < 2 {
				continue
			}
			if !found || stack[0].TS.Before(oldestTS) {
				oldestBP, oldestTS, found = b, stack[0].TS, true
			}
		}
		if !found {
			break
		}
		stack := j.pending[oldestBP]
		j.totalBytes -= len(stack[0].Blob)
		j.pending[oldestBP] = stack[1:]
	}
}
