/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package transaction implements the bounded pointer gestures of the designer:
// a drag that commits once on release and a resize that commits on every step.
// Both read and write through a Target, normally the breakpoint store.
package transaction

import (
	"sync"

	"labdesigner/internal/domain"
)

// Frame is one live-feedback sample emitted while a gesture is in flight.
type Frame struct {
	ID   domain.EntityID
	X, Y float64
	Done bool
}

// Live is the live position observable. It carries per-frame offsets to the rendering
// layer and is never read back by the commit path.
//
// Subscribers run on the publishing goroutine. While a Hold is outstanding, frames are
// queued and delivered by the last release, so an owner can hold frames across its own
// critical section and subscribers may call back into it.
type Live struct {
	mu      sync.Mutex
	cur     map[domain.EntityID]Frame
	subs    map[int]func(Frame)
	next    int
	holds   int
	pending []Frame
}

func NewLive() *Live {
	return &Live{cur: make(map[domain.EntityID]Frame), subs: make(map[int]func(Frame))}
}

// Subscribe registers fn for every published frame and returns a cancel func.
func (l *Live) Subscribe(fn func(Frame)) (cancel func()) {
	l.mu.Lock()
	id := l.next
	l.next++
	l.subs[id] = fn
	l.mu.Unlock()
	return func() {
		l.mu.Lock()
		delete(l.subs, id)
		l.mu.Unlock()
	}
}

// Current returns the in-flight offset of id, if a gesture is running on it.
func (l *Live) Current(id domain.EntityID) (Frame, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	f, ok := l.cur[id]
	return f, ok
}

// Hold defers delivery of published frames until the returned release is called.
// Holds nest; release is idempotent.
func (l *Live) Hold() (release func()) {
	l.mu.Lock()
	l.holds++
	l.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			l.holds--
			l.mu.Unlock()
			l.dispatch()
		})
	}
}

func (l *Live) publish(f Frame) {
	l.mu.Lock()
	if f.Done {
		delete(l.cur, f.ID)
	} else {
		l.cur[f.ID] = f
	}
	l.pending = append(l.pending, f)
	l.mu.Unlock()
	l.dispatch()
}

func (l *Live) dispatch() {
	l.mu.Lock()
	if l.holds > 0 || len(l.pending) == 0 {
		l.mu.Unlock()
		return
	}
	frames := l.pending
	l.pending = nil
	subs := make([]func(Frame), 0, len(l.subs))
	for _, fn := range l.subs {
		subs = append(subs, fn)
	}
	l.mu.Unlock()
	for _, f := range frames {
		for _, fn := range subs {
			fn(f)
		}
	}
}
