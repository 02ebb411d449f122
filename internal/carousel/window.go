/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package carousel implements a circular index over a fixed list and the
// sliding views rendered from it.
package carousel

// SwipeThreshold is the horizontal drag distance, in pixels, that counts as a swipe.
const SwipeThreshold = 80.0

// Window is a circular cursor over items. Index is always in [0, Len()) for a
// non-empty list; next and prev wrap instead of clamping.
type Window[T any] struct {
	items []T
	index int
}

// New returns a window positioned at the first item.
func New[T any](items []T) *Window[T] {
	cp := make([]T, len(items))
	copy(cp, items)
	return &Window[T]{items: cp}
}

func (w *Window[T]) Len() int   { return len(w.items) }
func (w *Window[T]) Index() int { return w.index }

// Items returns a copy of the underlying list.
func (w *Window[T]) Items() []T {
	cp := make([]T, len(w.items))
	copy(cp, w.items)
	return cp
}

func mod(a, n int) int { return ((a % n) + n) % n }

// Seek moves the cursor to i, wrapped into range.
func (w *Window[T]) Seek(i int) int {
	if n := len(w.items); n > 0 {
		w.index = mod(i, n)
	}
	return w.index
}

// Next advances by one and returns the new index.
func (w *Window[T]) Next() int { return w.Seek(w.index + 1) }

// Prev retreats by one and returns the new index.
func (w *Window[T]) Prev() int { return w.Seek(w.index - 1) }

// Current returns the item at the cursor.
func (w *Window[T]) Current() (T, bool) {
	var zero T
	if len(w.items) == 0 {
		return zero, false
	}
	return w.items[w.index], true
}

// Visible returns size items starting at the cursor, wrapping at the end.
// size may exceed Len; items then repeat.
func (w *Window[T]) Visible(size int) []T {
	n := len(w.items)
	if n == 0 || size <= 0 {
		return nil
	}
	out := make([]T, size)
	for i := range out {
		out[i] = w.items[(w.index+i)%n]
	}
	return out
}

// VisibleIndices is Visible expressed as positions in the list.
func (w *Window[T]) VisibleIndices(size int) []int {
	n := len(w.items)
	if n == 0 || size <= 0 {
		return nil
	}
	out := make([]int, size)
	for i := range out {
		out[i] = (w.index + i) % n
	}
	return out
}

// Triple returns the item before the cursor, the current item and the one after.
func (w *Window[T]) Triple() (prev, cur, next T, ok bool) {
	n := len(w.items)
	if n == 0 {
		return prev, cur, next, false
	}
	return w.items[mod(w.index-1, n)], w.items[w.index], w.items[mod(w.index+1, n)], true
}

// Swipe applies a horizontal drag of offset pixels: a drag right past the threshold
// goes back, a drag left past it goes forward. It reports whether the cursor moved.
func (w *Window[T]) Swipe(offset float64) bool {
	switch {
	case offset > SwipeThreshold:
		w.Prev()
	case offset < -SwipeThreshold:
		w.Next()
	default:
		return false
	}
	return true
}
