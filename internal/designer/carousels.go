/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package designer

import (
	"errors"

	"labdesigner/internal/domain"
)

// Carousel names accepted by the session.
const (
	CarouselFounders = "founders"
	CarouselClients  = "clients"
	CarouselServices = "services"
	CarouselVideos   = "videos"
)

var ErrUnknownCarousel = errors.New("unknown carousel")

// CarouselView is what the rendering layer needs to draw one carousel.
type CarouselView struct {
	Name    string `json:"name"`
	Index   int    `json:"index"`
	Len     int    `json:"len"`
	Visible []int  `json:"visible"`
	Items   any    `json:"items"`
}

// NextCarousel advances the named carousel.
func (s *Session) NextCarousel(name string) (CarouselView, error) {
	return s.stepCarousel(name, 1)
}

// PrevCarousel retreats the named carousel.
func (s *Session) PrevCarousel(name string) (CarouselView, error) {
	return s.stepCarousel(name, -1)
}

// Carousel returns the current view of the named carousel.
func (s *Session) Carousel(name string) (CarouselView, error) {
	return s.stepCarousel(name, 0)
}

func (s *Session) stepCarousel(name string, dir int) (CarouselView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch name {
	case CarouselFounders:
		step(s.founders.Next, s.founders.Prev, dir)
		return CarouselView{
			Name: name, Index: s.founders.Index(), Len: s.founders.Len(),
			Visible: s.founders.VisibleIndices(s.foundersWindow),
			Items:   s.founders.Visible(s.foundersWindow),
		}, nil
	case CarouselClients:
		step(s.clientWorks.Next, s.clientWorks.Prev, dir)
		return s.clientsViewLocked(), nil
	case CarouselServices:
		step(s.services.Next, s.services.Prev, dir)
		return CarouselView{
			Name: name, Index: s.services.Index(), Len: s.services.Len(),
			Visible: s.services.VisibleIndices(1), Items: s.services.Visible(1),
		}, nil
	case CarouselVideos:
		step(s.videos.Next, s.videos.Prev, dir)
		return CarouselView{
			Name: name, Index: s.videos.Index(), Len: s.videos.Len(),
			Visible: s.videos.VisibleIndices(1), Items: s.videos.Visible(1),
		}, nil
	}
	return CarouselView{}, ErrUnknownCarousel
}

func step(next, prev func() int, dir int) {
	switch {
	case dir > 0:
		next()
	case dir < 0:
		prev()
	}
}

func (s *Session) clientsViewLocked() CarouselView {
	w := s.clientWorks
	n := w.Len()
	v := CarouselView{Name: CarouselClients, Index: w.Index(), Len: n}
	if p, c, nx, ok := w.Triple(); ok {
		v.Visible = []int{(w.Index() - 1 + n) % n, w.Index(), (w.Index() + 1) % n}
		v.Items = []domain.ClientWork{p, c, nx}
	}
	return v
}

// SwipeClientCard applies a horizontal drag of the active testimonial card. Cards
// only swipe outside design mode, where dragging belongs to the editor.
func (s *Session) SwipeClientCard(offset float64) (CarouselView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	moved := false
	if !s.designMode {
		moved = s.clientWorks.Swipe(offset)
	}
	return s.clientsViewLocked(), moved
}
