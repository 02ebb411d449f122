/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package designer wires the layout core into one session: the breakpoint store,
// the gesture handlers, the cloud factory and the carousels, driven by discrete
// input events. All exported methods are serialised by the session mutex, so the
// active registry has a single logical owner at any time.
package designer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"labdesigner/internal/autosave"
	"labdesigner/internal/carousel"
	"labdesigner/internal/clouds"
	"labdesigner/internal/domain"
	applog "labdesigner/internal/log"
	"labdesigner/internal/registry"
	"labdesigner/internal/snapshot"
	"labdesigner/internal/transaction"
)

// ErrNotInDesignMode is returned by editing operations while design mode is off.
var ErrNotInDesignMode = errors.New("design mode is off")

// Clipboard receives the exported document text.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// Notifier shows a short message to the operator.
type Notifier interface {
	Notify(msg string)
}

// Sound plays the light switch click.
type Sound interface {
	PlayToggle(on bool)
}

// Options configures a Session. Zero values select documented defaults.
type Options struct {
	MobileBreakpoint float64
	MinWidth         float64
	MinHeight        float64
	DuplicateOffset  float64
	IDs              clouds.IDGenerator
	FoundersWindow   int

	Clipboard Clipboard
	Notifier  Notifier
	Sound     Sound
	Journal   *autosave.Journal
	Now       func() time.Time
}

// Session is the designer runtime for one page.
type Session struct {
	mu sync.Mutex

	store  *registry.Store
	clouds *clouds.Factory
	live   *transaction.Live
	drag   *transaction.DragHandler
	resize *transaction.ResizeHandler

	designMode   bool
	forcedMobile bool
	gestureBP    domain.Breakpoint
	started      bool
	selected     domain.EntityID
	lightsOn     bool

	founders       *carousel.Window[domain.Founder]
	clientWorks    *carousel.Window[domain.ClientWork]
	services       *carousel.Window[domain.Service]
	videos         *carousel.Window[string]
	foundersWindow int

	clipboard Clipboard
	notifier  Notifier
	sound     Sound
	journal   *autosave.Journal
	now       func() time.Time
	log       *slog.Logger
}

// New builds a session seeded with the shipped default layouts. Clouds are seeded
// by the first Start.
func New(opts Options) *Session {
	store := registry.NewStore(opts.MobileBreakpoint)
	live := transaction.NewLive()
	drag := transaction.NewDragHandler(activeTarget{store}, live)
	if opts.FoundersWindow <= 0 {
		opts.FoundersWindow = domain.FoundersWindow
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Session{
		store:          store,
		clouds:         clouds.NewFactory(opts.IDs, opts.DuplicateOffset),
		live:           live,
		drag:           drag,
		resize:         transaction.NewResizeHandler(activeTarget{store}, drag, opts.MinWidth, opts.MinHeight),
		lightsOn:       true,
		founders:       carousel.New(domain.Founders()),
		clientWorks:    carousel.New(domain.ClientWorks()),
		services:       carousel.New(domain.Services()),
		videos:         carousel.New(domain.Videos()),
		foundersWindow: opts.FoundersWindow,
		clipboard:      opts.Clipboard,
		notifier:       opts.Notifier,
		sound:          opts.Sound,
		journal:        opts.Journal,
		now:            opts.Now,
		log:            applog.WithComponent("designer"),
	}
}

// Start applies the initial viewport and seeds the cloud list for the breakpoint it
// selects. Later calls behave like Observe.
func (s *Session) Start(vp domain.Viewport) domain.Breakpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	bp := s.observe(vp)
	if !s.started {
		s.clouds.Seed(domain.CloudSeed(bp))
		s.started = true
		s.log.Info("session started", slog.String("bp", bp.String()), slog.Int("clouds", s.clouds.Len()))
	}
	return bp
}

// Observe applies a viewport change notification.
func (s *Session) Observe(vp domain.Viewport) domain.Breakpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.observe(vp)
}

func (s *Session) observe(vp domain.Viewport) domain.Breakpoint {
	s.forcedMobile = vp.ForcedMobile
	return s.store.Observe(vp)
}

// SetMobilePreview forces (or releases) the mobile breakpoint regardless of width.
func (s *Session) SetMobilePreview(on bool) domain.Breakpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	vp := s.store.Viewport()
	vp.ForcedMobile = on
	return s.observe(vp)
}

// SetDesignMode turns editing on or off. Leaving design mode drops the selection.
func (s *Session) SetDesignMode(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.designMode = on
	if !on {
		s.selected = ""
	}
	s.log.Debug("design mode", slog.Bool("on", on))
}

func (s *Session) DesignMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.designMode
}

// Breakpoint returns the active breakpoint.
func (s *Session) Breakpoint() domain.Breakpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Breakpoint()
}

// Viewport returns the last observed viewport.
func (s *Session) Viewport() domain.Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Viewport()
}

// NeedsRotatePrompt reports whether the rotate-device interstitial should show.
func (s *Session) NeedsRotatePrompt() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	vp := s.store.Viewport()
	return s.store.Breakpoint() == domain.Mobile && vp.Portrait() && !s.forcedMobile
}

// Record returns the active record of id with defaults applied.
func (s *Session) Record(id domain.EntityID) domain.LayoutRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.store.Get(id)
	rec.Selected = s.selected == id
	return rec
}

// Live returns the live position observable of drag gestures. Frames are delivered
// after the session lock is released, so subscribers may call session methods.
func (s *Session) Live() *transaction.Live { return s.live }

// lockLive takes the session lock and holds back live frames until the returned
// unlock has released it.
func (s *Session) lockLive() (unlock func()) {
	release := s.live.Hold()
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		release()
	}
}

// Journal returns the autosave journal, which may be nil.
func (s *Session) Journal() *autosave.Journal { return s.journal }

// Export returns the current document. It has no effect on session state.
func (s *Session) Export() domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot.Export(s.clouds, s.store.Active())
}

// ExportFor returns the document of bp whether or not it is active.
func (s *Session) ExportFor(bp domain.Breakpoint) domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot.Export(s.clouds, s.store.For(bp))
}

// Load replaces the active registry and the cloud list with doc.
func (s *Session) Load(doc domain.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked(s.store.Breakpoint(), doc)
}

// LoadFor replaces the registry of bp and the cloud list with doc.
func (s *Session) LoadFor(bp domain.Breakpoint, doc domain.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked(bp, doc)
}

func (s *Session) loadLocked(bp domain.Breakpoint, doc domain.Document) {
	snapshot.Apply(doc, s.clouds, s.store.For(bp))
	s.started = true
	s.selected = ""
	s.log.Info("layout loaded", slog.String("bp", bp.String()), slog.Int("entities", len(doc.UI)), slog.Int("clouds", len(doc.Clouds)))
	s.captureFor(bp)
}

// CopyLayout exports the document and hands it to the clipboard. A clipboard failure
// is reported through the notifier and returned; session state is unaffected.
func (s *Session) CopyLayout(ctx context.Context) (domain.Document, error) {
	doc := s.Export()
	data, err := snapshot.Marshal(doc)
	if err != nil {
		return doc, fmt.Errorf("marshal layout: %w", err)
	}
	if s.clipboard == nil {
		return doc, nil
	}
	if err := s.clipboard.WriteText(ctx, string(data)); err != nil {
		s.log.Error("clipboard write failed", slog.Any("err", err))
		s.notify("Failed to copy layout: " + err.Error())
		return doc, fmt.Errorf("copy layout: %w", err)
	}
	s.notify("Layout copied to clipboard!")
	return doc, nil
}

func (s *Session) notify(msg string) {
	if s.notifier != nil {
		s.notifier.Notify(msg)
	}
}

// ToggleLights flips the lights and plays the switch sound once.
func (s *Session) ToggleLights() bool {
	s.mu.Lock()
	s.lightsOn = !s.lightsOn
	on := s.lightsOn
	s.mu.Unlock()
	if s.sound != nil {
		s.sound.PlayToggle(on)
	}
	return on
}

func (s *Session) LightsOn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lightsOn
}

// captureLocked pushes the active document into the autosave journal.
// The caller holds s.mu.
func (s *Session) captureLocked() { s.captureFor(s.store.Breakpoint()) }

func (s *Session) captureFor(bp domain.Breakpoint) {
	if s.journal == nil {
		return
	}
	data, err := snapshot.Marshal(snapshot.Export(s.clouds, s.store.For(bp)))
	if err != nil {
		s.log.Error("autosave capture failed", slog.Any("err", err))
		return
	}
	s.journal.Push(autosave.Entry{Breakpoint: bp, Blob: data, TS: s.now()})
}

// activeTarget routes gestures to the active registry and lets them pin it at begin.
type activeTarget struct{ *registry.Store }

func (a activeTarget) Scope() transaction.Target { return a.Store.Active() }
