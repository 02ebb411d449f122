/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package backend serves a designer session over HTTP and keeps published layouts.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"labdesigner/internal/clouds"
	"labdesigner/internal/designer"
	"labdesigner/internal/domain"
	applog "labdesigner/internal/log"
	"labdesigner/internal/snapshot"
	"labdesigner/internal/telemetry"
	"labdesigner/internal/transaction"
	"labdesigner/internal/version"
)

// DevSecret signs tokens when no secret is configured.
const DevSecret = "dev-secret-change-me"

const maxBody = 1 << 20

// Options configures a Server.
type Options struct {
	Session   *designer.Session
	Published PublishedStore
	Secret    string
	Logger    *slog.Logger
	Telemetry *telemetry.Client
	Now       func() time.Time
}

// Server is the HTTP surface of one designer session.
type Server struct {
	session   *designer.Session
	published PublishedStore
	secret    string
	log       *slog.Logger
	telemetry *telemetry.Client
	metrics   *Metrics
	now       func() time.Time
	router    chi.Router
}

// NewServer builds the router. A nil Published store falls back to a MemoryStore.
func NewServer(opts Options) *Server {
	s := &Server{
		session:   opts.Session,
		published: opts.Published,
		secret:    opts.Secret,
		log:       opts.Logger,
		telemetry: opts.Telemetry,
		metrics:   newMetrics(),
		now:       opts.Now,
	}
	if s.published == nil {
		s.published = NewMemoryStore()
	}
	if s.log == nil {
		s.log = applog.WithComponent("backend")
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.secret == "" {
		s.secret = DevSecret
		s.log.Warn("auth secret not set; using insecure dev secret")
	}
	s.router = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics { return s.metrics }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", s.handleReady)
	r.Get("/version", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("labdesigner " + version.String()))
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/token", s.handleToken)

		r.Get("/layout", s.handleGetLayout)
		r.With(s.entityContext).Get("/entities/{id}", s.handleGetEntity)
		r.Get("/clouds", s.handleListClouds)
		r.Get("/carousels/{name}", s.handleCarousel(s.session.Carousel))
		r.Get("/published/latest", s.handleLatest)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Put("/layout", s.handlePutLayout)
			r.Post("/design", s.handleDesign)
			r.Post("/viewport", s.handleViewport)

			ent := r.With(s.entityContext)
			ent.Post("/entities/{id}/drag", s.handleDrag)
			ent.Post("/entities/{id}/resize", s.handleResize)
			ent.Post("/entities/{id}/front", s.handleFront)
			ent.Post("/entities/{id}/lock", s.handleLock)
			ent.Post("/clouds/{id}/duplicate", s.handleDuplicate)
			ent.Delete("/clouds/{id}", s.handleDelete)
			ent.Post("/clouds/{id}/move", s.handleMove)
			r.Post("/carousels/{name}/next", s.handleCarousel(s.session.NextCarousel))
			r.Post("/carousels/{name}/prev", s.handleCarousel(s.session.PrevCarousel))
			r.Post("/publish", s.handlePublish)
		})
	})
	return r
}

// logRequests tags the request context with its id and logs one line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := applog.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r.WithContext(ctx))
		s.log.DebugContext(ctx, "request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("took", time.Since(start)),
		)
	})
}

// entityContext tags the request context with the routed entity and the breakpoint
// it is edited on.
func (s *Server) entityContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := applog.WithEntity(r.Context(), chi.URLParam(r, "id"))
		ctx = applog.WithBreakpoint(ctx, s.session.Breakpoint().String())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.published.Ping(ctx); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("store not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// POST /api/auth/token → { token, expires_at }
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	// Optional JSON body: { "subject": "name", "ttl_seconds": 3600 }
	var req struct {
		Subject    string `json:"subject"`
		TTLSeconds int64  `json:"ttl_seconds"`
	}
	b, _ := io.ReadAll(io.LimitReader(r.Body, maxBody))
	_ = json.Unmarshal(b, &req)
	if req.Subject == "" {
		req.Subject = "dev"
	}
	if req.TTLSeconds <= 0 || req.TTLSeconds > 24*3600 {
		req.TTLSeconds = 3600
	}
	exp := s.now().Add(time.Duration(req.TTLSeconds) * time.Second)
	tok, err := signToken(s.secret, req.Subject, exp)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":      tok,
		"expires_at": exp.UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleGetLayout(w http.ResponseWriter, _ *http.Request) {
	data, err := snapshot.Marshal(s.session.Export())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handlePutLayout(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	doc, err := snapshot.Parse(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.session.Load(doc)
	writeJSON(w, http.StatusOK, map[string]any{"entities": len(doc.UI), "clouds": len(doc.Clouds)})
}

func (s *Server) handleGetEntity(w http.ResponseWriter, r *http.Request) {
	id := domain.EntityID(chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, map[string]any{
		"id":         id,
		"breakpoint": s.session.Breakpoint(),
		"record":     s.session.Record(id),
	})
}

func (s *Server) handleListClouds(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"clouds": s.session.Clouds()})
}

func (s *Server) handleDesign(w http.ResponseWriter, r *http.Request) {
	var req struct {
		On bool `json:"on"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.session.SetDesignMode(req.On)
	writeJSON(w, http.StatusOK, map[string]any{"designMode": s.session.DesignMode()})
}

func (s *Server) handleViewport(w http.ResponseWriter, r *http.Request) {
	var vp domain.Viewport
	if !decode(w, r, &vp) {
		return
	}
	if vp.Width <= 0 || vp.Height <= 0 {
		writeError(w, http.StatusBadRequest, errors.New("viewport needs a positive width and height"))
		return
	}
	bp := s.session.Start(vp)
	writeJSON(w, http.StatusOK, map[string]any{
		"breakpoint":   bp,
		"rotatePrompt": s.session.NeedsRotatePrompt(),
	})
}

type point struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

func (p point) valid() bool { return p.X != nil && p.Y != nil }

func (s *Server) handleDrag(w http.ResponseWriter, r *http.Request) {
	var p point
	if !decode(w, r, &p) {
		return
	}
	if !p.valid() {
		writeError(w, http.StatusBadRequest, errors.New("x and y are required"))
		return
	}
	rec, err := s.session.Drag(entityParam(r), *p.X, *p.Y)
	s.respondCommit(w, r, KindDrag, rec, err)
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		W *float64 `json:"w"`
		H *float64 `json:"h"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.W == nil || req.H == nil {
		writeError(w, http.StatusBadRequest, errors.New("w and h are required"))
		return
	}
	rec, err := s.session.Resize(entityParam(r), *req.W, *req.H)
	s.respondCommit(w, r, KindResize, rec, err)
}

func (s *Server) handleFront(w http.ResponseWriter, r *http.Request) {
	z, err := s.session.BringToFront(entityParam(r))
	s.respondCommit(w, r, KindFront, map[string]any{"z": z}, err)
}

func (s *Server) handleLock(w http.ResponseWriter, r *http.Request) {
	locked, err := s.session.ToggleLock(entityParam(r))
	s.respondCommit(w, r, KindLock, map[string]any{"locked": locked}, err)
}

func (s *Server) handleDuplicate(w http.ResponseWriter, r *http.Request) {
	c, err := s.session.DuplicateCloud(entityParam(r))
	if err == nil {
		s.commit(r.Context(), KindDuplicate)
		writeJSON(w, http.StatusCreated, c)
		return
	}
	s.respondCommit(w, r, KindDuplicate, nil, err)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	removed, err := s.session.DeleteCloud(entityParam(r))
	if err == nil && !removed {
		// absent ids are a no-op
		writeJSON(w, http.StatusOK, map[string]any{"removed": false})
		return
	}
	s.respondCommit(w, r, KindDelete, map[string]any{"removed": removed}, err)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var p point
	if !decode(w, r, &p) {
		return
	}
	if !p.valid() {
		writeError(w, http.StatusBadRequest, errors.New("x and y are required"))
		return
	}
	c, err := s.session.MoveCloud(entityParam(r), *p.X, *p.Y)
	s.respondCommit(w, r, KindMove, c, err)
}

func (s *Server) handleCarousel(fn func(string) (designer.CarouselView, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := fn(chi.URLParam(r, "name"))
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	doc := s.session.Export()
	p, err := s.published.Publish(r.Context(), subjectFrom(r.Context()), doc)
	if err != nil {
		s.log.ErrorContext(r.Context(), "publish failed", slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.metrics.Published.Inc()
	s.log.InfoContext(r.Context(), "published", slog.Int64("version", p.Version), slog.String("subject", p.Subject))
	s.telemetry.Publish(p.Version)
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	p, err := s.published.Latest(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) respondCommit(w http.ResponseWriter, r *http.Request, kind string, body any, err error) {
	if err != nil {
		s.metrics.Rejected.WithLabelValues(kind).Inc()
		s.log.DebugContext(r.Context(), "rejected", slog.String("kind", kind), slog.Any("err", err))
		writeError(w, statusFor(err), err)
		return
	}
	s.commit(r.Context(), kind)
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) commit(ctx context.Context, kind string) {
	s.metrics.Commits.WithLabelValues(kind).Inc()
	s.log.DebugContext(ctx, "committed", slog.String("kind", kind))
	s.telemetry.Commit(kind, s.session.Breakpoint().String())
}

func entityParam(r *http.Request) domain.EntityID {
	return domain.EntityID(chi.URLParam(r, "id"))
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, clouds.ErrNotFound),
		errors.Is(err, designer.ErrUnknownCarousel),
		errors.Is(err, ErrNoPublished):
		return http.StatusNotFound
	case errors.Is(err, transaction.ErrLocked), errors.Is(err, clouds.ErrLocked):
		return http.StatusLocked
	case errors.Is(err, transaction.ErrNotResizable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, designer.ErrNotInDesignMode),
		errors.Is(err, transaction.ErrBusy),
		errors.Is(err, transaction.ErrDragDisabled),
		errors.Is(err, transaction.ErrNoTransaction):
		return http.StatusConflict
	case errors.Is(err, snapshot.ErrInvalidDocument):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode body: %w", err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}
