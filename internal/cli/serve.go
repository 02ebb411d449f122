/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"labdesigner/internal/autosave"
	"labdesigner/internal/backend"
	"labdesigner/internal/clouds"
	"labdesigner/internal/config"
	"labdesigner/internal/crash"
	"labdesigner/internal/designer"
	"labdesigner/internal/domain"
	applog "labdesigner/internal/log"
	"labdesigner/internal/storage"
	"labdesigner/internal/telemetry"
)

// ServeCmd runs the HTTP backend over one designer session.
func ServeCmd() *cobra.Command {
	var (
		addr          string
		layoutPath    string
		width, height float64
		design        bool
		flushEvery    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the designer session over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := current.cfg
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if layoutPath != "" {
				cfg.Storage.LayoutPath = layoutPath
			}
			vp := domain.Viewport{Width: width, Height: height}

			svc, err := openService(cmd.Context(), cfg, vp)
			if err != nil {
				return err
			}
			defer svc.close()
			defer crash.Recover(svc.layouts, telemetryConfig(cfg))
			svc.session.SetDesignMode(design)
			return svc.run(cmd.Context(), cfg, flushEvery)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&layoutPath, "layout", "", "layout file (default from config)")
	cmd.Flags().Float64Var(&width, "width", 1440, "initial viewport width")
	cmd.Flags().Float64Var(&height, "height", 900, "initial viewport height")
	cmd.Flags().BoolVar(&design, "design", true, "start in design mode")
	cmd.Flags().DurationVar(&flushEvery, "flush-every", 2*time.Second, "autosave interval")
	return cmd
}

// service is one running designer: the session plus its on-disk layouts and history.
type service struct {
	session   *designer.Session
	journal   *autosave.Journal
	layouts   *storage.LayoutSet
	history   *storage.History
	published backend.PublishedStore
	closers   []func() error
	log       *slog.Logger
}

func openService(ctx context.Context, cfg config.AppConfig, vp domain.Viewport) (*service, error) {
	l := applog.WithComponent("serve")
	journal := autosave.NewJournal(autosave.Config{MaxPerBreakpoint: 64})
	sess := designer.New(designer.Options{
		MobileBreakpoint: cfg.Designer.MobileBreakpoint,
		MinWidth:         cfg.Designer.MinWidth,
		MinHeight:        cfg.Designer.MinHeight,
		DuplicateOffset:  cfg.Designer.DuplicateOffset,
		IDs:              clouds.NewGenerator(cfg.Designer.IDStrategy),
		FoundersWindow:   cfg.Designer.FoundersWindow,
		Notifier:         logNotifier{l},
		Journal:          journal,
	})
	bp := sess.Start(vp)

	set, err := storage.OpenSet(cfg.Storage.LayoutPath)
	if err != nil {
		return nil, err
	}
	// the active layout loads last so its cloud list wins
	for _, b := range []domain.Breakpoint{other(bp), bp} {
		sess.LoadFor(b, set.For(b).Doc)
	}
	// the load itself is not an edit
	journal.Drain()

	hist, rebuilt, err := storage.RecoverHistory(ctx, set.Dir())
	if err != nil {
		return nil, err
	}
	if rebuilt {
		l.Warn("history rebuilt", slog.String("path", hist.Path()))
	}
	svc := &service{
		session: sess,
		journal: journal,
		layouts: set,
		history: hist,
		closers: []func() error{hist.Close},
		log:     l,
	}

	if dsn := cfg.Server.DatabaseURL; dsn != "" {
		pg, err := backend.OpenPG(ctx, dsn)
		if err != nil {
			svc.close()
			return nil, err
		}
		svc.published = pg
		svc.closers = append(svc.closers, pg.Close)
	} else {
		svc.published = backend.NewMemoryStore()
	}
	return svc, nil
}

func (s *service) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.log.Warn("close", slog.Any("err", err))
		}
	}
	s.closers = nil
}

func other(bp domain.Breakpoint) domain.Breakpoint {
	if bp == domain.Mobile {
		return domain.Desktop
	}
	return domain.Mobile
}

// flush moves journaled snapshots into the history and rewrites the layout files
// with the current documents when anything changed. Both files are written because
// the cloud list is shared.
func (s *service) flush(ctx context.Context, keep int) (int, error) {
	touched := map[domain.Breakpoint]bool{}
	n, err := s.journal.Flush(func(e autosave.Entry) error {
		touched[e.Breakpoint] = true
		return s.history.Record(ctx, e.Breakpoint, e.Blob, e.TS)
	})
	if n == 0 {
		return 0, err
	}
	for _, bp := range []domain.Breakpoint{domain.Desktop, domain.Mobile} {
		h := s.layouts.For(bp)
		h.Doc = s.session.ExportFor(bp)
		if serr := storage.Save(h); serr != nil {
			return n, errors.Join(err, serr)
		}
	}
	if keep > 0 {
		for bp := range touched {
			if _, perr := s.history.Prune(ctx, bp, keep); perr != nil {
				s.log.Warn("history prune failed", slog.String("bp", bp.String()), slog.Any("err", perr))
			}
		}
	}
	return n, err
}

func (s *service) run(ctx context.Context, cfg config.AppConfig, flushEvery time.Duration) error {
	tel := telemetry.New(telemetryConfig(cfg))
	defer tel.Close()
	tel.SessionStart(s.session.Breakpoint().String(), s.session.DesignMode())

	handler := backend.NewServer(backend.Options{
		Session:   s.session,
		Published: s.published,
		Secret:    current.secret,
		Telemetry: tel,
	})
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", slog.String("addr", cfg.Server.Addr), slog.String("layout", s.layouts.Desktop.Path))
		errCh <- srv.ListenAndServe()
	}()

	if flushEvery <= 0 {
		flushEvery = 2 * time.Second
	}
	ticker := time.NewTicker(flushEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			tel.Report()
			if n, err := s.flush(ctx, cfg.Storage.HistoryKeep); err != nil {
				s.log.Error("autosave failed", slog.Any("err", err))
			} else if n > 0 {
				s.log.Debug("autosaved", slog.Int("entries", n))
			}
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("listen: %w", err)
		case <-ctx.Done():
			shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutCtx); err != nil {
				s.log.Warn("shutdown", slog.Any("err", err))
			}
			if _, err := s.flush(shutCtx, cfg.Storage.HistoryKeep); err != nil {
				return fmt.Errorf("final autosave: %w", err)
			}
			tel.Flush(shutCtx)
			return nil
		}
	}
}

// telemetryConfig reads the telemetry environment; the config file may also opt in.
func telemetryConfig(cfg config.AppConfig) telemetry.Config {
	tcfg := telemetry.FromEnv()
	tcfg.OptIn = tcfg.OptIn || cfg.General.TelemetryOptIn
	return tcfg
}

// logNotifier routes session notifications into the log.
type logNotifier struct{ l *slog.Logger }

func (n logNotifier) Notify(msg string) { n.l.Info(msg) }
