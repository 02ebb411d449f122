/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package log configures the process-wide slog logger of labdesigner: a console
// handler for humans, an optional rotating JSON file, and designer context
// (request, breakpoint, entity) lifted from the record's context.
package log

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	lj "gopkg.in/natefinch/lumberjack.v2"

	"labdesigner/internal/version"
)

// Options controls Init. FromEnv reads them from LBD_LOG_LEVEL, LBD_LOG_FORMAT,
// LBD_LOG_SOURCE and LBD_LOG_FILE.
type Options struct {
	Level     string
	Format    string // console or json
	AddSource bool
	File      string // rotated JSON log, optional

	// Console receives console output; nil means stderr.
	Console io.Writer
}

var (
	mu      sync.RWMutex
	root    *slog.Logger
	rotator *lj.Logger
)

// L returns the process logger, initialising it from the environment on first use.
func L() *slog.Logger {
	mu.RLock()
	l := root
	mu.RUnlock()
	if l != nil {
		return l
	}
	Init(FromEnv())
	mu.RLock()
	defer mu.RUnlock()
	return root
}

// Init replaces the process logger and slog's default. A previously opened log
// file is closed.
func Init(opts Options) {
	level := parseLevel(opts.Level)
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	var sinks []slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		sinks = append(sinks, slog.NewJSONHandler(console, &slog.HandlerOptions{Level: level, AddSource: opts.AddSource}))
	} else {
		sinks = append(sinks, newConsoleHandler(console, level, opts.AddSource))
	}

	var rot *lj.Logger
	if f := strings.TrimSpace(opts.File); f != "" {
		rot = &lj.Logger{Filename: f, MaxSize: 10, MaxBackups: 3, MaxAge: 28, Compress: true}
		sinks = append(sinks, slog.NewJSONHandler(rot, &slog.HandlerOptions{Level: level, AddSource: opts.AddSource}))
	}

	var h slog.Handler = sinks[0]
	if len(sinks) > 1 {
		h = fanout(sinks)
	}
	l := slog.New(contextHandler{next: h}).With(
		slog.String("app", "labdesigner"),
		slog.String("ver", version.Version),
	)

	mu.Lock()
	prev := rotator
	root, rotator = l, rot
	mu.Unlock()
	if prev != nil {
		_ = prev.Close()
	}
	slog.SetDefault(l)
}

// Close flushes and closes the log file, if any.
func Close() error {
	mu.Lock()
	rot := rotator
	rotator = nil
	mu.Unlock()
	if rot == nil {
		return nil
	}
	return rot.Close()
}

// FromEnv reads Options from LBD_LOG_* variables. Unset values keep the defaults:
// info level, console format, no source, no file.
func FromEnv() Options {
	opts := Options{Level: "info", Format: "console", File: os.Getenv("LBD_LOG_FILE")}
	if v := os.Getenv("LBD_LOG_LEVEL"); v != "" {
		opts.Level = v
	}
	if v := os.Getenv("LBD_LOG_FORMAT"); v != "" {
		opts.Format = v
	}
	opts.AddSource = strings.EqualFold(os.Getenv("LBD_LOG_SOURCE"), "true")
	return opts
}

// WithComponent returns the process logger tagged with a component name.
func WithComponent(name string) *slog.Logger { return L().With(slog.String(componentKey, name)) }

// WithOperation tags l with an operation name.
func WithOperation(l *slog.Logger, op string) *slog.Logger { return l.With(slog.String("op", op)) }

func parseLevel(s string) slog.Level {
	var lvl slog.Level
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	return lvl
}

// fanout sends every record to each handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
