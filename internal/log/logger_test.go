/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitWritesJSONFileWithDesignerContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labdesigner.log")
	var console bytes.Buffer
	Init(Options{Level: "debug", File: path, Console: &console})
	t.Cleanup(func() { _ = Close() })

	ctx := WithEntity(WithBreakpoint(WithRequestID(context.Background(), "req-7"), "mobile"), "pegboard")
	WithOperation(WithComponent("backend"), "drag").InfoContext(ctx, "commit", slog.Float64("x", 12.5))
	if err := Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log file: %v", err)
	}
	defer f.Close()
	var last string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" {
			last = s
		}
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("last line is not JSON: %q: %v", last, err)
	}
	want := map[string]any{
		"app": "labdesigner", "component": "backend", "op": "drag", "msg": "commit",
		"req_id": "req-7", "bp": "mobile", "entity": "pegboard", "x": 12.5,
	}
	for k, v := range want {
		if m[k] != v {
			t.Fatalf("%s = %v, want %v (line %s)", k, m[k], v, last)
		}
	}
	if !strings.Contains(console.String(), "INF [backend] commit") {
		t.Fatalf("console line missing: %q", console.String())
	}
}

func TestFromEnv(t *testing.T) {
	for _, k := range []string{"LBD_LOG_LEVEL", "LBD_LOG_FORMAT", "LBD_LOG_SOURCE", "LBD_LOG_FILE"} {
		t.Setenv(k, "")
	}
	if got := FromEnv(); got.Level != "info" || got.Format != "console" || got.AddSource || got.File != "" {
		t.Fatalf("defaults = %+v", got)
	}
	t.Setenv("LBD_LOG_LEVEL", "warn")
	t.Setenv("LBD_LOG_FORMAT", "json")
	t.Setenv("LBD_LOG_SOURCE", "TRUE")
	t.Setenv("LBD_LOG_FILE", "/tmp/x.log")
	if got := FromEnv(); got.Level != "warn" || got.Format != "json" || !got.AddSource || got.File != "/tmp/x.log" {
		t.Fatalf("overrides = %+v", got)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug, " WARN ": slog.LevelWarn, "warning": slog.LevelWarn,
		"error": slog.LevelError, "": slog.LevelInfo, "chatty": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestConsoleHandlerLine(t *testing.T) {
	var buf bytes.Buffer
	h := newConsoleHandler(&buf, slog.LevelWarn, false)
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("info passed a warn handler")
	}
	l := slog.New(h).With(slog.String("component", "resize")).WithGroup("size")
	l.Error("clamped", "w", 100, "ratio", 0.25, "note", "below floor", "empty", "")
	l.Info("dropped")

	out := buf.String()
	if strings.Count(out, "\n") != 1 {
		t.Fatalf("expected one line, got %q", out)
	}
	for _, want := range []string{" ERR [resize] clamped", " size.w=100", " size.ratio=0.25", ` size.note="below floor"`, ` size.empty=""`} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
}

func TestConsoleHandlerFlattensGroups(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(newConsoleHandler(&buf, slog.LevelDebug, false))
	l.Debug("viewport", slog.Group("vp", slog.Int("w", 1440), slog.Int("h", 900)), slog.Any("err", os.ErrNotExist))
	out := buf.String()
	if !strings.Contains(out, "DBG viewport vp.w=1440 vp.h=900") {
		t.Fatalf("group not flattened: %q", out)
	}
	if !strings.Contains(out, `err="file does not exist"`) {
		t.Fatalf("error not rendered: %q", out)
	}
}

func TestContextHandlerSkipsEmptyValues(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(contextHandler{next: newConsoleHandler(&buf, slog.LevelInfo, false)})
	l.InfoContext(WithEntity(context.Background(), "labNote"), "select")
	out := buf.String()
	if !strings.Contains(out, "entity=labNote") || strings.Contains(out, "bp=") || strings.Contains(out, "req_id=") {
		t.Fatalf("context attrs = %q", out)
	}
}

func TestFanoutHonoursEachLevel(t *testing.T) {
	var quiet, loud bytes.Buffer
	l := slog.New(fanout{
		newConsoleHandler(&quiet, slog.LevelError, false),
		newConsoleHandler(&loud, slog.LevelDebug, false),
	})
	l.Info("flush", "entries", 3)
	if quiet.Len() != 0 {
		t.Fatalf("error-level sink got info: %q", quiet.String())
	}
	if !strings.Contains(loud.String(), "flush entries=3") {
		t.Fatalf("debug-level sink missed info: %q", loud.String())
	}
}
