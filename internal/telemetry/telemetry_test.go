/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package telemetry

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type collector struct {
	mu     sync.Mutex
	events []Event
}

func (c *collector) handler(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ev Event
		if err := json.NewDecoder(r.Body).Decode(&ev); err == nil {
			c.mu.Lock()
			c.events = append(c.events, ev)
			c.mu.Unlock()
		}
		w.WriteHeader(status)
	}
}

func (c *collector) byName(name string) []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Event
	for _, ev := range c.events {
		if ev.Name == name {
			out = append(out, ev)
		}
	}
	return out
}

func newClient(t *testing.T, status int) (*Client, *collector) {
	t.Helper()
	col := &collector{}
	srv := httptest.NewServer(col.handler(status))
	t.Cleanup(srv.Close)
	c := New(Config{OptIn: true, EventsURL: srv.URL, Timeout: time.Second})
	t.Cleanup(c.Close)
	return c, col
}

func flush(t *testing.T, c *Client) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c.Flush(ctx)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("LBD_TELEMETRY_OPT_IN", "yes")
	t.Setenv("LBD_TELEMETRY_URL", " http://events ")
	t.Setenv("LBD_CRASH_UPLOAD_URL", "http://crash")
	t.Setenv("LBD_TELEMETRY_TIMEOUT_MS", "250")
	t.Setenv("LBD_TELEMETRY_DEBUG", "1")
	cfg := FromEnv()
	if !cfg.OptIn || cfg.EventsURL != "http://events" || cfg.CrashURL != "http://crash" || !cfg.Debug {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Timeout != 250*time.Millisecond {
		t.Fatalf("timeout = %v", cfg.Timeout)
	}

	t.Setenv("LBD_TELEMETRY_OPT_IN", "nope")
	t.Setenv("LBD_TELEMETRY_TIMEOUT_MS", "-5")
	cfg = FromEnv()
	if cfg.OptIn || cfg.Timeout != 1500*time.Millisecond {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestDisabledClientSendsNothing(t *testing.T) {
	col := &collector{}
	srv := httptest.NewServer(col.handler(http.StatusOK))
	defer srv.Close()

	for _, c := range []*Client{nil, New(Config{EventsURL: srv.URL}), New(Config{OptIn: true})} {
		if c.Enabled() {
			t.Fatalf("client %+v enabled", c)
		}
		c.SessionStart("desktop", true)
		c.Commit("drag", "desktop")
		c.Publish(3)
		c.Flush(context.Background())
		c.Close()
	}
	if len(col.events) != 0 {
		t.Fatalf("events = %+v", col.events)
	}
}

func TestCommitsAreSummarisedPerKindAndBreakpoint(t *testing.T) {
	c, col := newClient(t, http.StatusOK)
	c.Commit("drag", "desktop")
	c.Commit("drag", "desktop")
	c.Commit("resize", "mobile")
	if got := c.CountKeys(); len(got) != 2 || got[0] != "drag/desktop" || got[1] != "resize/mobile" {
		t.Fatalf("keys = %v", got)
	}
	flush(t, c)

	sums := col.byName(EventCommits)
	if len(sums) != 1 {
		t.Fatalf("summaries = %+v", sums)
	}
	counts, _ := sums[0].Props["counts"].(map[string]any)
	if counts["drag/desktop"] != float64(2) || counts["resize/mobile"] != float64(1) {
		t.Fatalf("counts = %v", counts)
	}
	if len(c.CountKeys()) != 0 {
		t.Fatalf("counts not reset")
	}

	flush(t, c)
	if n := len(col.byName(EventCommits)); n != 1 {
		t.Fatalf("empty report sent a summary, got %d", n)
	}
}

func TestEventsCarryBuildInfo(t *testing.T) {
	c, col := newClient(t, http.StatusOK)
	c.SessionStart("mobile", false)
	c.Publish(7)
	c.Export("pdf")
	flush(t, c)

	start := col.byName(EventSessionStart)
	if len(start) != 1 || start[0].Props["bp"] != "mobile" || start[0].Props["design"] != false {
		t.Fatalf("session start = %+v", start)
	}
	if start[0].Version == "" || start[0].OS == "" || start[0].Arch == "" || start[0].TS.IsZero() {
		t.Fatalf("build info missing: %+v", start[0])
	}
	pub := col.byName(EventPublish)
	if len(pub) != 1 || pub[0].Props["version"] != float64(7) {
		t.Fatalf("publish = %+v", pub)
	}
	if exp := col.byName(EventExport); len(exp) != 1 || exp[0].Props["format"] != "pdf" {
		t.Fatalf("export = %+v", exp)
	}
}

func TestServerErrorsDoNotBlockFlush(t *testing.T) {
	c, col := newClient(t, http.StatusInternalServerError)
	c.Publish(1)
	flush(t, c)
	if n := len(col.byName(EventPublish)); n != 1 {
		t.Fatalf("publish attempts = %d", n)
	}
}

func TestCloseIsIdempotentAndStopsSending(t *testing.T) {
	c, col := newClient(t, http.StatusOK)
	c.Close()
	c.Close()
	c.Publish(1)
	flush(t, c)
	if n := len(col.byName(EventPublish)); n != 0 {
		t.Fatalf("sent after close: %d", n)
	}
}

func TestUploadCrash(t *testing.T) {
	var (
		mu  sync.Mutex
		got string
	)
	body := func() string {
		mu.Lock()
		defer mu.Unlock()
		return got
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		got = string(b)
		mu.Unlock()
	}))
	defer srv.Close()

	if err := UploadCrash(Config{CrashURL: srv.URL, Timeout: time.Second}, []byte("report")); err != nil || body() != "" {
		t.Fatalf("upload without opt-in: err=%v body=%q", err, body())
	}
	if err := UploadCrash(Config{OptIn: true, CrashURL: srv.URL, Timeout: time.Second}, []byte("report")); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if body() != "report" {
		t.Fatalf("body = %q", body())
	}

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer failing.Close()
	if err := UploadCrash(Config{OptIn: true, CrashURL: failing.URL, Timeout: time.Second}, []byte("x")); err == nil {
		t.Fatalf("expected error from failing endpoint")
	}
}
