/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package telemetry reports anonymous, opt-in designer usage: session starts, commit
// counts per kind and breakpoint, publishes and exports. Entity ids, positions and
// layout contents never leave the process. Crash reports are uploaded separately.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	applog "labdesigner/internal/log"
	"labdesigner/internal/version"
)

// Config is read from the environment by FromEnv:
//
//	LBD_TELEMETRY_OPT_IN      1|true|yes|on enables reporting
//	LBD_TELEMETRY_URL         endpoint receiving JSON events
//	LBD_CRASH_UPLOAD_URL      endpoint receiving crash reports
//	LBD_TELEMETRY_TIMEOUT_MS  per-request timeout, default 1500
//	LBD_TELEMETRY_DEBUG       log every send
//
// Without a URL nothing is sent even when opted in.
type Config struct {
	OptIn     bool
	EventsURL string
	CrashURL  string
	Timeout   time.Duration
	Debug     bool
}

func FromEnv() Config {
	cfg := Config{
		OptIn:     truthy(os.Getenv("LBD_TELEMETRY_OPT_IN")),
		EventsURL: strings.TrimSpace(os.Getenv("LBD_TELEMETRY_URL")),
		CrashURL:  strings.TrimSpace(os.Getenv("LBD_CRASH_UPLOAD_URL")),
		Timeout:   1500 * time.Millisecond,
		Debug:     os.Getenv("LBD_TELEMETRY_DEBUG") != "",
	}
	if ms := strings.TrimSpace(os.Getenv("LBD_TELEMETRY_TIMEOUT_MS")); ms != "" {
		if d, err := time.ParseDuration(ms + "ms"); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	return cfg
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// Event names.
const (
	EventSessionStart = "session_start"
	EventCommits      = "layout_commits"
	EventPublish      = "layout_publish"
	EventExport       = "layout_export"
)

// Event is the JSON body posted to the events endpoint.
type Event struct {
	Name    string         `json:"name"`
	TS      time.Time      `json:"ts"`
	Version string         `json:"version"`
	OS      string         `json:"os"`
	Arch    string         `json:"arch"`
	Props   map[string]any `json:"props,omitempty"`
}

type commitKey struct{ kind, bp string }

// item is an event to send or, when ack is set, a flush marker.
type item struct {
	ev  Event
	ack chan struct{}
}

// Client sends events from one background goroutine and drops them when the queue
// is full. A nil or disabled Client accepts every call and sends nothing.
type Client struct {
	cfg  Config
	http *http.Client
	log  *slog.Logger
	now  func() time.Time

	q       chan item
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once

	mu      sync.Mutex
	closed  bool
	commits map[commitKey]int
}

func New(cfg Config) *Client {
	c := &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		log:     applog.WithComponent("telemetry"),
		now:     time.Now,
		q:       make(chan item, 64),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		commits: make(map[commitKey]int),
	}
	if c.Enabled() {
		go c.loop()
	} else {
		close(c.stopped)
	}
	return c
}

// Enabled reports whether the user opted in and an endpoint is configured.
func (c *Client) Enabled() bool { return c != nil && c.cfg.OptIn && c.cfg.EventsURL != "" }

// SessionStart reports a designer session coming up on bp.
func (c *Client) SessionStart(bp string, designMode bool) {
	c.enqueue(EventSessionStart, map[string]any{"bp": bp, "design": designMode})
}

// Commit counts one committed edit. Counts go out as a single summary on Report.
func (c *Client) Commit(kind, bp string) {
	if !c.Enabled() {
		return
	}
	c.mu.Lock()
	c.commits[commitKey{kind, bp}]++
	c.mu.Unlock()
}

// Publish reports a layout published under version.
func (c *Client) Publish(version int64) {
	c.enqueue(EventPublish, map[string]any{"version": version})
}

// Export reports a blueprint rendered in format.
func (c *Client) Export(format string) {
	c.enqueue(EventExport, map[string]any{"format": format})
}

// Report queues the commit counts gathered since the last report, if any.
func (c *Client) Report() {
	if !c.Enabled() {
		return
	}
	c.mu.Lock()
	counts := make(map[string]int, len(c.commits))
	for k, n := range c.commits {
		counts[k.kind+"/"+k.bp] = n
	}
	clear(c.commits)
	c.mu.Unlock()
	if len(counts) == 0 {
		return
	}
	c.enqueue(EventCommits, map[string]any{"counts": counts})
}

// Flush reports pending commit counts and waits until the events queued before it are
// sent or ctx ends.
func (c *Client) Flush(ctx context.Context) {
	if !c.Enabled() {
		return
	}
	c.Report()
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return
	}
	ack := make(chan struct{})
	select {
	case c.q <- item{ack: ack}:
	case <-c.done:
		return
	case <-ctx.Done():
		return
	}
	select {
	case <-ack:
	case <-ctx.Done():
	}
}

// Close stops the sender. Events still queued are dropped.
func (c *Client) Close() {
	if c == nil {
		return
	}
	c.once.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		close(c.done)
	})
	<-c.stopped
}

func (c *Client) enqueue(name string, props map[string]any) {
	if !c.Enabled() {
		return
	}
	ev := Event{Name: name, TS: c.now().UTC(), Version: version.String(), OS: runtime.GOOS, Arch: runtime.GOARCH, Props: props}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.q <- item{ev: ev}:
	default:
		if c.cfg.Debug {
			c.log.Debug("event dropped", slog.String("event", name))
		}
	}
}

func (c *Client) loop() {
	defer close(c.stopped)
	for {
		select {
		case <-c.done:
			for {
				select {
				case it := <-c.q:
					if it.ack != nil {
						close(it.ack)
					}
				default:
					return
				}
			}
		case it := <-c.q:
			if it.ack != nil {
				close(it.ack)
				continue
			}
			c.send(it.ev)
		}
	}
}

func (c *Client) send(ev Event) {
	body, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := post(c.http, c.cfg.EventsURL, "application/json", body); err != nil {
		if c.cfg.Debug {
			c.log.Debug("send failed", slog.String("event", ev.Name), slog.Any("err", err))
		}
		return
	}
	if c.cfg.Debug {
		c.log.Debug("sent", slog.String("event", ev.Name))
	}
}

// UploadCrash posts a crash report to the configured crash endpoint when the user
// opted in. It blocks for at most the configured timeout; the caller is about to exit.
func UploadCrash(cfg Config, report []byte) error {
	if !cfg.OptIn || cfg.CrashURL == "" {
		return nil
	}
	return post(&http.Client{Timeout: cfg.Timeout}, cfg.CrashURL, "text/plain; charset=utf-8", report)
}

func post(cli *http.Client, url, contentType string, body []byte) error {
	resp, err := cli.Post(url, contentType, bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("telemetry: %s", resp.Status)
	}
	return nil
}

// CountKeys lists the kind/breakpoint pairs counted since the last report, sorted.
func (c *Client) CountKeys() []string {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.commits))
	for k := range c.commits {
		keys = append(keys, k.kind+"/"+k.bp)
	}
	sort.Strings(keys)
	return keys
}
