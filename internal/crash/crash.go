/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic into a crash report plus emergency copies of the layouts.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	"labdesigner/internal/domain"
	applog "labdesigner/internal/log"
	"labdesigner/internal/storage"
	"labdesigner/internal/telemetry"
	"labdesigner/internal/version"
)

var (
	exitFn = os.Exit
	now    = time.Now
)

// Recover must be deferred directly: it handles a panic by logging it, writing a
// report next to the layouts (or in the temp dir when layouts is nil), snapshotting
// the last saved document of each breakpoint and exiting with status 2. The report
// is uploaded when upload is opted in.
//
//	defer crash.Recover(layouts, telemetry.FromEnv())
func Recover(layouts *storage.LayoutSet, upload telemetry.Config) {
	r := recover()
	if r == nil {
		return
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	report := buildReport(layouts, r, stack)
	path, err := writeReport(reportDir(layouts), report)
	if err != nil {
		l.Error("crash report not written", slog.String("path", path), slog.Any("err", err))
	}
	for _, snap := range snapshotLayouts(layouts) {
		l.Info("crash snapshot written", slog.String("path", snap))
	}
	if err := telemetry.UploadCrash(upload, report); err != nil {
		l.Warn("crash upload failed", slog.Any("err", err))
	}

	fmt.Fprintf(os.Stderr, "labdesigner crashed. Report: %s\nVersion: %s (%s/%s)\n", path, version.String(), runtime.GOOS, runtime.GOARCH)
	exitFn(2)
}

func reportDir(layouts *storage.LayoutSet) string {
	if layouts == nil || layouts.Desktop == nil || layouts.Desktop.Path == "" {
		return os.TempDir()
	}
	return layouts.Desktop.BackupsDir()
}

func buildReport(layouts *storage.LayoutSet, panicVal any, stack []byte) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Lab Designer Crash Report\n")
	fmt.Fprintf(&buf, "Timestamp: %s\n", now().Format(time.RFC3339))
	fmt.Fprintf(&buf, "Version: %s\n", version.String())
	fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if layouts != nil {
		for _, bp := range []domain.Breakpoint{domain.Desktop, domain.Mobile} {
			h := layouts.For(bp)
			if h == nil {
				continue
			}
			fmt.Fprintf(&buf, "Layout %s: %s (%d entities, %d clouds)\n", bp, filepath.Base(h.Path), len(h.Doc.UI), len(h.Doc.Clouds))
		}
	}
	fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	fmt.Fprintf(&buf, "Stack:\n%s\n", stack)
	return buf.Bytes()
}

func writeReport(dir string, report []byte) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("crash-%s.log", now().Format("20060102-150405")))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return path, err
	}
	return path, os.WriteFile(path, report, 0o644)
}

func snapshotLayouts(layouts *storage.LayoutSet) []string {
	if layouts == nil {
		return nil
	}
	var out []string
	for _, bp := range []domain.Breakpoint{domain.Desktop, domain.Mobile} {
		h := layouts.For(bp)
		if h == nil || h.Path == "" {
			continue
		}
		path, err := storage.AutosaveCrashSnapshot(h)
		if err != nil {
			applog.WithComponent("crash").Error("crash snapshot failed", slog.String("bp", bp.String()), slog.Any("err", err))
			continue
		}
		out = append(out, path)
	}
	return out
}
