/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"labdesigner/internal/domain"
	applog "labdesigner/internal/log"
	"labdesigner/internal/snapshot"
)

const (
	LayoutFileName = "layout.json"
	BackupsDirName = "backups"
)

// LayoutHandle keeps track of a layout document loaded/saved from disk.
// Path is the layout file; backups live in a sibling backups/ folder.
type LayoutHandle struct {
	Path string
	Doc  domain.Document
}

// Dir returns the directory holding the layout file.
func (h *LayoutHandle) Dir() string { return filepath.Dir(h.Path) }

// BackupsDir returns the folder for timestamped backups of the layout file.
func (h *LayoutHandle) BackupsDir() string { return filepath.Join(h.Dir(), BackupsDirName) }

// Create writes doc to path (creating parent folders) and returns a handle for it.
func Create(path string, doc domain.Document) (*LayoutHandle, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("layout path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create layout dir: %w", err)
	}
	h := &LayoutHandle{Path: path, Doc: doc}
	if err := Save(h); err != nil {
		return nil, err
	}
	return h, nil
}

// Open loads the layout at path. If it cannot be read or does not validate,
// the latest backup is used instead.
func Open(path string) (*LayoutHandle, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "open").With(slog.String("path", path))
	b, err := os.ReadFile(path)
	if err != nil {
		doc, berr := openFromLatestBackup(path)
		if berr != nil {
			return nil, fmt.Errorf("open layout: %w; backup attempt: %v", err, berr)
		}
		l.Warn("layout missing, restored from backup")
		return &LayoutHandle{Path: path, Doc: doc}, nil
	}
	doc, perr := snapshot.Parse(b)
	if perr != nil {
		doc, berr := openFromLatestBackup(path)
		if berr != nil {
			return nil, fmt.Errorf("parse layout: %w; backup attempt: %v", perr, berr)
		}
		l.Warn("layout corrupt, restored from backup", slog.Any("err", perr))
		return &LayoutHandle{Path: path, Doc: doc}, nil
	}
	return &LayoutHandle{Path: path, Doc: doc}, nil
}

// OpenOrCreate opens path, or creates it from def when neither the file nor a backup exists.
func OpenOrCreate(path string, def domain.Document) (*LayoutHandle, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if _, berr := openFromLatestBackup(path); berr != nil {
			return Create(path, def)
		}
	}
	return Open(path)
}

// Save writes h.Doc to disk with transactional semantics and a timestamped backup
// of the previous file (if present).
func Save(h *LayoutHandle) error {
	if h == nil {
		return errors.New("nil LayoutHandle")
	}
	if h.Path == "" {
		return errors.New("invalid LayoutHandle: missing path")
	}
	data, err := snapshot.Marshal(h.Doc)
	if err != nil {
		return fmt.Errorf("marshal layout: %w", err)
	}
	data = append(data, '\n')

	bdir := h.BackupsDir()
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}

	name := filepath.Base(h.Path)
	if _, statErr := os.Stat(h.Path); statErr == nil {
		stamp := time.Now().Format("20060102-150405.000")
		bpath := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", name, stamp))
		if cerr := copyFile(h.Path, bpath); cerr != nil {
			return fmt.Errorf("backup current layout: %w", cerr)
		}
	}

	// Transactional write: temp file in the same directory, then rename over target
	temp := filepath.Join(h.Dir(), fmt.Sprintf(".%s.tmp-%d-%d", name, os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		return fmt.Errorf("write temp layout: %w", werr)
	}
	// On Windows, replace by removing destination first if needed
	if _, err := os.Stat(h.Path); err == nil {
		_ = os.Remove(h.Path)
	}
	if rerr := os.Rename(temp, h.Path); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace layout: %w", rerr)
	}
	return nil
}

// BreakpointPath returns the layout file of bp for the workspace rooted at path.
// Desktop uses path itself; mobile uses the sibling <name>.mobile<ext>.
func BreakpointPath(path string, bp domain.Breakpoint) string {
	if bp != domain.Mobile {
		return path
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".mobile" + ext
}

// LayoutSet holds the per-breakpoint layout files of one workspace.
type LayoutSet struct {
	Desktop *LayoutHandle
	Mobile  *LayoutHandle
}

// OpenSet opens the desktop and mobile layout files of the workspace at path.
// A missing file is created from the shipped defaults of its breakpoint.
func OpenSet(path string) (*LayoutSet, error) {
	d, err := OpenOrCreate(BreakpointPath(path, domain.Desktop), domain.DefaultDocument(domain.Desktop))
	if err != nil {
		return nil, fmt.Errorf("desktop layout: %w", err)
	}
	m, err := OpenOrCreate(BreakpointPath(path, domain.Mobile), domain.DefaultDocument(domain.Mobile))
	if err != nil {
		return nil, fmt.Errorf("mobile layout: %w", err)
	}
	return &LayoutSet{Desktop: d, Mobile: m}, nil
}

// For returns the layout file of bp.
func (s *LayoutSet) For(bp domain.Breakpoint) *LayoutHandle {
	if bp == domain.Mobile {
		return s.Mobile
	}
	return s.Desktop
}

// Dir returns the workspace directory.
func (s *LayoutSet) Dir() string { return s.Desktop.Dir() }

// SaveAs writes the layout to a new path and updates the handle.
func SaveAs(h *LayoutHandle, newPath string) error {
	if h == nil {
		return errors.New("nil LayoutHandle")
	}
	if newPath == "" {
		return errors.New("new path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(newPath), 0o755); err != nil {
		return fmt.Errorf("create layout dir: %w", err)
	}
	h.Path = newPath
	return Save(h)
}

// AutosaveCrashSnapshot writes the in-memory document next to the layout file as
// <name>.crash-<stamp>.json without touching the layout file or its backups.
func AutosaveCrashSnapshot(h *LayoutHandle) (string, error) {
	if h == nil || h.Path == "" {
		return "", errors.New("nil or unnamed LayoutHandle")
	}
	data, err := snapshot.Marshal(h.Doc)
	if err != nil {
		return "", fmt.Errorf("marshal crash snapshot: %w", err)
	}
	base := strings.TrimSuffix(filepath.Base(h.Path), filepath.Ext(h.Path))
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(h.Dir(), fmt.Sprintf("%s.crash-%s.json", base, stamp))
	if err := writeFileSync(path, append(data, '\n')); err != nil {
		return "", fmt.Errorf("write crash snapshot: %w", err)
	}
	return path, nil
}

// writeFileSync writes data to a file, ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies a file from src to dst (overwrites dst if exists).
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}

// openFromLatestBackup tries the newest timestamped backup that still validates.
func openFromLatestBackup(path string) (domain.Document, error) {
	bdir := filepath.Join(filepath.Dir(path), BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return domain.Document{}, fmt.Errorf("read backups dir: %w", err)
	}
	name := filepath.Base(path)
	var candidates []string
	for _, e := range ents {
		n := e.Name()
		if strings.HasPrefix(n, name+".") && strings.HasSuffix(n, ".bak") {
			candidates = append(candidates, filepath.Join(bdir, n))
		}
	}
	if len(candidates) == 0 {
		return domain.Document{}, errors.New("no backups found")
	}
	sort.Strings(candidates) // timestamp in name yields lexicographic order
	var lastErr error
	for i := len(candidates) - 1; i >= 0; i-- {
		b, err := os.ReadFile(candidates[i])
		if err != nil {
			lastErr = err
			continue
		}
		doc, err := snapshot.Parse(b)
		if err != nil {
			lastErr = err
			continue
		}
		return doc, nil
	}
	return domain.Document{}, fmt.Errorf("no usable backup: %w", lastErr)
}
