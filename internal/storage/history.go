/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"labdesigner/internal/domain"
	applog "labdesigner/internal/log"
	"labdesigner/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// HistoryDirName holds per-layout disposable data next to the layout file.
	HistoryDirName  = ".lbd"
	HistoryFileName = "history.sqlite"

	// schemaVersion tracks the local SQLite schema of the history database.
	schemaVersion = 2

	// tsLayout is fixed width so that text ordering matches time ordering.
	tsLayout = "2006-01-02T15:04:05.000000000Z"
)

// HistoryPath returns the full path of the history database under dir.
func HistoryPath(dir string) string {
	return filepath.Join(dir, HistoryDirName, HistoryFileName)
}

// HistoryEntry is one stored snapshot document.
type HistoryEntry struct {
	ID         int64
	Breakpoint domain.Breakpoint
	TS         time.Time
	Doc        []byte
}

// History is the embedded snapshot history. It is safe for concurrent use.
type History struct {
	db   *sql.DB
	path string
	log  *slog.Logger
}

// OpenHistory ensures that <dir>/.lbd/history.sqlite exists, opens it in WAL mode and
// brings its schema up to date.
func OpenHistory(dir string) (*History, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "history_open").With(slog.String("dir", dir))
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("history dir is required")
	}
	if err := os.MkdirAll(filepath.Join(dir, HistoryDirName), 0o755); err != nil {
		l.Error("create .lbd dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create .lbd dir: %w", err)
	}

	path := HistoryPath(dir)
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	if err := ensureHistorySchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure history schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}
	l.Debug("history ready", slog.String("path", path))
	return &History{db: db, path: path, log: applog.WithComponent("storage")}, nil
}

// Path returns the database file path.
func (h *History) Path() string { return h.path }

func (h *History) Close() error { return h.db.Close() }

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var curSchema int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&curSchema)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		// Keep the existing schema number; migrations move it forward.
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

func ensureHistorySchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			id         INTEGER PRIMARY KEY,
			breakpoint TEXT    NOT NULL,
			ts         TEXT    NOT NULL,
			doc        BLOB    NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure history schema: %w", err)
		}
	}
	return nil
}

// runMigrations applies incremental schema migrations up to schemaVersion.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for cur < schemaVersion {
		next := cur + 1
		var stmts []string
		switch next {
		case 2:
			stmts = []string{`CREATE INDEX IF NOT EXISTS idx_snapshots_bp_ts ON snapshots(breakpoint, ts);`}
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		for _, q := range stmts {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d stmt failed: %w", next, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d update version: %w", next, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d commit: %w", next, err)
		}
		cur = next
	}
	return nil
}

// language=SQL
// dialect=SQLite
const insertSnapshotSQL = `INSERT INTO snapshots(breakpoint, ts, doc) VALUES (?, ?, ?)`

// language=SQL
// dialect=SQLite
const selectLatestSnapshotSQL = `SELECT id, breakpoint, ts, doc FROM snapshots WHERE breakpoint = ? ORDER BY ts DESC, id DESC LIMIT 1`

// language=SQL
// dialect=SQLite
const listSnapshotsSQL = `SELECT id, breakpoint, ts, doc FROM snapshots WHERE breakpoint = ? ORDER BY ts DESC, id DESC LIMIT ?`

// language=SQL
// dialect=SQLite
const pruneOldSnapshotsSQL = `DELETE FROM snapshots WHERE breakpoint = ? AND id NOT IN (
	SELECT id FROM snapshots WHERE breakpoint = ? ORDER BY ts DESC, id DESC LIMIT ?
)`

// Record stores one snapshot document for bp.
func (h *History) Record(ctx context.Context, bp domain.Breakpoint, doc []byte, ts time.Time) error {
	if _, err := h.db.ExecContext(ctx, insertSnapshotSQL, string(bp), ts.UTC().Format(tsLayout), doc); err != nil {
		h.log.Error("record snapshot failed", slog.String("bp", bp.String()), slog.Any("err", err))
		return fmt.Errorf("record snapshot: %w", err)
	}
	return nil
}

// Latest returns the newest snapshot for bp; ok is false when there is none.
func (h *History) Latest(ctx context.Context, bp domain.Breakpoint) (HistoryEntry, bool, error) {
	e, err := scanEntry(h.db.QueryRowContext(ctx, selectLatestSnapshotSQL, string(bp)))
	if errors.Is(err, sql.ErrNoRows) {
		return HistoryEntry{}, false, nil
	}
	if err != nil {
		return HistoryEntry{}, false, err
	}
	return e, true, nil
}

// List returns up to limit most recent snapshots for bp, newest first.
func (h *History) List(ctx context.Context, bp domain.Breakpoint, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := h.db.QueryContext(ctx, listSnapshotsSQL, string(bp), limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []HistoryEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Prune keeps at most keepLast snapshots for bp and deletes older ones.
func (h *History) Prune(ctx context.Context, bp domain.Breakpoint, keepLast int) (int64, error) {
	if keepLast <= 0 {
		return 0, nil
	}
	res, err := h.db.ExecContext(ctx, pruneOldSnapshotsSQL, string(bp), string(bp), keepLast)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(r rowScanner) (HistoryEntry, error) {
	var (
		e     HistoryEntry
		bp    string
		tsStr string
	)
	if err := r.Scan(&e.ID, &bp, &tsStr, &e.Doc); err != nil {
		return HistoryEntry{}, err
	}
	e.Breakpoint = domain.Breakpoint(bp)
	e.TS, _ = time.Parse(tsLayout, tsStr) // keep the blob even if ts is unreadable
	return e, nil
}

// RecoverHistory opens the history under dir. If the database is unreadable or fails
// an integrity check, it is copied to .lbd/backups and recreated empty. It reports
// whether a rebuild happened.
func RecoverHistory(ctx context.Context, dir string) (*History, bool, error) {
	path := HistoryPath(dir)
	h, err := OpenHistory(dir)
	if err == nil {
		var chk string
		qerr := h.db.QueryRowContext(ctx, `PRAGMA quick_check;`).Scan(&chk)
		if qerr == nil && strings.Contains(strings.ToLower(chk), "ok") {
			return h, false, nil
		}
		_ = h.Close()
	}
	backupHistoryFile(path)
	for _, suffix := range []string{"", "-wal", "-shm"} {
		_ = os.Remove(path + suffix)
	}
	h, err = OpenHistory(dir)
	if err != nil {
		return nil, false, fmt.Errorf("recreate history: %w", err)
	}
	applog.WithComponent("storage").Warn("history rebuilt", slog.String("path", path))
	return h, true, nil
}

// backupHistoryFile copies the database file into a timestamped backup in .lbd/backups.
func backupHistoryFile(path string) {
	bdir := filepath.Join(filepath.Dir(path), "backups")
	_ = os.MkdirAll(bdir, 0o755)
	stamp := time.Now().Format("20060102-150405")
	bak := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", filepath.Base(path), stamp))
	if data, err := os.ReadFile(path); err == nil {
		_ = os.WriteFile(bak, data, 0o644)
	}
}
