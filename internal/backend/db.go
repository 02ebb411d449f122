/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package backend

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"labdesigner/internal/domain"
	applog "labdesigner/internal/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PGStore is a PublishedStore backed by PostgreSQL through the pgx stdlib driver.
type PGStore struct {
	db  *sql.DB
	log *slog.Logger
}

// OpenPG connects to dsn, pings the server and applies the embedded migrations.
func OpenPG(ctx context.Context, dsn string) (*PGStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	pctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	s := &PGStore{db: db, log: applog.WithComponent("backend.pg")}
	if err := s.applyMigrations(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// DB exposes the underlying handle.
func (s *PGStore) DB() *sql.DB { return s.db }

func (s *PGStore) Close() error { return s.db.Close() }

func (s *PGStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Publish stores doc as the next version inside one transaction.
func (s *PGStore) Publish(ctx context.Context, subject string, doc domain.Document) (Published, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return Published{}, fmt.Errorf("marshal document: %w", err)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Published{}, err
	}
	defer func() { _ = tx.Rollback() }()

	// serialise concurrent publishers on the version sequence
	if _, err := tx.ExecContext(ctx, `LOCK TABLE published_layouts IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return Published{}, fmt.Errorf("lock: %w", err)
	}
	var next int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) + 1 FROM published_layouts`).Scan(&next); err != nil {
		return Published{}, fmt.Errorf("next version: %w", err)
	}
	var created time.Time
	if err := tx.QueryRowContext(ctx,
		`INSERT INTO published_layouts(version, subject, document) VALUES($1, $2, $3) RETURNING created_at`,
		next, subject, string(b)).Scan(&created); err != nil {
		return Published{}, fmt.Errorf("insert: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Published{}, err
	}
	s.log.Info("layout published", slog.Int64("version", next), slog.String("subject", subject))
	return Published{Version: next, Subject: subject, CreatedAt: created.UTC(), Document: doc}, nil
}

// Latest returns the highest published version.
func (s *PGStore) Latest(ctx context.Context) (Published, error) {
	var (
		p   Published
		raw []byte
	)
	row := s.db.QueryRowContext(ctx, `SELECT version, subject, document, created_at FROM published_layouts ORDER BY version DESC, id DESC LIMIT 1`)
	switch err := row.Scan(&p.Version, &p.Subject, &raw, &p.CreatedAt); {
	case errors.Is(err, sql.ErrNoRows):
		return Published{}, ErrNoPublished
	case err != nil:
		return Published{}, err
	}
	if err := json.Unmarshal(raw, &p.Document); err != nil {
		return Published{}, fmt.Errorf("decode document v%d: %w", p.Version, err)
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return p, nil
}

// applyMigrations applies embedded SQL migrations in filename order.
func (s *PGStore) applyMigrations(ctx context.Context) error {
	files, err := migrationFiles()
	if err != nil {
		return err
	}

	// ensure table exists for explicit versioning as well
	// dialect=PostreSQL
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	applied := map[int64]bool{}
	rows, err := s.db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("select schema_migrations: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.log.Warn("rows close", slog.Any("err", err))
		}
	}()
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return err
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, fname := range files {
		version, err := parseVersion(fname)
		if err != nil {
			return err
		}
		if applied[version] {
			continue
		}
		b, err := migrationsFS.ReadFile(path.Join("migrations", fname))
		if err != nil {
			return err
		}
		sqlText := string(b)
		if strings.TrimSpace(sqlText) == "" {
			continue
		}
		s.log.Info("applying migration", slog.String("file", fname))
		if _, err := s.db.ExecContext(ctx, sqlText); err != nil {
			return fmt.Errorf("apply %s: %w", fname, err)
		}
	}
	return nil
}

func migrationFiles() ([]string, error) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(strings.ToLower(name), ".sql") {
			files = append(files, name)
		}
	}
	sort.Strings(files)
	return files, nil
}

func parseVersion(name string) (int64, error) {
	base := path.Base(name)
	parts := strings.SplitN(base, "_", 2)
	if len(parts) < 2 {
		return 0, errors.New("invalid migration filename: " + name)
	}
	v, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse version from %s: %w", name, err)
	}
	return v, nil
}
