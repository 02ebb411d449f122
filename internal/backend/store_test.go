/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package backend

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"labdesigner/internal/domain"
)

func sampleDoc() domain.Document {
	return domain.Document{
		Clouds: domain.DesktopClouds(),
		UI:     domain.DesktopLayout(),
	}
}

func TestMemoryStoreVersions(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	if _, err := m.Latest(ctx); !errors.Is(err, ErrNoPublished) {
		t.Fatalf("empty store: %v", err)
	}
	doc := sampleDoc()
	p1, _ := m.Publish(ctx, "a", doc)
	p2, _ := m.Publish(ctx, "b", doc)
	if p1.Version != 1 || p2.Version != 2 {
		t.Fatalf("versions = %d, %d", p1.Version, p2.Version)
	}
	got, err := m.Latest(ctx)
	if err != nil || got.Version != 2 || got.Subject != "b" {
		t.Fatalf("latest = %+v, %v", got, err)
	}
}

func TestMemoryStoreIsolatesDocuments(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	doc := sampleDoc()
	if _, err := m.Publish(ctx, "", doc); err != nil {
		t.Fatal(err)
	}
	rec := doc.UI[domain.HeroTitle]
	rec.X = 12345
	doc.UI[domain.HeroTitle] = rec
	doc.Clouds[0].X = 999

	got, _ := m.Latest(ctx)
	if got.Document.UI[domain.HeroTitle].X == 12345 || got.Document.Clouds[0].X == 999 {
		t.Fatalf("stored document aliased the caller's maps")
	}
}

func TestParseVersion(t *testing.T) {
	v, err := parseVersion("migrations/0002_published_version_index.sql")
	if err != nil || v != 2 {
		t.Fatalf("parseVersion = %d, %v", v, err)
	}
	if _, err := parseVersion("nounderscore.sql"); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := parseVersion("abc_x.sql"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestEmbeddedMigrationsAreOrdered(t *testing.T) {
	files, err := migrationFiles()
	if err != nil {
		t.Fatalf("migrationFiles: %v", err)
	}
	if len(files) < 2 {
		t.Fatalf("expected embedded migrations, got %v", files)
	}
	prev := int64(0)
	for _, f := range files {
		v, err := parseVersion(f)
		if err != nil {
			t.Fatal(err)
		}
		if v <= prev {
			t.Fatalf("migration %s out of order", f)
		}
		prev = v
	}
}

// openPGForTest connects to LBD_TEST_PG_DSN and skips when it is not set or unreachable.
func openPGForTest(t *testing.T) *PGStore {
	t.Helper()
	dsn := os.Getenv("LBD_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("LBD_TEST_PG_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s, err := OpenPG(ctx, dsn)
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}
	t.Cleanup(func() {
		_, _ = s.DB().Exec(`DELETE FROM published_layouts`)
		_ = s.Close()
	})
	return s
}

func TestPGStorePublishLatest(t *testing.T) {
	s := openPGForTest(t)
	ctx := context.Background()
	if _, err := s.DB().ExecContext(ctx, `DELETE FROM published_layouts`); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := s.Latest(ctx); !errors.Is(err, ErrNoPublished) {
		t.Fatalf("empty table: %v", err)
	}
	doc := sampleDoc()
	if _, err := s.Publish(ctx, "a", doc); err != nil {
		t.Fatalf("publish: %v", err)
	}
	p, err := s.Publish(ctx, "b", doc)
	if err != nil || p.Version != 2 {
		t.Fatalf("publish 2 = %+v, %v", p, err)
	}
	got, err := s.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if got.Version != 2 || got.Subject != "b" || len(got.Document.Clouds) != len(doc.Clouds) {
		t.Fatalf("latest = %+v", got)
	}
	if got.Document.UI[domain.Pegboard].W == nil || *got.Document.UI[domain.Pegboard].W != *doc.UI[domain.Pegboard].W {
		t.Fatalf("pegboard size lost in round trip")
	}
}
