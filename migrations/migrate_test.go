// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package migrations

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	_ "github.com/mattn/go-sqlite3"
)

func TestMigrate_DBError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	_ = mock // не используем напрямую, goose сам будет ходить в DB

	err = Migrate(db)
	if err == nil {
		t.Fatal("expected error from Migrate, got nil")
	}

	if !strings.Contains(err.Error(), "migration error") {
		t.Errorf("expected wrapped migration error, got: %v", err)
	}
}

func TestMigrate_NilDB(t *testing.T) {
	var db *sql.DB

	for _, fn := range []func(*sql.DB) error{Migrate, MigrateSQLite} {
		err := fn(db)
		if err == nil {
			t.Fatal("expected error when db is nil, got nil")
		}
		if !strings.Contains(err.Error(), "db is nil") {
			t.Errorf("expected 'db is nil' error, got: %v", err)
		}
	}
}

// TestMigrateSQLite_CreatesTables прогоняет миграции на настоящем файле
// SQLite и проверяет, что таблицы кэша появились. Повторный запуск не падает.
func TestMigrateSQLite_CreatesTables(t *testing.T) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if err := MigrateSQLite(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := MigrateSQLite(db); err != nil {
		t.Fatalf("second migrate: %v", err)
	}

	for _, table := range []string{"cache_entries", "broadcast_outbox"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}
