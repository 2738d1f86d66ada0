package testhelpers

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const migrationsTable = "schema_migrations_test"

// ApplyMigrations применяет *.up.sql из каталога по порядку имён.
// Уже применённые файлы пропускаются, поэтому повторный запуск безопасен.
func ApplyMigrations(ctx context.Context, db *sql.DB, migrationsPath string) ([]string, error) {
	if _, err := db.ExecContext(ctx,
		"CREATE TABLE IF NOT EXISTS "+migrationsTable+" (name TEXT PRIMARY KEY, applied_at TIMESTAMPTZ NOT NULL DEFAULT now())",
	); err != nil {
		return nil, fmt.Errorf("create migrations table: %w", err)
	}

	files, err := migrationFiles(migrationsPath, ".up.sql")
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, file := range files {
		var exists bool
		err := db.QueryRowContext(ctx,
			"SELECT EXISTS (SELECT 1 FROM "+migrationsTable+" WHERE name = $1)", file,
		).Scan(&exists)
		if err != nil {
			return applied, fmt.Errorf("check migration %s: %w", file, err)
		}
		if exists {
			continue
		}

		content, err := os.ReadFile(filepath.Join(migrationsPath, file))
		if err != nil {
			return applied, fmt.Errorf("read migration %s: %w", file, err)
		}
		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return applied, fmt.Errorf("apply migration %s: %w", file, err)
		}
		if _, err := db.ExecContext(ctx, "INSERT INTO "+migrationsTable+" (name) VALUES ($1)", file); err != nil {
			return applied, fmt.Errorf("record migration %s: %w", file, err)
		}
		applied = append(applied, file)
	}

	return applied, nil
}

// RollbackMigrations применяет *.down.sql в обратном порядке и очищает журнал
func RollbackMigrations(ctx context.Context, db *sql.DB, migrationsPath string) error {
	files, err := migrationFiles(migrationsPath, ".down.sql")
	if err != nil {
		return err
	}

	for i := len(files) - 1; i >= 0; i-- {
		content, err := os.ReadFile(filepath.Join(migrationsPath, files[i]))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", files[i], err)
		}
		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("rollback migration %s: %w", files[i], err)
		}
	}

	if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+migrationsTable); err != nil {
		return fmt.Errorf("drop migrations table: %w", err)
	}
	return nil
}

func migrationFiles(dir, suffix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), suffix) {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}
