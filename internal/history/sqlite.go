package history

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const defaultDBName = "nikkei-bot.db"

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore keeps values in a single SQLite table.
type SQLiteStore struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// OpenSQLite opens (creating if needed) the database at path and migrates
// it to the latest schema.
func OpenSQLite(path string, logger *zap.Logger) (*SQLiteStore, error) {
	if path == "" {
		path = filepath.Join(os.TempDir(), historyDirName, defaultDBName)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	s := &SQLiteStore{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	driver, err := sqlite3.WithInstance(s.db.DB, &sqlite3.Config{
		MigrationsTable: "migrations",
	})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			s.logger.Debug("nothing to migrate")
			return nil
		}
		return err
	}
	s.logger.Info("migrated database to the latest version")
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, key Key) (int64, bool, error) {
	var value int64
	err := s.db.GetContext(ctx, &value,
		`SELECT value FROM watermarks WHERE domain = ? AND field = ?`,
		key.Domain, key.Field)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key Key, value int64) error {
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO watermarks (domain, field, value, updated_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (domain, field) DO UPDATE SET
		value = excluded.value,
		updated_at = excluded.updated_at`,
		key.Domain, key.Field, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
