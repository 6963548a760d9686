// Package store persists books and their resolved catalogs in SQLite or
// MySQL.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const (
	DriverSQLite = "sqlite3"
	DriverMySQL  = "mysql"
)

var (
	ErrBookNotFound = errors.New("book not found")
	// ErrNoDatabase is returned by a read-only Open when the sqlite file
	// does not exist yet.
	ErrNoDatabase = errors.New("database does not exist")
	ErrReadOnly   = errors.New("store is read-only")
)

type Option func(*Store)

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// ReadOnly opens the store for lookups only. Nothing is created on disk and
// Migrate and SaveCatalog fail with ErrReadOnly.
func ReadOnly() Option {
	return func(s *Store) {
		s.readOnly = true
	}
}

type Store struct {
	db       *sql.DB
	driver   string
	readOnly bool
	logger   *zap.Logger
}

// Open connects to the database. For sqlite3 the dsn is a file path and
// its directory is created when missing, unless the store is ReadOnly.
func Open(driver, dsn string, opts ...Option) (*Store, error) {
	s := &Store{driver: driver, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	var err error
	switch driver {
	case DriverSQLite:
		s.db, err = openSQLite(dsn, s.readOnly)
	case DriverMySQL:
		s.db, err = openMySQL(dsn)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Debug("database opened", zap.String("driver", driver), zap.Bool("read_only", s.readOnly))

	return s, nil
}

func openSQLite(dsn string, readOnly bool) (*sql.DB, error) {
	if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if readOnly {
			if _, err := os.Stat(dsn); errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrNoDatabase, dsn)
			}
		} else if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("ensure data dir: %w", err)
		}
	}

	db, err := sql.Open(DriverSQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer keeps sqlite from returning SQLITE_BUSY inside transactions
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma foreign_keys: %w", err)
	}
	if !readOnly {
		if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("pragma journal_mode: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

func openMySQL(dsn string) (*sql.DB, error) {
	db, err := sql.Open(DriverMySQL, dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(16)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}

	return db, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS books (
		book_url VARCHAR(512) NOT NULL PRIMARY KEY,
		toc_url TEXT,
		name TEXT,
		origin TEXT,
		reverse_toc INTEGER NOT NULL DEFAULT 0,
		latest_chapter_title TEXT,
		current_chapter_title TEXT,
		current_chapter_index INTEGER NOT NULL DEFAULT 0,
		total_chapter_count INTEGER NOT NULL DEFAULT 0,
		last_check_count INTEGER NOT NULL DEFAULT 0,
		latest_chapter_time BIGINT NOT NULL DEFAULT 0,
		last_check_time BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS chapters (
		book_url VARCHAR(512) NOT NULL,
		idx INTEGER NOT NULL,
		title TEXT NOT NULL,
		url TEXT NOT NULL,
		page_url TEXT,
		tag TEXT,
		is_vip INTEGER NOT NULL DEFAULT 0,
		is_pay INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (book_url, idx)
	)`,
}

// Migrate creates the tables when they do not exist yet. Statements run one
// at a time since the mysql driver rejects multi-statement strings.
func (s *Store) Migrate(ctx context.Context) error {
	if s.readOnly {
		return ErrReadOnly
	}

	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	return nil
}
