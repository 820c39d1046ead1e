// Package storage persists catalog snapshots and the translation cache in
// SQLite or Postgres.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// Store is a catalog store backed by database/sql.
type Store struct {
	db      *sql.DB
	dialect dialect
	mu      sync.RWMutex
}

// Open connects to dsn. postgres:// and postgresql:// URLs use Postgres;
// anything else is treated as a SQLite database path.
func Open(ctx context.Context, dsn string) (*Store, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("empty database DSN")
	}

	var (
		db  *sql.DB
		d   dialect
		err error
	)
	if isPostgres(dsn) {
		d = dialectPostgres
		db, err = sql.Open("pgx", dsn)
	} else {
		d = dialectSQLite
		db, err = sql.Open("sqlite", sqliteDSN(dsn))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if d == dialectSQLite {
		// One connection avoids SQLITE_BUSY between writers in this process.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if d == dialectSQLite {
		path, _, _ := strings.Cut(dsn, "?")
		if err := os.Chmod(path, 0o600); err != nil && !os.IsNotExist(err) {
			log.Debug().Err(err).Str("path", path).Msg("failed to restrict database file permissions")
		}
	}

	store := &Store{db: db, dialect: d}
	if err := store.init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func isPostgres(dsn string) bool {
	lower := strings.ToLower(dsn)
	return strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://")
}

// sqliteDSN enables WAL and a busy timeout unless the caller passed their own
// parameters.
func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func (s *Store) Close() error {
	return s.db.Close()
}

var schema = []struct {
	name  string
	query string
}{
	{"catalog_snapshots", `
	CREATE TABLE IF NOT EXISTS catalog_snapshots (
		load_id TEXT PRIMARY KEY,
		fingerprint TEXT NOT NULL UNIQUE,
		loaded_at BIGINT NOT NULL,
		source_rows INTEGER NOT NULL,
		bad_lines INTEGER NOT NULL,
		dropped_rows INTEGER NOT NULL,
		duplicate_ids INTEGER NOT NULL,
		duplicated TEXT NOT NULL
	)`},
	{"snapshot_categories", `
	CREATE TABLE IF NOT EXISTS snapshot_categories (
		load_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		id TEXT NOT NULL,
		slug TEXT NOT NULL,
		name_ar TEXT NOT NULL,
		name_en TEXT NOT NULL,
		color_token TEXT NOT NULL,
		icon TEXT NOT NULL,
		PRIMARY KEY (load_id, position)
	)`},
	{"snapshot_brands", `
	CREATE TABLE IF NOT EXISTS snapshot_brands (
		load_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		id TEXT NOT NULL,
		slug TEXT NOT NULL,
		name_ar TEXT NOT NULL,
		name_en TEXT NOT NULL,
		description_ar TEXT NOT NULL,
		description_en TEXT NOT NULL,
		PRIMARY KEY (load_id, position)
	)`},
	{"snapshot_products", `
	CREATE TABLE IF NOT EXISTS snapshot_products (
		load_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		id TEXT NOT NULL,
		category_id TEXT NOT NULL,
		brand_id TEXT NOT NULL,
		data TEXT NOT NULL,
		PRIMARY KEY (load_id, position)
	)`},
	{"translation_cache", `
	CREATE TABLE IF NOT EXISTS translation_cache (
		source_text TEXT PRIMARY KEY,
		translated TEXT NOT NULL,
		updated_at BIGINT NOT NULL
	)`},
}

func (s *Store) init(ctx context.Context) error {
	for _, table := range schema {
		if _, err := s.db.ExecContext(ctx, table.query); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $n for Postgres.
func (s *Store) rebind(query string) string {
	if s.dialect != dialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
