package tm

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/dmitrymomot/xmlpo/pkg/catalog"
)

//go:embed migrations/*.sql
var migrations embed.FS

// goose keeps its configuration in package globals.
var migrateMu sync.Mutex

// SQLite is a translation memory stored in an SQLite database.
type SQLite struct {
	db  *sql.DB
	log *slog.Logger
}

// OpenSQLite opens or creates the database at path and applies pending
// migrations. Use ":memory:" for a throwaway memory.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLite, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Join(ErrOpen, err)
	}
	// One connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", o.busyTimeout.Milliseconds()),
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, errors.Join(ErrOpen, err)
		}
	}

	if err := migrate(ctx, db, o.log); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db, log: o.log}, nil
}

func migrate(ctx context.Context, db *sql.DB, log *slog.Logger) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(&gooseLoggerAdapter{log})
	goose.SetTableName("tm_db_version")

	if err := goose.SetDialect("sqlite3"); err != nil {
		return errors.Join(ErrSetDialect, err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return errors.Join(ErrApplyMigrations, err)
	}
	return nil
}

type gooseLoggerAdapter struct {
	log *slog.Logger
}

func (g *gooseLoggerAdapter) Printf(format string, args ...any) {
	g.log.Debug(fmt.Sprintf(format, args...))
}

func (g *gooseLoggerAdapter) Fatalf(format string, args ...any) {
	g.log.Error(fmt.Sprintf(format, args...))
}

func (s *SQLite) Get(ctx context.Context, lang, source string) (string, error) {
	var target string
	err := s.db.QueryRowContext(ctx,
		`SELECT target FROM translations WHERE lang = ? AND source = ?`,
		lang, source,
	).Scan(&target)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", errors.Join(ErrQuery, err)
	}
	return target, nil
}

const upsertTranslation = `INSERT INTO translations (lang, source, target, updated_at)
VALUES (?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (lang, source) DO UPDATE SET target = excluded.target, updated_at = excluded.updated_at`

func (s *SQLite) Put(ctx context.Context, lang, source, target string) error {
	if _, err := s.db.ExecContext(ctx, upsertTranslation, lang, source, target); err != nil {
		return errors.Join(ErrQuery, err)
	}
	return nil
}

func (s *SQLite) putAll(ctx context.Context, lang string, c *catalog.Catalog) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Join(ErrQuery, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsertTranslation)
	if err != nil {
		return 0, errors.Join(ErrQuery, err)
	}
	defer stmt.Close()

	n := 0
	for source, target := range c.All() {
		if _, err := stmt.ExecContext(ctx, lang, source, target); err != nil {
			return 0, errors.Join(ErrQuery, err)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, errors.Join(ErrQuery, err)
	}
	s.log.DebugContext(ctx, "translation memory import", slog.String("lang", lang), slog.Int("entries", n))
	return n, nil
}

// Count returns the number of translations stored for lang.
func (s *SQLite) Count(ctx context.Context, lang string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM translations WHERE lang = ?`, lang).Scan(&n); err != nil {
		return 0, errors.Join(ErrQuery, err)
	}
	return n, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
