// internal/store/sqlite.go
//
// SQLite-backed Store.
// Responsibilities:
//   - Opening the database with safe defaults (WAL, busy timeout, foreign keys).
//   - Applying embedded migrations from sql/*.sql (idempotent, recorded in _migrations).
//   - Reading/writing puzzle records, with JSON columns for the slices.

package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/connections/internal/puzzle"
)

//go:embed sql/*.sql
var migrations embed.FS

// SQLite is a Store backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

// OpenSQLite opens (creating if missing) the database at dsn and migrates it.
func OpenSQLite(dsn string) (*SQLite, error) {
	db, err := openDB(dsn)
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

// Close releases the database handle.
func (s *SQLite) Close() error { return s.db.Close() }

// openDB opens a SQLite database file.
//
//   - Ensures parent directory exists for relative DSNs (e.g. ./data/connections.db).
//   - Configures busy timeout and WAL journaling mode.
//   - Enforces foreign keys.
func openDB(dsn string) (*sql.DB, error) {
	if dsn != ":memory:" {
		dir := filepath.Dir(dsn)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("mkdir %s: %w", dir, err)
			}
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if dsn == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	return db, nil
}

// migrate applies the embedded sql/*.sql files in lexical order.
// Applied files are tracked in _migrations and skipped on later runs.
func migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	var files []string
	if err := fs.WalkDir(migrations, "sql", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".sql") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("walk migrations: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := db.QueryRow(`SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", f).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		sqlBytes, err := migrations.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(sqlBytes)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.Exec(`INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

// Save upserts the record for r.Date.
func (s *SQLite) Save(ctx context.Context, r puzzle.Record) error {
	cats, err := json.Marshal(r.Categories)
	if err != nil {
		return err
	}
	order, err := json.Marshal(nonNil(r.Order))
	if err != nil {
		return err
	}
	guesses, err := json.Marshal(nonNilGuesses(r.Guesses))
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO puzzles (date, id, categories, word_order, guesses)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT(date) DO UPDATE SET
            id = excluded.id,
            categories = excluded.categories,
            word_order = excluded.word_order,
            guesses = excluded.guesses,
            updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')`,
		r.Date, r.ID, string(cats), string(order), string(guesses),
	)
	var se sqlite3.Error
	if errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique {
		return fmt.Errorf("%w: id %d: %v", ErrConflict, r.ID, err)
	}
	return err
}

// Get looks up a record by date.
func (s *SQLite) Get(ctx context.Context, date string) (puzzle.Record, error) {
	return scanRecord(s.db.QueryRowContext(ctx, selectRecord+` WHERE date=?`, date))
}

// GetByID looks up a record by puzzle id.
func (s *SQLite) GetByID(ctx context.Context, id int) (puzzle.Record, error) {
	return scanRecord(s.db.QueryRowContext(ctx, selectRecord+` WHERE id=?`, id))
}

// List returns every record, oldest date first.
func (s *SQLite) List(ctx context.Context) ([]puzzle.Record, error) {
	rows, err := s.db.QueryContext(ctx, selectRecord+` ORDER BY date ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []puzzle.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Delete removes the record for date.
func (s *SQLite) Delete(ctx context.Context, date string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM puzzles WHERE date=?`, date)
	return err
}

const selectRecord = `SELECT id, date, categories, word_order, guesses FROM puzzles`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (puzzle.Record, error) {
	var (
		r                    puzzle.Record
		cats, order, guesses string
	)
	if err := row.Scan(&r.ID, &r.Date, &cats, &order, &guesses); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return puzzle.Record{}, ErrNotFound
		}
		return puzzle.Record{}, err
	}
	if err := json.Unmarshal([]byte(cats), &r.Categories); err != nil {
		return puzzle.Record{}, fmt.Errorf("decode categories for %s: %w", r.Date, err)
	}
	if err := json.Unmarshal([]byte(order), &r.Order); err != nil {
		return puzzle.Record{}, fmt.Errorf("decode order for %s: %w", r.Date, err)
	}
	if err := json.Unmarshal([]byte(guesses), &r.Guesses); err != nil {
		return puzzle.Record{}, fmt.Errorf("decode guesses for %s: %w", r.Date, err)
	}
	return r, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilGuesses(g []puzzle.Guess) []puzzle.Guess {
	if g == nil {
		return []puzzle.Guess{}
	}
	return g
}
