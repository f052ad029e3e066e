package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/fscarponi/characterai/internal/domain"
	"github.com/fscarponi/characterai/internal/shared"
)

// SQLiteStore implements CharacterRepository using SQLite.
// List attributes are stored as JSON arrays.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS characters (
		name TEXT PRIMARY KEY,
		role TEXT NOT NULL,
		personality TEXT NOT NULL,
		background TEXT NOT NULL,
		knowledge TEXT NOT NULL DEFAULT '[]',
		secrets TEXT NOT NULL DEFAULT '[]',
		goals TEXT NOT NULL DEFAULT '[]',
		connections TEXT NOT NULL DEFAULT '[]',
		created_at INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

const selectColumns = `SELECT name, role, personality, background, knowledge, secrets, goals, connections FROM characters`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCharacter(row rowScanner) (domain.Character, error) {
	var c domain.Character
	var knowledge, secrets, goals, connections string
	if err := row.Scan(
		&c.Name, &c.Role, &c.Personality, &c.Background,
		&knowledge, &secrets, &goals, &connections,
	); err != nil {
		return domain.Character{}, err
	}

	var err error
	if c.Knowledge, err = decodeList(knowledge); err != nil {
		return domain.Character{}, fmt.Errorf("decode knowledge of %q: %w", c.Name, err)
	}
	if c.Secrets, err = decodeList(secrets); err != nil {
		return domain.Character{}, fmt.Errorf("decode secrets of %q: %w", c.Name, err)
	}
	if c.Goals, err = decodeList(goals); err != nil {
		return domain.Character{}, fmt.Errorf("decode goals of %q: %w", c.Name, err)
	}
	if c.Connections, err = decodeList(connections); err != nil {
		return domain.Character{}, fmt.Errorf("decode connections of %q: %w", c.Name, err)
	}
	return c, nil
}

func encodeList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeList(raw string) ([]string, error) {
	items := []string{}
	if raw == "" {
		return items, nil
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetAll returns every character in insertion order.
func (s *SQLiteStore) GetAll(ctx context.Context) ([]domain.Character, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query characters: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close character rows", "error", closeErr)
		}
	}()

	characters := []domain.Character{}
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("scan character row: %w", err)
		}
		characters = append(characters, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate characters: %w", err)
	}
	return characters, nil
}

// GetByName returns the character with the given name, or nil when absent.
func (s *SQLiteStore) GetByName(ctx context.Context, name string) (*domain.Character, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE name = ?`, name)
	c, err := scanCharacter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan character: %w", err)
	}
	return &c, nil
}

// Add stores a new character.
func (s *SQLiteStore) Add(ctx context.Context, c domain.Character) error {
	existing, err := s.GetByName(ctx, c.Name)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: %q", ErrDuplicateName, c.Name)
	}

	err = shared.RetryOnConflict(ctx, "add character", shared.DefaultRetryPolicy, func() error {
		return s.insert(ctx, s.db, c)
	})
	if shared.IsSQLiteUniqueError(err) {
		return fmt.Errorf("%w: %q", ErrDuplicateName, c.Name)
	}
	return err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLiteStore) insert(ctx context.Context, db execer, c domain.Character) error {
	lists := make([]string, 0, 4)
	for _, items := range [][]string{c.Knowledge, c.Secrets, c.Goals, c.Connections} {
		encoded, err := encodeList(items)
		if err != nil {
			return fmt.Errorf("encode lists of %q: %w", c.Name, err)
		}
		lists = append(lists, encoded)
	}

	query := `
	INSERT INTO characters (name, role, personality, background, knowledge, secrets, goals, connections, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := db.ExecContext(ctx, query,
		c.Name, c.Role, c.Personality, c.Background,
		lists[0], lists[1], lists[2], lists[3],
		time.Now().Unix(),
	); err != nil {
		return fmt.Errorf("insert character: %w", err)
	}
	return nil
}

// DeleteByName removes a character by name.
func (s *SQLiteStore) DeleteByName(ctx context.Context, name string) error {
	var rows int64
	err := shared.RetryOnConflict(ctx, "delete character", shared.DefaultRetryPolicy, func() error {
		result, err := s.db.ExecContext(ctx, `DELETE FROM characters WHERE name = ?`, name)
		if err != nil {
			return fmt.Errorf("delete character: %w", err)
		}
		rows, err = result.RowsAffected()
		if err != nil {
			return fmt.Errorf("get rows affected: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return nil
}

// DeleteAll removes every character.
func (s *SQLiteStore) DeleteAll(ctx context.Context) (int64, error) {
	var rows int64
	err := shared.RetryOnConflict(ctx, "delete all characters", shared.DefaultRetryPolicy, func() error {
		result, err := s.db.ExecContext(ctx, `DELETE FROM characters`)
		if err != nil {
			return fmt.Errorf("delete characters: %w", err)
		}
		rows, err = result.RowsAffected()
		return err
	})
	return rows, err
}

// Seed inserts characters in one transaction when the table is empty.
func (s *SQLiteStore) Seed(ctx context.Context, characters []domain.Character) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin seed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM characters`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count characters: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	for _, c := range characters {
		if err := s.insert(ctx, tx, c); err != nil {
			if shared.IsSQLiteUniqueError(err) {
				return 0, fmt.Errorf("%w: %q", ErrDuplicateName, c.Name)
			}
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed: %w", err)
	}
	return len(characters), nil
}
