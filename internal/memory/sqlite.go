package memory

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
)

// Store persists translation memory entries. Implementations must tolerate
// being called from a single goroutine at a time; the Cache serializes.
type Store interface {
	LoadAll() (map[string]*Entry, error)
	Put(key string, e Entry) error
	Touch(key string, lastUsed time.Time, useCount int) error
	Delete(key string) error
	Close() error
}

const schema = `
CREATE TABLE IF NOT EXISTS memory (
	key         TEXT PRIMARY KEY,
	source      TEXT NOT NULL,
	translation TEXT NOT NULL,
	target_lang TEXT NOT NULL,
	model       TEXT NOT NULL,
	created     TEXT NOT NULL,
	last_used   TEXT NOT NULL,
	use_count   INTEGER NOT NULL
)`

// SQLiteStore persists entries to a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
	sq sq.StatementBuilderType
}

// OpenSQLite opens (and if necessary creates) the memory database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open translation memory db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create memory table: %w", err)
	}
	return &SQLiteStore{db: db, sq: sq.StatementBuilder}, nil
}

// LoadAll reads the whole memory table into a map keyed by content hash.
func (s *SQLiteStore) LoadAll() (map[string]*Entry, error) {
	query, args, _ := s.sq.Select(
		"key", "source", "translation", "target_lang", "model",
		"created", "last_used", "use_count",
	).From("memory").ToSql()

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make(map[string]*Entry)
	for rows.Next() {
		var key, created, lastUsed string
		var e Entry
		if err := rows.Scan(&key, &e.Source, &e.Translation, &e.TargetLang,
			&e.Model, &created, &lastUsed, &e.UseCount); err != nil {
			return nil, err
		}
		e.Created, _ = time.Parse(time.RFC3339, created)
		e.LastUsed, _ = time.Parse(time.RFC3339, lastUsed)
		entries[key] = &e
	}
	return entries, rows.Err()
}

// Put writes or replaces one entry.
func (s *SQLiteStore) Put(key string, e Entry) error {
	query, args, _ := s.sq.Insert("memory").
		Columns("key", "source", "translation", "target_lang", "model",
			"created", "last_used", "use_count").
		Values(key, e.Source, e.Translation, e.TargetLang, e.Model,
			e.Created.Format(time.RFC3339), e.LastUsed.Format(time.RFC3339), e.UseCount).
		Suffix(`ON CONFLICT(key) DO UPDATE SET
			source=excluded.source,
			translation=excluded.translation,
			target_lang=excluded.target_lang,
			model=excluded.model,
			created=excluded.created,
			last_used=excluded.last_used,
			use_count=excluded.use_count`).
		ToSql()
	_, err := s.db.Exec(query, args...)
	return err
}

// Touch records a cache hit on an existing entry.
func (s *SQLiteStore) Touch(key string, lastUsed time.Time, useCount int) error {
	query, args, _ := s.sq.Update("memory").
		Set("last_used", lastUsed.Format(time.RFC3339)).
		Set("use_count", useCount).
		Where(sq.Eq{"key": key}).
		ToSql()
	_, err := s.db.Exec(query, args...)
	return err
}

// Delete removes an evicted entry.
func (s *SQLiteStore) Delete(key string) error {
	query, args, _ := s.sq.Delete("memory").Where(sq.Eq{"key": key}).ToSql()
	_, err := s.db.Exec(query, args...)
	return err
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
