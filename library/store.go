// Package library is the preset browser's storage backend: an SQLite index
// of imported presets keyed by content hash.
package library

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/phoenixvis/avsengine/preset"
)

// ErrNotFound indicates the requested preset doesn't exist.
var ErrNotFound = errors.New("library: preset not found")

// Entry is one imported preset.
type Entry struct {
	ID         int64
	Name       string
	Format     string
	SHA256     string
	Fragments  preset.FragmentSet
	ImportedAt time.Time
}

// Store handles SQLite storage for imported presets.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open creates or opens a library database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS presets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		format TEXT NOT NULL,
		sha256 TEXT NOT NULL UNIQUE,
		fragments BLOB NOT NULL,
		imported_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put imports a decoded preset under name, deduplicating by the hash of the
// raw blob. It returns the row id and whether a new row was inserted.
func (s *Store) Put(name string, raw []byte, p *preset.Preset) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := sha256.Sum256(raw)
	hash := hex.EncodeToString(sum[:])

	var id int64
	err := s.db.QueryRow("SELECT id FROM presets WHERE sha256 = ?", hash).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, fmt.Errorf("checking for duplicate: %w", err)
	}

	blob, err := preset.MarshalFragments(&p.Fragments)
	if err != nil {
		return 0, false, fmt.Errorf("encoding fragments: %w", err)
	}

	res, err := s.db.Exec(
		"INSERT INTO presets (name, format, sha256, fragments) VALUES (?, ?, ?, ?)",
		name, p.Format.String(), hash, blob,
	)
	if err != nil {
		return 0, false, fmt.Errorf("inserting preset: %w", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("reading insert id: %w", err)
	}
	return id, true, nil
}

// Get loads one entry by id.
func (s *Store) Get(id int64) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var e Entry
	var blob []byte
	err := s.db.QueryRow(
		"SELECT id, name, format, sha256, fragments, imported_at FROM presets WHERE id = ?", id,
	).Scan(&e.ID, &e.Name, &e.Format, &e.SHA256, &blob, &e.ImportedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading preset %d: %w", id, err)
	}

	frags, err := preset.UnmarshalFragments(blob)
	if err != nil {
		return nil, fmt.Errorf("decoding fragments for preset %d: %w", id, err)
	}
	e.Fragments = *frags
	return &e, nil
}

// List returns all entries without their fragment blobs, newest first.
func (s *Store) List() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		"SELECT id, name, format, sha256, imported_at FROM presets ORDER BY imported_at DESC, id DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("listing presets: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Name, &e.Format, &e.SHA256, &e.ImportedAt); err != nil {
			return nil, fmt.Errorf("scanning preset row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Delete removes one entry by id.
func (s *Store) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM presets WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting preset %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting preset %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
