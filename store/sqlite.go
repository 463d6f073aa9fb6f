package store

import (
	"database/sql"
	"errors"
	"sync"

	_ "github.com/glebarez/go-sqlite"
	"github.com/golang/snappy"
)

// SQLite is a Provider that persists records in a SQLite database file.
// Records are snappy-compressed before hitting the disk.
//
// SQLite serializes concurrent writers internally, and INSERT OR REPLACE
// is a single statement, so the per-key atomicity required by Provider
// holds without any extra coordination. The write mutex only prevents
// SQLITE_BUSY errors from piling up under concurrent write load.
type SQLite struct {
	db         *sql.DB
	writeMutex *sync.Mutex
}

// NewSQLite creates a new provider with the given filename as the db.
// If the filename is empty, a new in-memory db is opened.
func NewSQLite(filename string) (SQLite, error) {
	if filename == "" {
		filename = "file::memory:?cache=shared"
	}
	db, err := sql.Open("sqlite", filename)
	if err != nil {
		return SQLite{}, err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS cache (
		key TEXT PRIMARY KEY,
		entry BLOB
	)`); err != nil {
		db.Close()
		return SQLite{}, err
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return SQLite{}, err
	}
	return SQLite{
		db:         db,
		writeMutex: &sync.Mutex{},
	}, nil
}

func (s SQLite) Get(key string) ([]byte, bool, error) {
	var compressed []byte
	err := s.db.QueryRow("SELECT entry FROM cache WHERE key = ?", key).Scan(&compressed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	value, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s SQLite) Put(key string, value []byte) error {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	_, err := s.db.Exec("INSERT OR REPLACE INTO cache (key, entry) VALUES (?, ?)",
		key, snappy.Encode(nil, value))
	return err
}

func (s SQLite) Purge(key string) {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	s.db.Exec("DELETE FROM cache WHERE key = ?", key)
}

func (s SQLite) Close() error {
	return s.db.Close()
}
