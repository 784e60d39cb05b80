package session

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore implements Store on a local sqlite file, the persistent
// "remember me" scope. The token is sealed before it touches disk.
type SQLiteStore struct {
	db     *sql.DB
	sealer *sealer
}

const credentialsSchema = `
CREATE TABLE IF NOT EXISTS credentials (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	sealed     BLOB NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// NewSQLiteStore opens (or creates) the credentials database at dbPath.
// The sealing key lives next to it with owner-only permissions.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create credentials dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(credentialsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s, err := newSealer(keyPathFor(dbPath))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init sealer: %w", err)
	}

	return &SQLiteStore{db: db, sealer: s}, nil
}

func keyPathFor(dbPath string) string {
	return dbPath + ".key"
}

// Save seals the token and upserts the single credentials row.
func (s *SQLiteStore) Save(token string) error {
	sealed, err := s.sealer.seal([]byte(token))
	if err != nil {
		return fmt.Errorf("seal token: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO credentials (id, sealed) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET sealed = excluded.sealed, created_at = CURRENT_TIMESTAMP`,
		sealed)
	if err != nil {
		return fmt.Errorf("store credentials: %w", err)
	}
	return nil
}

// Token returns the stored token, or "" when none is saved.
func (s *SQLiteStore) Token() (string, error) {
	var sealed []byte
	err := s.db.QueryRow(`SELECT sealed FROM credentials WHERE id = 1`).Scan(&sealed)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load credentials: %w", err)
	}
	token, err := s.sealer.open(sealed)
	if err != nil {
		return "", fmt.Errorf("unseal token: %w", err)
	}
	return string(token), nil
}

// Clear drops the stored token.
func (s *SQLiteStore) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM credentials WHERE id = 1`); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
