// Package ledger persists per-repository bug and task records in SQLite.
// Each repository's ledger is one JSON snapshot, always read and written
// whole. Writes carry an optimistic version check: a concurrent writer makes
// the later Save fail rather than silently clobbering the earlier one, and a
// failed write leaves the prior snapshot untouched.
package ledger

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/IshaanBansal2006/p5-sub000/internal/types"
)

// ErrConflict is returned when a snapshot changed between load and save.
var ErrConflict = errors.New("ledger version conflict")

// updateRetries bounds how many times Update re-reads after a conflict.
const updateRetries = 3

// Store is the durable key-value ledger store.
type Store struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *zap.Logger
}

// Open initializes the SQLite database at the given path.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logger.Debug("failed to set sqlite busy_timeout", zap.Error(err))
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logger.Debug("failed to set sqlite journal_mode=WAL", zap.Error(err))
	}

	schema := `
	CREATE TABLE IF NOT EXISTS ledgers (
		repo_key   TEXT PRIMARY KEY,
		payload    TEXT NOT NULL,
		version    INTEGER NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Debug("ledger store opened", zap.String("path", path))
	return &Store{db: db, logger: logger}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load reads the ledger snapshot for a repository key. A repository with no
// prior submissions yields an empty ledger at version 0.
func (s *Store) Load(key string) (*types.RepositoryLedger, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(key)
}

func (s *Store) loadLocked(key string) (*types.RepositoryLedger, int64, error) {
	var payload string
	var version int64
	err := s.db.QueryRow(
		"SELECT payload, version FROM ledgers WHERE repo_key = ?", key,
	).Scan(&payload, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return &types.RepositoryLedger{}, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("load ledger %q: %w", key, err)
	}

	var l types.RepositoryLedger
	if err := json.Unmarshal([]byte(payload), &l); err != nil {
		return nil, 0, fmt.Errorf("decode ledger %q: %w", key, err)
	}
	return &l, version, nil
}

// Save writes the whole snapshot back, but only if nobody advanced the
// version since it was loaded. expectedVersion 0 means "must not exist yet".
func (s *Store) Save(key string, l *types.RepositoryLedger, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(key, l, expectedVersion)
}

func (s *Store) saveLocked(key string, l *types.RepositoryLedger, expectedVersion int64) error {
	payload, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("encode ledger %q: %w", key, err)
	}

	if expectedVersion == 0 {
		_, err := s.db.Exec(
			"INSERT INTO ledgers (repo_key, payload, version) VALUES (?, ?, 1)",
			key, string(payload),
		)
		if err != nil {
			// A concurrent first submission won the insert.
			return fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return nil
	}

	res, err := s.db.Exec(
		"UPDATE ledgers SET payload = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP WHERE repo_key = ? AND version = ?",
		string(payload), key, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("save ledger %q: %w", key, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save ledger %q: %w", key, err)
	}
	if affected == 0 {
		return ErrConflict
	}
	return nil
}

// Update performs a read-modify-write of one repository's snapshot, retrying
// the whole cycle a few times on version conflicts.
func (s *Store) Update(key string, fn func(*types.RepositoryLedger) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt < updateRetries; attempt++ {
		l, version, err := s.loadLocked(key)
		if err != nil {
			return err
		}
		if err := fn(l); err != nil {
			return err
		}
		if err := s.saveLocked(key, l, version); err != nil {
			if errors.Is(err, ErrConflict) {
				lastErr = err
				continue
			}
			return err
		}
		return nil
	}
	return lastErr
}
