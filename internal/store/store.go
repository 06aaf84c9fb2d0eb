// Package store owns the transaction collection. All mutation funnels through
// Add/Update/Delete, each of which changes the in-memory state and rewrites
// the whole persisted document as one unit; there is no partial persistence.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dvloznov/expense-ledger/internal/domain"
)

// ErrNotFound is returned by Update when no transaction has the given id.
var ErrNotFound = errors.New("store: transaction not found")

// Store is the single owner of the ordered transaction collection, newest
// first. Safe for concurrent use.
type Store struct {
	path string
	log  zerolog.Logger

	mu  sync.Mutex
	txs []domain.Transaction
}

// Open loads the collection from path. A missing file yields an empty
// collection. A file that no longer parses is quarantined under a .corrupt
// suffix and the store starts empty, so bad data never crashes startup and is
// never silently destroyed.
func Open(path string, log zerolog.Logger) (*Store, error) {
	s := &Store{path: path, log: log}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("store: read %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &s.txs); err != nil {
		quarantine := fmt.Sprintf("%s.corrupt.%d", path, time.Now().Unix())
		if renameErr := os.Rename(path, quarantine); renameErr != nil {
			return nil, fmt.Errorf("store: quarantine corrupt file: %w", renameErr)
		}
		log.Warn().
			Str("path", path).
			Str("quarantine", quarantine).
			Err(err).
			Msg("Persisted data is corrupt; starting with an empty collection")
		s.txs = nil
	}

	return s, nil
}

// List returns a copy of the collection in stored order (newest first).
func (s *Store) List() []domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Transaction, len(s.txs))
	copy(out, s.txs)
	return out
}

// Get returns the transaction with the given id.
func (s *Store) Get(id string) (domain.Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tx := range s.txs {
		if tx.ID == id {
			return tx, true
		}
	}
	return domain.Transaction{}, false
}

// Add commits a draft: assigns identity and creation time, prepends it, and
// persists. The draft must pass validation; the parser does not enforce it.
func (s *Store) Add(draft domain.Draft) (domain.Transaction, error) {
	if err := draft.Validate(); err != nil {
		return domain.Transaction{}, err
	}

	tx := domain.Transaction{
		ID:          uuid.NewString(),
		Amount:      draft.Amount,
		Kind:        draft.Kind,
		Category:    draft.Category,
		Description: draft.Description,
		Date:        draft.Date,
		CreatedAt:   time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.txs = append([]domain.Transaction{tx}, s.txs...)
	if err := s.persistLocked(); err != nil {
		s.txs = s.txs[1:]
		return domain.Transaction{}, err
	}
	return tx, nil
}

// Update replaces the record with tx.ID wholesale, preserving the original
// creation timestamp, and persists.
func (s *Store) Update(tx domain.Transaction) (domain.Transaction, error) {
	draft := domain.Draft{
		Amount:      tx.Amount,
		Kind:        tx.Kind,
		Category:    tx.Category,
		Description: tx.Description,
		Date:        tx.Date,
	}
	if err := draft.Validate(); err != nil {
		return domain.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.txs {
		if existing.ID != tx.ID {
			continue
		}
		tx.CreatedAt = existing.CreatedAt
		s.txs[i] = tx
		if err := s.persistLocked(); err != nil {
			s.txs[i] = existing
			return domain.Transaction{}, err
		}
		return tx, nil
	}
	return domain.Transaction{}, ErrNotFound
}

// Delete removes the transaction with the given id. Deleting an id that is
// not present is a no-op, not an error.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, tx := range s.txs {
		if tx.ID != id {
			continue
		}
		removed := tx
		s.txs = append(s.txs[:i], s.txs[i+1:]...)
		if err := s.persistLocked(); err != nil {
			s.txs = append(s.txs[:i], append([]domain.Transaction{removed}, s.txs[i:]...)...)
			return err
		}
		return nil
	}
	return nil
}

// persistLocked rewrites the whole collection. Write-then-rename keeps a
// crash mid-write from clobbering the previous good document.
func (s *Store) persistLocked() error {
	data, err := json.MarshalIndent(s.txs, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshal: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("store: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("store: rename %s: %w", tmp, err)
	}
	return nil
}
