package found

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/Klingon-tech/seedrecover/internal/log"
	"github.com/Klingon-tech/seedrecover/internal/storage"
)

// Bucket names inside the store database.
const (
	bucketFound = "found"
	bucketIndex = "fp"
	bucketRuns  = "runs"
)

// ErrNotFound is returned by Get for an unknown record ID.
var ErrNotFound = errors.New("record not found")

// Store receives funded wallets.
type Store interface {
	Append(ctx context.Context, r Record) error
}

// DBStore keeps records and run summaries in a storage.DB. A record whose
// fingerprint is already present is not written twice.
type DBStore struct {
	db    storage.DB
	found *storage.Bucket // "<unixnano>/<id>" -> Record
	index *storage.Bucket // id -> found key
	runs  *storage.Bucket // "<unixnano>" -> RunSummary
	mu    sync.Mutex
}

// NewDBStore wraps db. The caller keeps ownership of db.
func NewDBStore(db storage.DB) *DBStore {
	return &DBStore{
		db:    db,
		found: storage.NewBucket(db, bucketFound),
		index: storage.NewBucket(db, bucketIndex),
		runs:  storage.NewBucket(db, bucketRuns),
	}
}

// recordKey sorts records by discovery time.
func recordKey(r Record) []byte {
	return []byte(fmt.Sprintf("%020d/%s", r.FoundAt.UnixNano(), r.ID))
}

// Append stores r and its fingerprint index entry in one write group.
func (s *DBStore) Append(_ context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dup, err := s.index.Has([]byte(r.ID))
	if err != nil {
		return fmt.Errorf("check fingerprint: %w", err)
	}
	if dup {
		log.Storage.Debug().Str("id", r.ID).Msg("Record already stored")
		return nil
	}

	key := recordKey(r)
	w := storage.NewWriter(s.db)
	if err := w.PutJSON(s.found, key, r); err != nil {
		w.Cancel()
		return err
	}
	if err := w.Put(s.index, []byte(r.ID), key); err != nil {
		w.Cancel()
		return err
	}
	if err := w.Commit(); err != nil {
		return fmt.Errorf("store record: %w", err)
	}
	log.Storage.Info().Str("id", r.ID).Msg("Found wallet persisted")
	return nil
}

// Get returns the record with the given ID.
func (s *DBStore) Get(id string) (Record, error) {
	key, err := s.index.Get([]byte(id))
	if errors.Is(err, storage.ErrNotFound) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	var r Record
	if err := s.found.GetJSON(key, &r); err != nil {
		return Record{}, fmt.Errorf("load record %s: %w", id, err)
	}
	return r, nil
}

// List returns all records, oldest first.
func (s *DBStore) List() ([]Record, error) {
	var out []Record
	err := s.found.ForEach(func(key, value []byte) error {
		var r Record
		if err := json.Unmarshal(value, &r); err != nil {
			return fmt.Errorf("decode record %s: %w", key, err)
		}
		out = append(out, r)
		return nil
	})
	return out, err
}

// Count returns the number of stored records.
func (s *DBStore) Count() (int, error) {
	return s.index.Count()
}

// SaveRun stores a run summary keyed by its start time.
func (s *DBStore) SaveRun(sum RunSummary) error {
	key := []byte(fmt.Sprintf("%020d", sum.StartedAt.UnixNano()))
	if err := s.runs.PutJSON(key, sum); err != nil {
		return fmt.Errorf("store run: %w", err)
	}
	return nil
}

// Runs returns all run summaries, oldest first.
func (s *DBStore) Runs() ([]RunSummary, error) {
	var out []RunSummary
	err := s.runs.ForEach(func(key, value []byte) error {
		var r RunSummary
		if err := json.Unmarshal(value, &r); err != nil {
			return fmt.Errorf("decode run %s: %w", key, err)
		}
		out = append(out, r)
		return nil
	})
	return out, err
}

// ClearRuns deletes every run summary. Found records are never deleted.
func (s *DBStore) ClearRuns() error {
	return s.runs.Clear()
}

// Multi appends to every store and reports all failures.
type Multi []Store

// Append writes r to each store, continuing past failures.
func (m Multi) Append(ctx context.Context, r Record) error {
	var errs []error
	for _, s := range m {
		if err := s.Append(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
