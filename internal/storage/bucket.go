package storage

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Bucket is a named key namespace inside a DB. Keys are stored as
// "<name>/<key>"; callers only ever see their own keys.
type Bucket struct {
	db   DB
	name string
	pfx  []byte
}

// NewBucket returns the bucket called name in db.
func NewBucket(db DB, name string) *Bucket {
	return &Bucket{db: db, name: name, pfx: []byte(name + "/")}
}

// Name returns the bucket name.
func (b *Bucket) Name() string {
	return b.name
}

func (b *Bucket) key(k []byte) []byte {
	out := make([]byte, len(b.pfx)+len(k))
	copy(out, b.pfx)
	copy(out[len(b.pfx):], k)
	return out
}

// Get returns the value stored under key, or ErrNotFound.
func (b *Bucket) Get(key []byte) ([]byte, error) {
	return b.db.Get(b.key(key))
}

// Put stores value under key.
func (b *Bucket) Put(key, value []byte) error {
	return b.db.Put(b.key(key), value)
}

// Has reports whether key exists.
func (b *Bucket) Has(key []byte) (bool, error) {
	return b.db.Has(b.key(key))
}

// Delete removes key. Deleting a missing key is not an error.
func (b *Bucket) Delete(key []byte) error {
	return b.db.Delete(b.key(key))
}

// GetJSON decodes the value under key into v.
func (b *Bucket) GetJSON(key []byte, v interface{}) error {
	data, err := b.Get(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s/%s: %w", b.name, key, err)
	}
	return nil
}

// PutJSON encodes v and stores it under key.
func (b *Bucket) PutJSON(key []byte, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", b.name, key, err)
	}
	return b.Put(key, data)
}

// ForEach calls fn for every entry in ascending key order. Keys have the
// bucket name stripped.
func (b *Bucket) ForEach(fn func(key, value []byte) error) error {
	return b.db.ForEach(b.pfx, func(key, value []byte) error {
		return fn(key[len(b.pfx):], value)
	})
}

// Count returns the number of entries.
func (b *Bucket) Count() (int, error) {
	n := 0
	err := b.db.ForEach(b.pfx, func(_, _ []byte) error {
		n++
		return nil
	})
	return n, err
}

// Clear removes every entry, atomically when the DB supports batches.
func (b *Bucket) Clear() error {
	var keys [][]byte
	err := b.ForEach(func(key, _ []byte) error {
		keys = append(keys, key)
		return nil
	})
	if err != nil {
		return err
	}
	w := NewWriter(b.db)
	for _, k := range keys {
		if err := w.Delete(b, k); err != nil {
			w.Cancel()
			return err
		}
	}
	return w.Commit()
}

// ErrWriterCancelled is returned by a Writer used after Cancel.
var ErrWriterCancelled = errors.New("writer cancelled")

// Writer groups writes to several buckets of one DB. When the DB is a
// Batcher the writes land atomically on Commit; otherwise they are applied
// in order on Commit and a failure may leave a prefix applied. A Writer
// abandoned before Commit must be cancelled.
type Writer struct {
	db        DB
	batch     Batch
	ops       []writeOp
	cancelled bool
}

type writeOp struct {
	key   []byte
	value []byte // nil = delete
}

// NewWriter starts a write group on db.
func NewWriter(db DB) *Writer {
	w := &Writer{db: db}
	if batcher, ok := db.(Batcher); ok {
		w.batch = batcher.NewBatch()
	}
	return w
}

// Put queues value under key in bucket b.
func (w *Writer) Put(b *Bucket, key, value []byte) error {
	if w.cancelled {
		return ErrWriterCancelled
	}
	if w.batch != nil {
		return w.batch.Put(b.key(key), value)
	}
	v := make([]byte, len(value))
	copy(v, value)
	w.ops = append(w.ops, writeOp{key: b.key(key), value: v})
	return nil
}

// PutJSON queues the encoding of v under key in bucket b.
func (w *Writer) PutJSON(b *Bucket, key []byte, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", b.name, key, err)
	}
	return w.Put(b, key, data)
}

// Delete queues removal of key from bucket b.
func (w *Writer) Delete(b *Bucket, key []byte) error {
	if w.cancelled {
		return ErrWriterCancelled
	}
	if w.batch != nil {
		return w.batch.Delete(b.key(key))
	}
	w.ops = append(w.ops, writeOp{key: b.key(key)})
	return nil
}

// Cancel discards the queued writes. Calling it again is a no-op.
func (w *Writer) Cancel() {
	if w.cancelled {
		return
	}
	w.cancelled = true
	if w.batch != nil {
		w.batch.Cancel()
	}
	w.ops = nil
}

// Commit applies the queued writes.
func (w *Writer) Commit() error {
	if w.cancelled {
		return ErrWriterCancelled
	}
	if w.batch != nil {
		return w.batch.Commit()
	}
	for _, op := range w.ops {
		var err error
		if op.value == nil {
			err = w.db.Delete(op.key)
		} else {
			err = w.db.Put(op.key, op.value)
		}
		if err != nil {
			return err
		}
	}
	w.ops = nil
	return nil
}
