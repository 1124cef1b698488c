package storage

import (
	"github.com/cockroachdb/pebble"
)

// Txn stages writes against the store and applies them atomically on
// Commit. Reads through the transaction observe staged writes, so a
// later Get sees an earlier Set from the same transaction.
type Txn struct {
	batch *pebble.Batch
	done  bool
}

// Get retrieves the value for the given key, observing staged writes.
// Returns nil if the key does not exist.
func (t *Txn) Get(key []byte) ([]byte, error) {
	value, closer, err := t.batch.Get(key)
	if err == pebble.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	result := make([]byte, len(value))
	copy(result, value)

	return result, nil
}

// Set stages a key-value pair.
func (t *Txn) Set(key, value []byte) error {
	return t.batch.Set(key, value, nil)
}

// Delete stages a key removal.
func (t *Txn) Delete(key []byte) error {
	return t.batch.Delete(key, nil)
}

// Commit atomically applies all staged writes.
// The transaction must not be used afterwards.
func (t *Txn) Commit() error {
	if t.done {
		return nil
	}
	t.done = true

	if err := t.batch.Commit(pebble.NoSync); err != nil {
		t.batch.Close()
		return err
	}

	return t.batch.Close()
}

// Discard drops all staged writes. Safe to call after Commit,
// so it can be deferred unconditionally.
func (t *Txn) Discard() {
	if t.done {
		return
	}
	t.done = true

	_ = t.batch.Close()
}
