// Package memstore is an in-memory model.DBManager, used by tests and by
// any caller that doesn't need durability. There is no single teacher file
// this is grounded on - every *Store in the teacher's domain/consensus
// package assumes a real on-disk DBManager underneath it and is exercised
// against one in tests - so this is a new, small implementation of the
// same model.DBManager/DBTransaction/DBCursor contracts memstore and
// ldbstore both satisfy.
package memstore

import (
	"bytes"
	"sort"
	"sync"

	"github.com/blocklattice/ledgercore/ledgererrors"
	"github.com/blocklattice/ledgercore/model"
)

type mutation struct {
	key     []byte
	deleted bool
	value   []byte
}

// Store is an in-memory, mutex-guarded key/value store implementing
// model.DBManager.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

// Get implements model.DBReader.
func (s *Store) Get(key model.DBKey) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[string(key.Bytes())]
	if !ok {
		return nil, ledgererrors.ErrNotFound
	}
	return append([]byte{}, v...), nil
}

// Has implements model.DBReader.
func (s *Store) Has(key model.DBKey) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[string(key.Bytes())]
	return ok, nil
}

// Cursor implements model.DBReader.
func (s *Store) Cursor(bucket model.DBBucket) (model.DBCursor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newMemCursor(s.snapshotPrefix(bucket)), nil
}

func (s *Store) snapshotPrefix(bucket model.DBBucket) []keyValue {
	prefix := append(append([]byte{}, bucket.Path()...), 0)
	var kvs []keyValue
	for k, v := range s.data {
		if bytes.HasPrefix([]byte(k), prefix) {
			kvs = append(kvs, keyValue{key: []byte(k), value: append([]byte{}, v...)})
		}
	}
	sort.Slice(kvs, func(i, j int) bool { return bytes.Compare(kvs[i].key, kvs[j].key) < 0 })
	return kvs
}

// Begin implements model.DBManager.
func (s *Store) Begin(write bool) (model.DBTransaction, error) {
	if write {
		s.mu.Lock()
	} else {
		s.mu.RLock()
	}
	return &transaction{store: s, write: write}, nil
}

// Close implements model.DBManager.
func (s *Store) Close() error {
	return nil
}

// transaction is a model.DBTransaction over Store. Write transactions hold
// the store's write lock for their entire lifetime (spec.md §5's
// single-writer discipline) and record an undo log so Rollback can discard
// uncommitted mutations.
type transaction struct {
	store  *Store
	write  bool
	undo   []mutation
	closed bool
}

func (t *transaction) Get(key model.DBKey) ([]byte, error) {
	v, ok := t.store.data[string(key.Bytes())]
	if !ok {
		return nil, ledgererrors.ErrNotFound
	}
	return append([]byte{}, v...), nil
}

func (t *transaction) Has(key model.DBKey) (bool, error) {
	_, ok := t.store.data[string(key.Bytes())]
	return ok, nil
}

func (t *transaction) Cursor(bucket model.DBBucket) (model.DBCursor, error) {
	return newMemCursor(t.store.snapshotPrefix(bucket)), nil
}

func (t *transaction) Put(key model.DBKey, value []byte) error {
	if !t.write {
		panic("memstore: Put on a read-only transaction")
	}
	k := string(key.Bytes())
	prev, existed := t.store.data[k]
	if existed {
		t.undo = append(t.undo, mutation{key: []byte(k), value: prev})
	} else {
		t.undo = append(t.undo, mutation{key: []byte(k), deleted: true})
	}
	t.store.data[k] = append([]byte{}, value...)
	return nil
}

func (t *transaction) Delete(key model.DBKey) error {
	if !t.write {
		panic("memstore: Delete on a read-only transaction")
	}
	k := string(key.Bytes())
	prev, existed := t.store.data[k]
	if existed {
		t.undo = append(t.undo, mutation{key: []byte(k), value: prev})
		delete(t.store.data, k)
	}
	return nil
}

func (t *transaction) Commit() error {
	if t.closed {
		return nil
	}
	t.closed = true
	if t.write {
		t.store.mu.Unlock()
	} else {
		t.store.mu.RUnlock()
	}
	return nil
}

func (t *transaction) Rollback() error {
	if t.closed {
		return nil
	}
	t.closed = true
	if t.write {
		for i := len(t.undo) - 1; i >= 0; i-- {
			m := t.undo[i]
			if m.deleted {
				delete(t.store.data, string(m.key))
			} else {
				t.store.data[string(m.key)] = m.value
			}
		}
		t.store.mu.Unlock()
	} else {
		t.store.mu.RUnlock()
	}
	return nil
}

func (t *transaction) RollbackUnlessClosed() error {
	if t.closed {
		return nil
	}
	return t.Rollback()
}

type keyValue struct {
	key   []byte
	value []byte
}

type memCursor struct {
	kvs []keyValue
	pos int
}

func newMemCursor(kvs []keyValue) *memCursor {
	return &memCursor{kvs: kvs, pos: -1}
}

func (c *memCursor) Next() bool {
	if c.pos+1 >= len(c.kvs) {
		c.pos = len(c.kvs)
		return false
	}
	c.pos++
	return true
}

func (c *memCursor) First() bool {
	if len(c.kvs) == 0 {
		return false
	}
	c.pos = 0
	return true
}

func (c *memCursor) Seek(key model.DBKey) error {
	target := key.Bytes()
	for i, kv := range c.kvs {
		if bytes.Compare(kv.key, target) >= 0 {
			c.pos = i
			return nil
		}
	}
	c.pos = len(c.kvs)
	return ledgererrors.ErrNotFound
}

func (c *memCursor) Key() (model.DBKey, error) {
	if c.pos < 0 || c.pos >= len(c.kvs) {
		return nil, ledgererrors.ErrNotFound
	}
	// The flat key has no structured bucket/suffix split once stored; for
	// cursor consumers only the raw bytes matter.
	return rawKey(c.kvs[c.pos].key), nil
}

func (c *memCursor) Value() ([]byte, error) {
	if c.pos < 0 || c.pos >= len(c.kvs) {
		return nil, ledgererrors.ErrNotFound
	}
	return append([]byte{}, c.kvs[c.pos].value...), nil
}

func (c *memCursor) Close() error {
	return nil
}

// rawKey is a model.DBKey wrapping an already-flattened key, returned from
// cursor iteration where the bucket/suffix split is no longer needed.
type rawKey []byte

func (k rawKey) Bytes() []byte        { return k }
func (k rawKey) Bucket() model.DBBucket { return nil }
func (k rawKey) Suffix() []byte       { return k }
