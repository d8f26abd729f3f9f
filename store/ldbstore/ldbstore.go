// Package ldbstore is the durable model.DBManager backend, a
// github.com/syndtr/goleveldb-backed key/value store. It is grounded on
// the teacher's infrastructure/db/database/ldb package: the same
// leveldb.Options tuning (no block compression, a sizable block cache and
// write buffer since ledger blocks are small and numerous) and the same
// constructor shape (NewLevelDB(path, cacheSizeMB)).
package ldbstore

import (
	"bytes"
	"sort"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/blocklattice/ledgercore/ledgererrors"
	"github.com/blocklattice/ledgercore/model"
)

var defaultOptions = opt.Options{
	Compression:        opt.NoCompression,
	BlockCacheCapacity:  256 * opt.MiB,
	WriteBuffer:         128 * opt.MiB,
}

// Store is a leveldb-backed model.DBManager. leveldb itself has no notion
// of a read/write transaction, so Store enforces spec.md §5's single-writer
// discipline with a mutex held for the duration of every write
// transaction, and serves read transactions from a point-in-time snapshot.
type Store struct {
	db      *leveldb.DB
	writeMu sync.Mutex
}

// New opens (or creates) a leveldb database at path. A positive cacheSizeMB
// sets the block cache capacity; the write buffer keeps its default size.
func New(path string, cacheSizeMB int) (*Store, error) {
	options := defaultOptions
	if cacheSizeMB > 0 {
		options.BlockCacheCapacity = cacheSizeMB * opt.MiB
	}
	db, err := leveldb.OpenFile(path, &options)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Get implements model.DBReader.
func (s *Store) Get(key model.DBKey) ([]byte, error) {
	v, err := s.db.Get(key.Bytes(), nil)
	if err == leveldb.ErrNotFound {
		return nil, ledgererrors.ErrNotFound
	}
	return v, err
}

// Has implements model.DBReader.
func (s *Store) Has(key model.DBKey) (bool, error) {
	return s.db.Has(key.Bytes(), nil)
}

// Cursor implements model.DBReader.
func (s *Store) Cursor(bucket model.DBBucket) (model.DBCursor, error) {
	rng := bucketRange(bucket)
	return newLevelCursor(s.db.NewIterator(rng, nil), nil, nil), nil
}

// Begin implements model.DBManager.
func (s *Store) Begin(write bool) (model.DBTransaction, error) {
	if write {
		s.writeMu.Lock()
		return &transaction{store: s, write: true, batch: new(leveldb.Batch),
			overlayPut: make(map[string][]byte), overlayDel: make(map[string]bool)}, nil
	}
	snap, err := s.db.GetSnapshot()
	if err != nil {
		return nil, err
	}
	return &transaction{store: s, write: false, snapshot: snap}, nil
}

// Close implements model.DBManager.
func (s *Store) Close() error {
	return s.db.Close()
}

func bucketRange(bucket model.DBBucket) *util.Range {
	prefix := append(append([]byte{}, bucket.Path()...), 0)
	return util.BytesPrefix(prefix)
}

// transaction implements model.DBTransaction. Write transactions buffer
// Put/Delete calls in an overlay (read back before falling through to the
// underlying snapshot) and a leveldb.Batch, applied atomically on Commit.
type transaction struct {
	store *Store
	write bool

	snapshot *leveldb.Snapshot

	batch      *leveldb.Batch
	overlayPut map[string][]byte
	overlayDel map[string]bool

	closed bool
}

func (t *transaction) Get(key model.DBKey) ([]byte, error) {
	k := string(key.Bytes())
	if t.write {
		if v, ok := t.overlayPut[k]; ok {
			return append([]byte{}, v...), nil
		}
		if t.overlayDel[k] {
			return nil, ledgererrors.ErrNotFound
		}
		v, err := t.store.db.Get(key.Bytes(), nil)
		if err == leveldb.ErrNotFound {
			return nil, ledgererrors.ErrNotFound
		}
		return v, err
	}
	v, err := t.snapshot.Get(key.Bytes(), nil)
	if err == leveldb.ErrNotFound {
		return nil, ledgererrors.ErrNotFound
	}
	return v, err
}

func (t *transaction) Has(key model.DBKey) (bool, error) {
	_, err := t.Get(key)
	if err == nil {
		return true, nil
	}
	if ledgererrors.IsNotFoundError(err) {
		return false, nil
	}
	return false, err
}

func (t *transaction) Cursor(bucket model.DBBucket) (model.DBCursor, error) {
	rng := bucketRange(bucket)
	if t.write {
		var it iterator.Iterator
		it = t.store.db.NewIterator(rng, nil)
		return newLevelCursor(it, t.overlayPut, t.overlayDel), nil
	}
	return newLevelCursor(t.snapshot.NewIterator(rng, nil), nil, nil), nil
}

func (t *transaction) Put(key model.DBKey, value []byte) error {
	if !t.write {
		panic("ldbstore: Put on a read-only transaction")
	}
	k := string(key.Bytes())
	delete(t.overlayDel, k)
	t.overlayPut[k] = append([]byte{}, value...)
	t.batch.Put(key.Bytes(), value)
	return nil
}

func (t *transaction) Delete(key model.DBKey) error {
	if !t.write {
		panic("ldbstore: Delete on a read-only transaction")
	}
	k := string(key.Bytes())
	delete(t.overlayPut, k)
	t.overlayDel[k] = true
	t.batch.Delete(key.Bytes())
	return nil
}

func (t *transaction) Commit() error {
	if t.closed {
		return nil
	}
	t.closed = true
	defer t.store.writeMu.Unlock()
	return t.store.db.Write(t.batch, nil)
}

func (t *transaction) Rollback() error {
	if t.closed {
		return nil
	}
	t.closed = true
	if t.write {
		t.store.writeMu.Unlock()
		return nil
	}
	t.snapshot.Release()
	return nil
}

func (t *transaction) RollbackUnlessClosed() error {
	if t.closed {
		return nil
	}
	return t.Rollback()
}

// levelCursor adapts a goleveldb iterator, merged with a write
// transaction's pending overlay, to model.DBCursor.
type levelCursor struct {
	entries []keyValue
	pos     int
}

type keyValue struct {
	key   []byte
	value []byte
}

func newLevelCursor(it iterator.Iterator, overlayPut map[string][]byte, overlayDel map[string]bool) *levelCursor {
	seen := make(map[string]bool)
	var entries []keyValue
	for it.Next() {
		k := append([]byte{}, it.Key()...)
		if overlayDel[string(k)] {
			seen[string(k)] = true
			continue
		}
		if v, ok := overlayPut[string(k)]; ok {
			entries = append(entries, keyValue{key: k, value: append([]byte{}, v...)})
			seen[string(k)] = true
			continue
		}
		entries = append(entries, keyValue{key: k, value: append([]byte{}, it.Value()...)})
		seen[string(k)] = true
	}
	it.Release()
	for k, v := range overlayPut {
		if !seen[k] {
			entries = append(entries, keyValue{key: []byte(k), value: append([]byte{}, v...)})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return bytes.Compare(entries[i].key, entries[j].key) < 0 })
	return &levelCursor{entries: entries, pos: -1}
}

func (c *levelCursor) Next() bool {
	if c.pos+1 >= len(c.entries) {
		c.pos = len(c.entries)
		return false
	}
	c.pos++
	return true
}

func (c *levelCursor) First() bool {
	if len(c.entries) == 0 {
		return false
	}
	c.pos = 0
	return true
}

func (c *levelCursor) Seek(key model.DBKey) error {
	target := key.Bytes()
	for i, e := range c.entries {
		if bytes.Compare(e.key, target) >= 0 {
			c.pos = i
			return nil
		}
	}
	c.pos = len(c.entries)
	return ledgererrors.ErrNotFound
}

func (c *levelCursor) Key() (model.DBKey, error) {
	if c.pos < 0 || c.pos >= len(c.entries) {
		return nil, ledgererrors.ErrNotFound
	}
	return flatKey(c.entries[c.pos].key), nil
}

func (c *levelCursor) Value() ([]byte, error) {
	if c.pos < 0 || c.pos >= len(c.entries) {
		return nil, ledgererrors.ErrNotFound
	}
	return append([]byte{}, c.entries[c.pos].value...), nil
}

func (c *levelCursor) Close() error {
	return nil
}

type flatKey []byte

func (k flatKey) Bytes() []byte          { return k }
func (k flatKey) Bucket() model.DBBucket { return nil }
func (k flatKey) Suffix() []byte         { return k }
