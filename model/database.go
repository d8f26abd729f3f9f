package model

// DBCursor iterates over database entries within some bucket.
type DBCursor interface {
	// Next moves the iterator to the next key/value pair. It returns
	// false once the iterator is exhausted.
	Next() bool

	// First moves the iterator to the first key/value pair. It returns
	// false if such a pair does not exist.
	First() bool

	// Seek moves the iterator to the first key/value pair whose key is
	// greater than or equal to the given key. It returns ErrNotFound if no
	// such pair exists.
	Seek(key DBKey) error

	// Key returns the key of the current key/value pair, or ErrNotFound if
	// done.
	Key() (DBKey, error)

	// Value returns the value of the current key/value pair, or
	// ErrNotFound if done.
	Value() ([]byte, error)

	// Close releases associated resources.
	Close() error
}

// DBReader defines a proxy over data access.
type DBReader interface {
	// Get gets the value for the given key. Returns ErrNotFound if the
	// given key does not exist.
	Get(key DBKey) ([]byte, error)

	// Has reports whether the given key exists.
	Has(key DBKey) (bool, error)

	// Cursor begins a new cursor over the given bucket.
	Cursor(bucket DBBucket) (DBCursor, error)
}

// DBWriter is an interface to write to the database.
type DBWriter interface {
	DBReader

	// Put sets the value for the given key, overwriting any previous
	// value.
	Put(key DBKey, value []byte) error

	// Delete deletes the value for the given key. It is not an error if
	// the key doesn't exist.
	Delete(key DBKey) error
}

// DBTransaction is a proxy over data access that requires an open
// transaction. The Ledger Processor and Rollback Engine take exactly one
// write transaction per block they process (spec.md §5): every table
// mutation they make goes through the same DBTransaction, so either all of
// it commits or none of it does.
type DBTransaction interface {
	DBWriter

	// Rollback discards whatever changes were made within this
	// transaction.
	Rollback() error

	// Commit commits whatever changes were made within this transaction.
	Commit() error

	// RollbackUnlessClosed rolls back unless the transaction was already
	// closed via Rollback or Commit. Safe to defer unconditionally.
	RollbackUnlessClosed() error
}

// DBManager is a database that can begin transactions and read data
// outside of one. This is the "Store" of spec.md §6.
type DBManager interface {
	DBReader

	// Begin starts a new transaction. write selects a read/write
	// transaction (single-writer - spec.md §5) vs. a read-only one.
	Begin(write bool) (DBTransaction, error)

	// Close releases the manager's resources.
	Close() error
}

// DBKey identifies a single entry within a bucket.
type DBKey interface {
	Bytes() []byte
	Bucket() DBBucket
	Suffix() []byte
}

// DBBucket identifies one of the table families spec.md §6 lists:
// accounts, blocks, pending, frontier, successor, representation,
// checksum.
type DBBucket interface {
	Bucket(bucketBytes []byte) DBBucket
	Key(suffix []byte) DBKey
	Path() []byte
}
