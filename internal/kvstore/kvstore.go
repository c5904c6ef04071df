// Package kvstore defines the ordered key-value persistence contract used by
// the block store (SPEC_FULL.md §4.2) and its goleveldb-backed
// implementation, grounded on the teacher's database2/ffldb driver.
package kvstore

// KVPair is a single key/value entry returned by prefix iteration.
type KVPair struct {
	Key   []byte
	Value []byte
}

// Op is a single operation in a Batch call: a delete when Delete is true,
// otherwise a put of Value under Key.
type Op struct {
	Key   []byte
	Value []byte
	// Delete is true when this Op deletes Key instead of writing Value.
	Delete bool
}

// PutOp builds a batch Op that writes key/value.
func PutOp(key, value []byte) Op {
	return Op{Key: key, Value: value}
}

// DeleteOp builds a batch Op that deletes key.
func DeleteOp(key []byte) Op {
	return Op{Key: key, Delete: true}
}

// Cursor iterates key/value pairs sharing a prefix, in lexicographic key
// order. It is modeled on the teacher's database2.Cursor / LevelDBCursor.
type Cursor interface {
	// Next advances the cursor. It returns false once exhausted or closed.
	Next() bool
	// Key returns the current key, with the scan prefix stripped. The
	// returned slice must not be retained past the next Next call.
	Key() []byte
	// Value returns the current value. The returned slice must not be
	// retained past the next Next call.
	Value() []byte
	// Error returns any error encountered during iteration.
	Error() error
	// Close releases the cursor's resources.
	Close() error
}

// KVStore is single-process ordered key-value persistence. Keys are UTF-8
// strings; values are opaque byte strings. Concurrent access is serialized
// internally for writers and lock-free for readers (goleveldb semantics);
// the LevelDB implementation locks its directory, so only one process can
// hold a given store open at a time.
type KVStore interface {
	// Put writes value under key, overwriting any existing value.
	Put(key []byte, value []byte) error
	// Get reads the value stored under key. ok is false when key is absent.
	Get(key []byte) (value []byte, ok bool, err error)
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key []byte) error
	// Exists reports whether key is present.
	Exists(key []byte) (bool, error)
	// IterPrefix returns a Cursor over every key sharing prefix, in
	// lexicographic order.
	IterPrefix(prefix []byte) (Cursor, error)
	// Batch applies every op atomically.
	Batch(ops []Op) error
	// Compact compacts the full key range of the underlying store, returning
	// once the compaction has finished.
	Compact() error
	// Close releases the store's resources.
	Close() error
}
