package kvstore

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelDBStore is the KVStore backed by github.com/syndtr/goleveldb, the
// teacher's own choice for on-disk block and transaction indices
// (database2/drivers/ffldb).
type LevelDBStore struct {
	ldb *leveldb.DB
}

// OpenLevelDB opens (creating if absent) a LevelDBStore rooted at path.
func OpenLevelDB(path string) (*LevelDBStore, error) {
	options := &opt.Options{
		Filter: nil,
	}
	db, err := leveldb.OpenFile(path, options)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open leveldb at %s", path)
	}
	return &LevelDBStore{ldb: db}, nil
}

func (s *LevelDBStore) Put(key []byte, value []byte) error {
	return errors.WithStack(s.ldb.Put(key, value, nil))
}

func (s *LevelDBStore) Get(key []byte) ([]byte, bool, error) {
	value, err := s.ldb.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.WithStack(err)
	}
	return value, true, nil
}

func (s *LevelDBStore) Delete(key []byte) error {
	return errors.WithStack(s.ldb.Delete(key, nil))
}

func (s *LevelDBStore) Exists(key []byte) (bool, error) {
	ok, err := s.ldb.Has(key, nil)
	if err != nil {
		return false, errors.WithStack(err)
	}
	return ok, nil
}

func (s *LevelDBStore) IterPrefix(prefix []byte) (Cursor, error) {
	it := s.ldb.NewIterator(util.BytesPrefix(prefix), nil)
	return &levelDBCursor{it: it, prefixLen: len(prefix)}, nil
}

func (s *LevelDBStore) Batch(ops []Op) error {
	b := new(leveldb.Batch)
	for _, op := range ops {
		if op.Delete {
			b.Delete(op.Key)
		} else {
			b.Put(op.Key, op.Value)
		}
	}
	return errors.WithStack(s.ldb.Write(b, nil))
}

func (s *LevelDBStore) Compact() error {
	return errors.WithStack(s.ldb.CompactRange(util.Range{}))
}

func (s *LevelDBStore) Close() error {
	return errors.WithStack(s.ldb.Close())
}

// levelDBCursor is a thin wrapper around a goleveldb iterator, mirroring
// the teacher's database/ffldb/ldb.LevelDBCursor.
type levelDBCursor struct {
	it        iterator.Iterator
	prefixLen int
	isClosed  bool
}

func (c *levelDBCursor) Next() bool {
	if c.isClosed {
		return false
	}
	return c.it.Next()
}

// Key returns the current key with the scan prefix stripped, matching the
// teacher's LevelDBCursor.Key() contract.
func (c *levelDBCursor) Key() []byte {
	if c.isClosed {
		return nil
	}
	k := c.it.Key()
	if k == nil {
		return nil
	}
	if c.prefixLen > len(k) {
		return nil
	}
	trimmed := k[c.prefixLen:]
	out := make([]byte, len(trimmed))
	copy(out, trimmed)
	return out
}

func (c *levelDBCursor) Value() []byte {
	if c.isClosed {
		return nil
	}
	v := c.it.Value()
	if v == nil {
		return nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out
}

func (c *levelDBCursor) Error() error {
	return c.it.Error()
}

func (c *levelDBCursor) Close() error {
	if c.isClosed {
		return nil
	}
	c.isClosed = true
	c.it.Release()
	return nil
}
