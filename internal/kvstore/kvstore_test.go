package kvstore

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *LevelDBStore {
	t.Helper()
	store, err := OpenLevelDB(filepath.Join(t.TempDir(), "kv"))
	if err != nil {
		t.Fatalf("OpenLevelDB: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPutGetDelete(t *testing.T) {
	store := openTestStore(t)

	if err := store.Put([]byte("k1"), []byte("v1")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	value, ok, err := store.Get([]byte("k1"))
	if err != nil || !ok {
		t.Fatalf("Get: value=%s ok=%v err=%v", value, ok, err)
	}
	if string(value) != "v1" {
		t.Fatalf("Get() = %s, want v1", value)
	}

	if err := store.Delete([]byte("k1")); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	_, ok, err = store.Get([]byte("k1"))
	if err != nil {
		t.Fatalf("Get after delete: %v", err)
	}
	if ok {
		t.Fatalf("key should be absent after Delete")
	}
}

func TestExists(t *testing.T) {
	store := openTestStore(t)
	store.Put([]byte("present"), []byte("x"))

	ok, err := store.Exists([]byte("present"))
	if err != nil || !ok {
		t.Fatalf("Exists(present) = %v, %v", ok, err)
	}
	ok, err = store.Exists([]byte("absent"))
	if err != nil || ok {
		t.Fatalf("Exists(absent) = %v, %v", ok, err)
	}
}

func TestIterPrefixOrdersLexicographically(t *testing.T) {
	store := openTestStore(t)
	store.Put([]byte("prefix:b"), []byte("2"))
	store.Put([]byte("prefix:a"), []byte("1"))
	store.Put([]byte("other:z"), []byte("3"))

	cur, err := store.IterPrefix([]byte("prefix:"))
	if err != nil {
		t.Fatalf("IterPrefix: %v", err)
	}
	defer cur.Close()

	var keys []string
	for cur.Next() {
		keys = append(keys, string(cur.Key()))
	}
	if err := cur.Error(); err != nil {
		t.Fatalf("cursor error: %v", err)
	}
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Fatalf("keys = %v, want [a b]", keys)
	}
}

func TestBatchAppliesAtomically(t *testing.T) {
	store := openTestStore(t)
	store.Put([]byte("existing"), []byte("old"))

	err := store.Batch([]Op{
		PutOp([]byte("new"), []byte("value")),
		DeleteOp([]byte("existing")),
	})
	if err != nil {
		t.Fatalf("Batch: %v", err)
	}

	if _, ok, _ := store.Get([]byte("existing")); ok {
		t.Fatalf("existing key should have been deleted by batch")
	}
	value, ok, _ := store.Get([]byte("new"))
	if !ok || string(value) != "value" {
		t.Fatalf("new key = %s, ok=%v, want value/true", value, ok)
	}
}
