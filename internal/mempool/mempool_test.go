package mempool

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ledgerbase/chaind/internal/accountstate"
	"github.com/ledgerbase/chaind/internal/chainmodel"
)

// addrAlice and addrBob intentionally mirror the plain-name genesis
// allocation addresses (SPEC_FULL.md §9), not a wallet-derived hex shape:
// validation must accept exactly these values.
const (
	addrAlice = "alice"
	addrBob   = "bob"
)

func fundedSnapshot(balance uint64) *accountstate.State {
	s := accountstate.New()
	s.Set(addrAlice, balance)
	return s
}

func TestValidatorRejectsInsufficientFunds(t *testing.T) {
	v := NewValidator()
	tx := chainmodel.Transaction{From: addrAlice, To: addrBob, Amount: 100}
	err := v.Validate(tx, fundedSnapshot(10))
	kind, ok := KindOf(err)
	if !ok || kind != ErrInsufficientFunds {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
}

func TestValidatorRejectsSelfTransfer(t *testing.T) {
	v := NewValidator()
	tx := chainmodel.Transaction{From: addrAlice, To: addrAlice, Amount: 1}
	err := v.Validate(tx, fundedSnapshot(100))
	kind, ok := KindOf(err)
	if !ok || kind != ErrSelfTransfer {
		t.Fatalf("err = %v, want ErrSelfTransfer", err)
	}
}

func TestValidatorRejectsDuplicate(t *testing.T) {
	v := NewValidator()
	tx := chainmodel.Transaction{From: addrAlice, To: addrBob, Amount: 1}
	snapshot := fundedSnapshot(100)
	if err := v.Validate(tx, snapshot); err != nil {
		t.Fatalf("first validate: %v", err)
	}
	v.MarkSeen(tx)
	err := v.Validate(tx, snapshot)
	kind, ok := KindOf(err)
	if !ok || kind != ErrDuplicateTransaction {
		t.Fatalf("err = %v, want ErrDuplicateTransaction", err)
	}
}

func TestPoolAddAndSelectForBlock(t *testing.T) {
	pool := NewPool(DefaultConfig())
	snapshot := fundedSnapshot(100)

	lowPriority := chainmodel.Transaction{From: addrAlice, To: addrBob, Amount: 5}
	highPriority := chainmodel.Transaction{From: addrAlice, To: addrBob, Amount: 50}

	if err := pool.Add(lowPriority, snapshot, time.Now()); err != nil {
		t.Fatalf("Add low: %v", err)
	}
	if err := pool.Add(highPriority, snapshot, time.Now()); err != nil {
		t.Fatalf("Add high: %v", err)
	}

	pending := pool.Pending()
	if len(pending) != 2 || pending[0].Amount != 50 {
		t.Fatalf("pending = %+v, want high-priority entry first", pending)
	}

	selected := pool.SelectForBlock(10, snapshot)
	if len(selected) != 2 {
		t.Fatalf("selected %d transactions, want 2", len(selected))
	}
}

func TestPoolRejectsDuplicateAdd(t *testing.T) {
	pool := NewPool(DefaultConfig())
	snapshot := fundedSnapshot(100)
	tx := chainmodel.Transaction{From: addrAlice, To: addrBob, Amount: 1}

	if err := pool.Add(tx, snapshot, time.Now()); err != nil {
		t.Fatalf("first Add: %v", err)
	}
	if err := pool.Add(tx, snapshot, time.Now()); err == nil {
		t.Fatalf("expected duplicate rejection on second Add")
	}
}

func TestPoolPersistAndLoadRoundTrip(t *testing.T) {
	pool := NewPool(DefaultConfig())
	snapshot := fundedSnapshot(100)
	tx := chainmodel.Transaction{From: addrAlice, To: addrBob, Amount: 10}
	if err := pool.Add(tx, snapshot, time.Now()); err != nil {
		t.Fatalf("Add: %v", err)
	}

	path := filepath.Join(t.TempDir(), "mempool.json")
	if err := pool.Persist(path); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	loaded, err := Load(path, DefaultConfig(), snapshot)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Size() != 1 {
		t.Fatalf("loaded pool size = %d, want 1", loaded.Size())
	}
}

func TestLoadMissingFileReturnsEmptyPool(t *testing.T) {
	pool, err := Load(filepath.Join(t.TempDir(), "missing.json"), DefaultConfig(), accountstate.New())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if pool.Size() != 0 {
		t.Fatalf("pool size = %d, want 0", pool.Size())
	}
}
