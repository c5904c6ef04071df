package accountstate

import (
	"testing"

	"github.com/ledgerbase/chaind/internal/chainmodel"
)

const (
	addrAlice = "1111111111111111111111111111111111111a"
	addrBob   = "2222222222222222222222222222222222222b"
)

func TestSetAndGet(t *testing.T) {
	s := New()
	s.Set(addrAlice, 100)
	if got := s.Get(addrAlice); got != 100 {
		t.Fatalf("Get() = %d, want 100", got)
	}
}

func TestSetZeroRemovesKey(t *testing.T) {
	s := New()
	s.Set(addrAlice, 100)
	s.Set(addrAlice, 0)
	snapshot := s.Snapshot()
	if _, ok := snapshot[addrAlice]; ok {
		t.Fatalf("zero balance should not be stored")
	}
}

func TestAddSaturatesAtZero(t *testing.T) {
	s := New()
	s.Set(addrAlice, 10)
	s.Add(addrAlice, -100)
	if got := s.Get(addrAlice); got != 0 {
		t.Fatalf("Get() = %d, want 0 after saturating negative delta", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s := New()
	s.Set(addrAlice, 100)
	clone := s.Clone()
	clone.Set(addrAlice, 5)
	if s.Get(addrAlice) != 100 {
		t.Fatalf("mutating clone affected original state")
	}
}

func TestApplyTransactionDebitsAndCredits(t *testing.T) {
	s := New()
	s.Set(addrAlice, 100)
	tx := chainmodel.Transaction{From: addrAlice, To: addrBob, Amount: 30}
	s.ApplyTransaction(tx)
	if s.Get(addrAlice) != 70 {
		t.Fatalf("sender balance = %d, want 70", s.Get(addrAlice))
	}
	if s.Get(addrBob) != 30 {
		t.Fatalf("recipient balance = %d, want 30", s.Get(addrBob))
	}
}

func TestApplyTransactionCoinbaseOnlyCredits(t *testing.T) {
	s := New()
	tx := chainmodel.NewCoinbaseTransaction(addrAlice, 50, nil)
	s.ApplyTransaction(tx)
	if s.Get(addrAlice) != 50 {
		t.Fatalf("coinbase recipient balance = %d, want 50", s.Get(addrAlice))
	}
	if s.Get(chainmodel.CoinbaseSentinelAddress) != 0 {
		t.Fatalf("coinbase sentinel balance should remain 0")
	}
}

func TestFromBlocksReplaysInOrder(t *testing.T) {
	genesis := chainmodel.NewGenesisBlock()
	s := FromBlocks([]*chainmodel.Block{genesis})
	if s.Get("alice") != 1000 {
		t.Fatalf("alice balance = %d, want 1000", s.Get("alice"))
	}
	if s.Get("bob") != 500 {
		t.Fatalf("bob balance = %d, want 500", s.Get("bob"))
	}
}
