package forkchoice

import (
	"testing"

	"github.com/ledgerbase/chaind/internal/chainhash"
	"github.com/ledgerbase/chaind/internal/chainmodel"
)

func childOf(parent *chainmodel.Block, timestamp int64, nonce uint64) *chainmodel.Block {
	b := &chainmodel.Block{
		Header: chainmodel.BlockHeader{
			PreviousHash: parent.Header.Hash,
			Timestamp:    timestamp,
			Height:       parent.Header.Height + 1,
			Nonce:        nonce,
		},
		Transactions: []chainmodel.Transaction{
			chainmodel.NewCoinbaseTransaction("1111111111111111111111111111111111111a", 1, nil),
		},
	}
	b.Finalize()
	return b
}

func TestAddBlockAcceptsGenesisAsBest(t *testing.T) {
	fc := New()
	genesis := chainmodel.NewGenesisBlock()

	isNewBest, err := fc.AddBlock(genesis)
	if err != nil {
		t.Fatalf("AddBlock(genesis): %v", err)
	}
	if !isNewBest {
		t.Fatalf("first block added should become best")
	}
	tip, ok := fc.BestTipHash()
	if !ok || tip != genesis.Header.Hash {
		t.Fatalf("BestTipHash() = %s, want genesis hash", tip)
	}
}

func TestAddBlockExtendsBestTip(t *testing.T) {
	fc := New()
	genesis := chainmodel.NewGenesisBlock()
	fc.AddBlock(genesis)

	child := childOf(genesis, 1, 0)
	isNewBest, err := fc.AddBlock(child)
	if err != nil {
		t.Fatalf("AddBlock(child): %v", err)
	}
	if !isNewBest {
		t.Fatalf("extending the only chain should become best")
	}
	if fc.BestChain().Len() != 2 {
		t.Fatalf("BestChain().Len() = %d, want 2", fc.BestChain().Len())
	}
}

func TestAddBlockRejectsUnknownParent(t *testing.T) {
	fc := New()
	genesis := chainmodel.NewGenesisBlock()
	fc.AddBlock(genesis)

	orphan := childOf(genesis, 1, 0)
	orphan.Header.PreviousHash = chainhash.Sum([]byte("not-a-real-parent"))
	orphan.Finalize()

	_, err := fc.AddBlock(orphan)
	if err != ErrParentNotFound {
		t.Fatalf("err = %v, want ErrParentNotFound", err)
	}
}

func TestLongerForkBecomesBest(t *testing.T) {
	fc := New()
	genesis := chainmodel.NewGenesisBlock()
	fc.AddBlock(genesis)

	branchA1 := childOf(genesis, 1, 0)
	fc.AddBlock(branchA1)

	branchB1 := childOf(genesis, 2, 1)
	fc.AddBlock(branchB1)
	if fc.ChainCount() != 2 {
		t.Fatalf("ChainCount() = %d, want 2 competing tips", fc.ChainCount())
	}

	branchB2 := childOf(branchB1, 3, 0)
	isNewBest, err := fc.AddBlock(branchB2)
	if err != nil {
		t.Fatalf("AddBlock(branchB2): %v", err)
	}
	if !isNewBest {
		t.Fatalf("longer branch B should overtake branch A as best")
	}
	tip, _ := fc.BestTipHash()
	if tip != branchB2.Header.Hash {
		t.Fatalf("BestTipHash() = %s, want branch B tip", tip)
	}
}

func TestReorgTrackerRecordsEventOnOvertake(t *testing.T) {
	fc := New()
	tracker := NewReorgTracker(fc)
	genesis := chainmodel.NewGenesisBlock()
	tracker.AddBlock(genesis)

	branchA1 := childOf(genesis, 1, 0)
	tracker.AddBlock(branchA1)

	branchB1 := childOf(genesis, 2, 1)
	tracker.AddBlock(branchB1)
	branchB2 := childOf(branchB1, 3, 0)
	_, event, err := tracker.AddBlock(branchB2)
	if err != nil {
		t.Fatalf("AddBlock(branchB2): %v", err)
	}
	if event == nil {
		t.Fatalf("expected a reorg event on overtake")
	}
	if event.Depth != 1 {
		t.Fatalf("event.Depth = %d, want 1", event.Depth)
	}
	if len(tracker.History()) != 1 {
		t.Fatalf("History() length = %d, want 1", len(tracker.History()))
	}
}
