package chain

import (
	"path/filepath"
	"testing"

	"github.com/ledgerbase/chaind/internal/chainmodel"
)

func mineBlockOn(t *testing.T, c *Chain) *chainmodel.Block {
	t.Helper()
	tip := c.Tip()
	block := &chainmodel.Block{
		Header: chainmodel.BlockHeader{
			PreviousHash: tip.Header.Hash,
			Timestamp:    tip.Header.Timestamp + 1,
			Height:       tip.Header.Height + 1,
		},
		Transactions: []chainmodel.Transaction{
			chainmodel.NewCoinbaseTransaction("1111111111111111111111111111111111111a", 10, nil),
		},
	}
	block.Finalize()
	return block
}

func TestMemoryChainStartsWithSeededBlocks(t *testing.T) {
	genesis := chainmodel.NewGenesisBlock()
	c := NewMemoryChain([]*chainmodel.Block{genesis})
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
	if c.IsPersistent() {
		t.Fatalf("memory chain should not report persistent")
	}
}

func TestAppendAcceptsValidBlock(t *testing.T) {
	genesis := chainmodel.NewGenesisBlock()
	c := NewMemoryChain([]*chainmodel.Block{genesis})

	block := mineBlockOn(t, c)
	if err := c.Append(block); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	if c.Tip().Header.Hash != block.Header.Hash {
		t.Fatalf("Tip() did not advance to newly appended block")
	}
}

func TestAppendRejectsWrongPreviousHash(t *testing.T) {
	genesis := chainmodel.NewGenesisBlock()
	c := NewMemoryChain([]*chainmodel.Block{genesis})

	block := mineBlockOn(t, c)
	block.Header.PreviousHash = chainmodel.GenesisPreviousHash
	block.Finalize()

	err := c.Append(block)
	if err == nil || !IsValidationError(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestAppendRejectsWrongHeight(t *testing.T) {
	genesis := chainmodel.NewGenesisBlock()
	c := NewMemoryChain([]*chainmodel.Block{genesis})

	block := mineBlockOn(t, c)
	block.Header.Height = 99
	block.Finalize()

	err := c.Append(block)
	if err == nil || !IsValidationError(err) {
		t.Fatalf("expected ValidationError for wrong height, got %v", err)
	}
}

func TestOpenPersistentInitializesGenesisThenReloads(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "chaindata")

	c, err := OpenPersistent(dir)
	if err != nil {
		t.Fatalf("OpenPersistent (init): %v", err)
	}
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 after genesis init", c.Len())
	}
	block := mineBlockOn(t, c)
	if err := c.Append(block); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := OpenPersistent(dir)
	if err != nil {
		t.Fatalf("OpenPersistent (reload): %v", err)
	}
	defer reopened.Close()
	if reopened.Len() != 2 {
		t.Fatalf("reloaded Len() = %d, want 2", reopened.Len())
	}
	if reopened.Tip().Header.Hash != block.Header.Hash {
		t.Fatalf("reloaded tip does not match appended block")
	}
}

func TestTransactionsForAddressScansInMemoryChain(t *testing.T) {
	genesis := chainmodel.NewGenesisBlock()
	c := NewMemoryChain([]*chainmodel.Block{genesis})

	txs, err := c.TransactionsForAddress("alice")
	if err != nil {
		t.Fatalf("TransactionsForAddress: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("len(txs) = %d, want 1", len(txs))
	}
}
