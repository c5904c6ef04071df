package blockstore

import (
	"path/filepath"
	"testing"

	"github.com/ledgerbase/chaind/internal/chainmodel"
	"github.com/ledgerbase/chaind/internal/kvstore"
)

func openTestBlockStore(t *testing.T) *BlockStore {
	t.Helper()
	kv, err := kvstore.OpenLevelDB(filepath.Join(t.TempDir(), "blocks"))
	if err != nil {
		t.Fatalf("OpenLevelDB: %v", err)
	}
	store := Open(kv)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPutAndGetBlockByHashAndHeight(t *testing.T) {
	store := openTestBlockStore(t)
	genesis := chainmodel.NewGenesisBlock()

	if err := store.PutBlock(genesis); err != nil {
		t.Fatalf("PutBlock: %v", err)
	}

	byHash, ok, err := store.GetBlockByHash(genesis.Header.Hash)
	if err != nil || !ok {
		t.Fatalf("GetBlockByHash: ok=%v err=%v", ok, err)
	}
	if byHash.Header.Hash != genesis.Header.Hash {
		t.Fatalf("GetBlockByHash returned wrong block")
	}

	byHeight, ok, err := store.GetBlockByHeight(0)
	if err != nil || !ok {
		t.Fatalf("GetBlockByHeight: ok=%v err=%v", ok, err)
	}
	if byHeight.Header.Hash != genesis.Header.Hash {
		t.Fatalf("GetBlockByHeight returned wrong block")
	}
}

func TestLatestHeightTracksHighestBlock(t *testing.T) {
	store := openTestBlockStore(t)

	if _, has, err := store.LatestHeight(); err != nil || has {
		t.Fatalf("LatestHeight on empty store: has=%v err=%v", has, err)
	}

	genesis := chainmodel.NewGenesisBlock()
	store.PutBlock(genesis)

	height, has, err := store.LatestHeight()
	if err != nil || !has || height != 0 {
		t.Fatalf("LatestHeight = %d, has=%v err=%v, want 0/true", height, has, err)
	}
}

func TestGetTransactionAndIndex(t *testing.T) {
	store := openTestBlockStore(t)
	genesis := chainmodel.NewGenesisBlock()
	store.PutBlock(genesis)

	txHash := genesis.Transactions[0].Hash()
	tx, ok, err := store.GetTransaction(txHash)
	if err != nil || !ok {
		t.Fatalf("GetTransaction: ok=%v err=%v", ok, err)
	}
	if tx.To != "alice" {
		t.Fatalf("GetTransaction().To = %s, want alice", tx.To)
	}

	entry, ok, err := store.GetTransactionIndex(txHash)
	if err != nil || !ok {
		t.Fatalf("GetTransactionIndex: ok=%v err=%v", ok, err)
	}
	if entry.BlockHeight != 0 {
		t.Fatalf("entry.BlockHeight = %d, want 0", entry.BlockHeight)
	}
}

func TestTransactionsForAddressFindsBothSides(t *testing.T) {
	store := openTestBlockStore(t)
	genesis := chainmodel.NewGenesisBlock()
	store.PutBlock(genesis)

	txs, err := store.TransactionsForAddress("alice")
	if err != nil {
		t.Fatalf("TransactionsForAddress: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("len(txs) = %d, want 1", len(txs))
	}

	txs, err = store.TransactionsForAddress("nobody")
	if err != nil {
		t.Fatalf("TransactionsForAddress: %v", err)
	}
	if len(txs) != 0 {
		t.Fatalf("len(txs) = %d, want 0 for unknown address", len(txs))
	}
}
