// Package chain implements the in-memory ordered block sequence plus its
// persistence bridge, per SPEC_FULL.md §4.4. It is the adapted
// generalization of the teacher's BlockDAG to a single linear chain: no
// multi-parent DAG bookkeeping, ghostdag/blue-set scoring, or virtual block
// remains — ForkChoice (internal/forkchoice) owns the multi-tip graph this
// type's DAG ancestor used to hold directly.
package chain

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/ledgerbase/chaind/internal/blockstore"
	"github.com/ledgerbase/chaind/internal/chainhash"
	"github.com/ledgerbase/chaind/internal/chainmodel"
	"github.com/ledgerbase/chaind/internal/kvstore"
	"github.com/ledgerbase/chaind/internal/logging"
)

var log = logging.ChainLog

// Chain holds an in-memory block vector and, when persistent, a shared
// handle to the block store.
type Chain struct {
	mtx    sync.RWMutex
	blocks []*chainmodel.Block
	store  *blockstore.BlockStore // nil for memory-only (speculative fork) chains
}

// NewMemoryChain builds a memory-only chain seeded with the given blocks,
// used by fork choice to represent speculative forks that have not (yet)
// become the canonical persistent chain.
func NewMemoryChain(blocks []*chainmodel.Block) *Chain {
	cp := make([]*chainmodel.Block, len(blocks))
	copy(cp, blocks)
	return &Chain{blocks: cp}
}

// OpenPersistent opens the block store rooted at path. If latest_height
// exists, it loads blocks 0..=latest into memory; otherwise it instantiates
// the genesis block, persists it, and seeds memory with it.
func OpenPersistent(path string) (*Chain, error) {
	kv, err := kvstore.OpenLevelDB(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open block store at %s", path)
	}
	store := blockstore.Open(kv)

	c := &Chain{store: store}

	latest, has, err := store.LatestHeight()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read latest_height")
	}

	if !has {
		genesis := chainmodel.NewGenesisBlock()
		if err := store.PutBlock(genesis); err != nil {
			return nil, errors.Wrap(err, "failed to persist genesis block")
		}
		c.blocks = []*chainmodel.Block{genesis}
		log.Infof("initialized new chain at %s with genesis block %s", path, genesis.Header.Hash)
		return c, nil
	}

	blocks := make([]*chainmodel.Block, 0, latest+1)
	for h := uint64(0); h <= latest; h++ {
		block, ok, err := store.GetBlockByHeight(h)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load block at height %d", h)
		}
		if !ok {
			return nil, errors.Errorf("missing block at height %d while loading chain", h)
		}
		blocks = append(blocks, block)
	}
	c.blocks = blocks
	log.Infof("loaded chain from %s: %d blocks, tip %s", path, len(blocks), blocks[len(blocks)-1].Header.Hash)
	return c, nil
}

// Close releases the underlying block store, if persistent.
func (c *Chain) Close() error {
	if c.store == nil {
		return nil
	}
	return c.store.Close()
}

// IsPersistent reports whether this chain is backed by a block store.
func (c *Chain) IsPersistent() bool {
	return c.store != nil
}

// Len returns the number of blocks currently on the chain.
func (c *Chain) Len() int {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return len(c.blocks)
}

// Tip returns the highest block on the chain.
func (c *Chain) Tip() *chainmodel.Block {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return c.tipLocked()
}

func (c *Chain) tipLocked() *chainmodel.Block {
	if len(c.blocks) == 0 {
		return nil
	}
	return c.blocks[len(c.blocks)-1]
}

// Blocks returns a copy of the full in-memory block slice.
func (c *Chain) Blocks() []*chainmodel.Block {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	out := make([]*chainmodel.Block, len(c.blocks))
	copy(out, c.blocks)
	return out
}

// BlockAt returns the block at the given height, if present in memory.
func (c *Chain) BlockAt(height uint64) (*chainmodel.Block, bool) {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	if height >= uint64(len(c.blocks)) {
		return nil, false
	}
	return c.blocks[height], true
}

// Validate reports whether block may legally extend this chain's current
// tip: previous_hash == tip.hash and height == len(blocks).
func (c *Chain) Validate(block *chainmodel.Block) error {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return c.validateLocked(block)
}

func (c *Chain) validateLocked(block *chainmodel.Block) error {
	tip := c.tipLocked()
	if tip == nil {
		return newValidationError("chain has no tip to extend")
	}
	if block.Header.PreviousHash != tip.Header.Hash {
		return newValidationError("previous_hash does not match tip hash")
	}
	if block.Header.Height != uint64(len(c.blocks)) {
		return newValidationError("height does not match chain length")
	}
	if !block.VerifyHash() {
		return newValidationError("block hash or merkle root does not verify")
	}
	return nil
}

// Append validates block against the current tip and, on success, persists
// it (if this chain is persistent) then appends it in memory.
func (c *Chain) Append(block *chainmodel.Block) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if err := c.validateLocked(block); err != nil {
		return err
	}

	if c.store != nil {
		if err := c.store.PutBlock(block); err != nil {
			return errors.Wrap(err, "failed to persist block during append")
		}
	}
	c.blocks = append(c.blocks, block)
	log.Debugf("appended block %s at height %d", block.Header.Hash, block.Header.Height)
	return nil
}

// GetTransaction delegates to the block store when persistent, otherwise
// scans the in-memory block list.
func (c *Chain) GetTransaction(hash chainhash.Hash) (*chainmodel.Transaction, bool, error) {
	if c.store != nil {
		return c.store.GetTransaction(hash)
	}
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	for _, block := range c.blocks {
		for _, tx := range block.Transactions {
			if tx.Hash() == hash {
				cp := tx
				return &cp, true, nil
			}
		}
	}
	return nil, false, nil
}

// TransactionsForAddress delegates to the block store when persistent,
// otherwise scans the in-memory block list.
func (c *Chain) TransactionsForAddress(address string) ([]chainmodel.Transaction, error) {
	if c.store != nil {
		return c.store.TransactionsForAddress(address)
	}
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	var out []chainmodel.Transaction
	for _, block := range c.blocks {
		for _, tx := range block.Transactions {
			if tx.From == address || tx.To == address {
				out = append(out, tx)
			}
		}
	}
	return out, nil
}
