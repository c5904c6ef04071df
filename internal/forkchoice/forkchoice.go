// Package forkchoice implements multi-tip chain tracking and longest-chain
// selection, per SPEC_FULL.md §4.9. It is the adapted replacement for the
// teacher's virtualBlock/ghostdag blue-set scoring (blockdag/virtualblock.go,
// blockdag/blues.go): instead of a DAG with blue-set ordering, this module
// tracks one Chain per known tip and picks the longest, breaking ties by
// timestamp, exactly as SPEC_FULL.md's simplified account-chain model
// requires.
package forkchoice

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/ledgerbase/chaind/internal/chain"
	"github.com/ledgerbase/chaind/internal/chainhash"
	"github.com/ledgerbase/chaind/internal/chainmodel"
	"github.com/ledgerbase/chaind/internal/logging"
)

var log = logging.ForkLog

// ErrParentNotFound is returned by AddBlock when no known chain contains
// the candidate block's previous_hash.
var ErrParentNotFound = errors.New("forkchoice: parent block not found")

// ForkChoice holds every known tip's Chain and tracks the canonical best
// tip.
type ForkChoice struct {
	mtx         sync.RWMutex
	chains      map[chainhash.Hash]*chain.Chain
	bestTipHash chainhash.Hash
	hasBest     bool
}

// New returns an empty ForkChoice, ready to receive a genesis block.
func New() *ForkChoice {
	return &ForkChoice{chains: make(map[chainhash.Hash]*chain.Chain)}
}

// BestTipHash returns the current canonical tip hash.
func (f *ForkChoice) BestTipHash() (chainhash.Hash, bool) {
	f.mtx.RLock()
	defer f.mtx.RUnlock()
	return f.bestTipHash, f.hasBest
}

// BestChain returns the Chain for the current canonical tip.
func (f *ForkChoice) BestChain() *chain.Chain {
	f.mtx.RLock()
	defer f.mtx.RUnlock()
	if !f.hasBest {
		return nil
	}
	return f.chains[f.bestTipHash]
}

// ChainCount returns the number of distinct known tips.
func (f *ForkChoice) ChainCount() int {
	f.mtx.RLock()
	defer f.mtx.RUnlock()
	return len(f.chains)
}

// HasForks reports whether more than one tip is known.
func (f *ForkChoice) HasForks() bool {
	return f.ChainCount() > 1
}

// ChainByTip returns the Chain known under the given tip hash.
func (f *ForkChoice) ChainByTip(tipHash chainhash.Hash) (*chain.Chain, bool) {
	f.mtx.RLock()
	defer f.mtx.RUnlock()
	c, ok := f.chains[tipHash]
	return c, ok
}

// isBetter reports whether candidate (length, tipTimestamp) beats the
// current best: strictly longer wins; on equal length, the strictly newer
// tip timestamp wins.
func isBetter(candidateLen int, candidateTimestamp int64, bestLen int, bestTimestamp int64) bool {
	if candidateLen != bestLen {
		return candidateLen > bestLen
	}
	return candidateTimestamp > bestTimestamp
}

// AddBlock admits block into the fork-choice graph and reports whether it
// changed the canonical best tip.
func (f *ForkChoice) AddBlock(block *chainmodel.Block) (isNewBest bool, err error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	if block.IsGenesis() {
		return f.addGenesisLocked(block)
	}
	return f.addChildLocked(block)
}

func (f *ForkChoice) addGenesisLocked(block *chainmodel.Block) (bool, error) {
	newChain := chain.NewMemoryChain([]*chainmodel.Block{block})
	f.chains[block.Header.Hash] = newChain
	return f.maybePromoteLocked(block.Header.Hash, newChain), nil
}

func (f *ForkChoice) addChildLocked(block *chainmodel.Block) (bool, error) {
	// Case 1: the block extends a known tip directly.
	if parentChain, ok := f.chains[block.Header.PreviousHash]; ok {
		if err := parentChain.Validate(block); err != nil {
			return false, err
		}
		extended := chain.NewMemoryChain(append(parentChain.Blocks(), block))
		oldTipHash := block.Header.PreviousHash
		delete(f.chains, oldTipHash)
		f.chains[block.Header.Hash] = extended
		return f.maybePromoteLocked(block.Header.Hash, extended), nil
	}

	// Case 2: previous_hash is found inside an existing chain but is not
	// its current tip — synthesize a new prefix chain up to that block.
	for _, existing := range f.chains {
		blocks := existing.Blocks()
		for i, b := range blocks {
			if b.Header.Hash != block.Header.PreviousHash {
				continue
			}
			prefix := chain.NewMemoryChain(blocks[:i+1])
			if err := prefix.Validate(block); err != nil {
				return false, err
			}
			newChain := chain.NewMemoryChain(append(prefix.Blocks(), block))
			f.chains[block.Header.Hash] = newChain
			return f.maybePromoteLocked(block.Header.Hash, newChain), nil
		}
	}

	return false, ErrParentNotFound
}

func (f *ForkChoice) maybePromoteLocked(tipHash chainhash.Hash, c *chain.Chain) bool {
	tip := c.Tip()
	candidateLen := c.Len()
	candidateTimestamp := tip.Header.Timestamp

	if !f.hasBest {
		f.bestTipHash = tipHash
		f.hasBest = true
		log.Infof("new best tip %s (height %d)", tipHash, candidateLen-1)
		return true
	}

	best := f.chains[f.bestTipHash]
	bestLen := 0
	var bestTimestamp int64
	if best != nil {
		bestLen = best.Len()
		if bestTip := best.Tip(); bestTip != nil {
			bestTimestamp = bestTip.Header.Timestamp
		}
	}

	if isBetter(candidateLen, candidateTimestamp, bestLen, bestTimestamp) {
		f.bestTipHash = tipHash
		log.Infof("reorg: new best tip %s (height %d)", tipHash, candidateLen-1)
		return true
	}
	return false
}
