package forkchoice

import (
	"sync"

	"github.com/ledgerbase/chaind/internal/chainhash"
	"github.com/ledgerbase/chaind/internal/chainmodel"
)

// maxReorgHistory bounds the number of ReorgEvents ReorgTracker retains.
const maxReorgHistory = 256

// ReorgEvent describes a transition of the canonical best tip.
type ReorgEvent struct {
	OldTip  chainhash.Hash
	NewTip  chainhash.Hash
	Depth   int
	Added   []*chainmodel.Block
	Removed []*chainmodel.Block
}

// ReorgTracker wraps a ForkChoice and emits a ReorgEvent whenever its best
// tip transitions, bounding the retained history.
type ReorgTracker struct {
	fc *ForkChoice

	mtx     sync.Mutex
	history []ReorgEvent
}

// NewReorgTracker wraps fc.
func NewReorgTracker(fc *ForkChoice) *ReorgTracker {
	return &ReorgTracker{fc: fc}
}

// ForkChoice returns the wrapped ForkChoice.
func (t *ReorgTracker) ForkChoice() *ForkChoice {
	return t.fc
}

// AddBlock delegates to the wrapped ForkChoice and, when the best tip
// changes, computes and records a ReorgEvent describing the transition.
func (t *ReorgTracker) AddBlock(block *chainmodel.Block) (isNewBest bool, event *ReorgEvent, err error) {
	oldTip, hadOldTip := t.fc.BestTipHash()
	var oldBlocks []*chainmodel.Block
	if hadOldTip {
		if oldChain, ok := t.fc.ChainByTip(oldTip); ok {
			oldBlocks = oldChain.Blocks()
		}
	}

	isNewBest, err = t.fc.AddBlock(block)
	if err != nil {
		return false, nil, err
	}
	if !isNewBest {
		return false, nil, nil
	}

	newTip, _ := t.fc.BestTipHash()
	if hadOldTip && newTip == oldTip {
		return true, nil, nil
	}

	newChain, _ := t.fc.ChainByTip(newTip)
	var newBlocks []*chainmodel.Block
	if newChain != nil {
		newBlocks = newChain.Blocks()
	}

	added, removed, depth := diffChains(oldBlocks, newBlocks)

	ev := ReorgEvent{
		OldTip:  oldTip,
		NewTip:  newTip,
		Depth:   depth,
		Added:   added,
		Removed: removed,
	}

	t.mtx.Lock()
	t.history = append(t.history, ev)
	if len(t.history) > maxReorgHistory {
		t.history = t.history[len(t.history)-maxReorgHistory:]
	}
	t.mtx.Unlock()

	return true, &ev, nil
}

// History returns a copy of every recorded reorg event, oldest first.
func (t *ReorgTracker) History() []ReorgEvent {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	out := make([]ReorgEvent, len(t.history))
	copy(out, t.history)
	return out
}

// diffChains finds the common-ancestor point of old and new (by hash) and
// returns the blocks removed from old, the blocks added by new, and the
// reorg depth (number of blocks rolled back from old).
func diffChains(old, new []*chainmodel.Block) (added, removed []*chainmodel.Block, depth int) {
	commonLen := 0
	for commonLen < len(old) && commonLen < len(new) && old[commonLen].Header.Hash == new[commonLen].Header.Hash {
		commonLen++
	}
	removed = old[commonLen:]
	added = new[commonLen:]
	depth = len(removed)
	return added, removed, depth
}
