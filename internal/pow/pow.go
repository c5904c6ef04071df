// Package pow implements the proof-of-work engine: difficulty target,
// nonce search, validation, and difficulty adjustment, per SPEC_FULL.md
// §4.8. Grounded on the teacher's checkProofOfWork (blockdag/validate.go)
// target-comparison idiom, adapted from compact-bits/big.Int to the spec's
// leading-hex-zero-count difficulty.
package pow

import (
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/ledgerbase/chaind/internal/chainhash"
	"github.com/ledgerbase/chaind/internal/chainmodel"
	"github.com/ledgerbase/chaind/internal/logging"
)

var log = logging.PowLog

// Target renders the 64-hex-digit target string for difficulty d: d
// leading zeros followed by 64-d 'f's.
func Target(difficulty int) string {
	if difficulty < 0 {
		difficulty = 0
	}
	if difficulty > 64 {
		difficulty = 64
	}
	return strings.Repeat("0", difficulty) + strings.Repeat("f", 64-difficulty)
}

// MeetsTarget reports whether hashHex (lowercase hex) satisfies difficulty:
// hashHex < target lexicographically.
func MeetsTarget(hashHex string, difficulty int) bool {
	return hashHex < Target(difficulty)
}

// Engine mines and validates blocks at a fixed difficulty.
type Engine struct {
	difficulty int
}

// NewEngine constructs an Engine at the given starting difficulty.
func NewEngine(difficulty int) *Engine {
	if difficulty < 1 {
		difficulty = 1
	}
	return &Engine{difficulty: difficulty}
}

// Difficulty returns the engine's current difficulty.
func (e *Engine) Difficulty() int {
	return e.difficulty
}

// SetDifficulty overrides the current difficulty, as computed by Adjust.
func (e *Engine) SetDifficulty(d int) {
	if d < 1 {
		d = 1
	}
	e.difficulty = d
}

// MiningResult is the outcome of a successful Mine call.
type MiningResult struct {
	Block    *chainmodel.Block
	Nonce    uint64
	Hash     string
	Attempts uint64
	Elapsed  time.Duration
}

// progressLogInterval is how often the search loop logs progress, per
// SPEC_FULL.md §5 ("periodically, every 100,000 attempts, yields a progress
// log").
const progressLogInterval = 100000

// Mine searches for the smallest non-negative nonce such that the resulting
// block's hash satisfies the engine's difficulty target. The timestamp is
// captured once at entry and held fixed across the whole search, per
// SPEC_FULL.md §4.8.
func (e *Engine) Mine(previousHash string, transactions []chainmodel.Transaction, height uint64) (*MiningResult, error) {
	prev, err := chainhash.NewHashFromStr(previousHash)
	if err != nil {
		return nil, errors.Wrap(err, "pow: invalid previous hash")
	}

	start := time.Now()
	timestamp := start.Unix()
	target := Target(e.difficulty)

	block := &chainmodel.Block{
		Header: chainmodel.BlockHeader{
			PreviousHash: prev,
			Timestamp:    timestamp,
			Height:       height,
		},
		Transactions: transactions,
	}
	merkleRoot := block.ComputeMerkleRoot()
	block.Header.MerkleRoot = merkleRoot

	var attempts uint64
	for nonce := uint64(0); ; nonce++ {
		block.Header.Nonce = nonce
		hash := block.ComputeHash()
		hashHex := hash.String()
		attempts++

		if attempts%progressLogInterval == 0 {
			log.Infof("mining height %d: %d attempts so far", height, attempts)
		}

		if hashHex < target {
			block.Header.Hash = hash
			return &MiningResult{
				Block:    block,
				Nonce:    nonce,
				Hash:     hashHex,
				Attempts: attempts,
				Elapsed:  time.Since(start),
			}, nil
		}
	}
}

// Validate recomputes block's hash from its fields and tests it against the
// engine's current difficulty target.
func (e *Engine) Validate(block *chainmodel.Block) error {
	if !block.VerifyHash() {
		return errors.New("pow: block hash does not match its contents")
	}
	if !MeetsTarget(block.Header.Hash.String(), e.difficulty) {
		return errors.Errorf("pow: block hash %s does not meet difficulty %d", block.Header.Hash, e.difficulty)
	}
	return nil
}

// Adjust computes the arithmetic mean inter-arrival time across lastBlocks
// (ordered oldest-to-newest) and nudges the difficulty toward
// targetBlockTimeSeconds: halve-or-less mean doubles difficulty up by one,
// double-or-more mean drops it by one (floor 1), otherwise unchanged.
func (e *Engine) Adjust(lastBlocks []*chainmodel.Block, targetBlockTimeSeconds int64) {
	if len(lastBlocks) < 2 {
		return
	}

	var totalDelta int64
	for i := 1; i < len(lastBlocks); i++ {
		totalDelta += lastBlocks[i].Header.Timestamp - lastBlocks[i-1].Header.Timestamp
	}
	meanInterval := totalDelta / int64(len(lastBlocks)-1)

	switch {
	case meanInterval < targetBlockTimeSeconds/2:
		e.difficulty++
		log.Infof("difficulty increased to %d (mean interval %ds < target/2 %ds)", e.difficulty, meanInterval, targetBlockTimeSeconds/2)
	case meanInterval > targetBlockTimeSeconds*2:
		if e.difficulty > 1 {
			e.difficulty--
		}
		log.Infof("difficulty decreased to %d (mean interval %ds > 2*target %ds)", e.difficulty, meanInterval, targetBlockTimeSeconds*2)
	}
}
