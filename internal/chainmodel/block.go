package chainmodel

import (
	"encoding/json"

	"github.com/ledgerbase/chaind/internal/chainhash"
)

// GenesisPreviousHash is the reserved all-zero previous-hash sentinel that
// marks a block as height 0.
var GenesisPreviousHash = chainhash.ZeroHash

// BlockHeader is (previous_hash, timestamp_seconds, nonce, merkle_root,
// hash, height). hash commits to every other field plus the block's
// transaction list; see Block.ComputeHash.
type BlockHeader struct {
	PreviousHash chainhash.Hash `json:"previous_hash"`
	Timestamp    int64          `json:"timestamp"`
	Nonce        uint64         `json:"nonce"`
	MerkleRoot   chainhash.Hash `json:"merkle_root"`
	Hash         chainhash.Hash `json:"hash"`
	Height       uint64         `json:"height"`
}

// headerForHashing mirrors BlockHeader with the Hash field replaced by an
// empty string, per
// SPEC_FULL.md §4.1: "the block hash is computed over the header with its
// hash field replaced by an empty string, concatenated with the
// transactions". Field order must match BlockHeader's declaration order.
type headerForHashing struct {
	PreviousHash chainhash.Hash `json:"previous_hash"`
	Timestamp    int64          `json:"timestamp"`
	Nonce        uint64         `json:"nonce"`
	MerkleRoot   chainhash.Hash `json:"merkle_root"`
	Hash         string         `json:"hash"`
	Height       uint64         `json:"height"`
}

// Block is a header plus its ordered transaction list.
type Block struct {
	Header       BlockHeader   `json:"header"`
	Transactions []Transaction `json:"transactions"`
}

// IsGenesis reports whether this block is height 0, i.e. its previous hash
// is the all-zero sentinel.
func (b *Block) IsGenesis() bool {
	return b.Header.PreviousHash.IsZero()
}

// ComputeMerkleRoot recomputes the Merkle commitment of b.Transactions.
func (b *Block) ComputeMerkleRoot() chainhash.Hash {
	leaves := make([]chainhash.Hash, len(b.Transactions))
	for i, tx := range b.Transactions {
		leaves[i] = tx.Hash()
	}
	return chainhash.MerkleRoot(leaves)
}

// ComputeHash recomputes the block's content hash from its header (with the
// hash field blanked) and its transaction list, in that order.
func (b *Block) ComputeHash() chainhash.Hash {
	hdr := headerForHashing{
		PreviousHash: b.Header.PreviousHash,
		Timestamp:    b.Header.Timestamp,
		Nonce:        b.Header.Nonce,
		MerkleRoot:   b.Header.MerkleRoot,
		Hash:         "",
		Height:       b.Header.Height,
	}
	hdrBytes, err := json.Marshal(hdr)
	if err != nil {
		panic(err)
	}
	txBytes, err := json.Marshal(b.Transactions)
	if err != nil {
		panic(err)
	}
	buf := make([]byte, 0, len(hdrBytes)+len(txBytes))
	buf = append(buf, hdrBytes...)
	buf = append(buf, txBytes...)
	return chainhash.Sum(buf)
}

// Finalize recomputes MerkleRoot and Hash from the current transaction list
// and fills them into the header. Callers building a block (miner, genesis
// constructor) must call this before using Header.Hash.
func (b *Block) Finalize() {
	b.Header.MerkleRoot = b.ComputeMerkleRoot()
	b.Header.Hash = b.ComputeHash()
}

// VerifyHash reports whether the stored Header.Hash and Header.MerkleRoot
// still match a fresh recomputation — the round-trip invariant from
// SPEC_FULL.md §8 (hash determinism, Merkle commitment).
func (b *Block) VerifyHash() bool {
	if b.ComputeMerkleRoot() != b.Header.MerkleRoot {
		return false
	}
	return b.ComputeHash() == b.Header.Hash
}

// NewGenesisBlock constructs the canonical genesis block fixed by
// SPEC_FULL.md §9: two allocations (alice: 1000, bob: 500), previous_hash
// all-zero, timestamp 0, nonce 0, height 0.
func NewGenesisBlock() *Block {
	b := &Block{
		Header: BlockHeader{
			PreviousHash: GenesisPreviousHash,
			Timestamp:    0,
			Nonce:        0,
			Height:       0,
		},
		Transactions: []Transaction{
			NewCoinbaseTransaction("alice", 1000, []byte("genesis")),
			NewCoinbaseTransaction("bob", 500, []byte("genesis")),
		},
	}
	b.Finalize()
	return b
}
