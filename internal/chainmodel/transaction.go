// Package chainmodel defines the wire-stable data model: transactions,
// block headers, and blocks, together with the canonical encoding used to
// compute their content hashes (SPEC_FULL.md §4.1).
package chainmodel

import (
	"encoding/json"

	"github.com/ledgerbase/chaind/internal/chainhash"
)

// CoinbaseSentinelAddress is the reserved all-zero sender address used by
// genesis and coinbase transactions to mint balance.
const CoinbaseSentinelAddress = "0000000000000000000000000000000000000000"

// MinSignatureLength is the minimum accepted length, in bytes, of a
// non-empty transaction signature (SPEC_FULL.md §4.6 / design note on
// signature handling).
const MinSignatureLength = 64

// Transaction is the unit tuple (from, to, amount, signature). Its identity
// is the content hash of its canonical encoding.
type Transaction struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Amount    uint64 `json:"amount"`
	Signature []byte `json:"signature"`
}

// NewCoinbaseTransaction builds a coinbase transaction: sender is the
// reserved sentinel, amount is the minted value (may be zero), and the
// signature field carries a free-form message.
func NewCoinbaseTransaction(to string, amount uint64, message []byte) Transaction {
	return Transaction{
		From:      CoinbaseSentinelAddress,
		To:        to,
		Amount:    amount,
		Signature: message,
	}
}

// IsCoinbase reports whether tx mints balance rather than transferring it.
func (tx Transaction) IsCoinbase() bool {
	return tx.From == CoinbaseSentinelAddress
}

// CanonicalBytes returns the deterministic byte encoding hashed to produce
// the transaction's identity. Field order is fixed by the struct definition
// above; implementers must preserve it exactly to retain hash compatibility.
func (tx Transaction) CanonicalBytes() []byte {
	b, err := json.Marshal(tx)
	if err != nil {
		// Transaction fields are all directly marshalable; this cannot fail.
		panic(err)
	}
	return b
}

// Hash returns the transaction's content hash.
func (tx Transaction) Hash() chainhash.Hash {
	return chainhash.Sum(tx.CanonicalBytes())
}

// HashString is a convenience wrapper around Hash().String().
func (tx Transaction) HashString() string {
	return tx.Hash().String()
}

// IsSentinelAddress reports whether addr is the coinbase sentinel, a helper
// used by validation and account projection.
func IsSentinelAddress(addr string) bool {
	return addr == CoinbaseSentinelAddress
}

// LooksLikeAddress reports whether addr is non-empty, the only shape the
// stateless transaction check requires (SPEC_FULL.md §4.6). An address
// derived by internal/wallet is additionally 40 lowercase-hex characters,
// but that is a property of wallet-generated addresses, not a general
// transaction-validity rule: the chain's canonical genesis allocations and
// test scenarios use plain names like "alice"/"bob" as addresses and must
// remain valid.
func LooksLikeAddress(addr string) bool {
	return addr != ""
}
