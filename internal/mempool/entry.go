package mempool

import (
	"encoding/json"
	"time"

	"github.com/ledgerbase/chaind/internal/chainhash"
	"github.com/ledgerbase/chaind/internal/chainmodel"
)

// Entry is a mempool entry: (transaction, arrival_timestamp, priority_score,
// size_bytes). Its identity is its transaction's content hash.
type Entry struct {
	Transaction      chainmodel.Transaction
	ArrivalTimestamp time.Time
	PriorityScore    int64
	SizeBytes        int
}

// Hash returns the entry's identity.
func (e Entry) Hash() chainhash.Hash {
	return e.Transaction.Hash()
}

// NewEntry builds an Entry for tx, computing its serialized size and using
// amount as the default priority score (higher amount, higher priority —
// the numeric fee-market stand-in per SPEC_FULL.md's non-goals).
func NewEntry(tx chainmodel.Transaction, arrival time.Time) Entry {
	return Entry{
		Transaction:      tx,
		ArrivalTimestamp: arrival,
		PriorityScore:    int64(tx.Amount),
		SizeBytes:        len(tx.CanonicalBytes()),
	}
}

// marshalEntries renders the JSON written to mempool.json: just the raw
// transaction list, per SPEC_FULL.md §4.7 persist/load contract.
func marshalEntries(entries []Entry) ([]byte, error) {
	out := make([]chainmodel.Transaction, len(entries))
	for i, e := range entries {
		out[i] = e.Transaction
	}
	return json.MarshalIndent(out, "", "  ")
}

func unmarshalEntries(data []byte) ([]chainmodel.Transaction, error) {
	var out []chainmodel.Transaction
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
