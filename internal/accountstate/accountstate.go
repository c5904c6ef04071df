// Package accountstate implements the flat account-balance projection
// (SPEC_FULL.md §4.5). The spec explicitly rejects UTXO semantics; this
// package is the adapted replacement for the teacher's utxoset.go, carrying
// forward its "derive by replay" contract over a flat map instead of an
// unspent-output set.
package accountstate

import "github.com/ledgerbase/chaind/internal/chainmodel"

// State is a balance map address -> u64. Zero balances are never stored.
type State struct {
	balances map[string]uint64
}

// New returns an empty balance state.
func New() *State {
	return &State{balances: make(map[string]uint64)}
}

// Get returns the balance of addr, or 0 if unknown.
func (s *State) Get(addr string) uint64 {
	return s.balances[addr]
}

// Set assigns addr's balance directly, removing the key if the new balance
// is zero.
func (s *State) Set(addr string, balance uint64) {
	if balance == 0 {
		delete(s.balances, addr)
		return
	}
	s.balances[addr] = balance
}

// Add applies a signed delta to addr's balance, saturating at zero. It
// removes the key when the resulting balance is zero.
func (s *State) Add(addr string, delta int64) {
	current := int64(s.balances[addr])
	next := current + delta
	if next <= 0 {
		delete(s.balances, addr)
		return
	}
	s.balances[addr] = uint64(next)
}

// Clone returns an independent deep copy, used by validators and miners to
// simulate transactions against a snapshot without mutating shared state.
func (s *State) Clone() *State {
	clone := make(map[string]uint64, len(s.balances))
	for addr, bal := range s.balances {
		clone[addr] = bal
	}
	return &State{balances: clone}
}

// ApplyTransaction applies tx's effect to the state: a coinbase transaction
// only credits To; any other transaction debits From and credits To.
func (s *State) ApplyTransaction(tx chainmodel.Transaction) {
	if !tx.IsCoinbase() {
		s.Add(tx.From, -int64(tx.Amount))
	}
	s.Add(tx.To, int64(tx.Amount))
}

// Snapshot returns a read-only copy of the full balance map, for callers
// (e.g. the RPC facade) that need to enumerate balances.
func (s *State) Snapshot() map[string]uint64 {
	out := make(map[string]uint64, len(s.balances))
	for addr, bal := range s.balances {
		out[addr] = bal
	}
	return out
}

// FromBlocks replays the ordered transaction list of every block, in order,
// into a fresh State. This is the contract every cached projection must
// remain equivalent to.
func FromBlocks(blocks []*chainmodel.Block) *State {
	s := New()
	for _, block := range blocks {
		for _, tx := range block.Transactions {
			s.ApplyTransaction(tx)
		}
	}
	return s
}
