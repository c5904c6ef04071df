package mempool

import (
	"sync"

	"github.com/ledgerbase/chaind/internal/accountstate"
	"github.com/ledgerbase/chaind/internal/chainhash"
	"github.com/ledgerbase/chaind/internal/chainmodel"
)

// Validator performs the stateless and stateful checks of SPEC_FULL.md
// §4.6 and tracks a duplicate-detection seen-set across calls.
type Validator struct {
	mtx  sync.Mutex
	seen map[chainhash.Hash]struct{}
}

// NewValidator returns an empty Validator.
func NewValidator() *Validator {
	return &Validator{seen: make(map[chainhash.Hash]struct{})}
}

// checkStateless runs the address/amount/signature checks that do not
// depend on a balance snapshot.
func checkStateless(tx chainmodel.Transaction) error {
	if !chainmodel.LooksLikeAddress(tx.From) || !chainmodel.LooksLikeAddress(tx.To) {
		return newValidationError(ErrInvalidAddress, "from/to must be non-empty")
	}
	if tx.Amount == 0 {
		return newValidationError(ErrEmptyTransaction, "amount must be greater than zero")
	}
	if tx.From == tx.To {
		return newValidationError(ErrSelfTransfer, "from and to must differ")
	}
	if len(tx.Signature) > 0 && len(tx.Signature) < chainmodel.MinSignatureLength {
		return newValidationError(ErrInvalidSignature, "signature shorter than minimum length")
	}
	// An empty signature is provisionally accepted, per SPEC_FULL.md §9's
	// design note: production deployments must tighten this to require and
	// verify a real signature.
	return nil
}

// Validate runs every stateless and stateful check, plus the duplicate
// check, against a single transaction and balance snapshot.
func (v *Validator) Validate(tx chainmodel.Transaction, snapshot *accountstate.State) error {
	if err := checkStateless(tx); err != nil {
		return err
	}
	if snapshot.Get(tx.From) < tx.Amount && !tx.IsCoinbase() {
		return newValidationError(ErrInsufficientFunds, "balance of "+tx.From+" is insufficient")
	}

	hash := tx.Hash()
	v.mtx.Lock()
	defer v.mtx.Unlock()
	if _, ok := v.seen[hash]; ok {
		return newValidationError(ErrDuplicateTransaction, "transaction already seen: "+hash.String())
	}
	return nil
}

// MarkSeen records tx's hash in the duplicate-detection set. Callers invoke
// this after a transaction has been accepted into the pool.
func (v *Validator) MarkSeen(tx chainmodel.Transaction) {
	v.mtx.Lock()
	defer v.mtx.Unlock()
	v.seen[tx.Hash()] = struct{}{}
}

// Forget removes tx's hash from the duplicate-detection set, used when a
// transaction is evicted or expired so it can be resubmitted.
func (v *Validator) Forget(tx chainmodel.Transaction) {
	v.mtx.Lock()
	defer v.mtx.Unlock()
	delete(v.seen, tx.Hash())
}

// ValidateBatch validates every transaction in txs against a private copy
// of snapshot, advancing that copy transaction-by-transaction so later
// transactions see the effects of earlier ones in the same batch. It
// returns the subset that remain valid in order, per SPEC_FULL.md §4.6's
// block-inclusion contract. Duplicate-set membership is not consulted
// here; callers selecting for block inclusion from already-admitted pool
// entries do not need the dedup check.
func ValidateBatch(txs []chainmodel.Transaction, snapshot *accountstate.State) []chainmodel.Transaction {
	working := snapshot.Clone()
	selected := make([]chainmodel.Transaction, 0, len(txs))
	for _, tx := range txs {
		if err := checkStateless(tx); err != nil {
			continue
		}
		if !tx.IsCoinbase() && working.Get(tx.From) < tx.Amount {
			continue
		}
		working.ApplyTransaction(tx)
		selected = append(selected, tx)
	}
	return selected
}
