package rpc

import (
	"encoding/json"

	"github.com/ledgerbase/chaind/internal/accountstate"
	"github.com/ledgerbase/chaind/internal/chainhash"
	"github.com/ledgerbase/chaind/internal/chainmodel"
	"github.com/ledgerbase/chaind/internal/forkchoice"
	"github.com/ledgerbase/chaind/internal/mempool"
	"github.com/ledgerbase/chaind/internal/wallet"
)

// PeerCounter reports the live peer count; satisfied by *p2p.Server. Kept
// as a narrow interface here so rpc does not import p2p (which itself has
// no reason to import rpc) just to report one integer.
type PeerCounter interface {
	PeerCount() int
}

// Handlers dispatches JSON-RPC methods against the node's shared state.
type Handlers struct {
	Reorg  *forkchoice.ReorgTracker
	Pool   *mempool.Pool
	Wallet *wallet.Wallet
	Peers  PeerCounter
}

type methodFunc func(h *Handlers, params json.RawMessage) (interface{}, *Error)

var methods = map[string]methodFunc{
	"getblockchaininfo": (*Handlers).getBlockchainInfo,
	"getblockcount":     (*Handlers).getBlockCount,
	"getblockhash":      (*Handlers).getBlockHash,
	"getblock":          (*Handlers).getBlock,
	"getmempoolinfo":    (*Handlers).getMempoolInfo,
	"getrawmempool":     (*Handlers).getRawMempool,
	"getbalance":        (*Handlers).getBalance,
	"getnewaddress":     (*Handlers).getNewAddress,
	"listtransactions":  (*Handlers).listTransactions,
}

// Dispatch looks up req.Method and invokes it, producing a Response with
// either a result or a translated Error.
func (h *Handlers) Dispatch(req Request) Response {
	fn, ok := methods[req.Method]
	if !ok {
		return errorResponse(req.ID, newError(errCodeMethodNotFound, "method not found: "+req.Method))
	}
	result, rpcErr := fn(h, req.Params)
	if rpcErr != nil {
		return errorResponse(req.ID, rpcErr)
	}
	return successResponse(req.ID, result)
}

type blockchainInfoResult struct {
	Height    uint64 `json:"height"`
	TipHash   string `json:"tip_hash"`
	ForkCount int    `json:"fork_count"`
}

func (h *Handlers) getBlockchainInfo(_ json.RawMessage) (interface{}, *Error) {
	fc := h.Reorg.ForkChoice()
	best := fc.BestChain()
	if best == nil {
		return blockchainInfoResult{}, nil
	}
	tip := best.Tip()
	return blockchainInfoResult{
		Height:    tip.Header.Height,
		TipHash:   tip.Header.Hash.String(),
		ForkCount: fc.ChainCount(),
	}, nil
}

func (h *Handlers) getBlockCount(_ json.RawMessage) (interface{}, *Error) {
	best := h.Reorg.ForkChoice().BestChain()
	if best == nil {
		return 0, nil
	}
	return best.Len(), nil
}

type heightParams struct {
	Height uint64 `json:"height"`
}

func (h *Handlers) getBlockHash(params json.RawMessage) (interface{}, *Error) {
	var p heightParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, newError(ErrCodeInvalidParams, "invalid params: "+err.Error())
	}
	best := h.Reorg.ForkChoice().BestChain()
	if best == nil {
		return nil, newError(ErrCodeBlockNotFound, "chain is empty")
	}
	block, ok := best.BlockAt(p.Height)
	if !ok {
		return nil, newError(ErrCodeBlockNotFound, "no block at that height")
	}
	return block.Header.Hash.String(), nil
}

type hashParams struct {
	Hash string `json:"hash"`
}

func (h *Handlers) getBlock(params json.RawMessage) (interface{}, *Error) {
	var p hashParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, newError(ErrCodeInvalidParams, "invalid params: "+err.Error())
	}
	hash, err := chainhash.NewHashFromStr(p.Hash)
	if err != nil {
		return nil, newError(ErrCodeInvalidParams, "invalid block hash: "+err.Error())
	}
	best := h.Reorg.ForkChoice().BestChain()
	if best == nil {
		return nil, newError(ErrCodeBlockNotFound, "chain is empty")
	}
	for _, block := range best.Blocks() {
		if block.Header.Hash == hash {
			return block, nil
		}
	}
	return nil, newError(ErrCodeBlockNotFound, "block not found")
}

func (h *Handlers) getMempoolInfo(_ json.RawMessage) (interface{}, *Error) {
	return h.Pool.Stats(), nil
}

func (h *Handlers) getRawMempool(_ json.RawMessage) (interface{}, *Error) {
	return h.Pool.Pending(), nil
}

type addressParams struct {
	Address string `json:"address"`
}

func (h *Handlers) currentSnapshot() *accountstate.State {
	best := h.Reorg.ForkChoice().BestChain()
	if best == nil {
		return accountstate.New()
	}
	return accountstate.FromBlocks(best.Blocks())
}

func (h *Handlers) getBalance(params json.RawMessage) (interface{}, *Error) {
	var p addressParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, newError(ErrCodeInvalidParams, "invalid params: "+err.Error())
	}
	if !chainmodel.LooksLikeAddress(p.Address) {
		return nil, newError(ErrCodeInvalidAddress, "malformed address: "+p.Address)
	}
	return h.currentSnapshot().Get(p.Address), nil
}

func (h *Handlers) getNewAddress(_ json.RawMessage) (interface{}, *Error) {
	if h.Wallet == nil {
		return nil, newError(errCodeInternalError, "no wallet configured for this node")
	}
	addr, err := h.Wallet.NewAddress()
	if err != nil {
		return nil, newError(errCodeInternalError, err.Error())
	}
	return addr, nil
}

func (h *Handlers) listTransactions(params json.RawMessage) (interface{}, *Error) {
	var p addressParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, newError(ErrCodeInvalidParams, "invalid params: "+err.Error())
	}
	if !chainmodel.LooksLikeAddress(p.Address) {
		return nil, newError(ErrCodeInvalidAddress, "malformed address: "+p.Address)
	}
	best := h.Reorg.ForkChoice().BestChain()
	if best == nil {
		return []chainmodel.Transaction{}, nil
	}
	txs, err := best.TransactionsForAddress(p.Address)
	if err != nil {
		return nil, newError(errCodeInternalError, err.Error())
	}
	return txs, nil
}
