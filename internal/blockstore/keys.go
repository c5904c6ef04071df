package blockstore

import (
	"fmt"

	"github.com/ledgerbase/chaind/internal/chainhash"
)

// Key layout over the KV store, per SPEC_FULL.md §4.3.
const (
	prefixBlock    = "block:"
	prefixHeight   = "height:"
	keyLatestHeight = "latest_height"
	prefixTx       = "tx:"
	prefixTxIndex  = "tx_index:"
	prefixAddrFrom = "addr_from:"
	prefixAddrTo   = "addr_to:"
)

func blockKey(hash chainhash.Hash) []byte {
	return []byte(prefixBlock + hash.String())
}

// heightKey renders the height as a fixed-width zero-padded decimal string
// so lexicographic key order agrees with numeric height order ("big-endian
// decimal" per SPEC_FULL.md §4.3).
func heightKey(height uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", prefixHeight, height))
}

func txKey(hash chainhash.Hash) []byte {
	return []byte(prefixTx + hash.String())
}

func txIndexKey(hash chainhash.Hash) []byte {
	return []byte(prefixTxIndex + hash.String())
}

func addrFromKey(address string, txHash chainhash.Hash) []byte {
	return []byte(prefixAddrFrom + address + ":" + txHash.String())
}

func addrToKey(address string, txHash chainhash.Hash) []byte {
	return []byte(prefixAddrTo + address + ":" + txHash.String())
}

func addrFromPrefix(address string) []byte {
	return []byte(prefixAddrFrom + address + ":")
}

func addrToPrefix(address string) []byte {
	return []byte(prefixAddrTo + address + ":")
}
