// Package blockstore implements the block and transaction indices over the
// KV store contract, per SPEC_FULL.md §4.3. It is the persistence layer the
// Chain bridges to when operating in persistent mode.
package blockstore

import (
	"encoding/binary"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/ledgerbase/chaind/internal/chainhash"
	"github.com/ledgerbase/chaind/internal/chainmodel"
	"github.com/ledgerbase/chaind/internal/kvstore"
	"github.com/ledgerbase/chaind/internal/logging"
)

var log = logging.StoreLog

// sentinelByte marks presence-only index entries (addr_from / addr_to).
var sentinelByte = []byte{0x01}

// TxIndexEntry records where a transaction lives on the canonical chain,
// stored at tx_index:<tx_hash>.
type TxIndexEntry struct {
	BlockHash     chainhash.Hash `json:"block_hash"`
	BlockHeight   uint64         `json:"block_height"`
	IndexInBlock  int            `json:"index_in_block"`
	From          string         `json:"from"`
	To            string         `json:"to"`
	Amount        uint64         `json:"amount"`
	Timestamp     int64          `json:"timestamp"`
}

// BlockStore is the block/transaction index layered over a KVStore.
type BlockStore struct {
	kv kvstore.KVStore
}

// Open wraps an already-open KVStore as a BlockStore.
func Open(kv kvstore.KVStore) *BlockStore {
	return &BlockStore{kv: kv}
}

// Close closes the underlying KVStore.
func (s *BlockStore) Close() error {
	return s.kv.Close()
}

// PutBlock writes the block, its height mapping, latest_height, and every
// transaction's record plus sender/recipient presence keys in a single
// batch.
func (s *BlockStore) PutBlock(block *chainmodel.Block) error {
	blockBytes, err := json.Marshal(block)
	if err != nil {
		return errors.Wrap(err, "failed to serialize block")
	}

	ops := make([]kvstore.Op, 0, 4+len(block.Transactions)*4)
	ops = append(ops, kvstore.PutOp(blockKey(block.Header.Hash), blockBytes))
	ops = append(ops, kvstore.PutOp(heightKey(block.Header.Height), []byte(block.Header.Hash.String())))

	latest := make([]byte, 8)
	binary.BigEndian.PutUint64(latest, block.Header.Height)
	ops = append(ops, kvstore.PutOp([]byte(keyLatestHeight), latest))

	for i, tx := range block.Transactions {
		txBytes, err := json.Marshal(tx)
		if err != nil {
			return errors.Wrap(err, "failed to serialize transaction")
		}
		txHash := tx.Hash()
		ops = append(ops, kvstore.PutOp(txKey(txHash), txBytes))

		entry := TxIndexEntry{
			BlockHash:    block.Header.Hash,
			BlockHeight:  block.Header.Height,
			IndexInBlock: i,
			From:         tx.From,
			To:           tx.To,
			Amount:       tx.Amount,
			Timestamp:    block.Header.Timestamp,
		}
		entryBytes, err := json.Marshal(entry)
		if err != nil {
			return errors.Wrap(err, "failed to serialize transaction index")
		}
		ops = append(ops, kvstore.PutOp(txIndexKey(txHash), entryBytes))
		ops = append(ops, kvstore.PutOp(addrFromKey(tx.From, txHash), sentinelByte))
		ops = append(ops, kvstore.PutOp(addrToKey(tx.To, txHash), sentinelByte))
	}

	if err := s.kv.Batch(ops); err != nil {
		return errors.Wrapf(err, "failed to persist block %s", block.Header.Hash)
	}
	log.Debugf("persisted block %s at height %d (%d txs)", block.Header.Hash, block.Header.Height, len(block.Transactions))
	return nil
}

// LatestHeight returns the height of the highest block persisted, and false
// if the store is empty.
func (s *BlockStore) LatestHeight() (uint64, bool, error) {
	value, ok, err := s.kv.Get([]byte(keyLatestHeight))
	if err != nil {
		return 0, false, err
	}
	if !ok {
		return 0, false, nil
	}
	return binary.BigEndian.Uint64(value), true, nil
}

// GetBlockByHash fetches a block by its content hash.
func (s *BlockStore) GetBlockByHash(hash chainhash.Hash) (*chainmodel.Block, bool, error) {
	value, ok, err := s.kv.Get(blockKey(hash))
	if err != nil || !ok {
		return nil, ok, err
	}
	var block chainmodel.Block
	if err := json.Unmarshal(value, &block); err != nil {
		return nil, false, errors.Wrapf(err, "failed to deserialize block %s", hash)
	}
	return &block, true, nil
}

// GetBlockByHeight fetches a block by its position on the canonical chain.
func (s *BlockStore) GetBlockByHeight(height uint64) (*chainmodel.Block, bool, error) {
	value, ok, err := s.kv.Get(heightKey(height))
	if err != nil || !ok {
		return nil, ok, err
	}
	hash, err := chainhash.NewHashFromStr(string(value))
	if err != nil {
		return nil, false, errors.Wrapf(err, "corrupt height index at height %d", height)
	}
	return s.GetBlockByHash(hash)
}

// GetTransaction fetches a transaction by its content hash.
func (s *BlockStore) GetTransaction(hash chainhash.Hash) (*chainmodel.Transaction, bool, error) {
	value, ok, err := s.kv.Get(txKey(hash))
	if err != nil || !ok {
		return nil, ok, err
	}
	var tx chainmodel.Transaction
	if err := json.Unmarshal(value, &tx); err != nil {
		return nil, false, errors.Wrapf(err, "failed to deserialize transaction %s", hash)
	}
	return &tx, true, nil
}

// GetTransactionIndex fetches the block-location record for a transaction.
func (s *BlockStore) GetTransactionIndex(hash chainhash.Hash) (*TxIndexEntry, bool, error) {
	value, ok, err := s.kv.Get(txIndexKey(hash))
	if err != nil || !ok {
		return nil, ok, err
	}
	var entry TxIndexEntry
	if err := json.Unmarshal(value, &entry); err != nil {
		return nil, false, errors.Wrapf(err, "failed to deserialize tx index %s", hash)
	}
	return &entry, true, nil
}

// TransactionsForAddress iterates both the addr_from and addr_to presence
// indices for address, dedupes the discovered transaction hashes, and
// returns the fetched transactions.
func (s *BlockStore) TransactionsForAddress(address string) ([]chainmodel.Transaction, error) {
	seen := make(map[chainhash.Hash]struct{})
	var hashes []chainhash.Hash

	collect := func(prefix []byte) error {
		cur, err := s.kv.IterPrefix(prefix)
		if err != nil {
			return err
		}
		defer cur.Close()
		for cur.Next() {
			hashStr := string(cur.Key())
			hash, err := chainhash.NewHashFromStr(hashStr)
			if err != nil {
				return errors.Wrapf(err, "corrupt address index entry %q", hashStr)
			}
			if _, ok := seen[hash]; !ok {
				seen[hash] = struct{}{}
				hashes = append(hashes, hash)
			}
		}
		return cur.Error()
	}

	if err := collect(addrFromPrefix(address)); err != nil {
		return nil, err
	}
	if err := collect(addrToPrefix(address)); err != nil {
		return nil, err
	}

	txs := make([]chainmodel.Transaction, 0, len(hashes))
	for _, hash := range hashes {
		tx, ok, err := s.GetTransaction(hash)
		if err != nil {
			return nil, err
		}
		if ok {
			txs = append(txs, *tx)
		}
	}
	return txs, nil
}
