package main

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/ledgerbase/chaind/internal/accountstate"
	"github.com/ledgerbase/chaind/internal/chain"
	"github.com/ledgerbase/chaind/internal/chainmodel"
	"github.com/ledgerbase/chaind/internal/mempool"
)

func runAddTx(conf *addTxConfig) error {
	if err := conf.ApplyLogging(); err != nil {
		return err
	}

	sig, err := hex.DecodeString(conf.Signature)
	if err != nil {
		return errors.Wrap(err, "invalid hex signature")
	}
	tx := chainmodel.Transaction{From: conf.From, To: conf.To, Amount: conf.Amount, Signature: sig}

	c, err := chain.OpenPersistent(conf.ResolvedBlockchainDataDir())
	if err != nil {
		return err
	}
	defer c.Close()

	snapshot := accountstate.FromBlocks(c.Blocks())
	pool, err := mempool.Load(conf.ResolvedMempoolFile(), mempool.DefaultConfig(), snapshot)
	if err != nil {
		return err
	}

	if err := pool.Add(tx, snapshot, time.Now()); err != nil {
		return err
	}
	if err := pool.Persist(conf.ResolvedMempoolFile()); err != nil {
		return err
	}

	fmt.Printf("added transaction %s to mempool (%d pending)\n", tx.HashString(), pool.Size())
	return nil
}
