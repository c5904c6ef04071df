package main

import (
	"fmt"
	"time"

	"github.com/ledgerbase/chaind/internal/accountstate"
	"github.com/ledgerbase/chaind/internal/chain"
	"github.com/ledgerbase/chaind/internal/chainmodel"
	"github.com/ledgerbase/chaind/internal/mempool"
	"github.com/ledgerbase/chaind/internal/metrics"
	"github.com/ledgerbase/chaind/internal/pow"
)

// CoinbaseReward is the fixed block reward credited to the miner's
// address, per block.
const CoinbaseReward = 50

func runMine(conf *mineConfig) error {
	if err := conf.ApplyLogging(); err != nil {
		return err
	}

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

	coinbase := chainmodel.NewCoinbaseTransaction(conf.MinerAddress, CoinbaseReward, nil)
	selected := pool.SelectForBlock(conf.MaxTxCount, snapshot)
	txs := append([]chainmodel.Transaction{coinbase}, selected...)

	tip := c.Tip()
	engine := pow.NewEngine(conf.Difficulty)
	miningPool := pow.NewMiningPool(engine)

	result, err := engine.Mine(tip.Header.Hash.String(), txs, tip.Header.Height+1)
	if err != nil {
		return err
	}
	miningPool.RecordResult(result)

	if err := c.Append(result.Block); err != nil {
		return err
	}

	pool.Remove(selected)
	if err := pool.Persist(conf.ResolvedMempoolFile()); err != nil {
		return err
	}

	metrics.BlocksMinedTotal.Inc()
	metrics.MiningAttemptsTotal.Add(float64(result.Attempts))
	if result.Elapsed > 0 {
		metrics.PowHashrate.Set(float64(result.Attempts) / result.Elapsed.Seconds())
	}
	metrics.ChainHeight.Set(float64(result.Block.Header.Height))

	fmt.Printf("mined block %s at height %d (%d attempts, %s)\n",
		result.Block.Header.Hash, result.Block.Header.Height, result.Attempts, result.Elapsed.Round(time.Millisecond))
	return nil
}
