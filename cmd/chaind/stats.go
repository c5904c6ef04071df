package main

import (
	"fmt"

	"github.com/ledgerbase/chaind/internal/accountstate"
	"github.com/ledgerbase/chaind/internal/chain"
	"github.com/ledgerbase/chaind/internal/mempool"
)

func runStats(conf *statsConfig) error {
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
	poolStats := pool.Stats()
	tip := c.Tip()

	fmt.Printf("chain height:       %d\n", tip.Header.Height)
	fmt.Printf("chain tip:          %s\n", tip.Header.Hash)
	fmt.Printf("mempool size:       %d\n", poolStats.Size)
	fmt.Printf("mempool bytes:      %d\n", poolStats.TotalBytes)
	fmt.Printf("oldest tx age (s):  %.1f\n", poolStats.OldestAgeSeconds)
	fmt.Printf("avg priority:       %.1f\n", poolStats.AveragePriority)
	return nil
}
