package main

import (
	"github.com/ledgerbase/chaind/internal/accountstate"
	"github.com/ledgerbase/chaind/internal/chain"
	"github.com/ledgerbase/chaind/internal/forkchoice"
	"github.com/ledgerbase/chaind/internal/mempool"
	"github.com/ledgerbase/chaind/internal/rpc"
)

func runStartRPC(conf *startRPCConfig) error {
	if err := conf.ApplyLogging(); err != nil {
		return err
	}

	c, err := chain.OpenPersistent(conf.ResolvedBlockchainDataDir())
	if err != nil {
		return err
	}
	defer c.Close()

	fc := forkchoice.New()
	tracker := forkchoice.NewReorgTracker(fc)
	for _, block := range c.Blocks() {
		if _, err := tracker.AddBlock(block); err != nil {
			return err
		}
	}

	snapshot := accountstate.FromBlocks(c.Blocks())
	pool, err := mempool.Load(conf.ResolvedMempoolFile(), mempool.DefaultConfig(), snapshot)
	if err != nil {
		return err
	}

	server := rpc.NewServer(conf.RPCAddr, &rpc.Handlers{Reorg: tracker, Pool: pool})
	return server.ListenAndServe()
}
