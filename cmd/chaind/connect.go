package main

import (
	"fmt"
	"net"
	"time"

	"github.com/pkg/errors"

	"github.com/ledgerbase/chaind/internal/accountstate"
	"github.com/ledgerbase/chaind/internal/chain"
	"github.com/ledgerbase/chaind/internal/mempool"
	"github.com/ledgerbase/chaind/internal/p2p"
)

func runConnect(conf *connectConfig) error {
	if err := conf.ApplyLogging(); err != nil {
		return err
	}

	c, err := chain.OpenPersistent(conf.ResolvedBlockchainDataDir())
	if err != nil {
		return err
	}
	defer c.Close()

	tracker, err := buildForkChoice(c)
	if err != nil {
		return err
	}

	snapshot := accountstate.FromBlocks(c.Blocks())
	pool, err := mempool.Load(conf.ResolvedMempoolFile(), mempool.DefaultConfig(), snapshot)
	if err != nil {
		return err
	}

	server := p2p.NewServer(newNodeID(), tracker, pool)
	if err := server.Listen(conf.ListenAddr); err != nil {
		return err
	}
	defer server.Close()

	host, portStr, err := net.SplitHostPort(conf.Peer)
	if err != nil {
		return errors.Wrap(err, "invalid --peer address")
	}
	var port int
	fmt.Sscanf(portStr, "%d", &port)
	if err := server.Connect(host, port); err != nil {
		return err
	}

	// Give the handshake a moment to complete before requesting a sync.
	time.Sleep(500 * time.Millisecond)
	if err := server.SyncBlockchain(); err != nil {
		return err
	}

	time.Sleep(2 * time.Second)

	if best := tracker.ForkChoice().BestChain(); best != nil {
		if tip := best.Tip(); tip != nil {
			fmt.Printf("synced with %s: height=%d tip=%s\n", conf.Peer, tip.Header.Height, tip.Header.Hash)
		}
	}
	return nil
}
