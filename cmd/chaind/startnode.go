package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"github.com/ledgerbase/chaind/internal/accountstate"
	"github.com/ledgerbase/chaind/internal/chain"
	"github.com/ledgerbase/chaind/internal/forkchoice"
	"github.com/ledgerbase/chaind/internal/mempool"
	"github.com/ledgerbase/chaind/internal/metrics"
	"github.com/ledgerbase/chaind/internal/p2p"
	"github.com/ledgerbase/chaind/internal/rpc"
)

func newNodeID() string {
	host, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}

// buildForkChoice seeds a ForkChoice (and its ReorgTracker) from every
// block already persisted on c.
func buildForkChoice(c *chain.Chain) (*forkchoice.ReorgTracker, error) {
	fc := forkchoice.New()
	tracker := forkchoice.NewReorgTracker(fc)
	for _, block := range c.Blocks() {
		if _, err := tracker.AddBlock(block); err != nil {
			return nil, errors.Wrap(err, "failed to seed fork choice from persisted chain")
		}
	}
	return tracker, nil
}

func runStartNode(conf *startNodeConfig) error {
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

	if conf.ConnectTo != "" {
		host, portStr, splitErr := net.SplitHostPort(conf.ConnectTo)
		if splitErr != nil {
			return errors.Wrap(splitErr, "invalid --connect address")
		}
		var port int
		fmt.Sscanf(portStr, "%d", &port)
		if err := server.Connect(host, port); err != nil {
			return err
		}
	}

	rpcHandlers := &rpc.Handlers{Reorg: tracker, Pool: pool, Peers: server}
	rpcServer := rpc.NewServer(conf.RPCAddr, rpcHandlers)
	go func() {
		if err := rpcServer.ListenAndServe(); err != nil && !errors.Is(err, net.ErrClosed) {
			fmt.Fprintln(os.Stderr, "rpc server stopped:", err)
		}
	}()
	defer rpcServer.Close()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			if best := tracker.ForkChoice().BestChain(); best != nil {
				pool.Persist(conf.ResolvedMempoolFile())
			}
			return nil
		case <-ticker.C:
			pool.Cleanup()
			if best := tracker.ForkChoice().BestChain(); best != nil {
				if tip := best.Tip(); tip != nil {
					metrics.ChainHeight.Set(float64(tip.Header.Height))
				}
			}
			metrics.MempoolSize.Set(float64(pool.Size()))
			metrics.PeersConnected.Set(float64(server.PeerCount()))
		}
	}
}
