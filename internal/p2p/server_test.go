package p2p

import (
	"net"
	"testing"
	"time"

	"github.com/ledgerbase/chaind/internal/chainmodel"
	"github.com/ledgerbase/chaind/internal/forkchoice"
	"github.com/ledgerbase/chaind/internal/mempool"
	"github.com/ledgerbase/chaind/internal/wireproto"
)

func newTestServer(t *testing.T, nodeID string) *Server {
	t.Helper()
	fc := forkchoice.New()
	genesis := chainmodel.NewGenesisBlock()
	if _, err := fc.AddBlock(genesis); err != nil {
		t.Fatalf("seed genesis: %v", err)
	}
	return NewServer(nodeID, forkchoice.NewReorgTracker(fc), mempool.NewPool(mempool.DefaultConfig()))
}

func TestHandshakeBothDirections(t *testing.T) {
	serverSide, clientSide := net.Pipe()
	defer serverSide.Close()
	defer clientSide.Close()

	serverNode := newTestServer(t, "server-node")
	clientNode := newTestServer(t, "client-node")

	errCh := make(chan error, 2)
	go func() {
		peer := newPeer(serverSide, false)
		errCh <- serverNode.handshake(peer, false)
	}()
	go func() {
		peer := newPeer(clientSide, true)
		errCh <- clientNode.handshake(peer, true)
	}()

	for i := 0; i < 2; i++ {
		select {
		case err := <-errCh:
			if err != nil {
				t.Fatalf("handshake failed: %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("handshake timed out")
		}
	}
}

func TestHandleGetChainInfo(t *testing.T) {
	srv := newTestServer(t, "node-a")
	serverSide, clientSide := net.Pipe()
	defer serverSide.Close()
	defer clientSide.Close()

	peer := newPeer(serverSide, false)

	go func() {
		srv.handleGetChainInfo(peer)
	}()

	clientSide.SetReadDeadline(time.Now().Add(2 * time.Second))
	env, err := wireproto.ReadFrame(clientSide)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if env.Type != wireproto.TypeChainInfo {
		t.Fatalf("type = %s, want ChainInfo", env.Type)
	}
}
