package p2p

import (
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/ledgerbase/chaind/internal/accountstate"
	"github.com/ledgerbase/chaind/internal/chainhash"
	"github.com/ledgerbase/chaind/internal/chainmodel"
	"github.com/ledgerbase/chaind/internal/forkchoice"
	"github.com/ledgerbase/chaind/internal/logging"
	"github.com/ledgerbase/chaind/internal/mempool"
	"github.com/ledgerbase/chaind/internal/wireproto"
)

var log = logging.P2PLog

// MaxPeers caps the number of simultaneously connected peers, inbound and
// outbound combined.
const MaxPeers = 64

// SyncBlockCount is the number of blocks requested per GetBlocks round
// during sync_blockchain.
const SyncBlockCount = 100

// ErrTooManyPeers is returned when accepting a connection would exceed
// MaxPeers.
var ErrTooManyPeers = errors.New("p2p: too many peers")

// Server runs the listener, the peer table, and the handlers that bridge
// incoming messages to the chain and mempool.
type Server struct {
	nodeID   string
	listener net.Listener

	reorg *forkchoice.ReorgTracker
	pool  *mempool.Pool

	mtx   sync.RWMutex
	peers map[string]*Peer // keyed by remote address "host:port"

	wg       sync.WaitGroup
	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewServer constructs a Server bound to reorg (the fork-choice-tracked
// chain) and pool (the shared mempool). nodeID is announced in every
// handshake.
func NewServer(nodeID string, reorg *forkchoice.ReorgTracker, pool *mempool.Pool) *Server {
	return &Server{
		nodeID: nodeID,
		reorg:  reorg,
		pool:   pool,
		peers:  make(map[string]*Peer),
		stopCh: make(chan struct{}),
	}
}

// Listen starts accepting inbound connections on addr. It returns once the
// listener is bound; accept loops run in the background.
func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "p2p: failed to listen on %s", addr)
	}
	s.listener = ln
	log.Infof("listening for peers on %s", addr)

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.stopCh:
				return
			default:
				log.Errorf("accept failed: %s", err)
				continue
			}
		}
		s.wg.Add(1)
		go s.handleConn(conn, false)
	}
}

// Connect dials host:port as an outbound peer and runs its session.
func (s *Server) Connect(host string, port int) error {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := net.DialTimeout("tcp", addr, HandshakeTimeout)
	if err != nil {
		return errors.Wrapf(err, "p2p: failed to connect to %s", addr)
	}
	s.wg.Add(1)
	go s.handleConn(conn, true)
	return nil
}

// PeerCount returns the number of currently connected peers.
func (s *Server) PeerCount() int {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return len(s.peers)
}

// Peers returns a snapshot of every connected peer's info.
func (s *Server) Peers() []wireproto.PeerInfo {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	out := make([]wireproto.PeerInfo, 0, len(s.peers))
	for _, p := range s.peers {
		out = append(out, p.Info())
	}
	return out
}

func (s *Server) addPeer(p *Peer) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if len(s.peers) >= MaxPeers {
		return ErrTooManyPeers
	}
	s.peers[p.conn.RemoteAddr().String()] = p
	return nil
}

func (s *Server) removePeer(p *Peer) {
	s.mtx.Lock()
	delete(s.peers, p.conn.RemoteAddr().String())
	s.mtx.Unlock()
}

func (s *Server) handleConn(conn net.Conn, outbound bool) {
	defer s.wg.Done()
	peer := newPeer(conn, outbound)

	if err := s.handshake(peer, outbound); err != nil {
		log.Warnf("handshake with %s failed: %s", conn.RemoteAddr(), err)
		conn.Close()
		return
	}

	if err := s.addPeer(peer); err != nil {
		log.Warnf("rejecting peer %s: %s", peer.NodeID(), err)
		peer.Close()
		return
	}
	log.Infof("peer %s (%s) connected, %d total", peer.NodeID(), conn.RemoteAddr(), s.PeerCount())

	s.sessionLoop(peer)

	s.removePeer(peer)
	peer.Close()
	log.Infof("peer %s disconnected, %d remaining", peer.NodeID(), s.PeerCount())
}

func (s *Server) handshake(peer *Peer, outbound bool) error {
	peer.conn.SetDeadline(time.Now().Add(HandshakeTimeout))
	defer peer.conn.SetDeadline(time.Time{})

	height := s.currentHeight()

	if outbound {
		env, err := wireproto.NewHandshake(time.Now().Unix(), wireproto.HandshakePayload{
			Version: wireproto.ProtocolVersion, NodeID: s.nodeID, ChainHeight: height,
		})
		if err != nil {
			return err
		}
		if err := peer.send(env); err != nil {
			return errors.Wrap(err, "failed to send handshake")
		}
	}

	env, err := wireproto.ReadFrame(peer.conn)
	if err != nil {
		return errors.Wrap(err, "failed to read handshake")
	}
	if err := env.Validate(); err != nil {
		return err
	}
	if env.Type != wireproto.TypeHandshake {
		return errors.Errorf("p2p: expected Handshake, got %s", env.Type)
	}
	var payload wireproto.HandshakePayload
	if err := env.DecodePayload(&payload); err != nil {
		return err
	}
	if payload.Version != wireproto.ProtocolVersion {
		return errors.Errorf("p2p: peer protocol version %d unsupported", payload.Version)
	}
	peer.setHandshakeInfo(payload.NodeID, payload.Version, payload.ChainHeight)
	peer.touchLastSeen()

	if !outbound {
		reply, err := wireproto.NewHandshake(time.Now().Unix(), wireproto.HandshakePayload{
			Version: wireproto.ProtocolVersion, NodeID: s.nodeID, ChainHeight: height,
		})
		if err != nil {
			return err
		}
		if err := peer.send(reply); err != nil {
			return errors.Wrap(err, "failed to send handshake reply")
		}
	}
	return nil
}

// sessionLoop reads frames until the connection closes or two consecutive
// idle-read timeouts elapse.
func (s *Server) sessionLoop(peer *Peer) {
	consecutiveTimeouts := 0
	for {
		if peer.isDone() {
			return
		}
		peer.conn.SetReadDeadline(time.Now().Add(IdleTimeout))
		env, err := wireproto.ReadFrame(peer.conn)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				consecutiveTimeouts++
				if consecutiveTimeouts >= 2 {
					log.Debugf("peer %s idle timeout twice, closing", peer.NodeID())
					return
				}
				pingEnv, perr := wireproto.NewPing(time.Now().Unix())
				if perr == nil {
					peer.send(pingEnv)
				}
				continue
			}
			return
		}
		consecutiveTimeouts = 0
		peer.touchLastSeen()

		if err := s.handleMessage(peer, env); err != nil {
			log.Debugf("peer %s message handling error: %s", peer.NodeID(), err)
		}
	}
}

func (s *Server) currentHeight() uint64 {
	best := s.reorg.ForkChoice().BestChain()
	if best == nil {
		return 0
	}
	tip := best.Tip()
	if tip == nil {
		return 0
	}
	return tip.Header.Height
}

func (s *Server) currentSnapshot() *accountstate.State {
	best := s.reorg.ForkChoice().BestChain()
	if best == nil {
		return accountstate.New()
	}
	return accountstate.FromBlocks(best.Blocks())
}

func (s *Server) handleMessage(peer *Peer, env *wireproto.Envelope) error {
	switch env.Type {
	case wireproto.TypePing:
		reply, err := wireproto.NewPong(time.Now().Unix())
		if err != nil {
			return err
		}
		return peer.send(reply)

	case wireproto.TypePong:
		return nil

	case wireproto.TypeGetChainInfo:
		return s.handleGetChainInfo(peer)

	case wireproto.TypeGetBlocks:
		return s.handleGetBlocks(peer, env)

	case wireproto.TypeBlocks:
		return s.handleBlocks(peer, env)

	case wireproto.TypeNewBlock:
		return s.handleNewBlock(peer, env)

	case wireproto.TypeGetPeers:
		return s.handleGetPeers(peer)

	case wireproto.TypePeers:
		return nil

	case wireproto.TypeNewTransaction:
		return s.handleNewTransaction(peer, env)

	case wireproto.TypeReject:
		var payload wireproto.RejectPayload
		env.DecodePayload(&payload)
		log.Debugf("peer %s rejected our message: %s", peer.NodeID(), payload.Reason)
		return nil

	default:
		// Unknown types are ignored gracefully, per SPEC_FULL.md §4.10.
		return nil
	}
}

func (s *Server) handleGetChainInfo(peer *Peer) error {
	best := s.reorg.ForkChoice().BestChain()
	var hash string
	var height uint64
	if best != nil {
		if tip := best.Tip(); tip != nil {
			hash = tip.Header.Hash.String()
			height = tip.Header.Height
		}
	}
	env, err := wireproto.NewChainInfo(time.Now().Unix(), wireproto.ChainInfoPayload{LatestHash: hash, Height: height})
	if err != nil {
		return err
	}
	return peer.send(env)
}

func (s *Server) handleGetBlocks(peer *Peer, env *wireproto.Envelope) error {
	var req wireproto.GetBlocksPayload
	if err := env.DecodePayload(&req); err != nil {
		return err
	}
	best := s.reorg.ForkChoice().BestChain()
	if best == nil {
		return nil
	}

	blocks := best.Blocks()
	startIdx := 0
	if req.StartHash != "" && req.StartHash != chainhash.ZeroHash.String() {
		found := false
		for i, b := range blocks {
			if b.Header.Hash.String() == req.StartHash {
				startIdx = i + 1
				found = true
				break
			}
		}
		if !found {
			startIdx = len(blocks)
		}
	}

	count := req.Count
	if count <= 0 || count > SyncBlockCount {
		count = SyncBlockCount
	}
	end := startIdx + count
	if end > len(blocks) {
		end = len(blocks)
	}

	out := make([]chainmodel.Block, 0, end-startIdx)
	for _, b := range blocks[startIdx:end] {
		out = append(out, *b)
	}

	resp, err := wireproto.NewBlocksMessage(time.Now().Unix(), wireproto.BlocksPayload{Blocks: out})
	if err != nil {
		return err
	}
	return peer.send(resp)
}

func (s *Server) handleBlocks(peer *Peer, env *wireproto.Envelope) error {
	var payload wireproto.BlocksPayload
	if err := env.DecodePayload(&payload); err != nil {
		return err
	}
	for i := range payload.Blocks {
		block := payload.Blocks[i]
		if _, _, err := s.reorg.AddBlock(&block); err != nil {
			log.Debugf("discarding block %s from sync batch: %s", block.Header.Hash, err)
		}
	}
	return nil
}

func (s *Server) handleNewBlock(peer *Peer, env *wireproto.Envelope) error {
	var payload wireproto.NewBlockPayload
	if err := env.DecodePayload(&payload); err != nil {
		return err
	}
	isNewBest, _, err := s.reorg.AddBlock(&payload.Block)
	if err != nil {
		log.Debugf("rejecting block %s from %s: %s", payload.Block.Header.Hash, peer.NodeID(), err)
		reject, rerr := wireproto.NewReject(time.Now().Unix(), wireproto.RejectPayload{Reason: err.Error()})
		if rerr == nil {
			peer.send(reject)
		}
		return nil
	}
	peer.setChainHeight(payload.Block.Header.Height)
	if isNewBest {
		s.pool.Remove(payload.Block.Transactions)
		s.BroadcastBlock(&payload.Block, peer.NodeID())
	}
	return nil
}

func (s *Server) handleNewTransaction(peer *Peer, env *wireproto.Envelope) error {
	var payload wireproto.NewTransactionPayload
	if err := env.DecodePayload(&payload); err != nil {
		return err
	}
	snapshot := s.currentSnapshot()
	if err := s.pool.Add(payload.Transaction, snapshot, time.Now()); err != nil {
		log.Debugf("rejecting transaction %s from %s: %s", payload.Transaction.HashString(), peer.NodeID(), err)
	}
	return nil
}

func (s *Server) handleGetPeers(peer *Peer) error {
	resp, err := wireproto.NewPeers(time.Now().Unix(), wireproto.PeersPayload{Peers: s.Peers()})
	if err != nil {
		return err
	}
	return peer.send(resp)
}

// BroadcastBlock best-effort fans out a new block announcement to every
// connected peer except excludeNodeID (typically the peer it was received
// from). Send failures are logged and skipped.
func (s *Server) BroadcastBlock(block *chainmodel.Block, excludeNodeID string) {
	env, err := wireproto.NewNewBlock(time.Now().Unix(), wireproto.NewBlockPayload{Block: *block})
	if err != nil {
		log.Errorf("failed to build broadcast envelope: %s", err)
		return
	}

	s.mtx.RLock()
	peers := make([]*Peer, 0, len(s.peers))
	for _, p := range s.peers {
		if p.NodeID() == excludeNodeID {
			continue
		}
		peers = append(peers, p)
	}
	s.mtx.RUnlock()

	for _, p := range peers {
		if err := p.send(env); err != nil {
			log.Debugf("broadcast to %s failed, skipping: %s", p.NodeID(), err)
		}
	}
}

// BroadcastTransaction best-effort fans out a new transaction to every
// connected peer.
func (s *Server) BroadcastTransaction(tx chainmodel.Transaction) {
	env, err := wireproto.NewNewTransaction(time.Now().Unix(), wireproto.NewTransactionPayload{Transaction: tx})
	if err != nil {
		log.Errorf("failed to build broadcast envelope: %s", err)
		return
	}

	s.mtx.RLock()
	peers := make([]*Peer, 0, len(s.peers))
	for _, p := range s.peers {
		peers = append(peers, p)
	}
	s.mtx.RUnlock()

	for _, p := range peers {
		if err := p.send(env); err != nil {
			log.Debugf("broadcast to %s failed, skipping: %s", p.NodeID(), err)
		}
	}
}

// SyncBlockchain picks the connected peer with the greatest announced
// chain height and requests blocks from it in order, applying each to the
// fork-choice graph as it arrives.
func (s *Server) SyncBlockchain() error {
	s.mtx.RLock()
	var best *Peer
	for _, p := range s.peers {
		if best == nil || p.ChainHeight() > best.ChainHeight() {
			best = p
		}
	}
	s.mtx.RUnlock()

	if best == nil {
		return errors.New("p2p: no peers to sync from")
	}

	ownHeight := s.currentHeight()
	if best.ChainHeight() <= ownHeight {
		return nil
	}

	ourTip := s.reorg.ForkChoice().BestChain()
	startHash := ""
	if ourTip != nil {
		if tip := ourTip.Tip(); tip != nil {
			startHash = tip.Header.Hash.String()
		}
	}

	req, err := wireproto.NewGetBlocks(time.Now().Unix(), wireproto.GetBlocksPayload{StartHash: startHash, Count: SyncBlockCount})
	if err != nil {
		return err
	}
	return best.send(req)
}

// Close stops the listener and disconnects every peer.
func (s *Server) Close() error {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		if s.listener != nil {
			s.listener.Close()
		}
		s.mtx.RLock()
		peers := make([]*Peer, 0, len(s.peers))
		for _, p := range s.peers {
			peers = append(peers, p)
		}
		s.mtx.RUnlock()
		for _, p := range peers {
			p.Close()
		}
	})
	s.wg.Wait()
	return nil
}
