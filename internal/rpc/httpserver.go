package rpc

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ledgerbase/chaind/internal/logging"
)

var log = logging.RPCLog

// MaxBodyBytes caps the size of an accepted JSON-RPC request body.
const MaxBodyBytes = 1 << 20 // 1 MiB

// Server is the HTTP front end exposing POST /rpc, GET /health, and
// GET /metrics, routed with gorilla/mux following the teacher's
// apiserver/server routing idiom (addRoutes + makeHandler).
type Server struct {
	handlers *Handlers
	router   *mux.Router
	http     *http.Server
}

// NewServer builds the HTTP server; call ListenAndServe to start it.
func NewServer(addr string, handlers *Handlers) *Server {
	s := &Server{handlers: handlers, router: mux.NewRouter()}
	s.addRoutes()
	s.http = &http.Server{Addr: addr, Handler: s.router}
	return s
}

func (s *Server) addRoutes() {
	s.router.HandleFunc("/rpc", s.handleRPC).Methods("POST")
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")
}

// ListenAndServe starts serving and blocks until the server stops or
// fails.
func (s *Server) ListenAndServe() error {
	log.Infof("RPC server listening on %s", s.http.Addr)
	return s.http.ListenAndServe()
}

// Close shuts the HTTP server down.
func (s *Server) Close() error {
	return s.http.Close()
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeResponse(w, errorResponse(nil, newError(errCodeParseError, "invalid JSON: "+err.Error())))
		return
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		writeResponse(w, errorResponse(req.ID, newError(errCodeInvalidRequest, "malformed JSON-RPC 2.0 request")))
		return
	}

	resp := s.handlers.Dispatch(req)
	writeResponse(w, resp)
}

func writeResponse(w http.ResponseWriter, resp Response) {
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Errorf("failed to write RPC response: %s", err)
	}
}

type healthResult struct {
	Status      string `json:"status"`
	BlockHeight uint64 `json:"block_height"`
	PeerCount   int    `json:"peer_count"`
	MempoolSize int    `json:"mempool_size"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	result := healthResult{Status: "ok", MempoolSize: s.handlers.Pool.Size()}
	if best := s.handlers.Reorg.ForkChoice().BestChain(); best != nil {
		if tip := best.Tip(); tip != nil {
			result.BlockHeight = tip.Header.Height
		}
	}
	if s.handlers.Peers != nil {
		result.PeerCount = s.handlers.Peers.PeerCount()
	}

	json.NewEncoder(w).Encode(result)
}
