package wireproto

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/ledgerbase/chaind/internal/chainmodel"
)

// Magic is the fixed 4-byte constant every envelope must carry.
const Magic uint32 = 0x12345678

// ProtocolVersion is this node's wire protocol version.
const ProtocolVersion uint32 = 1

// Envelope is the JSON-encoded message body framed on the wire.
type Envelope struct {
	Magic     uint32          `json:"magic"`
	Version   uint32          `json:"version"`
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// ErrBadMagic is returned when an envelope's magic does not match Magic.
var ErrBadMagic = errors.New("wireproto: envelope has the wrong magic")

// ErrUnsupportedVersion is returned when an envelope's version exceeds this
// node's own ProtocolVersion.
var ErrUnsupportedVersion = errors.New("wireproto: envelope protocol version is unsupported")

// Validate rejects envelopes with the wrong magic or a version this node
// cannot understand.
func (e *Envelope) Validate() error {
	if e.Magic != Magic {
		return ErrBadMagic
	}
	if e.Version > ProtocolVersion {
		return ErrUnsupportedVersion
	}
	return nil
}

func newEnvelope(t MessageType, timestamp int64, payload interface{}) (*Envelope, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Wrap(err, "wireproto: failed to marshal payload")
		}
		raw = b
	}
	return &Envelope{
		Magic:     Magic,
		Version:   ProtocolVersion,
		Type:      t,
		Timestamp: timestamp,
		Payload:   raw,
	}, nil
}

// --- Payload types, the "essential subset" of SPEC_FULL.md §4.10. ---

// HandshakePayload is the required first message in both directions.
type HandshakePayload struct {
	Version     uint32 `json:"version"`
	NodeID      string `json:"node_id"`
	ChainHeight uint64 `json:"chain_height"`
}

// ChainInfoPayload answers GetChainInfo.
type ChainInfoPayload struct {
	LatestHash string `json:"latest_hash"`
	Height     uint64 `json:"height"`
}

// GetBlocksPayload requests up to Count blocks starting after StartHash.
type GetBlocksPayload struct {
	StartHash string `json:"start_hash"`
	Count     int    `json:"count"`
}

// BlocksPayload answers GetBlocks.
type BlocksPayload struct {
	Blocks []chainmodel.Block `json:"blocks"`
}

// NewBlockPayload is an unsolicited block announcement.
type NewBlockPayload struct {
	Block chainmodel.Block `json:"block"`
}

// NewTransactionPayload is an unsolicited transaction announcement.
type NewTransactionPayload struct {
	Transaction chainmodel.Transaction `json:"transaction"`
}

// PeerInfo describes one peer, for GetPeers responses.
type PeerInfo struct {
	Address     string `json:"address"`
	Port        int    `json:"port"`
	NodeID      string `json:"node_id"`
	LastSeen    int64  `json:"last_seen"`
	ChainHeight uint64 `json:"chain_height"`
	Version     uint32 `json:"version"`
}

// PeersPayload answers GetPeers.
type PeersPayload struct {
	Peers []PeerInfo `json:"peers"`
}

// RejectPayload explains why a message was refused, without closing the
// connection.
type RejectPayload struct {
	Reason string `json:"reason"`
}

// Constructors for each payload type, pairing it with its MessageType tag.

func NewHandshake(timestamp int64, p HandshakePayload) (*Envelope, error) {
	return newEnvelope(TypeHandshake, timestamp, p)
}

func NewPing(timestamp int64) (*Envelope, error) {
	return newEnvelope(TypePing, timestamp, nil)
}

func NewPong(timestamp int64) (*Envelope, error) {
	return newEnvelope(TypePong, timestamp, nil)
}

func NewGetChainInfo(timestamp int64) (*Envelope, error) {
	return newEnvelope(TypeGetChainInfo, timestamp, nil)
}

func NewChainInfo(timestamp int64, p ChainInfoPayload) (*Envelope, error) {
	return newEnvelope(TypeChainInfo, timestamp, p)
}

func NewGetBlocks(timestamp int64, p GetBlocksPayload) (*Envelope, error) {
	return newEnvelope(TypeGetBlocks, timestamp, p)
}

func NewBlocksMessage(timestamp int64, p BlocksPayload) (*Envelope, error) {
	return newEnvelope(TypeBlocks, timestamp, p)
}

func NewNewBlock(timestamp int64, p NewBlockPayload) (*Envelope, error) {
	return newEnvelope(TypeNewBlock, timestamp, p)
}

func NewNewTransaction(timestamp int64, p NewTransactionPayload) (*Envelope, error) {
	return newEnvelope(TypeNewTransaction, timestamp, p)
}

func NewGetPeers(timestamp int64) (*Envelope, error) {
	return newEnvelope(TypeGetPeers, timestamp, nil)
}

func NewPeers(timestamp int64, p PeersPayload) (*Envelope, error) {
	return newEnvelope(TypePeers, timestamp, p)
}

func NewReject(timestamp int64, p RejectPayload) (*Envelope, error) {
	return newEnvelope(TypeReject, timestamp, p)
}

// DecodePayload unmarshals the envelope's payload into out.
func (e *Envelope) DecodePayload(out interface{}) error {
	if len(e.Payload) == 0 {
		return nil
	}
	return errors.Wrap(json.Unmarshal(e.Payload, out), "wireproto: failed to decode payload")
}
