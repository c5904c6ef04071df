// Package wireproto implements the P2P wire protocol: message taxonomy,
// JSON envelope, length-prefixed framing, and priority, per SPEC_FULL.md
// §4.10. Grounded on the teacher's wire.Message command taxonomy
// (wire/message.go), adapted from a binary bitcoin-style wire format to the
// spec's length-prefixed JSON envelope.
package wireproto

import "fmt"

// MessageType is a tagged union discriminator for envelope payloads.
type MessageType uint32

const (
	TypeHandshake MessageType = iota
	TypePing
	TypePong
	TypeGetChainInfo
	TypeChainInfo
	TypeGetBlocks
	TypeBlocks
	TypeNewBlock
	TypeGetPeers
	TypePeers
	TypeNewTransaction
	TypeReject
)

var messageTypeNames = map[MessageType]string{
	TypeHandshake:      "Handshake",
	TypePing:           "Ping",
	TypePong:           "Pong",
	TypeGetChainInfo:   "GetChainInfo",
	TypeChainInfo:      "ChainInfo",
	TypeGetBlocks:      "GetBlocks",
	TypeBlocks:         "Blocks",
	TypeNewBlock:       "NewBlock",
	TypeGetPeers:       "GetPeers",
	TypePeers:          "Peers",
	TypeNewTransaction: "NewTransaction",
	TypeReject:         "Reject",
}

// String renders the message type's name, or "unknown type" with its code.
func (t MessageType) String() string {
	if name, ok := messageTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("unknown type [%d]", uint32(t))
}

// IsKnown reports whether t is part of the essential message subset a
// conforming core implementation must handle. Unknown types must be
// gracefully ignored by receivers, per SPEC_FULL.md §4.10.
func (t MessageType) IsKnown() bool {
	_, ok := messageTypeNames[t]
	return ok
}
