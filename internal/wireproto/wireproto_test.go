package wireproto

import (
	"bytes"
	"testing"

	"github.com/ledgerbase/chaind/internal/chainmodel"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	env, err := NewHandshake(1000, HandshakePayload{Version: ProtocolVersion, NodeID: "node-a", ChainHeight: 5})
	if err != nil {
		t.Fatalf("NewHandshake: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteFrame(&buf, env); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}

	got, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got.Type != TypeHandshake {
		t.Fatalf("type = %v, want %v", got.Type, TypeHandshake)
	}

	var payload HandshakePayload
	if err := got.DecodePayload(&payload); err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if payload.NodeID != "node-a" || payload.ChainHeight != 5 {
		t.Fatalf("payload = %+v, unexpected", payload)
	}
}

func TestReadFrameRejectsOversizeLength(t *testing.T) {
	var buf bytes.Buffer
	var lenPrefix [4]byte
	lenPrefix[0] = 0x7F // far beyond MaxBodySize, no body bytes follow
	buf.Write(lenPrefix[:])

	if _, err := ReadFrame(&buf); err != ErrOversizeBody {
		t.Fatalf("err = %v, want ErrOversizeBody", err)
	}
}

func TestEnvelopeValidateRejectsBadMagic(t *testing.T) {
	env := &Envelope{Magic: 0xdeadbeef, Version: ProtocolVersion, Type: TypePing}
	if err := env.Validate(); err != ErrBadMagic {
		t.Fatalf("err = %v, want ErrBadMagic", err)
	}
}

func TestEnvelopeValidateRejectsFutureVersion(t *testing.T) {
	env := &Envelope{Magic: Magic, Version: ProtocolVersion + 1, Type: TypePing}
	if err := env.Validate(); err != ErrUnsupportedVersion {
		t.Fatalf("err = %v, want ErrUnsupportedVersion", err)
	}
}

func TestMessageTypeString(t *testing.T) {
	if TypeNewBlock.String() != "NewBlock" {
		t.Fatalf("String() = %q", TypeNewBlock.String())
	}
	unknown := MessageType(999)
	if unknown.IsKnown() {
		t.Fatalf("IsKnown() = true for unregistered type")
	}
}

func TestPriorityOrdering(t *testing.T) {
	if !Less(TypeNewBlock, TypePing) {
		t.Fatalf("NewBlock should outrank Ping")
	}
	if !Less(TypePing, TypeGetPeers) {
		t.Fatalf("Ping should outrank GetPeers")
	}
	if Less(TypeGetPeers, TypePing) {
		t.Fatalf("GetPeers should not outrank Ping")
	}
}

func TestBlocksPayloadRoundTrip(t *testing.T) {
	genesis := chainmodel.NewGenesisBlock()
	env, err := NewBlocksMessage(0, BlocksPayload{Blocks: []chainmodel.Block{*genesis}})
	if err != nil {
		t.Fatalf("NewBlocksMessage: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteFrame(&buf, env); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	got, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}

	var payload BlocksPayload
	if err := got.DecodePayload(&payload); err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if len(payload.Blocks) != 1 || payload.Blocks[0].Header.Hash != genesis.Header.Hash {
		t.Fatalf("round-tripped block mismatch")
	}
}
