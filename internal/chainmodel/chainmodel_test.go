package chainmodel

import "testing"

func TestNewGenesisBlockVerifies(t *testing.T) {
	genesis := NewGenesisBlock()
	if !genesis.IsGenesis() {
		t.Fatalf("NewGenesisBlock() is not recognized as genesis")
	}
	if !genesis.VerifyHash() {
		t.Fatalf("genesis block fails its own hash verification")
	}
}

func TestCoinbaseTransaction(t *testing.T) {
	tx := NewCoinbaseTransaction("alice", 100, nil)
	if !tx.IsCoinbase() {
		t.Fatalf("coinbase transaction not recognized")
	}
	if tx.From != CoinbaseSentinelAddress {
		t.Fatalf("coinbase From = %s, want sentinel", tx.From)
	}
}

func TestBlockFinalizeDetectsTamper(t *testing.T) {
	block := &Block{
		Header:       BlockHeader{PreviousHash: GenesisPreviousHash, Timestamp: 1, Height: 0},
		Transactions: []Transaction{NewCoinbaseTransaction("alice", 10, nil)},
	}
	block.Finalize()
	if !block.VerifyHash() {
		t.Fatalf("freshly finalized block fails verification")
	}

	block.Header.Nonce++
	if block.VerifyHash() {
		t.Fatalf("tampering with nonce without refinalizing should break verification")
	}
}

func TestLooksLikeAddress(t *testing.T) {
	if !LooksLikeAddress(CoinbaseSentinelAddress) {
		t.Fatalf("sentinel address should look like a well-formed address")
	}
	if !LooksLikeAddress("alice") {
		t.Fatalf("a plain-name address like the genesis allocations should be accepted")
	}
	if LooksLikeAddress("") {
		t.Fatalf("empty address incorrectly accepted")
	}
}

func TestIsSentinelAddress(t *testing.T) {
	if !IsSentinelAddress(CoinbaseSentinelAddress) {
		t.Fatalf("sentinel address not recognized")
	}
	if IsSentinelAddress("alice") {
		t.Fatalf("non-sentinel address incorrectly recognized as sentinel")
	}
}
