package pow

import (
	"strings"
	"testing"

	"github.com/ledgerbase/chaind/internal/chainmodel"
)

func TestTargetLeadingZeros(t *testing.T) {
	target := Target(4)
	want := strings.Repeat("0", 4) + strings.Repeat("f", 60)
	if target != want {
		t.Fatalf("Target(4) = %s, want %s", target, want)
	}
}

func TestMeetsTarget(t *testing.T) {
	if !MeetsTarget("0000abc", 4) {
		t.Fatalf("hash with 4 leading zeros should meet difficulty 4")
	}
	if MeetsTarget("00abcd", 4) {
		t.Fatalf("hash with 2 leading zeros should not meet difficulty 4")
	}
}

func TestMineProducesVerifiableBlock(t *testing.T) {
	engine := NewEngine(1)
	txs := []chainmodel.Transaction{chainmodel.NewCoinbaseTransaction("a", 1, nil)}

	result, err := engine.Mine(chainmodel.GenesisPreviousHash.String(), txs, 1)
	if err != nil {
		t.Fatalf("Mine: %v", err)
	}
	if !result.Block.VerifyHash() {
		t.Fatalf("mined block fails hash verification")
	}
	if err := engine.Validate(result.Block); err != nil {
		t.Fatalf("Validate rejected freshly mined block: %v", err)
	}
	if result.Attempts == 0 {
		t.Fatalf("attempts should be at least 1")
	}
}

func TestValidateRejectsBelowDifficultyBlock(t *testing.T) {
	loose := NewEngine(1)
	txs := []chainmodel.Transaction{chainmodel.NewCoinbaseTransaction("a", 1, nil)}
	result, err := loose.Mine(chainmodel.GenesisPreviousHash.String(), txs, 1)
	if err != nil {
		t.Fatalf("Mine: %v", err)
	}

	strict := NewEngine(64)
	if err := strict.Validate(result.Block); err == nil {
		t.Fatalf("expected validation failure against a much stricter difficulty")
	}
}

func TestAdjustIncreasesDifficultyOnFastBlocks(t *testing.T) {
	engine := NewEngine(4)
	blocks := []*chainmodel.Block{
		{Header: chainmodel.BlockHeader{Timestamp: 0}},
		{Header: chainmodel.BlockHeader{Timestamp: 1}},
		{Header: chainmodel.BlockHeader{Timestamp: 2}},
	}
	engine.Adjust(blocks, 60)
	if engine.Difficulty() != 5 {
		t.Fatalf("difficulty = %d, want 5 after fast blocks", engine.Difficulty())
	}
}

func TestAdjustDecreasesDifficultyOnSlowBlocks(t *testing.T) {
	engine := NewEngine(4)
	blocks := []*chainmodel.Block{
		{Header: chainmodel.BlockHeader{Timestamp: 0}},
		{Header: chainmodel.BlockHeader{Timestamp: 1000}},
	}
	engine.Adjust(blocks, 60)
	if engine.Difficulty() != 3 {
		t.Fatalf("difficulty = %d, want 3 after slow blocks", engine.Difficulty())
	}
}

func TestMiningPoolRecordResultAggregates(t *testing.T) {
	engine := NewEngine(1)
	pool := NewMiningPool(engine)
	txs := []chainmodel.Transaction{chainmodel.NewCoinbaseTransaction("a", 1, nil)}

	result, err := engine.Mine(chainmodel.GenesisPreviousHash.String(), txs, 1)
	if err != nil {
		t.Fatalf("Mine: %v", err)
	}
	pool.RecordResult(result)

	stats := pool.Stats()
	if stats.TotalBlocks != 1 {
		t.Fatalf("TotalBlocks = %d, want 1", stats.TotalBlocks)
	}
	if stats.TotalAttempts != result.Attempts {
		t.Fatalf("TotalAttempts = %d, want %d", stats.TotalAttempts, result.Attempts)
	}
}
