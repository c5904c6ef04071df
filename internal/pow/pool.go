package pow

import (
	"sync"
	"time"
)

// MiningPool wraps an Engine and aggregates mining counters across the life
// of a node, per SPEC_FULL.md §4.8.
type MiningPool struct {
	engine *Engine

	mtx            sync.Mutex
	totalBlocks    uint64
	totalAttempts  uint64
	totalElapsed   time.Duration
	lastAttempts   uint64
	lastElapsed    time.Duration
}

// NewMiningPool wraps engine with counter aggregation.
func NewMiningPool(engine *Engine) *MiningPool {
	return &MiningPool{engine: engine}
}

// Engine returns the underlying PoW engine.
func (p *MiningPool) Engine() *Engine {
	return p.engine
}

// RecordResult folds a MiningResult's counters into the pool's running
// totals. Callers invoke this after each successful Mine.
func (p *MiningPool) RecordResult(result *MiningResult) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	p.totalBlocks++
	p.totalAttempts += result.Attempts
	p.totalElapsed += result.Elapsed
	p.lastAttempts = result.Attempts
	p.lastElapsed = result.Elapsed
}

// Stats is a point-in-time snapshot of the pool's mining counters.
type Stats struct {
	TotalBlocks      uint64
	TotalAttempts    uint64
	TotalElapsed     time.Duration
	AverageAttempts  float64
	AverageElapsed   time.Duration
	InstantHashRate  float64 // attempts/second of the most recent block
}

// Stats computes the current aggregate statistics.
func (p *MiningPool) Stats() Stats {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	var avgAttempts float64
	var avgElapsed time.Duration
	if p.totalBlocks > 0 {
		avgAttempts = float64(p.totalAttempts) / float64(p.totalBlocks)
		avgElapsed = p.totalElapsed / time.Duration(p.totalBlocks)
	}

	var hashRate float64
	if p.lastElapsed > 0 {
		hashRate = float64(p.lastAttempts) / p.lastElapsed.Seconds()
	}

	return Stats{
		TotalBlocks:     p.totalBlocks,
		TotalAttempts:   p.totalAttempts,
		TotalElapsed:    p.totalElapsed,
		AverageAttempts: avgAttempts,
		AverageElapsed:  avgElapsed,
		InstantHashRate: hashRate,
	}
}
