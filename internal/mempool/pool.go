package mempool

import (
	"os"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/ledgerbase/chaind/internal/accountstate"
	"github.com/ledgerbase/chaind/internal/chainhash"
	"github.com/ledgerbase/chaind/internal/chainmodel"
	"github.com/ledgerbase/chaind/internal/logging"
)

var log = logging.MempoolLog

// DefaultMaxSize is the default maximum pool size, per SPEC_FULL.md §4.7.
const DefaultMaxSize = 1000

// DefaultMaxAgeSeconds is the default eviction age, per SPEC_FULL.md §4.7.
const DefaultMaxAgeSeconds = 3600

// Config configures a Pool's size and age limits.
type Config struct {
	MaxSize       int
	MaxAgeSeconds int64
}

// DefaultConfig returns the spec's default pool configuration.
func DefaultConfig() Config {
	return Config{MaxSize: DefaultMaxSize, MaxAgeSeconds: DefaultMaxAgeSeconds}
}

// Pool maintains entries ordered by (priority_score desc, arrival_timestamp
// asc), a hash->position index rebuilt after every reorder, dedup via its
// Validator, expiry, and JSON persistence, per SPEC_FULL.md §4.7. This
// mirrors the teacher's txPriorityQueue (mining/mining.go) in spirit but
// uses a plain sorted slice, per SPEC_FULL.md §9's acknowledged O(n)
// rebuild-cost design.
type Pool struct {
	mtx       sync.RWMutex
	cfg       Config
	validator *Validator
	entries   []Entry
	index     map[chainhash.Hash]int
}

// NewPool constructs an empty Pool.
func NewPool(cfg Config) *Pool {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultMaxSize
	}
	if cfg.MaxAgeSeconds <= 0 {
		cfg.MaxAgeSeconds = DefaultMaxAgeSeconds
	}
	return &Pool{
		cfg:       cfg,
		validator: NewValidator(),
		index:     make(map[chainhash.Hash]int),
	}
}

func (p *Pool) rebuildIndexLocked() {
	p.index = make(map[chainhash.Hash]int, len(p.entries))
	for i, e := range p.entries {
		p.index[e.Hash()] = i
	}
}

func (p *Pool) sortLocked() {
	sort.SliceStable(p.entries, func(i, j int) bool {
		if p.entries[i].PriorityScore != p.entries[j].PriorityScore {
			return p.entries[i].PriorityScore > p.entries[j].PriorityScore
		}
		return p.entries[i].ArrivalTimestamp.Before(p.entries[j].ArrivalTimestamp)
	})
	p.rebuildIndexLocked()
}

// Add validates tx against snapshot, rejects duplicates, and on success
// inserts it maintaining priority order, then runs cleanup.
func (p *Pool) Add(tx chainmodel.Transaction, snapshot *accountstate.State, arrival time.Time) error {
	if err := p.validator.Validate(tx, snapshot); err != nil {
		return err
	}

	p.mtx.Lock()
	defer p.mtx.Unlock()

	hash := tx.Hash()
	if _, ok := p.index[hash]; ok {
		return newValidationError(ErrDuplicateTransaction, "transaction already in pool: "+hash.String())
	}

	p.validator.MarkSeen(tx)
	p.entries = append(p.entries, NewEntry(tx, arrival))
	p.sortLocked()
	p.cleanupLocked()
	log.Debugf("admitted transaction %s (pool size %d)", hash, len(p.entries))
	return nil
}

// SelectForBlock scans entries in priority order, simulating each against a
// local copy of snapshot, and returns those that remain valid until limit
// transactions have been included.
func (p *Pool) SelectForBlock(limit int, snapshot *accountstate.State) []chainmodel.Transaction {
	p.mtx.RLock()
	ordered := make([]chainmodel.Transaction, len(p.entries))
	for i, e := range p.entries {
		ordered[i] = e.Transaction
	}
	p.mtx.RUnlock()

	working := snapshot.Clone()
	selected := make([]chainmodel.Transaction, 0, limit)
	for _, tx := range ordered {
		if len(selected) >= limit {
			break
		}
		if err := checkStateless(tx); err != nil {
			continue
		}
		if !tx.IsCoinbase() && working.Get(tx.From) < tx.Amount {
			continue
		}
		working.ApplyTransaction(tx)
		selected = append(selected, tx)
	}
	return selected
}

// Remove drops every transaction in txs by hash and rebuilds the index.
func (p *Pool) Remove(txs []chainmodel.Transaction) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	p.removeLocked(txs)
}

func (p *Pool) removeLocked(txs []chainmodel.Transaction) {
	if len(txs) == 0 {
		return
	}
	toRemove := make(map[chainhash.Hash]struct{}, len(txs))
	for _, tx := range txs {
		toRemove[tx.Hash()] = struct{}{}
	}

	kept := p.entries[:0:0]
	for _, e := range p.entries {
		hash := e.Hash()
		if _, drop := toRemove[hash]; drop {
			p.validator.Forget(e.Transaction)
			continue
		}
		kept = append(kept, e)
	}
	p.entries = kept
	p.rebuildIndexLocked()
}

// cleanupLocked evicts entries older than MaxAgeSeconds, then, while size
// exceeds MaxSize, evicts the lowest-priority tail. Must be called with
// mtx held for writing.
func (p *Pool) cleanupLocked() {
	now := time.Now()
	maxAge := time.Duration(p.cfg.MaxAgeSeconds) * time.Second

	kept := p.entries[:0:0]
	for _, e := range p.entries {
		if now.Sub(e.ArrivalTimestamp) > maxAge {
			p.validator.Forget(e.Transaction)
			continue
		}
		kept = append(kept, e)
	}
	p.entries = kept

	if len(p.entries) > p.cfg.MaxSize {
		for _, e := range p.entries[p.cfg.MaxSize:] {
			p.validator.Forget(e.Transaction)
		}
		p.entries = p.entries[:p.cfg.MaxSize]
	}
	p.rebuildIndexLocked()
}

// Cleanup runs the age and size eviction pass outside of Add.
func (p *Pool) Cleanup() {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	p.cleanupLocked()
}

// Size returns the number of entries currently pending.
func (p *Pool) Size() int {
	p.mtx.RLock()
	defer p.mtx.RUnlock()
	return len(p.entries)
}

// Pending returns a copy of every pending transaction, in priority order.
func (p *Pool) Pending() []chainmodel.Transaction {
	p.mtx.RLock()
	defer p.mtx.RUnlock()
	out := make([]chainmodel.Transaction, len(p.entries))
	for i, e := range p.entries {
		out[i] = e.Transaction
	}
	return out
}

// Stats is the pool's size/byte/age/priority summary.
type Stats struct {
	Size            int
	TotalBytes      int
	OldestAgeSeconds float64
	AveragePriority float64
}

// Stats computes a point-in-time summary of the pool contents.
func (p *Pool) Stats() Stats {
	p.mtx.RLock()
	defer p.mtx.RUnlock()

	var stats Stats
	stats.Size = len(p.entries)
	if len(p.entries) == 0 {
		return stats
	}

	now := time.Now()
	var totalPriority int64
	oldest := now
	for _, e := range p.entries {
		stats.TotalBytes += e.SizeBytes
		totalPriority += e.PriorityScore
		if e.ArrivalTimestamp.Before(oldest) {
			oldest = e.ArrivalTimestamp
		}
	}
	stats.OldestAgeSeconds = now.Sub(oldest).Seconds()
	stats.AveragePriority = float64(totalPriority) / float64(len(p.entries))
	return stats
}

// Persist writes the raw pending transaction list to path as pretty-printed
// JSON, per SPEC_FULL.md §6 (./mempool.json).
func (p *Pool) Persist(path string) error {
	p.mtx.RLock()
	data, err := marshalEntries(p.entries)
	p.mtx.RUnlock()
	if err != nil {
		return errors.Wrap(err, "failed to marshal mempool")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write mempool file %s", path)
	}
	return nil
}

// Load reads the transaction list at path and re-validates every entry
// against snapshot, silently dropping any that no longer validate, into a
// fresh Pool.
func Load(path string, cfg Config, snapshot *accountstate.State) (*Pool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewPool(cfg), nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read mempool file %s", path)
	}

	txs, err := unmarshalEntries(data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse mempool file")
	}

	pool := NewPool(cfg)
	working := snapshot.Clone()
	now := time.Now()
	for _, tx := range txs {
		if err := pool.validator.Validate(tx, working); err != nil {
			log.Debugf("dropping persisted transaction %s on reload: %s", tx.HashString(), err)
			continue
		}
		pool.validator.MarkSeen(tx)
		pool.entries = append(pool.entries, NewEntry(tx, now))
		if !tx.IsCoinbase() {
			working.Add(tx.From, -int64(tx.Amount))
		}
		working.Add(tx.To, int64(tx.Amount))
	}
	pool.sortLocked()
	log.Infof("loaded %d transactions from %s", len(pool.entries), path)
	return pool, nil
}
