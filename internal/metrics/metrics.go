// Package metrics registers the node's Prometheus gauges and counters, per
// SPEC_FULL.md §4.15. Grounded on the teacher's dependency on
// prometheus/client_golang (present in go.mod for the apiserver's
// instrumentation); promauto keeps registration terse the way the rest of
// the ecosystem's Prometheus-instrumented services do it.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChainHeight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chain_height",
		Help: "Height of the local best chain tip.",
	})

	MempoolSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mempool_size",
		Help: "Number of transactions currently pending in the mempool.",
	})

	MempoolBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mempool_bytes",
		Help: "Total canonical-encoded size in bytes of pending mempool transactions.",
	})

	PeersConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "peers_connected",
		Help: "Number of currently connected P2P peers.",
	})

	BlocksMinedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blocks_mined_total",
		Help: "Total number of blocks successfully mined by this node.",
	})

	MiningAttemptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mining_attempts_total",
		Help: "Total number of nonces tried across all mining attempts.",
	})

	PowHashrate = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pow_hashrate",
		Help: "Most recent observed mining hash rate, in hashes per second.",
	})
)
