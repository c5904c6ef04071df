package config

import "testing"

func TestResolvedPathsUnderExplicitDataDir(t *testing.T) {
	c := &CommonFlags{DataDir: "/tmp/chaind-test-data"}

	if got := c.ResolvedDataDir(); got != "/tmp/chaind-test-data" {
		t.Fatalf("ResolvedDataDir() = %s, want /tmp/chaind-test-data", got)
	}
	if got := c.ResolvedBlockchainDataDir(); got != "/tmp/chaind-test-data/blockchain_data" {
		t.Fatalf("ResolvedBlockchainDataDir() = %s", got)
	}
	if got := c.ResolvedMempoolFile(); got != "/tmp/chaind-test-data/mempool.json" {
		t.Fatalf("ResolvedMempoolFile() = %s", got)
	}
	if got := c.ResolvedWalletFile(); got != "/tmp/chaind-test-data/wallet.json" {
		t.Fatalf("ResolvedWalletFile() = %s", got)
	}
}

func TestResolvedDataDirFallsBackToDefaultWhenUnset(t *testing.T) {
	c := &CommonFlags{}
	got := c.ResolvedDataDir()
	if got == "" {
		t.Fatalf("ResolvedDataDir() should never be empty")
	}
}
