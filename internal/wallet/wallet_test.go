package wallet

import (
	"os"
	"path/filepath"
	"testing"
)

func testSeed() []byte {
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = byte(i + 1)
	}
	return seed
}

func TestNewAddressDerivesDistinctAddresses(t *testing.T) {
	w, err := NewWallet(testSeed())
	if err != nil {
		t.Fatalf("NewWallet: %v", err)
	}

	first, err := w.NewAddress()
	if err != nil {
		t.Fatalf("NewAddress: %v", err)
	}
	second, err := w.NewAddress()
	if err != nil {
		t.Fatalf("NewAddress: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct addresses, got %s twice", first)
	}
	if len(first) != 40 {
		t.Fatalf("address length = %d, want 40", len(first))
	}

	addrs := w.Addresses()
	if len(addrs) != 2 || addrs[0].Address != first || addrs[1].Address != second {
		t.Fatalf("Addresses() = %+v, unexpected", addrs)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	seed := testSeed()
	w, err := NewWallet(seed)
	if err != nil {
		t.Fatalf("NewWallet: %v", err)
	}
	addr, err := w.NewAddress()
	if err != nil {
		t.Fatalf("NewAddress: %v", err)
	}

	path := filepath.Join(t.TempDir(), "wallet.json")
	if err := w.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadWallet(path)
	if err != nil {
		t.Fatalf("LoadWallet: %v", err)
	}
	addrs := loaded.Addresses()
	if len(addrs) != 1 || addrs[0].Address != addr {
		t.Fatalf("loaded addresses = %+v, want [%s]", addrs, addr)
	}

	next, err := loaded.NewAddress()
	if err != nil {
		t.Fatalf("NewAddress after load: %v", err)
	}
	if next == addr {
		t.Fatalf("expected a fresh address after reload, got repeat %s", next)
	}
}

func TestLoadWalletMissingFile(t *testing.T) {
	if _, err := LoadWallet(filepath.Join(os.TempDir(), "does-not-exist-wallet.json")); err == nil {
		t.Fatalf("expected error loading a nonexistent wallet file")
	}
}
