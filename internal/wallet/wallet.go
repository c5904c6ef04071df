// Package wallet implements the HD (hierarchical-deterministic) wallet
// described in SPEC_FULL.md §4.16: one master extended key per wallet,
// addresses derived from successive non-hardened child keys, each address
// computed as hex(RIPEMD160(SHA256(pubkey))), a 40-character lowercase-hex
// string. This is the shape wallet-derived addresses take; it is not a
// general transaction-validity requirement (see
// internal/chainmodel.LooksLikeAddress), since the chain also accepts
// plain-name addresses such as the genesis allocations "alice"/"bob".
// Grounded on the teacher's dependency on btcsuite/btcutil/hdkeychain, whose
// extended keys supply the secp256k1 public key (ECPubKey), and on
// btcutil.Hash160 for the address hash, so no additional hashing
// dependency is introduced beyond what the teacher already carries.
package wallet

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"sync"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcutil"
	"github.com/btcsuite/btcutil/hdkeychain"
	"github.com/pkg/errors"

	"github.com/ledgerbase/chaind/internal/logging"
)

var log = logging.WalletLog

// chainParams pins the HD key version bytes used for extended key
// serialization; the wallet never touches an actual Bitcoin network, so
// MainNetParams is used purely as a fixed version-byte source.
var chainParams = &chaincfg.MainNetParams

// AddressEntry is one derived address and the child index it came from.
type AddressEntry struct {
	Index   uint32 `json:"index"`
	Address string `json:"address"`
}

// Wallet holds a master extended key and every address derived from it so
// far.
type Wallet struct {
	mtx       sync.Mutex
	seed      []byte
	master    *hdkeychain.ExtendedKey
	addresses []AddressEntry
	nextIndex uint32
}

// NewWallet derives a master extended key from seed and returns an empty
// wallet ready to mint addresses.
func NewWallet(seed []byte) (*Wallet, error) {
	master, err := hdkeychain.NewMaster(seed, chainParams)
	if err != nil {
		return nil, errors.Wrap(err, "wallet: failed to derive master key")
	}
	return &Wallet{seed: seed, master: master}, nil
}

// NewAddress derives the next child key in sequence and returns its
// address.
func (w *Wallet) NewAddress() (string, error) {
	w.mtx.Lock()
	defer w.mtx.Unlock()

	child, err := w.master.Child(w.nextIndex)
	if err != nil {
		return "", errors.Wrapf(err, "wallet: failed to derive child key %d", w.nextIndex)
	}
	pub, err := child.ECPubKey()
	if err != nil {
		return "", errors.Wrapf(err, "wallet: failed to derive public key for child %d", w.nextIndex)
	}

	addr := hex.EncodeToString(btcutil.Hash160(pub.SerializeCompressed()))
	entry := AddressEntry{Index: w.nextIndex, Address: addr}
	w.addresses = append(w.addresses, entry)
	w.nextIndex++
	log.Infof("derived address %s at index %d", addr, entry.Index)
	return addr, nil
}

// Addresses returns every address derived so far, in derivation order.
func (w *Wallet) Addresses() []AddressEntry {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	out := make([]AddressEntry, len(w.addresses))
	copy(out, w.addresses)
	return out
}

type walletFile struct {
	Seed      string         `json:"seed"`
	Addresses []AddressEntry `json:"addresses"`
	NextIndex uint32         `json:"next_index"`
}

// Save writes the wallet's seed and derived address list to path as JSON.
// The master key itself is not reserializable from neutered form with
// private derivation, so the raw seed is persisted instead and the master
// key is rederived on Load.
func (w *Wallet) Save(path string) error {
	w.mtx.Lock()
	file := walletFile{
		Seed:      hex.EncodeToString(w.seed),
		Addresses: append([]AddressEntry{}, w.addresses...),
		NextIndex: w.nextIndex,
	}
	w.mtx.Unlock()

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return errors.Wrap(err, "wallet: failed to marshal wallet file")
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.Wrapf(err, "wallet: failed to write wallet file %s", path)
	}
	return nil
}

// LoadWallet reads a wallet file previously written by Save and rebuilds
// the wallet, including its master key and derivation counter.
func LoadWallet(path string) (*Wallet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "wallet: failed to read wallet file %s", path)
	}
	var file walletFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "wallet: failed to parse wallet file")
	}
	seed, err := hex.DecodeString(file.Seed)
	if err != nil {
		return nil, errors.Wrap(err, "wallet: failed to decode stored seed")
	}
	w, err := NewWallet(seed)
	if err != nil {
		return nil, err
	}
	w.addresses = file.Addresses
	w.nextIndex = file.NextIndex
	return w, nil
}
