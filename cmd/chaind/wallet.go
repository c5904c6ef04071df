package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/ledgerbase/chaind/internal/wallet"
)

// demoSeed is used when --seed is omitted; deterministic so repeated runs
// during development derive the same addresses.
var demoSeed = []byte("chaind-demo-seed-material-00000")

func openOrCreateWallet(path string, seedHex string) (*wallet.Wallet, error) {
	if _, err := os.Stat(path); err == nil {
		return wallet.LoadWallet(path)
	}

	seed := demoSeed
	if seedHex != "" {
		decoded, err := hex.DecodeString(seedHex)
		if err != nil {
			return nil, errors.Wrap(err, "invalid hex seed")
		}
		seed = decoded
	}
	return wallet.NewWallet(seed)
}

func runWalletNew(conf *walletNewConfig) error {
	if err := conf.ApplyLogging(); err != nil {
		return err
	}

	path := conf.ResolvedWalletFile()
	w, err := openOrCreateWallet(path, conf.Seed)
	if err != nil {
		return err
	}

	addr, err := w.NewAddress()
	if err != nil {
		return err
	}
	if err := w.Save(path); err != nil {
		return err
	}

	fmt.Println(addr)
	return nil
}

func runWalletList(conf *walletListConfig) error {
	if err := conf.ApplyLogging(); err != nil {
		return err
	}

	w, err := wallet.LoadWallet(conf.ResolvedWalletFile())
	if err != nil {
		return err
	}
	for _, entry := range w.Addresses() {
		fmt.Printf("%d\t%s\n", entry.Index, entry.Address)
	}
	return nil
}

func runWalletBackup(conf *walletBackupConfig) error {
	if err := conf.ApplyLogging(); err != nil {
		return err
	}

	src, err := os.Open(conf.ResolvedWalletFile())
	if err != nil {
		return errors.Wrap(err, "failed to open wallet file")
	}
	defer src.Close()

	dst, err := os.OpenFile(conf.OutFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return errors.Wrap(err, "failed to create backup file")
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return errors.Wrap(err, "failed to copy wallet file")
	}

	fmt.Printf("wallet backed up to %s\n", conf.OutFile)
	return nil
}
