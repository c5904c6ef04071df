package main

import (
	"fmt"

	"github.com/ledgerbase/chaind/internal/chain"
)

func runInit(conf *initConfig) error {
	if err := conf.ApplyLogging(); err != nil {
		return err
	}

	c, err := chain.OpenPersistent(conf.ResolvedBlockchainDataDir())
	if err != nil {
		return err
	}
	defer c.Close()

	tip := c.Tip()
	fmt.Printf("chain initialized at %s: height=%d tip=%s\n", conf.ResolvedDataDir(), tip.Header.Height, tip.Header.Hash)
	return nil
}
