package main

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"

	"github.com/ledgerbase/chaind/internal/chain"
	"github.com/ledgerbase/chaind/internal/chainhash"
	"github.com/ledgerbase/chaind/internal/chainmodel"
)

func runGetBlock(conf *getBlockConfig) error {
	if err := conf.ApplyLogging(); err != nil {
		return err
	}

	c, err := chain.OpenPersistent(conf.ResolvedBlockchainDataDir())
	if err != nil {
		return err
	}
	defer c.Close()

	var block *chainmodel.Block
	var ok bool
	switch {
	case conf.Hash != "":
		var hash chainhash.Hash
		hash, err = chainhash.NewHashFromStr(conf.Hash)
		if err != nil {
			return errors.Wrap(err, "invalid block hash")
		}
		for _, b := range c.Blocks() {
			if b.Header.Hash == hash {
				block, ok = b, true
				break
			}
		}
	case conf.Height >= 0:
		block, ok = c.BlockAt(uint64(conf.Height))
	default:
		return errors.New("getblock: either --height or --hash is required")
	}

	if !ok {
		return errors.New("block not found")
	}

	data, err := json.MarshalIndent(block, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
