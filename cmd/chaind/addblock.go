package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/ledgerbase/chaind/internal/chain"
	"github.com/ledgerbase/chaind/internal/chainmodel"
)

func runAddBlock(conf *addBlockConfig) error {
	if err := conf.ApplyLogging(); err != nil {
		return err
	}

	data, err := os.ReadFile(conf.BlockFile)
	if err != nil {
		return errors.Wrapf(err, "failed to read block file %s", conf.BlockFile)
	}
	var block chainmodel.Block
	if err := json.Unmarshal(data, &block); err != nil {
		return errors.Wrap(err, "failed to parse block file")
	}

	c, err := chain.OpenPersistent(conf.ResolvedBlockchainDataDir())
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Append(&block); err != nil {
		return err
	}

	fmt.Printf("appended block %s at height %d\n", block.Header.Hash, block.Header.Height)
	return nil
}
