// Command chaind is the node daemon and CLI front end over the core chain,
// mempool, mining, fork-choice, P2P, RPC, and wallet packages. Each
// sub-command parses its own flags struct and calls exactly one core
// operation, per SPEC_FULL.md §4.17. Grounded on the teacher's
// cmd/kaspawallet command dispatch idiom.
package main

import (
	"fmt"
	"os"
)

func main() {
	subCommand, walletSubCommand, conf := parseCommandLine()

	var err error
	switch subCommand {
	case initSubCmd:
		err = runInit(conf.(*initConfig))
	case addBlockSubCmd:
		err = runAddBlock(conf.(*addBlockConfig))
	case mineSubCmd:
		err = runMine(conf.(*mineConfig))
	case getBlockSubCmd:
		err = runGetBlock(conf.(*getBlockConfig))
	case statsSubCmd:
		err = runStats(conf.(*statsConfig))
	case addTxSubCmd:
		err = runAddTx(conf.(*addTxConfig))
	case startNodeSubCmd:
		err = runStartNode(conf.(*startNodeConfig))
	case connectSubCmd:
		err = runConnect(conf.(*connectConfig))
	case startRPCSubCmd:
		err = runStartRPC(conf.(*startRPCConfig))
	case walletSubCmd:
		switch walletSubCommand {
		case walletNewSubCmd:
			err = runWalletNew(conf.(*walletNewConfig))
		case walletListSubCmd:
			err = runWalletList(conf.(*walletListConfig))
		case walletBackupSubCmd:
			err = runWalletBackup(conf.(*walletBackupConfig))
		}
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
