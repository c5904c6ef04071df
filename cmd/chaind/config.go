// Sub-command configuration structs, one per CLI operation, each embedding
// config.CommonFlags. Grounded on the teacher's cmd/kaspawallet/config.go
// per-subcommand-struct idiom.
package main

import (
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"

	"github.com/ledgerbase/chaind/internal/config"
)

const (
	initSubCmd      = "init"
	addBlockSubCmd  = "addblock"
	mineSubCmd      = "mine"
	getBlockSubCmd  = "getblock"
	statsSubCmd     = "stats"
	addTxSubCmd     = "addtx"
	startNodeSubCmd = "startnode"
	connectSubCmd   = "connect"
	startRPCSubCmd  = "startrpc"
	walletSubCmd    = "wallet"

	walletNewSubCmd    = "new"
	walletListSubCmd   = "list"
	walletBackupSubCmd = "backup"
)

type initConfig struct {
	config.CommonFlags
}

type addBlockConfig struct {
	config.CommonFlags
	BlockFile string `long:"blockfile" description:"Path to a JSON-encoded block to validate and append" required:"true"`
}

type mineConfig struct {
	config.CommonFlags
	MinerAddress string `long:"address" description:"Address to credit with the coinbase reward" required:"true"`
	Difficulty   int    `long:"difficulty" description:"Proof-of-work difficulty" default:"4"`
	MaxTxCount   int    `long:"maxtx" description:"Maximum number of mempool transactions to include" default:"100"`
}

type getBlockConfig struct {
	config.CommonFlags
	Height int64  `long:"height" description:"Block height to fetch" default:"-1"`
	Hash   string `long:"hash" description:"Block hash to fetch"`
}

type statsConfig struct {
	config.CommonFlags
}

type addTxConfig struct {
	config.CommonFlags
	From      string `long:"from" description:"Sender address" required:"true"`
	To        string `long:"to" description:"Recipient address" required:"true"`
	Amount    uint64 `long:"amount" description:"Amount to transfer" required:"true"`
	Signature string `long:"signature" description:"Hex-encoded signature"`
}

type startNodeConfig struct {
	config.CommonFlags
	ListenAddr string `long:"listen" description:"P2P listen address" default:"127.0.0.1:8333"`
	RPCAddr    string `long:"rpclisten" description:"JSON-RPC HTTP listen address" default:"127.0.0.1:8545"`
	ConnectTo  string `long:"connect" description:"host:port of a peer to dial on startup"`
	Difficulty int    `long:"difficulty" description:"Starting proof-of-work difficulty" default:"4"`
}

type connectConfig struct {
	config.CommonFlags
	ListenAddr string `long:"listen" description:"P2P listen address for this ephemeral session" default:"127.0.0.1:0"`
	Peer       string `long:"peer" description:"host:port of the peer to connect to" required:"true"`
}

type startRPCConfig struct {
	config.CommonFlags
	RPCAddr string `long:"rpclisten" description:"JSON-RPC HTTP listen address" default:"127.0.0.1:8545"`
}

type walletNewConfig struct {
	config.CommonFlags
	Seed string `long:"seed" description:"Hex-encoded seed material; a fixed demo seed is used if omitted"`
}

type walletListConfig struct {
	config.CommonFlags
}

type walletBackupConfig struct {
	config.CommonFlags
	OutFile string `long:"outfile" description:"Path to copy the wallet file to" required:"true"`
}

type topFlags struct {
	config.CommonFlags
}

func parseCommandLine() (subCommand string, walletSubCommand string, conf interface{}) {
	top := &topFlags{}
	parser := flags.NewParser(top, flags.PrintErrors|flags.HelpFlag)

	initConf := &initConfig{}
	parser.AddCommand(initSubCmd, "Initialize a new chain data directory", "Creates the genesis block and data directory layout.", initConf)

	addBlockConf := &addBlockConfig{}
	parser.AddCommand(addBlockSubCmd, "Validate and append a block from a file", "", addBlockConf)

	mineConf := &mineConfig{}
	parser.AddCommand(mineSubCmd, "Mine and append a new block", "", mineConf)

	getBlockConf := &getBlockConfig{}
	parser.AddCommand(getBlockSubCmd, "Fetch a block by height or hash", "", getBlockConf)

	statsConf := &statsConfig{}
	parser.AddCommand(statsSubCmd, "Print chain and mempool statistics", "", statsConf)

	addTxConf := &addTxConfig{}
	parser.AddCommand(addTxSubCmd, "Add a transaction to the mempool", "", addTxConf)

	startNodeConf := &startNodeConfig{}
	parser.AddCommand(startNodeSubCmd, "Run the P2P and RPC servers", "", startNodeConf)

	connectConf := &connectConfig{}
	parser.AddCommand(connectSubCmd, "Connect to a peer and sync once", "", connectConf)

	startRPCConf := &startRPCConfig{}
	parser.AddCommand(startRPCSubCmd, "Run only the JSON-RPC server", "", startRPCConf)

	walletConf := &struct{}{}
	walletCmd, _ := parser.AddCommand(walletSubCmd, "Wallet operations", "", walletConf)
	walletNewConf := &walletNewConfig{}
	walletCmd.AddCommand(walletNewSubCmd, "Generate a new address", "", walletNewConf)
	walletListConf := &walletListConfig{}
	walletCmd.AddCommand(walletListSubCmd, "List derived addresses", "", walletListConf)
	walletBackupConf := &walletBackupConfig{}
	walletCmd.AddCommand(walletBackupSubCmd, "Copy the wallet file to another path", "", walletBackupConf)

	_, err := parser.Parse()
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
		return "", "", nil
	}

	active := parser.Command.Active
	if active == nil {
		os.Exit(1)
		return "", "", nil
	}

	switch active.Name {
	case initSubCmd:
		return initSubCmd, "", initConf
	case addBlockSubCmd:
		return addBlockSubCmd, "", addBlockConf
	case mineSubCmd:
		return mineSubCmd, "", mineConf
	case getBlockSubCmd:
		return getBlockSubCmd, "", getBlockConf
	case statsSubCmd:
		return statsSubCmd, "", statsConf
	case addTxSubCmd:
		return addTxSubCmd, "", addTxConf
	case startNodeSubCmd:
		return startNodeSubCmd, "", startNodeConf
	case connectSubCmd:
		return connectSubCmd, "", connectConf
	case startRPCSubCmd:
		return startRPCSubCmd, "", startRPCConf
	case walletSubCmd:
		walletActive := active.Active
		if walletActive == nil {
			os.Exit(1)
			return "", "", nil
		}
		switch walletActive.Name {
		case walletNewSubCmd:
			return walletSubCmd, walletNewSubCmd, walletNewConf
		case walletListSubCmd:
			return walletSubCmd, walletListSubCmd, walletListConf
		case walletBackupSubCmd:
			return walletSubCmd, walletBackupSubCmd, walletBackupConf
		}
	}

	os.Exit(1)
	return "", "", nil
}
