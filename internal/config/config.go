// Package config defines the node's command-line flags, grounded on the
// teacher's cmd/kaspawallet/config.go go-flags idiom: a common flags
// struct embedded into each subcommand's own config struct, parsed with
// jessevdk/go-flags and flags.PrintErrors|flags.HelpFlag.
package config

import (
	"os"
	"path/filepath"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"

	"github.com/ledgerbase/chaind/internal/logging"
)

// DefaultDataDirName is the data directory created under the user's home
// directory when --datadir is not set.
const DefaultDataDirName = ".chaind"

// DefaultListenAddr is the default P2P bind address.
const DefaultListenAddr = "127.0.0.1:8333"

// DefaultRPCAddr is the default JSON-RPC HTTP bind address.
const DefaultRPCAddr = "127.0.0.1:8545"

// BlockchainDataDirName is the block store's directory name under DataDir.
const BlockchainDataDirName = "blockchain_data"

// MempoolFileName is the mempool persistence file name under DataDir.
const MempoolFileName = "mempool.json"

// WalletFileName is the default wallet file name under DataDir.
const WalletFileName = "wallet.json"

// DefaultDifficulty is the starting proof-of-work difficulty for a new
// chain.
const DefaultDifficulty = 4

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultDataDirName
	}
	return filepath.Join(home, DefaultDataDirName)
}

// CommonFlags are shared across every subcommand.
type CommonFlags struct {
	DataDir  string `long:"datadir" short:"d" description:"Directory to store the chain and mempool data" default-mask:"~/.chaind"`
	LogLevel string `long:"loglevel" short:"l" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical, off}" default:"info"`
	Debug    string `long:"debuglevel" description:"Per-subsystem logging overrides, e.g. CHAN=debug,MMPL=trace"`
}

// ResolvedDataDir returns DataDir, falling back to the default when unset.
func (c *CommonFlags) ResolvedDataDir() string {
	if c.DataDir != "" {
		return c.DataDir
	}
	return defaultDataDir()
}

// ResolvedBlockchainDataDir returns the block store directory under the
// resolved data directory, per SPEC_FULL.md §6's persistent layout.
func (c *CommonFlags) ResolvedBlockchainDataDir() string {
	return filepath.Join(c.ResolvedDataDir(), BlockchainDataDirName)
}

// ResolvedMempoolFile returns the mempool persistence file path under the
// resolved data directory.
func (c *CommonFlags) ResolvedMempoolFile() string {
	return filepath.Join(c.ResolvedDataDir(), MempoolFileName)
}

// ResolvedWalletFile returns the default wallet file path under the
// resolved data directory.
func (c *CommonFlags) ResolvedWalletFile() string {
	return filepath.Join(c.ResolvedDataDir(), WalletFileName)
}

// ApplyLogging initializes log rotation under the resolved data directory
// and applies LogLevel / Debug overrides.
func (c *CommonFlags) ApplyLogging() error {
	logDir := filepath.Join(c.ResolvedDataDir(), "logs")
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return errors.Wrapf(err, "failed to create log directory %s", logDir)
	}
	logging.InitLogRotators(filepath.Join(logDir, "chaind.log"), filepath.Join(logDir, "chaind_err.log"))
	logging.SetLogLevels(c.LogLevel)
	if c.Debug != "" {
		return logging.ParseAndSetDebugLevels(c.Debug)
	}
	return nil
}

// Parse parses os.Args into data (a pointer to one of the flag structs
// above, or a composite embedding CommonFlags), exiting the process on
// --help and returning any other parse error, after go-flags has printed
// it, matching the teacher's parseCommandLine idiom.
func Parse(data interface{}) error {
	parser := flags.NewParser(data, flags.PrintErrors|flags.HelpFlag)
	_, err := parser.Parse()
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		return err
	}
	return nil
}
