// Package logging wires the chain daemon's per-subsystem loggers onto a
// single rotating backend, following the teacher's logger package: one
// logs.Backend, one logs.Logger per subsystem, and InitLogRotators must run
// before any subsystem logger is used for file output.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jrick/logrotate/rotator"
	"github.com/ledgerbase/chaind/internal/logs"
)

type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	if initiated {
		os.Stdout.Write(p)
		LogRotator.Write(p)
	}
	return len(p), nil
}

type errLogWriter struct{}

func (errLogWriter) Write(p []byte) (int, error) {
	if initiated {
		os.Stdout.Write(p)
		ErrLogRotator.Write(p)
	}
	return len(p), nil
}

var (
	backendLog = logs.NewBackend([]*logs.BackendWriter{
		logs.NewAllLevelsBackendWriter(logWriter{}),
		logs.NewErrorBackendWriter(errLogWriter{}),
	})

	// LogRotator and ErrLogRotator must be closed on shutdown.
	LogRotator    *rotator.Rotator
	ErrLogRotator *rotator.Rotator

	initiated = false
)

// Subsystem loggers. Each package in this module pulls its logger from here
// instead of constructing its own, so a single SetLogLevels call governs
// every component's verbosity.
var (
	ChainLog    = backendLog.Logger("CHAN")
	StoreLog    = backendLog.Logger("STOR")
	MempoolLog  = backendLog.Logger("MMPL")
	PowLog      = backendLog.Logger("POWE")
	ForkLog     = backendLog.Logger("FORK")
	WireLog     = backendLog.Logger("WIRE")
	P2PLog      = backendLog.Logger("P2PS")
	RPCLog      = backendLog.Logger("RPCS")
	WalletLog   = backendLog.Logger("WALT")
	ConfigLog   = backendLog.Logger("CNFG")
)

var subsystemLoggers = map[string]*logs.Logger{
	"CHAN": ChainLog,
	"STOR": StoreLog,
	"MMPL": MempoolLog,
	"POWE": PowLog,
	"FORK": ForkLog,
	"WIRE": WireLog,
	"P2PS": P2PLog,
	"RPCS": RPCLog,
	"WALT": WalletLog,
	"CNFG": ConfigLog,
}

// InitLogRotators must be called before any subsystem logger is expected to
// write to disk. Until then, logs are simply dropped by logWriter/errLogWriter.
func InitLogRotators(logFile, errLogFile string) {
	initiated = true
	LogRotator = initLogRotator(logFile)
	ErrLogRotator = initLogRotator(errLogFile)
}

func initLogRotator(logFile string) *rotator.Rotator {
	logDir, _ := filepath.Split(logFile)
	if logDir != "" {
		if err := os.MkdirAll(logDir, 0700); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create log directory: %s\n", err)
			os.Exit(1)
		}
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create file rotator: %s\n", err)
		os.Exit(1)
	}
	return r
}

// SetLogLevel sets the logging level for a single subsystem tag. Unknown
// tags are ignored.
func SetLogLevel(subsystemID, logLevel string) {
	logger, ok := subsystemLoggers[subsystemID]
	if !ok {
		return
	}
	level, _ := logs.LevelFromString(logLevel)
	logger.SetLevel(level)
}

// SetLogLevels sets every subsystem to the given level.
func SetLogLevels(logLevel string) {
	for tag := range subsystemLoggers {
		SetLogLevel(tag, logLevel)
	}
}

// SupportedSubsystems returns a sorted slice of subsystem tags, for help text.
func SupportedSubsystems() []string {
	tags := make([]string, 0, len(subsystemLoggers))
	for tag := range subsystemLoggers {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// ParseAndSetDebugLevels parses either a single level ("info") or a
// comma-separated list of subsystem=level pairs ("chan=debug,mmpl=trace")
// and applies it.
func ParseAndSetDebugLevels(spec string) error {
	if !strings.Contains(spec, ",") && !strings.Contains(spec, "=") {
		if _, ok := logs.LevelFromString(spec); !ok {
			return fmt.Errorf("the specified debug level [%s] is invalid", spec)
		}
		SetLogLevels(spec)
		return nil
	}

	for _, pair := range strings.Split(spec, ",") {
		fields := strings.SplitN(pair, "=", 2)
		if len(fields) != 2 {
			return fmt.Errorf("the specified debug level contains an invalid subsystem/level pair [%s]", pair)
		}
		subsysID, level := strings.ToUpper(fields[0]), fields[1]
		if _, ok := subsystemLoggers[subsysID]; !ok {
			return fmt.Errorf("the specified subsystem [%s] is invalid -- supported subsystems %s",
				subsysID, strings.Join(SupportedSubsystems(), ", "))
		}
		if _, ok := logs.LevelFromString(level); !ok {
			return fmt.Errorf("the specified debug level [%s] is invalid", level)
		}
		SetLogLevel(subsysID, level)
	}
	return nil
}
