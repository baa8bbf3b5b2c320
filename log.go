package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/btcsuite/btclog"
	"github.com/chazu/arcmesh/pkg/engine"
	"github.com/chazu/arcmesh/pkg/graph"
	"github.com/chazu/arcmesh/pkg/loops"
	"github.com/chazu/arcmesh/pkg/tessellate"
)

// Loggers per subsystem. A single backend logger is created and all
// subsystem loggers created from it write to the backend. When adding new
// subsystems, add the subsystem logger variable here and to the
// subsystemLoggers map.
var (
	// backendLog is the logging backend used to create all subsystem
	// loggers. Standard output carries the JSON result, so logs go to
	// standard error.
	backendLog = btclog.NewBackend(os.Stderr)

	arcmLog = backendLog.Logger("ARCM")
	engnLog = backendLog.Logger("ENGN")
	grphLog = backendLog.Logger("GRPH")
	loopLog = backendLog.Logger("LOOP")
	tessLog = backendLog.Logger("TESS")
)

// Initialize package-global logger variables.
func init() {
	engine.UseLogger(engnLog)
	graph.UseLogger(grphLog)
	loops.UseLogger(loopLog)
	tessellate.UseLogger(tessLog)
}

// subsystemLoggers maps each subsystem identifier to its associated logger.
var subsystemLoggers = map[string]btclog.Logger{
	"ARCM": arcmLog,
	"ENGN": engnLog,
	"GRPH": grphLog,
	"LOOP": loopLog,
	"TESS": tessLog,
}

// setLogLevel sets the logging level for provided subsystem. Invalid
// subsystems are ignored.
func setLogLevel(subsystemID string, logLevel string) {
	logger, ok := subsystemLoggers[subsystemID]
	if !ok {
		return
	}

	// Defaults to info if the log level is invalid.
	level, _ := btclog.LevelFromString(logLevel)
	logger.SetLevel(level)
}

// setLogLevels sets the log level for all subsystem loggers to the passed
// level.
func setLogLevels(logLevel string) {
	for subsystemID := range subsystemLoggers {
		setLogLevel(subsystemID, logLevel)
	}
}

// supportedSubsystems returns a sorted slice of the supported subsystems for
// logging purposes.
func supportedSubsystems() []string {
	subsystems := make([]string, 0, len(subsystemLoggers))
	for subsysID := range subsystemLoggers {
		subsystems = append(subsystems, subsysID)
	}
	sort.Strings(subsystems)
	return subsystems
}

// parseAndSetDebugLevels accepts either a single level applied to every
// subsystem ("debug") or a comma-separated list of subsystem=level pairs
// ("GRPH=trace,LOOP=debug").
func parseAndSetDebugLevels(debugLevel string) error {
	if !strings.Contains(debugLevel, "=") {
		if _, ok := btclog.LevelFromString(debugLevel); !ok {
			return fmt.Errorf("the specified debug level [%v] is invalid", debugLevel)
		}
		setLogLevels(debugLevel)
		return nil
	}

	for _, pair := range strings.Split(debugLevel, ",") {
		fields := strings.Split(pair, "=")
		if len(fields) != 2 {
			return fmt.Errorf("the specified debug level contains an invalid subsystem/level pair [%v]", pair)
		}
		subsysID, logLevel := fields[0], fields[1]
		if _, ok := subsystemLoggers[subsysID]; !ok {
			return fmt.Errorf("the specified subsystem [%v] is invalid -- supported subsystems %v",
				subsysID, supportedSubsystems())
		}
		if _, ok := btclog.LevelFromString(logLevel); !ok {
			return fmt.Errorf("the specified debug level [%v] is invalid", logLevel)
		}
		setLogLevel(subsysID, logLevel)
	}
	return nil
}
