package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/chazu/arcmesh/pkg/engine"
	"github.com/chazu/arcmesh/pkg/graph"
	"github.com/chazu/arcmesh/pkg/kernel/sdfx"
	flags "github.com/jessevdk/go-flags"
)

// config defines the command line options.
//
// See loadConfig for details on the configuration load process.
type config struct {
	SnapRadius float64 `long:"snap-radius" description:"Distance within which arc ends share an end node"`
	NoSnap     bool    `long:"no-snap" description:"Only merge arc ends at exactly the same position"`
	Mesh       bool    `long:"mesh" description:"Tessellate every loop set into a triangle mesh"`
	Height     float64 `long:"height" description:"Slab thickness of generated meshes"`
	Resolution int     `long:"resolution" description:"Marching cubes cells along the longest side of a mesh"`
	DebugLevel string  `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems"`

	Args struct {
		Script string `positional-arg-name:"script" description:"Arc script to evaluate; standard input when omitted"`
	} `positional-args:"yes"`
}

// loadConfig initializes and parses the config from command line options.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Parse CLI options and overwrite/add any specified options
//  3. Validate the result and apply the debug levels
func loadConfig(args []string) (*config, error) {
	cfg := config{
		SnapRadius: graph.DefaultSnapRadius,
		Height:     DefaultHeight,
		Resolution: sdfx.DefaultMeshCells,
		DebugLevel: "info",
	}

	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	if cfg.Height <= 0 {
		return nil, fmt.Errorf("--height must be positive, got %v", cfg.Height)
	}
	if cfg.Resolution <= 0 {
		return nil, fmt.Errorf("--resolution must be positive, got %d", cfg.Resolution)
	}
	if err := cfg.graphConfig().Validate(); err != nil {
		return nil, err
	}
	if err := parseAndSetDebugLevels(cfg.DebugLevel); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *config) graphConfig() graph.Config {
	return graph.Config{SnapRadius: c.SnapRadius, UseSnapping: !c.NoSnap}
}

// newApp builds the App described by the configuration.
func (c *config) newApp() (*App, error) {
	eng, err := engine.NewEngineWithConfig(c.graphConfig())
	if err != nil {
		return nil, err
	}
	return NewAppWithOptions(eng, sdfx.NewWithResolution(c.Resolution), Options{
		Mesh:   c.Mesh,
		Height: c.Height,
	}), nil
}

// readScript reads the script at path, or standard input for an empty path.
func readScript(path string, stdin io.Reader) (string, error) {
	if path == "" {
		b, err := io.ReadAll(stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}

func run(args []string, stdin io.Reader, stdout io.Writer) int {
	cfg, err := loadConfig(args)
	if err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			return 0
		}
		// go-flags already reported its own errors.
		if _, ok := err.(*flags.Error); !ok {
			fmt.Fprintln(os.Stderr, err)
		}
		return 2
	}

	source, err := readScript(cfg.Args.Script, stdin)
	if err != nil {
		arcmLog.Errorf("Unable to read script: %v", err)
		return 1
	}

	app, err := cfg.newApp()
	if err != nil {
		arcmLog.Errorf("Unable to start: %v", err)
		return 1
	}

	result := app.Evaluate(source)
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		arcmLog.Errorf("Unable to write result: %v", err)
		return 1
	}
	if len(result.Errors) > 0 {
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout))
}
