// Package cli implements the pydepgraph command-line interface.
package cli

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pydepgraph/pkg/buildinfo"
	"github.com/matzehuels/pydepgraph/pkg/deps"
	"github.com/matzehuels/pydepgraph/pkg/integrations/pypi"
	"github.com/matzehuels/pydepgraph/pkg/observability"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "pydepgraph"

	// defaultAddr is where serve listens when neither flag nor config say otherwise.
	defaultAddr = ":8080"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	stderr io.Writer
	config Config

	// Persistent flag values.
	configPath string
	registry   string
	timeout    time.Duration
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		stderr: w,
		config: defaultConfig(),
	}
}

// SetLogLevel updates the logger's level. At debug level the registry and
// assembly hooks are routed to the logger as well.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		h := &logHooks{logger: c.Logger}
		observability.SetHTTPHooks(h)
		observability.SetGraphHooks(h)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "pydepgraph graphs the declared dependencies of a PyPI package",
		Long: `pydepgraph fetches a package's metadata from the Python Package Index and
builds a directed graph from the package to the first N dependencies it declares.
The graph can be printed, exported as JSON, DOT or SVG, browsed in the terminal,
or served over HTTP.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/pydepgraph/config.toml)")
	flags.StringVar(&c.registry, "registry", pypi.DefaultBaseURL, "PyPI JSON API root")
	flags.DurationVar(&c.timeout, "timeout", 0, "per-request registry timeout (default 10s)")

	root.AddCommand(c.graphCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Assembler Factory
// =============================================================================

// newAssembler creates a graph assembler backed by the configured registry.
func (c *CLI) newAssembler(lenient bool) *deps.Assembler {
	client := pypi.NewClient(pypi.Options{
		BaseURL:   c.config.RegistryURL,
		Timeout:   c.config.Timeout.Duration,
		UserAgent: c.config.UserAgent,
	})
	policy := deps.PolicyStrict
	if lenient {
		policy = deps.PolicyPlaceholder
	}
	return deps.NewAssembler(client, deps.Options{Policy: policy, Logger: c.Logger})
}

// target resolves the package and dependency count for a command, letting
// explicit flags win over the config file.
func (c *CLI) target(cmd *cobra.Command, library string, number int) (string, int) {
	if !cmd.Flags().Changed("library") && c.config.Library != "" {
		library = c.config.Library
	}
	if !cmd.Flags().Changed("number") && c.config.Number != nil {
		number = *c.config.Number
	}
	return library, number
}

// addTargetFlags registers the -l/-n/--lenient flags shared by graph and view.
func addTargetFlags(cmd *cobra.Command, library *string, number *int, lenient *bool) {
	cmd.Flags().StringVarP(library, "library", "l", deps.DefaultPackage, "package to graph")
	cmd.Flags().IntVarP(number, "number", "n", deps.DefaultDepth, "number of declared dependencies to include")
	cmd.Flags().BoolVar(lenient, "lenient", false, "keep unparseable declarations as placeholder nodes")
}

// =============================================================================
// Paths
// =============================================================================

// configDir returns the config directory using XDG standard (~/.config/pydepgraph/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
