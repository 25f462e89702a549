// Package cli implements the critpath command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/critpath/pkg/buildinfo"
	"github.com/matzehuels/critpath/pkg/cache"
	"github.com/matzehuels/critpath/pkg/config"
	"github.com/matzehuels/critpath/pkg/observability"
	"github.com/matzehuels/critpath/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "critpath"

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
	Config *config.Config

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger and the built-in
// configuration. The configuration is replaced when a command runs.
func New(w io.Writer, level log.Level) *CLI {
	cfg := config.Default()
	return &CLI{
		Logger: newLogger(w, level),
		Config: &cfg,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "critpath schedules activity networks with the critical path method",
		Long: `critpath computes earliest and latest start times, float and the critical
path(s) of an activity-on-node network, and draws the result with Graphviz.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/critpath/config.toml)")

	root.AddCommand(c.calculateCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads configuration, picks the log level and installs the logging
// hooks before any subcommand runs.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg

	level, err := log.ParseLevel(strings.ToLower(cfg.Log.Level))
	if err != nil {
		level = LogInfo
	}
	if c.verbose {
		level = LogDebug
	}
	c.SetLogLevel(level)

	for _, w := range cfg.Validate() {
		c.Logger.Warn("config", "issue", w)
	}

	installHooks(c.Logger)
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

func installHooks(logger *log.Logger) {
	h := &logHooks{logger: logger}
	observability.SetSessionHooks(h)
	observability.SetRenderHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cache, err := c.newCache(ctx, noCache || c.Config.Cache.Disabled)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, c.Logger), nil
}

// redisKeyPrefix namespaces diagram keys in a shared Redis.
const redisKeyPrefix = appName + ":"

func (c *CLI) newCache(ctx context.Context, disabled bool) (cache.Cache, error) {
	if disabled {
		return cache.NewNullCache(), nil
	}
	if url := c.Config.Cache.RedisURL; url != "" {
		return cache.NewRedisCache(ctx, url, redisKeyPrefix)
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Debug("diagram cache unavailable", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, falling back to the XDG
// default.
func (c *CLI) cacheDir() (string, error) {
	if c.Config != nil && c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/critpath/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
