package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ziptree/internal/config"
	"github.com/matzehuels/ziptree/pkg/buildinfo"
	zterrors "github.com/matzehuels/ziptree/pkg/errors"
	ztio "github.com/matzehuels/ziptree/pkg/io"
	"github.com/matzehuels/ziptree/pkg/pipeline"
	"github.com/matzehuels/ziptree/pkg/snarl"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "ziptree",
		Short:        "ziptree indexes read seeds for distance-bounded lookups",
		Long:         `ziptree orders seeds by their position in a snarl decomposition, encodes them into a flat bracketed tree and answers bounded backward distance queries over it.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ./ziptree.yaml)")

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.lookbackCommand())
	root.AddCommand(c.clustersCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the configuration once. A log_level of debug in the
// file enables debug output even without --verbose.
func (c *CLI) loadConfig() error {
	if c.cfg != nil {
		return nil
	}
	if c.configPath != "" {
		if err := zterrors.ValidatePath(c.configPath); err != nil {
			return err
		}
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return zterrors.Wrap(zterrors.ErrCodeInvalidInput, err, "load config")
	}
	if lvl, err := log.ParseLevel(strings.ToLower(cfg.LogLevel)); err == nil && lvl < c.Logger.GetLevel() {
		c.Logger.SetLevel(lvl)
	}
	c.cfg = cfg
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// cacheFlags are shared by every command that builds trees.
type cacheFlags struct {
	noCache bool
	refresh bool
}

func (f *cacheFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the tree cache")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "rebuild even when a cached tree exists")
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, flags cacheFlags) (*pipeline.Runner, error) {
	ch, keyer, err := openCache(ctx, c.cfg.Cache, flags.noCache)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(ch, keyer, loggerFromContext(ctx))
	r.Refresh = flags.refresh
	r.TTL = c.cfg.Cache.TTL
	return r, nil
}

// buildOne loads the workload at path and indexes it.
func (c *CLI) buildOne(ctx context.Context, path string, flags cacheFlags) (*pipeline.Runner, *pipeline.Result, error) {
	m, err := loadWorkload(path)
	if err != nil {
		return nil, nil, err
	}
	runner, err := c.newRunner(ctx, flags)
	if err != nil {
		return nil, nil, err
	}
	res, err := runner.Build(ctx, m)
	if err != nil {
		runner.Close()
		return nil, nil, err
	}
	return runner, res, nil
}

// loadWorkload validates path and reads the workload file there.
func loadWorkload(path string) (snarl.Model, error) {
	if err := zterrors.ValidatePath(path); err != nil {
		return snarl.Model{}, err
	}
	if _, err := zterrors.ValidateFormat(extension(path), string(ztio.FormatTOML), string(ztio.FormatJSON)); err != nil {
		return snarl.Model{}, err
	}
	m, err := ztio.ImportFile(path)
	if err != nil {
		return snarl.Model{}, zterrors.Wrap(zterrors.ErrCodeInvalidWorkload, err, "load workload")
	}
	return m, nil
}

func extension(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 && !strings.ContainsRune(path[i:], '/') {
		return path[i+1:]
	}
	return ""
}
