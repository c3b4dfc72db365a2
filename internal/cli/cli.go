package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/adforge/pkg/buildinfo"
	"github.com/matzehuels/adforge/pkg/cache"
	"github.com/matzehuels/adforge/pkg/config"
	"github.com/matzehuels/adforge/pkg/judge"
	"github.com/matzehuels/adforge/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "adforge"

	// judgeTokenEnv holds the bearer token sent to a remote judge.
	judgeTokenEnv = "ADFORGE_JUDGE_TOKEN"
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

	// catalog is the --catalog flag: a TOML file with extra channels and presets.
	catalog string
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
		Use:          appName,
		Short:        "adforge composes, scores and exports ad layouts",
		Long:         `adforge turns a creative territory and a set of brand assets into channel-specific layout variations, scores them for brand compliance and predicted performance, and exports them as print and digital files.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.catalog, "catalog", os.Getenv("ADFORGE_CATALOG"), "TOML catalog with extra channels and presets")

	// Register all subcommands
	root.AddCommand(c.channelsCommand())
	root.AddCommand(c.presetsCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// runnerOptions selects how a CLI runner scores and caches.
type runnerOptions struct {
	noCache  bool
	judgeURL string
	extra    []pipeline.RunnerOption
}

// newRunner creates a pipeline runner for CLI use with the catalog applied.
func (c *CLI) newRunner(ctx context.Context, o runnerOptions) (*pipeline.Runner, error) {
	reg, presets, err := config.Defaults(c.catalog)
	if err != nil {
		return nil, err
	}
	opts := []pipeline.RunnerOption{pipeline.WithChannels(reg), pipeline.WithPresets(presets)}
	if o.judgeURL != "" {
		j, err := newHTTPJudge(o.judgeURL, os.Getenv(judgeTokenEnv), loggerFromContext(ctx))
		if err != nil {
			return nil, err
		}
		opts = append(opts, pipeline.WithJudge(o.judgeURL, j))
	}
	return pipeline.NewRunner(newCache(o.noCache), nil, c.Logger, append(opts, o.extra...)...), nil
}

// newHTTPJudge builds a remote judge. An unreachable endpoint yields the
// scorers' fallback scores, never a command failure.
func newHTTPJudge(url, token string, logger *log.Logger) (judge.Judge, error) {
	opts := []judge.HTTPOption{judge.WithLogger(logger)}
	if token != "" {
		opts = append(opts, judge.WithHeader("Authorization", "Bearer "+token))
	}
	remote, err := judge.NewHTTPJudge(url, opts...)
	if err != nil {
		return nil, err
	}
	return remote, nil
}

func newCache(noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache()
	}
	c, err := cache.NewFileCache(dir)
	if err != nil {
		return cache.NewNullCache()
	}
	return c
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/adforge/).
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
