package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/edgebundle/pkg/buildinfo"
	"github.com/matzehuels/edgebundle/pkg/cache"
	"github.com/matzehuels/edgebundle/pkg/config"
	"github.com/matzehuels/edgebundle/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "edgebundle"

	// redisPingTimeout bounds the connectivity check for a Redis cache.
	redisPingTimeout = 2 * time.Second
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
		Use:   appName,
		Short: "Edgebundle draws graph edges as bundled curves",
		Long: `Edgebundle is a CLI tool for force-directed edge bundling. It pulls
compatible edges of a graph drawing together into bundles so that dense
drawings show their high-level flow instead of a hairball.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.bundleCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// cacheFlags are the cache overrides shared by bundle and serve.
type cacheFlags struct {
	noCache bool
	redis   string
}

func (f *cacheFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&f.redis, "redis", "", "cache results in Redis at this URL (redis://host:port/db)")
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, settings config.Cache, flags cacheFlags) (*pipeline.Runner, error) {
	if flags.noCache {
		settings.Disabled = true
	}
	if flags.redis != "" {
		settings.Redis = flags.redis
	}

	ttl, err := settings.TTLDuration()
	if err != nil {
		return nil, err
	}
	store, err := c.newCache(ctx, settings)
	if err != nil {
		return nil, err
	}

	// A Redis database may be shared with other tools.
	var keyer cache.Keyer
	if _, ok := store.(*cache.RedisCache); ok {
		keyer = cache.NewScopedKeyer(nil, appName+":")
	}

	r := pipeline.NewRunner(store, keyer, c.Logger)
	r.ResultTTL = ttl
	return r, nil
}

// newCache picks the cache backend. An unreachable Redis server falls back
// to the file cache with a warning.
func (c *CLI) newCache(ctx context.Context, settings config.Cache) (cache.Cache, error) {
	if settings.Disabled {
		return cache.NewNullCache(), nil
	}

	if settings.Redis != "" {
		rc, err := cache.NewRedisCache(settings.Redis)
		if err != nil {
			return nil, err
		}
		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		err = rc.Ping(pingCtx)
		cancel()
		if err == nil {
			c.Logger.Debug("using redis cache", "url", redactURL(settings.Redis))
			return rc, nil
		}
		c.Logger.Warn("redis unavailable, using file cache", "error", err)
		rc.Close()
	}

	dir := settings.Dir
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

// redactURL hides credentials in a connection URL.
func redactURL(raw string) string {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return raw
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		rest = "***@" + rest[at+1:]
	}
	return scheme + "://" + rest
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/edgebundle/).
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

// =============================================================================
// Options Helpers
// =============================================================================

// loadConfig reads the config file at path, or returns defaults when path
// is empty.
func loadConfig(path string) (*config.File, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
