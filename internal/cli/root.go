package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"flow-ai/chatcore/internal/config"
)

var (
	version = "dev"
	commit  = "unknown"
)

// options are the persistent flags shared by every subcommand. Empty values
// are filled from the server configuration (.env file and environment).
type options struct {
	verbose  bool
	store    string
	dbPath   string
	redis    string
	upstream string
}

// NewRootCmd builds the flowctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "flowctl",
		Short: "Work with the chat core from the terminal",
		Long: `flowctl renders assistant text to HTML, runs a single exchange against
an upstream chat endpoint and exports stored conversations.

It reads the same configuration as the server, so by default it talks to the
same upstream and the same store.

Quick Start:
  echo "See [1]\n\n[1]: https://go.dev" | flowctl render
  flowctl ask "What changed in Go 1.24?" --search
  flowctl export <conversation-id> --format yaml`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if opts.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
			return opts.fill()
		},
	}

	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().StringVar(&opts.store, "store", "", "Store driver: sqlite or redis (default from STORE_DRIVER)")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite database path (default from DATABASE_PATH)")
	root.PersistentFlags().StringVar(&opts.redis, "redis", "", "Redis address (default from REDIS_ADDR)")
	root.PersistentFlags().StringVar(&opts.upstream, "upstream", "", "Upstream chat endpoint (default from UPSTREAM_URL)")
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	root.AddCommand(newRenderCmd(), newAskCmd(opts), newExportCmd(opts))
	return root
}

func (o *options) fill() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if o.store == "" {
		o.store = cfg.StoreDriver
	}
	if o.dbPath == "" {
		o.dbPath = cfg.DatabasePath
	}
	if o.redis == "" {
		o.redis = cfg.RedisAddr
	}
	if o.upstream == "" {
		o.upstream = cfg.UpstreamURL
	}
	return nil
}

// Execute runs flowctl and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
