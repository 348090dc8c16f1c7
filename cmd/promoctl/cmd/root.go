package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// rootOptions holds the global flags.
type rootOptions struct {
	configPath  string
	baseURL     string
	logLevel    string
	logFormat   string
	output      string
	timeout     time.Duration
	metricsFile string
}

// Execute runs the root command and exits non-zero on failure.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "promoctl",
		Short: "Manage promotions on a promotion service",
		Long: `promoctl drives the promotion form against a promotion service.

Each command fills the form from its flags, runs one operation and prints
the resulting form, flash message and (for search) the results table.

Configuration is read from environment variables (PROMOTIONS_BASE_URL,
PROMOTIONS_TIMEOUT, PROMOTIONS_RATE_LIMIT, PROMOTIONS_METRICS_FILE, LOG_LEVEL, LOG_FORMAT, TRACING_*)
and optionally a YAML file given with --config. Flags take precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file path (optional, uses env vars by default)")
	flags.StringVar(&opts.baseURL, "base-url", "", "promotion service base URL (default: http://localhost:8080)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error) (default: info)")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format (json, console) (default: json)")
	flags.StringVarP(&opts.output, "output", "o", outputText, "output format (text, yaml, html)")
	flags.DurationVar(&opts.timeout, "timeout", 0, "request timeout, 0 waits indefinitely")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this file after the command (textfile collector format)")

	root.AddCommand(
		newCreateCmd(opts),
		newUpdateCmd(opts),
		newGetCmd(opts),
		newDeleteCmd(opts),
		newActivateCmd(opts),
		newDeactivateCmd(opts),
		newSearchCmd(opts),
		newVersionCmd(),
	)
	return root
}
