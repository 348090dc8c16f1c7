package cmd

import (
	"context"
	"fmt"

	"github.com/Togather-Foundation/promotions-console/internal/config"
	"github.com/Togather-Foundation/promotions-console/internal/console"
	"github.com/Togather-Foundation/promotions-console/internal/domain/promotions"
	"github.com/Togather-Foundation/promotions-console/internal/metrics"
	"github.com/Togather-Foundation/promotions-console/internal/promoapi"
	"github.com/Togather-Foundation/promotions-console/internal/telemetry"
	"github.com/spf13/cobra"
)

// fieldFlags are the form inputs a command can set.
type fieldFlags struct {
	title         string
	promotionType string
	startDate     string
	endDate       string
	active        string
}

func (f *fieldFlags) register(cmd *cobra.Command, dates bool) {
	cmd.Flags().StringVar(&f.title, "title", "", "promotion title")
	cmd.Flags().StringVar(&f.promotionType, "type", "", "promotion type")
	cmd.Flags().StringVar(&f.active, "active", "", "active flag (true, false, or empty for unset)")
	if dates {
		cmd.Flags().StringVar(&f.startDate, "start-date", "", "start date (YYYY-MM-DD or any parseable date)")
		cmd.Flags().StringVar(&f.endDate, "end-date", "", "end date (YYYY-MM-DD or any parseable date)")
	}
}

func (f *fieldFlags) fill(form *promotions.Form) {
	form.Title = f.title
	form.PromotionType = f.promotionType
	form.StartDate = f.startDate
	form.EndDate = f.endDate
	form.Active = f.active
}

func newCreateCmd(opts *rootOptions) *cobra.Command {
	fields := &fieldFlags{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a promotion",
		Long: `Create a promotion from the field flags.

Any --active value other than "true" creates an inactive promotion.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, opts, promoapi.OpCreate, fields.fill)
		},
	}
	fields.register(cmd, true)
	return cmd
}

func newUpdateCmd(opts *rootOptions) *cobra.Command {
	fields := &fieldFlags{}
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a promotion with the field flags",
		Long: `Replace the promotion with the given ID. Every field is sent, so unset
flags overwrite the stored values with empty ones.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, opts, promoapi.OpUpdate, func(form *promotions.Form) {
				fields.fill(form)
				form.ID = args[0]
			})
		},
	}
	fields.register(cmd, true)
	return cmd
}

func newGetCmd(opts *rootOptions) *cobra.Command {
	return newIDCmd(opts, promoapi.OpRetrieve, &cobra.Command{
		Use:     "get <id>",
		Aliases: []string{"retrieve"},
		Short:   "Show a promotion",
	})
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return newIDCmd(opts, promoapi.OpDelete, &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a promotion",
	})
}

func newActivateCmd(opts *rootOptions) *cobra.Command {
	return newIDCmd(opts, promoapi.OpActivate, &cobra.Command{
		Use:   "activate <id>",
		Short: "Activate a promotion",
	})
}

func newDeactivateCmd(opts *rootOptions) *cobra.Command {
	return newIDCmd(opts, promoapi.OpDeactivate, &cobra.Command{
		Use:   "deactivate <id>",
		Short: "Deactivate a promotion",
	})
}

// newIDCmd completes a command whose only input is the promotion ID.
func newIDCmd(opts *rootOptions, op promoapi.Operation, cmd *cobra.Command) *cobra.Command {
	cmd.Args = cobra.ExactArgs(1)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, opts, op, func(form *promotions.Form) {
			form.ID = args[0]
		})
	}
	return cmd
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	fields := &fieldFlags{}
	cmd := &cobra.Command{
		Use:   "search",
		Short: "List promotions",
		Long: `List promotions matching --title, --type and --active. Empty filters are
not sent; with no filters every promotion is listed. The first result is
copied into the form.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, opts, promoapi.OpSearch, fields.fill)
		},
	}
	fields.register(cmd, false)
	return cmd
}

// runOperation fills a fresh form, runs op against the configured service
// and prints the resulting view. A failed operation is returned as an error
// after the view is printed.
func runOperation(cmd *cobra.Command, opts *rootOptions, op promoapi.Operation, fill func(*promotions.Form)) error {
	if err := checkOutput(opts.output); err != nil {
		return err
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	logger := config.NewLogger(cfg.Logging, cmd.ErrOrStderr())

	shutdown, err := telemetry.InitTracing(ctx, cfg.Tracing, Version, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn().Err(err).Msg("tracing shutdown failed")
		}
	}()

	metrics.Init(Version, GitCommit, BuildDate)

	clientOpts := []promoapi.Option{
		promoapi.WithRateLimit(cfg.Client.RateLimit),
		promoapi.WithLogger(logger),
	}
	if cfg.Client.Timeout > 0 {
		clientOpts = append(clientOpts, promoapi.WithTimeout(cfg.Client.Timeout))
	}
	client := promoapi.NewClient(cfg.Client.BaseURL, clientOpts...)

	ctrl := console.New(client, console.WithLogger(logger))
	ctrl.EditForm(fill)
	logger.Debug().Str("operation", string(op)).Str("base_url", client.BaseURL()).Msg("running promotion operation")

	outcome, err := ctrl.Do(ctx, op)
	if err != nil {
		return fmt.Errorf("%s promotion: %w", op, err)
	}
	if cfg.Metrics.File != "" {
		if err := metrics.WriteTextfile(cfg.Metrics.File); err != nil {
			return err
		}
		logger.Debug().Str("path", cfg.Metrics.File).Msg("metrics written")
	}
	if err := writeState(cmd.OutOrStdout(), opts.output, ctrl.State()); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if !outcome.Succeeded() {
		return fmt.Errorf("%s failed: %s", op, outcome.Flash)
	}
	return nil
}

// loadConfig reads env and file configuration, then applies flag overrides.
func loadConfig(opts *rootOptions) (config.Config, error) {
	cfg, err := config.LoadFile(opts.configPath)
	if err != nil {
		return config.Config{}, err
	}

	if opts.baseURL != "" {
		cfg.Client.BaseURL = opts.baseURL
	}
	if opts.timeout > 0 {
		cfg.Client.Timeout = opts.timeout
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Logging.Format = opts.logFormat
	}
	if opts.metricsFile != "" {
		cfg.Metrics.File = opts.metricsFile
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
