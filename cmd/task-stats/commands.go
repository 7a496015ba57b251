package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lueurxax/task-stats/internal/app"
	"github.com/lueurxax/task-stats/internal/platform/config"
	"github.com/lueurxax/task-stats/internal/process/patches"
)

const (
	flagLogLevel    = "log-level"
	flagNoColor     = "no-color"
	flagUser        = "user"
	flagMonth       = "month"
	flagConcurrency = "concurrency"
	flagCursorMode  = "cursor-mode"
	flagTimezone    = "timezone"
	flagOwner       = "owner"
	flagStatus      = "status"
	flagAfter       = "after"
	flagBefore      = "before"
)

// rootOptions carries state shared between the root command and main.
type rootOptions struct {
	cfg      *config.Config
	logger   *zerolog.Logger
	useColor bool
	out      io.Writer
	logOut   io.Writer
}

func newRootCmd() (*cobra.Command, *rootOptions) {
	opts := &rootOptions{useColor: true, out: os.Stdout, logOut: os.Stderr}

	root := &cobra.Command{
		Use:   "task-stats",
		Short: "Contribution statistics for Phabricator and Gerrit",
		Long: `task-stats reports contribution statistics from Wikimedia's tooling.

Examples:
  task-stats subscriptions --user alice --month 2018-01
  task-stats subscriptions --user alice --month 2018-01 --concurrency 8
  task-stats patches --owner alice@example.org --after 2018-01-01 --before 2018-02-01`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.init(cmd)
		},
	}

	root.PersistentFlags().String(flagLogLevel, "", "log level (overrides LOG_LEVEL)")
	root.PersistentFlags().Bool(flagNoColor, false, "disable colored error output")

	root.AddCommand(newSubscriptionsCmd(opts), newPatchesCmd(opts))

	return root, opts
}

func (o *rootOptions) init(cmd *cobra.Command) error {
	flags := cmd.Flags()

	noColor, _ := flags.GetBool(flagNoColor)
	o.useColor = !noColor

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.Report.NoColor != "" {
		o.useColor = false
	}

	if flags.Changed(flagLogLevel) {
		cfg.LogLevel, _ = flags.GetString(flagLogLevel)
	}

	logger, err := app.NewLogger(cfg.AppEnv, cfg.LogLevel, o.logOut)
	if err != nil {
		return err
	}

	o.cfg = cfg
	o.logger = &logger

	return nil
}

func (o *rootOptions) app() *app.App {
	return app.New(o.cfg, o.logger, o.out)
}

func newSubscriptionsCmd(opts *rootOptions) *cobra.Command {
	var req app.SubscriptionsRequest

	cmd := &cobra.Command{
		Use:   "subscriptions",
		Short: "Weekly count of tasks a user started watching in a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			phab := &opts.cfg.Phabricator

			if flags.Changed(flagConcurrency) {
				phab.Concurrency, _ = flags.GetInt(flagConcurrency)
			}

			if flags.Changed(flagCursorMode) {
				phab.CursorMode, _ = flags.GetString(flagCursorMode)
			}

			if flags.Changed(flagTimezone) {
				opts.cfg.Report.Timezone, _ = flags.GetString(flagTimezone)
			}

			return opts.app().RunSubscriptions(cmd.Context(), req)
		},
	}

	cmd.Flags().StringVarP(&req.Username, flagUser, "u", "", "Phabricator username")
	cmd.Flags().StringVarP(&req.Month, flagMonth, "m", "", "target month in YYYY-MM form")
	cmd.Flags().Int(flagConcurrency, 1, "transaction requests in flight (overrides PHAB_CONCURRENCY)")
	cmd.Flags().String(flagCursorMode, "truthy", "search cursor termination: truthy or explicit")
	cmd.Flags().String(flagTimezone, "Local", "time zone used to bucket events (overrides REPORT_TIMEZONE)")

	_ = cmd.MarkFlagRequired(flagUser)
	_ = cmd.MarkFlagRequired(flagMonth)

	return cmd
}

func newPatchesCmd(opts *rootOptions) *cobra.Command {
	var req patches.Request

	cmd := &cobra.Command{
		Use:   "patches",
		Short: "Count a Gerrit owner's changes in a status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()

			req.After = optionalFlag(cmd, flagAfter)
			req.Before = optionalFlag(cmd, flagBefore)
			req.Status, _ = flags.GetString(flagStatus)

			return opts.app().RunPatches(cmd.Context(), req)
		},
	}

	cmd.Flags().StringVarP(&req.Owner, flagOwner, "o", "", "change owner (username or email)")
	cmd.Flags().String(flagStatus, patches.StatusMerged, "change status: merged, open or abandoned")
	cmd.Flags().String(flagAfter, "", "only changes updated after this YYYY-MM-DD date")
	cmd.Flags().String(flagBefore, "", "only changes updated before this YYYY-MM-DD date")

	_ = cmd.MarkFlagRequired(flagOwner)

	return cmd
}

// optionalFlag returns nil for a flag that was not given, so an explicit
// empty value stays distinguishable from an absent one.
func optionalFlag(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}

	v, _ := cmd.Flags().GetString(name)

	return &v
}
