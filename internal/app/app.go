// Package app wires configuration, service clients and pipelines together
// and exposes one method per command:
//
//   - RunSubscriptions: weekly Maniphest subscription report for a user
//   - RunPatches: number of Gerrit changes an owner has in a status
//
// Results are written to the App's output writer; logs go to the logger.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lueurxax/task-stats/internal/core/domain"
	apperrors "github.com/lueurxax/task-stats/internal/core/errors"
	"github.com/lueurxax/task-stats/internal/core/gerrit"
	"github.com/lueurxax/task-stats/internal/core/phabricator"
	"github.com/lueurxax/task-stats/internal/output/report"
	"github.com/lueurxax/task-stats/internal/platform/config"
	"github.com/lueurxax/task-stats/internal/platform/observability"
	"github.com/lueurxax/task-stats/internal/process/patches"
	"github.com/lueurxax/task-stats/internal/process/subscriptions"
)

const (
	appEnvLocal    = "local"
	logFieldRunID  = "run_id"
	logFieldPath   = "path"
	logFieldTook   = "took"
	logFieldCmd    = "command"
	commandSubs    = "subscriptions"
	commandPatches = "patches"
)

// App holds the configuration and output sinks shared by all commands.
type App struct {
	cfg    *config.Config
	logger *zerolog.Logger
	out    io.Writer
}

// SubscriptionsRequest is the input of RunSubscriptions.
type SubscriptionsRequest struct {
	Username string
	Month    string
}

// New creates an App. A nil out writes results to stdout.
func New(cfg *config.Config, logger *zerolog.Logger, out io.Writer) *App {
	if out == nil {
		out = os.Stdout
	}

	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &App{cfg: cfg, logger: logger, out: out}
}

// NewLogger builds the process logger. Local runs get a human readable
// console writer; every other environment logs JSON. Each logger carries a
// fresh run id.
func NewLogger(appEnv, level string, w io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("parsing log level %q: %w", level, err)
	}

	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	if appEnv == appEnvLocal {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Str(logFieldRunID, uuid.NewString()).Logger(), nil
}

// RunSubscriptions resolves the user, collects the subscription events of
// every watched task and prints the weekly table for the month.
func (a *App) RunSubscriptions(ctx context.Context, req SubscriptionsRequest) error {
	month, err := domain.ParseMonth(req.Month)
	if err != nil {
		return err
	}

	if strings.TrimSpace(req.Username) == "" {
		return fmt.Errorf("%w: username is required", apperrors.ErrInputFormat)
	}

	if err := a.cfg.ValidatePhabricator(); err != nil {
		return fmt.Errorf("phabricator config: %w", err)
	}

	mode, err := phabricator.ParseCursorMode(a.cfg.Phabricator.CursorMode)
	if err != nil {
		return err
	}

	loc, err := a.cfg.Location()
	if err != nil {
		return err
	}

	client := phabricator.New(phabricator.Config{
		BaseURL:    a.cfg.Phabricator.BaseURL,
		APIToken:   a.cfg.Phabricator.APIToken,
		UserMethod: a.cfg.Phabricator.UserMethod,
		Timeout:    a.cfg.Phabricator.Timeout,
		RPS:        a.cfg.Phabricator.RPS,
		CursorMode: mode,
	}, a.logger)

	pipeline := subscriptions.New(client, subscriptions.Options{
		Concurrency: a.cfg.Phabricator.Concurrency,
		Location:    loc,
	}, a.logger)

	defer a.writeMetrics()

	start := time.Now()

	res, err := pipeline.Run(ctx, strings.TrimSpace(req.Username), month)
	if err != nil {
		return err
	}

	a.logger.Info().
		Str(logFieldCmd, commandSubs).
		Int("items", len(res.Items)).
		Int("events", len(res.Events)).
		Int("in_month", res.Report.Total()).
		Dur(logFieldTook, time.Since(start)).
		Msg("subscription report ready")

	return report.WriteWeekly(a.out, res.Report)
}

// RunPatches counts the owner's Gerrit changes and prints the result.
func (a *App) RunPatches(ctx context.Context, req patches.Request) error {
	if err := a.cfg.ValidateGerrit(); err != nil {
		return fmt.Errorf("gerrit config: %w", err)
	}

	client := gerrit.New(gerrit.Config{
		BaseURL:  a.cfg.Gerrit.BaseURL,
		Timeout:  a.cfg.Gerrit.Timeout,
		PageSize: a.cfg.Gerrit.PageSize,
	}, a.logger)

	defer a.writeMetrics()

	start := time.Now()

	count, err := patches.New(client, a.logger).Count(ctx, req)
	if err != nil {
		return err
	}

	a.logger.Debug().Str(logFieldCmd, commandPatches).Dur(logFieldTook, time.Since(start)).Msg("patch count ready")

	return report.WriteChangeCount(a.out, count)
}

// writeMetrics dumps the run's metrics for the node_exporter textfile
// collector when a path is configured. Failures are logged, not returned.
func (a *App) writeMetrics() {
	path := a.cfg.Report.MetricsTextfile
	if path == "" {
		return
	}

	if err := observability.WriteTextfile(path); err != nil {
		a.logger.Warn().Err(err).Str(logFieldPath, path).Msg("failed to write metrics textfile")

		return
	}

	a.logger.Debug().Str(logFieldPath, path).Msg("metrics textfile written")
}
