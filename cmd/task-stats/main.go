package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/lueurxax/task-stats/internal/output/report"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	root, opts := newRootCmd()

	err := root.ExecuteContext(ctx)

	stop()

	if err != nil {
		report.PrintError(os.Stderr, err, opts.useColor && !color.NoColor)
		os.Exit(1)
	}
}
