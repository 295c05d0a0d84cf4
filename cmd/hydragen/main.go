// Package main implements the hydra annotation compiler
package main

import (
	"context"
	"errors"
	"os"

	"github.com/retroenv/hydragen/internal/cli"
	"github.com/retroenv/hydragen/internal/config"
	"github.com/retroenv/hydragen/internal/fileprocessor"
	"github.com/retroenv/hydragen/internal/watch"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	opts, err := cli.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts.Debug, opts.Quiet)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			fileprocessor.PrintBanner(logger, opts, version, commit, date)
			if usageErr.Error() != "" {
				logger.Error(usageErr.Error())
			}
			usageErr.ShowUsage()
		} else {
			logger.Fatal(err.Error())
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	fileprocessor.PrintBanner(logger, opts, version, commit, date)

	processor := fileprocessor.New(logger)

	if opts.Watch {
		w := watch.New(logger, opts.Input)
		if err := w.Run(ctx, func(ctx context.Context) error {
			return processor.ProcessFile(ctx, opts)
		}); err != nil {
			logger.Fatal("Watching failed", log.Err(err))
		}
		return
	}

	if err := processor.ProcessFile(ctx, opts); err != nil {
		// Handle context cancellation (Ctrl+C) gracefully
		if errors.Is(err, context.Canceled) {
			logger.Info("Operation cancelled")
			return
		}
		logger.Fatal("Generating failed", log.Err(err))
	}
}
