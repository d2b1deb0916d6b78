package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/five82/linkboard/internal/devserver"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "boardd: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var (
		opts  devserver.Options
		debug bool
	)

	cmd := &cobra.Command{
		Use:           "boardd",
		Short:         "Serve an in-memory posts/comments API for local development",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			build := zap.NewProduction
			if debug {
				build = zap.NewDevelopment
			}
			logger, err := build()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			opts.Logger = logger
			return devserver.Run(cmd.Context(), opts, nil)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", devserver.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&opts.Prefix, "prefix", devserver.DefaultPrefix, "path prefix the API is mounted under")
	cmd.Flags().BoolVar(&opts.Seed, "seed", false, "start with a few sample posts")
	cmd.Flags().BoolVar(&debug, "debug", false, "human-readable debug logging")
	return cmd
}
