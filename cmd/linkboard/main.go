package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/linkboard/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "linkboard: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var opts app.Options

	cmd := &cobra.Command{
		Use:           "linkboard",
		Short:         "Browse and edit posts and comments from a terminal",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "override config path (default ~/.config/linkboard/config.toml)")
	cmd.PersistentFlags().StringVar(&opts.APIURL, "api-url", "", "override api_url from config")
	cmd.Flags().StringVar(&opts.PrefsPath, "prefs", "", "override prefs path (default ~/.config/linkboard/prefs.toml)")
	cmd.Flags().DurationVar(&opts.PollEvery, "poll", 0, "background reload interval, e.g. 10s (default off)")

	cmd.AddCommand(newListCmd(&opts), newLogsCmd(&opts))
	return cmd
}

func newListCmd(opts *app.Options) *cobra.Command {
	var lo app.ListOptions
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print all posts with their comments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			return app.List(ctx, *opts, cmd.OutOrStdout(), lo)
		},
	}
	cmd.Flags().BoolVar(&lo.JSON, "json", false, "print the raw posts payload as JSON")
	cmd.Flags().StringVar(&lo.Kind, "kind", "", "only list posts or comments")
	return cmd
}

func newLogsCmd(opts *app.Options) *cobra.Command {
	var (
		lines int
		level string
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the tail of the client log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Logs(*opts, cmd.OutOrStdout(), lines, level)
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "number of entries to show")
	cmd.Flags().StringVar(&level, "level", "", "minimum level (debug, info, warn, error)")
	return cmd
}
