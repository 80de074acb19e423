package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"users-api/cmd/api/app"
	"users-api/cmd/api/server"
)

func main() {
	ctx, stop := server.WithSignal(context.Background())
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		stop()
		os.Exit(1)
	}
}

// defaultConfigPath is $CONFIG_PATH, falling back to the working directory
func defaultConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return "."
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "users-api",
		Short:         "Users REST API",
		Long:          "Serves the users resource over HTTP, backed by an in-memory or SQL store with optional Redis caching.",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "directory containing app.env")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP (and optional gRPC health) server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Restore the configured store to the seed state and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReset(cmd.Context(), configPath)
		},
	})

	return rootCmd
}

func runServe(ctx context.Context, configPath string) error {
	a, err := app.New(ctx, app.Options{ConfigPath: configPath})
	if err != nil {
		return err
	}
	return a.Run(ctx)
}

func runReset(ctx context.Context, configPath string) (err error) {
	a, err := app.New(ctx, app.Options{ConfigPath: configPath, SkipSeed: true})
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return a.ResetStore(ctx)
}
