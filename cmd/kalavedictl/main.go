// Command kalavedictl runs committee chores against the member store.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kalavedi/config"
	"kalavedi/connection"
	"kalavedi/logger"
)

type cli struct {
	ctx    context.Context
	app    *connection.App
	logger *zap.Logger
}

var (
	envFile string
	state   = &cli{ctx: context.Background()}
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "kalavedictl",
		Short:         "BKV membership admin tool",
		Long:          `Administrative commands for the Kalavedi membership backend: admins, certificates, member status and the ledger.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return state.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			state.close()
		},
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to an optional .env file")

	rootCmd.AddCommand(createAdminCmd(state))
	rootCmd.AddCommand(nextIDCmd(state))
	rootCmd.AddCommand(certificateCmd(state))
	rootCmd.AddCommand(setStatusCmd(state))
	rootCmd.AddCommand(ledgerReportCmd(state))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func (c *cli) init() error {
	cfg, _, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	c.logger, err = logger.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	store, err := connection.OpenStore(c.ctx, cfg, c.logger)
	if err != nil {
		return err
	}
	c.app, err = connection.NewApp(c.ctx, cfg, store, c.logger)
	if err != nil {
		store.Close()
		return err
	}
	return nil
}

func (c *cli) close() {
	if c.app != nil {
		if err := c.app.Close(); err != nil {
			c.logger.Warn("failed to close store", zap.Error(err))
		}
	}
	if c.logger != nil {
		c.logger.Sync()
	}
}
