package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/keypad/internal/cli"
	"github.com/aretw0/keypad/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "keypad",
	Short: "Keypad is a calculator keypad engine",
	Long: `Keypad runs a four-function calculator keypad as a state machine.
Sessions can be driven from the terminal, over HTTP or by MCP agents,
and persisted in memory, on disk or in Redis.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", config.DefaultPath, "Path to the configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().String("store", "", "Session store backend: memory, file or redis")
	rootCmd.PersistentFlags().String("dir", "", "Directory of the file store")
	rootCmd.PersistentFlags().String("redis-addr", "", "Redis address for the redis store")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging of every key")
}

// loadConfig resolves the configuration file, environment and flags, in that order.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path, cmd.Flags().Changed("config"))
	if err != nil {
		return cfg, err
	}

	if v, _ := cmd.Flags().GetString("store"); v != "" {
		cfg.Store.Backend = v
	}
	if v, _ := cmd.Flags().GetString("dir"); v != "" {
		cfg.Store.Dir = v
	}
	if v, _ := cmd.Flags().GetString("redis-addr"); v != "" {
		cfg.Store.Redis.Addr = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}
	return cfg, cfg.Validate()
}

// newHost builds the engine for commands that work on sessions.
func newHost(ctx context.Context, cmd *cobra.Command) (*cli.Host, config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, cfg, err
	}
	debug, _ := cmd.Flags().GetBool("debug")

	logger, err := cli.NewLogger(cfg.Log.Level, debug)
	if err != nil {
		return nil, cfg, err
	}

	host, err := cli.NewHost(ctx, cfg, logger, debug)
	if err != nil {
		return nil, cfg, err
	}
	return host, cfg, nil
}
