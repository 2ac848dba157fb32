package main

import (
	"os"
	"strings"

	"github.com/aretw0/keypad"
	"github.com/aretw0/keypad/internal/cli"
	"github.com/spf13/cobra"
)

var evalCmd = &cobra.Command{
	Use:   "eval <keys>...",
	Short: "Press a key sequence on a cleared keypad and print the display",
	Example: `  keypad eval 12+3=
  keypad eval 0.1 + 0.2 = --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		debug, _ := cmd.Flags().GetBool("debug")
		logger, err := cli.NewLogger(cfg.Log.Level, debug)
		if err != nil {
			return err
		}

		engine, err := keypad.New(keypad.WithLogger(logger))
		if err != nil {
			return err
		}

		jsonMode, _ := cmd.Flags().GetBool("json")
		return cli.Eval(cmd.Context(), engine, strings.Join(args, " "), jsonMode, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().Bool("json", false, "Print the frame as JSON")
}
