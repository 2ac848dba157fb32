package main

import (
	"os"

	"github.com/aretw0/keypad/internal/cli"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the interactive keypad",
	Long: `Starts an interactive keypad reading key lines from standard input.
Without --session the keypad starts cleared and nothing is stored.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		host, cfg, err := newHost(ctx, cmd)
		if err != nil {
			return err
		}
		defer host.Close()

		sessionID, _ := cmd.Flags().GetString("session")
		jsonMode, _ := cmd.Flags().GetBool("json")
		fresh, _ := cmd.Flags().GetBool("fresh")
		headless, _ := cmd.Flags().GetBool("headless")
		if !cmd.Flags().Changed("headless") {
			headless = !term.IsTerminal(int(os.Stdin.Fd()))
		}

		return cli.Execute(ctx, host, cli.RunOptions{
			SessionID:    sessionID,
			JSON:         jsonMode,
			Headless:     headless,
			Fresh:        fresh,
			MaxInputSize: cfg.Input.MaxSize,
		}, os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("session", "s", "", "Session ID to resume and persist")
	runCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	runCmd.Flags().Bool("headless", false, "Run in headless mode (no banner, prompt or styling); default when stdin is not a terminal")
	runCmd.Flags().Bool("fresh", false, "Clear the session before starting")

	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
