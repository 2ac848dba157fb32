package main

import (
	"fmt"

	"github.com/aretw0/keypad/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Show the key bindings",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), tui.RenderHelp())
	},
}

func init() {
	rootCmd.AddCommand(keysCmd)
}
