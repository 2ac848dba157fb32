package main

import (
	"os"

	"github.com/aretw0/keypad/internal/cli"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:     "session",
	Aliases: []string{"sessions"},
	Short:   "Manage stored keypad sessions",
}

var sessionListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List stored sessions",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		host, _, err := newHost(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer host.Close()
		return cli.ListSessions(cmd.Context(), host.Engine, os.Stdout)
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Show the state and display of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		host, _, err := newHost(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer host.Close()
		jsonMode, _ := cmd.Flags().GetBool("json")
		return cli.InspectSession(cmd.Context(), host.Engine, args[0], jsonMode, os.Stdout)
	},
}

var sessionRemoveCmd = &cobra.Command{
	Use:     "rm <session-id>",
	Aliases: []string{"delete"},
	Short:   "Remove a stored session",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		host, _, err := newHost(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer host.Close()
		return cli.RemoveSession(cmd.Context(), host.Engine, args[0], os.Stdout)
	},
}

var sessionWatchCmd = &cobra.Command{
	Use:   "watch <session-id>",
	Short: "Print a session every time it changes in the store",
	Long:  `Follows a session stored by another process. Needs a store that supports watching (file).`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		host, _, err := newHost(ctx, cmd)
		if err != nil {
			return err
		}
		defer host.Close()
		jsonMode, _ := cmd.Flags().GetBool("json")
		return cli.WatchSession(ctx, host.Engine, args[0], jsonMode, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionListCmd, sessionInspectCmd, sessionRemoveCmd, sessionWatchCmd)

	sessionInspectCmd.Flags().Bool("json", false, "Print the frame as JSON")
	sessionWatchCmd.Flags().Bool("json", false, "Print frames as NDJSON")
}
