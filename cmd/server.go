package cmd

import (
	"github.com/AkashSundaramoorthi/Haven/server"
	"github.com/spf13/cobra"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start a haven server",
	Long: `The haven server houses the emergency response coordination core:
the contact registry, the voice-trigger monitor & the alert dispatcher,
exposed over an HTTP API for the device shell.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start(serverConfig(), isDevEnv)
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
