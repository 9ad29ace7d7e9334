package cmd

import (
	"CupBack/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the CupBack HTTP server",
	Long:  `Start the CupBack API server: scan ledger, statistics, leaderboards and community board.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
