package cmd

import (
	"fmt"
	"log"
	"os"

	"CupBack/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cupback",
	Short: "CupBack is a campus reusable-cup incentive service.",
	Run: func(cmd *cobra.Command, args []string) {
		log.Println("Starting CupBack server...")
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
