package main

import (
	"fmt"
	"os"

	"github.com/quantumauth-io/quantum-go-utils/log"
	"github.com/spf13/cobra"

	"github.com/cinderlabs/cinder-client/internal/constants"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s %s (commit %s, built %s)\n", constants.AppName, Version, Commit, BuildDate)
		},
	}
}

func main() {
	rootCmd := &cobra.Command{
		Use:          constants.AppName,
		Short:        "Local companion for burning NFTs and voting on proposals",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveRun(cmd)
		},
	}

	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(initCommand())
	rootCmd.AddCommand(costsCommand())
	rootCmd.AddCommand(remainingCommand())
	rootCmd.AddCommand(versionCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Error("command failed", "error", err)
		os.Exit(1)
	}
}
