package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cinderlabs/cinder-client/internal/setup"
)

func buildInfo() setup.BuildInfo {
	return setup.BuildInfo{Version: Version, Commit: Commit, BuildDate: BuildDate}
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the local API for the burn and voting UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveRun(cmd)
		},
	}
}

func serveRun(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return setup.Run(ctx, buildInfo())
}

func initCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the encrypted keystore with the account and memo key",
		RunE: func(cmd *cobra.Command, args []string) error {
			return setup.Init(cmd.InOrStdin(), cmd.OutOrStdout(), force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing keystore without asking")
	return cmd
}
