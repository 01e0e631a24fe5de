package main

import (
	"github.com/spf13/cobra"
	"github.com/stroppy-io/deployments-driver/internal/config"
	"github.com/stroppy-io/deployments-driver/internal/core/build"
	"github.com/stroppy-io/deployments-driver/internal/core/logger"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deployctl",
		Short: "Launch Pulumi deployments and follow their logs",
		Long: `deployctl submits deployments of the sample projects to the Pulumi Deployments
API, then polls their status and streams their logs until every deployment is finished.
Configuration is read from the environment (PULUMI_ACCESS_TOKEN, DEPLOY_*, ARCHIVE_*, VALKEY_*).`,
		Version:       build.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(
		newRunCmd(),
		newStatusCmd(),
		newProjectsCmd(),
	)
	return cmd
}

// loadConfig reads the environment and rebuilds the global logger from it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if _, err := logger.NewFromConfig(&cfg.Logger); err != nil {
		return nil, err
	}
	return cfg, nil
}
