package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stroppy-io/deployments-driver/internal/domain/catalog"
)

func newProjectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List the projects that can be deployed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, project := range catalog.Default().Projects() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), project); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
