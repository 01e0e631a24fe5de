package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/stroppy-io/deployments-driver/internal/domain/deployment"
	"github.com/stroppy-io/deployments-driver/internal/domain/logs"
	"github.com/stroppy-io/deployments-driver/internal/infrastructure/pulumiapi"
	"github.com/stroppy-io/deployments-driver/internal/workflows/deployments"
)

type statusAPI interface {
	logs.API
	GetDeployment(ctx context.Context, project, id string) (*pulumiapi.DeploymentStatus, bool, error)
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <project> <deployment-id>",
		Short: "Print the status and every log line of an existing deployment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			deps, err := deployments.NewDeps(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer deps.Close()
			return printStatusAndLogs(cmd.Context(), cmd.OutOrStdout(), deps.API, deployment.Project(args[0]), args[1])
		},
	}
}

// printStatusAndLogs reads the whole log of the deployment through the job
// stream, which does not need the step list.
func printStatusAndLogs(ctx context.Context, out io.Writer, api statusAPI, project deployment.Project, id string) error {
	status, found, err := api.GetDeployment(ctx, project.String(), id)
	if err != nil {
		return err
	}
	if !found {
		_, err = fmt.Fprintf(out, "deployment %s/%s is not available yet\n", project, id)
		return err
	}

	h := deployment.NewHandle(deployment.Request{Project: project})
	h.ID = id
	h.Status = status.Status
	lines, err := logs.NewJobPaginator(api).Fetch(ctx, h)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "%s\n%s\n", status.Raw, strings.Join(lines, ""))
	return err
}
