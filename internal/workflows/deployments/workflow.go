package deployments

import (
	"time"

	hatchetLib "github.com/hatchet-dev/hatchet/sdks/go"
	hatchet_ext "github.com/stroppy-io/deployments-driver/internal/core/hatchet-ext"
	"github.com/stroppy-io/deployments-driver/internal/core/logger"
	"go.uber.org/zap"
)

const (
	RunWorkflowName hatchet_ext.WorkflowName = "deployments-run"

	RunDeploymentsTaskName hatchet_ext.TaskName = "run-deployments"
)

func RunWorkflow(
	c *hatchetLib.Client,
	deps *Deps,
) *hatchetLib.Workflow {
	workflow := c.NewWorkflow(
		RunWorkflowName,
		hatchetLib.WithWorkflowDescription("Launch Pulumi deployments and follow them to completion"),
	)
	workflow.NewTask(
		RunDeploymentsTaskName,
		hatchet_ext.WTask(func(
			ctx hatchetLib.Context,
			input *RunInput,
		) (*RunOutput, error) {
			if input.RunId == "" {
				input.RunId = ctx.WorkflowRunId()
			}
			taskCtx := logger.WrapInCtx(ctx.GetContext(), logger.Named("worker").With(
				zap.String("workflow_run_id", ctx.WorkflowRunId()),
			))
			return deps.Execute(taskCtx, input, NewTaskReporter(ctx))
		}),
		hatchetLib.WithExecutionTimeout(2*time.Hour),
	)
	return workflow
}
