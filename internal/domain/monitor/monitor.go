package monitor

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/sourcegraph/conc/pool"
	"github.com/stroppy-io/deployments-driver/internal/core/logger"
	"github.com/stroppy-io/deployments-driver/internal/domain/deployment"
	"github.com/stroppy-io/deployments-driver/internal/domain/logs"
	"github.com/stroppy-io/deployments-driver/internal/domain/report"
	"github.com/stroppy-io/deployments-driver/internal/infrastructure/pulumiapi"
	"go.uber.org/zap"
	"k8s.io/apimachinery/pkg/util/wait"
)

type StatusAPI interface {
	GetDeployment(ctx context.Context, project, id string) (*pulumiapi.DeploymentStatus, bool, error)
}

type Monitor struct {
	logger    *zap.Logger
	cfg       Config
	api       StatusAPI
	paginator logs.Paginator
	reporter  report.Reporter
}

func New(
	logger *zap.Logger,
	cfg Config,
	api StatusAPI,
	paginator logs.Paginator,
	reporter report.Reporter,
) *Monitor {
	cfg.SetDefaults()
	if reporter == nil {
		reporter = report.Nop()
	}
	return &Monitor{
		logger:    logger,
		cfg:       cfg,
		api:       api,
		paginator: paginator,
		reporter:  reporter,
	}
}

// Query polls one deployment and merges its fresh logs. It reports whether
// the deployment reached a terminal status.
func (m *Monitor) Query(ctx context.Context, h *deployment.Handle) (bool, error) {
	if h.LogMarker == nil {
		h.LogMarker = deployment.NewLogMarker()
	}

	status, found, err := m.api.GetDeployment(ctx, h.Project.String(), h.ID)
	if err != nil {
		return false, fmt.Errorf("failed to get status of %s: %w", h, err)
	}
	if !found {
		return h.Terminal(), nil
	}
	h.Status = status.Status

	if deployment.IsPreDetail(h.Status) {
		m.reporter.Status(h, status.Raw)
		return h.Terminal(), nil
	}

	h.Steps = []deployment.Step{}
	if len(status.Jobs) > 0 {
		h.Steps = lo.Map(status.Jobs[0].Steps, func(s pulumiapi.JobStep, _ int) deployment.Step {
			return deployment.Step{Name: s.Name}
		})
	}
	h.LogMarker.TotalSteps = len(h.Steps)

	lines, err := m.paginator.Fetch(ctx, h)
	if err != nil {
		return false, fmt.Errorf("failed to get logs of %s: %w", h, err)
	}
	if len(lines) > 0 {
		m.reporter.Status(h, status.Raw)
		m.reporter.Logs(h, lines)
	}
	return h.Terminal(), nil
}

func (m *Monitor) queryRound(ctx context.Context, active []*deployment.Handle) ([]bool, error) {
	terminal := make([]bool, len(active))
	if m.cfg.Parallelism <= 1 {
		for i, h := range active {
			done, err := m.Query(ctx, h)
			if err != nil {
				return nil, err
			}
			terminal[i] = done
		}
		return terminal, nil
	}

	p := pool.New().
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError().
		WithMaxGoroutines(m.cfg.Parallelism)
	for i, h := range active {
		p.Go(func(ctx context.Context) error {
			done, err := m.Query(ctx, h)
			terminal[i] = done
			return err
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return terminal, nil
}

// Run polls the handles until every one of them is terminal. Terminal
// handles leave the active set before the next round and are never polled
// again. PollInterval is the idle time between the end of one round and the
// start of the next. The first error aborts the whole run.
func (m *Monitor) Run(ctx context.Context, handles []*deployment.Handle) error {
	for _, h := range handles {
		if h.ID == "" {
			return fmt.Errorf("deployment %s was not launched", h.Project)
		}
	}

	active := lo.Filter(handles, func(h *deployment.Handle, _ int) bool {
		return !h.Terminal()
	})
	if len(active) == 0 {
		return nil
	}

	loopCtx, stop := context.WithCancel(ctx)
	defer stop()

	round := 0
	var runErr error
	wait.JitterUntilWithContext(loopCtx, func(ctx context.Context) {
		round++
		terminal, err := m.queryRound(ctx, active)
		if err != nil {
			runErr = err
			stop()
			return
		}

		completed := lo.Filter(active, func(_ *deployment.Handle, i int) bool { return terminal[i] })
		active = lo.Filter(active, func(_ *deployment.Handle, i int) bool { return !terminal[i] })
		m.reporter.Round(report.RoundReport{
			Round:     round,
			Completed: len(completed),
			Remaining: len(active),
		})
		m.logger.Debug("poll round finished", logger.WithCtxFields(ctx,
			zap.Int("round", round),
			zap.Strings("completed", lo.Map(completed, func(h *deployment.Handle, _ int) string { return h.ID })),
			zap.Int("remaining", len(active)),
		)...)
		if len(active) == 0 {
			stop()
		}
	}, m.cfg.PollInterval, 0, true)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return runErr
}
