package logs

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/stroppy-io/deployments-driver/internal/domain/deployment"
	"github.com/stroppy-io/deployments-driver/internal/infrastructure/pulumiapi"
)

type Strategy string

const (
	StrategyStep Strategy = "step"
	StrategyJob  Strategy = "job"
)

func (s Strategy) String() string {
	return string(s)
}

func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyStep:
		return StrategyStep, nil
	case StrategyJob:
		return StrategyJob, nil
	default:
		return "", fmt.Errorf("unknown log strategy: %q", s)
	}
}

type API interface {
	GetStepLogs(
		ctx context.Context,
		project, id string,
		job, step, offset int,
	) (*pulumiapi.StepLogsResponse, bool, error)
	GetJobLogs(
		ctx context.Context,
		project, id string,
		job int,
		continuationToken string,
	) (*pulumiapi.JobLogsResponse, bool, error)
}

// Paginator returns the log lines that appeared since its previous call for
// the same handle. It owns h.LogMarker.
type Paginator interface {
	Fetch(ctx context.Context, h *deployment.Handle) ([]string, error)
}

func New(strategy Strategy, api API) (Paginator, error) {
	switch strategy {
	case StrategyStep, "":
		return NewStepPaginator(api), nil
	case StrategyJob:
		return NewJobPaginator(api), nil
	default:
		return nil, fmt.Errorf("unknown log strategy: %q", strategy)
	}
}

func StepHeader(name string) string {
	return "--- Step: " + name + "\n"
}

func formatLines(lines []pulumiapi.LogLine) []string {
	return lo.Map(lines, func(l pulumiapi.LogLine, _ int) string {
		return l.String()
	})
}

func ensureMarker(h *deployment.Handle) *deployment.LogMarker {
	if h.LogMarker == nil {
		h.LogMarker = deployment.NewLogMarker()
	}
	return h.LogMarker
}
