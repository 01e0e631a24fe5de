package logs

import (
	"context"
	"fmt"
	"strings"

	"github.com/stroppy-io/deployments-driver/internal/domain/deployment"
)

// JobPaginator follows the job-wide continuation token. It observes steps as
// they appear and does not need the step list.
type JobPaginator struct {
	api API
}

func NewJobPaginator(api API) *JobPaginator {
	return &JobPaginator{api: api}
}

// headerDue reports whether a request made with token starts a new step.
// The token is "<step>:<offset>".
func headerDue(token string) bool {
	if token == "" {
		return true
	}
	parts := strings.Split(token, ":")
	return len(parts) > 1 && parts[1] == "0"
}

func (p *JobPaginator) Fetch(ctx context.Context, h *deployment.Handle) ([]string, error) {
	marker := ensureMarker(h)
	var out []string

	for {
		token := marker.ContinuationToken
		resp, found, err := p.api.GetJobLogs(ctx, h.Project.String(), h.ID, marker.CurrentJob, token)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch logs of job %d: %w", marker.CurrentJob, err)
		}
		if !found {
			return out, nil
		}

		lines := formatLines(resp.Lines)
		seen := min(marker.ContinuationLines, len(lines))
		fresh := lines[seen:]
		if len(fresh) > 0 && seen == 0 && headerDue(token) {
			out = append(out, StepHeader(resp.Name))
		}
		out = append(out, fresh...)

		if resp.ContinuationToken == nil || *resp.ContinuationToken == token {
			marker.ContinuationLines = max(marker.ContinuationLines, len(lines))
			return out, nil
		}
		marker.ContinuationToken = *resp.ContinuationToken
		marker.ContinuationLines = 0
	}
}
