package logs

import (
	"context"
	"fmt"

	"github.com/stroppy-io/deployments-driver/internal/domain/deployment"
)

// StepPaginator reads each step by offset. It needs the full step list, so
// it must not run before the deployment left the pre-detail states.
type StepPaginator struct {
	api API
}

func NewStepPaginator(api API) *StepPaginator {
	return &StepPaginator{api: api}
}

func (p *StepPaginator) Fetch(ctx context.Context, h *deployment.Handle) ([]string, error) {
	marker := ensureMarker(h)
	var out []string

	for i, step := range h.Steps {
		cursor := marker.StepOffset(i)
		offset := cursor.Offset
		for {
			resp, found, err := p.api.GetStepLogs(ctx, h.Project.String(), h.ID, marker.CurrentJob, i, offset)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch logs of step %d: %w", i, err)
			}
			if !found {
				return out, nil
			}

			if !cursor.Started {
				out = append(out, StepHeader(step.Name))
				cursor.Started = true
			}
			out = append(out, formatLines(resp.Lines)...)

			if resp.NextOffset == nil {
				cursor.Offset = offset + len(resp.Lines)
				break
			}
			offset = *resp.NextOffset
			cursor.Offset = offset
		}
	}
	return out, nil
}
