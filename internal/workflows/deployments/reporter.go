package deployments

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stroppy-io/deployments-driver/internal/domain/deployment"
	"github.com/stroppy-io/deployments-driver/internal/domain/report"
)

// TaskLogger is the part of hatchet.Context the reporter writes to.
type TaskLogger interface {
	Log(message string)
}

// taskReporter mirrors run progress into the task log of the hatchet UI.
type taskReporter struct {
	log TaskLogger
}

func NewTaskReporter(log TaskLogger) report.Reporter {
	return &taskReporter{log: log}
}

func (r *taskReporter) Launched(n int, h *deployment.Handle) {
	r.log.Log(fmt.Sprintf("executing deployment %d: %s %s (%s)", n, h.Project, h.Operation, h.ID))
}

func (r *taskReporter) Status(h *deployment.Handle, _ json.RawMessage) {
	r.log.Log(fmt.Sprintf("%s: %s", h, h.Status))
}

func (r *taskReporter) Logs(h *deployment.Handle, lines []string) {
	for _, line := range lines {
		line = strings.TrimRight(line, "\n")
		if line == "" {
			continue
		}
		r.log.Log(fmt.Sprintf("%s | %s", h.ID, line))
	}
}

func (r *taskReporter) Round(round report.RoundReport) {
	r.log.Log(round.String())
}

func (r *taskReporter) Final(_ context.Context, handles []*deployment.Handle) error {
	for _, h := range handles {
		r.log.Log(fmt.Sprintf("%s finished: %s", h, h.Status))
	}
	return nil
}
