package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stroppy-io/deployments-driver/internal/domain/deployment"
)

// RoundReport summarises one monitor round.
type RoundReport struct {
	Round     int `json:"round"`
	Completed int `json:"completed"`
	Remaining int `json:"remaining"`
}

func (r RoundReport) String() string {
	return fmt.Sprintf("Finished polling deployments: %d completed, %d remaining.", r.Completed, r.Remaining)
}

// Reporter receives progress of a run. Status and Logs may be called from
// several goroutines when the monitor polls in parallel.
type Reporter interface {
	Launched(n int, h *deployment.Handle)
	Status(h *deployment.Handle, raw json.RawMessage)
	Logs(h *deployment.Handle, lines []string)
	Round(r RoundReport)
	Final(ctx context.Context, handles []*deployment.Handle) error
}

type nop struct{}

func Nop() Reporter {
	return nop{}
}

func (nop) Launched(int, *deployment.Handle)                  {}
func (nop) Status(*deployment.Handle, json.RawMessage)        {}
func (nop) Logs(*deployment.Handle, []string)                 {}
func (nop) Round(RoundReport)                                 {}
func (nop) Final(context.Context, []*deployment.Handle) error { return nil }

type multi []Reporter

// Multi fans every event out to all reporters in order.
func Multi(reporters ...Reporter) Reporter {
	return multi(reporters)
}

func (m multi) Launched(n int, h *deployment.Handle) {
	for _, r := range m {
		r.Launched(n, h)
	}
}

func (m multi) Status(h *deployment.Handle, raw json.RawMessage) {
	for _, r := range m {
		r.Status(h, raw)
	}
}

func (m multi) Logs(h *deployment.Handle, lines []string) {
	for _, r := range m {
		r.Logs(h, lines)
	}
}

func (m multi) Round(round RoundReport) {
	for _, r := range m {
		r.Round(round)
	}
}

func (m multi) Final(ctx context.Context, handles []*deployment.Handle) error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.Final(ctx, handles))
	}
	return errors.Join(errs...)
}
