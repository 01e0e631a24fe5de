package runner

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/samber/lo"
	"github.com/stroppy-io/deployments-driver/internal/core/logger"
	"github.com/stroppy-io/deployments-driver/internal/domain/deployment"
	"github.com/stroppy-io/deployments-driver/internal/domain/report"
	"go.uber.org/zap"
)

var ErrNoRequests = errors.New("no deployments requested")

type Launcher interface {
	Launch(ctx context.Context, req deployment.Request) (string, error)
}

type Monitor interface {
	Run(ctx context.Context, handles []*deployment.Handle) error
}

// Locker serialises runs against the same stack. valkeylock.Locker satisfies it.
type Locker interface {
	WithContext(ctx context.Context, name string) (context.Context, context.CancelFunc, error)
}

type Runner struct {
	logger   *zap.Logger
	launcher Launcher
	monitor  Monitor
	reporter report.Reporter
	locker   Locker
	org      string
	stack    string
}

type Option func(*Runner)

func WithLocker(locker Locker, org, stack string) Option {
	return func(r *Runner) {
		r.locker = locker
		r.org = org
		r.stack = stack
	}
}

func New(
	logger *zap.Logger,
	launcher Launcher,
	monitor Monitor,
	reporter report.Reporter,
	opts ...Option,
) *Runner {
	if reporter == nil {
		reporter = report.Nop()
	}
	r := &Runner{
		logger:   logger,
		launcher: launcher,
		monitor:  monitor,
		reporter: reporter,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) lockNames(reqs []deployment.Request) []string {
	return lo.Uniq(lo.Map(reqs, func(req deployment.Request, _ int) string {
		return path.Join(r.org, req.Project.String(), r.stack)
	}))
}

// lock holds one lock per distinct stack. The returned context is cancelled
// as soon as any of the locks is lost.
func (r *Runner) lock(ctx context.Context, reqs []deployment.Request) (context.Context, func(), error) {
	var cancels []context.CancelFunc
	release := func() {
		for i := len(cancels) - 1; i >= 0; i-- {
			cancels[i]()
		}
	}
	if r.locker == nil {
		return ctx, release, nil
	}
	names := r.lockNames(reqs)
	for _, name := range names {
		lockedCtx, cancel, err := r.locker.WithContext(ctx, name)
		if err != nil {
			release()
			return nil, nil, fmt.Errorf("failed to lock stack %s: %w", name, err)
		}
		r.logger.Debug("stack locked", zap.String("stack", name))
		cancels = append(cancels, cancel)
		ctx = lockedCtx
	}
	logger.SetCtxFields(ctx, zap.Strings("stacks", names))
	return ctx, release, nil
}

// Run launches every request in order, monitors them to completion and
// reports the final handles. Any launch error aborts the batch before
// polling starts.
func (r *Runner) Run(ctx context.Context, reqs []deployment.Request) ([]*deployment.Handle, error) {
	if len(reqs) == 0 {
		return nil, ErrNoRequests
	}

	ctx, release, err := r.lock(ctx, reqs)
	if err != nil {
		return nil, err
	}
	defer release()

	handles := deployment.NewHandles(reqs)
	for i, h := range handles {
		id, err := r.launcher.Launch(ctx, reqs[i])
		if err != nil {
			return handles, err
		}
		if err := h.AssignID(id); err != nil {
			return handles, err
		}
		r.reporter.Launched(i+1, h)
		r.logger.Info("deployment launched", logger.WithCtxFields(ctx,
			zap.Int("n", i+1),
			zap.String("project", h.Project.String()),
			zap.String("operation", h.Operation.String()),
			zap.String("id", h.ID),
		)...)
	}

	if err := r.monitor.Run(ctx, handles); err != nil {
		return handles, err
	}
	if err := r.reporter.Final(ctx, handles); err != nil {
		return handles, err
	}
	return handles, nil
}
