package deployments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stroppy-io/deployments-driver/internal/config"
	"github.com/stroppy-io/deployments-driver/internal/core/ids"
	"github.com/stroppy-io/deployments-driver/internal/core/logger"
	"github.com/stroppy-io/deployments-driver/internal/domain/catalog"
	"github.com/stroppy-io/deployments-driver/internal/domain/deployment"
	"github.com/stroppy-io/deployments-driver/internal/domain/launcher"
	"github.com/stroppy-io/deployments-driver/internal/domain/logs"
	"github.com/stroppy-io/deployments-driver/internal/domain/monitor"
	"github.com/stroppy-io/deployments-driver/internal/domain/report"
	"github.com/stroppy-io/deployments-driver/internal/domain/runner"
	"github.com/stroppy-io/deployments-driver/internal/infrastructure/pulumiapi"
	"github.com/stroppy-io/deployments-driver/internal/infrastructure/s3"
	"github.com/stroppy-io/deployments-driver/internal/infrastructure/valkey"
	"go.uber.org/zap"
)

var (
	ErrArchiveNotConfigured = errors.New("archive requested but ARCHIVE_* is not configured")
	ErrLockNotConfigured    = errors.New("stack lock requested but VALKEY_* is not configured")
)

type RunInput struct {
	RunId        string               `json:"runId,omitempty"`
	Deployments  []deployment.Request `json:"deployments"`
	LogStrategy  logs.Strategy        `json:"logStrategy,omitempty"`
	Parallelism  int                  `json:"parallelism,omitempty"`
	PollInterval time.Duration        `json:"pollInterval,omitempty"`
	Archive      bool                 `json:"archive,omitempty"`
	Lock         bool                 `json:"lock,omitempty"`
}

type RunOutput struct {
	RunId       string               `json:"runId"`
	Deployments []*deployment.Handle `json:"deployments"`
}

// Deps are the long lived clients shared by every run of the process.
type Deps struct {
	Config  *config.Config
	API     *pulumiapi.Client
	Catalog *catalog.Catalog
	Archive report.Uploader
	Locker  runner.Locker

	closers []func()
}

func NewDeps(ctx context.Context, cfg *config.Config) (*Deps, error) {
	api, err := pulumiapi.NewClient(cfg.Pulumi, pulumiapi.WithLogger(logger.NamedSlog("pulumi-api")))
	if err != nil {
		return nil, fmt.Errorf("failed to create pulumi api client: %w", err)
	}
	deps := &Deps{
		Config:  cfg,
		API:     api,
		Catalog: catalog.Default(),
	}

	if cfg.S3 != nil {
		s3Client, err := s3.NewS3Client(ctx, cfg.S3, logger.Named("s3"))
		if err != nil {
			return nil, err
		}
		if cfg.S3.CreateBucket {
			if err := s3.CreateS3BucketIfNotExists(ctx, s3Client, cfg.S3.Bucket); err != nil {
				return nil, fmt.Errorf("failed to create archive bucket: %w", err)
			}
		}
		deps.Archive = s3Client
	}

	if cfg.Valkey != nil {
		valkeyClient, err := valkey.NewValkey(cfg.Valkey)
		if err != nil {
			return nil, fmt.Errorf("failed to create valkey client: %w", err)
		}
		deps.closers = append(deps.closers, valkeyClient.Close)
		locker, err := valkey.NewStackLocker(valkeyClient, cfg.Valkey.LockValidity)
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("failed to create stack locker: %w", err)
		}
		deps.closers = append(deps.closers, locker.Close)
		deps.Locker = locker
	}
	return deps, nil
}

func (d *Deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
	d.closers = nil
}

func (d *Deps) monitorConfig(input *RunInput) monitor.Config {
	cfg := d.Config.Monitor
	if input.LogStrategy != "" {
		cfg.LogStrategy = input.LogStrategy
	}
	if input.Parallelism > 0 {
		cfg.Parallelism = input.Parallelism
	}
	if input.PollInterval > 0 {
		cfg.PollInterval = input.PollInterval
	}
	cfg.SetDefaults()
	return cfg
}

// Execute runs one batch with the reporter of the caller plus the archive
// when requested.
func (d *Deps) Execute(ctx context.Context, input *RunInput, reporter report.Reporter) (*RunOutput, error) {
	runId := ids.RunIdFromString(input.RunId)
	ctx = logger.CtxWithAttrs(ctx, zap.String("run_id", runId.String()))
	log := logger.NewFromCtx(ctx).Named("deployments")

	monitorCfg := d.monitorConfig(input)
	paginator, err := logs.New(monitorCfg.LogStrategy, d.API)
	if err != nil {
		return nil, err
	}

	if reporter == nil {
		reporter = report.Nop()
	}
	reporters := []report.Reporter{reporter}
	if input.Archive {
		if d.Archive == nil {
			return nil, ErrArchiveNotConfigured
		}
		reporters = append(reporters, report.NewArchive(
			log.Named("archive").With(logger.GetCtxFields(ctx)...),
			d.Archive,
			d.Config.S3.Bucket,
			d.Config.S3.Prefix,
			runId,
		))
	}
	rep := report.Multi(reporters...)

	var opts []runner.Option
	if input.Lock {
		if d.Locker == nil {
			return nil, ErrLockNotConfigured
		}
		opts = append(opts, runner.WithLocker(d.Locker, d.API.Org(), d.API.Stack()))
	}

	credentials := d.Config.Credentials
	r := runner.New(
		log,
		launcher.New(log.Named("launcher"), d.API, d.Catalog, func() catalog.Credentials { return credentials }),
		monitor.New(log.Named("monitor"), monitorCfg, d.API, paginator, rep),
		rep,
		opts...,
	)

	log.Info("starting deployments", logger.WithCtxFields(ctx,
		zap.Int("count", len(input.Deployments)),
		zap.String("log_strategy", monitorCfg.LogStrategy.String()),
		zap.Int("parallelism", monitorCfg.Parallelism),
	)...)
	handles, err := r.Run(ctx, input.Deployments)
	return &RunOutput{RunId: runId.String(), Deployments: handles}, err
}
