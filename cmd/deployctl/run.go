package main

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/stroppy-io/deployments-driver/internal/domain/deployment"
	"github.com/stroppy-io/deployments-driver/internal/domain/logs"
	"github.com/stroppy-io/deployments-driver/internal/domain/report"
	"github.com/stroppy-io/deployments-driver/internal/workflows/deployments"
)

var defaultRequest = deployment.Request{
	Project:   deployment.ProjectGoBucket,
	Operation: deployment.OperationUpdate,
}

type runOptions struct {
	projects     []string
	file         string
	strategy     string
	parallelism  int
	pollInterval time.Duration
	archive      bool
	lock         bool
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Launch a batch of deployments and monitor them to completion",
		Example: `  deployctl run
  deployctl run --project simple-resource --project go-bucket:preview
  deployctl run --file batch.yaml --strategy job --archive`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDeployments(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	flags := cmd.Flags()
	flags.StringArrayVarP(&opts.projects, "project", "p", nil, "deployment as project[:operation], repeatable")
	flags.StringVarP(&opts.file, "file", "f", "", "batch file (yaml or json)")
	flags.StringVar(&opts.strategy, "strategy", "", "log pagination strategy: step or job")
	flags.IntVar(&opts.parallelism, "parallelism", 0, "deployments polled concurrently per round")
	flags.DurationVar(&opts.pollInterval, "poll-interval", 0, "delay between poll rounds")
	flags.BoolVar(&opts.archive, "archive", false, "upload logs and the final report to the archive bucket")
	flags.BoolVar(&opts.lock, "lock", false, "hold a valkey lock per stack while running")
	return cmd
}

// requests merges the batch file and --project flags, file entries first.
func (o *runOptions) requests() ([]deployment.Request, error) {
	var reqs []deployment.Request
	if o.file != "" {
		fromFile, err := deployments.ReadBatch(o.file)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, fromFile...)
	}
	for _, p := range o.projects {
		req, err := deployment.ParseRequest(p)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	if len(reqs) == 0 {
		reqs = append(reqs, defaultRequest)
	}
	return reqs, nil
}

func (o *runOptions) input() (*deployments.RunInput, error) {
	reqs, err := o.requests()
	if err != nil {
		return nil, err
	}
	input := &deployments.RunInput{
		Deployments:  reqs,
		Parallelism:  o.parallelism,
		PollInterval: o.pollInterval,
		Archive:      o.archive,
		Lock:         o.lock,
	}
	if o.strategy != "" {
		input.LogStrategy, err = logs.ParseStrategy(o.strategy)
		if err != nil {
			return nil, err
		}
	}
	return input, nil
}

func runDeployments(ctx context.Context, out io.Writer, opts *runOptions) error {
	input, err := opts.input()
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	deps, err := deployments.NewDeps(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	_, err = deps.Execute(ctx, input, report.NewConsole(out))
	return err
}
