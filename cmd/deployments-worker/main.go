package main

import (
	"log"

	"github.com/hatchet-dev/hatchet/pkg/cmdutils"
	hatchetLib "github.com/hatchet-dev/hatchet/sdks/go"
	"github.com/stroppy-io/deployments-driver/internal/config"
	"github.com/stroppy-io/deployments-driver/internal/core/build"
	hatchet_ext "github.com/stroppy-io/deployments-driver/internal/core/hatchet-ext"
	"github.com/stroppy-io/deployments-driver/internal/core/logger"
	"github.com/stroppy-io/deployments-driver/internal/workflows/deployments"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if _, err := logger.NewFromConfig(&cfg.Logger); err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	c, err := hatchet_ext.HatchetClient()
	if err != nil {
		log.Fatalf("Failed to create Hatchet client: %v", err)
	}

	interruptCtx, cancel := cmdutils.NewInterruptContext()
	defer cancel()

	deps, err := deployments.NewDeps(interruptCtx, cfg)
	if err != nil {
		log.Fatalf("Failed to create deployments deps: %v", err)
	}
	defer deps.Close()

	worker, err := c.NewWorker(
		"deployments-worker",
		hatchetLib.WithWorkflows(
			deployments.RunWorkflow(c, deps),
		),
	)
	if err != nil {
		log.Fatalf("Failed to create Hatchet worker: %v", err)
	}

	log.Printf("Starting worker %s with ID %s", build.ServiceName, build.GlobalInstanceId)
	err = worker.StartBlocking(interruptCtx)
	if err != nil {
		log.Fatalf("Failed to start Hatchet worker: %v", err)
	}
}
