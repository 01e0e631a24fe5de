package main

import (
	"os"

	"github.com/hatchet-dev/hatchet/pkg/cmdutils"
	"github.com/stroppy-io/deployments-driver/internal/core/logger"
	"go.uber.org/zap"
)

func main() {
	interruptCtx, cancel := cmdutils.NewInterruptContext()
	defer cancel()

	if err := newRootCmd().ExecuteContext(interruptCtx); err != nil {
		logger.Global().Error("deployctl failed", zap.Error(err))
		cancel()
		os.Exit(1)
	}
}
