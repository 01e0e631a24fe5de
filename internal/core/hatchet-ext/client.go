package hatchet_ext

import (
	"fmt"
	"os"

	v0Client "github.com/hatchet-dev/hatchet/pkg/client"
	hatchetLib "github.com/hatchet-dev/hatchet/sdks/go"
	"github.com/stroppy-io/deployments-driver/internal/core/consts"
	"github.com/stroppy-io/deployments-driver/internal/core/logger"
)

const HatchetClientTokenEnvKey consts.EnvKey = "HATCHET_CLIENT_TOKEN"

// HatchetClient connects with the token from the environment. SDK logs go to
// the "hatchet" logger.
func HatchetClient() (*hatchetLib.Client, error) {
	token := os.Getenv(HatchetClientTokenEnvKey)
	if token == "" {
		return nil, fmt.Errorf("%s is not set", HatchetClientTokenEnvKey)
	}
	lg, err := logger.Zerolog("hatchet")
	if err != nil {
		return nil, err
	}
	return hatchetLib.NewClient(
		v0Client.WithLogger(lg),
		v0Client.WithToken(token),
	)
}
