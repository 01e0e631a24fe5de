package build

import (
	"strings"

	"github.com/oklog/ulid/v2"
)

// Set with -ldflags "-X github.com/stroppy-io/deployments-driver/internal/core/build.Version=...".
var (
	ServiceName = "deployments-driver"
	Version     = "dev"
)

// GlobalInstanceId identifies this process in logs and lock owners.
var GlobalInstanceId = strings.ToLower(ulid.Make().String()) //nolint:gochecknoglobals // process identity
