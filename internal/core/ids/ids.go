package ids

import (
	"strings"

	"github.com/oklog/ulid/v2"
)

// RunId identifies one orchestrated batch of deployments.
type RunId string

func NewRunId() RunId {
	return RunId(strings.ToLower(ulid.Make().String()))
}

func (id RunId) String() string {
	return string(id)
}

// RunIdFromString keeps a caller supplied id (e.g. a Hatchet run id) or makes a new one.
func RunIdFromString(str string) RunId {
	if strings.TrimSpace(str) == "" {
		return NewRunId()
	}
	return RunId(strings.ToLower(strings.TrimSpace(str)))
}
