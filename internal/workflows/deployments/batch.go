package deployments

import (
	"fmt"
	"os"

	"github.com/stroppy-io/deployments-driver/internal/domain/deployment"
	"sigs.k8s.io/yaml"
)

// Batch is the file form of a run:
//
//	deployments:
//	  - project: go-bucket
//	    operation: preview
type Batch struct {
	Deployments []deployment.Request `json:"deployments"`
}

// ParseBatch reads YAML or JSON. A missing operation means update.
func ParseBatch(data []byte) ([]deployment.Request, error) {
	var batch Batch
	if err := yaml.UnmarshalStrict(data, &batch); err != nil {
		return nil, fmt.Errorf("failed to parse batch: %w", err)
	}
	for i, req := range batch.Deployments {
		if req.Project == "" {
			return nil, fmt.Errorf("deployment %d: project is required", i)
		}
		op, err := deployment.ParseOperation(req.Operation.String())
		if err != nil {
			return nil, fmt.Errorf("deployment %d: %w", i, err)
		}
		batch.Deployments[i].Operation = op
	}
	return batch.Deployments, nil
}

func ReadBatch(path string) ([]deployment.Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseBatch(data)
}
