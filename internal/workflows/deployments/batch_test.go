package deployments

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stroppy-io/deployments-driver/internal/domain/deployment"
)

func TestParseBatch(t *testing.T) {
	reqs, err := ParseBatch([]byte(`
deployments:
  - project: go-bucket
  - project: lambda-template
    operation: Destroy
`))
	require.NoError(t, err)
	require.Equal(t, []deployment.Request{
		{Project: deployment.ProjectGoBucket, Operation: deployment.OperationUpdate},
		{Project: deployment.ProjectLambdaTemplate, Operation: deployment.OperationDestroy},
	}, reqs)
}

func TestParseBatch_Errors(t *testing.T) {
	for name, doc := range map[string]string{
		"unknown field":     "deployments:\n  - project: go-bucket\n    op: update\n",
		"missing project":   "deployments:\n  - operation: update\n",
		"unknown operation": "deployments:\n  - project: go-bucket\n    operation: rollback\n",
		"not yaml":          "deployments: [",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseBatch([]byte(doc))
			require.Error(t, err)
		})
	}
}

func TestReadBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"deployments":[{"project":"bucket-time","operation":"refresh"}]}`), 0o600))

	reqs, err := ReadBatch(path)
	require.NoError(t, err)
	require.Equal(t, deployment.OperationRefresh, reqs[0].Operation)

	_, err = ReadBatch(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
