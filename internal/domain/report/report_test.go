package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
	"github.com/stroppy-io/deployments-driver/internal/core/ids"
	"github.com/stroppy-io/deployments-driver/internal/domain/deployment"
	"go.uber.org/zap"
)

func testHandle(id string) *deployment.Handle {
	h := deployment.NewHandle(deployment.Request{Project: deployment.ProjectGoBucket, Operation: deployment.OperationUpdate})
	h.ID = id
	h.Status = deployment.StatusSucceeded
	return h
}

func TestRoundReport_String(t *testing.T) {
	require.Equal(t,
		"Finished polling deployments: 1 completed, 2 remaining.",
		RoundReport{Round: 1, Completed: 1, Remaining: 2}.String(),
	)
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)
	h := testHandle("d-1")

	c.Launched(1, h)
	c.Status(h, json.RawMessage(`{"status":"running"}`))
	c.Logs(h, []string{"--- Step: up\n", "t: a\n"})
	c.Round(RoundReport{Round: 1, Completed: 0, Remaining: 1})
	require.NoError(t, c.Final(context.Background(), []*deployment.Handle{h}))

	out := buf.String()
	require.Contains(t, out, "executing deployment 1\n{\"id\":\"d-1\"}\n")
	require.Contains(t, out, "{\"status\":\"running\"}\n")
	require.Contains(t, out, "--- Step: up\nt: a\n\n")
	require.Contains(t, out, "Finished polling deployments: 0 completed, 1 remaining.\n")
	require.Contains(t, out, "\"project\": \"go-bucket\"")
	require.Contains(t, out, "\"op\": \"update\"")
}

type recorder struct {
	rounds []RoundReport
	err    error
}

func (r *recorder) Launched(int, *deployment.Handle)                  {}
func (r *recorder) Status(*deployment.Handle, json.RawMessage)        {}
func (r *recorder) Logs(*deployment.Handle, []string)                 {}
func (r *recorder) Round(round RoundReport)                           { r.rounds = append(r.rounds, round) }
func (r *recorder) Final(context.Context, []*deployment.Handle) error { return r.err }

func TestMulti(t *testing.T) {
	boom := errors.New("boom")
	a, b := &recorder{}, &recorder{err: boom}
	m := Multi(a, b, Nop())

	m.Round(RoundReport{Round: 3})
	require.Len(t, a.rounds, 1)
	require.Len(t, b.rounds, 1)
	require.ErrorIs(t, m.Final(context.Background(), nil), boom)
}

type fakeUploader struct {
	mu      sync.Mutex
	fails   int
	objects map[string]string
	calls   int
}

func (f *fakeUploader) PutObject(
	_ context.Context,
	params *s3.PutObjectInput,
	_ ...func(*s3.Options),
) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fails > 0 {
		f.fails--
		return nil, errors.New("unavailable")
	}
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*params.Bucket+"/"+*params.Key] = string(data)
	return &s3.PutObjectOutput{}, nil
}

func TestArchive_Final(t *testing.T) {
	up := &fakeUploader{objects: map[string]string{}, fails: 1}
	a := NewArchive(zap.NewNop(), up, "reports", "/deployments/", ids.RunId("run1"))
	a.retryInterval = 0
	h := testHandle("d-1")

	a.Logs(h, []string{"--- Step: up\n", "t: a\n"})
	a.Logs(h, []string{"t: b\n"})
	require.NoError(t, a.Final(context.Background(), []*deployment.Handle{h}))

	require.Equal(t, "--- Step: up\nt: a\nt: b\n", up.objects["reports/deployments/run1/d-1.log"])
	require.Contains(t, up.objects["reports/deployments/run1/report.json"], "\"id\": \"d-1\"")
	require.Equal(t, 3, up.calls)
}

func TestArchive_GivesUp(t *testing.T) {
	up := &fakeUploader{objects: map[string]string{}, fails: 100}
	a := NewArchive(zap.NewNop(), up, "reports", "", ids.RunId("run1"))
	a.retryInterval = 0

	err := a.Final(context.Background(), nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "run1/report.json")
	require.Equal(t, defaultUploadRetries+1, up.calls)
}
