package pulumiapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{
		BackendURL:  srv.URL + "/api",
		AccessToken: "secret",
	})
	require.NoError(t, err)
	return c
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Config{BackendURL: "::not a url", AccessToken: "x"})
	require.Error(t, err)

	_, err = NewClient(Config{})
	require.Error(t, err)

	c, err := NewClient(Config{AccessToken: "x"})
	require.NoError(t, err)
	require.Equal(t, DefaultOrg, c.Org())
	require.Equal(t, DefaultStack, c.Stack())
	require.Equal(t, DefaultBackendURL+"/a/b?x=1", c.endpoint("/a/b", map[string][]string{"x": {"1"}}))
}

func TestCall_HeadersAndBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/preview/pulumi/go-bucket/dev/deployments", r.URL.Path)
		assert.Equal(t, "token secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload CreateDeploymentRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "update", payload.OperationContext.Operation)

		_, _ = io.WriteString(w, `{"id":"d-1","version":3}`)
	})

	resp, found, err := c.CreateDeployment(context.Background(), "go-bucket", &CreateDeploymentRequest{
		OperationContext: OperationContext{Operation: "update"},
	})
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "d-1", resp.ID)
	require.Equal(t, 3, resp.Version)
}

func TestCall_ConflictIsNotAnError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, `{"message":"logs not ready"}`)
	})

	logs, found, err := c.GetStepLogs(context.Background(), "go-bucket", "d-1", 0, 0, 0)
	require.NoError(t, err)
	require.False(t, found)
	require.Nil(t, logs)
}

func TestCall_RemoteCallError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, "deployment not found\n")
	})

	_, _, err := c.GetDeployment(context.Background(), "go-bucket", "missing")
	require.Error(t, err)

	var callErr *RemoteCallError
	require.ErrorAs(t, err, &callErr)
	require.Equal(t, http.StatusNotFound, callErr.StatusCode)
	require.Equal(t, "deployment not found", callErr.Body)
	require.Equal(t, "preview/pulumi/go-bucket/dev/deployments/missing", callErr.Path)
	require.Contains(t, err.Error(), "failed to call preview/pulumi/go-bucket/dev/deployments/missing")
}

func TestGetDeployment_KeepsRawDocument(t *testing.T) {
	doc := `{"status":"running","jobs":[{"status":"running","steps":[{"name":"git clone"},{"name":"pulumi up"}]}],"extra":true}`
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, doc)
	})

	status, found, err := c.GetDeployment(context.Background(), "go-bucket", "d-1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "running", status.Status)
	require.Len(t, status.Jobs, 1)
	require.Equal(t, "pulumi up", status.Jobs[0].Steps[1].Name)
	require.JSONEq(t, doc, string(status.Raw))
}

func TestGetLogs_Query(t *testing.T) {
	var (
		mu      sync.Mutex
		queries []string
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/preview/pulumi/go-bucket/dev/deployments/d-1/logs", r.URL.Path)
		mu.Lock()
		queries = append(queries, r.URL.RawQuery)
		mu.Unlock()
		_, _ = io.WriteString(w, `{"name":"step","lines":[{"timestamp":"t1","line":"hello"}],"nextOffset":4,"continuationToken":"0:4"}`)
	})
	ctx := context.Background()

	stepLogs, found, err := c.GetStepLogs(ctx, "go-bucket", "d-1", 0, 2, 10)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 4, *stepLogs.NextOffset)
	require.Equal(t, "t1: hello", stepLogs.Lines[0].String())

	_, _, err = c.GetJobLogs(ctx, "go-bucket", "d-1", 0, "")
	require.NoError(t, err)
	jobLogs, _, err := c.GetJobLogs(ctx, "go-bucket", "d-1", 0, "1:0")
	require.NoError(t, err)
	require.Equal(t, "0:4", *jobLogs.ContinuationToken)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{
		"job=0&offset=10&step=2",
		"job=0",
		"continuationToken=1%3A0&job=0",
	}, queries)
}

func TestCall_BearerScheme(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{BackendURL: srv.URL, AccessToken: "secret", AuthScheme: "Bearer"}, WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	found, err := c.Call(context.Background(), http.MethodGet, "ping", nil, nil, nil)
	require.NoError(t, err)
	require.True(t, found)
}
