package pulumiapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

type CreateDeploymentRequest struct {
	SourceContext    SourceContext    `json:"sourceContext"`
	OperationContext OperationContext `json:"operationContext"`
}

type SourceContext struct {
	Git GitSource `json:"git"`
}

type GitSource struct {
	RepoURL string   `json:"repoURL"`
	Branch  string   `json:"branch"`
	RepoDir string   `json:"repoDir,omitempty"`
	GitAuth *GitAuth `json:"gitAuth,omitempty"`
}

type GitAuth struct {
	AccessToken string `json:"accessToken"`
}

type OperationContext struct {
	Operation            string            `json:"operation"`
	PreRunCommands       []string          `json:"preRunCommands"`
	EnvironmentVariables map[string]string `json:"environmentVariables"`
}

type CreateDeploymentResponse struct {
	ID      string `json:"id"`
	Version int    `json:"version,omitempty"`
}

type JobStep struct {
	Name   string `json:"name"`
	Status string `json:"status,omitempty"`
}

type Job struct {
	Status string    `json:"status,omitempty"`
	Steps  []JobStep `json:"steps"`
}

// DeploymentStatus keeps the raw document next to the fields the poller
// needs so it can be reported verbatim.
type DeploymentStatus struct {
	Status string          `json:"status"`
	Jobs   []Job           `json:"jobs"`
	Raw    json.RawMessage `json:"-"`
}

func (s *DeploymentStatus) UnmarshalJSON(data []byte) error {
	type plain DeploymentStatus
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*s = DeploymentStatus(decoded)
	s.Raw = append(json.RawMessage(nil), data...)
	return nil
}

type LogLine struct {
	Timestamp string `json:"timestamp"`
	Line      string `json:"line"`
}

func (l LogLine) String() string {
	return l.Timestamp + ": " + l.Line
}

type StepLogsResponse struct {
	Name       string    `json:"name"`
	Lines      []LogLine `json:"lines"`
	NextOffset *int      `json:"nextOffset,omitempty"`
}

type JobLogsResponse struct {
	Name              string    `json:"name"`
	Lines             []LogLine `json:"lines"`
	ContinuationToken *string   `json:"continuationToken,omitempty"`
}

func (c *Client) deploymentsPath(project string) string {
	return fmt.Sprintf(
		"preview/%s/%s/%s/deployments",
		url.PathEscape(c.org),
		url.PathEscape(project),
		url.PathEscape(c.stack),
	)
}

func (c *Client) deploymentPath(project, id string) string {
	return c.deploymentsPath(project) + "/" + url.PathEscape(id)
}

func (c *Client) CreateDeployment(
	ctx context.Context,
	project string,
	payload *CreateDeploymentRequest,
) (*CreateDeploymentResponse, bool, error) {
	var resp CreateDeploymentResponse
	found, err := c.Call(ctx, http.MethodPost, c.deploymentsPath(project), nil, payload, &resp)
	if err != nil || !found {
		return nil, found, err
	}
	return &resp, true, nil
}

func (c *Client) GetDeployment(ctx context.Context, project, id string) (*DeploymentStatus, bool, error) {
	var status DeploymentStatus
	found, err := c.Call(ctx, http.MethodGet, c.deploymentPath(project, id), nil, nil, &status)
	if err != nil || !found {
		return nil, found, err
	}
	return &status, true, nil
}

func (c *Client) GetStepLogs(
	ctx context.Context,
	project, id string,
	job, step, offset int,
) (*StepLogsResponse, bool, error) {
	query := url.Values{}
	query.Set("job", strconv.Itoa(job))
	query.Set("step", strconv.Itoa(step))
	query.Set("offset", strconv.Itoa(offset))

	var logs StepLogsResponse
	found, err := c.Call(ctx, http.MethodGet, c.deploymentPath(project, id)+"/logs", query, nil, &logs)
	if err != nil || !found {
		return nil, found, err
	}
	return &logs, true, nil
}

// GetJobLogs omits the continuation token on the first request of a stream.
func (c *Client) GetJobLogs(
	ctx context.Context,
	project, id string,
	job int,
	continuationToken string,
) (*JobLogsResponse, bool, error) {
	query := url.Values{}
	query.Set("job", strconv.Itoa(job))
	if continuationToken != "" {
		query.Set("continuationToken", continuationToken)
	}

	var logs JobLogsResponse
	found, err := c.Call(ctx, http.MethodGet, c.deploymentPath(project, id)+"/logs", query, nil, &logs)
	if err != nil || !found {
		return nil, found, err
	}
	return &logs, true, nil
}
