package deployment

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

type Project string

const (
	ProjectSimpleResource Project = "simple-resource"
	ProjectBucketTime     Project = "bucket-time"
	ProjectGoBucket       Project = "go-bucket"
	ProjectLambdaTemplate Project = "lambda-template"
)

func (p Project) String() string {
	return string(p)
}

type Operation string

const (
	OperationUpdate  Operation = "update"
	OperationPreview Operation = "preview"
	OperationDestroy Operation = "destroy"
	OperationRefresh Operation = "refresh"
)

func (o Operation) String() string {
	return string(o)
}

var ErrUnknownOperation = errors.New("unknown operation")

// ParseOperation maps an empty string to update.
func ParseOperation(s string) (Operation, error) {
	op := Operation(strings.ToLower(strings.TrimSpace(s)))
	switch op {
	case "":
		return OperationUpdate, nil
	case OperationUpdate, OperationPreview, OperationDestroy, OperationRefresh:
		return op, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownOperation, s)
	}
}

// Status is the remote status vocabulary. Anything outside the three
// active values is terminal.
type Status = string

const (
	StatusNotStarted Status = "not-started"
	StatusAccepted   Status = "accepted"
	StatusRunning    Status = "running"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
)

var nonTerminalStatuses = []Status{StatusNotStarted, StatusAccepted, StatusRunning}

// IsTerminal reports whether no further progress will be observed. An empty
// status is never terminal since the service may omit it transiently.
func IsTerminal(status Status) bool {
	return status != "" && !slices.Contains(nonTerminalStatuses, status)
}

// IsPreDetail reports whether step and log detail is not yet available.
func IsPreDetail(status Status) bool {
	return status == "" || status == StatusNotStarted || status == StatusAccepted
}

type Request struct {
	Project   Project   `json:"project"`
	Operation Operation `json:"operation"`
}

func (r Request) String() string {
	return fmt.Sprintf("%s:%s", r.Project, r.Operation)
}

// ParseRequest reads "project" or "project:operation".
func ParseRequest(s string) (Request, error) {
	project, opStr, _ := strings.Cut(strings.TrimSpace(s), ":")
	if project == "" {
		return Request{}, fmt.Errorf("empty project in %q", s)
	}
	op, err := ParseOperation(opStr)
	if err != nil {
		return Request{}, err
	}
	return Request{Project: Project(project), Operation: op}, nil
}

type Step struct {
	Name string `json:"name"`
}

// StepOffset is the by-step resume position of one step.
type StepOffset struct {
	Offset  int  `json:"offset"`
	Started bool `json:"started"`
}

type LogMarker struct {
	CurrentJob        int          `json:"currentJob"`
	TotalJobs         int          `json:"totalJobs"`
	TotalSteps        int          `json:"totalSteps"`
	StepOffsets       []StepOffset `json:"stepOffsets,omitempty"`
	ContinuationToken string       `json:"continuationToken,omitempty"`
	// ContinuationLines counts the lines already emitted from the page at
	// ContinuationToken.
	ContinuationLines int `json:"continuationLines,omitempty"`
}

func NewLogMarker() *LogMarker {
	return &LogMarker{
		CurrentJob: 0,
		TotalJobs:  1,
	}
}

// StepOffset returns the resume position for step i, growing the slice as needed.
func (m *LogMarker) StepOffset(i int) *StepOffset {
	for len(m.StepOffsets) <= i {
		m.StepOffsets = append(m.StepOffsets, StepOffset{})
	}
	return &m.StepOffsets[i]
}

// Handle tracks one in-flight deployment. It is owned by a single goroutine
// at a time.
type Handle struct {
	Project   Project    `json:"project"`
	Operation Operation  `json:"op"`
	ID        string     `json:"id,omitempty"`
	Status    Status     `json:"status,omitempty"`
	Steps     []Step     `json:"steps,omitempty"`
	LogMarker *LogMarker `json:"logMarker,omitempty"`
}

func NewHandle(req Request) *Handle {
	return &Handle{
		Project:   req.Project,
		Operation: req.Operation,
	}
}

func NewHandles(reqs []Request) []*Handle {
	handles := make([]*Handle, len(reqs))
	for i, req := range reqs {
		handles[i] = NewHandle(req)
	}
	return handles
}

var ErrIDAlreadySet = errors.New("deployment id already set")

// AssignID sets the remote id exactly once.
func (h *Handle) AssignID(id string) error {
	if h.ID != "" {
		return fmt.Errorf("%w: %s", ErrIDAlreadySet, h.ID)
	}
	if id == "" {
		return errors.New("empty deployment id")
	}
	h.ID = id
	return nil
}

func (h *Handle) Terminal() bool {
	return IsTerminal(h.Status)
}

func (h *Handle) String() string {
	return fmt.Sprintf("%s/%s", h.Project, h.ID)
}
