package deployment

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsTerminal(t *testing.T) {
	tests := []struct {
		status   Status
		terminal bool
	}{
		{status: "", terminal: false},
		{status: StatusNotStarted, terminal: false},
		{status: StatusAccepted, terminal: false},
		{status: StatusRunning, terminal: false},
		{status: StatusSucceeded, terminal: true},
		{status: StatusFailed, terminal: true},
		{status: "skipped", terminal: true},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			require.Equal(t, tt.terminal, IsTerminal(tt.status))
		})
	}

	require.False(t, (&Handle{}).Terminal())
}

func TestIsPreDetail(t *testing.T) {
	require.True(t, IsPreDetail(""))
	require.True(t, IsPreDetail(StatusNotStarted))
	require.True(t, IsPreDetail(StatusAccepted))
	require.False(t, IsPreDetail(StatusRunning))
	require.False(t, IsPreDetail(StatusFailed))
}

func TestParseOperation(t *testing.T) {
	op, err := ParseOperation("")
	require.NoError(t, err)
	require.Equal(t, OperationUpdate, op)

	op, err = ParseOperation("Destroy")
	require.NoError(t, err)
	require.Equal(t, OperationDestroy, op)

	_, err = ParseOperation("apply")
	require.ErrorIs(t, err, ErrUnknownOperation)
}

func TestParseRequest(t *testing.T) {
	req, err := ParseRequest("go-bucket")
	require.NoError(t, err)
	require.Equal(t, Request{Project: ProjectGoBucket, Operation: OperationUpdate}, req)

	req, err = ParseRequest("bucket-time:preview")
	require.NoError(t, err)
	require.Equal(t, Request{Project: ProjectBucketTime, Operation: OperationPreview}, req)
	require.Equal(t, "bucket-time:preview", req.String())

	_, err = ParseRequest(":update")
	require.Error(t, err)

	_, err = ParseRequest("go-bucket:apply")
	require.ErrorIs(t, err, ErrUnknownOperation)
}

func TestHandle_AssignID(t *testing.T) {
	h := NewHandle(Request{Project: ProjectGoBucket, Operation: OperationUpdate})
	require.Empty(t, h.ID)

	require.Error(t, h.AssignID(""))
	require.NoError(t, h.AssignID("d-1"))
	require.ErrorIs(t, h.AssignID("d-2"), ErrIDAlreadySet)
	require.Equal(t, "d-1", h.ID)
	require.Equal(t, "go-bucket/d-1", h.String())
}

func TestLogMarker_StepOffset(t *testing.T) {
	m := NewLogMarker()
	require.Equal(t, 1, m.TotalJobs)

	m.StepOffset(2).Offset = 7
	require.Len(t, m.StepOffsets, 3)
	require.Equal(t, 7, m.StepOffset(2).Offset)
	require.Equal(t, 0, m.StepOffset(0).Offset)
	require.Len(t, m.StepOffsets, 3)
}
