package ids

import (
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"
)

func TestNewRunId(t *testing.T) {
	first := NewRunId()
	second := NewRunId()

	require.NotEqual(t, first, second)
	_, err := ulid.ParseStrict(string(first))
	require.NoError(t, err)
	require.Equal(t, string(first), first.String())
}

func TestRunIdFromString(t *testing.T) {
	require.Equal(t, RunId("abc"), RunIdFromString(" ABC "))
	require.NotEmpty(t, RunIdFromString("  "))
}
