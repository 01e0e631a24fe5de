package logger //nolint:testpackage // test package

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewFromCtx_FallsBackToGlobal(t *testing.T) { //nolint:paralleltest // global logger
	require.Same(t, Global(), NewFromCtx(context.Background()))
	require.Same(t, Global(), NewFromCtx(nil)) //nolint:staticcheck // nil context is accepted
}

func TestWrapInCtx(t *testing.T) {
	lg := zap.NewNop()
	ctx := WrapInCtx(context.Background(), lg)
	require.Same(t, lg, NewFromCtx(ctx))

	child, cancel := context.WithCancel(ctx)
	defer cancel()
	require.Same(t, lg, NewFromCtx(child))
}

func TestCtxWithAttrs_CopiesInitialFields(t *testing.T) {
	initial := []zap.Field{zap.String("run_id", "r-1")}
	ctx := CtxWithAttrs(context.Background(), initial...)
	initial[0] = zap.String("run_id", "changed")

	require.Equal(t, []zap.Field{zap.String("run_id", "r-1")}, GetCtxFields(ctx))
}

func TestSetCtxFields_SharedWithChildContexts(t *testing.T) {
	ctx := CtxWithAttrs(context.Background(), zap.String("run_id", "r-1"))
	child, cancel := context.WithCancel(ctx)
	defer cancel()

	SetCtxFields(child, zap.Strings("stacks", []string{"pulumi/go-bucket/dev"}))
	require.Equal(t, []zap.Field{
		zap.String("run_id", "r-1"),
		zap.Strings("stacks", []string{"pulumi/go-bucket/dev"}),
	}, GetCtxFields(ctx))
}

func TestSetCtxFields_WithoutHolder(t *testing.T) {
	ctx := context.Background()
	SetCtxFields(ctx, zap.String("ignored", "x"))
	require.Nil(t, GetCtxFields(ctx))
	require.Equal(t, []zap.Field{zap.Int("n", 1)}, WithCtxFields(ctx, zap.Int("n", 1)))
}

func TestSetCtxFields_Concurrent(t *testing.T) {
	ctx := CtxWithAttrs(context.Background())
	const writers = 16

	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			SetCtxFields(ctx, zap.Int(fmt.Sprintf("w%d", i), i))
			_ = GetCtxFields(ctx)
		}()
	}
	wg.Wait()

	require.Len(t, GetCtxFields(ctx), writers)
}

func TestGetCtxFields_ReturnsCopy(t *testing.T) {
	ctx := CtxWithAttrs(context.Background(), zap.String("run_id", "r-1"))
	fields := GetCtxFields(ctx)
	fields[0] = zap.String("run_id", "changed")

	require.Equal(t, "r-1", GetCtxFields(ctx)[0].String)
}

func TestWithCtxFields_AppendsAfterContextFields(t *testing.T) {
	ctx := CtxWithAttrs(context.Background(), zap.String("run_id", "r-1"))
	require.Equal(t, []zap.Field{
		zap.String("run_id", "r-1"),
		zap.Int("round", 2),
	}, WithCtxFields(ctx, zap.Int("round", 2)))
}

func TestFromCtx_AttachesFields(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	ctx := WrapInCtx(context.Background(), zap.New(core))
	ctx = CtxWithAttrs(ctx, zap.String("run_id", "r-1"))
	SetCtxFields(ctx, zap.Int("deployments", 3))

	FromCtx(ctx).Info("starting")

	entries := observed.All()
	require.Len(t, entries, 1)
	require.Equal(t, map[string]any{"run_id": "r-1", "deployments": int64(3)}, entries[0].ContextMap())
}
