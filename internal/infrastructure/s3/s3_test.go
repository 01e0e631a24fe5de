package s3

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeBuckets struct {
	existing []string
	created  []string
	listErr  error
}

func (f *fakeBuckets) ListBuckets(context.Context, *s3.ListBucketsInput, ...func(*s3.Options)) (*s3.ListBucketsOutput, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := &s3.ListBucketsOutput{}
	for _, name := range f.existing {
		out.Buckets = append(out.Buckets, types.Bucket{Name: aws.String(name)})
	}
	return out, nil
}

func (f *fakeBuckets) CreateBucket(_ context.Context, params *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.created = append(f.created, *params.Bucket)
	return &s3.CreateBucketOutput{}, nil
}

func TestCreateS3BucketIfNotExists(t *testing.T) {
	f := &fakeBuckets{existing: []string{"reports"}}
	require.NoError(t, CreateS3BucketIfNotExists(context.Background(), f, "reports"))
	require.Empty(t, f.created)

	require.NoError(t, CreateS3BucketIfNotExists(context.Background(), f, "archive"))
	require.Equal(t, []string{"archive"}, f.created)

	boom := errors.New("denied")
	require.ErrorIs(t, CreateS3BucketIfNotExists(context.Background(), &fakeBuckets{listErr: boom}, "x"), boom)
}

func TestConfig_SetDefaults(t *testing.T) {
	cfg := Config{}
	cfg.SetDefaults()
	require.Equal(t, DefaultRegion, cfg.Region)
	require.Equal(t, DefaultPrefix, cfg.Prefix)
}

func TestClientLogMode(t *testing.T) {
	require.Equal(t, aws.LogRetries, clientLogMode(zap.NewNop()))

	core, logs := observer.New(zap.DebugLevel)
	lg := zap.New(core)
	require.True(t, clientLogMode(lg).IsRequest())

	smithyLogger(lg).Logf("WARN", "slow %s", "request")
	require.Equal(t, 1, logs.FilterMessage("slow request").Len())
}

func TestNewS3Client(t *testing.T) {
	client, err := NewS3Client(context.Background(), &Config{
		Url:             "http://localhost:9000",
		SecretAccessKey: "secret",
		AccessKeyId:     "key",
		Bucket:          "reports",
	}, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, client)
	require.Equal(t, "us-east-1", client.Options().Region)
	require.True(t, client.Options().UsePathStyle)
}
