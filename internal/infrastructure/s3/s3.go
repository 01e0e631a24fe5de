package s3

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/samber/lo"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"
	"go.uber.org/zap"
)

func NewS3Client(ctx context.Context, config *Config, lg *zap.Logger) (*s3.Client, error) {
	config.SetDefaults()
	cfg, err := awsCfg.LoadDefaultConfig(
		ctx,
		awsCfg.WithRegion(config.Region),
		awsCfg.WithCredentialsProvider(aws.CredentialsProviderFunc(func(_ context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     config.AccessKeyId,
				SecretAccessKey: config.SecretAccessKey,
			}, nil
		})),
		awsCfg.WithLogger(smithyLogger(lg)),
		awsCfg.WithLogConfigurationWarnings(true),
		awsCfg.WithClientLogMode(clientLogMode(lg)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	otelaws.AppendMiddlewares(&cfg.APIOptions)
	return s3.NewFromConfig(
		cfg,
		func(options *s3.Options) {
			if config.Url != "" {
				options.BaseEndpoint = aws.String(config.Url)
				options.UsePathStyle = true
			}
		},
	), nil
}

type BucketClient interface {
	ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

func CreateS3BucketIfNotExists(ctx context.Context, s3Client BucketClient, bucketName string) error {
	buckets, err := s3Client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return err
	}
	if lo.ContainsBy(buckets.Buckets, func(item types.Bucket) bool {
		return item.Name != nil && *item.Name == bucketName
	}) {
		return nil
	}
	_, err = s3Client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(bucketName),
	})
	return err
}
