package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cenkalti/backoff/v4"
	"github.com/samber/lo"
	"github.com/stroppy-io/deployments-driver/internal/core/ids"
	"github.com/stroppy-io/deployments-driver/internal/domain/deployment"
	"go.uber.org/zap"
)

const (
	defaultUploadRetryInterval = 2 * time.Second
	defaultUploadRetries       = 3
)

type Uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Archive keeps the logs of every deployment of a run and uploads them with
// the final dump once the run is over.
type Archive struct {
	logger   *zap.Logger
	uploader Uploader
	bucket   string
	prefix   string
	runId    ids.RunId

	retryInterval time.Duration

	mu   sync.Mutex
	logs map[string][]string
	keys []string
}

func NewArchive(
	logger *zap.Logger,
	uploader Uploader,
	bucket, prefix string,
	runId ids.RunId,
) *Archive {
	return &Archive{
		logger:        logger,
		uploader:      uploader,
		bucket:        bucket,
		prefix:        strings.Trim(prefix, "/"),
		runId:         runId,
		retryInterval: defaultUploadRetryInterval,
		logs:          make(map[string][]string),
	}
}

func (a *Archive) key(name string) string {
	return path.Join(a.prefix, a.runId.String(), name)
}

func (a *Archive) Launched(int, *deployment.Handle) {}

func (a *Archive) Status(*deployment.Handle, json.RawMessage) {}

func (a *Archive) Round(RoundReport) {}

func (a *Archive) Logs(h *deployment.Handle, lines []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.logs[h.ID]; !ok {
		a.keys = append(a.keys, h.ID)
	}
	a.logs[h.ID] = append(a.logs[h.ID], lines...)
}

func (a *Archive) Final(ctx context.Context, handles []*deployment.Handle) error {
	dump, err := json.MarshalIndent(handles, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode deployments: %w", err)
	}

	a.mu.Lock()
	objects := lo.SliceToMap(a.keys, func(id string) (string, []byte) {
		return a.key(id + ".log"), []byte(strings.Join(a.logs[id], ""))
	})
	a.mu.Unlock()
	objects[a.key("report.json")] = dump

	for _, key := range lo.Keys(objects) {
		if err := a.upload(ctx, key, objects[key]); err != nil {
			return err
		}
	}
	return nil
}

func (a *Archive) upload(ctx context.Context, key string, body []byte) error {
	err := backoff.Retry(func() error {
		_, err := a.uploader.PutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(a.bucket),
			Key:    aws.String(key),
			Body:   bytes.NewReader(body),
		})
		if err != nil {
			a.logger.Warn("archive upload failed", zap.String("key", key), zap.Error(err))
		}
		return err
	}, backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(a.retryInterval), defaultUploadRetries),
		ctx,
	))
	if err != nil {
		return fmt.Errorf("failed to upload %s to %s: %w", key, a.bucket, err)
	}
	a.logger.Debug("archived", zap.String("bucket", a.bucket), zap.String("key", key))
	return nil
}
