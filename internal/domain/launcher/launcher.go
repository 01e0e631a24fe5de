package launcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/stroppy-io/deployments-driver/internal/core/logger"
	"github.com/stroppy-io/deployments-driver/internal/domain/catalog"
	"github.com/stroppy-io/deployments-driver/internal/domain/deployment"
	"github.com/stroppy-io/deployments-driver/internal/infrastructure/pulumiapi"
	"go.uber.org/zap"
)

var ErrEmptyDeploymentID = errors.New("deployment was created without an id")

type DeploymentCreator interface {
	CreateDeployment(
		ctx context.Context,
		project string,
		payload *pulumiapi.CreateDeploymentRequest,
	) (*pulumiapi.CreateDeploymentResponse, bool, error)
}

type Launcher struct {
	logger      *zap.Logger
	api         DeploymentCreator
	catalog     *catalog.Catalog
	credentials func() catalog.Credentials
}

func New(
	logger *zap.Logger,
	api DeploymentCreator,
	cat *catalog.Catalog,
	credentials func() catalog.Credentials,
) *Launcher {
	if credentials == nil {
		credentials = catalog.CredentialsFromEnv
	}
	return &Launcher{
		logger:      logger,
		api:         api,
		catalog:     cat,
		credentials: credentials,
	}
}

// Launch submits one deployment and returns its remote id. Nothing is sent
// when the operation or project is unknown.
func (l *Launcher) Launch(ctx context.Context, req deployment.Request) (string, error) {
	op, err := deployment.ParseOperation(req.Operation.String())
	if err != nil {
		return "", err
	}
	payload, err := l.catalog.Payload(req.Project, op, l.credentials())
	if err != nil {
		return "", err
	}

	resp, found, err := l.api.CreateDeployment(ctx, req.Project.String(), payload)
	if err != nil {
		return "", fmt.Errorf("failed to create deployment %s: %w", req, err)
	}
	if !found || resp == nil || resp.ID == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyDeploymentID, req)
	}

	l.logger.Debug("deployment created", logger.WithCtxFields(ctx,
		zap.String("project", req.Project.String()),
		zap.String("operation", op.String()),
		zap.String("id", resp.ID),
	)...)
	return resp.ID, nil
}
