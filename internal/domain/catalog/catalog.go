package catalog

import (
	"fmt"
	"os"
	"slices"

	"github.com/samber/lo"
	"github.com/stroppy-io/deployments-driver/internal/core/consts"
	"github.com/stroppy-io/deployments-driver/internal/core/defaults"
	"github.com/stroppy-io/deployments-driver/internal/domain/deployment"
	"github.com/stroppy-io/deployments-driver/internal/infrastructure/pulumiapi"
)

const (
	DefaultRepoURL   consts.DefaultValue = "https://github.com/pulumi/deploy-demos.git"
	DefaultBranch    consts.DefaultValue = "refs/heads/main"
	DefaultAwsRegion consts.DefaultValue = "us-west-2"
)

const (
	GithubAccessTokenEnvKey  consts.EnvKey = "GITHUB_ACCESS_TOKEN"
	AwsAccessKeyIdEnvKey     consts.EnvKey = "AWS_ACCESS_KEY_ID"
	AwsSecretAccessKeyEnvKey consts.EnvKey = "AWS_SECRET_ACCESS_KEY"
	AwsSessionTokenEnvKey    consts.EnvKey = "AWS_SESSION_TOKEN"
	AwsRegionEnvKey          consts.EnvKey = "AWS_REGION"
	LambdaCodeEnvKey         consts.EnvKey = "LAMBDA_CODE"

	// AwsRegionOverrideEnvKey retargets the AWS projects. The ambient
	// AWS_REGION of the operator is ignored.
	AwsRegionOverrideEnvKey consts.EnvKey = "DEPLOY_AWS_REGION"
)

const helloWorldHandler = `
    exports.handler =  async function(event, context) {
        console.log("EVENT:    " + JSON.stringify(event, null, 2))
        return context.logStreamName
    }
    `

// Credentials are forwarded into the remote deployment environment.
type Credentials struct {
	GithubAccessToken  string `mapstructure:"github_access_token"`
	AwsAccessKeyId     string `mapstructure:"aws_access_key_id"`
	AwsSecretAccessKey string `mapstructure:"aws_secret_access_key"`
	AwsSessionToken    string `mapstructure:"aws_session_token"`
	AwsRegion          string `mapstructure:"deploy_aws_region"`
}

func CredentialsFromEnv() Credentials {
	return Credentials{
		GithubAccessToken:  os.Getenv(GithubAccessTokenEnvKey),
		AwsAccessKeyId:     os.Getenv(AwsAccessKeyIdEnvKey),
		AwsSecretAccessKey: os.Getenv(AwsSecretAccessKeyEnvKey),
		AwsSessionToken:    os.Getenv(AwsSessionTokenEnvKey),
		AwsRegion:          os.Getenv(AwsRegionOverrideEnvKey),
	}
}

func (c Credentials) awsEnv() map[string]string {
	return map[string]string{
		AwsRegionEnvKey:          defaults.StringOrDefault(c.AwsRegion, DefaultAwsRegion),
		AwsAccessKeyIdEnvKey:     c.AwsAccessKeyId,
		AwsSecretAccessKeyEnvKey: c.AwsSecretAccessKey,
		AwsSessionTokenEnvKey:    c.AwsSessionToken,
	}
}

type UnknownProjectError struct {
	Project deployment.Project
}

func (e *UnknownProjectError) Error() string {
	return fmt.Sprintf("unable to deploy project. unknown project: %s", e.Project)
}

// Template describes the static source and environment of one project.
type Template struct {
	RepoURL        string
	Branch         string
	RepoDir        string
	PreRunCommands []string
	Env            func(creds Credentials) map[string]string
}

type Catalog struct {
	templates map[deployment.Project]Template
}

func New(templates map[deployment.Project]Template) *Catalog {
	return &Catalog{templates: templates}
}

// Default is the set of sample programs in the deploy-demos repository.
func Default() *Catalog {
	awsOnly := func(creds Credentials) map[string]string {
		return creds.awsEnv()
	}
	return New(map[deployment.Project]Template{
		deployment.ProjectSimpleResource: {
			RepoDir: deployment.ProjectSimpleResource.String(),
		},
		deployment.ProjectBucketTime: {
			RepoDir: deployment.ProjectBucketTime.String(),
			Env:     awsOnly,
		},
		deployment.ProjectGoBucket: {
			RepoDir: deployment.ProjectGoBucket.String(),
			Env:     awsOnly,
		},
		deployment.ProjectLambdaTemplate: {
			RepoDir: deployment.ProjectLambdaTemplate.String(),
			Env: func(creds Credentials) map[string]string {
				return lo.Assign(creds.awsEnv(), map[string]string{
					LambdaCodeEnvKey: helloWorldHandler,
				})
			},
		},
	})
}

func (c *Catalog) Projects() []deployment.Project {
	projects := lo.Keys(c.templates)
	slices.Sort(projects)
	return projects
}

func (c *Catalog) Lookup(project deployment.Project) (Template, error) {
	tmpl, ok := c.templates[project]
	if !ok {
		return Template{}, &UnknownProjectError{Project: project}
	}
	return tmpl, nil
}

// Payload builds the creation request for project. creds are read by the
// caller at payload-construction time.
func (c *Catalog) Payload(
	project deployment.Project,
	op deployment.Operation,
	creds Credentials,
) (*pulumiapi.CreateDeploymentRequest, error) {
	tmpl, err := c.Lookup(project)
	if err != nil {
		return nil, err
	}
	env := map[string]string{}
	if tmpl.Env != nil {
		env = tmpl.Env(creds)
	}
	preRun := tmpl.PreRunCommands
	if preRun == nil {
		preRun = []string{}
	}
	return &pulumiapi.CreateDeploymentRequest{
		SourceContext: pulumiapi.SourceContext{
			Git: pulumiapi.GitSource{
				RepoURL: defaults.StringOrDefault(tmpl.RepoURL, DefaultRepoURL),
				Branch:  defaults.StringOrDefault(tmpl.Branch, DefaultBranch),
				RepoDir: tmpl.RepoDir,
				GitAuth: &pulumiapi.GitAuth{
					AccessToken: creds.GithubAccessToken,
				},
			},
		},
		OperationContext: pulumiapi.OperationContext{
			Operation:            op.String(),
			PreRunCommands:       preRun,
			EnvironmentVariables: env,
		},
	}, nil
}
