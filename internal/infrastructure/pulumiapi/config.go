package pulumiapi

import (
	"time"

	"github.com/stroppy-io/deployments-driver/internal/core/consts"
	"github.com/stroppy-io/deployments-driver/internal/core/defaults"
)

const (
	DefaultBackendURL consts.DefaultValue = "https://api.pulumi.com/api"
	DefaultOrg        consts.DefaultValue = "pulumi"
	DefaultStack      consts.DefaultValue = "dev"
	DefaultAuthScheme consts.DefaultValue = "token"
	DefaultTimeout                        = 30 * time.Second
)

type Config struct {
	BackendURL  string        `mapstructure:"pulumi_backend_url" validate:"required,url"`
	AccessToken string        `mapstructure:"pulumi_access_token" validate:"required"`
	Org         string        `mapstructure:"pulumi_org" validate:"required"`
	Stack       string        `mapstructure:"pulumi_stack" validate:"required"`
	AuthScheme  string        `mapstructure:"pulumi_auth_scheme" validate:"required,oneof=token Bearer bearer"`
	Timeout     time.Duration `mapstructure:"pulumi_request_timeout" validate:"gte=0"`
}

func (c *Config) SetDefaults() {
	c.BackendURL = defaults.StringOrDefault(c.BackendURL, DefaultBackendURL)
	c.Org = defaults.StringOrDefault(c.Org, DefaultOrg)
	c.Stack = defaults.StringOrDefault(c.Stack, DefaultStack)
	c.AuthScheme = defaults.StringOrDefault(c.AuthScheme, DefaultAuthScheme)
	c.Timeout = defaults.DurationOrDefault(c.Timeout, DefaultTimeout)
}
