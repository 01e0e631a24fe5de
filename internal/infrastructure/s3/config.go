package s3

import (
	"github.com/stroppy-io/deployments-driver/internal/core/consts"
	"github.com/stroppy-io/deployments-driver/internal/core/defaults"
)

const (
	DefaultRegion consts.DefaultValue = "us-east-1"
	DefaultPrefix consts.DefaultValue = "deployments"
)

// Config of the report archive. Url is only needed for S3 compatible
// storages, AWS itself is resolved from Region.
type Config struct {
	Url             string `mapstructure:"url" validate:"omitempty,url"`
	Region          string `mapstructure:"region"`
	SecretAccessKey string `mapstructure:"secret_access_key" validate:"required"`
	AccessKeyId     string `mapstructure:"access_key_id" validate:"required"`
	Bucket          string `mapstructure:"bucket" validate:"required"`
	Prefix          string `mapstructure:"prefix"`
	CreateBucket    bool   `mapstructure:"create_bucket"`
}

func (c *Config) SetDefaults() {
	c.Region = defaults.StringOrDefault(c.Region, DefaultRegion)
	c.Prefix = defaults.StringOrDefault(c.Prefix, DefaultPrefix)
}
