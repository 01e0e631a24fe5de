package valkey

import (
	"time"

	"github.com/stroppy-io/deployments-driver/internal/core/defaults"
)

const DefaultLockValidity = 5 * time.Minute

type Config struct {
	Addresses    []string      `mapstructure:"addresses" validate:"required,dive,hostname_port"`
	Username     string        `mapstructure:"username"`
	Password     string        `mapstructure:"password"`
	LockValidity time.Duration `mapstructure:"lock_validity" validate:"gte=0"`
}

func (c *Config) SetDefaults() {
	c.LockValidity = defaults.DurationOrDefault(c.LockValidity, DefaultLockValidity)
}
