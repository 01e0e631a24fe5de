package monitor

import (
	"time"

	"github.com/stroppy-io/deployments-driver/internal/core/defaults"
	"github.com/stroppy-io/deployments-driver/internal/domain/logs"
)

const (
	DefaultPollInterval = 2 * time.Second
	DefaultParallelism  = 1
)

// Config of the poll loop. Parallelism above one polls the handles of a
// round concurrently.
type Config struct {
	PollInterval time.Duration `mapstructure:"poll_interval" validate:"gte=0"`
	Parallelism  int           `mapstructure:"parallelism" validate:"gte=0"`
	LogStrategy  logs.Strategy `mapstructure:"log_strategy" validate:"omitempty,oneof=step job"`
}

func (c *Config) SetDefaults() {
	c.PollInterval = defaults.DurationOrDefault(c.PollInterval, DefaultPollInterval)
	c.Parallelism = defaults.IntOrDefault(c.Parallelism, DefaultParallelism)
	if c.LogStrategy == "" {
		c.LogStrategy = logs.StrategyStep
	}
}
