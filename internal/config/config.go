package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/iancoleman/strcase"
	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
	"github.com/stroppy-io/deployments-driver/internal/core/logger"
	"github.com/stroppy-io/deployments-driver/internal/domain/catalog"
	"github.com/stroppy-io/deployments-driver/internal/domain/monitor"
	"github.com/stroppy-io/deployments-driver/internal/infrastructure/pulumiapi"
	"github.com/stroppy-io/deployments-driver/internal/infrastructure/s3"
	"github.com/stroppy-io/deployments-driver/internal/infrastructure/valkey"
)

const (
	monitorPrefix = "deploy_"
	archivePrefix = "archive_"
	valkeyPrefix  = "valkey_"
)

// Config is everything the driver reads from the environment. S3 and Valkey
// stay nil unless at least one of their variables is set. Keys are matched
// after snake casing, so ARCHIVE_BUCKET and ArchiveBucket are the same key.
type Config struct {
	Logger      logger.Config
	Pulumi      pulumiapi.Config
	Monitor     monitor.Config
	Credentials catalog.Credentials
	S3          *s3.Config
	Valkey      *valkey.Config
}

type env map[string]string

type section struct {
	name  string
	input env
	out   any
}

func parseEnviron(environ []string) env {
	out := make(env, len(environ))
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		out[strcase.ToSnake(key)] = value
	}
	return out
}

// withPrefix keeps the keys starting with prefix, with the prefix removed.
func (e env) withPrefix(prefix string) env {
	out := make(env)
	for key, value := range e {
		if rest, ok := strings.CutPrefix(key, prefix); ok {
			out[rest] = value
		}
	}
	return out
}

func decode(input env, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(map[string]string(input))
}

func Load() (*Config, error) {
	return LoadFromEnviron(os.Environ())
}

// LoadFromEnviron decodes KEY=value pairs, applies defaults and validates
// the result.
func LoadFromEnviron(environ []string) (*Config, error) {
	e := parseEnviron(environ)
	cfg := &Config{}

	sections := []section{
		{"logger", e, &cfg.Logger},
		{"pulumi", e, &cfg.Pulumi},
		{"monitor", e.withPrefix(monitorPrefix), &cfg.Monitor},
		{"credentials", e, &cfg.Credentials},
	}
	if archiveEnv := e.withPrefix(archivePrefix); len(archiveEnv) > 0 {
		cfg.S3 = &s3.Config{}
		sections = append(sections, section{"archive", archiveEnv, cfg.S3})
	}
	if valkeyEnv := e.withPrefix(valkeyPrefix); len(valkeyEnv) > 0 {
		cfg.Valkey = &valkey.Config{}
		sections = append(sections, section{"valkey", valkeyEnv, cfg.Valkey})
	}
	for _, s := range sections {
		if err := decode(s.input, s.out); err != nil {
			return nil, fmt.Errorf("failed to decode %s config: %w", s.name, err)
		}
	}
	cfg.Logger.LogMapping = logger.ParseMapping(e[strcase.ToSnake(logger.LogMappingEnvKey)])

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) SetDefaults() {
	c.Pulumi.SetDefaults()
	c.Monitor.SetDefaults()
	if c.S3 != nil {
		c.S3.SetDefaults()
	}
	if c.Valkey != nil {
		c.Valkey.SetDefaults()
	}
}

func (c *Config) Validate() error {
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(c)
	if err == nil {
		return nil
	}
	invalid, ok := lo.ErrorsAs[validator.ValidationErrors](err)
	if !ok {
		return err
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(lo.Map(invalid, func(fe validator.FieldError, _ int) string {
		return fmt.Sprintf("%s failed on %q", fe.Namespace(), fe.Tag())
	}), "; "))
}
