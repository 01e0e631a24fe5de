package logger

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stroppy-io/deployments-driver/internal/core/build"
	"github.com/stroppy-io/deployments-driver/internal/core/consts"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

type LogMod string

func (m LogMod) String() string {
	return string(m)
}

const (
	DevelopmentMod LogMod = "development"
	ProductionMod  LogMod = "production"
)

// LogMappingEnvKey is decoded by hand, the other fields go through mapstructure.
const LogMappingEnvKey consts.EnvKey = "LOG_MAPPING"

type Config struct {
	LogMod     LogMod            `mapstructure:"log_mod" validate:"omitempty,oneof=production development"`
	LogLevel   string            `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`
	LogMapping map[string]LogMod `mapstructure:"-"`
	SkipCaller bool              `mapstructure:"log_skip_caller"`
}

// ParseMapping reads "name=level,name2=level2" into per-logger levels.
func ParseMapping(mappingStr string) map[string]LogMod {
	if mappingStr == "" {
		return nil
	}
	mapping := make(map[string]LogMod)
	for _, pair := range strings.Split(mappingStr, ",") {
		kv := strings.Split(pair, "=")
		if len(kv) != 2 {
			continue
		}
		mapping[strings.TrimSpace(kv[0])] = LogMod(strings.TrimSpace(kv[1]))
	}
	return mapping
}

var (
	globalLogger  = newDefault() //nolint:gochecknoglobals // global logger needed for all app.
	globalMapping = make(map[string]zapcore.Level)
)

// newDefault creates new default logger.
func newDefault(opts ...zap.Option) *zap.Logger {
	cfg := newZapCfg(DevelopmentMod, zapcore.DebugLevel)
	logger, _ := cfg.Build(opts...)

	return logger
}

// newZapCfg creates new zap config.
func newZapCfg(mod LogMod, logLevel zapcore.Level) zap.Config {
	var cfg zap.Config

	switch mod {
	case ProductionMod:
		cfg = zap.NewProductionConfig()
		cfg.Level.SetLevel(logLevel)
	case DevelopmentMod:
		cfg = zap.NewDevelopmentConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	// stdout carries the deployment report, keep diagnostics on stderr
	cfg.OutputPaths = []string{"stderr"}

	return cfg
}

// NewFromConfig builds the global logger. Empty fields fall back to
// production mode at info level.
func NewFromConfig(cfg *Config, opts ...zap.Option) (*zap.Logger, error) {
	levelStr := cfg.LogLevel
	if levelStr == "" {
		levelStr = zapcore.InfoLevel.String()
	}
	level, err := zapcore.ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	mod := cfg.LogMod
	if mod == "" {
		mod = ProductionMod
	}

	logger, err := newZapCfg(mod, level).Build(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	mapping := make(map[string]zapcore.Level, len(cfg.LogMapping))
	for name, lvl := range cfg.LogMapping {
		mapping[name], err = zapcore.ParseLevel(string(lvl))
		if err != nil {
			return nil, fmt.Errorf("invalid log level for %s: %w", name, err)
		}
	}

	globalLogger = logger.With(
		zap.String("service", build.ServiceName),
		zap.String("version", build.Version),
		zap.String("instance", build.GlobalInstanceId),
	)
	globalMapping = mapping

	if cfg.SkipCaller {
		globalLogger = globalLogger.WithOptions(zap.WithCaller(false))
	}

	return globalLogger, nil
}

func getNamedLoggerLevel(name string) zapcore.Level {
	if level, ok := globalMapping[name]; ok {
		return level
	}
	return Global().Level()
}

// Global returns the global logger.
func Global() *zap.Logger {
	return globalLogger
}

func Named(name string) *zap.Logger {
	return globalLogger.Named(name).WithOptions(zap.IncreaseLevel(getNamedLoggerLevel(name)))
}

func NamedSlog(name string) *slog.Logger {
	return NewSlogFromLogger(Named(name))
}

func NewSlogFromLogger(lg *zap.Logger) *slog.Logger {
	return slog.New(zapslog.NewHandler(lg.Core()))
}

var zerologLevels = map[zapcore.Level]zerolog.Level{ //nolint:gochecknoglobals // lookup table
	zapcore.DebugLevel:  zerolog.DebugLevel,
	zapcore.InfoLevel:   zerolog.InfoLevel,
	zapcore.WarnLevel:   zerolog.WarnLevel,
	zapcore.ErrorLevel:  zerolog.ErrorLevel,
	zapcore.DPanicLevel: zerolog.PanicLevel,
	zapcore.PanicLevel:  zerolog.PanicLevel,
	zapcore.FatalLevel:  zerolog.FatalLevel,
}

// Zerolog bridges a named logger for SDKs that only accept zerolog. Records
// are written through zap, so LOG_MAPPING applies to name as well.
func Zerolog(name string) (*zerolog.Logger, error) {
	named := Named(name)
	level, ok := zerologLevels[named.Level()]
	if !ok {
		level = zerolog.InfoLevel
	}
	std, err := zap.NewStdLogAt(named, named.Level())
	if err != nil {
		return nil, fmt.Errorf("failed to bridge %s logger: %w", name, err)
	}
	lg := zerolog.New(std.Writer()).Level(level)
	return &lg, nil
}
