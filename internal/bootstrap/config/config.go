package config

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"qualisync/internal/bootstrap/logging"
	"qualisync/internal/errs"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Source   PlatformConfig `mapstructure:"source"`
	Quality  PlatformConfig `mapstructure:"quality"`
	Sync     SyncConfig     `mapstructure:"sync"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// PlatformConfig holds one external platform's connection and retry
// settings. Tokens come from the environment in practice (QS_SOURCE_TOKEN,
// QS_QUALITY_TOKEN), never from the file.
type PlatformConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	Token           string        `mapstructure:"token"`
	PageSize        int           `mapstructure:"page_size"`
	RetryAttempts   int           `mapstructure:"retry_attempts"`
	BackoffInitial  time.Duration `mapstructure:"backoff_initial"`
	BackoffMax      time.Duration `mapstructure:"backoff_max"`
	RateLimitQuota  int           `mapstructure:"rate_limit_quota"`
	RateLimitWindow time.Duration `mapstructure:"rate_limit_window"`
}

type SyncConfig struct {
	TargetsFile string `mapstructure:"targets_file"`
	Concurrency int    `mapstructure:"concurrency"`
}

func Load(ctx context.Context, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Config{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.config"))

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("QS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			// Keep default and env-backed config when no file is provided.
			logging.Warn(logCtx, "config file not found, fallback to defaults and env")
		} else {
			return Config{}, errs.Wrap(err, "read config")
		}
	} else {
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}

	if cfg.Database.DSN == "" {
		return Config{}, errors.New("database.dsn is required")
	}
	if cfg.Source.BaseURL == "" {
		return Config{}, errors.New("source.base_url is required")
	}
	if cfg.Quality.BaseURL == "" {
		return Config{}, errors.New("quality.base_url is required")
	}

	logging.Info(
		logCtx,
		"config loaded",
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
		slog.String("database_driver", cfg.Database.Driver),
		slog.String("source_base_url", cfg.Source.BaseURL),
		slog.String("quality_base_url", cfg.Quality.BaseURL),
	)

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "qualisync")
	v.SetDefault("app.env", "local")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", ".state/qualisync.sqlite")

	for _, platform := range []string{"source", "quality"} {
		// Registered empty so QS_<PLATFORM>_BASE_URL / _TOKEN bind through
		// AutomaticEnv without a file entry.
		v.SetDefault(platform+".base_url", "")
		v.SetDefault(platform+".token", "")
		v.SetDefault(platform+".page_size", 50)
		v.SetDefault(platform+".retry_attempts", 3)
		v.SetDefault(platform+".backoff_initial", "1s")
		v.SetDefault(platform+".backoff_max", "30s")
		v.SetDefault(platform+".rate_limit_quota", 1000)
		v.SetDefault(platform+".rate_limit_window", "1h")
	}

	v.SetDefault("sync.targets_file", "configs/targets.toml")
	v.SetDefault("sync.concurrency", 1)
}
