package main

import (
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/MrEthical07/authtools"
)

// serverConfig is read from the YAML file and overridden by changed flags.
type serverConfig struct {
	Listen      string            `koanf:"listen"`
	LogLevel    string            `koanf:"log_level"`
	RedisPrefix string            `koanf:"redis_prefix"`
	MetricsPath string            `koanf:"metrics_path"`
	AutoMigrate bool              `koanf:"auto_migrate"`
	Auth        authtools.Options `koanf:"auth"`
}

// secrets come only from the environment.
type secrets struct {
	AccessTokenSecret  string `env:"AUTHTOOLS_ACCESS_TOKEN_SECRET"`
	RefreshTokenSecret string `env:"AUTHTOOLS_REFRESH_TOKEN_SECRET"`
	RedisURL           string `env:"AUTHTOOLS_REDIS_URL"`
	DatabaseURL        string `env:"AUTHTOOLS_DATABASE_URL"`
}

func defaultServerConfig() serverConfig {
	return serverConfig{
		Listen:      ":8080",
		LogLevel:    "info",
		RedisPrefix: "authtools",
		MetricsPath: "/metrics",
		Auth:        authtools.DefaultOptions(),
	}
}

// bindServeFlags declares the flags whose names double as koanf keys.
func bindServeFlags(fs *pflag.FlagSet) {
	def := defaultServerConfig()
	fs.String("listen", def.Listen, "HTTP listen address")
	fs.String("log_level", def.LogLevel, "log level: debug, info, warn or error")
	fs.String("redis_prefix", def.RedisPrefix, "Redis key prefix for refresh tokens")
	fs.String("metrics_path", def.MetricsPath, "path serving Prometheus metrics when metrics are enabled")
	fs.Bool("auto_migrate", def.AutoMigrate, "apply database migrations before serving")
}

// loadConfig layers defaults, the YAML file at path, changed flags and
// environment secrets, in that order.
func loadConfig(path string, fs *pflag.FlagSet) (serverConfig, secrets, error) {
	cfg := defaultServerConfig()
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return cfg, secrets{}, oops.Code("CONFIG_INVALID").With("path", path).Wrap(err)
		}
	}
	if fs != nil {
		if err := k.Load(posflag.Provider(fs, ".", k), nil); err != nil {
			return cfg, secrets{}, oops.Code("CONFIG_INVALID").With("operation", "load flags").Wrap(err)
		}
	}
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, secrets{}, oops.Code("CONFIG_INVALID").With("operation", "decode").Wrap(err)
	}

	var sec secrets
	if err := env.Parse(&sec); err != nil {
		return cfg, secrets{}, oops.Code("CONFIG_INVALID").With("operation", "parse environment").Wrap(err)
	}
	if sec.AccessTokenSecret != "" {
		cfg.Auth.AccessTokenSecret = sec.AccessTokenSecret
	}
	if sec.RefreshTokenSecret != "" {
		cfg.Auth.RefreshTokenSecret = sec.RefreshTokenSecret
	}

	return cfg, sec, nil
}

func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, oops.Code("CONFIG_INVALID").With("field", "log_level").Wrap(err)
	}
	return slog.New(slog.NewJSONHandler(logOutput, &slog.HandlerOptions{Level: lvl})), nil
}
