package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

type Config struct {
	DatabaseBusyTimeout       time.Duration `koanf:"database_busy_timeout"`
	DatabaseConnectRetryCount int           `koanf:"database_connect_retry_count"`
	DatabaseConnectRetryDelay time.Duration `koanf:"database_connect_retry_delay"`
	DatabaseDebug             bool          `koanf:"database_debug"`
	DatabaseFilePath          string        `koanf:"database_file_path"`
	DatabaseMaxRetries        int           `koanf:"database_max_retries"`
	Environment               string        `koanf:"-"`
	FrontendURL               string        `koanf:"frontend_url"`
	Hostname                  string        `koanf:"-"`
	ItemsPerPage              int           `koanf:"items_per_page"`
	JWTSecret                 string        `koanf:"jwt_secret"`
	ServerHost                string        `koanf:"server_host"`
	ServerPort                int           `koanf:"server_port"`
}

const (
	environmentENV = "ENVIRONMENT"
	configFileENV  = "CONFIG_FILE"
	envPrefix      = "RODOKU_"
)

func New() (*Config, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	cfg := &Config{
		DatabaseBusyTimeout:       5 * time.Second,
		DatabaseConnectRetryCount: 5,
		DatabaseConnectRetryDelay: 2 * time.Second,
		DatabaseMaxRetries:        5,
		Hostname:                  hostname,
		ItemsPerPage:              10,
		JWTSecret:                 "insecure-dev-secret",
		ServerPort:                4460,
	}

	environment := os.Getenv(environmentENV)
	if environment == "" {
		environment = "development"
	}
	cfg.Environment = environment

	switch environment {
	case "development":
		loadDevelopmentConfig(cfg)
	case "test":
		loadTestConfig(cfg)
	case "production":
		loadProductionConfig(cfg)
	}

	if err := loadOverrides(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadOverrides layers an optional YAML config file and RODOKU_-prefixed
// environment variables on top of the environment defaults.
func loadOverrides(cfg *Config) error {
	k := koanf.New(".")

	configFile := os.Getenv(configFileENV)
	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return errors.Wrapf(err, "failed to load config file: %s", configFile)
		}
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)
	if err != nil {
		return errors.WithStack(err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return errors.WithStack(err)
	}

	return nil
}
