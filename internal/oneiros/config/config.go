// Package config loads Oneiros's service configuration with viper,
// translated from oneiros-config's Config{service: ServiceConfig{host,
// port}} shape: load-or-default semantics, environment overrides, and
// an addr() resolver.
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ServiceConfig mirrors oneiros-config::ServiceConfig.
type ServiceConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Config is the root configuration object.
type Config struct {
	Service ServiceConfig `mapstructure:"service"`
	DataDir string        `mapstructure:"data_dir"`
}

// LogFormat is read separately (not mapstructure-bound) since it only
// affects obs.New and has no analogue in the original.
func (c Config) LogFormat() string {
	return os.Getenv("ONEIROS_LOG_FORMAT")
}

func defaults() Config {
	dataDir, err := os.UserHomeDir()
	if err != nil || dataDir == "" {
		dataDir = "."
	}
	return Config{
		Service: ServiceConfig{Host: "127.0.0.1", Port: 2100},
		DataDir: filepath.Join(dataDir, ".oneiros"),
	}
}

// Load reads configuration from path, falling back to defaults if the
// file is missing or empty — matching Config::load's NotFound/empty-
// file fallback. path may be empty, in which case only defaults and
// environment overrides apply.
func Load(path string) (Config, error) {
	cfg := defaults()

	v := viper.New()
	v.SetEnvPrefix("oneiros")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("service.host", cfg.Service.Host)
	v.SetDefault("service.port", cfg.Service.Port)
	v.SetDefault("data_dir", cfg.DataDir)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if os.IsNotExist(err) {
				return cfg, nil
			}
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				return cfg, nil
			}
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	return cfg, nil
}

// ServiceAddr resolves host:port the way ServiceConfig::addr() does.
func (c Config) ServiceAddr() string {
	return net.JoinHostPort(c.Service.Host, fmt.Sprintf("%d", c.Service.Port))
}
