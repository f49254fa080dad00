package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the process settings. Precedence: environment variables
// (CLAIMS_*), then the optional config file, then defaults.
type Config struct {
	ListenAddr          string `mapstructure:"listen_addr"`
	MetricsAddr         string `mapstructure:"metrics_addr"`
	SLAWindowDays       int    `mapstructure:"sla_window_days"`
	DefaultAssignee     string `mapstructure:"default_assignee"`
	SigningSecret       string `mapstructure:"signing_secret"`
	LogLevel            string `mapstructure:"log_level"`
	NotificationWorkers int    `mapstructure:"notification_workers"`
	SeedDemoData        bool   `mapstructure:"seed_demo_data"`
}

// Load reads the configuration, optionally from a YAML file.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("metrics_addr", ":9090")
	v.SetDefault("sla_window_days", 20)
	v.SetDefault("default_assignee", "Claims Officer 1")
	v.SetDefault("signing_secret", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("notification_workers", 3)
	v.SetDefault("seed_demo_data", false)

	v.SetEnvPrefix("CLAIMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.SLAWindowDays <= 0 {
		return nil, fmt.Errorf("sla_window_days must be positive, got %d", cfg.SLAWindowDays)
	}
	if cfg.NotificationWorkers <= 0 {
		return nil, fmt.Errorf("notification_workers must be positive, got %d", cfg.NotificationWorkers)
	}

	return &cfg, nil
}
