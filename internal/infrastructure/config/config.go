package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	sharedConfig "mentora/internal/shared/config"
)

// Config is the full application configuration
type Config struct {
	Server       sharedConfig.ServerConfig       `mapstructure:"server"`
	Database     sharedConfig.DatabaseConfig     `mapstructure:"database"`
	Logger       sharedConfig.LoggerConfig       `mapstructure:"logger"`
	Auth         sharedConfig.AuthConfig         `mapstructure:"auth"`
	Redis        sharedConfig.RedisConfig        `mapstructure:"redis"`
	Notification sharedConfig.NotificationConfig `mapstructure:"notification"`
	Pricing      sharedConfig.PricingConfig      `mapstructure:"pricing"`
	Sweep        sharedConfig.SweepConfig        `mapstructure:"sweep"`
}

// Load reads configuration from file and environment. Environment variables
// use the MENTORA_ prefix with underscores, e.g. MENTORA_DATABASE_HOST.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	v.SetEnvPrefix("MENTORA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults plus environment carry a
		// full configuration.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "mentora")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "text")

	v.SetDefault("auth.access_exp_minutes", 60)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	v.SetDefault("notification.enabled", false)
	v.SetDefault("notification.smtp_port", 587)

	v.SetDefault("pricing.default_country", "US")
	v.SetDefault("pricing.cache_ttl", 10*time.Minute)

	v.SetDefault("sweep.interval", time.Hour)
	v.SetDefault("sweep.lookahead_days", 3)
}

func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	if cfg.Sweep.LookaheadDays < 0 {
		return fmt.Errorf("sweep lookahead days cannot be negative")
	}
	return nil
}
