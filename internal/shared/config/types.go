package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type AuthConfig struct {
	JWTSecret        string `mapstructure:"jwt_secret"`
	AccessExpMinutes int    `mapstructure:"access_exp_minutes"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type NotificationConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	SMTPHost    string `mapstructure:"smtp_host"`
	SMTPPort    int    `mapstructure:"smtp_port"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	OperatorTo  string `mapstructure:"operator_to"`
}

// CreditPriceConfig is the one-time per-credit price for one jurisdiction
type CreditPriceConfig struct {
	AmountMinor int64  `mapstructure:"amount_minor"`
	Currency    string `mapstructure:"currency"`
}

// PricingConfig holds the per-country one-time credit prices. Plan catalogs
// live in the database; the flat per-credit price is configuration because it
// changes with commercial terms, not with data.
type PricingConfig struct {
	CreditPrices   map[string]CreditPriceConfig `mapstructure:"credit_prices"`
	DefaultCountry string                       `mapstructure:"default_country"`
	CacheTTL       time.Duration                `mapstructure:"cache_ttl"`
}

// SweepConfig controls the renewal sweeper. Lookahead bounds how far ahead of
// end_date an assignment becomes eligible for automatic renewal.
type SweepConfig struct {
	Interval      time.Duration `mapstructure:"interval"`
	LookaheadDays int           `mapstructure:"lookahead_days"`
}

func (s *SweepConfig) Lookahead() time.Duration {
	return time.Duration(s.LookaheadDays) * 24 * time.Hour
}
