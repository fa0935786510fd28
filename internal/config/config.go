// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token    string  `yaml:"token"`
	Mode     string  `yaml:"mode"` // polling | webhook (future)
	Username string  `yaml:"username"`
	Workers  int     `yaml:"workers"` // update workers
	AdminIDs []int64 `yaml:"admin_ids"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AdminConfig struct {
	Port       int           `yaml:"port"`
	APIKey     string        `yaml:"api_key"`
	JWTSecret  string        `yaml:"jwt_secret"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type SCMMConfig struct {
	BaseURL      string        `yaml:"base_url"`
	PollInterval time.Duration `yaml:"poll_interval"`
	BatchSize    int           `yaml:"batch_size"` // items fetched per poll
	Timeout      time.Duration `yaml:"timeout"`
}

type SteamConfig struct {
	BaseURL  string        `yaml:"base_url"`
	AppID    int           `yaml:"app_id"`
	Currency int           `yaml:"currency"`
	Timeout  time.Duration `yaml:"timeout"`
}

type RadarConfig struct {
	MaxFinds       int           `yaml:"max_finds"`
	MaxPriceCents  int           `yaml:"max_price_cents"`
	MaxItemAgeDays int           `yaml:"max_item_age_days"`
	Retention      time.Duration `yaml:"retention"` // processed-item retention
}

type SecurityConfig struct {
	EncryptionKey string `yaml:"encryption_key"`
}

type Config struct {
	Bot      BotConfig      `yaml:"bot"`
	Log      LogConfig      `yaml:"log"`
	Admin    AdminConfig    `yaml:"admin"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	SCMM     SCMMConfig     `yaml:"scmm"`
	Steam    SteamConfig    `yaml:"steam"`
	Radar    RadarConfig    `yaml:"radar"`
	Security SecurityConfig `yaml:"security"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.SCMM.BaseURL == "" {
		cfg.SCMM.BaseURL = "https://rust.scmm.app/api"
	}
	if cfg.SCMM.PollInterval <= 0 {
		cfg.SCMM.PollInterval = 30 * time.Second
	}
	if cfg.SCMM.BatchSize <= 0 {
		cfg.SCMM.BatchSize = 50
	}
	if cfg.SCMM.Timeout <= 0 {
		cfg.SCMM.Timeout = 10 * time.Second
	}
	if cfg.Steam.BaseURL == "" {
		cfg.Steam.BaseURL = "https://steamcommunity.com"
	}
	if cfg.Steam.AppID <= 0 {
		cfg.Steam.AppID = 252490 // Rust
	}
	if cfg.Steam.Currency <= 0 {
		cfg.Steam.Currency = 1 // USD
	}
	if cfg.Steam.Timeout <= 0 {
		cfg.Steam.Timeout = 15 * time.Second
	}
	if cfg.Radar.MaxFinds <= 0 {
		cfg.Radar.MaxFinds = 10
	}
	if cfg.Radar.MaxPriceCents <= 0 {
		cfg.Radar.MaxPriceCents = 1000
	}
	if cfg.Radar.MaxItemAgeDays <= 0 {
		cfg.Radar.MaxItemAgeDays = 3
	}
	if cfg.Radar.Retention <= 0 {
		cfg.Radar.Retention = 30 * 24 * time.Hour
	}
	if cfg.Admin.SessionTTL <= 0 {
		cfg.Admin.SessionTTL = 30 * time.Minute
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)

	// Minimal validation
	if cfg.Bot.Token == "" {
		return nil, errors.New("bot.token is required")
	}
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
