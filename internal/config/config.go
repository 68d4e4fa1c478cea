package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"StockScope/internal/model"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Port         int           `yaml:"port" default:"8080"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"30s"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"json"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	DataSource struct {
		Provider string        `yaml:"provider" default:"yahoo"` // yahoo, rest or mock
		BaseURL  string        `yaml:"base_url"`
		APIKey   string        `yaml:"api_key"`
		Timeout  time.Duration `yaml:"timeout" default:"15s"`
		Timezone string        `yaml:"timezone" default:"America/New_York"`
	} `yaml:"data_source"`
	Dashboard struct {
		Tickers       []string `yaml:"tickers" default:"[\"GOOG\",\"AAPL\",\"MSFT\",\"GME\"]"`
		DefaultTicker string   `yaml:"default_ticker" default:"AAPL"`
		DefaultPeriod string   `yaml:"default_period" default:"1d"`
		DefaultChart  string   `yaml:"default_chart" default:"line"`
		Indicators    []string `yaml:"indicators" default:"[\"SMA 20\",\"EMA 20\"]"`
	} `yaml:"dashboard"`
	Cache struct {
		Backend       string        `yaml:"backend" default:"memory"` // memory or redis
		TTL           time.Duration `yaml:"ttl" default:"1m"`
		RedisAddr     string        `yaml:"redis_addr" default:"localhost:6379"`
		RedisPassword string        `yaml:"redis_password"`
		RedisDB       int           `yaml:"redis_db"`
	} `yaml:"cache"`
	RateLimit struct {
		Disabled bool    `yaml:"disabled"`
		RPS      float64 `yaml:"rps" default:"5"`
		Burst    int     `yaml:"burst" default:"15"`
	} `yaml:"rate_limit"`
	Schedule struct {
		RefreshCron string   `yaml:"refresh_cron" default:"0 */15 9-16 * * 1-5"`
		DigestCron  string   `yaml:"digest_cron" default:"0 5 16 * * 1-5"`
		Watchlist   []string `yaml:"watchlist"`
		RunOnStart  bool     `yaml:"run_on_start"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path" default:"data/stockscope.db"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads an optional .env file and the YAML config at path, then applies
// environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // missing .env is fine

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)

	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if len(cfg.Schedule.Watchlist) == 0 {
		cfg.Schedule.Watchlist = append([]string(nil), cfg.Dashboard.Tickers...)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString("TELEGRAM_BOT_TOKEN", &cfg.Telegram.BotToken)
	setString("TELEGRAM_CHAT_ID", &cfg.Telegram.ChatID)
	setString("DATA_PROVIDER", &cfg.DataSource.Provider)
	setString("DATA_BASE_URL", &cfg.DataSource.BaseURL)
	setString("DATA_API_KEY", &cfg.DataSource.APIKey)
	setString("HTTPS_PROXY", &cfg.Proxy)
	setString("LOG_LEVEL", &cfg.Log.Level)
	setString("CACHE_BACKEND", &cfg.Cache.Backend)
	setString("REDIS_ADDR", &cfg.Cache.RedisAddr)
	setString("REDIS_PASSWORD", &cfg.Cache.RedisPassword)
	setString("CRON_REFRESH", &cfg.Schedule.RefreshCron)
	setString("CRON_DIGEST", &cfg.Schedule.DigestCron)
	setString("SQLITE_PATH", &cfg.Database.SQLitePath)

	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if os.Getenv("RUN_ON_START") == "true" {
		cfg.Schedule.RunOnStart = true
	}
	if v := os.Getenv("TICKERS"); v != "" {
		cfg.Dashboard.Tickers = splitList(v)
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		cfg.Schedule.Watchlist = splitList(v)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.ToUpper(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Location loads the configured normalization timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.DataSource.Timezone)
}

// TelegramEnabled reports whether notifications and bot commands are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

var cronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Validate checks that all required fields are set and consistent.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case "yahoo", "mock":
	case "rest":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the rest provider")
		}
	default:
		return fmt.Errorf("data_source.provider must be yahoo, rest or mock, got %q", c.DataSource.Provider)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("data_source.timezone: %w", err)
	}
	if len(c.Dashboard.Tickers) == 0 {
		return fmt.Errorf("dashboard.tickers must not be empty")
	}
	if !model.Period(c.Dashboard.DefaultPeriod).Valid() {
		return fmt.Errorf("dashboard.default_period %q is not supported", c.Dashboard.DefaultPeriod)
	}
	switch model.ChartKind(c.Dashboard.DefaultChart) {
	case model.ChartLine, model.ChartCandlestick:
	default:
		return fmt.Errorf("dashboard.default_chart must be line or candlestick")
	}
	if _, err := model.ParseWindowSpecs(c.Dashboard.Indicators); err != nil {
		return fmt.Errorf("dashboard.indicators: %w", err)
	}
	switch c.Cache.Backend {
	case "memory", "none":
	case "redis":
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("cache.backend must be memory, redis or none")
	}
	if !c.RateLimit.Disabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate_limit.rps and rate_limit.burst must be positive")
	}
	for name, spec := range map[string]string{
		"schedule.refresh_cron": c.Schedule.RefreshCron,
		"schedule.digest_cron":  c.Schedule.DigestCron,
	} {
		if spec == "" {
			continue
		}
		if _, err := cronParser.Parse(spec); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}
