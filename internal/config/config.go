package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/ykvlv/diary-bot/internal/domain"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken     string        `envconfig:"BOT_TOKEN" required:"true"`
	DBPath       string        `envconfig:"DB_PATH" default:"./data/diary.db"`
	DefaultTZ    string        `envconfig:"DEFAULT_TZ" default:"Asia/Irkutsk"`
	SummaryTime  string        `envconfig:"SUMMARY_TIME" default:"23:59"` // local HH:MM of the evening summary
	TickInterval time.Duration `envconfig:"TICK_INTERVAL" default:"60s"`
	LogLevel     string        `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error
	HTTPAddr     string        `envconfig:"HTTP_ADDR" default:":8080"`
}

// Load reads environment variables into Config and validates the parts that
// would otherwise fail silently at runtime.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	if _, err := domain.ValidateTZ(cfg.DefaultTZ); err != nil {
		return cfg, err
	}
	t, err := domain.ParseClock(cfg.SummaryTime)
	if err != nil {
		return cfg, err
	}
	cfg.SummaryTime = t
	return cfg, nil
}
