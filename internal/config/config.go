// Package config loads server configuration from a YAML file and the environment.
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

type Config struct {
	Env        string     `yaml:"env" env:"ENV" env-default:"local"`
	LogLevel   string     `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	HTTPServer HTTPServer `yaml:"http_server"`
	Storage    Storage    `yaml:"storage"`
	Redis      Redis      `yaml:"redis"`
	Notify     Notify     `yaml:"notify"`
	Venue      Venue      `yaml:"venue"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	Timeout     time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

type Storage struct {
	// Driver is "sqlite" or "postgres".
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"sqlite"`
	Path   string `yaml:"path" env:"DB_PATH" env-default:"./data/kanji.db"`
	DSN    string `yaml:"dsn" env:"DATABASE_URL"`
}

// Redis is optional. When Addr is set, event locks and queued notification
// delivery go through Redis.
type Redis struct {
	Addr     string        `yaml:"addr" env:"REDIS_ADDR"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	LockTTL  time.Duration `yaml:"lock_ttl" env:"REDIS_LOCK_TTL" env-default:"10s"`
}

type Notify struct {
	SlackWebhookURL string        `yaml:"slack_webhook_url" env:"SLACK_WEBHOOK_URL"`
	AppURL          string        `yaml:"app_url" env:"APP_URL"`
	Timeout         time.Duration `yaml:"timeout" env:"NOTIFY_TIMEOUT" env-default:"5s"`
	// Queue hands delivery to an asynq worker. Requires Redis.
	Queue bool `yaml:"queue" env:"NOTIFY_QUEUE" env-default:"false"`
	// Worker runs the asynq delivery worker inside the server process.
	Worker bool `yaml:"worker" env:"NOTIFY_WORKER" env-default:"true"`
}

type Venue struct {
	// Provider is "hotpepper", "gemini" or "static".
	Provider        string        `yaml:"provider" env:"VENUE_PROVIDER" env-default:"static"`
	HotpepperAPIKey string        `yaml:"hotpepper_api_key" env:"HOTPEPPER_API_KEY"`
	GeminiAPIKey    string        `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	GeminiModel     string        `yaml:"gemini_model" env:"GEMINI_MODEL" env-default:"gemini-1.5-flash"`
	Timeout         time.Duration `yaml:"timeout" env:"VENUE_TIMEOUT" env-default:"10s"`
	MaxResults      int           `yaml:"max_results" env:"VENUE_MAX_RESULTS" env-default:"5"`
}

// Load reads the file named by CONFIG_PATH if set, else the environment only.
func Load() (*Config, error) {
	var cfg Config

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read config from env: %w", err)
		}
	} else {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("config file %s: %w", configPath, err)
		}
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", configPath, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad is Load that exits the process on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}
	return cfg
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case "sqlite":
	case "postgres":
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage driver postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	switch c.Venue.Provider {
	case "static":
	case "hotpepper":
		if c.Venue.HotpepperAPIKey == "" {
			return fmt.Errorf("venue provider hotpepper requires HOTPEPPER_API_KEY")
		}
	case "gemini":
		if c.Venue.GeminiAPIKey == "" {
			return fmt.Errorf("venue provider gemini requires GEMINI_API_KEY")
		}
	default:
		return fmt.Errorf("unknown venue provider %q", c.Venue.Provider)
	}

	if c.Notify.Queue && c.Redis.Addr == "" {
		return fmt.Errorf("queued notifications require REDIS_ADDR")
	}
	return nil
}
