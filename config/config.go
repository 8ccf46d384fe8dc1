package config

import (
	"log"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"

	"github.com/openshelf/openshelf/pkg/logger"
)

type API struct {
	BaseURL string        `yaml:"baseURL" envconfig:"OPENSHELF_API_BASE_URL" default:"http://127.0.0.1:8000"`
	Timeout time.Duration `yaml:"timeout" envconfig:"OPENSHELF_API_TIMEOUT" default:"30s"`
	// Client-side cap on outbound requests per second.
	RateLimit float64 `yaml:"rateLimit" envconfig:"OPENSHELF_API_RPS" default:"10"`
}

type Store struct {
	// Path of the SQLite session file. Empty means the per-user config dir.
	Path string `yaml:"path" envconfig:"OPENSHELF_STORE_PATH"`
}

type Google struct {
	ClientID     string `yaml:"clientID" envconfig:"OPENSHELF_GOOGLE_CLIENT_ID"`
	CallbackHost string `yaml:"callbackHost" envconfig:"OPENSHELF_GOOGLE_CALLBACK_HOST" default:"localhost"`
	CallbackPort string `yaml:"callbackPort" envconfig:"OPENSHELF_GOOGLE_CALLBACK_PORT" default:"8089"`
}

type Config struct {
	API    API        `yaml:"api"`
	Store  Store      `yaml:"store"`
	Google Google     `yaml:"google"`
	Log    logger.Log `yaml:"log"`
}

type Option func(*Config)

func WithLogLevel(level zapcore.Level) Option {
	return func(c *Config) {
		c.Log.LogLevel = level
	}
}

func WithBaseURL(baseURL string) Option {
	return func(c *Config) {
		c.API.BaseURL = baseURL
	}
}

var (
	once sync.Once
	cfg  Config
)

// NewConfig reads config from environment.
func NewConfig(ops ...Option) Config {
	once.Do(func() {
		var config Config
		err := envconfig.Process("", &config)
		if err != nil {
			log.Fatal("NewConfig ", err)
		}
		for _, op := range ops {
			op(&config)
		}
		cfg = config
	})

	return cfg
}
