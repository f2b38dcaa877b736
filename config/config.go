package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type HTTP struct {
	Addr string `yaml:"addr" envconfig:"HTTP_ADDR"`
}

type Logging struct {
	Env       string `yaml:"env" envconfig:"LOG_ENV"`         // dev|prod
	Service   string `yaml:"service"`                         // pinchat-service
	Version   string `yaml:"version"`                         // v0.1.0
	Backend   string `yaml:"backend" envconfig:"LOG_BACKEND"` // std|zap
	AddSource bool   `yaml:"addSource"`
	Debug     bool   `yaml:"debug" envconfig:"LOG_DEBUG"`
}

type Limits struct {
	// MaxHistory — верхняя граница лога сообщений комнаты; при переполнении
	// вытесняется самое старое сообщение.
	MaxHistory int `yaml:"maxHistory" envconfig:"MAX_HISTORY"`
}

type Config struct {
	HTTP    HTTP    `yaml:"http"`
	Logging Logging `yaml:"logging"`
	Limits  Limits  `yaml:"limits"`
}

// LoadConfig читает yaml по CONFIG_PATH (по умолчанию ./config/config.yaml),
// затем накладывает переменные окружения PINCHAT_*. Отсутствующий файл по
// дефолтному пути — не ошибка: сервис стартует на встроенных дефолтах.
func LoadConfig() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	explicit := path != ""
	if path == "" {
		path = "./config/config.yaml"
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// идём на дефолтах
	default:
		return nil, err
	}

	if err := envconfig.Process("PINCHAT", &cfg); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// установка дефолтов, если значения не указаны
func (c *Config) applyDefaults() {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":3001"
	}
	if c.Logging.Service == "" {
		c.Logging.Service = "pinchat-service"
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "dev"
	}
	if c.Logging.Version == "" {
		c.Logging.Version = "v0.1.0"
	}
	if c.Logging.Backend == "" {
		c.Logging.Backend = "std"
	}
	if c.Limits.MaxHistory == 0 {
		c.Limits.MaxHistory = 500
	}
}

func (c *Config) validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr is required")
	}
	if c.Limits.MaxHistory < 0 {
		return errors.New("limits.maxHistory must be positive")
	}
	return nil
}
