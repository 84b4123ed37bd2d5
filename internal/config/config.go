package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel  string    `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort  string    `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	Redis     Redis     `yaml:"redis"`
	Rooms     Rooms     `yaml:"rooms"`
	WebSocket WebSocket `yaml:"websocket"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	DB   int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type Rooms struct {
	CodeLength      int `yaml:"code-length" env:"ROOM_CODE_LENGTH" env-default:"6"`
	MaxCodeAttempts int `yaml:"max-code-attempts" env:"ROOM_MAX_CODE_ATTEMPTS" env-default:"16"`
}

type WebSocket struct {
	SendBuffer     int           `yaml:"send-buffer" env:"WS_SEND_BUFFER" env-default:"32"`
	WriteTimeout   time.Duration `yaml:"write-timeout" env:"WS_WRITE_TIMEOUT" env-default:"10s"`
	AllowedOrigins []string      `yaml:"allowed-origins" env:"WS_ALLOWED_ORIGINS" env-default:"*"`
}

// MustLoad - load all configurations in config.yml file, or only from the environment
// when the file does not exist.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	_, err := os.Stat(path)
	switch {
	case err == nil:
		if err = cleanenv.ReadConfig(path, config); err != nil {
			return nil, fmt.Errorf("unable to load config file: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
		if err = cleanenv.ReadEnv(config); err != nil {
			return nil, fmt.Errorf("unable to load config from environment: %w", err)
		}
	default:
		return nil, fmt.Errorf("unable to stat config file: %w", err)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
