package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel    string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort    string        `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort  string        `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8080"`
	GracePeriod time.Duration `yaml:"grace-period" env:"GRACE_PERIOD" env-default:"5m"`
	Redis       Redis         `yaml:"redis" env-prefix:"REDIS_"`
	NATS        NATS          `yaml:"nats" env-prefix:"NATS_"`
}

// Redis configures the optional room mirror.
type Redis struct {
	Enabled bool          `yaml:"enabled" env:"ENABLED" env-default:"false"`
	Host    string        `yaml:"host" env:"HOST" env-default:"localhost"`
	Port    string        `yaml:"port" env:"PORT" env-default:"6379"`
	TTL     time.Duration `yaml:"ttl" env:"TTL" env-default:"1h"`
}

// NATS configures lifecycle events. An empty URL disables them.
type NATS struct {
	URL           string `yaml:"url" env:"URL"`
	SubjectPrefix string `yaml:"subject-prefix" env:"SUBJECT_PREFIX" env-default:"connectfour"`
}

// Load reads path and applies environment overrides. A missing file leaves the environment and
// defaults only.
func Load(path string) (*Config, error) {
	config := &Config{}

	err := cleanenv.ReadConfig(path, config)
	if errors.Is(err, fs.ErrNotExist) {
		err = cleanenv.ReadEnv(config)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to load config: %w", err)
	}

	if config.GracePeriod <= 0 {
		return nil, fmt.Errorf("grace-period must be positive, got %s", config.GracePeriod)
	}

	return config, nil
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
