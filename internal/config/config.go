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
	LogLevel  string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	Port      string `yaml:"port" env:"PORT" env-default:"8080"`
	PublicURL string `yaml:"public-url" env:"PUBLIC_URL" env-default:"http://localhost:8080"`
	Relay     Relay  `yaml:"relay"`
	Redis     Redis  `yaml:"redis"`
}

type Relay struct {
	SendBuffer     int      `yaml:"send-buffer" env:"RELAY_SEND_BUFFER" env-default:"64"`
	ReadLimit      int64    `yaml:"read-limit" env:"RELAY_READ_LIMIT" env-default:"4096"`
	StrictSymbols  bool     `yaml:"strict-symbols" env:"RELAY_STRICT_SYMBOLS" env-default:"false"`
	AllowedOrigins []string `yaml:"allowed-origins" env:"RELAY_ALLOWED_ORIGINS" env-separator:","`
	MirrorBuffer   int      `yaml:"mirror-buffer" env:"RELAY_MIRROR_BUFFER" env-default:"256"`
}

type Redis struct {
	Enabled bool          `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	Host    string        `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port    string        `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	TTL     time.Duration `yaml:"ttl" env:"REDIS_TTL" env-default:"1h"`
}

// Load reads the config file at path and applies env overrides.
// A missing file is not an error: the environment and defaults are used instead.
func Load(path string) (*Config, error) {
	config := &Config{}

	if path != "" {
		_, err := os.Stat(path)
		if err == nil {
			if err = cleanenv.ReadConfig(path, config); err != nil {
				return nil, fmt.Errorf("unable to load config file: %w", err)
			}

			return config, nil
		}

		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("unable to stat config file: %w", err)
		}
	}

	if err := cleanenv.ReadEnv(config); err != nil {
		return nil, fmt.Errorf("unable to read config from env: %w", err)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
