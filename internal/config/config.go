package config

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// InsecureSessionSecret is the built-in default; it is only accepted in development.
const InsecureSessionSecret = "insecure-session-secret"

const EnvDevelopment = "development"

type Config struct {
	Env             string        `yaml:"env" env:"STAFFBOARD_ENV" env-default:"production"`
	Addr            string        `yaml:"addr" env:"STAFFBOARD_ADDR" env-default:":8080"`
	SessionSecret   string        `yaml:"session_secret" env:"STAFFBOARD_SESSION_SECRET" env-default:"insecure-session-secret"`
	CSRFKey         string        `yaml:"csrf_key" env:"STAFFBOARD_CSRF_KEY"`
	APITimeout      time.Duration `yaml:"timeout" env:"STAFFBOARD_TIMEOUT" env-default:"15s"`
	DatabasePath    string        `yaml:"database_path" env:"STAFFBOARD_DATABASE_PATH" env-default:"staffboard.db"`
	SessionDuration time.Duration `yaml:"session_duration" env:"STAFFBOARD_SESSION_DURATION" env-default:"336h"`
	SecureCookies   bool          `yaml:"secure_cookies" env:"STAFFBOARD_SECURE_COOKIES" env-default:"false"`
	MigrateOnStart  bool          `yaml:"migrate_on_start" env:"STAFFBOARD_MIGRATE_ON_START" env-default:"true"`
}

// LoadConfig builds the configuration from, in increasing precedence: tag
// defaults, a .env file in the working directory, process environment, and
// the YAML file at path (skipped when path is empty).
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	return cfg, nil
}

// Validate checks the configuration is usable for serving requests.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr is required")
	}
	if c.DatabasePath == "" {
		return errors.New("database_path is required")
	}
	if c.SessionSecret == "" {
		return errors.New("session_secret is required")
	}
	if c.SessionSecret == InsecureSessionSecret && c.Env != EnvDevelopment {
		return fmt.Errorf("session_secret must be set outside %s (env=%q)", EnvDevelopment, c.Env)
	}
	if c.APITimeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.SessionDuration <= 0 {
		return errors.New("session_duration must be positive")
	}

	return nil
}

// CSRFAuthKey returns the 32-byte key for CSRF tokens. Without an explicit
// csrf_key it is derived from the session secret.
func (c *Config) CSRFAuthKey() []byte {
	seed := c.CSRFKey
	if seed == "" {
		seed = "csrf:" + c.SessionSecret
	}
	sum := sha256.Sum256([]byte(seed))
	return sum[:]
}
