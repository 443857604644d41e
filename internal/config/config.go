package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	defaultEnv      = "dev"
	defaultPort     = "8080"
	defaultTokenTTL = time.Hour
	defaultSecret   = "default-secret-very-weak"
)

type Config struct {
	Env      string        `yaml:"env"`
	Port     string        `yaml:"port"`
	LogLevel string        `yaml:"log_level"`
	DB       DBConfig      `yaml:"db"`
	Redis    RedisConfig   `yaml:"redis"`
	Session  SessionConfig `yaml:"session"`
	API      APIConfig     `yaml:"api"`
}

type DBConfig struct {
	User        string        `yaml:"user"`
	Password    string        `yaml:"password"`
	Host        string        `yaml:"host"`
	Port        string        `yaml:"port"`
	Name        string        `yaml:"name"`
	SSLMode     string        `yaml:"ssl_mode"`
	MaxConns    int32         `yaml:"max_conns"`
	MaxIdleTime time.Duration `yaml:"max_idle_time"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type SessionConfig struct {
	Secret   string        `yaml:"secret"`
	MaxAge   time.Duration `yaml:"max_age"`
	Secure   bool          `yaml:"secure"`
	TokenTTL time.Duration `yaml:"token_ttl"`
}

type APIConfig struct {
	RateLimit   float64  `yaml:"rate_limit"`
	RateBurst   int      `yaml:"rate_burst"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// Default returns the settings used when neither a config file nor the
// environment says otherwise.
func Default() Config {
	return Config{
		Env:      defaultEnv,
		Port:     defaultPort,
		LogLevel: "info",
		DB: DBConfig{
			Host:        "localhost",
			Port:        "5432",
			Name:        "kalenderium",
			SSLMode:     "disable",
			MaxConns:    10,
			MaxIdleTime: 5 * time.Minute,
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Session: SessionConfig{
			Secret:   defaultSecret,
			MaxAge:   8 * time.Hour,
			TokenTTL: defaultTokenTTL,
		},
		API: APIConfig{RateLimit: 2, RateBurst: 4},
	}
}

// Load reads .env, then the optional YAML file, then the environment.
// Later sources win.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	cfg.Env = getEnvironment("APP_ENV", defaultEnv)

	path := os.Getenv("CONFIG_FILE")
	explicit := path != ""
	if !explicit {
		path = fmt.Sprintf("api.%s.yaml", cfg.Env)
	}
	if err := cfg.loadFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return cfg, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.Wrapf(err, "failed to parse %s", path)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Port, "PORT")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.DB.User, "DB_USER")
	setString(&c.DB.Password, "DB_PASSWORD")
	setString(&c.DB.Host, "DB_HOST")
	setString(&c.DB.Port, "DB_PORT")
	setString(&c.DB.Name, "DB_NAME")
	setString(&c.DB.SSLMode, "DB_SSL_MODE")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Session.Secret, "SESSION_SECRET")

	if v := os.Getenv("TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrap(err, "invalid TOKEN_TTL")
		}
		c.Session.TokenTTL = ttl
	}
	if v := os.Getenv("CORS_TRUSTED_ORIGINS"); v != "" {
		c.API.CORSOrigins = strings.Fields(v)
	}
	if v := os.Getenv("SESSION_SECURE"); v != "" {
		c.Session.Secure = strings.EqualFold(v, "true") || v == "1"
	}
	return nil
}

func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("port must be set")
	}
	if c.Session.TokenTTL <= 0 {
		return errors.New("token ttl must be positive")
	}
	if c.IsProduction() && (c.Session.Secret == "" || c.Session.Secret == defaultSecret) {
		return errors.New("SESSION_SECRET must be set in production")
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// DSN is the postgres connection URL.
func (c Config) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DB.User, c.DB.Password),
		Host:     net.JoinHostPort(c.DB.Host, c.DB.Port),
		Path:     "/" + c.DB.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.DB.SSLMode) + "&search_path=public",
	}
	return u.String()
}

func (c Config) Addr() string {
	return ":" + c.Port
}

// getEnvironment gets environment if fail return fallback
func getEnvironment(env, fallback string) string {
	e := os.Getenv(env)
	if e == "" {
		return fallback
	}
	return e
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}
