// Package config loads application settings from a YAML file with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the full application configuration. It satisfies the
// auth.Config interface so the auth subsystem can consume it directly.
type Config struct {
	Env        string `yaml:"env" env:"APP_ENV" env-default:"local"`
	HTTPServer `yaml:"http_server"`
	DB         `yaml:"db"`
	Auth       `yaml:"auth"`
}

type HTTPServer struct {
	Address      string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env-default:"10s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env-default:"10s"`
}

type DB struct {
	DSN string `yaml:"dsn" env:"DATABASE_URL" env-default:"file:eventboard.db?cache=shared&mode=rwc"`
}

type Auth struct {
	SigningKey      string `yaml:"signing_key" env:"SECRET_KEY" env-default:""`
	SigningMethod   string `yaml:"signing_method" env-default:"HS256"`
	ContextKey      string `yaml:"context_key" env-default:"access_token"`
	TokenExpiration int    `yaml:"token_expiration" env:"TOKEN_EXPIRATION_HOURS" env-default:"24"`
	Issuer          string `yaml:"issuer" env:"TOKEN_ISSUER" env-default:"eventboard"`
	AuthScheme      string `yaml:"auth_scheme" env-default:"Bearer"`
}

// MustLoad reads configuration from configPath (optional) and the
// environment, panicking on failure. A missing signing key is caught later
// by the token service self check at startup.
func MustLoad(configPath string) *Config {
	config, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	return config
}

// Load reads configuration from configPath when given, or from the
// environment alone otherwise.
func Load(configPath string) (*Config, error) {
	var config Config

	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
		if err := cleanenv.ReadConfig(configPath, &config); err != nil {
			return nil, err
		}
		return &config, nil
	}

	if err := cleanenv.ReadEnv(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// auth.Config implementation

func (c *Config) GetSigningKey() string {
	return c.Auth.SigningKey
}

func (c *Config) GetSigningMethod() string {
	return c.Auth.SigningMethod
}

func (c *Config) GetContextKey() string {
	return c.Auth.ContextKey
}

func (c *Config) GetTokenExpiration() int {
	return c.Auth.TokenExpiration
}

// GetTokenLookup orders token sources: cookie first for page navigation,
// bearer header as the API fallback.
func (c *Config) GetTokenLookup() string {
	return "cookie:" + c.Auth.ContextKey + ",header:Authorization"
}

func (c *Config) GetAuthScheme() string {
	return c.Auth.AuthScheme
}

func (c *Config) GetIssuer() string {
	return c.Auth.Issuer
}

func (c *Config) GetRejectedRouteKey() string {
	return "rejected_route"
}

func (c *Config) GetRejectedRouteDefault() string {
	return "/backend"
}
