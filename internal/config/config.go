// Package config loads and validates deepwiki.yaml plus environment
// overrides. Secrets (database password, JWT secret, encryption key) are
// never stored in the file; they come from the environment, optionally
// seeded from a .env file via godotenv.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/charles1614/deepwiki-sub003/internal/retry"
	"github.com/charles1614/deepwiki-sub003/pkg/deepwiki"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// ConfigFileName is the project configuration file deepwiki looks for.
const ConfigFileName = "deepwiki.yaml"

// Environment variables consulted for secrets and overrides.
const (
	EnvDatabasePassword = "DEEPWIKI_DB_PASSWORD"
	EnvJWTSecret        = "DEEPWIKI_JWT_SECRET"
	EnvEncryptionKey    = "DEEPWIKI_ENCRYPTION_KEY"
	EnvListenAddr       = "DEEPWIKI_LISTEN_ADDR"
)

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns the listen address, honoring the DEEPWIKI_LISTEN_ADDR
// override.
func (s ServerConfig) Addr() string {
	if addr := os.Getenv(EnvListenAddr); addr != "" {
		return addr
	}
	port := s.Port
	if port == 0 {
		port = deepwiki.DefaultHTTPPort
	}
	return fmt.Sprintf("%s:%d", s.Host, port)
}

type DatabaseConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Username       string `yaml:"username"`
	Database       string `yaml:"database"`
	SSLMode        string `yaml:"sslmode"`
	AuthMethod     string `yaml:"auth_method,omitempty"`
	AWSRegion      string `yaml:"aws_region,omitempty"`
	GoogleInstance string `yaml:"google_instance,omitempty"`
	AzureTenantID  string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID  string `yaml:"azure_client_id,omitempty"`
}

type RetryConfig struct {
	MaxRetries     *int  `yaml:"max_retries,omitempty"`
	BackoffEnabled *bool `yaml:"backoff_enabled,omitempty"`
	BackoffMinMS   *int  `yaml:"backoff_min_ms,omitempty"`
	BackoffMaxMS   *int  `yaml:"backoff_max_ms,omitempty"`
}

type StorageConfig struct {
	// Backend selects the object store implementation: "gcs" or "memory".
	Backend string `yaml:"backend"`
	Bucket  string `yaml:"bucket,omitempty"`
	Prefix  string `yaml:"prefix,omitempty"`
}

type AuthConfig struct {
	TokenTTL            string `yaml:"token_ttl,omitempty"`
	RegistrationEnabled bool   `yaml:"registration_enabled"`
}

// Config is the full deepwiki.yaml document.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Retry    RetryConfig    `yaml:"retry"`
	Storage  StorageConfig  `yaml:"storage"`
	Auth     AuthConfig     `yaml:"auth"`
	Verbose  bool           `yaml:"verbose,omitempty"`
}

// Load reads deepwiki.yaml from dir, after seeding the environment from a
// .env file if one exists next to it.
func Load(dir string) (*Config, error) {
	_ = godotenv.Load(filepath.Join(dir, ".env"))

	configPath := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ConfigFileName, err)
	}
	return &cfg, nil
}

// Save writes cfg to deepwiki.yaml in dir.
func Save(dir string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, ConfigFileName), data, 0o644)
}

// RetryOptions converts the retry section into validated retry.Options,
// applying defaults for unset fields. Invalid combinations surface here,
// before any database call is made.
func (c *Config) RetryOptions() (retry.Options, error) {
	opts := retry.DefaultOptions()

	if c.Retry.MaxRetries != nil {
		opts.MaxRetries = *c.Retry.MaxRetries
	}
	if c.Retry.BackoffEnabled != nil {
		opts.BackoffEnabled = *c.Retry.BackoffEnabled
	}
	if c.Retry.BackoffMinMS != nil {
		opts.BackoffMin = time.Duration(*c.Retry.BackoffMinMS) * time.Millisecond
	}
	if c.Retry.BackoffMaxMS != nil {
		opts.BackoffMax = time.Duration(*c.Retry.BackoffMaxMS) * time.Millisecond
	}

	if err := opts.Validate(); err != nil {
		return retry.Options{}, err
	}
	return opts, nil
}

// ConnectionConfig resolves the database section, pulling the password from
// the environment for standard authentication.
func (c *Config) ConnectionConfig() (*deepwiki.ConnectionConfig, error) {
	method, err := ParseAuthMethod(c.Database.AuthMethod)
	if err != nil {
		return nil, err
	}

	conn := &deepwiki.ConnectionConfig{
		Host:           c.Database.Host,
		Port:           c.Database.Port,
		Database:       c.Database.Database,
		Username:       c.Database.Username,
		SSLMode:        c.Database.SSLMode,
		AuthMethod:     method,
		AWSRegion:      c.Database.AWSRegion,
		GoogleInstance: c.Database.GoogleInstance,
		AzureTenantID:  c.Database.AzureTenantID,
		AzureClientID:  c.Database.AzureClientID,
		AppName:        "deepwiki",
	}

	if conn.Host == "" {
		conn.Host = "localhost"
	}
	if conn.Port == 0 {
		conn.Port = 5432
	}
	if conn.Database == "" {
		return nil, fmt.Errorf("database name is required: %w", deepwiki.ErrInvalidConfig)
	}

	switch method {
	case deepwiki.AuthMethodStandard:
		conn.Password = os.Getenv(EnvDatabasePassword)
	case deepwiki.AuthMethodAzureEntraID:
		conn.AzureClientSecret = os.Getenv("AZURE_CLIENT_SECRET")
	}

	return conn, nil
}

// TokenTTL parses the auth token lifetime, defaulting when unset.
func (c *Config) TokenTTL() (time.Duration, error) {
	if c.Auth.TokenTTL == "" {
		return deepwiki.DefaultTokenTTL, nil
	}
	ttl, err := time.ParseDuration(c.Auth.TokenTTL)
	if err != nil {
		return 0, fmt.Errorf("invalid auth.token_ttl %q: %w", c.Auth.TokenTTL, deepwiki.ErrInvalidConfig)
	}
	if ttl <= 0 {
		return 0, fmt.Errorf("auth.token_ttl must be positive: %w", deepwiki.ErrInvalidConfig)
	}
	return ttl, nil
}

// JWTSecret reads the signing secret from the environment.
func (c *Config) JWTSecret() (string, error) {
	secret := os.Getenv(EnvJWTSecret)
	if secret == "" {
		return "", fmt.Errorf("%s is required: %w", EnvJWTSecret, deepwiki.ErrInvalidConfig)
	}
	return secret, nil
}

// EncryptionKeyHex reads the hex-encoded settings encryption key from the
// environment. Empty is allowed; encrypted settings are then unavailable.
func (c *Config) EncryptionKeyHex() string {
	return os.Getenv(EnvEncryptionKey)
}

// ParseAuthMethod maps the yaml auth_method string to an AuthMethod.
// Empty selects standard username/password authentication.
func ParseAuthMethod(s string) (deepwiki.AuthMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard", "password":
		return deepwiki.AuthMethodStandard, nil
	case "aws-iam", "aws_iam":
		return deepwiki.AuthMethodAWSIAM, nil
	case "google-iam", "google_iam", "cloudsql":
		return deepwiki.AuthMethodGoogleIAM, nil
	case "azure", "azure-entra-id", "entra":
		return deepwiki.AuthMethodAzureEntraID, nil
	default:
		return 0, fmt.Errorf("unknown auth_method %q: %w", s, deepwiki.ErrUnsupportedAuthMethod)
	}
}

// FormatAuthMethod is the inverse of ParseAuthMethod for Save.
func FormatAuthMethod(m deepwiki.AuthMethod) string {
	switch m {
	case deepwiki.AuthMethodAWSIAM:
		return "aws-iam"
	case deepwiki.AuthMethodGoogleIAM:
		return "google-iam"
	case deepwiki.AuthMethodAzureEntraID:
		return "azure"
	default:
		return "standard"
	}
}

// IntPtr and BoolPtr build pointer fields for programmatic config
// construction (wizard, tests).
func IntPtr(v int) *int    { return &v }
func BoolPtr(v bool) *bool { return &v }
