package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"golang.org/x/crypto/bcrypt"
)

// Config holds the application configuration. It is built once at startup
// and handed to every component that needs it.
type Config struct {
	ServerPort int    `koanf:"port"`
	AppEnv     string `koanf:"app_env"`

	Database DatabaseConfig `koanf:"database"`
	AI       AIConfig       `koanf:"ai"`
	Auth     AuthConfig     `koanf:"auth"`
	CORS     CORSConfig     `koanf:"cors"`
	Upload   UploadConfig   `koanf:"upload"`
	Cache    CacheConfig    `koanf:"cache"`
	Limits   LimitsConfig   `koanf:"limits"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// DatabaseConfig selects the relational store. A postgres:// URL selects
// Postgres, anything else is treated as a SQLite path.
type DatabaseConfig struct {
	URL string `koanf:"url"`
}

// AIConfig configures the upstream language model.
type AIConfig struct {
	APIKey  string `koanf:"api_key"`
	Model   string `koanf:"model"`
	BaseURL string `koanf:"base_url"`
}

// AuthConfig holds credential settings.
type AuthConfig struct {
	JWTSecret     string        `koanf:"jwt_secret"`
	TokenTTL      time.Duration `koanf:"token_ttl"`
	BcryptCost    int           `koanf:"bcrypt_cost"`
	AdminPassword string        `koanf:"admin_password"`
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
	AllowAll       bool     `koanf:"allow_all"`
	FrontendURL    string   `koanf:"frontend_url"`
}

// UploadConfig holds the hosted image service credentials.
type UploadConfig struct {
	CloudName string `koanf:"cloud_name"`
	APIKey    string `koanf:"api_key"`
	APISecret string `koanf:"api_secret"`
	Folder    string `koanf:"folder"`
}

// Enabled reports whether every Cloudinary credential is present.
func (u UploadConfig) Enabled() bool {
	return u.CloudName != "" && u.APIKey != "" && u.APISecret != ""
}

// CacheConfig configures the optional Redis share-link cache.
type CacheConfig struct {
	RedisURL string        `koanf:"redis_url"`
	TTL      time.Duration `koanf:"ttl"`
}

// LimitsConfig configures per-IP rate limiting on the generation endpoints.
type LimitsConfig struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
	Disabled bool          `koanf:"disabled"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// ConfigPathEnvVar overrides the optional YAML config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

var defaultConfigPaths = []string{"config.yaml", "config.yml"}

func defaultConfig() *Config {
	return &Config{
		ServerPort: 8000,
		AppEnv:     "development",
		Database: DatabaseConfig{
			URL: "./circuitgen.db",
		},
		AI: AIConfig{
			Model: "gpt-4o",
		},
		Auth: AuthConfig{
			TokenTTL:   7 * 24 * time.Hour,
			BcryptCost: bcrypt.DefaultCost,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:3000"},
			FrontendURL:    "http://localhost:5173",
		},
		Upload: UploadConfig{
			Folder: "robotics_components",
		},
		Cache: CacheConfig{
			TTL: time.Hour,
		},
		Limits: LimitsConfig{
			Requests: 30,
			Window:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// envMappings maps recognized environment variables to koanf paths.
// Variables not listed here are ignored.
var envMappings = map[string]string{
	"port":                  "port",
	"app_env":               "app_env",
	"database_url":          "database.url",
	"openai_api_key":        "ai.api_key",
	"openai_model":          "ai.model",
	"openai_base_url":       "ai.base_url",
	"jwt_secret":            "auth.jwt_secret",
	"token_ttl":             "auth.token_ttl",
	"bcrypt_cost":           "auth.bcrypt_cost",
	"admin_password":        "auth.admin_password",
	"allowed_origins":       "cors.allowed_origins",
	"cors_allow_all":        "cors.allow_all",
	"frontend_url":          "cors.frontend_url",
	"cloudinary_cloud_name": "upload.cloud_name",
	"cloudinary_api_key":    "upload.api_key",
	"cloudinary_api_secret": "upload.api_secret",
	"upload_folder":         "upload.folder",
	"redis_url":             "cache.redis_url",
	"cache_ttl":             "cache.ttl",
	"rate_limit_requests":   "limits.requests",
	"rate_limit_window":     "limits.window",
	"disable_rate_limit":    "limits.disabled",
	"log_level":             "logging.level",
	"log_format":            "logging.format",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// Load builds the configuration from defaults, an optional YAML file and
// environment variables, in increasing order of precedence. A .env file in
// the working directory is read into the environment first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := splitList(k, "cors.allowed_origins"); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.AI.APIKey == "" {
		errs = append(errs, errors.New("OPENAI_API_KEY is required"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("TOKEN_TTL must be positive, got %s", c.Auth.TokenTTL))
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.ServerPort))
	}
	return errors.Join(errs...)
}

// Origins returns the CORS allow-list with the frontend URL appended.
func (c *Config) Origins() []string {
	if c.CORS.AllowAll {
		return []string{"*"}
	}
	origins := make([]string, 0, len(c.CORS.AllowedOrigins)+1)
	seen := make(map[string]bool)
	for _, o := range append(c.CORS.AllowedOrigins, c.CORS.FrontendURL) {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" || seen[o] {
			continue
		}
		seen[o] = true
		origins = append(origins, o)
	}
	return origins
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range defaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// splitList turns a comma-separated env value into a trimmed slice.
func splitList(k *koanf.Koanf, path string) error {
	s, ok := k.Get(path).(string)
	if !ok {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if err := k.Set(path, out); err != nil {
		return fmt.Errorf("failed to set %s: %w", path, err)
	}
	return nil
}
