// Package config loads csdash settings from a YAML file, an optional .env file
// and CSDASH_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const envPrefix = "CSDASH_"

// Config is the root settings document.
type Config struct {
	Env         string        `yaml:"env"`
	ServiceName string        `yaml:"service_name"`
	LogLevel    string        `yaml:"log_level"`
	Server      ServerConfig  `yaml:"server"`
	Backend     BackendConfig `yaml:"backend"`
	Redis       RedisConfig   `yaml:"redis"`
	Pages       PagesConfig   `yaml:"pages"`
	Charts      ChartsConfig  `yaml:"charts"`
	UI          UIConfig      `yaml:"ui"`
}

// ServerConfig selects the HTTP transport and listen address.
type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	Transport   string   `yaml:"transport"`
	BasePath    string   `yaml:"base_path"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// BackendConfig points at the customer-service backend API.
type BackendConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
	Breaker bool          `yaml:"breaker"`
	Mock    bool          `yaml:"mock"`
}

// RedisConfig enables Redis-backed theme preferences when Addr is set.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// PagesConfig locates the page manifest.
type PagesConfig struct {
	ManifestPath string `yaml:"manifest_path"`
}

// ChartsConfig tunes chart rendering.
type ChartsConfig struct {
	AssetsHost string        `yaml:"assets_host"`
	CacheTTL   time.Duration `yaml:"cache_ttl"`
}

// UIConfig holds presentation timings.
type UIConfig struct {
	NotificationDuration time.Duration `yaml:"notification_duration"`
	ReloadDelay          time.Duration `yaml:"reload_delay"`
}

// Default returns the settings used when nothing else is configured.
func Default() Config {
	return Config{
		Env:         "development",
		ServiceName: "csdash",
		LogLevel:    "info",
		Server: ServerConfig{
			Addr:      ":8080",
			Transport: "fiber",
			BasePath:  "/dashboard",
		},
		Backend: BackendConfig{
			BaseURL: "http://localhost:5000",
			Timeout: 10 * time.Second,
		},
		Redis: RedisConfig{
			Prefix: "csdash:prefs:",
		},
		Charts: ChartsConfig{
			CacheTTL: 5 * time.Minute,
		},
		UI: UIConfig{
			NotificationDuration: 3 * time.Second,
			ReloadDelay:          time.Second,
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (optional), the
// given dotenv files and finally the process environment.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := Default()
	if path != "" {
		f, err := os.Open(path) //nolint:gosec
		if err != nil {
			return Config{}, fmt.Errorf("config: open %s: %w", path, err)
		}
		defer f.Close()
		if err := Decode(f, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}
	if err := loadDotenv(envFiles...); err != nil {
		return Config{}, err
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode overlays YAML from r onto cfg. Unknown keys are rejected.
func Decode(r io.Reader, cfg *Config) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	switch c.Server.Transport {
	case "fiber", "mux":
	default:
		return fmt.Errorf("config: unsupported transport %q", c.Server.Transport)
	}
	if !c.Backend.Mock && strings.TrimSpace(c.Backend.BaseURL) == "" {
		return errors.New("config: backend.base_url is required unless backend.mock is set")
	}
	if c.Backend.Timeout < 0 {
		return errors.New("config: backend.timeout must not be negative")
	}
	return nil
}

// IsDevelopment reports whether console logging should be used.
func (c Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

func loadDotenv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: load %s: %w", file, err)
		}
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Env = getEnv("ENV", cfg.Env)
	cfg.ServiceName = getEnv("SERVICE_NAME", cfg.ServiceName)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	cfg.Server.Addr = getEnv("ADDR", cfg.Server.Addr)
	cfg.Server.Transport = getEnv("TRANSPORT", cfg.Server.Transport)
	cfg.Server.BasePath = getEnv("BASE_PATH", cfg.Server.BasePath)
	if origins := getEnv("CORS_ORIGINS", ""); origins != "" {
		cfg.Server.CORSOrigins = splitList(origins)
	}

	cfg.Backend.BaseURL = getEnv("BACKEND_URL", cfg.Backend.BaseURL)
	cfg.Backend.APIKey = getEnv("BACKEND_API_KEY", cfg.Backend.APIKey)
	cfg.Backend.Timeout = getEnvAsDuration("BACKEND_TIMEOUT", cfg.Backend.Timeout)
	cfg.Backend.Breaker = getEnvAsBool("BACKEND_BREAKER", cfg.Backend.Breaker)
	cfg.Backend.Mock = getEnvAsBool("BACKEND_MOCK", cfg.Backend.Mock)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.Prefix = getEnv("REDIS_PREFIX", cfg.Redis.Prefix)

	cfg.Pages.ManifestPath = getEnv("PAGES_MANIFEST", cfg.Pages.ManifestPath)

	cfg.Charts.AssetsHost = getEnv("ECHARTS_ASSETS_HOST", cfg.Charts.AssetsHost)
	cfg.Charts.CacheTTL = getEnvAsDuration("CHART_CACHE_TTL", cfg.Charts.CacheTTL)

	cfg.UI.NotificationDuration = getEnvAsDuration("NOTIFICATION_DURATION", cfg.UI.NotificationDuration)
	cfg.UI.ReloadDelay = getEnvAsDuration("RELOAD_DELAY", cfg.UI.ReloadDelay)
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(envPrefix + key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
