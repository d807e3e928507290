// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	toml "github.com/pelletier/go-toml/v2"
)

// Storage backends for the cart blob.
const (
	BackendMemory   = "memory"
	BackendBolt     = "bolt"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

const (
	defaultConfigPath  = "~/.config/gamershop/config.toml"
	defaultListenAddr  = "127.0.0.1:8080"
	defaultCatalogAddr = "127.0.0.1:8081"
	defaultBoltPath    = "~/.local/share/gamershop/cart.db"
	defaultCartKey     = "gamer-shop-cart"
	defaultPageSize    = 12
	defaultLogLevel    = "info"
	defaultLogFormat   = "console"
	defaultRateLimit   = 20
	defaultRateBurst   = 40
	envPrefix          = "GAMERSHOP_"
)

// Config is the storefront process configuration.
type Config struct {
	ListenAddr string          `toml:"listen_addr"`
	Catalog    CatalogConfig   `toml:"catalog"`
	Storage    StorageConfig   `toml:"storage"`
	Flags      FlagsConfig     `toml:"flags"`
	Log        LogConfig       `toml:"log"`
	Telemetry  TelemetryConfig `toml:"telemetry"`
	RateLimit  RateLimitConfig `toml:"rate_limit"`
}

type CatalogConfig struct {
	// Addr is where the catalog service listens.
	Addr string `toml:"addr"`
	// URL of a remote catalog service. Empty serves the catalog in process.
	URL string `toml:"url"`
	// DSN of a Postgres catalog. Empty uses the built-in game list.
	DSN      string `toml:"dsn"`
	PageSize int    `toml:"page_size"`
}

type StorageConfig struct {
	Backend       string `toml:"backend"`
	Path          string `toml:"path"`
	DSN           string `toml:"dsn"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	Key           string `toml:"key"`
	UserID        string `toml:"user_id"`
}

type FlagsConfig struct {
	Path string `toml:"path"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type TelemetryConfig struct {
	OTLPEndpoint string `toml:"otlp_endpoint"`
	OTLPInsecure bool   `toml:"otlp_insecure"`
}

type RateLimitConfig struct {
	// RPS is the sustained rate of mutating requests. Zero disables limiting.
	RPS   float64 `toml:"rps"`
	Burst int     `toml:"burst"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		ListenAddr: defaultListenAddr,
		Catalog:    CatalogConfig{Addr: defaultCatalogAddr, PageSize: defaultPageSize},
		Storage:    StorageConfig{Backend: BackendBolt, Path: mustExpand(defaultBoltPath), Key: defaultCartKey},
		Log:        LogConfig{Level: defaultLogLevel, Format: defaultLogFormat},
		RateLimit:  RateLimitConfig{RPS: defaultRateLimit, Burst: defaultRateBurst},
	}
}

// Load reads the TOML file at path (or the default location), then applies
// GAMERSHOP_* environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	bytes, err := readFile(resolved)
	if err != nil {
		return Config{}, err
	}
	if bytes != nil {
		if err := toml.Unmarshal(bytes, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports configuration values that cannot be used.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendBolt:
	case BackendPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage backend %q requires storage.dsn", c.Storage.Backend)
		}
	case BackendRedis:
		if c.Storage.RedisAddr == "" {
			return fmt.Errorf("storage backend %q requires storage.redis_addr", c.Storage.Backend)
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	if c.Storage.UserID != "" {
		if _, err := uuid.Parse(c.Storage.UserID); err != nil {
			return fmt.Errorf("storage.user_id: %w", err)
		}
	}
	if c.RateLimit.RPS < 0 {
		return errors.New("rate_limit.rps must not be negative")
	}
	return nil
}

// normalize trims values and puts defaults back where fields were left empty.
func (c *Config) normalize() {
	c.ListenAddr = orDefault(c.ListenAddr, defaultListenAddr)
	c.Catalog.Addr = orDefault(c.Catalog.Addr, defaultCatalogAddr)
	c.Catalog.URL = strings.TrimRight(strings.TrimSpace(c.Catalog.URL), "/")
	c.Catalog.DSN = strings.TrimSpace(c.Catalog.DSN)
	if c.Catalog.PageSize <= 0 {
		c.Catalog.PageSize = defaultPageSize
	}

	c.Storage.Backend = strings.ToLower(orDefault(c.Storage.Backend, BackendBolt))
	c.Storage.Path = mustExpand(orDefault(c.Storage.Path, defaultBoltPath))
	c.Storage.DSN = strings.TrimSpace(c.Storage.DSN)
	c.Storage.RedisAddr = strings.TrimSpace(c.Storage.RedisAddr)
	c.Storage.Key = orDefault(c.Storage.Key, defaultCartKey)
	c.Storage.UserID = strings.TrimSpace(c.Storage.UserID)

	if p := strings.TrimSpace(c.Flags.Path); p != "" {
		c.Flags.Path = mustExpand(p)
	}

	c.Log.Level = strings.ToLower(orDefault(c.Log.Level, defaultLogLevel))
	c.Log.Format = strings.ToLower(orDefault(c.Log.Format, defaultLogFormat))
	c.Telemetry.OTLPEndpoint = strings.TrimSpace(c.Telemetry.OTLPEndpoint)
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = defaultRateBurst
	}
}

func applyEnv(c *Config, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = v
		}
	}
	str("LISTEN_ADDR", &c.ListenAddr)
	str("CATALOG_ADDR", &c.Catalog.Addr)
	str("CATALOG_URL", &c.Catalog.URL)
	str("CATALOG_DSN", &c.Catalog.DSN)
	str("STORAGE_BACKEND", &c.Storage.Backend)
	str("STORAGE_PATH", &c.Storage.Path)
	str("STORAGE_DSN", &c.Storage.DSN)
	str("REDIS_ADDR", &c.Storage.RedisAddr)
	str("REDIS_PASSWORD", &c.Storage.RedisPassword)
	str("CART_KEY", &c.Storage.Key)
	str("USER_ID", &c.Storage.UserID)
	str("FLAGS_PATH", &c.Flags.Path)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("OTLP_ENDPOINT", &c.Telemetry.OTLPEndpoint)

	if c.Storage.DSN == "" {
		if v, ok := lookup("DATABASE_URL"); ok {
			c.Storage.DSN = v
		}
	}

	if v, ok := lookup(envPrefix + "PAGE_SIZE"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sPAGE_SIZE: %w", envPrefix, err)
		}
		c.Catalog.PageSize = n
	}
	if v, ok := lookup(envPrefix + "REDIS_DB"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sREDIS_DB: %w", envPrefix, err)
		}
		c.Storage.RedisDB = n
	}
	if v, ok := lookup(envPrefix + "RATE_LIMIT"); ok {
		rps, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("%sRATE_LIMIT: %w", envPrefix, err)
		}
		c.RateLimit.RPS = rps
	}
	if v, ok := lookup(envPrefix + "OTLP_INSECURE"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sOTLP_INSECURE: %w", envPrefix, err)
		}
		c.Telemetry.OTLPInsecure = b
	}
	return nil
}

func readFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return bytes, nil
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
