package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"
	_ "time/tzdata" // search.timezone must resolve without system zoneinfo

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/cascade/internal/domain/search/criteria"
)

// Config holds the cascade service configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
	Elastic  ElasticConfig  `yaml:"elastic"`
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
	Search   SearchConfig   `yaml:"search"`
	Cache    CacheConfig    `yaml:"cache"`
	Tracing  TracingConfig  `yaml:"tracing"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys   []string `yaml:"api_keys"`
	AdminKeys []string `yaml:"admin_keys"` // required for index mutations when set
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// ElasticConfig holds search backend connection settings.
type ElasticConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	APIKey           string   `yaml:"api_key"`
	DefaultIndex     string   `yaml:"default_index"` // pins the active index
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// PostgresConfig holds entity and record store settings.
type PostgresConfig struct {
	DSN              string            `yaml:"dsn"`
	MaxConns         int               `yaml:"max_conns"`
	MinConns         int               `yaml:"min_conns"`
	RecordTables     map[string]string `yaml:"record_tables"` // content type -> table
	ReadinessTimeout int               `yaml:"readiness_timeout_sec"`
}

// RedisConfig holds key-value store settings.
type RedisConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	ClientCacheTTL   int      `yaml:"client_cache_ttl_sec"` // 0 disables client-side caching
}

// SearchConfig holds request defaults and fallback behaviour.
type SearchConfig struct {
	DefaultLimit   int      `yaml:"default_limit"`
	MaxLimit       int      `yaml:"max_limit"`
	ResultWindow   int      `yaml:"result_window"` // index.max_result_window of the search indices
	DefaultSort    string   `yaml:"default_sort"`
	Types          []string `yaml:"types"`
	DistanceOffset float64  `yaml:"distance_offset"`
	DistanceScale  float64  `yaml:"distance_scale"`
	DistanceMax    *float64 `yaml:"distance_max"` // 0 disables the distance cap
	LandingSlugs   []string `yaml:"landing_slugs"`
	InferFacets    bool     `yaml:"infer_facets"`
	RemoveStale    bool     `yaml:"remove_stale"`
	StaleWorkers   int      `yaml:"stale_workers"`
	Timezone       string   `yaml:"timezone"`
	TimeoutSec     int      `yaml:"timeout_sec"`
}

// CacheConfig holds entity lookup cache settings.
type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	TTLSec  int  `yaml:"ttl_sec"`
}

// TracingConfig holds OpenTelemetry export settings.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"` // host:port of the OTLP HTTP collector
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration, expanding ${VAR:-default} references.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Elastic.ReadinessTimeout <= 0 {
		c.Elastic.ReadinessTimeout = 10
	}
	if c.Postgres.ReadinessTimeout <= 0 {
		c.Postgres.ReadinessTimeout = 10
	}
	if c.Redis.ReadinessTimeout <= 0 {
		c.Redis.ReadinessTimeout = 10
	}
	if c.Search.DefaultLimit <= 0 {
		c.Search.DefaultLimit = criteria.DefaultLimit
	}
	if c.Search.MaxLimit <= 0 {
		c.Search.MaxLimit = criteria.MaxLimit
	}
	if c.Search.ResultWindow <= 0 {
		c.Search.ResultWindow = criteria.ResultWindow
	}
	if c.Search.DefaultSort == "" {
		c.Search.DefaultSort = criteria.DefaultSort
	}
	if len(c.Search.Types) == 0 {
		c.Search.Types = criteria.KnownTypes
	}
	if c.Search.DistanceScale <= 0 {
		c.Search.DistanceScale = criteria.DefaultDistanceScale
	}
	if c.Search.DistanceMax == nil {
		dm := float64(criteria.DefaultDistanceMax)
		c.Search.DistanceMax = &dm
	}
	if c.Search.StaleWorkers <= 0 {
		c.Search.StaleWorkers = 4
	}
	if c.Search.Timezone == "" {
		c.Search.Timezone = "UTC"
	}
	if c.Search.TimeoutSec <= 0 {
		c.Search.TimeoutSec = 5
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 600
	}
	if c.Tracing.SampleRatio <= 0 {
		c.Tracing.SampleRatio = 1
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Elastic.Addrs) == 0 {
		return fmt.Errorf("elastic.addrs is required")
	}
	if c.Postgres.DSN == "" {
		return fmt.Errorf("postgres.dsn is required")
	}
	if len(c.Redis.Addrs) == 0 {
		return fmt.Errorf("redis.addrs is required")
	}
	if c.Search.DefaultLimit > c.Search.MaxLimit {
		return fmt.Errorf("search.default_limit (%d) exceeds search.max_limit (%d)",
			c.Search.DefaultLimit, c.Search.MaxLimit)
	}
	if c.Search.DistanceMax != nil && *c.Search.DistanceMax < 0 {
		return fmt.Errorf("search.distance_max must not be negative")
	}
	if _, err := time.LoadLocation(c.Search.Timezone); err != nil {
		return fmt.Errorf("search.timezone: %w", err)
	}
	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		return fmt.Errorf("tracing.endpoint is required when tracing is enabled")
	}
	if c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("tracing.sample_ratio must be in (0, 1], got %v", c.Tracing.SampleRatio)
	}
	return nil
}

// CriteriaDefaults converts the search section into normalizer defaults.
func (c *Config) CriteriaDefaults() criteria.Defaults {
	loc, err := time.LoadLocation(c.Search.Timezone)
	if err != nil {
		loc = time.UTC
	}
	d := criteria.Defaults{
		Limit:          c.Search.DefaultLimit,
		MaxLimit:       c.Search.MaxLimit,
		ResultWindow:   c.Search.ResultWindow,
		Sort:           c.Search.DefaultSort,
		Types:          c.Search.Types,
		DistanceOffset: c.Search.DistanceOffset,
		DistanceScale:  c.Search.DistanceScale,
		Location:       loc,
	}
	if c.Search.DistanceMax != nil {
		d.DistanceMax = *c.Search.DistanceMax
	}
	return d
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
