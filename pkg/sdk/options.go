package cascade

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	elasticAddrs    []string
	elasticUser     string
	elasticPassword string
	elasticAPIKey   string

	postgresDSN  string
	recordTables map[string]string

	redisAddrs    []string
	redisPassword string

	env          string
	defaultIndex string

	location     *time.Location
	landingSlugs []string
	inferFacets  bool
	removeStale  bool
	staleWorkers int
	cacheTTL     time.Duration

	readinessTimeout time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithElastic sets the Elasticsearch node addresses.
func WithElastic(addrs ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.elasticAddrs = addrs
	})
}

// WithElasticBasicAuth sets Elasticsearch basic auth credentials.
func WithElasticBasicAuth(username, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.elasticUser = username
		c.elasticPassword = password
	})
}

// WithElasticAPIKey sets an Elasticsearch API key.
func WithElasticAPIKey(key string) Option {
	return optionFunc(func(c *clientConfig) {
		c.elasticAPIKey = key
	})
}

// WithPostgres sets the DSN of the database holding the hierarchy and canonical records.
func WithPostgres(dsn string) Option {
	return optionFunc(func(c *clientConfig) {
		c.postgresDSN = dsn
	})
}

// WithRecordTables maps content types to the tables holding their canonical records.
// Types without an entry use a table named after the type.
func WithRecordTables(tables map[string]string) Option {
	return optionFunc(func(c *clientConfig) {
		c.recordTables = tables
	})
}

// WithRedis sets the Redis instance holding the active index pointer.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.redisAddrs = []string{addr}
		c.redisPassword = password
	})
}

// WithEnv sets the environment prefix of the blue/green index pair. Default: "local".
func WithEnv(env string) Option {
	return optionFunc(func(c *clientConfig) {
		c.env = env
	})
}

// WithDefaultIndex pins the index searches run against, ignoring the stored pointer.
func WithDefaultIndex(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultIndex = name
	})
}

// WithLocation sets the timezone used to interpret request dates. Default: UTC.
func WithLocation(loc *time.Location) Option {
	return optionFunc(func(c *clientConfig) {
		c.location = loc
	})
}

// WithLandingSlugs sets the category slugs treated as landing pages.
func WithLandingSlugs(slugs ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.landingSlugs = slugs
	})
}

// WithFacetInference enables guessing a category and region from the free-text needle.
func WithFacetInference() Option {
	return optionFunc(func(c *clientConfig) {
		c.inferFacets = true
	})
}

// WithStaleRemoval deletes index entries whose canonical record no longer exists,
// using the given number of background workers. Without it stale entries are only
// dropped from results.
func WithStaleRemoval(workers int) Option {
	return optionFunc(func(c *clientConfig) {
		c.removeStale = true
		c.staleWorkers = workers
	})
}

// WithEntityCache caches hierarchy lookups in Redis for ttl.
func WithEntityCache(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheTTL = ttl
	})
}

// WithReadinessTimeout bounds the initial wait for every store. Default: 10s.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readinessTimeout = d
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
