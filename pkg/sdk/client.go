package cascade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/cascade/internal/db/elastic"
	"github.com/kailas-cloud/cascade/internal/db/postgres"
	dbRedis "github.com/kailas-cloud/cascade/internal/db/redis"
	"github.com/kailas-cloud/cascade/internal/domain/entity"
	"github.com/kailas-cloud/cascade/internal/domain/search/criteria"
	"github.com/kailas-cloud/cascade/internal/domain/search/result"
	activeindexrepo "github.com/kailas-cloud/cascade/internal/repository/activeindex"
	entityrepo "github.com/kailas-cloud/cascade/internal/repository/entity"
	"github.com/kailas-cloud/cascade/internal/repository/entitycache"
	recordrepo "github.com/kailas-cloud/cascade/internal/repository/record"
	searchrepo "github.com/kailas-cloud/cascade/internal/repository/search"
	"github.com/kailas-cloud/cascade/internal/usecase/compiler"
	healthuc "github.com/kailas-cloud/cascade/internal/usecase/health"
	"github.com/kailas-cloud/cascade/internal/usecase/hierarchy"
	indexuc "github.com/kailas-cloud/cascade/internal/usecase/index"
	searchuc "github.com/kailas-cloud/cascade/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, replaced by mocks in tests.
type searchUseCase interface {
	Search(ctx context.Context, params criteria.Params) (result.Page, error)
}

type categoryUseCase interface {
	Category(ctx context.Context, term string) (entity.Node, []entity.Node, error)
}

type indexUseCase interface {
	Active(ctx context.Context) (string, error)
	Inactive(ctx context.Context) (string, error)
	Toggle(ctx context.Context) (string, error)
	Status(ctx context.Context) ([]indexuc.Status, error)
	Drop(ctx context.Context, name string) error
}

// stores groups the connections owned by a Client.
type stores struct {
	elastic  *elastic.Store
	postgres *postgres.Pool
	redis    *dbRedis.Store
}

func (s *stores) close() {
	if s.postgres != nil {
		s.postgres.Close()
	}
	if s.redis != nil {
		s.redis.Close()
	}
}

// Client is the cascade SDK entry point.
type Client struct {
	stores     *stores
	cleaner    *searchuc.Cleaner
	searchSvc  searchUseCase
	categories categoryUseCase
	indexSvc   indexUseCase
	healthSvc  healthUseCase
	obs        *observer
}

// New creates a cascade Client and connects to every store.
// The provided context is used for the initial readiness checks.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		env:              "local",
		readinessTimeout: defaultReadinessTimeout,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	st, err := createStores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		st.close()
		return nil, err
	}

	c, err := wireClient(st, cfg, obs)
	if err != nil {
		st.close()
		return nil, err
	}
	return c, nil
}

func (c *clientConfig) validate() error {
	switch {
	case len(c.elasticAddrs) == 0:
		return errors.New("cascade: elasticsearch address required (use WithElastic)")
	case c.postgresDSN == "":
		return errors.New("cascade: postgres dsn required (use WithPostgres)")
	case len(c.redisAddrs) == 0:
		return errors.New("cascade: redis address required (use WithRedis)")
	}
	return nil
}

func createStores(ctx context.Context, cfg *clientConfig) (*stores, error) {
	es, err := elastic.NewStore(elastic.Config{
		Addrs:    cfg.elasticAddrs,
		Username: cfg.elasticUser,
		Password: cfg.elasticPassword,
		APIKey:   cfg.elasticAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("cascade: create elasticsearch store: %w", err)
	}
	if err := es.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		return nil, fmt.Errorf("cascade: elasticsearch not ready: %w", err)
	}

	st := &stores{elastic: es}

	pool, err := postgres.NewPool(ctx, postgres.Config{DSN: cfg.postgresDSN})
	if err != nil {
		return nil, fmt.Errorf("cascade: create postgres pool: %w", err)
	}
	st.postgres = pool
	if err := pool.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		st.close()
		return nil, fmt.Errorf("cascade: postgres not ready: %w", err)
	}

	rs, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.redisAddrs,
		Password: cfg.redisPassword,
	})
	if err != nil {
		st.close()
		return nil, fmt.Errorf("cascade: create redis store: %w", err)
	}
	st.redis = rs
	if err := rs.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		st.close()
		return nil, fmt.Errorf("cascade: redis not ready: %w", err)
	}

	return st, nil
}

func wireClient(st *stores, cfg *clientConfig, obs *observer) (*Client, error) {
	var entities hierarchy.EntityStore = entityrepo.New(st.postgres)
	if cfg.cacheTTL > 0 {
		entities = entitycache.New(entities, st.redis, cfg.cacheTTL, zap.NewNop())
	}
	resolver := hierarchy.New(entities)

	searchRepo := searchrepo.New(st.elastic)
	indexRepo := activeindexrepo.New(st.redis, cfg.env, cfg.defaultIndex)

	cleaner, err := searchuc.NewCleaner(searchRepo, cfg.staleWorkers, cfg.removeStale, zap.NewNop())
	if err != nil {
		return nil, fmt.Errorf("cascade: %w", err)
	}

	defaults := criteria.DefaultSettings()
	if cfg.location != nil {
		defaults.Location = cfg.location
	}

	searchSvc := searchuc.New(
		searchRepo,
		indexRepo,
		resolver,
		compiler.New(compiler.NewSessionSeeder()),
		recordrepo.New(st.postgres, cfg.recordTables),
		cleaner,
		searchuc.Options{
			Defaults:     defaults,
			LandingSlugs: cfg.landingSlugs,
			InferFacets:  cfg.inferFacets,
		},
	)

	healthSvc := healthuc.New(
		healthuc.Component{Name: "elasticsearch", Pinger: st.elastic},
		healthuc.Component{Name: "postgres", Pinger: st.postgres},
		healthuc.Component{Name: "redis", Pinger: st.redis},
	)

	return &Client{
		stores:     st,
		cleaner:    cleaner,
		searchSvc:  searchSvc,
		categories: resolver,
		indexSvc:   indexuc.New(indexRepo, st.elastic),
		healthSvc:  healthSvc,
		obs:        obs,
	}, nil
}

// Close waits for pending stale removals and releases all connections.
func (c *Client) Close() {
	if c.cleaner != nil {
		c.cleaner.Close()
	}
	if c.stores != nil {
		c.stores.close()
	}
}

// Search runs the fallback plan for params and returns the first non-empty page.
// A page with no items is not an error.
func (c *Client) Search(ctx context.Context, params Params) (page Page, err error) {
	start := time.Now()
	defer func() { c.obs.observeSearch(start, &page, err) }()

	p, err := c.searchSvc.Search(ctx, criteria.Params(params))
	if err != nil {
		return Page{}, fmt.Errorf("search: %w", err)
	}
	return pageFromDomain(&p), nil
}

// Category returns a category, looked up by id or slug, with its direct children.
func (c *Client) Category(ctx context.Context, term string) (cat Category, err error) {
	start := time.Now()
	defer func() { c.obs.observe("category", start, err) }()

	node, children, err := c.categories.Category(ctx, term)
	if err != nil {
		return Category{}, fmt.Errorf("category: %w", err)
	}
	return categoryFromDomain(&node, children), nil
}

// Indices returns the blue/green index management service.
func (c *Client) Indices() *IndexService {
	return &IndexService{svc: c.indexSvc, obs: c.obs}
}
