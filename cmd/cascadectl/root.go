package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/cascade/internal/config"
	"github.com/kailas-cloud/cascade/internal/version"
	cascade "github.com/kailas-cloud/cascade/pkg/sdk"
)

// backend is the part of the SDK the commands use.
type backend interface {
	Search(ctx context.Context, params cascade.Params) (cascade.Page, error)
	ActiveIndex(ctx context.Context) (string, error)
	InactiveIndex(ctx context.Context) (string, error)
	ToggleIndex(ctx context.Context) (string, error)
	IndexStatus(ctx context.Context) ([]cascade.IndexStatus, error)
	DropIndex(ctx context.Context, name string) error
	Close()
}

type opener func(ctx context.Context, env string, logger *slog.Logger) (backend, error)

func newRootCmd(open opener) *cobra.Command {
	var (
		env     string
		verbose bool
		timeout time.Duration
	)

	root := &cobra.Command{
		Use:   "cascadectl",
		Short: "Cascade search admin CLI",
		Long: `cascadectl talks to the cascade stores directly using the service config.

Example usage:
  cascadectl search --param region=denver --param category=restaurants
  cascadectl index active
  cascadectl index toggle`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&env, "env", config.GetEnv(), "config environment (local, prod)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "overall command timeout")

	// connect opens a backend for one command run.
	var connect connectFunc = func(cmd *cobra.Command) (context.Context, backend, func(), error) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		b, err := open(ctx, env, logger)
		if err != nil {
			cancel()
			return nil, nil, nil, err
		}
		return ctx, b, func() {
			b.Close()
			cancel()
		}, nil
	}

	root.AddCommand(newSearchCmd(connect), newIndexCmd(connect))
	return root
}

type connectFunc func(cmd *cobra.Command) (context.Context, backend, func(), error)

// sdkBackend adapts the SDK client to backend.
type sdkBackend struct {
	*cascade.Client
}

func (b sdkBackend) ActiveIndex(ctx context.Context) (string, error) {
	return b.Indices().Active(ctx)
}

func (b sdkBackend) InactiveIndex(ctx context.Context) (string, error) {
	return b.Indices().Inactive(ctx)
}

func (b sdkBackend) ToggleIndex(ctx context.Context) (string, error) {
	return b.Indices().Toggle(ctx)
}

func (b sdkBackend) IndexStatus(ctx context.Context) ([]cascade.IndexStatus, error) {
	return b.Indices().Status(ctx)
}

func (b sdkBackend) DropIndex(ctx context.Context, name string) error {
	return b.Indices().Drop(ctx, name)
}

// openBackend connects the SDK using the service config of env.
func openBackend(ctx context.Context, env string, logger *slog.Logger) (backend, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, err
	}

	opts := []cascade.Option{
		cascade.WithElastic(cfg.Elastic.Addrs...),
		cascade.WithPostgres(cfg.Postgres.DSN),
		cascade.WithRecordTables(cfg.Postgres.RecordTables),
		cascade.WithEnv(env),
		cascade.WithDefaultIndex(cfg.Elastic.DefaultIndex),
		cascade.WithLandingSlugs(cfg.Search.LandingSlugs...),
		cascade.WithLogger(logger),
	}
	if cfg.Elastic.APIKey != "" {
		opts = append(opts, cascade.WithElasticAPIKey(cfg.Elastic.APIKey))
	} else if cfg.Elastic.Username != "" {
		opts = append(opts, cascade.WithElasticBasicAuth(cfg.Elastic.Username, cfg.Elastic.Password))
	}
	if len(cfg.Redis.Addrs) > 0 {
		opts = append(opts, cascade.WithRedis(cfg.Redis.Addrs[0], cfg.Redis.Password))
	}
	if loc, err := time.LoadLocation(cfg.Search.Timezone); err == nil {
		opts = append(opts, cascade.WithLocation(loc))
	}
	if cfg.Search.InferFacets {
		opts = append(opts, cascade.WithFacetInference())
	}

	client, err := cascade.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect (env %s): %w", env, err)
	}
	return sdkBackend{Client: client}, nil
}
