package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/foxseedlab/kikitori/internal/config"
	"github.com/foxseedlab/kikitori/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/do/v2"
)

const (
	databaseInitTimeout = 15 * time.Second
	applicationName     = "kikitori"
	maxPoolConns        = 4
)

// RegisterDI provides the repository only when DATABASE_URL is set.
func RegisterDI(injector do.Injector) {
	cfg := do.MustInvoke[*config.Config](injector)
	if !cfg.DatabaseEnabled() {
		return
	}
	do.Provide(injector, func(i do.Injector) (repository.Repository, error) {
		ctx, cancel := context.WithTimeout(context.Background(), databaseInitTimeout)
		defer cancel()

		pool, err := openPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return NewPostgresRepository(pool), nil
	})
}

// openPool connects, verifies the connection and applies the schema. The
// pool is closed again on any failure.
func openPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	poolCfg.MaxConns = maxPoolConns
	poolCfg.ConnConfig.RuntimeParams["application_name"] = applicationName

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	steps := []struct {
		name string
		run  func(context.Context) error
	}{
		{"ping database", pool.Ping},
		{"run migration", func(ctx context.Context) error { return RunMigration(ctx, pool) }},
	}
	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("%s: %w", step.name, err)
		}
	}
	return pool, nil
}
