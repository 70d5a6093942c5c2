package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/survey-app/backend/config"
	"github.com/survey-app/backend/internal/categories"
	"github.com/survey-app/backend/internal/exports"
	"github.com/survey-app/backend/internal/responses"
	"github.com/survey-app/backend/internal/sqlitestore"
	"github.com/survey-app/backend/internal/stats"
	"github.com/survey-app/backend/internal/surveys"
	"github.com/survey-app/backend/internal/users"
	"github.com/survey-app/backend/pkg/database"
)

// stores holds the repositories for the configured driver.
type stores struct {
	users      users.Store
	categories categories.Store
	surveys    surveys.Store
	responses  responses.Store
	stats      stats.Store
	exports    exports.Store
	close      func()
}

func openStores(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*stores, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := database.NewSQLite(cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		st := sqlitestore.New(db)
		if err := st.Migrate(); err != nil {
			return nil, err
		}
		return &stores{
			users:      st.Users(),
			categories: st.Categories(),
			surveys:    st.Surveys(),
			responses:  st.Responses(),
			stats:      st.Stats(),
			exports:    st.Exports(),
			close: func() {
				if sqlDB, err := db.DB(); err == nil {
					_ = sqlDB.Close()
				}
			},
		}, nil

	case config.DriverPostgres:
		pool, err := database.NewPostgresPool(ctx, cfg.DSN(), cfg.MaxConns, logger)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, err
		}
		return &stores{
			users:      users.NewRepository(pool),
			categories: categories.NewRepository(pool),
			surveys:    surveys.NewRepository(pool),
			responses:  responses.NewRepository(pool),
			stats:      stats.NewRepository(pool),
			exports:    exports.NewRepository(pool),
			close:      pool.Close,
		}, nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}
