package bootstrap

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"qualisync/internal/bootstrap/config"
	"qualisync/internal/bootstrap/database"
	"qualisync/internal/bootstrap/logging"
	"qualisync/internal/infrastructure/extapi"
	sqliterepo "qualisync/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "qualisync/internal/infrastructure/persistence/sqlite/uow"
	"qualisync/internal/infrastructure/state"
	"qualisync/internal/ports"
	"qualisync/internal/usecase/rank"
	syncuc "qualisync/internal/usecase/sync"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewSourceCatalogRepository,
			fx.As(new(ports.SourceCatalog)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewQualityCatalogRepository,
			fx.As(new(ports.QualityCatalog)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(
		fx.Annotate(
			state.NewSQLiteSyncState,
			fx.As(new(ports.SyncState)),
		),
	),
	fx.Provide(provideSourceAPI),
	fx.Provide(provideQualityAPI),
	fx.Provide(provideSyncService),
	fx.Provide(rank.NewService),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}

func extapiConfig(cfg config.PlatformConfig) extapi.Config {
	return extapi.Config{
		BaseURL:         cfg.BaseURL,
		Token:           cfg.Token,
		PageSize:        cfg.PageSize,
		RetryAttempts:   cfg.RetryAttempts,
		BackoffInitial:  cfg.BackoffInitial,
		BackoffMax:      cfg.BackoffMax,
		RateLimitQuota:  cfg.RateLimitQuota,
		RateLimitWindow: cfg.RateLimitWindow,
	}
}

func provideSourceAPI(cfg config.Config) ports.SourceAPI {
	return extapi.NewSourceClient(extapiConfig(cfg.Source))
}

func provideQualityAPI(cfg config.Config) ports.QualityAPI {
	return extapi.NewQualityClient(extapiConfig(cfg.Quality))
}

func provideSyncService(
	cfg config.Config,
	source ports.SourceAPI,
	quality ports.QualityAPI,
	sourceCat ports.SourceCatalog,
	qualityCat ports.QualityCatalog,
	uow ports.UnitOfWork,
	syncState ports.SyncState,
) *syncuc.Service {
	return syncuc.NewService(source, quality, sourceCat, qualityCat, uow, syncState, syncuc.Settings{
		Concurrency: cfg.Sync.Concurrency,
	})
}
