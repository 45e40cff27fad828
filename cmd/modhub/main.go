package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/modhub/modhub-api/config"
	"github.com/modhub/modhub-api/internal/bootstrap"
	"github.com/modhub/modhub-api/internal/devseed"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	logStartupInfo(ctx, logger, &cfg)

	if err = cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	db, redisClient, err := initInfrastructure(&cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close database failed", "error", cerr)
		}
	}()
	defer func() {
		if cerr := redisClient.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close redis failed", "error", cerr)
		}
	}()

	if cfg.Postgres.RunMigrationsOnStart {
		if err = bootstrap.RunMigrations(ctx, db, logger); err != nil {
			return err
		}
	} else {
		logger.InfoContext(ctx, "skipping database migrations on startup", "reason", "disabled via config")
	}

	if cfg.IsDev && cfg.Auth.Mode == config.AuthModeMock {
		if err = devseed.Seed(ctx, db, cfg.Auth.DevAuth.UserID, logger); err != nil {
			return err
		}
	}

	services, err := bootstrap.BuildServices(bootstrap.ServiceDeps{
		Config:      &cfg,
		DB:          db,
		RedisClient: redisClient,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	server := bootstrap.StartHTTPServer(&bootstrap.HTTPServerConfig{
		Config:   &cfg,
		Services: services,
		Logger:   logger,
	})

	return bootstrap.RunUntilShutdown(bootstrap.RunConfig{
		Context: ctx,
		Server:  server,
		Logger:  logger,
	})
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	logger.InfoContext(ctx, "starting modhub api",
		"dev", cfg.IsDev,
		"auth_mode", cfg.Auth.Mode,
		"addr", cfg.HTTP.Addr,
		"parent_domain", cfg.HTTP.ParentDomain,
	)
}

// initInfrastructure connects shared dependencies. Postgres and Redis dial
// independently, so the connections race in parallel.
//
//nolint:ireturn // returning redis.UniversalClient keeps sentinel/cluster support flexible.
func initInfrastructure(
	cfg *config.AppConfig,
	logger *slog.Logger,
) (*sql.DB, redis.UniversalClient, error) {
	var (
		db          *sql.DB
		redisClient redis.UniversalClient
	)

	dbCfg := bootstrap.DatabaseConfig{
		DBConfig:    cfg.Postgres,
		RedisConfig: cfg.Redis,
		Logger:      logger,
	}

	var g errgroup.Group
	g.Go(func() error {
		var err error
		if db, err = bootstrap.ConnectDB(dbCfg); err != nil {
			return fmt.Errorf("connect db: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if redisClient, err = bootstrap.ConnectRedis(dbCfg); err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		var closeErrs []error
		if db != nil {
			if cerr := db.Close(); cerr != nil {
				closeErrs = append(closeErrs, fmt.Errorf("close database: %w", cerr))
			}
		}
		if redisClient != nil {
			if cerr := redisClient.Close(); cerr != nil {
				closeErrs = append(closeErrs, fmt.Errorf("close redis: %w", cerr))
			}
		}
		return nil, nil, errors.Join(append([]error{err}, closeErrs...)...)
	}

	return db, redisClient, nil
}
