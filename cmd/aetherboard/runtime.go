package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/aetherboard/aetherboard/internal/config"
	"github.com/aetherboard/aetherboard/internal/observability"
	"github.com/aetherboard/aetherboard/internal/persistence"
)

// runtime holds the process-wide resources every command starts from.
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	pg     *persistence.Postgres
}

func bootstrap(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &runtime{cfg: cfg, logger: logger, pg: pg}, nil
}

func (r *runtime) close() {
	r.pg.Close()
	_ = r.logger.Sync()
}
