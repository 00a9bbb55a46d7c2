package main

import (
	"fmt"

	"github.com/ztrve/lover-ledger/internal/config"
	"github.com/ztrve/lover-ledger/internal/database"
	"github.com/ztrve/lover-ledger/internal/router"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		panic(fmt.Sprintf("load config: %v", err))
	}

	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("init logger: %v", err))
	}
	defer func() { _ = logger.Sync() }()

	// init database
	db, err := database.Init(cfg.Database)
	if err != nil {
		logger.Fatal("init database", zap.Error(err))
	}

	// run migrations
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("migrate database", zap.Error(err))
	}

	// setup router (also wires notice handlers; duplicate registration fails fast)
	r, err := router.SetupRouter(cfg, db, logger)
	if err != nil {
		logger.Fatal("setup router", zap.Error(err))
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	logger.Info("server listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		logger.Fatal("run server", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if level != "" {
		var l zapcore.Level
		if err := l.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("parse log level %q: %w", level, err)
		}
		zapCfg.Level = zap.NewAtomicLevelAt(l)
	}
	return zapCfg.Build()
}
