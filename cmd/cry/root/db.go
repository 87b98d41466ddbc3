package root

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"crystalline/internal/config"
	"crystalline/internal/engine"
	"crystalline/internal/storage"
)

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.WarnLevel
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// openService wires config, logger, database and synergy catalog into a
// ready engine service. The cleanup closes the database and flushes logs.
func openService(ctx context.Context) (*engine.Service, func(), error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, err
	}

	logger, err := newLogger(cfg.App.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	path := cfg.Storage.DBPath
	if path == "" {
		path, err = storage.ResolveDBPath()
		if err != nil {
			return nil, nil, err
		}
	}
	db, err := storage.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}

	opts := []engine.Option{engine.WithLogger(logger)}
	if cfg.Engine.SynergyFile != "" {
		synergies, err := engine.LoadSynergyFile(cfg.Engine.SynergyFile)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		opts = append(opts, engine.WithSynergies(synergies))
	}

	cleanup := func() {
		_ = db.Close()
		_ = logger.Sync()
	}
	return engine.NewService(db, opts...), cleanup, nil
}
