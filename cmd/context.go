package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"puck-scanner/config"
	"puck-scanner/internal/infrastructure/storage"
	"puck-scanner/internal/logging"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		c.config, c.configErr = config.Load(path)
	})
	return c.config, c.configErr
}

func (c *commandContext) logger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
}

func (c *commandContext) withStore(ctx context.Context, fn func(*storage.SQLiteStore) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := storage.OpenSQLite(ctx, cfg.StoreDirectory)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}
