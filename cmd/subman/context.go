package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"subman/internal/catalog"
	"subman/internal/config"
	"subman/internal/logging"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger

	catalogOnce sync.Once
	catalog     *catalog.Store
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

// loggerFor returns the file logger, falling back to a no-op logger when the
// log file cannot be opened so that commands still run.
func (c *commandContext) loggerFor(cmd *cobra.Command) *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: logging disabled: %v\n", err)
			logger = logging.NewNop()
		}
		c.logger = logger
	})
	return c.logger
}

// openCatalog returns the history store, or nil when history is disabled or
// unavailable. History is advisory; failures only produce a warning.
func (c *commandContext) openCatalog(cmd *cobra.Command) *catalog.Store {
	c.catalogOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil || !cfg.Catalog.Enabled {
			return
		}
		store, err := catalog.Open(commandCtx(cmd), cfg.CatalogPath())
		if err != nil {
			logging.WarnWithContext(c.loggerFor(cmd), "catalog unavailable", "catalog_open_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "history not recorded"),
			)
			return
		}
		c.catalog = store
	})
	return c.catalog
}

func (c *commandContext) close() {
	if c.catalog != nil {
		_ = c.catalog.Close()
	}
}

func commandCtx(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// skipConfigAnnotation marks commands that load the configuration themselves.
const skipConfigAnnotation = "skipConfigLoad"

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations[skipConfigAnnotation] == "true" {
			return true
		}
	}
	return false
}
