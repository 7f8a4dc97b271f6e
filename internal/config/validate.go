package config

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/lingua-immerse/lingua-immerse/internal/logger"
	"github.com/lingua-immerse/lingua-immerse/pkg/wordtree"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535 (got %d)", c.Server.Port)
	}
	if c.Server.LanguageCacheSize <= 0 {
		return fmt.Errorf("server.language_cache_size must be > 0 (got %d)", c.Server.LanguageCacheSize)
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("database.path must be set")
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if _, err := logger.ParseFormatter(c.Log.Format); err != nil {
		return fmt.Errorf("log.format: %w", err)
	}
	if err := c.Import.validate(); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	if err := c.Segment.validate(); err != nil {
		return fmt.Errorf("segment: %w", err)
	}
	return nil
}

func (i *ImportConfig) validate() error {
	if i.Workers <= 0 {
		return fmt.Errorf("workers must be > 0 (got %d)", i.Workers)
	}
	if i.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0 (got %d)", i.BatchSize)
	}
	if i.PageSize <= 0 {
		return fmt.Errorf("page_size must be > 0 (got %d)", i.PageSize)
	}
	if i.FetchTimeout <= 0 {
		return fmt.Errorf("fetch_timeout must be > 0 (got %v)", i.FetchTimeout)
	}
	return nil
}

func (s *SegmentConfig) validate() error {
	order, ok := wordtree.ParseOrder(s.OrderRaw)
	if !ok {
		return fmt.Errorf("order must be source or longest (got %q)", s.OrderRaw)
	}
	s.Order = order
	return nil
}
