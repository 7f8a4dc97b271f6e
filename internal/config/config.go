// Package config loads the immerse configuration from a YAML file and the environment.
package config

import (
	"net"
	"strconv"
	"time"

	"github.com/lingua-immerse/lingua-immerse/pkg/wordtree"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Import   ImportConfig   `yaml:"import"`
	Segment  SegmentConfig  `yaml:"segment"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host              string        `yaml:"host"                env:"IMMERSE_SERVER_HOST"                env-default:"127.0.0.1"`
	Port              int           `yaml:"port"                env:"IMMERSE_SERVER_PORT"                env-default:"8080"`
	ReadTimeout       time.Duration `yaml:"read_timeout"        env:"IMMERSE_SERVER_READ_TIMEOUT"        env-default:"10s"`
	WriteTimeout      time.Duration `yaml:"write_timeout"       env:"IMMERSE_SERVER_WRITE_TIMEOUT"       env-default:"30s"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"        env:"IMMERSE_SERVER_IDLE_TIMEOUT"        env-default:"60s"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"    env:"IMMERSE_SERVER_SHUTDOWN_TIMEOUT"    env-default:"10s"`
	LanguageCacheSize int           `yaml:"language_cache_size" env:"IMMERSE_SERVER_LANGUAGE_CACHE_SIZE" env-default:"256"`
}

// Addr returns the host:port the server listens on.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path string `yaml:"path" env:"IMMERSE_DB_PATH" env-default:"immerse.db"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"IMMERSE_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"IMMERSE_LOG_FORMAT" env-default:"text"`
}

// ImportConfig holds text and vocabulary import settings.
type ImportConfig struct {
	Workers      int           `yaml:"workers"       env:"IMMERSE_IMPORT_WORKERS"       env-default:"4"`
	BatchSize    int           `yaml:"batch_size"    env:"IMMERSE_IMPORT_BATCH_SIZE"    env-default:"50"`
	PageSize     int           `yaml:"page_size"     env:"IMMERSE_IMPORT_PAGE_SIZE"     env-default:"2000"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" env:"IMMERSE_IMPORT_FETCH_TIMEOUT" env-default:"30s"`
}

// SegmentConfig holds segmentation settings.
type SegmentConfig struct {
	// TablesDir holds per-language separator tables (<code>.yaml). Empty means built-in tables only.
	TablesDir string `yaml:"tables_dir" env:"IMMERSE_SEGMENT_TABLES_DIR"`
	// OrderRaw is the multiword candidate order: "source" or "longest".
	OrderRaw string `yaml:"order" env:"IMMERSE_SEGMENT_ORDER" env-default:"source"`

	// Order is parsed from OrderRaw during validation.
	Order wordtree.Order `yaml:"-" env:"-"`
}
