// Command immerse imports texts and vocabulary, prints word trees and
// serves the reading API.
package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/lingua-immerse/lingua-immerse/internal/config"
	"github.com/lingua-immerse/lingua-immerse/internal/logger"
	"github.com/lingua-immerse/lingua-immerse/pkg/db"
	"github.com/lingua-immerse/lingua-immerse/pkg/segment"
)

var version = "0.1.0"

// Globals are the flags shared by every command.
type Globals struct {
	Config string `short:"c" help:"Config file (default ./immerse.yaml or $IMMERSE_CONFIG)" type:"path"`
	DB     string `help:"SQLite database path, overrides the config" type:"path"`
}

// CLI defines the command-line interface for immerse.
var CLI struct {
	Globals

	Serve   ServeCmd   `cmd:"" help:"Start the HTTP API server"`
	Import  ImportCmd  `cmd:"" help:"Import a text from a URL or a file"`
	Vocab   VocabCmd   `cmd:"" help:"Import a vocabulary list (YAML)"`
	Tree    TreeCmd    `cmd:"" help:"Print the word tree of a page or a file"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// env is what commands need after configuration is loaded.
type env struct {
	cfg      *config.Config
	log      *log.Logger
	registry *segment.Registry
}

func (g *Globals) setup() (*env, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if g.DB != "" {
		cfg.Database.Path = g.DB
	}
	tables, err := segment.LoadTables(cfg.Segment.TablesDir)
	if err != nil {
		return nil, err
	}
	return &env{
		cfg:      cfg,
		log:      logger.New("immerse", cfg.Log.Level, cfg.Log.Format),
		registry: segment.NewRegistry(tables),
	}, nil
}

func (e *env) open(ctx context.Context) (*sql.DB, error) {
	conn, err := db.Open(ctx, e.cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	e.log.Debug("database opened", "path", e.cfg.Database.Path)
	return conn, nil
}

func main() {
	// Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	kctx := kong.Parse(&CLI,
		kong.Name("immerse"),
		kong.Description("Read texts in a foreign language against your own vocabulary."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.Bind(&CLI.Globals),
	)
	err := kctx.Run()
	kctx.FatalIfErrorf(err)
}
