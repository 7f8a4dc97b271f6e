// Package api serves languages, texts, pages, word trees and vocabulary over HTTP.
package api

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/lingua-immerse/lingua-immerse/pkg/db"
	"github.com/lingua-immerse/lingua-immerse/pkg/segment"
	"github.com/lingua-immerse/lingua-immerse/pkg/wordtree"
)

// Options configures a Server.
type Options struct {
	// Registry hands out per-language segmenters. nil means built-in tables only.
	Registry *segment.Registry
	// Order ranks multiword candidates when building word trees.
	Order wordtree.Order
	// Logger is used for request logs and engine warnings. nil means log.Default().
	Logger *log.Logger
	// LanguageCacheSize bounds the language cache. Zero means 256.
	LanguageCacheSize int

	// Import settings for POST /api/texts.
	Workers   int
	BatchSize int
	PageSize  int
}

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	db        *sql.DB
	reg       *segment.Registry
	vocab     *db.Vocabulary
	languages *lru.Cache[int64, db.Language]
	opts      Options
	log       *log.Logger
}

// New creates a Server over an opened and migrated database.
func New(conn *sql.DB, opts Options) (*Server, error) {
	if opts.Registry == nil {
		opts.Registry = segment.NewRegistry(nil)
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.LanguageCacheSize <= 0 {
		opts.LanguageCacheSize = 256
	}
	cache, err := lru.New[int64, db.Language](opts.LanguageCacheSize)
	if err != nil {
		return nil, fmt.Errorf("language cache: %w", err)
	}
	return &Server{
		db:        conn,
		reg:       opts.Registry,
		vocab:     db.NewVocabulary(conn),
		languages: cache,
		opts:      opts,
		log:       opts.Logger,
	}, nil
}

// Handler returns the routed handler wrapped in the standard middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.health)

	mux.HandleFunc("GET /api/languages", s.listLanguages)
	mux.HandleFunc("POST /api/languages", s.createLanguage)
	mux.HandleFunc("GET /api/languages/{languageID}/texts", s.listTexts)
	mux.HandleFunc("PUT /api/languages/{languageID}/words", s.putWord)

	mux.HandleFunc("POST /api/texts", s.createText)
	mux.HandleFunc("GET /api/texts/{textID}/pages", s.listPages)
	mux.HandleFunc("GET /api/texts/{textID}/pages/{pageID}", s.getPage)
	mux.HandleFunc("PATCH /api/texts/{textID}/pages/{pageID}", s.patchPage)
	mux.HandleFunc("GET /api/texts/{textID}/pages/{pageID}/words", s.pageWords)

	mux.HandleFunc("PATCH /api/words/{wordID}", s.patchWord)
	mux.HandleFunc("DELETE /api/words/{wordID}", s.deleteWord)
	mux.HandleFunc("GET /api/words/{wordID}/history", s.wordHistory)

	return Chain(RequestID(), Logger(s.log), Recovery(s.log))(mux)
}

// language returns a language by id through the cache.
func (s *Server) language(ctx context.Context, id int64) (db.Language, error) {
	if l, ok := s.languages.Get(id); ok {
		return l, nil
	}
	l, err := db.GetLanguage(ctx, s.db, id)
	if err != nil {
		return db.Language{}, err
	}
	s.languages.Add(id, l)
	return l, nil
}

func (s *Server) segmenter(l db.Language) (*segment.Segmenter, error) {
	return s.reg.For(l.Code)
}

// engine builds a word tree engine for a language.
func (s *Server) engine(l db.Language) (*wordtree.Engine, error) {
	seg, err := s.segmenter(l)
	if err != nil {
		return nil, err
	}
	return wordtree.New(s.vocab, wordtree.Options{
		Segmenter: seg,
		Order:     s.opts.Order,
		Logger:    s.log,
	}), nil
}
