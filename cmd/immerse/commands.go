package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/lingua-immerse/lingua-immerse/pkg/api"
	"github.com/lingua-immerse/lingua-immerse/pkg/db"
	"github.com/lingua-immerse/lingua-immerse/pkg/ingest"
	"github.com/lingua-immerse/lingua-immerse/pkg/segment"
	"github.com/lingua-immerse/lingua-immerse/pkg/vocab"
	"github.com/lingua-immerse/lingua-immerse/pkg/wordtree"
)

// ServeCmd starts the HTTP API server.
type ServeCmd struct {
	Addr string `help:"Listen address, overrides the config (host:port)"`
}

func (c *ServeCmd) Run(ctx context.Context, g *Globals) error {
	e, err := g.setup()
	if err != nil {
		return err
	}
	conn, err := e.open(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	s, err := api.New(conn, api.Options{
		Registry:          e.registry,
		Order:             e.cfg.Segment.Order,
		Logger:            e.log,
		LanguageCacheSize: e.cfg.Server.LanguageCacheSize,
		Workers:           e.cfg.Import.Workers,
		BatchSize:         e.cfg.Import.BatchSize,
		PageSize:          e.cfg.Import.PageSize,
	})
	if err != nil {
		return err
	}

	addr := c.Addr
	if addr == "" {
		addr = e.cfg.Server.Addr()
	}
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  e.cfg.Server.ReadTimeout,
		WriteTimeout: e.cfg.Server.WriteTimeout,
		IdleTimeout:  e.cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		e.log.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	e.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), e.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ImportCmd imports a text from a URL or a local file.
type ImportCmd struct {
	URL      string `name:"url" xor:"source" required:"" help:"Page to fetch and extract"`
	File     string `xor:"source" required:"" type:"existingfile" help:"Local .html or plain text file"`
	Language string `required:"" help:"Language name, created if missing"`
	Code     string `help:"Language code (BCP 47) used for segmentation"`
	Title    string `help:"Text title, defaults to the extracted title"`
}

func (c *ImportCmd) Run(ctx context.Context, g *Globals) error {
	e, err := g.setup()
	if err != nil {
		return err
	}

	var article *ingest.Article
	if c.URL != "" {
		e.log.Info("fetching", "url", c.URL)
		client := &http.Client{Timeout: e.cfg.Import.FetchTimeout}
		article, err = ingest.Fetch(ctx, client, c.URL)
	} else {
		article, err = ingest.ReadFile(c.File)
	}
	if err != nil {
		return err
	}
	title := c.Title
	if title == "" {
		title = article.Title
	}
	if strings.TrimSpace(title) == "" {
		title = article.URL
	}
	fmt.Printf("Title: %s\n", title)
	fmt.Printf("Extracted Text Length: %d chars\n", len(article.Text))

	conn, err := e.open(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	langID, err := db.CreateOrGetLanguage(ctx, conn, c.Language, c.Code)
	if err != nil {
		return err
	}
	lang, err := db.GetLanguage(ctx, conn, langID)
	if err != nil {
		return err
	}
	seg, err := e.registry.For(lang.Code)
	if err != nil {
		return err
	}

	ig := ingest.NewIngester(conn, seg)
	ig.Logger = e.log
	ig.Workers = e.cfg.Import.Workers
	ig.BatchSize = e.cfg.Import.BatchSize
	ig.PageSize = e.cfg.Import.PageSize
	ig.OnProgress = func(current, total int) {
		e.log.Debug("progress", "page", current, "total", total)
	}

	textID, pages, err := ig.ImportText(ctx, langID, title, article.URL, article.Text)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	fmt.Printf("Text saved with ID: %d\n", textID)
	fmt.Printf("Processing complete. Wrote %d pages.\n", pages)
	return nil
}

// VocabCmd imports a vocabulary list into the database.
type VocabCmd struct {
	File     string `arg:"" type:"existingfile" help:"Vocabulary list (YAML)"`
	Language string `help:"Language name, defaults to the list's language code"`
}

func (c *VocabCmd) Run(ctx context.Context, g *Globals) error {
	e, err := g.setup()
	if err != nil {
		return err
	}
	list, err := vocab.LoadFile(c.File)
	if err != nil {
		return err
	}
	name := c.Language
	if name == "" {
		name = list.Language
	}
	if name == "" {
		return fmt.Errorf("%s has no language; pass --language", c.File)
	}

	conn, err := e.open(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	langID, err := db.CreateOrGetLanguage(ctx, conn, name, list.Language)
	if err != nil {
		return err
	}
	lang, err := db.GetLanguage(ctx, conn, langID)
	if err != nil {
		return err
	}
	seg, err := e.registry.For(lang.Code)
	if err != nil {
		return err
	}

	im := ingest.NewVocabImporter(conn, seg)
	im.Logger = e.log
	im.BatchSize = e.cfg.Import.BatchSize
	n, err := im.Import(ctx, langID, list.Words)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d of %d words for %s.\n", n, len(list.Words), lang.Name)
	return nil
}

// TreeCmd prints the word tree of a stored page or of a local file.
type TreeCmd struct {
	Page     int64  `help:"Stored page id"`
	File     string `arg:"" optional:"" type:"existingfile" help:"Plain text file to segment"`
	Vocab    string `type:"existingfile" help:"Vocabulary list for FILE (YAML)"`
	Language string `help:"Language code for FILE, defaults to the vocabulary list's"`
	Order    string `help:"Multiword candidate order (source, longest), defaults to the config"`
	JSON     bool   `name:"json" help:"Print the tree as JSON"`
}

func (c *TreeCmd) Run(ctx context.Context, g *Globals) error {
	if (c.Page == 0) == (c.File == "") {
		return fmt.Errorf("pass either --page or FILE")
	}
	e, err := g.setup()
	if err != nil {
		return err
	}
	order, err := treeOrder(c.Order, e.cfg.Segment.Order)
	if err != nil {
		return err
	}

	var tree *wordtree.Tree
	if c.Page != 0 {
		tree, err = c.pageTree(ctx, e, order)
	} else {
		tree, err = c.fileTree(ctx, e, order)
	}
	if err != nil {
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(tree)
	}
	printTree(tree)
	return nil
}

func (c *TreeCmd) pageTree(ctx context.Context, e *env, order wordtree.Order) (*wordtree.Tree, error) {
	conn, err := e.open(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	page, err := db.GetPage(ctx, conn, c.Page)
	if err != nil {
		return nil, err
	}
	lang, err := db.PageLanguage(ctx, conn, page.ID)
	if err != nil {
		return nil, err
	}
	seg, err := e.registry.For(lang.Code)
	if err != nil {
		return nil, err
	}
	engine := wordtree.New(db.NewVocabulary(conn), wordtree.Options{Segmenter: seg, Order: order, Logger: e.log})
	return engine.ComputeWordTree(ctx, page.Content, lang.ID)
}

// fileLanguageID is the language id used for the in-memory vocabulary.
const fileLanguageID = 1

func (c *TreeCmd) fileTree(ctx context.Context, e *env, order wordtree.Order) (*wordtree.Tree, error) {
	content, err := os.ReadFile(c.File)
	if err != nil {
		return nil, err
	}
	var list *vocab.List
	if c.Vocab != "" {
		if list, err = vocab.LoadFile(c.Vocab); err != nil {
			return nil, err
		}
	}
	code := c.Language
	if code == "" && list != nil {
		code = list.Language
	}
	seg, err := e.registry.For(code)
	if err != nil {
		return nil, err
	}

	mem := vocab.NewMemory()
	if list != nil {
		if _, err := list.Fill(mem, fileLanguageID, seg); err != nil {
			return nil, err
		}
	}
	engine := wordtree.New(mem, wordtree.Options{Segmenter: seg, Order: order, Logger: e.log})
	return engine.ComputeWordTree(ctx, string(content), fileLanguageID)
}

// treeOrder prefers the flag and falls back to the configured order.
func treeOrder(flag string, configured wordtree.Order) (wordtree.Order, error) {
	if flag == "" {
		return configured, nil
	}
	order, ok := wordtree.ParseOrder(flag)
	if !ok {
		return configured, fmt.Errorf("invalid --order %q: want source or longest", flag)
	}
	return order, nil
}

// printTree writes one indexed node per line; multiword items are indented.
func printTree(tree *wordtree.Tree) {
	for _, n := range tree.Nodes {
		switch n := n.(type) {
		case *wordtree.Word:
			fmt.Printf("%4d  %-8s %s\n", n.Index, n.Status, n.Content)
		case *wordtree.Multiword:
			fmt.Printf("%4d  %-8s %s\n", n.Index, n.Status, n.Content)
			for _, it := range n.Items {
				if it.Kind == segment.KindSeparator {
					fmt.Printf("%4d    %-8s %q\n", it.Index, "", it.Content)
					continue
				}
				fmt.Printf("%4d    %-8s %s\n", it.Index, it.Status, it.Content)
			}
		}
	}
	fmt.Printf("next index: %d\n", tree.NextIndex)
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("immerse version %s\n", version)
	return nil
}
