package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/lingua-immerse/lingua-immerse/pkg/db"
	"github.com/lingua-immerse/lingua-immerse/pkg/segment"
)

func setupDB(t *testing.T) *sql.DB {
	conn, err := db.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	return conn
}

func newText(t *testing.T, conn *sql.DB, title string) int64 {
	ctx := context.Background()
	langID, err := db.CreateOrGetLanguage(ctx, conn, "English", "en")
	if err != nil {
		t.Fatal(err)
	}
	textID, err := db.CreateText(ctx, conn, langID, title, "http://test/"+title)
	if err != nil {
		t.Fatal(err)
	}
	return textID
}

func numberedPages(n int) []string {
	pages := make([]string, n)
	for i := range pages {
		pages[i] = fmt.Sprintf("Page number %d has words.\n", i)
	}
	return pages
}

func TestIngestResume(t *testing.T) {
	conn := setupDB(t)
	defer conn.Close()
	textID := newText(t, conn, "resume")

	// Manually set progress to index 4 (so 5 pages processed: 0,1,2,3,4)
	if err := db.UpdateTextProgress(context.Background(), conn, textID, 4); err != nil {
		t.Fatal(err)
	}

	ingester := NewIngester(conn, nil)
	ingester.BatchSize = 2 // Verify batching doesn't interfere

	count, err := ingester.Ingest(context.Background(), textID, numberedPages(10))
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	// We expect pages 5,6,7,8,9 to be written.
	if count != 5 {
		t.Errorf("Expected 5 written pages, got %d", count)
	}
	pages, err := db.ListPages(context.Background(), conn, textID)
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 5 || pages[0].Index != 5 {
		t.Fatalf("expected pages 5..9, got %+v", pages)
	}
}

func TestIngestContextCancel(t *testing.T) {
	conn := setupDB(t)
	defer conn.Close()
	textID := newText(t, conn, "cancel")

	ingester := NewIngester(conn, nil)
	ingester.BatchSize = 10

	// Create a context that is ALREADY canceled
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	count, err := ingester.Ingest(ctx, textID, numberedPages(100))
	if count != 0 {
		t.Errorf("Expected 0 written pages with cancelled context, got %d", count)
	}
	if err != context.Canceled {
		t.Errorf("Expected context.Canceled error, got %v", err)
	}
}

func TestIngestWritesPagesInOrder(t *testing.T) {
	conn := setupDB(t)
	defer conn.Close()
	ctx := context.Background()
	textID := newText(t, conn, "order")

	var progress []int
	ingester := NewIngester(conn, segment.NewSegmenter("en"))
	ingester.Workers = 4
	ingester.BatchSize = 3
	ingester.OnProgress = func(current, total int) {
		if total != 20 {
			t.Errorf("expected total 20, got %d", total)
		}
		progress = append(progress, current)
	}

	pages := numberedPages(20)
	count, err := ingester.Ingest(ctx, textID, pages)
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if count != 20 {
		t.Fatalf("expected 20 written pages, got %d", count)
	}

	stored, err := db.ListPages(ctx, conn, textID)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 20 {
		t.Fatalf("expected 20 stored pages, got %d", len(stored))
	}
	for i, p := range stored {
		if p.Index != i || p.Content != pages[i] {
			t.Fatalf("page %d out of order: %+v", i, p)
		}
		// digits separate words: Page, number, has, words
		if p.WordCount != 4 {
			t.Fatalf("page %d: expected 4 words, got %d", i, p.WordCount)
		}
	}

	last, err := db.GetTextProgress(ctx, conn, textID)
	if err != nil {
		t.Fatal(err)
	}
	if last != 19 {
		t.Fatalf("expected progress 19, got %d", last)
	}
	if len(progress) == 0 || progress[len(progress)-1] != 20 {
		t.Fatalf("expected final progress callback with 20, got %v", progress)
	}

	// A finished text has nothing left to ingest.
	count, err = ingester.Ingest(ctx, textID, pages)
	if err != nil || count != 0 {
		t.Fatalf("expected no-op re-ingest, got %d, %v", count, err)
	}
}

func TestIngestUnknownText(t *testing.T) {
	conn := setupDB(t)
	defer conn.Close()

	_, err := NewIngester(conn, nil).Ingest(context.Background(), 999, numberedPages(2))
	if !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestImportText(t *testing.T) {
	conn := setupDB(t)
	defer conn.Close()
	ctx := context.Background()
	langID, err := db.CreateOrGetLanguage(ctx, conn, "English", "en")
	if err != nil {
		t.Fatal(err)
	}

	content := strings.Repeat("A short paragraph of text.\n\n", 30)
	ingester := NewIngester(conn, segment.NewSegmenter("en"))
	ingester.PageSize = 100

	textID, count, err := ingester.ImportText(ctx, langID, "Paragraphs", "", content)
	if err != nil {
		t.Fatalf("ImportText failed: %v", err)
	}
	pages, err := db.ListPages(ctx, conn, textID)
	if err != nil {
		t.Fatal(err)
	}
	if count != len(pages) || count < 2 {
		t.Fatalf("expected several pages, got count=%d stored=%d", count, len(pages))
	}
	var b strings.Builder
	for _, p := range pages {
		b.WriteString(p.Content)
	}
	if b.String() != content {
		t.Fatalf("pages do not reconstruct the text")
	}
}
