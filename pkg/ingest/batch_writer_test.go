package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lingua-immerse/lingua-immerse/pkg/db"
	"github.com/lingua-immerse/lingua-immerse/pkg/segment"
	"github.com/lingua-immerse/lingua-immerse/pkg/wordtree"
)

func TestBatchWriterCommitsPages(t *testing.T) {
	conn := setupDB(t)
	defer conn.Close()
	textID := newText(t, conn, "batch")

	bw := NewBatchWriter(conn, 2, 0)
	var errs []error
	var mu sync.Mutex
	bw.OnError = func(e error) {
		mu.Lock()
		errs = append(errs, e)
		mu.Unlock()
	}

	// Two pages fill one batch of size 2
	for i, content := range []string{"First page.", "Second page."} {
		if err := bw.Submit(writePage(textID, processedPage{Index: i, Content: content, WordCount: 2})); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}

	// Close and wait for pending batches to be committed. Use a timeout to avoid hanging tests.
	doneCh := make(chan error, 1)
	go func() {
		doneCh <- bw.Close()
	}()
	select {
	case err := <-doneCh:
		if err != nil {
			t.Fatalf("close failed: %v", err)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for batch commit/close")
	}
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	pages, err := db.ListPages(context.Background(), conn, textID)
	if err != nil {
		t.Fatalf("list pages failed: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	last, err := db.GetTextProgress(context.Background(), conn, textID)
	if err != nil {
		t.Fatal(err)
	}
	if last != 1 {
		t.Fatalf("expected progress 1, got %d", last)
	}
}

func TestBatchWriterRollback(t *testing.T) {
	conn := setupDB(t)
	defer conn.Close()
	ctx := context.Background()
	langID, err := db.CreateOrGetLanguage(ctx, conn, "English", "en")
	if err != nil {
		t.Fatal(err)
	}
	seg := segment.NewSegmenter("en")
	shape, err := seg.Shape("rollback")
	if err != nil {
		t.Fatal(err)
	}

	bw := NewBatchWriter(conn, 2, 0)
	errCh := make(chan error, 1)
	bw.OnError = func(e error) {
		errCh <- e
	}

	// Batch of 2: first succeeds, second fails. Whole batch should roll back.
	bw.Submit(func(ctx context.Context, tx *sql.Tx) error {
		_, err := db.UpsertWord(ctx, tx, langID, shape, "rollback", wordtree.StatusNew)
		return err
	})
	bw.Submit(func(ctx context.Context, tx *sql.Tx) error {
		return fmt.Errorf("intentional error")
	})

	bw.Close()

	// Expect an error reported
	select {
	case err := <-errCh:
		if err == nil {
			t.Fatal("expected error, got nil")
		}
	default:
		t.Fatal("expected OnError to be called")
	}

	// Neither the word nor its status log entry survived
	var words, logs int
	if err := conn.QueryRow("SELECT COUNT(*) FROM words").Scan(&words); err != nil {
		t.Fatalf("failed to query row count: %v", err)
	}
	if err := conn.QueryRow("SELECT COUNT(*) FROM status_log").Scan(&logs); err != nil {
		t.Fatalf("failed to query row count: %v", err)
	}
	if words != 0 || logs != 0 {
		t.Fatalf("expected rollback, got %d words and %d log rows", words, logs)
	}
}

func TestBatchWriterFlushesBySize(t *testing.T) {
	bw := NewBatchWriter(nil, 5, 0)
	var mu sync.Mutex
	called := 0
	for i := 0; i < 12; i++ {
		if err := bw.Submit(func(ctx context.Context, tx *sql.Tx) error {
			mu.Lock()
			called++
			mu.Unlock()
			return nil
		}); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}
	if err := bw.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if called != 12 {
		t.Fatalf("expected 12 calls, got %d", called)
	}
}

func TestBatchWriterFlushesOnInterval(t *testing.T) {
	bw := NewBatchWriter(nil, 10, 50*time.Millisecond)
	var mu sync.Mutex
	called := 0
	if err := bw.Submit(func(ctx context.Context, tx *sql.Tx) error {
		mu.Lock()
		called++
		mu.Unlock()
		return nil
	}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	// wait for flush interval
	time.Sleep(100 * time.Millisecond)
	if err := bw.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if called != 1 {
		t.Fatalf("expected 1 call, got %d", called)
	}
}

func TestBatchWriterDropsBatchOnCancel(t *testing.T) {
	// We need to ensure the committer is busy and the batch queue is full when ctx is canceled.
	// Use a blocker so the committer will be processing the first batch while a second batch fills the buffer.
	bw := NewBatchWriter(nil, 1, 0) // small batch size to create batches quickly
	defer bw.Close()
	errCh := make(chan error, 1)
	bw.OnError = func(e error) {
		select {
		case errCh <- e:
		default:
		}
	}

	blocker := make(chan struct{})

	// First batch: long-running callback that will block until we unblock it.
	if err := bw.Submit(func(ctx context.Context, tx *sql.Tx) error {
		<-blocker // block here
		return nil
	}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	// Second batch: waits in the batch queue while the first is being processed
	if err := bw.Submit(func(ctx context.Context, tx *sql.Tx) error { return nil }); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	// Now cancel the writer's context so further batches cannot be queued
	bw.cancel()

	// Further batches find the batch queue full (or race with ctx.Done) and are
	// eventually dropped and reported via OnError.
	for i := 0; i < 4; i++ {
		if err := bw.Submit(func(ctx context.Context, tx *sql.Tx) error { return nil }); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}

	// Unblock the first batch so committer can finish and allow Close() to complete
	close(blocker)

	// Wait for OnError to be called
	select {
	case e := <-errCh:
		if e == nil || !strings.Contains(e.Error(), "dropping batch") {
			t.Fatalf("unexpected OnError value: %v", e)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected OnError to be called when batch dropped")
	}
}

func TestBatchWriterCountsCommitted(t *testing.T) {
	bw := NewBatchWriter(nil, 3, 0)
	for i := 0; i < 7; i++ {
		if err := bw.Submit(func(ctx context.Context, tx *sql.Tx) error { return nil }); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}
	if err := bw.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if got := bw.Committed(); got != 7 {
		t.Fatalf("expected 7 committed writes, got %d", got)
	}
	if err := bw.Submit(func(ctx context.Context, tx *sql.Tx) error { return nil }); err != ErrBatchWriterClosed {
		t.Fatalf("expected ErrBatchWriterClosed after close, got %v", err)
	}
}

func TestBatchWriterCloseReturnsFirstError(t *testing.T) {
	bw := NewBatchWriter(nil, 1, 0)
	_ = bw.Submit(func(ctx context.Context, tx *sql.Tx) error { return fmt.Errorf("first") })
	_ = bw.Submit(func(ctx context.Context, tx *sql.Tx) error { return fmt.Errorf("second") })
	err := bw.Close()
	if err == nil || err.Error() != "first" {
		t.Fatalf("expected first error from Close, got %v", err)
	}
	if got := bw.Committed(); got != 0 {
		t.Fatalf("expected 0 committed writes, got %d", got)
	}
}
