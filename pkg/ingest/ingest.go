// Package ingest imports texts and vocabulary lists into the database.
package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lingua-immerse/lingua-immerse/pkg/db"
	"github.com/lingua-immerse/lingua-immerse/pkg/segment"
)

// WorkerPoolInterface abstracts the worker pool so tests can inject failing implementations.
type WorkerPoolInterface interface {
	Start(ctx context.Context)
	Submit(Job) error
	// SubmitCtx attempts to enqueue a job but returns promptly if ctx is canceled.
	SubmitCtx(ctx context.Context, job Job) error
	Close()
}

// Ingester segments pages concurrently and writes them in order, checkpointing
// the last written page so an interrupted import can resume.
type Ingester struct {
	DB        *sql.DB
	Segmenter *segment.Segmenter
	BatchSize int
	// PageSize is the maximum number of runes per page for ImportText.
	PageSize int
	// Logger is used for informational messages (e.g. resume status). nil means log.Default().
	Logger *log.Logger
	// OnProgress is called periodically with the number of written pages and total pages.
	OnProgress func(current, total int)

	// Concurrency settings
	Workers int

	// PoolFactory allows tests to inject custom worker pool implementations.
	PoolFactory func(workers, queue int) WorkerPoolInterface
}

// NewIngester creates a new Ingester.
func NewIngester(conn *sql.DB, seg *segment.Segmenter) *Ingester {
	return &Ingester{
		DB:        conn,
		Segmenter: seg,
		BatchSize: 50,
		PageSize:  DefaultPageSize,
		Workers:   4,
	}
}

func (ig *Ingester) logger() *log.Logger {
	if ig.Logger != nil {
		return ig.Logger
	}
	return log.Default()
}

// processedPage is a segmented page waiting to be written.
type processedPage struct {
	Index     int
	Content   string
	WordCount int
}

// ImportText creates a text, splits content into pages and ingests them.
// It returns the text id and the number of pages written.
func (ig *Ingester) ImportText(ctx context.Context, languageID int64, title, sourceURL, content string) (int64, int, error) {
	textID, err := db.CreateText(ctx, ig.DB, languageID, title, sourceURL)
	if err != nil {
		return 0, 0, err
	}
	n, err := ig.Ingest(ctx, textID, SplitPages(content, ig.PageSize))
	return textID, n, err
}

// Ingest writes pages[i] as page i of the text, skipping pages already
// written by an earlier run. It returns the number of pages written.
func (ig *Ingester) Ingest(ctx context.Context, textID int64, pages []string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	lastIngested, err := db.GetTextProgress(ctx, ig.DB, textID)
	if err != nil {
		return 0, fmt.Errorf("read progress: %w", err)
	}
	if lastIngested >= 0 {
		ig.logger().Info("resuming ingestion", "text", textID, "page", lastIngested+1, "skipped", lastIngested+1)
	}

	total := len(pages)
	startIdx := lastIngested + 1
	if startIdx >= total {
		return 0, nil
	}

	seg := ig.Segmenter
	if seg == nil {
		seg = segment.NewSegmenter("")
	}
	workers := max(ig.Workers, 1)
	batchSize := max(ig.BatchSize, 1)

	var wp WorkerPoolInterface
	if ig.PoolFactory != nil {
		wp = ig.PoolFactory(workers, workers*2)
	} else {
		wp = NewWorkerPool(workers, workers*2)
	}
	resultCh := make(chan processedPage, workers*2)
	closedResultCh := false
	doneCh := make(chan error, 1)

	// Flush every batchSize pages or every 100ms so progress is saved.
	bw := NewBatchWriter(ig.DB, batchSize, 100*time.Millisecond)

	// Clean up on any return path: stop workers, close resultCh, flush batches.
	defer func() {
		wp.Close()
		if !closedResultCh {
			close(resultCh)
		}
		_ = bw.Close()
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	wp.Start(ctx)

	// Consumer: write pages strictly in index order so the checkpoint is
	// always a prefix of the text.
	go func() {
		buffer := make(map[int]processedPage)
		nextIdx := startIdx
		for res := range resultCh {
			buffer[res.Index] = res
			for {
				item, ok := buffer[nextIdx]
				if !ok {
					break
				}
				delete(buffer, nextIdx)
				if err := bw.Submit(writePage(textID, item)); err != nil {
					cancel()
					doneCh <- err
					return
				}
				if ig.OnProgress != nil && (nextIdx+1)%batchSize == 0 {
					ig.OnProgress(nextIdx+1, total)
				}
				nextIdx++
			}
		}
		if err := ctx.Err(); err != nil {
			doneCh <- err
			return
		}
		if ig.OnProgress != nil {
			ig.OnProgress(total, total)
		}
		doneCh <- nil
	}()

	// Producer: one segmentation job per page.
Loop:
	for i := startIdx; i < total; i++ {
		idx, content := i, pages[i]
		job := func(ctx context.Context) error {
			res := processedPage{Index: idx, Content: content, WordCount: seg.CountWords(content)}
			select {
			case resultCh <- res:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := wp.SubmitCtx(ctx, job); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || err == ErrPoolClosed {
				break Loop
			}
			return 0, fmt.Errorf("submit page %d: %w", idx, err)
		}
	}

	// No more sends after the pool is closed; closing resultCh lets the consumer finish.
	wp.Close()
	close(resultCh)
	closedResultCh = true

	consumerErr := <-doneCh
	if err := bw.Close(); err != nil && consumerErr == nil {
		consumerErr = err
	}
	return int(bw.Committed()), consumerErr
}

func writePage(textID int64, p processedPage) WriteFunc {
	return func(ctx context.Context, tx *sql.Tx) error {
		if _, err := db.AddPage(ctx, tx, textID, p.Index, p.Content, p.WordCount); err != nil {
			return fmt.Errorf("failed to persist page %d: %w", p.Index, err)
		}
		if err := db.UpdateTextProgress(ctx, tx, textID, p.Index); err != nil {
			return fmt.Errorf("failed to save progress: %w", err)
		}
		return nil
	}
}
