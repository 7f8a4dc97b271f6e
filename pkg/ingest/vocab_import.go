package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/lingua-immerse/lingua-immerse/pkg/db"
	"github.com/lingua-immerse/lingua-immerse/pkg/segment"
	"github.com/lingua-immerse/lingua-immerse/pkg/vocab"
	"github.com/lingua-immerse/lingua-immerse/pkg/wordtree"
)

// VocabImporter writes vocabulary list entries into the words table.
type VocabImporter struct {
	DB        *sql.DB
	Segmenter *segment.Segmenter
	BatchSize int
	Logger    *log.Logger
}

// NewVocabImporter creates a new VocabImporter.
func NewVocabImporter(conn *sql.DB, seg *segment.Segmenter) *VocabImporter {
	return &VocabImporter{DB: conn, Segmenter: seg, BatchSize: 200}
}

// Import upserts entries for a language and returns how many were written.
// Entries that cannot be stored (empty content, content starting with a
// separator, or an unknown status) are logged and skipped.
func (im *VocabImporter) Import(ctx context.Context, languageID int64, entries []vocab.Entry) (int, error) {
	logger := im.Logger
	if logger == nil {
		logger = log.Default()
	}
	seg := im.Segmenter
	if seg == nil {
		seg = segment.NewSegmenter("")
	}

	bw := NewBatchWriter(im.DB, im.BatchSize, 0)
	var submitErr error
	skipped := 0
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			submitErr = err
			break
		}
		shape, err := seg.Shape(e.Content)
		if err != nil {
			logger.Warn("skipping vocabulary entry", "content", e.Content, "err", err)
			skipped++
			continue
		}
		status := e.WordStatus()
		if status == "" {
			status = wordtree.StatusNew
		}
		if !status.Stored() {
			logger.Warn("skipping vocabulary entry", "content", e.Content, "status", status)
			skipped++
			continue
		}
		err = bw.Submit(func(ctx context.Context, tx *sql.Tx) error {
			if _, err := db.UpsertWord(ctx, tx, languageID, shape, e.Content, status); err != nil {
				return fmt.Errorf("failed to upsert %q: %w", e.Content, err)
			}
			return nil
		})
		if err != nil {
			submitErr = err
			break
		}
	}
	closeErr := bw.Close()
	written := int(bw.Committed())
	if skipped > 0 {
		logger.Info("vocabulary import skipped entries", "skipped", skipped)
	}
	return written, errors.Join(submitErr, closeErr)
}
