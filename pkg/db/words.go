package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lingua-immerse/lingua-immerse/pkg/segment"
	"github.com/lingua-immerse/lingua-immerse/pkg/wordtree"
)

// UpsertWord registers content for a language or changes the status of the
// entry with the same key. shape must come from the language's segmenter.
func UpsertWord(ctx context.Context, db DBExecutor, languageID int64, shape segment.Shape, content string, status wordtree.Status) (int64, error) {
	if strings.TrimSpace(content) == "" {
		return 0, fmt.Errorf("word must be non-empty")
	}
	if !status.Stored() {
		return 0, fmt.Errorf("invalid status %q", status)
	}
	var id int64
	err := db.QueryRowContext(ctx, `INSERT INTO words (language_id, content, content_key, head_key, token_count, status)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(language_id, content_key) DO UPDATE SET
		  content = excluded.content,
		  status = excluded.status,
		  updated_at = CAST(strftime('%s', 'now') AS INTEGER)
		RETURNING id`,
		languageID, content, shape.Key, shape.HeadKey, shape.TokenCount, string(status)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert word: %w", err)
	}
	return id, nil
}

const wordColumns = `id, language_id, content, content_key, head_key, token_count, status, created_at, updated_at`

func scanWord(row interface{ Scan(...interface{}) error }) (Word, error) {
	var w Word
	var status string
	var created, updated int64
	if err := row.Scan(&w.ID, &w.LanguageID, &w.Content, &w.ContentKey, &w.HeadKey, &w.TokenCount, &status, &created, &updated); err != nil {
		return Word{}, err
	}
	w.Status = wordtree.Status(status)
	w.CreatedAt = time.Unix(created, 0).UTC()
	w.UpdatedAt = time.Unix(updated, 0).UTC()
	return w, nil
}

// GetWord returns the word with the given id.
func GetWord(ctx context.Context, db DBExecutor, id int64) (Word, error) {
	w, err := scanWord(db.QueryRowContext(ctx, `SELECT `+wordColumns+` FROM words WHERE id = ?`, id))
	if err != nil {
		return Word{}, notFound(err, "word", id)
	}
	return w, nil
}

// SetWordStatus changes the status of a word. The status log is written by a trigger.
func SetWordStatus(ctx context.Context, db DBExecutor, id int64, status wordtree.Status) error {
	if !status.Stored() {
		return fmt.Errorf("invalid status %q", status)
	}
	res, err := db.ExecContext(ctx, `UPDATE words SET status = ?, updated_at = CAST(strftime('%s', 'now') AS INTEGER) WHERE id = ?`,
		string(status), id)
	if err != nil {
		return fmt.Errorf("update word %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("word %d: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteWord removes a word. Its history stays in the status log.
func DeleteWord(ctx context.Context, db DBExecutor, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM words WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete word %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("word %d: %w", id, ErrNotFound)
	}
	return nil
}

// StatusHistory returns the status changes of a word, oldest first.
func StatusHistory(ctx context.Context, db DBExecutor, wordID int64) ([]StatusChange, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, word_id, content, IFNULL(old_status, ''), IFNULL(new_status, ''), changed_at
		FROM status_log WHERE word_id = ? ORDER BY id`, wordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []StatusChange
	for rows.Next() {
		var c StatusChange
		var oldStatus, newStatus string
		var changed int64
		if err := rows.Scan(&c.ID, &c.WordID, &c.Content, &oldStatus, &newStatus, &changed); err != nil {
			return nil, err
		}
		c.OldStatus = wordtree.Status(oldStatus)
		c.NewStatus = wordtree.Status(newStatus)
		c.ChangedAt = time.Unix(changed, 0).UTC()
		out = append(out, c)
	}
	return out, rows.Err()
}
