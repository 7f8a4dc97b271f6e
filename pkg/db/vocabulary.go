package db

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/lingua-immerse/lingua-immerse/pkg/wordtree"
)

// lookupChunk bounds the number of keys bound into one IN list. SQLite's
// default limit on host parameters is 999 on older builds.
const lookupChunk = 500

// Vocabulary reads the words table for the word tree engine.
type Vocabulary struct {
	db DBExecutor
}

// NewVocabulary returns a wordtree.Vocabulary backed by db.
func NewVocabulary(db DBExecutor) *Vocabulary {
	return &Vocabulary{db: db}
}

var _ wordtree.Vocabulary = (*Vocabulary)(nil)

// LookupWords implements wordtree.Vocabulary with two queries per chunk of
// keys: single words by content key, and multiword heads by head key.
func (v *Vocabulary) LookupWords(ctx context.Context, languageID int64, keys []string) (map[string]wordtree.WordInfo, error) {
	out := make(map[string]wordtree.WordInfo)
	for start := 0; start < len(keys); start += lookupChunk {
		end := min(start+lookupChunk, len(keys))
		chunk := keys[start:end]

		err := v.each(ctx, sq.Select("content_key", "status").From("words").
			Where(sq.Eq{"language_id": languageID, "token_count": 1, "content_key": chunk}),
			func(scan func(...interface{}) error) error {
				var key, status string
				if err := scan(&key, &status); err != nil {
					return err
				}
				info := out[key]
				info.Status = wordtree.Status(status)
				out[key] = info
				return nil
			})
		if err != nil {
			return nil, fmt.Errorf("lookup words: %w", err)
		}

		err = v.each(ctx, sq.Select("head_key").Distinct().From("words").
			Where(sq.Eq{"language_id": languageID, "head_key": chunk}).
			Where(sq.NotEq{"token_count": 1}),
			func(scan func(...interface{}) error) error {
				var key string
				if err := scan(&key); err != nil {
					return err
				}
				info := out[key]
				info.MultiwordHead = true
				out[key] = info
				return nil
			})
		if err != nil {
			return nil, fmt.Errorf("lookup multiword heads: %w", err)
		}
	}
	return out, nil
}

// LookupMultiwordCandidates implements wordtree.Vocabulary. Candidates come
// back in registration order.
func (v *Vocabulary) LookupMultiwordCandidates(ctx context.Context, languageID int64, headKey string) ([]wordtree.Candidate, error) {
	var out []wordtree.Candidate
	err := v.each(ctx, sq.Select("content", "status", "token_count").From("words").
		Where(sq.Eq{"language_id": languageID, "head_key": headKey}).
		Where(sq.NotEq{"token_count": 1}).
		OrderBy("id"),
		func(scan func(...interface{}) error) error {
			var c wordtree.Candidate
			var status string
			if err := scan(&c.Content, &status, &c.ItemCount); err != nil {
				return err
			}
			c.Status = wordtree.Status(status)
			out = append(out, c)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("lookup multiword candidates: %w", err)
	}
	return out, nil
}

func (v *Vocabulary) each(ctx context.Context, q sq.SelectBuilder, fn func(scan func(...interface{}) error) error) error {
	query, args, err := q.ToSql()
	if err != nil {
		return err
	}
	rows, err := v.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows.Scan); err != nil {
			return err
		}
	}
	return rows.Err()
}
