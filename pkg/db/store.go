package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
)

func notFound(err error, what string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	return err
}

// CreateOrGetLanguage returns the id of the language called name, creating it
// if needed. A non-empty code replaces the stored one.
func CreateOrGetLanguage(ctx context.Context, db DBExecutor, name, code string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("language name must be non-empty")
	}
	var id int64
	err := db.QueryRowContext(ctx, `INSERT INTO languages (name, code) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET
		  code = COALESCE(NULLIF(excluded.code, ''), languages.code)
		RETURNING id`, name, strings.TrimSpace(code)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert language: %w", err)
	}
	return id, nil
}

const languageColumns = `id, name, code, created_at`

func scanLanguage(row interface{ Scan(...interface{}) error }) (Language, error) {
	var l Language
	var created int64
	if err := row.Scan(&l.ID, &l.Name, &l.Code, &created); err != nil {
		return Language{}, err
	}
	l.CreatedAt = time.Unix(created, 0).UTC()
	return l, nil
}

// GetLanguage returns the language with the given id.
func GetLanguage(ctx context.Context, db DBExecutor, id int64) (Language, error) {
	l, err := scanLanguage(db.QueryRowContext(ctx, `SELECT `+languageColumns+` FROM languages WHERE id = ?`, id))
	if err != nil {
		return Language{}, notFound(err, "language", id)
	}
	return l, nil
}

// ListLanguages returns all languages ordered by name.
func ListLanguages(ctx context.Context, db DBExecutor) ([]Language, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+languageColumns+` FROM languages ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Language
	for rows.Next() {
		l, err := scanLanguage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// PageLanguage returns the language of the text a page belongs to.
func PageLanguage(ctx context.Context, db DBExecutor, pageID int64) (Language, error) {
	l, err := scanLanguage(db.QueryRowContext(ctx, `SELECT l.id, l.name, l.code, l.created_at
		FROM pages p
		JOIN texts t ON t.id = p.text_id
		JOIN languages l ON l.id = t.language_id
		WHERE p.id = ?`, pageID))
	if err != nil {
		return Language{}, notFound(err, "page", pageID)
	}
	return l, nil
}

// CreateText inserts a text with no pages.
func CreateText(ctx context.Context, db DBExecutor, languageID int64, title, sourceURL string) (int64, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return 0, fmt.Errorf("title must be non-empty")
	}
	res, err := db.ExecContext(ctx, `INSERT INTO texts (language_id, title, source_url) VALUES (?, ?, ?)`,
		languageID, title, sourceURL)
	if err != nil {
		return 0, fmt.Errorf("insert text: %w", err)
	}
	return res.LastInsertId()
}

const textColumns = `id, language_id, title, source_url, last_ingested_page, created_at`

func scanText(row interface{ Scan(...interface{}) error }) (Text, error) {
	var t Text
	var created int64
	if err := row.Scan(&t.ID, &t.LanguageID, &t.Title, &t.SourceURL, &t.LastIngestedPage, &created); err != nil {
		return Text{}, err
	}
	t.CreatedAt = time.Unix(created, 0).UTC()
	return t, nil
}

// GetText returns the text with the given id.
func GetText(ctx context.Context, db DBExecutor, id int64) (Text, error) {
	t, err := scanText(db.QueryRowContext(ctx, `SELECT `+textColumns+` FROM texts WHERE id = ?`, id))
	if err != nil {
		return Text{}, notFound(err, "text", id)
	}
	return t, nil
}

// ListTexts returns the texts of a language, newest first.
func ListTexts(ctx context.Context, db DBExecutor, languageID int64) ([]Text, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+textColumns+` FROM texts WHERE language_id = ? ORDER BY id DESC`, languageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Text
	for rows.Next() {
		t, err := scanText(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetTextProgress returns the index of the last ingested page of a text.
func GetTextProgress(ctx context.Context, db DBExecutor, textID int64) (int, error) {
	var index int
	err := db.QueryRowContext(ctx, "SELECT last_ingested_page FROM texts WHERE id = ?", textID).Scan(&index)
	if err != nil {
		return 0, notFound(err, "text", textID)
	}
	return index, nil
}

// UpdateTextProgress records the index of the last ingested page.
func UpdateTextProgress(ctx context.Context, db DBExecutor, textID int64, index int) error {
	_, err := db.ExecContext(ctx, "UPDATE texts SET last_ingested_page = ? WHERE id = ?", index, textID)
	return err
}

// AddPage stores page index of a text, replacing an existing page with the same index.
func AddPage(ctx context.Context, db DBExecutor, textID int64, index int, content string, wordCount int) (int64, error) {
	if textID <= 0 {
		return 0, fmt.Errorf("textID must be positive")
	}
	var id int64
	err := db.QueryRowContext(ctx, `INSERT INTO pages (text_id, page_index, content, word_count)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(text_id, page_index) DO UPDATE SET
		  content = excluded.content,
		  word_count = excluded.word_count
		RETURNING id`, textID, index, content, wordCount).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert page %d: %w", index, err)
	}
	return id, nil
}

const pageColumns = `id, text_id, page_index, content, word_count`

func scanPage(row interface{ Scan(...interface{}) error }) (Page, error) {
	var p Page
	err := row.Scan(&p.ID, &p.TextID, &p.Index, &p.Content, &p.WordCount)
	return p, err
}

// GetPage returns the page with the given id.
func GetPage(ctx context.Context, db DBExecutor, id int64) (Page, error) {
	p, err := scanPage(db.QueryRowContext(ctx, `SELECT `+pageColumns+` FROM pages WHERE id = ?`, id))
	if err != nil {
		return Page{}, notFound(err, "page", id)
	}
	return p, nil
}

// ListPages returns the pages of a text in reading order.
func ListPages(ctx context.Context, db DBExecutor, textID int64) ([]Page, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+pageColumns+` FROM pages WHERE text_id = ? ORDER BY page_index`, textID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// PageEdit lists the page fields to change. nil fields are left alone.
type PageEdit struct {
	Content   *string
	WordCount *int
}

// EditPage applies a partial update and returns the resulting page.
func EditPage(ctx context.Context, db DBExecutor, id int64, edit PageEdit) (Page, error) {
	set := map[string]interface{}{}
	if edit.Content != nil {
		set["content"] = *edit.Content
	}
	if edit.WordCount != nil {
		set["word_count"] = *edit.WordCount
	}
	if len(set) == 0 {
		return GetPage(ctx, db, id)
	}

	query, args, err := sq.Update("pages").SetMap(set).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return Page{}, err
	}
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return Page{}, fmt.Errorf("update page %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return Page{}, fmt.Errorf("page %d: %w", id, ErrNotFound)
	}
	return GetPage(ctx, db, id)
}
