package db

import (
	"time"

	"github.com/lingua-immerse/lingua-immerse/pkg/wordtree"
)

// Language is a language the learner reads in.
type Language struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"createdAt"`
}

// Text is an imported document split into pages.
type Text struct {
	ID         int64  `json:"id"`
	LanguageID int64  `json:"languageId"`
	Title      string `json:"title"`
	SourceURL  string `json:"sourceUrl,omitempty"`
	// LastIngestedPage is the index of the last page written, -1 before the first.
	LastIngestedPage int       `json:"lastIngestedPage"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Page is one page of a text.
type Page struct {
	ID        int64  `json:"id"`
	TextID    int64  `json:"textId"`
	Index     int    `json:"index"`
	Content   string `json:"content"`
	WordCount int    `json:"wordCount"`
}

// Word is a registered vocabulary entry, single word or multiword.
type Word struct {
	ID         int64           `json:"id"`
	LanguageID int64           `json:"languageId"`
	Content    string          `json:"content"`
	ContentKey string          `json:"-"`
	HeadKey    string          `json:"-"`
	TokenCount int             `json:"tokenCount"`
	Status     wordtree.Status `json:"status"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// StatusChange is one row of a word's status history. OldStatus is empty
// for the registration and NewStatus is empty for a deletion.
type StatusChange struct {
	ID        int64           `json:"id"`
	WordID    int64           `json:"wordId"`
	Content   string          `json:"content"`
	OldStatus wordtree.Status `json:"oldStatus,omitempty"`
	NewStatus wordtree.Status `json:"newStatus,omitempty"`
	ChangedAt time.Time       `json:"changedAt"`
}
