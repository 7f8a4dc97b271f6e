package wordtree

import (
	"context"
	"errors"
	"fmt"
)

// WordInfo is what the vocabulary knows about one lookup key.
type WordInfo struct {
	// Status is empty when the key is only known as a multiword head.
	Status Status
	// MultiwordHead is set when some multiword of the language starts with the key.
	MultiwordHead bool
}

// Candidate is a multiword entry that starts with a given head.
type Candidate struct {
	Content   string
	Status    Status
	ItemCount int
}

// Vocabulary is the read side of the vocabulary store.
type Vocabulary interface {
	// LookupWords returns entries for the keys that are registered single
	// words or multiword heads. Missing keys are simply absent.
	LookupWords(ctx context.Context, languageID int64, keys []string) (map[string]WordInfo, error)
	// LookupMultiwordCandidates returns the multiwords whose head key is headKey,
	// in store order.
	LookupMultiwordCandidates(ctx context.Context, languageID int64, headKey string) ([]Candidate, error)
}

var (
	// ErrVocabularyLookupFailed is matched by every error caused by a failing Vocabulary.
	ErrVocabularyLookupFailed = errors.New("vocabulary lookup failed")
	// ErrInvalidMultiwordRecord is logged for candidates spanning fewer than two items.
	ErrInvalidMultiwordRecord = errors.New("invalid multiword record")
)

// LookupError wraps a Vocabulary failure.
type LookupError struct {
	Op         string
	LanguageID int64
	Err        error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s (language %d, %s): %v", ErrVocabularyLookupFailed, e.LanguageID, e.Op, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

func (e *LookupError) Is(target error) bool { return target == ErrVocabularyLookupFailed }
