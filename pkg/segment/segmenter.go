package segment

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

// Segmenter bundles everything language specific about segmentation:
// the boundary classifier, an optional word splitter and the casing tag
// used for lookup keys.
type Segmenter struct {
	Code       string
	Tag        language.Tag
	Classifier *Classifier
	Splitter   Splitter
}

// NewSegmenter returns a segmenter using the default table and no splitter.
func NewSegmenter(code string) *Segmenter {
	return &Segmenter{
		Code:       code,
		Tag:        ParseTag(code),
		Classifier: DefaultClassifier(),
	}
}

// Itemize classifies text and, when a splitter is set, breaks word runs
// into the pieces it reports. Separator runs are never split.
func (s *Segmenter) Itemize(text string) []Item {
	items := s.Classifier.Itemize(text)
	if s.Splitter == nil {
		return items
	}
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Kind != KindWord {
			out = append(out, it)
			continue
		}
		for _, piece := range s.Splitter.Split(it.Content) {
			out = append(out, Item{Content: piece, Kind: KindWord})
		}
	}
	return out
}

// CountWords returns the number of word items in text.
func (s *Segmenter) CountWords(text string) int {
	return CountWords(s.Itemize(text))
}

// Key returns the lookup key for content in this language.
func (s *Segmenter) Key(content string) string {
	return Key(s.Tag, content)
}

// Shape describes how a vocabulary entry segments: its lookup key, the key
// of its first word item and the number of items it spans.
type Shape struct {
	Key        string
	HeadKey    string
	TokenCount int
}

// Shape itemizes content the same way page text is itemized, so stored
// multiword records line up with page items.
func (s *Segmenter) Shape(content string) (Shape, error) {
	items := s.Itemize(content)
	if len(items) == 0 {
		return Shape{}, fmt.Errorf("empty vocabulary entry")
	}
	if items[0].Kind != KindWord {
		return Shape{}, fmt.Errorf("vocabulary entry %q must start with a word", content)
	}
	return Shape{
		Key:        s.Key(content),
		HeadKey:    s.Key(items[0].Content),
		TokenCount: len(items),
	}, nil
}

// Registry hands out one Segmenter per language code. Segmenters are built
// lazily because the Japanese splitter loads a large dictionary.
type Registry struct {
	mu         sync.Mutex
	tables     map[string]Table
	segmenters map[string]*Segmenter
	// NewSplitter builds the splitter named by a table. Tests can replace it.
	NewSplitter func(name string) (Splitter, error)
}

// NewRegistry creates a registry over the given per-language tables.
func NewRegistry(tables map[string]Table) *Registry {
	if tables == nil {
		tables = make(map[string]Table)
	}
	return &Registry{
		tables:      tables,
		segmenters:  make(map[string]*Segmenter),
		NewSplitter: defaultSplitter,
	}
}

func defaultSplitter(name string) (Splitter, error) {
	switch name {
	case "kagome":
		return NewKagomeSplitter()
	default:
		return nil, fmt.Errorf("unknown splitter %q", name)
	}
}

// For returns the segmenter for a language code. Japanese gets the kagome
// splitter unless its table sets split to "none".
func (r *Registry) For(code string) (*Segmenter, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.segmenters[code]; ok {
		return s, nil
	}
	s := NewSegmenter(code)
	t, ok := r.tables[code]
	if ok {
		s.Classifier = t.Classifier()
	}
	if code == "ja" && t.Split == "" {
		t.Split = "kagome"
	}
	if t.Split != "" && t.Split != "none" {
		sp, err := r.NewSplitter(t.Split)
		if err != nil {
			return nil, fmt.Errorf("segmenter %s: %w", code, err)
		}
		s.Splitter = sp
	}
	r.segmenters[code] = s
	return s, nil
}
