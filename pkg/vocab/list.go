package vocab

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lingua-immerse/lingua-immerse/pkg/segment"
	"github.com/lingua-immerse/lingua-immerse/pkg/wordtree"
)

// Entry is one word or multiword of a list file.
type Entry struct {
	Content string `yaml:"content"`
	// Status defaults to "new".
	Status string `yaml:"status,omitempty"`
}

// WordStatus returns the parsed status. Entries returned by Parse always
// carry a valid one.
func (e Entry) WordStatus() wordtree.Status {
	return wordtree.Status(e.Status)
}

// List is a vocabulary list file:
//
//	language: en
//	words:
//	  - content: New York
//	    status: learning
type List struct {
	Language string  `yaml:"language"`
	Words    []Entry `yaml:"words"`
}

// Parse decodes and validates a list.
func Parse(r io.Reader) (*List, error) {
	var l List
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&l); err != nil {
		if err == io.EOF {
			return &l, nil
		}
		return nil, fmt.Errorf("decode vocabulary list: %w", err)
	}
	l.Language = strings.TrimSpace(l.Language)
	for i := range l.Words {
		e := &l.Words[i]
		if strings.TrimSpace(e.Content) == "" {
			return nil, fmt.Errorf("word %d: content must be non-empty", i+1)
		}
		if e.Status == "" {
			e.Status = string(wordtree.StatusNew)
			continue
		}
		st, err := wordtree.ParseStatus(e.Status)
		if err != nil {
			return nil, fmt.Errorf("word %d (%q): %w", i+1, e.Content, err)
		}
		e.Status = string(st)
	}
	return &l, nil
}

// LoadFile reads a list from path.
func LoadFile(path string) (*List, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	l, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}

// Fill adds every entry of the list to m.
func (l *List) Fill(m *Memory, languageID int64, seg *segment.Segmenter) (int, error) {
	for _, e := range l.Words {
		if err := m.Add(languageID, seg, e.Content, e.WordStatus()); err != nil {
			return 0, fmt.Errorf("add %q: %w", e.Content, err)
		}
	}
	return len(l.Words), nil
}
