// Package vocab holds vocabulary lists outside the database: an in-memory
// store usable as a wordtree.Vocabulary and YAML list files.
package vocab

import (
	"context"
	"sort"
	"sync"

	"github.com/tchap/go-patricia/v2/patricia"

	"github.com/lingua-immerse/lingua-immerse/pkg/segment"
	"github.com/lingua-immerse/lingua-immerse/pkg/wordtree"
)

// headSep joins a head key and a content key in the multiword trie so that
// all multiwords of one head share the prefix head+headSep.
const headSep = "\x00"

type memWord struct {
	content   string
	status    wordtree.Status
	itemCount int
	seq       int
}

type memLanguage struct {
	words *patricia.Trie
	multi *patricia.Trie
}

// Memory is a vocabulary kept in patricia tries, one pair per language.
// Candidates come back in insertion order.
type Memory struct {
	mu    sync.RWMutex
	langs map[int64]*memLanguage
	seq   int
	size  int
}

// NewMemory returns an empty vocabulary.
func NewMemory() *Memory {
	return &Memory{langs: make(map[int64]*memLanguage)}
}

// Add registers content with status, replacing the status of an existing
// entry with the same key. seg must be the language's segmenter so that
// multiword shapes match page items.
func (m *Memory) Add(languageID int64, seg *segment.Segmenter, content string, status wordtree.Status) error {
	shape, err := seg.Shape(content)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	lang, ok := m.langs[languageID]
	if !ok {
		lang = &memLanguage{words: patricia.NewTrie(), multi: patricia.NewTrie()}
		m.langs[languageID] = lang
	}

	trie, key := lang.words, patricia.Prefix(shape.Key)
	if shape.TokenCount > 1 {
		trie, key = lang.multi, patricia.Prefix(shape.HeadKey+headSep+shape.Key)
	}
	if item := trie.Get(key); item != nil {
		w := item.(*memWord)
		w.content, w.status = content, status
		return nil
	}
	m.seq++
	m.size++
	trie.Insert(key, &memWord{content: content, status: status, itemCount: shape.TokenCount, seq: m.seq})
	return nil
}

// Len returns the number of entries over all languages.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.size
}

// LookupWords implements wordtree.Vocabulary.
func (m *Memory) LookupWords(_ context.Context, languageID int64, keys []string) (map[string]wordtree.WordInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]wordtree.WordInfo)
	lang, ok := m.langs[languageID]
	if !ok {
		return out, nil
	}
	for _, k := range keys {
		var info wordtree.WordInfo
		found := false
		if item := lang.words.Get(patricia.Prefix(k)); item != nil {
			info.Status = item.(*memWord).status
			found = true
		}
		if lang.multi.MatchSubtree(patricia.Prefix(k + headSep)) {
			info.MultiwordHead = true
			found = true
		}
		if found {
			out[k] = info
		}
	}
	return out, nil
}

// LookupMultiwordCandidates implements wordtree.Vocabulary.
func (m *Memory) LookupMultiwordCandidates(_ context.Context, languageID int64, headKey string) ([]wordtree.Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	lang, ok := m.langs[languageID]
	if !ok {
		return nil, nil
	}
	var found []*memWord
	err := lang.multi.VisitSubtree(patricia.Prefix(headKey+headSep), func(_ patricia.Prefix, item patricia.Item) error {
		found = append(found, item.(*memWord))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(found, func(i, j int) bool { return found[i].seq < found[j].seq })

	cands := make([]wordtree.Candidate, len(found))
	for i, w := range found {
		cands[i] = wordtree.Candidate{Content: w.content, Status: w.status, ItemCount: w.itemCount}
	}
	return cands, nil
}
