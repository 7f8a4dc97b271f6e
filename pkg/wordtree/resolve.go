package wordtree

import (
	"context"

	"github.com/lingua-immerse/lingua-immerse/pkg/segment"
)

// entry is an item annotated with its vocabulary data. After collapsing,
// an entry may instead carry a matched multiword.
type entry struct {
	item               segment.Item
	status             Status
	potentialMultiword bool
	multiword          *Multiword
}

// resolve looks up every word item in one batched call. Separators pass
// through without a status.
func (e *Engine) resolve(ctx context.Context, items []segment.Item, languageID int64) ([]entry, error) {
	entries := make([]entry, len(items))
	var keys []string
	seen := make(map[string]struct{})
	for i, it := range items {
		entries[i].item = it
		if it.Kind != segment.KindWord {
			continue
		}
		k := e.seg.Key(it.Content)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return entries, nil
	}

	found, err := e.vocab.LookupWords(ctx, languageID, keys)
	if err != nil {
		return nil, &LookupError{Op: "lookup words", LanguageID: languageID, Err: err}
	}
	for i := range entries {
		en := &entries[i]
		if en.item.Kind != segment.KindWord {
			continue
		}
		info, ok := found[e.seg.Key(en.item.Content)]
		en.status = StatusUnknown
		if !ok {
			continue
		}
		if info.Status != "" {
			en.status = info.Status
		}
		en.potentialMultiword = info.MultiwordHead
	}
	return entries, nil
}
