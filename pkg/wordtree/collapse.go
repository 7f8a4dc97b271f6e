package wordtree

import (
	"context"
	"sort"
	"strings"
)

// Order selects how candidates sharing a head are tried.
type Order int

const (
	// SourceOrder tries candidates in the order the vocabulary returns them.
	SourceOrder Order = iota
	// LongestFirst tries candidates with more items first. Ties keep source order.
	LongestFirst
)

func (o Order) String() string {
	switch o {
	case SourceOrder:
		return "source"
	case LongestFirst:
		return "longest"
	}
	return "unknown"
}

// ParseOrder parses "source" or "longest". The empty string means SourceOrder.
func ParseOrder(s string) (Order, bool) {
	switch strings.ToLower(s) {
	case "", "source":
		return SourceOrder, true
	case "longest", "longest-first":
		return LongestFirst, true
	}
	return SourceOrder, false
}

// collapse replaces spans that spell a registered multiword with a single
// entry. Every flagged head is tried once and its flag is cleared; scanning
// resumes after an inserted multiword.
func (e *Engine) collapse(ctx context.Context, entries []entry, languageID int64) ([]entry, error) {
	cache := make(map[string][]Candidate)
	out := make([]entry, 0, len(entries))
	for i := 0; i < len(entries); {
		en := entries[i]
		if !en.potentialMultiword {
			out = append(out, en)
			i++
			continue
		}
		en.potentialMultiword = false

		head := e.seg.Key(en.item.Content)
		cands, ok := cache[head]
		if !ok {
			var err error
			cands, err = e.vocab.LookupMultiwordCandidates(ctx, languageID, head)
			if err != nil {
				return nil, &LookupError{Op: "lookup multiword candidates", LanguageID: languageID, Err: err}
			}
			cands = e.rank(cands)
			cache[head] = cands
		}

		mw := e.match(entries[i:], cands)
		if mw == nil {
			out = append(out, en)
			i++
			continue
		}
		out = append(out, entry{multiword: mw})
		i += len(mw.Items)
	}
	return out, nil
}

func (e *Engine) rank(cands []Candidate) []Candidate {
	if e.opts.Order != LongestFirst || len(cands) < 2 {
		return cands
	}
	ranked := make([]Candidate, len(cands))
	copy(ranked, cands)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].ItemCount > ranked[j].ItemCount
	})
	return ranked
}

// match returns the multiword built from the first candidate whose content
// equals the concatenation of the next ItemCount entries, or nil.
func (e *Engine) match(rest []entry, cands []Candidate) *Multiword {
	for _, c := range cands {
		if c.ItemCount < 2 {
			e.log.Warn("skipping multiword candidate",
				"err", ErrInvalidMultiwordRecord, "content", c.Content, "itemCount", c.ItemCount)
			continue
		}
		if c.ItemCount > len(rest) {
			continue
		}
		span := rest[:c.ItemCount]
		var b strings.Builder
		for _, en := range span {
			b.WriteString(en.item.Content)
		}
		if b.String() != c.Content {
			continue
		}

		items := make([]*Word, len(span))
		for k, en := range span {
			items[k] = &Word{Content: en.item.Content, Status: en.status, Kind: en.item.Kind}
		}
		return &Multiword{Content: c.Content, Status: c.Status, Items: items}
	}
	return nil
}
