package ingest

import (
	"strings"
	"unicode/utf8"
)

// DefaultPageSize is the page size, in runes, used when none is configured.
const DefaultPageSize = 2000

// SplitPages cuts text into pages of at most maxRunes runes. Pages break
// after paragraph ends when possible, then after sentence ends, and only
// mid-sentence when a single sentence is longer than a page. Concatenating
// the pages yields text.
func SplitPages(text string, maxRunes int) []string {
	if maxRunes <= 0 {
		maxRunes = DefaultPageSize
	}
	var pages []string
	var cur strings.Builder
	curLen := 0
	flush := func() {
		if cur.Len() > 0 {
			pages = append(pages, cur.String())
			cur.Reset()
			curLen = 0
		}
	}
	for _, para := range splitAfter(text, isNewline) {
		for _, piece := range fit(para, maxRunes) {
			n := utf8.RuneCountInString(piece)
			if curLen > 0 && curLen+n > maxRunes {
				flush()
			}
			cur.WriteString(piece)
			curLen += n
		}
	}
	flush()
	return pages
}

// fit breaks a paragraph into pieces no longer than maxRunes.
func fit(para string, maxRunes int) []string {
	if utf8.RuneCountInString(para) <= maxRunes {
		return []string{para}
	}
	var out []string
	for _, s := range splitAfter(para, isSentenceEnd) {
		for utf8.RuneCountInString(s) > maxRunes {
			cut := 0
			for i := 0; i < maxRunes; i++ {
				_, size := utf8.DecodeRuneInString(s[cut:])
				cut += size
			}
			out = append(out, s[:cut])
			s = s[cut:]
		}
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// splitAfter cuts s after every maximal run of runes matching end, keeping
// trailing whitespace with the preceding piece.
func splitAfter(s string, end func(rune) bool) []string {
	var out []string
	start := 0
	inEnd := false
	for i, r := range s {
		switch {
		case end(r):
			inEnd = true
		case inEnd && isSpace(r):
		case inEnd:
			out = append(out, s[start:i])
			start = i
			inEnd = false
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

func isNewline(r rune) bool { return r == '\n' || r == '\r' }

func isSentenceEnd(r rune) bool {
	switch r {
	case '。', '！', '？', '.', '!', '?':
		return true
	}
	return false
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '　':
		return true
	}
	return false
}
