package segment

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Key returns the lookup key for content: its lowercase form under the
// casing rules of tag (e.g. Turkish dotted/dotless i).
//
// A cases.Caser keeps state between calls, so a fresh one is made each time.
func Key(tag language.Tag, content string) string {
	return cases.Lower(tag).String(content)
}

// ParseTag parses a BCP 47 language code, falling back to language.Und.
func ParseTag(code string) language.Tag {
	if code == "" {
		return language.Und
	}
	tag, err := language.Parse(code)
	if err != nil {
		return language.Und
	}
	return tag
}
