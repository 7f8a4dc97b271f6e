package segment

import "unicode"

// Kind tells whether an item is part of a lexical word or a separator run.
type Kind uint8

const (
	KindWord Kind = iota
	KindSeparator
)

func (k Kind) String() string {
	if k == KindSeparator {
		return "separator"
	}
	return "word"
}

// defaultSeparators is the fixed punctuation table shared by every language.
// Whitespace and decimal digits are handled by Classify directly.
const defaultSeparators = ` :;,.¿?¡!()[]{}'"-=` +
	"。、！？：；「」『』（）…＝・’“”—" +
	"\uFEFF"

// Classifier decides, per code point, whether it separates words.
// The zero value is not usable; use DefaultClassifier or Table.Classifier.
type Classifier struct {
	separators map[rune]struct{}
	wordChars  map[rune]struct{}
}

// DefaultClassifier returns the classifier built from the fixed table only.
func DefaultClassifier() *Classifier {
	return newClassifier("", "")
}

func newClassifier(extraSeparators, wordChars string) *Classifier {
	c := &Classifier{
		separators: make(map[rune]struct{}, len(defaultSeparators)+len(extraSeparators)),
		wordChars:  make(map[rune]struct{}, len(wordChars)),
	}
	for _, r := range defaultSeparators {
		c.separators[r] = struct{}{}
	}
	for _, r := range extraSeparators {
		c.separators[r] = struct{}{}
	}
	for _, r := range wordChars {
		c.wordChars[r] = struct{}{}
		delete(c.separators, r)
	}
	return c
}

// Classify returns KindSeparator for whitespace, digits and table punctuation.
// Anything else, including code points missing from every table, is a word character.
func (c *Classifier) Classify(r rune) Kind {
	if _, ok := c.wordChars[r]; ok {
		return KindWord
	}
	if _, ok := c.separators[r]; ok {
		return KindSeparator
	}
	if unicode.IsSpace(r) || unicode.IsDigit(r) {
		return KindSeparator
	}
	return KindWord
}
