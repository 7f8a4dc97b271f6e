package segment

import (
	"strings"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// Splitter subdivides a word run into smaller word runs. Implementations must
// return pieces that concatenate back to the run.
type Splitter interface {
	Split(run string) []string
}

// KagomeSplitter finds word boundaries in Japanese runs using the IPA dictionary.
// Only surfaces are used; readings and parts of speech are ignored.
type KagomeSplitter struct {
	t *tokenizer.Tokenizer
}

// NewKagomeSplitter loads the IPA dictionary and builds a tokenizer.
func NewKagomeSplitter() (*KagomeSplitter, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return &KagomeSplitter{t: t}, nil
}

// Split returns the token surfaces of run. If the surfaces do not rebuild the
// run exactly, the run is returned whole.
func (k *KagomeSplitter) Split(run string) []string {
	tokens := k.t.Tokenize(run)
	pieces := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if token.Class == tokenizer.DUMMY || token.Surface == "" {
			continue
		}
		pieces = append(pieces, token.Surface)
	}
	if len(pieces) == 0 || strings.Join(pieces, "") != run {
		return []string{run}
	}
	return pieces
}
