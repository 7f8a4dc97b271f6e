package wordtree

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/lingua-immerse/lingua-immerse/pkg/segment"
)

// Options configures an Engine.
type Options struct {
	// Segmenter itemizes page text and computes lookup keys.
	// nil means segment.NewSegmenter("") (default table, no splitter).
	Segmenter *segment.Segmenter
	// StartIndex is the first index handed out.
	StartIndex int
	// Order ranks multiword candidates sharing a head.
	Order Order
	// Logger receives warnings about bad vocabulary records. nil means log.Default().
	Logger *log.Logger
}

// Engine computes word trees against a vocabulary. It holds no per-call
// state and is safe for concurrent use if the vocabulary is.
type Engine struct {
	vocab Vocabulary
	seg   *segment.Segmenter
	opts  Options
	log   *log.Logger
}

// New creates an engine reading from vocab.
func New(vocab Vocabulary, opts Options) *Engine {
	e := &Engine{vocab: vocab, seg: opts.Segmenter, opts: opts, log: opts.Logger}
	if e.seg == nil {
		e.seg = segment.NewSegmenter("")
	}
	if e.log == nil {
		e.log = log.Default()
	}
	return e
}

// ComputeWordTree itemizes content, resolves every word against the
// vocabulary, collapses registered multiwords and numbers the result.
// Empty content gives an empty tree without any lookup. A vocabulary
// failure aborts the call with an error matching ErrVocabularyLookupFailed.
func (e *Engine) ComputeWordTree(ctx context.Context, content string, languageID int64) (*Tree, error) {
	if content == "" {
		return &Tree{NextIndex: e.opts.StartIndex}, nil
	}

	entries, err := e.resolve(ctx, e.seg.Itemize(content), languageID)
	if err != nil {
		return nil, err
	}
	entries, err = e.collapse(ctx, entries, languageID)
	if err != nil {
		return nil, err
	}

	nodes := buildNodes(entries)
	next := AssignIndexes(nodes, e.opts.StartIndex)
	return &Tree{Nodes: nodes, NextIndex: next}, nil
}

func buildNodes(entries []entry) []Node {
	nodes := make([]Node, 0, len(entries))
	for _, en := range entries {
		switch {
		case en.multiword != nil:
			nodes = append(nodes, en.multiword)
		case en.item.Kind == segment.KindSeparator:
			nodes = append(nodes, &Separator{Content: en.item.Content})
		default:
			nodes = append(nodes, &Word{Content: en.item.Content, Status: en.status, Kind: segment.KindWord})
		}
	}
	return nodes
}
