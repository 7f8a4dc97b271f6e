// Package wordtree turns page text into an indexed tree of lexical units:
// single words, separators and multiword entries registered by the learner.
package wordtree

import (
	"fmt"
	"strings"

	"github.com/lingua-immerse/lingua-immerse/pkg/segment"
)

// Status is the learning status of a lexical unit.
type Status string

const (
	StatusNew      Status = "new"
	StatusLearning Status = "learning"
	StatusLearned  Status = "learned"
	StatusKnown    Status = "known"
	StatusIgnored  Status = "ignored"
	// StatusUnknown marks words that have no vocabulary record yet.
	StatusUnknown Status = "unknown"
)

// Stored reports whether s is a status a vocabulary record can hold.
func (s Status) Stored() bool {
	switch s {
	case StatusNew, StatusLearning, StatusLearned, StatusKnown, StatusIgnored:
		return true
	}
	return false
}

// ParseStatus parses a stored status name, case-insensitively.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Stored() {
		return "", fmt.Errorf("invalid status %q", s)
	}
	return st, nil
}

// Node is one element of a word tree: *Word, *Multiword or *Separator.
type Node interface {
	// Text returns the exact source text covered by the node.
	Text() string
	node()
}

// Word is a single item. Inside a Multiword, absorbed separators are also
// kept as Words with Kind set to segment.KindSeparator.
type Word struct {
	Content string
	Status  Status
	Kind    segment.Kind
	Index   int
}

// Multiword is a registered multi-item vocabulary entry matched on the page.
// Its items are the contiguous page items it replaced.
type Multiword struct {
	Content string
	Status  Status
	Index   int
	Items   []*Word
}

// Separator is a top-level run of separator characters. It is kept for
// reconstruction and is not indexed.
type Separator struct {
	Content string
}

func (w *Word) Text() string      { return w.Content }
func (m *Multiword) Text() string { return m.Content }
func (s *Separator) Text() string { return s.Content }

func (*Word) node()      {}
func (*Multiword) node() {}
func (*Separator) node() {}

// Tree is the word tree of one page.
type Tree struct {
	Nodes []Node
	// NextIndex is the first index not used by this tree.
	NextIndex int
}

// String reconstructs the page text.
func (t *Tree) String() string {
	var b strings.Builder
	for _, n := range t.Nodes {
		b.WriteString(n.Text())
	}
	return b.String()
}

// Walk calls fn for every indexed node in pre-order: a multiword is visited
// before its items. Top-level separators are skipped.
func (t *Tree) Walk(fn func(index int, n Node)) {
	for _, n := range t.Nodes {
		switch n := n.(type) {
		case *Word:
			fn(n.Index, n)
		case *Multiword:
			fn(n.Index, n)
			for _, it := range n.Items {
				fn(it.Index, it)
			}
		}
	}
}

// Lookup returns the node with the given index.
func (t *Tree) Lookup(index int) (Node, bool) {
	var found Node
	t.Walk(func(i int, n Node) {
		if found == nil && i == index {
			found = n
		}
	})
	return found, found != nil
}
