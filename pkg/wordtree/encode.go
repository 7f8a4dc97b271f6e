package wordtree

import (
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/lingua-immerse/lingua-immerse/pkg/segment"
)

// Wire node types.
const (
	TypeWord      = "word"
	TypeMultiword = "multiword"
	TypeSeparator = "separator"
)

// WireNode is the serialized form of a node. Index is nil for top-level
// separators.
type WireNode struct {
	Type    string     `json:"type" msgpack:"type"`
	Content string     `json:"content" msgpack:"content"`
	Status  Status     `json:"status,omitempty" msgpack:"status,omitempty"`
	Index   *int       `json:"index,omitempty" msgpack:"index,omitempty"`
	Items   []WireNode `json:"items,omitempty" msgpack:"items,omitempty"`
}

// WireTree is the serialized form of a Tree.
type WireTree struct {
	Words     []WireNode `json:"words" msgpack:"words"`
	NextIndex int        `json:"nextIndex" msgpack:"nextIndex"`
}

// Wire converts the tree to its serialized form.
func (t *Tree) Wire() WireTree {
	wt := WireTree{Words: make([]WireNode, 0, len(t.Nodes)), NextIndex: t.NextIndex}
	for _, n := range t.Nodes {
		switch n := n.(type) {
		case *Word:
			wt.Words = append(wt.Words, wireWord(n))
		case *Multiword:
			idx := n.Index
			wn := WireNode{Type: TypeMultiword, Content: n.Content, Status: n.Status, Index: &idx}
			wn.Items = make([]WireNode, len(n.Items))
			for i, it := range n.Items {
				wn.Items[i] = wireWord(it)
			}
			wt.Words = append(wt.Words, wn)
		case *Separator:
			wt.Words = append(wt.Words, WireNode{Type: TypeSeparator, Content: n.Content})
		}
	}
	return wt
}

func wireWord(w *Word) WireNode {
	idx := w.Index
	typ := TypeWord
	if w.Kind == segment.KindSeparator {
		typ = TypeSeparator
	}
	return WireNode{Type: typ, Content: w.Content, Status: w.Status, Index: &idx}
}

// MarshalJSON encodes the wire form.
func (t *Tree) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Wire())
}

// EncodeMsgpack encodes the wire form.
func (t *Tree) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(t.Wire())
}
