package wordtree

// AssignIndexes numbers nodes in pre-order starting at start and returns the
// next free index. A multiword takes its index before its items; top-level
// separators are not numbered.
func AssignIndexes(nodes []Node, start int) int {
	next := start
	for _, n := range nodes {
		switch n := n.(type) {
		case *Word:
			n.Index = next
			next++
		case *Multiword:
			n.Index = next
			next++
			for _, it := range n.Items {
				it.Index = next
				next++
			}
		}
	}
	return next
}
