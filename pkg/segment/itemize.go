package segment

// Item is a maximal run of either word characters or separators.
type Item struct {
	Content string
	Kind    Kind
}

// Itemize splits text with the default classifier.
func Itemize(text string) []Item {
	return DefaultClassifier().Itemize(text)
}

// Itemize scans text once and groups consecutive code points of the same kind.
// Items are substrings of text, so joining them gives back the input byte for byte,
// invalid UTF-8 included.
func (c *Classifier) Itemize(text string) []Item {
	if text == "" {
		return nil
	}
	items := make([]Item, 0, len(text)/4+1)
	start := 0
	var current Kind
	for i, r := range text {
		k := c.Classify(r)
		if i == 0 {
			current = k
			continue
		}
		if k != current {
			items = append(items, Item{Content: text[start:i], Kind: current})
			start = i
			current = k
		}
	}
	items = append(items, Item{Content: text[start:], Kind: current})
	return items
}

// Join concatenates item contents.
func Join(items []Item) string {
	n := 0
	for _, it := range items {
		n += len(it.Content)
	}
	buf := make([]byte, 0, n)
	for _, it := range items {
		buf = append(buf, it.Content...)
	}
	return string(buf)
}

// CountWords returns the number of word items.
func CountWords(items []Item) int {
	n := 0
	for _, it := range items {
		if it.Kind == KindWord {
			n++
		}
	}
	return n
}
