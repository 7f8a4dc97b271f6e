package main

import (
	"testing"

	"github.com/lingua-immerse/lingua-immerse/pkg/wordtree"
)

func TestTreeOrder(t *testing.T) {
	tests := []struct {
		flag       string
		configured wordtree.Order
		want       wordtree.Order
		wantErr    bool
	}{
		{"", wordtree.LongestFirst, wordtree.LongestFirst, false},
		{"", wordtree.SourceOrder, wordtree.SourceOrder, false},
		{"source", wordtree.LongestFirst, wordtree.SourceOrder, false},
		{"longest", wordtree.SourceOrder, wordtree.LongestFirst, false},
		{"sideways", wordtree.SourceOrder, wordtree.SourceOrder, true},
	}
	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			got, err := treeOrder(tt.flag, tt.configured)
			if (err != nil) != tt.wantErr {
				t.Fatalf("treeOrder(%q) error = %v, wantErr %v", tt.flag, err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("treeOrder(%q) = %v, want %v", tt.flag, got, tt.want)
			}
		})
	}
}
