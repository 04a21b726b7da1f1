package doctree

import "sort"

// LineIndex maps byte offsets to 1-based line numbers.
type LineIndex struct {
	starts []int // Offset of the first byte of each line
}

// NewLineIndex scans text once and records every line start.
func NewLineIndex(text string) *LineIndex {
	starts := make([]int, 1, 64)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{starts: starts}
}

// Line returns the 1-based line containing offset pos.
func (li *LineIndex) Line(pos int) int {
	if li == nil || pos < 0 {
		return 0
	}
	return sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > pos })
}

// Count returns the number of lines.
func (li *LineIndex) Count() int {
	return len(li.starts)
}
