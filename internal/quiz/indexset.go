package quiz

import "sort"

// IndexSet is an immutable, sorted set of question indices.
type IndexSet []int

// Contains reports whether i is in the set.
func (s IndexSet) Contains(i int) bool {
	pos := sort.SearchInts(s, i)
	return pos < len(s) && s[pos] == i
}

// With returns a set that also holds i. The receiver is never modified.
func (s IndexSet) With(i int) IndexSet {
	pos := sort.SearchInts(s, i)
	if pos < len(s) && s[pos] == i {
		return s
	}
	out := make(IndexSet, 0, len(s)+1)
	out = append(out, s[:pos]...)
	out = append(out, i)
	return append(out, s[pos:]...)
}

func (s IndexSet) Len() int {
	return len(s)
}
