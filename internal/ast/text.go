package ast

import "github.com/rivo/uniseg"

// TextLen returns the number of grapheme clusters in s. Leaf offsets are
// counted in grapheme clusters so a split never lands inside a user-perceived
// character.
func TextLen(s string) int {
	return uniseg.GraphemeClusterCount(s)
}

// SplitText splits s before the grapheme cluster at offset off. Offsets are
// clamped to [0, TextLen(s)].
func SplitText(s string, off int) (string, string) {
	if off <= 0 {
		return "", s
	}
	g := uniseg.NewGraphemes(s)
	n := 0
	for g.Next() {
		if n == off {
			start, _ := g.Positions()
			return s[:start], s[start:]
		}
		n++
	}
	return s, ""
}

// SliceText returns the grapheme clusters of s in [from, to).
func SliceText(s string, from, to int) string {
	if to <= from {
		return ""
	}
	head, _ := SplitText(s, to)
	_, mid := SplitText(head, from)
	return mid
}
