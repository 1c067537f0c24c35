package rangeop

import (
	"fmt"

	"github.com/kobzarvs/qdoc/internal/ast"
)

// Caret positions are flat offsets over the leaves of a forest in document
// order. Text and code leaves count their grapheme clusters; an atomic leaf
// counts as a single unit so a caret can only sit before or after it.

// Units is the number of caret units a leaf occupies.
func Units(n *ast.Node) int {
	if n.IsAtomic() {
		return 1
	}
	return n.Len()
}

// Length is the number of caret units in f.
func Length(f ast.Forest) int {
	total := 0
	for _, l := range f.Leaves() {
		total += Units(l.Node)
	}
	return total
}

// Locate maps a flat caret offset to a leaf path and an offset in it. A
// position on the boundary between two leaves resolves to the end of the
// earlier one. An empty forest resolves offset 0 to the root.
func Locate(f ast.Forest, flat int) (ast.Path, int, error) {
	if flat < 0 {
		return nil, 0, fmt.Errorf("%w: caret %d", ast.ErrInvalidPath, flat)
	}
	leaves := f.Leaves()
	if len(leaves) == 0 {
		if flat == 0 {
			return ast.Path{}, 0, nil
		}
		return nil, 0, fmt.Errorf("%w: caret %d in empty document", ast.ErrInvalidPath, flat)
	}
	acc := 0
	for _, l := range leaves {
		u := Units(l.Node)
		if flat <= acc+u {
			off := flat - acc
			if l.Node.IsAtomic() && off > 0 {
				off = l.Node.Len()
			}
			return l.Path, off, nil
		}
		acc += u
	}
	return nil, 0, fmt.Errorf("%w: caret %d past end %d", ast.ErrInvalidPath, flat, acc)
}

// Offset is the inverse of Locate for a leaf point.
func Offset(f ast.Forest, path ast.Path, offset int) (int, error) {
	if len(path) == 0 {
		return 0, nil
	}
	acc := 0
	for _, l := range f.Leaves() {
		if l.Path.Compare(path) == 0 {
			if l.Node.IsAtomic() {
				if offset > 0 {
					return acc + 1, nil
				}
				return acc, nil
			}
			return acc + min(max(offset, 0), l.Node.Len()), nil
		}
		acc += Units(l.Node)
	}
	return 0, fmt.Errorf("%w: %v is not a leaf", ast.ErrInvalidPath, path)
}

// SelectionFromRange builds a selection between two flat caret offsets.
func SelectionFromRange(f ast.Forest, start, end int) (Selection, error) {
	sp, so, err := Locate(f, start)
	if err != nil {
		return Selection{}, err
	}
	ep, eo, err := Locate(f, end)
	if err != nil {
		return Selection{}, err
	}
	return Selection{
		StartNode:   sp,
		StartOffset: so,
		EndNode:     ep,
		EndOffset:   eo,
		Collapsed:   start == end,
	}, nil
}
