// Package rangeop applies range-addressed edits to a forest.
//
// Every operation takes a forest and a Selection and returns a new forest.
// The input is never modified; only the ancestors of changed leaves are
// rebuilt.
package rangeop

import (
	"fmt"

	"github.com/kobzarvs/qdoc/internal/ast"
)

// Selection addresses a range by two (path, offset) points. An offset into
// a leaf counts grapheme clusters of its content; an offset into a
// container or the root (empty path) counts child boundaries.
type Selection struct {
	StartNode   ast.Path `json:"startNode" yaml:"startNode"`
	StartOffset int      `json:"startOffset" yaml:"startOffset"`
	EndNode     ast.Path `json:"endNode" yaml:"endNode"`
	EndOffset   int      `json:"endOffset" yaml:"endOffset"`
	Collapsed   bool     `json:"collapsed" yaml:"collapsed"`
}

// Caret returns a collapsed selection at (path, offset).
func Caret(path ast.Path, offset int) Selection {
	return Selection{StartNode: path, StartOffset: offset, EndNode: path, EndOffset: offset, Collapsed: true}
}

// span is the extent of a leaf in character coordinates, where every leaf
// counts its full grapheme length.
type span struct {
	ast.Leaf
	start, end int
}

func layout(f ast.Forest) []span {
	var out []span
	pos := 0
	for _, l := range f.Leaves() {
		n := l.Node.Len()
		out = append(out, span{Leaf: l, start: pos, end: pos + n})
		pos += n
	}
	return out
}

// point is a resolved selection end.
type point struct {
	pos int
	// atomic is set when the point lies strictly inside an atomic leaf.
	atomic ast.Path
}

// resolve maps (path, offset) to a character position. A path that does not
// address a node, or an offset outside it, makes the selection stale.
func resolve(f ast.Forest, spans []span, path ast.Path, offset int) (point, error) {
	if len(path) > 0 {
		n, err := f.NodeAt(path)
		if err != nil {
			return point{}, fmt.Errorf("%w: %w", ast.ErrAmbiguous, err)
		}
		if !n.IsContainer() {
			if offset < 0 || offset > n.Len() {
				return point{}, fmt.Errorf("%w: offset %d outside %s leaf %v of length %d", ast.ErrAmbiguous, offset, n.Kind, path, n.Len())
			}
			p := point{pos: subtreeStart(spans, path) + offset}
			if n.IsAtomic() && offset > 0 && offset < n.Len() {
				p.atomic = path
			}
			return p, nil
		}
	}

	children, err := f.ChildrenAt(path)
	if err != nil {
		return point{}, fmt.Errorf("%w: %w", ast.ErrAmbiguous, err)
	}
	if offset < 0 || offset > len(children) {
		return point{}, fmt.Errorf("%w: offset %d outside container %v with %d children", ast.ErrAmbiguous, offset, path, len(children))
	}
	if offset < len(children) {
		return point{pos: subtreeStart(spans, path.Child(offset))}, nil
	}
	return point{pos: subtreeEnd(spans, path)}, nil
}

// subtreeStart is the position of the first character at or after p.
func subtreeStart(spans []span, p ast.Path) int {
	pos := 0
	for _, s := range spans {
		if s.Path.Compare(p) >= 0 {
			break
		}
		pos = s.end
	}
	return pos
}

// subtreeEnd is the position just past the last character inside p. The
// root path covers the whole forest.
func subtreeEnd(spans []span, p ast.Path) int {
	pos := subtreeStart(spans, p)
	for _, s := range spans {
		if hasPrefix(s.Path, p) {
			pos = s.end
		}
	}
	return pos
}

func hasPrefix(p, prefix ast.Path) bool {
	if len(p) < len(prefix) {
		return false
	}
	for i := range prefix {
		if p[i] != prefix[i] {
			return false
		}
	}
	return true
}

func samePath(a, b ast.Path) bool {
	return len(a) == len(b) && hasPrefix(a, b)
}
