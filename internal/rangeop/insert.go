package rangeop

import (
	"fmt"

	"github.com/kobzarvs/qdoc/internal/ast"
)

// Payload carries the fields of a node built by InsertInlineNode. Which
// fields are used depends on the kind.
type Payload struct {
	Content    string
	ID         string
	CustomData string
	Styles     ast.StyleSet
}

// NewInline builds an inline leaf of kind from payload.
func NewInline(kind ast.Kind, payload Payload) (*ast.Node, error) {
	switch kind {
	case ast.KindMention:
		return ast.Mention(payload.Content, payload.ID), nil
	case ast.KindCustom:
		return ast.Custom(payload.Content, payload.CustomData), nil
	case ast.KindText:
		return ast.Text(payload.Content, payload.Styles), nil
	}
	return nil, fmt.Errorf("%w: %q is not an inline kind", ast.ErrAmbiguous, kind)
}

// InsertInlineNode inserts a new leaf at the start of sel. When the start
// names a leaf the node becomes the sibling right after it; when it names a
// container or the root it is inserted at child index StartOffset. Selected
// content is never removed.
func InsertInlineNode(f ast.Forest, sel Selection, kind ast.Kind, payload Payload) (ast.Forest, error) {
	node, err := NewInline(kind, payload)
	if err != nil {
		return nil, err
	}
	parent, index, err := insertionPoint(f, sel.StartNode, sel.StartOffset)
	if err != nil {
		return nil, err
	}
	out, err := f.UpdateChildren(parent, func(children []*ast.Node) ([]*ast.Node, error) {
		next := make([]*ast.Node, 0, len(children)+1)
		next = append(next, children[:index]...)
		next = append(next, node)
		return append(next, children[index:]...), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ast.ErrAmbiguous, err)
	}
	return out, nil
}

// insertionPoint resolves where InsertInlineNode puts its node: the parent
// container path and the child index.
func insertionPoint(f ast.Forest, path ast.Path, offset int) (ast.Path, int, error) {
	if len(path) > 0 {
		n, err := f.NodeAt(path)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %w", ast.ErrAmbiguous, err)
		}
		if !n.IsContainer() {
			if offset < 0 || offset > n.Len() {
				return nil, 0, fmt.Errorf("%w: offset %d outside %s leaf %v of length %d", ast.ErrAmbiguous, offset, n.Kind, path, n.Len())
			}
			parent, i := path.Parent()
			return parent, i + 1, nil
		}
	}
	children, err := f.ChildrenAt(path)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ast.ErrAmbiguous, err)
	}
	if offset < 0 || offset > len(children) {
		return nil, 0, fmt.Errorf("%w: offset %d outside container %v with %d children", ast.ErrAmbiguous, offset, path, len(children))
	}
	return path, offset, nil
}

// InsertedPath returns the path InsertInlineNode gives the new node for sel.
func InsertedPath(f ast.Forest, sel Selection) (ast.Path, error) {
	parent, index, err := insertionPoint(f, sel.StartNode, sel.StartOffset)
	if err != nil {
		return nil, err
	}
	return parent.Child(index), nil
}
