package treediff

import (
	"fmt"

	"github.com/kobzarvs/qdoc/internal/ast"
)

// Apply runs p against f in order and returns the resulting forest. f is
// not modified.
func Apply(f ast.Forest, p Patch) (ast.Forest, error) {
	for i, op := range p {
		parent, idx := op.Path.Parent()
		if idx < 0 {
			return nil, fmt.Errorf("op %d: %w: %s at root", i, ast.ErrInvalidPath, op.Op)
		}
		next, err := f.UpdateChildren(parent, func(children []*ast.Node) ([]*ast.Node, error) {
			return applyOp(children, idx, op)
		})
		if err != nil {
			return nil, fmt.Errorf("op %d (%s %v): %w", i, op.Op, op.Path, err)
		}
		f = next
	}
	return f, nil
}

func applyOp(children []*ast.Node, idx int, op Op) ([]*ast.Node, error) {
	limit := len(children)
	if op.Op == OpAdd {
		limit++
	}
	if idx >= limit {
		return nil, fmt.Errorf("%w: index %d out of range", ast.ErrInvalidPath, idx)
	}
	out := make([]*ast.Node, 0, len(children)+1)
	switch op.Op {
	case OpAdd:
		if op.Value == nil {
			return nil, fmt.Errorf("%w: add without value", ast.ErrMalformedInput)
		}
		out = append(out, children[:idx]...)
		out = append(out, op.Value)
		out = append(out, children[idx:]...)
	case OpRemove:
		out = append(out, children[:idx]...)
		out = append(out, children[idx+1:]...)
	case OpReplace:
		if op.Value == nil {
			return nil, fmt.Errorf("%w: replace without value", ast.ErrMalformedInput)
		}
		out = append(out, children...)
		out[idx] = op.Value
	default:
		return nil, fmt.Errorf("%w: unknown op %q", ast.ErrMalformedInput, op.Op)
	}
	return out, nil
}
