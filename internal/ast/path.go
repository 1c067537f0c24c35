package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Path addresses a node by child indices from the forest root. The empty
// path names the root itself. A path is only meaningful against the forest
// it was computed for.
type Path []int

// Child returns p extended by i without aliasing p.
func (p Path) Child(i int) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = i
	return out
}

// Parent returns the parent path and the index of p within it.
func (p Path) Parent() (Path, int) {
	if len(p) == 0 {
		return nil, -1
	}
	return p[:len(p)-1], p[len(p)-1]
}

// Compare orders paths in document order (pre-order).
func (p Path) Compare(o Path) int {
	for i := 0; i < len(p) && i < len(o); i++ {
		if p[i] != o[i] {
			if p[i] < o[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(p) < len(o):
		return -1
	case len(p) > len(o):
		return 1
	}
	return 0
}

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, v := range p {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// NodeAt returns the node addressed by p. The root path has no node.
func (f Forest) NodeAt(p Path) (*Node, error) {
	if len(p) == 0 {
		return nil, fmt.Errorf("%w: root has no node", ErrInvalidPath)
	}
	children := []*Node(f)
	var n *Node
	for depth, i := range p {
		if i < 0 || i >= len(children) {
			return nil, fmt.Errorf("%w: %v (index %d out of range at depth %d)", ErrInvalidPath, p, i, depth)
		}
		n = children[i]
		children = n.Children
	}
	return n, nil
}

// ChildrenAt returns the children of the container addressed by p.
func (f Forest) ChildrenAt(p Path) ([]*Node, error) {
	if len(p) == 0 {
		return f, nil
	}
	n, err := f.NodeAt(p)
	if err != nil {
		return nil, err
	}
	if !n.IsContainer() {
		return nil, fmt.Errorf("%w: %v is a %s leaf", ErrInvalidPath, p, n.Kind)
	}
	return n.Children, nil
}

// UpdateChildren returns a forest in which the children of the container at
// p are replaced by fn's result. Only the spine from the root to p is
// rebuilt. fn must not modify the slice it receives.
func (f Forest) UpdateChildren(p Path, fn func([]*Node) ([]*Node, error)) (Forest, error) {
	out, err := updateChildren(f, p, fn)
	if err != nil {
		return nil, err
	}
	return Forest(out), nil
}

func updateChildren(nodes []*Node, p Path, fn func([]*Node) ([]*Node, error)) ([]*Node, error) {
	if len(p) == 0 {
		return fn(nodes)
	}
	i := p[0]
	if i < 0 || i >= len(nodes) {
		return nil, fmt.Errorf("%w: index %d out of range", ErrInvalidPath, i)
	}
	n := nodes[i]
	if !n.IsContainer() {
		return nil, fmt.Errorf("%w: %s leaf has no children", ErrInvalidPath, n.Kind)
	}
	children, err := updateChildren(n.Children, p[1:], fn)
	if err != nil {
		return nil, err
	}
	out := make([]*Node, len(nodes))
	copy(out, nodes)
	out[i] = n.WithChildren(children)
	return out, nil
}

// Walk visits every node in document order. Returning false from fn skips
// the node's children.
func (f Forest) Walk(fn func(p Path, n *Node) bool) {
	walk(f, nil, fn)
}

func walk(nodes []*Node, base Path, fn func(Path, *Node) bool) {
	for i, n := range nodes {
		p := base.Child(i)
		if fn(p, n) && n.IsContainer() {
			walk(n.Children, p, fn)
		}
	}
}

// Leaf is a leaf node together with its path.
type Leaf struct {
	Path Path
	Node *Node
}

// Leaves lists every leaf in document order.
func (f Forest) Leaves() []Leaf {
	var out []Leaf
	f.Walk(func(p Path, n *Node) bool {
		if !n.IsContainer() {
			out = append(out, Leaf{Path: p, Node: n})
		}
		return true
	})
	return out
}
