package rangeop

import (
	"fmt"

	"github.com/kobzarvs/qdoc/internal/ast"
)

// Format is a style change. Boolean keys toggle and ignore Value; color keys
// set Value, and an empty Value clears the color.
type Format struct {
	Key   ast.StyleKey
	Value string
}

func Toggle(key ast.StyleKey) Format {
	return Format{Key: key}
}

// ApplyFormat applies format to every text leaf intersected by sel.
//
// Text leaves covered only in part are split into up to three siblings so
// that only the covered portion changes. Mention, custom and code leaves are
// never split or styled. A collapsed selection returns f unchanged. A
// boolean style is cleared when every covered text portion already has it,
// and set on all of them otherwise.
func ApplyFormat(f ast.Forest, sel Selection, format Format) (ast.Forest, error) {
	key, err := ast.ParseStyleKey(string(format.Key))
	if err != nil {
		return nil, err
	}
	spans := layout(f)
	start, err := resolve(f, spans, sel.StartNode, sel.StartOffset)
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	end, err := resolve(f, spans, sel.EndNode, sel.EndOffset)
	if err != nil {
		return nil, fmt.Errorf("end: %w", err)
	}
	if sel.Collapsed || start.pos == end.pos {
		return f, nil
	}
	if start.atomic != nil && samePath(start.atomic, end.atomic) {
		return nil, fmt.Errorf("%w: selection lies inside atomic leaf %v", ast.ErrAmbiguous, start.atomic)
	}
	from, to := start.pos, end.pos
	if from > to {
		from, to = to, from
	}

	value := format.Value
	if key.IsToggle() {
		covered, all := false, true
		for _, s := range spans {
			if s.Node.Kind != ast.KindText || max(s.start, from) >= min(s.end, to) {
				continue
			}
			covered = true
			if !s.Node.Styles.Has(key) {
				all = false
			}
		}
		if !covered {
			return f, nil
		}
		value = "true"
		if all {
			value = ""
		}
	}

	fm := formatter{from: from, to: to, key: key, value: value}
	out, _ := fm.nodes(f)
	return ast.Forest(out), nil
}

type formatter struct {
	from, to int
	key      ast.StyleKey
	value    string
	pos      int
}

// nodes rebuilds a child list, returning the input slice itself when
// nothing in it changed.
func (fm *formatter) nodes(in []*ast.Node) ([]*ast.Node, bool) {
	var out []*ast.Node
	changed := false
	for i, n := range in {
		var repl []*ast.Node
		if n.IsContainer() {
			if children, ok := fm.nodes(n.Children); ok {
				repl = []*ast.Node{n.WithChildren(children)}
			}
		} else {
			start := fm.pos
			fm.pos += n.Len()
			if n.Kind == ast.KindText {
				repl = fm.split(n, start)
			}
		}
		if repl != nil && !changed {
			changed = true
			out = make([]*ast.Node, 0, len(in)+2)
			out = append(out, in[:i]...)
		}
		switch {
		case repl != nil:
			out = append(out, repl...)
		case changed:
			out = append(out, n)
		}
	}
	if !changed {
		return in, false
	}
	return out, true
}

// split returns the replacement leaves for a text leaf starting at start,
// or nil when the leaf is outside the range or already has the style.
func (fm *formatter) split(n *ast.Node, start int) []*ast.Node {
	end := start + n.Len()
	lo, hi := max(start, fm.from), min(end, fm.to)
	if lo >= hi {
		return nil
	}
	styles := n.Styles.With(fm.key, fm.value)
	if styles == n.Styles {
		return nil
	}
	head, rest := ast.SplitText(n.Content, lo-start)
	mid, tail := ast.SplitText(rest, hi-lo)

	out := make([]*ast.Node, 0, 3)
	if head != "" {
		out = append(out, n.WithContent(head))
	}
	out = append(out, ast.Text(mid, styles))
	if tail != "" {
		out = append(out, n.WithContent(tail))
	}
	return out
}
