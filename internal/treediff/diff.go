// Package treediff computes patches between two forests.
//
// Patches follow JSON Patch sequential semantics: every path refers to the
// tree produced by the operations before it.
package treediff

import (
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/kobzarvs/qdoc/internal/ast"
)

type OpKind string

const (
	OpAdd     OpKind = "add"
	OpRemove  OpKind = "remove"
	OpReplace OpKind = "replace"
)

// Op is one patch operation. Value is nil for remove. Delta is set on a
// replace between two text leaves and holds the content change in
// diff-match-patch delta form relative to the old content.
type Op struct {
	Op    OpKind
	Path  ast.Path
	Value *ast.Node
	Delta string
}

type Patch []Op

// Diff returns a patch that turns from into to. Equal forests give an empty
// patch. Same-kind containers are diffed recursively; any other difference
// replaces the node.
func Diff(from, to ast.Forest) Patch {
	var p Patch
	diffNodes(from, to, nil, &p)
	return p
}

func diffNodes(from, to []*ast.Node, base ast.Path, out *Patch) {
	prefix := 0
	for prefix < len(from) && prefix < len(to) && from[prefix].Equal(to[prefix]) {
		prefix++
	}
	suffix := 0
	for suffix < len(from)-prefix && suffix < len(to)-prefix &&
		from[len(from)-1-suffix].Equal(to[len(to)-1-suffix]) {
		suffix++
	}
	fromMid := from[prefix : len(from)-suffix]
	toMid := to[prefix : len(to)-suffix]

	common := len(fromMid)
	if len(toMid) < common {
		common = len(toMid)
	}
	for k := 0; k < common; k++ {
		diffNode(fromMid[k], toMid[k], base.Child(prefix+k), out)
	}
	// Removals run from the highest index down so earlier indices stay valid.
	for k := len(fromMid) - 1; k >= common; k-- {
		*out = append(*out, Op{Op: OpRemove, Path: base.Child(prefix + k)})
	}
	for k := common; k < len(toMid); k++ {
		*out = append(*out, Op{Op: OpAdd, Path: base.Child(prefix + k), Value: toMid[k]})
	}
}

func diffNode(from, to *ast.Node, path ast.Path, out *Patch) {
	if from.Equal(to) {
		return
	}
	if from.IsContainer() && from.Kind == to.Kind && from.Level == to.Level {
		diffNodes(from.Children, to.Children, path, out)
		return
	}
	op := Op{Op: OpReplace, Path: path, Value: to}
	if from.Kind == ast.KindText && to.Kind == ast.KindText && from.Content != to.Content {
		op.Delta = textDelta(from.Content, to.Content)
	}
	*out = append(*out, op)
}

func textDelta(from, to string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(from, to, false)
	return dmp.DiffToDelta(dmp.DiffCleanupEfficiency(diffs))
}
