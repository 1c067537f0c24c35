// Package ast defines the tree representation of a rich-text document.
//
// Nodes are immutable once built. Operations that change a document build
// new nodes along the changed spine and share every untouched subtree, so a
// Forest value can be kept as a history snapshot without copying.
package ast

import "strings"

// Kind discriminates node variants.
type Kind string

const (
	KindText      Kind = "text"
	KindParagraph Kind = "paragraph"
	KindHeading   Kind = "heading"
	KindCode      Kind = "code"
	KindMention   Kind = "mention"
	KindCustom    Kind = "custom"
)

// Node is one element of the tree. Which fields are meaningful depends on
// Kind:
//
//	text      Content, Styles
//	paragraph Children
//	heading   Level, Children
//	code      Content, Language
//	mention   Content, ID
//	custom    Content, CustomData
type Node struct {
	Kind       Kind
	Content    string
	Styles     StyleSet
	Children   []*Node
	ID         string
	CustomData string
	Level      int
	Language   string
}

// Forest is the ordered sequence of top-level nodes of a document.
type Forest []*Node

func Text(content string, styles StyleSet) *Node {
	return &Node{Kind: KindText, Content: content, Styles: styles}
}

func Paragraph(children ...*Node) *Node {
	return &Node{Kind: KindParagraph, Children: children}
}

func Heading(level int, children ...*Node) *Node {
	return &Node{Kind: KindHeading, Level: level, Children: children}
}

func Code(language, content string) *Node {
	return &Node{Kind: KindCode, Language: language, Content: content}
}

func Mention(content, id string) *Node {
	return &Node{Kind: KindMention, Content: content, ID: id}
}

func Custom(content, customData string) *Node {
	return &Node{Kind: KindCustom, Content: content, CustomData: customData}
}

// IsContainer reports whether n holds children.
func (n *Node) IsContainer() bool {
	return n.Kind == KindParagraph || n.Kind == KindHeading
}

// IsAtomic reports whether n must never be split by range operations.
func (n *Node) IsAtomic() bool {
	return n.Kind == KindMention || n.Kind == KindCustom
}

// IsBlock reports whether n is a block-level node.
func (n *Node) IsBlock() bool {
	return n.IsContainer() || n.Kind == KindCode
}

// Len is the addressable length of a leaf in grapheme clusters. Containers
// have no length of their own.
func (n *Node) Len() int {
	if n.IsContainer() {
		return 0
	}
	return TextLen(n.Content)
}

// WithChildren returns a copy of n holding children.
func (n *Node) WithChildren(children []*Node) *Node {
	c := *n
	c.Children = children
	return &c
}

// WithContent returns a copy of n holding content.
func (n *Node) WithContent(content string) *Node {
	c := *n
	c.Content = content
	return &c
}

// WithStyles returns a copy of n holding styles.
func (n *Node) WithStyles(styles StyleSet) *Node {
	c := *n
	c.Styles = styles
	return &c
}

// Equal reports structural equality.
func (n *Node) Equal(o *Node) bool {
	if n == o {
		return true
	}
	if n == nil || o == nil {
		return false
	}
	if n.Kind != o.Kind || n.Content != o.Content || n.Styles != o.Styles ||
		n.ID != o.ID || n.CustomData != o.CustomData ||
		n.Level != o.Level || n.Language != o.Language {
		return false
	}
	return equalNodes(n.Children, o.Children)
}

// Equal reports structural equality of two forests.
func (f Forest) Equal(o Forest) bool {
	return equalNodes(f, o)
}

func equalNodes(a, b []*Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// PlainText concatenates the text content of n and its descendants.
func (n *Node) PlainText() string {
	if !n.IsContainer() {
		return n.Content
	}
	var sb strings.Builder
	for _, c := range n.Children {
		sb.WriteString(c.PlainText())
	}
	return sb.String()
}

// PlainText concatenates block texts separated by newlines.
func (f Forest) PlainText() string {
	var sb strings.Builder
	for i, n := range f {
		if i > 0 && (n.IsBlock() || f[i-1].IsBlock()) {
			sb.WriteByte('\n')
		}
		sb.WriteString(n.PlainText())
	}
	return sb.String()
}
