// Package markup converts between host markup fragments and ast forests.
package markup

import (
	"context"
	stdhtml "html"
	"strconv"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	tshtml "github.com/smacker/go-tree-sitter/html"
	"golang.org/x/text/unicode/norm"

	"github.com/kobzarvs/qdoc/internal/ast"
	"github.com/kobzarvs/qdoc/internal/config"
)

// Parser turns markup into a forest. It never fails: elements it does not
// know degrade to text, and input tree-sitter cannot make sense of is kept
// as text.
type Parser struct {
	mu sync.Mutex
	ts *sitter.Parser

	bold        map[string]bool
	italic      map[string]bool
	underline   map[string]bool
	paragraph   map[string]bool
	code        map[string]bool
	breaks      map[string]bool
	transparent map[string]bool
	drop        map[string]bool

	mentionClass string
	customClass  string
	normalize    func(string) string
}

func NewParser(opts config.ParserOptions) *Parser {
	ts := sitter.NewParser()
	ts.SetLanguage(tshtml.GetLanguage())
	return &Parser{
		ts:           ts,
		bold:         tagSet(opts.BoldTags),
		italic:       tagSet(opts.ItalicTags),
		underline:    tagSet(opts.UnderlineTags),
		paragraph:    tagSet(opts.ParagraphTags),
		code:         tagSet(opts.CodeTags),
		breaks:       tagSet(opts.BreakTags),
		transparent:  tagSet(opts.TransparentTags),
		drop:         tagSet(opts.DropTags),
		mentionClass: opts.MentionClass,
		customClass:  opts.CustomClass,
		normalize:    normalizer(opts.Normalize),
	}
}

func tagSet(tags []string) map[string]bool {
	set := make(map[string]bool, len(tags))
	for _, t := range tags {
		set[strings.ToLower(strings.TrimSpace(t))] = true
	}
	return set
}

func normalizer(form string) func(string) string {
	switch strings.ToLower(form) {
	case "nfc":
		return norm.NFC.String
	case "nfd":
		return norm.NFD.String
	case "nfkc":
		return norm.NFKC.String
	case "nfkd":
		return norm.NFKD.String
	}
	return func(s string) string { return s }
}

// Parse converts a markup fragment into a forest. Empty or whitespace-only
// input yields an empty forest.
func (p *Parser) Parse(markup string) ast.Forest {
	if strings.TrimSpace(markup) == "" {
		return ast.Forest{}
	}
	src := []byte(markup)

	p.mu.Lock()
	tree, err := p.ts.ParseCtx(context.Background(), nil, src)
	p.mu.Unlock()
	if err != nil || tree == nil {
		return p.finishTop([]*ast.Node{ast.Text(p.normalize(stdhtml.UnescapeString(markup)), ast.StyleSet{})})
	}

	b := builder{p: p, src: src}
	root := tree.RootNode()
	return p.finishTop(b.children(root, 0, len(src), ast.StyleSet{}))
}

// finishTop drops whitespace-only top-level text that sits at either edge of
// the forest or next to a block. Spacing between inline runs is kept. Dropping
// one run can expose another, so it repeats until the forest stops shrinking.
func (p *Parser) finishTop(nodes []*ast.Node) ast.Forest {
	out := ast.Forest(p.coalesce(nodes))
	for {
		kept := make(ast.Forest, 0, len(out))
		for i, n := range out {
			if isBlank(n) && (i == 0 || i == len(out)-1 || out[i-1].IsBlock() || out[i+1].IsBlock()) {
				continue
			}
			kept = append(kept, n)
		}
		if len(kept) == len(out) {
			return kept
		}
		out = kept
	}
}

func isBlank(n *ast.Node) bool {
	return n.Kind == ast.KindText && strings.TrimSpace(n.Content) == ""
}

// coalesce merges adjacent text siblings with equal styles and normalizes
// the merged content.
func (p *Parser) coalesce(nodes []*ast.Node) []*ast.Node {
	out := make([]*ast.Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Kind == ast.KindText && len(out) > 0 {
			last := out[len(out)-1]
			if last.Kind == ast.KindText && last.Styles == n.Styles {
				out[len(out)-1] = last.WithContent(last.Content + n.Content)
				continue
			}
		}
		out = append(out, n)
	}
	for i, n := range out {
		if n.Kind == ast.KindText {
			if s := p.normalize(n.Content); s != n.Content {
				out[i] = n.WithContent(s)
			}
		}
	}
	return out
}

// inline flattens block nodes found inside a paragraph or heading.
func (p *Parser) inline(nodes []*ast.Node) []*ast.Node {
	out := make([]*ast.Node, 0, len(nodes))
	for _, n := range nodes {
		switch {
		case n.IsContainer():
			out = append(out, p.inline(n.Children)...)
		case n.Kind == ast.KindCode:
			out = append(out, ast.Text(n.Content, ast.StyleSet{}))
		default:
			out = append(out, n)
		}
	}
	return p.coalesce(out)
}

type builder struct {
	p   *Parser
	src []byte
}

type tagInfo struct {
	name  string
	attrs map[string]string

	// from and to span the opening tag in the source. broken marks a tag
	// tree-sitter had to close itself, as for the "<" in "a < b".
	from, to int
	broken   bool
}

func (t tagInfo) hasClass(class string) bool {
	if class == "" {
		return false
	}
	for _, c := range strings.Fields(t.attrs["class"]) {
		if c == class {
			return true
		}
	}
	return false
}

// children converts the content of parent that lies in [start, end). Text
// is cut from the source between child elements so whitespace survives.
func (b *builder) children(parent *sitter.Node, start, end int, styles ast.StyleSet) []*ast.Node {
	var out []*ast.Node
	b.scan(parent, start, end, func(from, to int) {
		if n := b.text(from, to, styles); n != nil {
			out = append(out, n)
		}
	}, func(c *sitter.Node) {
		out = append(out, b.node(c, styles)...)
	})
	return out
}

// scan walks the direct children of parent inside [start, end), reporting
// raw text gaps and structural children in source order.
func (b *builder) scan(parent *sitter.Node, start, end int, onText func(from, to int), onChild func(*sitter.Node)) {
	pos := start
	count := int(parent.ChildCount())
	for i := 0; i < count; i++ {
		c := parent.Child(i)
		if c == nil {
			continue
		}
		cs, ce := int(c.StartByte()), int(c.EndByte())
		if cs < start || ce > end || ce <= cs {
			continue
		}
		if !isStructural(c) {
			continue
		}
		if cs > pos {
			onText(pos, cs)
		}
		onChild(c)
		pos = ce
	}
	if end > pos {
		onText(pos, end)
	}
}

func isStructural(n *sitter.Node) bool {
	switch n.Type() {
	case "element", "script_element", "style_element", "comment", "doctype", "erroneous_end_tag":
		return true
	case "ERROR":
		return containsElement(n)
	}
	return false
}

func containsElement(n *sitter.Node) bool {
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		c := n.NamedChild(i)
		if c == nil {
			continue
		}
		if c.Type() == "element" || containsElement(c) {
			return true
		}
	}
	return false
}

func (b *builder) text(from, to int, styles ast.StyleSet) *ast.Node {
	if to <= from {
		return nil
	}
	s := stdhtml.UnescapeString(string(b.src[from:to]))
	if s == "" {
		return nil
	}
	return ast.Text(s, styles)
}

func (b *builder) node(n *sitter.Node, styles ast.StyleSet) []*ast.Node {
	switch n.Type() {
	case "element":
		return b.element(n, styles)
	case "ERROR":
		return b.children(n, int(n.StartByte()), int(n.EndByte()), styles)
	}
	return nil
}

// content returns the tag of an element and the byte range of its content.
func (b *builder) content(n *sitter.Node) (tagInfo, int, int) {
	var tag tagInfo
	start := int(n.StartByte())
	end := int(n.EndByte())
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		switch c.Type() {
		case "start_tag":
			tag = b.tag(c)
			start = int(c.EndByte())
		case "self_closing_tag":
			tag = b.tag(c)
			start = int(c.EndByte())
			end = start
		case "end_tag":
			if int(c.StartByte()) >= start {
				end = int(c.StartByte())
			}
		}
	}
	if end < start {
		end = start
	}
	return tag, start, end
}

func (b *builder) tag(n *sitter.Node) tagInfo {
	info := tagInfo{
		attrs: map[string]string{},
		from:  int(n.StartByte()),
		to:    int(n.EndByte()),
	}
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		if c.IsMissing() {
			info.broken = true
			continue
		}
		switch c.Type() {
		case "tag_name":
			info.name = strings.ToLower(c.Content(b.src))
		case "attribute":
			name, value := b.attribute(c)
			if name != "" {
				info.attrs[name] = value
			}
		}
	}
	return info
}

func (b *builder) attribute(n *sitter.Node) (string, string) {
	var name, value string
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		c := n.NamedChild(i)
		if c == nil {
			continue
		}
		switch c.Type() {
		case "attribute_name":
			name = strings.ToLower(c.Content(b.src))
		case "attribute_value":
			value = c.Content(b.src)
		case "quoted_attribute_value":
			if c.NamedChildCount() > 0 {
				value = c.NamedChild(0).Content(b.src)
			}
		}
	}
	return name, stdhtml.UnescapeString(value)
}

func (b *builder) element(n *sitter.Node, styles ast.StyleSet) []*ast.Node {
	tag, start, end := b.content(n)
	p := b.p
	if tag.broken {
		// A stray "<" is text, and so is whatever the bogus tag swallowed.
		out := []*ast.Node{}
		if t := b.text(tag.from, tag.to, styles); t != nil {
			out = append(out, t)
		}
		return append(out, b.children(n, start, end, styles)...)
	}
	if tag.name == "" || p.drop[tag.name] {
		return nil
	}

	if kind, ok := tag.attrs["data-block-type"]; ok {
		switch {
		case kind == "paragraph":
			return b.paragraph(n, start, end, styles.Merge(cssStyles(tag.attrs["style"])))
		case kind == "code":
			return b.codeBlock(n, tag, start, end)
		case headingLevel(kind) > 0:
			return b.heading(n, headingLevel(kind), start, end, styles.Merge(cssStyles(tag.attrs["style"])))
		}
	}

	switch {
	case tag.hasClass(p.mentionClass):
		content := p.normalize(b.flatten(n, start, end))
		if content == "" {
			return nil
		}
		return []*ast.Node{ast.Mention(content, tag.attrs["data-id"])}
	case tag.hasClass(p.customClass):
		content := p.normalize(b.flatten(n, start, end))
		if content == "" {
			return nil
		}
		return []*ast.Node{ast.Custom(content, tag.attrs["data-custom"])}
	}

	inner := styles.Merge(cssStyles(tag.attrs["style"]))
	switch {
	case p.bold[tag.name]:
		inner.Bold = true
		return b.children(n, start, end, inner)
	case p.italic[tag.name]:
		inner.Italic = true
		return b.children(n, start, end, inner)
	case p.underline[tag.name]:
		inner.Underline = true
		return b.children(n, start, end, inner)
	case p.paragraph[tag.name]:
		return b.paragraph(n, start, end, inner)
	case headingLevel(tag.name) > 0:
		return b.heading(n, headingLevel(tag.name), start, end, inner)
	case p.code[tag.name]:
		return b.codeBlock(n, tag, start, end)
	case p.breaks[tag.name]:
		// tree-sitter nests the content following a <br> inside it.
		return append([]*ast.Node{ast.Text("\n", styles)}, b.children(n, start, end, styles)...)
	case p.transparent[tag.name]:
		return b.children(n, start, end, inner)
	}

	// Unknown element: keep its text, drop its structure.
	text := b.flatten(n, start, end)
	if text == "" {
		return nil
	}
	return []*ast.Node{ast.Text(text, styles)}
}

func (b *builder) paragraph(n *sitter.Node, start, end int, styles ast.StyleSet) []*ast.Node {
	children := b.p.inline(b.children(n, start, end, styles))
	if len(children) == 0 {
		return nil
	}
	return []*ast.Node{ast.Paragraph(children...)}
}

func (b *builder) heading(n *sitter.Node, level, start, end int, styles ast.StyleSet) []*ast.Node {
	children := b.p.inline(b.children(n, start, end, styles))
	if len(children) == 0 {
		return nil
	}
	return []*ast.Node{ast.Heading(level, children...)}
}

func (b *builder) codeBlock(n *sitter.Node, tag tagInfo, start, end int) []*ast.Node {
	content := b.p.normalize(b.flatten(n, start, end))
	if content == "" {
		return nil
	}
	lang := tag.attrs["data-language"]
	if lang == "" {
		for _, c := range strings.Fields(tag.attrs["class"]) {
			if strings.HasPrefix(c, "language-") {
				lang = strings.TrimPrefix(c, "language-")
				break
			}
		}
	}
	return []*ast.Node{ast.Code(lang, content)}
}

// flatten returns the text content of [start, end) of n with all markup
// removed. Break tags become newlines; dropped tags contribute nothing.
func (b *builder) flatten(n *sitter.Node, start, end int) string {
	var sb strings.Builder
	b.scan(n, start, end, func(from, to int) {
		sb.WriteString(stdhtml.UnescapeString(string(b.src[from:to])))
	}, func(c *sitter.Node) {
		switch c.Type() {
		case "element":
			tag, cs, ce := b.content(c)
			switch {
			case tag.broken:
				sb.WriteString(stdhtml.UnescapeString(string(b.src[tag.from:tag.to])))
				sb.WriteString(b.flatten(c, cs, ce))
			case b.p.drop[tag.name]:
			case b.p.breaks[tag.name]:
				sb.WriteByte('\n')
				sb.WriteString(b.flatten(c, cs, ce))
			default:
				sb.WriteString(b.flatten(c, cs, ce))
			}
		case "ERROR":
			sb.WriteString(b.flatten(c, int(c.StartByte()), int(c.EndByte())))
		}
	})
	return sb.String()
}

func headingLevel(name string) int {
	if len(name) != 2 || (name[0] != 'h' && name[0] != 'H') {
		return 0
	}
	level, err := strconv.Atoi(name[1:])
	if err != nil || level < 1 || level > 6 {
		return 0
	}
	return level
}

// cssStyles reads the inline style declarations the renderer writes, plus
// the font declarations hosts commonly emit for bold/italic/underline.
func cssStyles(decl string) ast.StyleSet {
	var s ast.StyleSet
	for _, part := range strings.Split(decl, ";") {
		key, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		switch key {
		case "color":
			s.Color = value
		case "background-color", "background":
			s.BackgroundColor = value
		case "font-weight":
			switch value {
			case "bold", "bolder":
				s.Bold = true
			default:
				if w, err := strconv.Atoi(value); err == nil && w >= 600 {
					s.Bold = true
				}
			}
		case "font-style":
			if value == "italic" || value == "oblique" {
				s.Italic = true
			}
		case "text-decoration", "text-decoration-line":
			if strings.Contains(value, "underline") {
				s.Underline = true
			}
		}
	}
	return s
}
