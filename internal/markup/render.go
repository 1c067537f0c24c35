package markup

import (
	stdhtml "html"
	"strconv"
	"strings"

	"github.com/kobzarvs/qdoc/internal/ast"
	"github.com/kobzarvs/qdoc/internal/config"
)

// Renderer serializes a forest into markup the Parser reads back into an
// equal forest.
type Renderer struct {
	opts         config.RenderOptions
	mentionClass string
	customClass  string
}

func NewRenderer(render config.RenderOptions, parser config.ParserOptions) *Renderer {
	return &Renderer{
		opts:         render,
		mentionClass: parser.MentionClass,
		customClass:  parser.CustomClass,
	}
}

// Render returns the markup for f. An empty forest renders as "".
func (r *Renderer) Render(f ast.Forest) string {
	var sb strings.Builder
	for _, n := range f {
		r.node(&sb, n)
	}
	return sb.String()
}

func (r *Renderer) node(sb *strings.Builder, n *ast.Node) {
	switch n.Kind {
	case ast.KindText:
		r.text(sb, n)
	case ast.KindParagraph:
		r.open(sb, r.opts.ParagraphTag, "")
		r.children(sb, n)
		r.close(sb, r.opts.ParagraphTag)
	case ast.KindHeading:
		tag := "h" + strconv.Itoa(n.Level)
		r.open(sb, tag, "")
		r.children(sb, n)
		r.close(sb, tag)
	case ast.KindCode:
		attrs := ""
		if n.Language != "" {
			attrs = ` data-language="` + stdhtml.EscapeString(n.Language) + `"`
		}
		r.open(sb, r.opts.CodeTag, attrs)
		sb.WriteString(stdhtml.EscapeString(n.Content))
		r.close(sb, r.opts.CodeTag)
	case ast.KindMention:
		attrs := ` class="` + stdhtml.EscapeString(r.mentionClass) + `" data-id="` + stdhtml.EscapeString(n.ID) + `"`
		r.open(sb, "span", attrs)
		sb.WriteString(stdhtml.EscapeString(n.Content))
		r.close(sb, "span")
	case ast.KindCustom:
		attrs := ` class="` + stdhtml.EscapeString(r.customClass) + `" data-custom="` + stdhtml.EscapeString(n.CustomData) + `"`
		r.open(sb, "span", attrs)
		sb.WriteString(stdhtml.EscapeString(n.Content))
		r.close(sb, "span")
	}
}

func (r *Renderer) children(sb *strings.Builder, n *ast.Node) {
	for _, c := range n.Children {
		r.node(sb, c)
	}
}

// text wraps the escaped content with the bold tag innermost, then italic,
// then underline, then a span carrying colors outermost.
func (r *Renderer) text(sb *strings.Builder, n *ast.Node) {
	s := n.Styles
	var tags []string
	if style := cssDecl(s); style != "" {
		r.open(sb, "span", ` style="`+stdhtml.EscapeString(style)+`"`)
		tags = append(tags, "span")
	}
	if s.Underline {
		r.open(sb, r.opts.UnderlineTag, "")
		tags = append(tags, r.opts.UnderlineTag)
	}
	if s.Italic {
		r.open(sb, r.opts.ItalicTag, "")
		tags = append(tags, r.opts.ItalicTag)
	}
	if s.Bold {
		r.open(sb, r.opts.BoldTag, "")
		tags = append(tags, r.opts.BoldTag)
	}
	sb.WriteString(stdhtml.EscapeString(n.Content))
	for i := len(tags) - 1; i >= 0; i-- {
		r.close(sb, tags[i])
	}
}

func cssDecl(s ast.StyleSet) string {
	var parts []string
	if s.Color != "" {
		parts = append(parts, "color: "+s.Color)
	}
	if s.BackgroundColor != "" {
		parts = append(parts, "background-color: "+s.BackgroundColor)
	}
	return strings.Join(parts, "; ")
}

func (r *Renderer) open(sb *strings.Builder, tag, attrs string) {
	sb.WriteByte('<')
	sb.WriteString(tag)
	sb.WriteString(attrs)
	sb.WriteByte('>')
}

func (r *Renderer) close(sb *strings.Builder, tag string) {
	sb.WriteString("</")
	sb.WriteString(tag)
	sb.WriteByte('>')
}
