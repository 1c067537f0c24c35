// Package preview draws a forest on a tcell screen.
package preview

import (
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/kobzarvs/qdoc/internal/ast"
	"github.com/kobzarvs/qdoc/internal/config"
	"github.com/kobzarvs/qdoc/internal/highlight"
	"github.com/kobzarvs/qdoc/internal/rangeop"
)

// Cell is one grapheme cluster placed on a line. Pos is the caret offset
// in front of the cluster; every cell of an atomic leaf shares one Pos.
type Cell struct {
	Str   string
	Width int
	Style tcell.Style
	Pos   int
	// Deco marks cells such as heading markers that hold no content.
	Deco bool
}

// Line is a row of cells. End is the caret offset right after the line.
type Line struct {
	Cells []Cell
	End   int
}

type View struct {
	main      tcell.Style
	heading   tcell.Style
	mention   tcell.Style
	custom    tcell.Style
	code      tcell.Style
	selection tcell.Style
	syntax    map[string]tcell.Style
	hl        *highlight.Engine
	top       int
}

// New builds a view from theme. hl may be nil to draw code blocks plain.
func New(theme config.Theme, hl *highlight.Engine) *View {
	fg := ParseColor(theme.Foreground, tcell.ColorDefault)
	bg := ParseColor(theme.Background, tcell.ColorDefault)
	main := tcell.StyleDefault.Foreground(fg).Background(bg)
	codeBg := ParseColor(theme.CodeBackground, bg)
	code := main.Foreground(ParseColor(theme.CodeForeground, fg)).Background(codeBg)

	syntax := map[string]tcell.Style{}
	for kind, color := range map[string]string{
		"keyword":     theme.SyntaxKeyword,
		"string":      theme.SyntaxString,
		"comment":     theme.SyntaxComment,
		"type":        theme.SyntaxType,
		"function":    theme.SyntaxFunction,
		"number":      theme.SyntaxNumber,
		"constant":    theme.SyntaxConstant,
		"operator":    theme.SyntaxOperator,
		"punctuation": theme.SyntaxPunctuation,
		"field":       theme.SyntaxField,
		"builtin":     theme.SyntaxBuiltin,
		"variable":    theme.SyntaxVariable,
		"parameter":   theme.SyntaxParameter,
	} {
		syntax[kind] = code.Foreground(ParseColor(color, fg))
	}

	return &View{
		main:      main,
		heading:   main.Foreground(ParseColor(theme.HeadingForeground, fg)).Bold(true),
		mention:   main.Foreground(ParseColor(theme.MentionForeground, fg)).Background(ParseColor(theme.MentionBackground, bg)),
		custom:    main.Foreground(ParseColor(theme.CustomForeground, fg)).Background(ParseColor(theme.CustomBackground, bg)),
		code:      code,
		selection: main.Foreground(ParseColor(theme.SelectionForeground, fg)).Background(ParseColor(theme.SelectionBackground, tcell.ColorGray)),
		syntax:    syntax,
		hl:        hl,
	}
}

// Layout breaks f into lines of at most width cells. Every block starts a
// new line; consecutive top-level inline leaves share one.
func (v *View) Layout(f ast.Forest, width int) []Line {
	if width < 1 {
		width = 1
	}
	l := layouter{v: v, width: width}
	inRun := false
	for _, n := range f {
		switch {
		case n.IsContainer():
			l.startLine()
			base := v.main
			if n.Kind == ast.KindHeading {
				base = v.heading
				l.decorate(strings.Repeat("#", n.Level)+" ", base)
			}
			for _, c := range n.Children {
				l.leaf(c, base)
			}
			l.endLine()
			inRun = false
		case n.Kind == ast.KindCode:
			l.startLine()
			l.codeBlock(n)
			l.endLine()
			inRun = false
		default:
			if !inRun {
				l.startLine()
				inRun = true
			}
			l.leaf(n, v.main)
		}
	}
	l.endLine()
	if len(l.lines) == 0 {
		l.lines = append(l.lines, Line{})
	}
	return l.lines
}

type layouter struct {
	v     *View
	width int
	lines []Line
	cur   Line
	used  int
	open  bool
	pos   int
}

func (l *layouter) startLine() {
	l.endLine()
	l.open = true
}

func (l *layouter) endLine() {
	if !l.open {
		return
	}
	l.cur.End = l.pos
	l.lines = append(l.lines, l.cur)
	l.cur = Line{}
	l.used = 0
	l.open = false
}

// hardBreak ends the line at a newline character, which takes one caret
// unit.
func (l *layouter) hardBreak() {
	l.endLine()
	l.pos++
	l.open = true
}

func (l *layouter) put(c Cell) {
	l.open = true
	if l.used+c.Width > l.width && len(l.cur.Cells) > 0 {
		l.cur.End = c.Pos
		l.lines = append(l.lines, l.cur)
		l.cur = Line{}
		l.used = 0
	}
	l.cur.Cells = append(l.cur.Cells, c)
	l.used += c.Width
}

// decorate adds cells that take no caret units.
func (l *layouter) decorate(s string, style tcell.Style) {
	for _, r := range s {
		l.put(Cell{Str: string(r), Width: 1, Style: style, Pos: l.pos, Deco: true})
	}
}

func (l *layouter) leaf(n *ast.Node, base tcell.Style) {
	switch n.Kind {
	case ast.KindMention, ast.KindCustom:
		style := l.v.mention
		if n.Kind == ast.KindCustom {
			style = l.v.custom
		}
		g := uniseg.NewGraphemes(n.Content)
		for g.Next() {
			l.put(Cell{Str: g.Str(), Width: clusterWidth(g.Str()), Style: style, Pos: l.pos})
		}
		l.pos += rangeop.Units(n)
	case ast.KindText:
		style := textStyle(base, n.Styles)
		g := uniseg.NewGraphemes(n.Content)
		for g.Next() {
			if g.Str() == "\n" || g.Str() == "\r\n" {
				l.hardBreak()
				continue
			}
			l.put(Cell{Str: g.Str(), Width: clusterWidth(g.Str()), Style: style, Pos: l.pos})
			l.pos++
		}
	}
}

func (l *layouter) codeBlock(n *ast.Node) {
	var spans map[int][]highlight.Span
	if l.v.hl != nil {
		spans = l.v.hl.Highlight(n.Language, n.Content)
	}
	for row, text := range strings.Split(n.Content, "\n") {
		if row > 0 {
			l.hardBreak()
		}
		g := uniseg.NewGraphemes(text)
		for g.Next() {
			style := l.v.code
			start, _ := g.Positions()
			if kind := highlight.KindAt(spans[row], start); kind != "" {
				if s, ok := l.v.syntax[kind]; ok {
					style = s
				}
			}
			str := g.Str()
			width := clusterWidth(str)
			if str == "\t" {
				str, width = " ", 1
			}
			l.put(Cell{Str: str, Width: width, Style: style, Pos: l.pos})
			l.pos++
		}
	}
}

func clusterWidth(s string) int {
	w := runewidth.StringWidth(s)
	if w < 1 {
		return 1
	}
	return w
}

// textStyle layers leaf styles over base.
func textStyle(base tcell.Style, s ast.StyleSet) tcell.Style {
	st := base
	if s.Bold {
		st = st.Bold(true)
	}
	if s.Italic {
		st = st.Italic(true)
	}
	if s.Underline {
		st = st.Underline(true)
	}
	if s.Color != "" {
		st = st.Foreground(ParseColor(s.Color, tcell.ColorDefault))
	}
	if s.BackgroundColor != "" {
		st = st.Background(ParseColor(s.BackgroundColor, tcell.ColorDefault))
	}
	return st
}

// Draw paints the lines of f into the rectangle (x, y, w, h), highlights the
// caret range [from, to) and places the terminal cursor at caret. The view
// scrolls to keep the caret visible.
func (v *View) Draw(s tcell.Screen, f ast.Forest, x, y, w, h int, caret, from, to int) {
	if w <= 0 || h <= 0 {
		return
	}
	lines := v.Layout(f, w)
	cx, cy := caretCell(lines, caret)
	if cy < v.top {
		v.top = cy
	}
	if cy >= v.top+h {
		v.top = cy - h + 1
	}
	if v.top > len(lines)-1 {
		v.top = max(len(lines)-1, 0)
	}

	for row := 0; row < h; row++ {
		col := 0
		idx := v.top + row
		if idx < len(lines) {
			for _, c := range lines[idx].Cells {
				if col+c.Width > w {
					break
				}
				style := c.Style
				if from < to && !c.Deco && c.Pos >= from && c.Pos < to {
					style = v.selection
				}
				runes := []rune(c.Str)
				s.SetContent(x+col, y+row, runes[0], runes[1:], style)
				for i := 1; i < c.Width; i++ {
					s.SetContent(x+col+i, y+row, ' ', nil, style)
				}
				col += c.Width
			}
		}
		for ; col < w; col++ {
			s.SetContent(x+col, y+row, ' ', nil, v.main)
		}
	}
	if cy >= v.top && cy < v.top+h {
		s.ShowCursor(x+cx, y+cy-v.top)
	} else {
		s.HideCursor()
	}
}

// caretCell finds the screen column and line of a caret offset: the cell
// that starts at caret, else the end of the line that ends there.
func caretCell(lines []Line, caret int) (int, int) {
	for i, line := range lines {
		col := 0
		for _, c := range line.Cells {
			if !c.Deco && c.Pos == caret {
				return col, i
			}
			col += c.Width
		}
	}
	for i, line := range lines {
		if line.End == caret {
			return line.width(), i
		}
	}
	last := len(lines) - 1
	return lines[last].width(), last
}

func (l Line) width() int {
	w := 0
	for _, c := range l.Cells {
		w += c.Width
	}
	return w
}

// ParseColor accepts "#rrggbb" and tcell color names. Anything else gives
// fallback.
func ParseColor(name string, fallback tcell.Color) tcell.Color {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	if strings.HasPrefix(name, "#") && len(name) == 7 {
		r, err1 := strconv.ParseInt(name[1:3], 16, 32)
		g, err2 := strconv.ParseInt(name[3:5], 16, 32)
		b, err3 := strconv.ParseInt(name[5:7], 16, 32)
		if err1 == nil && err2 == nil && err3 == nil {
			return tcell.NewRGBColor(int32(r), int32(g), int32(b))
		}
		return fallback
	}
	name = strings.ToLower(name)
	if name == "default" {
		return tcell.ColorDefault
	}
	c := tcell.GetColor(name)
	if c == tcell.ColorDefault {
		return fallback
	}
	return c
}
