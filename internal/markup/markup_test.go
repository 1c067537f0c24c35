package markup

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kobzarvs/qdoc/internal/ast"
	"github.com/kobzarvs/qdoc/internal/config"
)

func newCodec() (*Parser, *Renderer) {
	cfg := config.Default()
	return NewParser(cfg.Parser), NewRenderer(cfg.Render, cfg.Parser)
}

func bold() ast.StyleSet { return ast.StyleSet{Bold: true} }

func TestParse(t *testing.T) {
	p, _ := newCodec()
	tests := []struct {
		name string
		in   string
		want ast.Forest
	}{
		{"empty", "", ast.Forest{}},
		{"whitespace", "  \n ", ast.Forest{}},
		{"plain", "Hello", ast.Forest{ast.Text("Hello", ast.StyleSet{})}},
		{
			"bold run",
			"Hello <strong>World</strong>",
			ast.Forest{ast.Text("Hello ", ast.StyleSet{}), ast.Text("World", bold())},
		},
		{
			"nested emphasis",
			"<em><b>x</b></em>",
			ast.Forest{ast.Text("x", ast.StyleSet{Bold: true, Italic: true})},
		},
		{
			"underline alias",
			"<ins>x</ins>",
			ast.Forest{ast.Text("x", ast.StyleSet{Underline: true})},
		},
		{
			"color span",
			`<p><span style="color: red; background-color: #fff">x</span></p>`,
			ast.Forest{ast.Paragraph(ast.Text("x", ast.StyleSet{Color: "red", BackgroundColor: "#fff"}))},
		},
		{
			"mention and custom",
			`Hi <span class="mention" data-id="u1">@Ann</span><span class="custom" data-custom="c9">[C]</span>`,
			ast.Forest{
				ast.Text("Hi ", ast.StyleSet{}),
				ast.Mention("@Ann", "u1"),
				ast.Custom("[C]", "c9"),
			},
		},
		{
			"heading",
			"<h2>Title</h2>",
			ast.Forest{ast.Heading(2, ast.Text("Title", ast.StyleSet{}))},
		},
		{
			"code block",
			"<pre data-language=\"go\">x := a &lt; b\nreturn x</pre>",
			ast.Forest{ast.Code("go", "x := a < b\nreturn x")},
		},
		{
			"code class language",
			`<pre class="language-yaml">a: 1</pre>`,
			ast.Forest{ast.Code("yaml", "a: 1")},
		},
		{
			"break",
			"<p>a<br>b</p>",
			ast.Forest{ast.Paragraph(ast.Text("a\nb", ast.StyleSet{}))},
		},
		{
			"break at top level",
			"a<br>b",
			ast.Forest{ast.Text("a\nb", ast.StyleSet{})},
		},
		{
			"break keeps following runs",
			"<p>line one<br>line two <b>bold</b></p>",
			ast.Forest{ast.Paragraph(ast.Text("line one\nline two ", ast.StyleSet{}), ast.Text("bold", bold()))},
		},
		{
			"break inside bold",
			"<b>a<br>c</b>d",
			ast.Forest{ast.Text("a\nc", bold()), ast.Text("d", ast.StyleSet{})},
		},
		{
			"break inside code",
			"<pre>a<br>b</pre>",
			ast.Forest{ast.Code("", "a\nb")},
		},
		{
			"stray less-than",
			"<p>a < b</p>",
			ast.Forest{ast.Paragraph(ast.Text("a < b", ast.StyleSet{}))},
		},
		{
			"stray less-than inside bold",
			"<b>x < y</b>",
			ast.Forest{ast.Text("x < y", bold())},
		},
		{
			"stray less-than before digit",
			"x <3 y",
			ast.Forest{ast.Text("x <3 y", ast.StyleSet{})},
		},
		{
			"stray less-than at end",
			"a <",
			ast.Forest{ast.Text("a <", ast.StyleSet{})},
		},
		{
			"blank runs at the edge",
			" <b> </b>x",
			ast.Forest{ast.Text("x", ast.StyleSet{})},
		},
		{
			"blank runs after a block",
			"<p>a</p> <i> </i>b",
			ast.Forest{ast.Paragraph(ast.Text("a", ast.StyleSet{})), ast.Text("b", ast.StyleSet{})},
		},
		{
			"numeric font weight",
			`<span style="font-weight: 700">x</span><span style="font-weight: 1000">y</span>`,
			ast.Forest{ast.Text("xy", bold())},
		},
		{
			"light or bogus font weight",
			`<span style="font-weight: 500">x</span><span style="font-weight: zzz">y</span>`,
			ast.Forest{ast.Text("xy", ast.StyleSet{})},
		},
		{
			"unknown element keeps text",
			"<x-widget>hi <b>there</b></x-widget>",
			ast.Forest{ast.Text("hi there", ast.StyleSet{})},
		},
		{
			"unknown element inherits styles",
			"<b><x-widget>hi</x-widget></b>",
			ast.Forest{ast.Text("hi", bold())},
		},
		{
			"comment dropped",
			"a<!-- note -->b",
			ast.Forest{ast.Text("ab", ast.StyleSet{})},
		},
		{
			"script dropped",
			"a<script>alert(1)</script>b",
			ast.Forest{ast.Text("ab", ast.StyleSet{})},
		},
		{
			"entities",
			"a &amp; b &quot;c&quot;",
			ast.Forest{ast.Text(`a & b "c"`, ast.StyleSet{})},
		},
		{
			"blocks separated by whitespace",
			"<p>a</p>\n  <p>b</p>\n",
			ast.Forest{
				ast.Paragraph(ast.Text("a", ast.StyleSet{})),
				ast.Paragraph(ast.Text("b", ast.StyleSet{})),
			},
		},
		{
			"inline spacing kept",
			"<b>a</b> <i>b</i>",
			ast.Forest{
				ast.Text("a", bold()),
				ast.Text(" ", ast.StyleSet{}),
				ast.Text("b", ast.StyleSet{Italic: true}),
			},
		},
		{
			"empty elements omitted",
			"<p></p><strong></strong><span class=\"mention\" data-id=\"x\"></span>",
			ast.Forest{},
		},
		{
			"block type attribute",
			`<div class="block" data-block-type="paragraph"><p><span style="font-weight: bold">x</span></p></div>`,
			ast.Forest{ast.Paragraph(ast.Text("x", bold()))},
		},
		{
			"block type heading",
			`<div data-block-type="h3">T</div>`,
			ast.Forest{ast.Heading(3, ast.Text("T", ast.StyleSet{}))},
		},
		{
			"paragraph inside heading is spliced",
			`<h1><div data-block-type="paragraph">x</div></h1>`,
			ast.Forest{ast.Heading(1, ast.Text("x", ast.StyleSet{}))},
		},
		{
			"normalized",
			"e\u0301",
			ast.Forest{ast.Text("\u00e9", ast.StyleSet{})},
		},
	}
	for _, tt := range tests {
		got := p.Parse(tt.in)
		if !got.Equal(tt.want) {
			t.Fatalf("%s: Parse(%q) mismatch (-want +got):\n%s", tt.name, tt.in, cmp.Diff(tt.want, got))
		}
	}
}

func TestParseNormalizeNone(t *testing.T) {
	opts := config.Default().Parser
	opts.Normalize = "none"
	p := NewParser(opts)
	got := p.Parse("e\u0301")
	want := ast.Forest{ast.Text("e\u0301", ast.StyleSet{})}
	if !got.Equal(want) {
		t.Fatalf("Parse = %q, want %q", got.PlainText(), want.PlainText())
	}
}

func TestRender(t *testing.T) {
	_, r := newCodec()
	tests := []struct {
		name string
		in   ast.Forest
		want string
	}{
		{"empty", nil, ""},
		{"plain", ast.Forest{ast.Text("a < b", ast.StyleSet{})}, "a &lt; b"},
		{
			"wrapping order",
			ast.Forest{ast.Text("x", ast.StyleSet{Bold: true, Italic: true, Underline: true, Color: "red"})},
			`<span style="color: red"><u><em><strong>x</strong></em></u></span>`,
		},
		{
			"paragraph",
			ast.Forest{ast.Paragraph(ast.Text("Hello ", ast.StyleSet{}), ast.Text("World", bold()))},
			"<p>Hello <strong>World</strong></p>",
		},
		{
			"heading",
			ast.Forest{ast.Heading(4, ast.Text("T", ast.StyleSet{}))},
			"<h4>T</h4>",
		},
		{
			"code",
			ast.Forest{ast.Code("go", "if a < b {}")},
			`<pre data-language="go">if a &lt; b {}</pre>`,
		},
		{
			"mention",
			ast.Forest{ast.Mention("@User", `u"1`)},
			`<span class="mention" data-id="u&#34;1">@User</span>`,
		},
		{
			"custom",
			ast.Forest{ast.Custom("[Custom Node]", "customData123")},
			`<span class="custom" data-custom="customData123">[Custom Node]</span>`,
		},
	}
	for _, tt := range tests {
		if got := r.Render(tt.in); got != tt.want {
			t.Fatalf("%s: Render = %q, want %q", tt.name, got, tt.want)
		}
	}
}

// Rendering a parsed forest and parsing it again must give the same forest.
func TestParseRenderStable(t *testing.T) {
	p, r := newCodec()
	inputs := []string{
		"Hello <strong>World</strong>",
		"<p>a <em>b <u>c</u></em> d</p><h2>T <b>x</b></h2>",
		`<p><span style="color: blue">c</span> and <span class="mention" data-id="u1">@U</span></p>`,
		"<pre data-language=\"bash\">echo &quot;$HOME&quot; &amp;&amp; ls\n</pre>",
		"<x-a>one</x-a> <b>two</b>\n<p>three<br>four</p>",
		`plain <span class="custom" data-custom="{&quot;k&quot;:1}">[C]</span> tail`,
		"<div>  lead and trail  </div>",
		"<p>a<br>b</p>",
		" <b> </b>x",
		"<p>a</p> <i> </i>b",
		"<p>a < b</p>",
	}
	for _, in := range inputs {
		f := p.Parse(in)
		out := r.Render(f)
		again := p.Parse(out)
		if !again.Equal(f) {
			t.Fatalf("Parse(Render(Parse(%q))) mismatch via %q (-want +got):\n%s", in, out, cmp.Diff(f, again))
		}
	}
}

func TestRenderParseRoundTrip(t *testing.T) {
	p, r := newCodec()
	f := ast.Forest{
		ast.Paragraph(
			ast.Text("Hello ", ast.StyleSet{}),
			ast.Text("World", ast.StyleSet{Bold: true, BackgroundColor: "yellow"}),
			ast.Mention("@User", "user123"),
		),
		ast.Heading(1, ast.Text("Head", ast.StyleSet{Italic: true})),
		ast.Code("", "line1\n  line2"),
		ast.Custom("[Custom Node]", "customData123"),
	}
	got := p.Parse(r.Render(f))
	if !got.Equal(f) {
		t.Fatalf("round trip mismatch (-want +got):\n%s", cmp.Diff(f, got))
	}
}

// Every concatenation of up to three fragments must survive a render and
// reparse unchanged.
func TestParseRenderStableCorpus(t *testing.T) {
	p, r := newCodec()
	frags := []string{
		" ", "a", "\n", "&lt;", "< b", "<br>",
		"<b> </b>", "<i>y</i>", "<u>z <b>w</b></u>",
		"<p>x</p>", "<h2>t</h2>",
		`<span class="mention" data-id="m">@M</span>`,
	}
	var corpus []string
	for _, a := range frags {
		corpus = append(corpus, a)
		for _, b := range frags {
			corpus = append(corpus, a+b)
			for _, c := range frags {
				corpus = append(corpus, a+b+c)
			}
		}
	}
	for _, in := range corpus {
		f := p.Parse(in)
		out := r.Render(f)
		if again := p.Parse(out); !again.Equal(f) {
			t.Fatalf("Parse(Render(Parse(%q))) mismatch via %q (-want +got):\n%s", in, out, cmp.Diff(f, again))
		}
	}
}
