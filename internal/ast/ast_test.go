package ast

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sample() Forest {
	return Forest{
		Paragraph(
			Text("Hello,", StyleSet{}),
			Text("World!", StyleSet{Bold: true}),
			Mention("@User", "user123"),
		),
		Code("go", "const a = 123"),
	}
}

func TestEqualIsStructural(t *testing.T) {
	a := sample()
	b := sample()
	if !a.Equal(b) {
		t.Fatalf("identical forests not equal")
	}
	b[0] = b[0].WithChildren(append([]*Node{}, b[0].Children[:2]...))
	if a.Equal(b) {
		t.Fatalf("forests with different children reported equal")
	}
	if Text("x", StyleSet{Bold: true}).Equal(Text("x", StyleSet{})) {
		t.Fatalf("styles ignored by Equal")
	}
}

func TestSplitTextGraphemes(t *testing.T) {
	s := "ae\u0301z" // e + combining acute is one cluster
	if got := TextLen(s); got != 3 {
		t.Fatalf("TextLen = %d, want 3", got)
	}
	head, tail := SplitText(s, 2)
	if head != "ae\u0301" || tail != "z" {
		t.Fatalf("SplitText = %q %q", head, tail)
	}
	if head, tail := SplitText(s, 0); head != "" || tail != s {
		t.Fatalf("SplitText(0) = %q %q", head, tail)
	}
	if head, tail := SplitText(s, 10); head != s || tail != "" {
		t.Fatalf("SplitText(10) = %q %q", head, tail)
	}
	if got := SliceText("Hello World", 6, 11); got != "World" {
		t.Fatalf("SliceText = %q, want %q", got, "World")
	}
}

func TestJSONFieldNames(t *testing.T) {
	f := Forest{
		Paragraph(Text("a", StyleSet{}), Text("b", StyleSet{Bold: true, BackgroundColor: "pink"})),
		Custom("[Custom Node]", "customData123"),
	}
	out, err := f.JSON()
	if err != nil {
		t.Fatalf("JSON error: %v", err)
	}
	for _, want := range []string{
		`"type": "paragraph"`,
		`"children": [`,
		`"styles": {}`,
		`"bold": true`,
		`"backgroundColor": "pink"`,
		`"customData": "customData123"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("JSON output missing %s:\n%s", want, out)
		}
	}

	back, err := ParseJSON([]byte(out))
	if err != nil {
		t.Fatalf("ParseJSON error: %v", err)
	}
	if !back.Equal(f) {
		t.Fatalf("decoded forest differs: %s", cmp.Diff(f, back))
	}
}

func TestUnmarshalUnknownType(t *testing.T) {
	var n Node
	err := json.Unmarshal([]byte(`{"type":"table"}`), &n)
	if !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("err = %v, want ErrMalformedInput", err)
	}
}

func TestYAMLDump(t *testing.T) {
	out, err := YAML(sample())
	if err != nil {
		t.Fatalf("YAML error: %v", err)
	}
	for _, want := range []string{"type: paragraph", "id: user123", "language: go", "styles: {}"} {
		if !strings.Contains(out, want) {
			t.Fatalf("YAML output missing %q:\n%s", want, out)
		}
	}
	if n := strings.Count(out, "styles:"); n != 2 {
		t.Fatalf("YAML output has %d styles keys, want 2 (text leaves only):\n%s", n, out)
	}
}

func TestValidate(t *testing.T) {
	if err := sample().Validate(); err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	bad := Forest{Paragraph(Text("a", StyleSet{}), nil)}
	if err := bad.Validate(); !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("nil child err = %v, want ErrMalformedInput", err)
	}
	leaf := Text("a", StyleSet{})
	leaf.Children = []*Node{Text("b", StyleSet{})}
	if err := (Forest{leaf}).Validate(); !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("leaf with children err = %v, want ErrMalformedInput", err)
	}
	if err := (Forest{Heading(9)}).Validate(); !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("heading level err = %v, want ErrMalformedInput", err)
	}
}

func TestUpdateChildrenSharesUntouchedNodes(t *testing.T) {
	f := sample()
	out, err := f.UpdateChildren(Path{0}, func(children []*Node) ([]*Node, error) {
		next := make([]*Node, 0, len(children)+1)
		next = append(next, children...)
		return append(next, Text("!", StyleSet{})), nil
	})
	if err != nil {
		t.Fatalf("UpdateChildren error: %v", err)
	}
	if len(f[0].Children) != 3 {
		t.Fatalf("input mutated: %d children", len(f[0].Children))
	}
	if len(out[0].Children) != 4 {
		t.Fatalf("children = %d, want 4", len(out[0].Children))
	}
	if out[1] != f[1] {
		t.Fatalf("untouched sibling was copied")
	}
	if out[0].Children[0] != f[0].Children[0] {
		t.Fatalf("untouched leaf was copied")
	}

	if _, err := f.UpdateChildren(Path{1}, nil); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("leaf container err = %v, want ErrInvalidPath", err)
	}
}

func TestNodeAtAndLeaves(t *testing.T) {
	f := sample()
	n, err := f.NodeAt(Path{0, 2})
	if err != nil {
		t.Fatalf("NodeAt error: %v", err)
	}
	if n.Kind != KindMention {
		t.Fatalf("NodeAt kind = %s, want mention", n.Kind)
	}
	if _, err := f.NodeAt(Path{0, 7}); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("err = %v, want ErrInvalidPath", err)
	}
	leaves := f.Leaves()
	var paths []string
	for _, l := range leaves {
		paths = append(paths, l.Path.String())
	}
	want := []string{"[0 0]", "[0 1]", "[0 2]", "[1]"}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Fatalf("leaf paths (-want +got):\n%s", diff)
	}
}

func TestPathCompare(t *testing.T) {
	cases := []struct {
		a, b Path
		want int
	}{
		{Path{0}, Path{0, 1}, -1},
		{Path{0, 2}, Path{1}, -1},
		{Path{2}, Path{1, 5}, 1},
		{Path{1, 1}, Path{1, 1}, 0},
	}
	for _, tc := range cases {
		if got := tc.a.Compare(tc.b); got != tc.want {
			t.Fatalf("%v.Compare(%v) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestStyleSetWith(t *testing.T) {
	s := StyleSet{}.With(StyleBold, "true").With(StyleColor, "red")
	if !s.Bold || s.Color != "red" {
		t.Fatalf("With = %+v", s)
	}
	s = s.With(StyleBold, "")
	if s.Bold || !s.Has(StyleColor) {
		t.Fatalf("clear bold = %+v", s)
	}
	if _, err := ParseStyleKey("strike"); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("err = %v, want ErrInvalidFormat", err)
	}
}

func TestPlainText(t *testing.T) {
	if got := sample().PlainText(); got != "Hello,World!@User\nconst a = 123" {
		t.Fatalf("PlainText = %q", got)
	}
}
