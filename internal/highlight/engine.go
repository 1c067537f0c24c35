// Package highlight colors the content of code blocks with tree-sitter
// queries.
package highlight

import (
	"context"
	"math"
	"regexp"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/toml"
	"github.com/smacker/go-tree-sitter/yaml"

	"github.com/kobzarvs/qdoc/internal/config"
	"github.com/kobzarvs/qdoc/internal/logger"
)

// Span marks bytes [Start, End) of one line. End may be math.MaxInt32 for a
// capture that runs to the end of the line.
type Span struct {
	Start int
	End   int
	Kind  string
}

type grammar struct {
	parser *sitter.Parser
	query  *sitter.Query
}

// Engine caches one parser and query per grammar, plus the highlights of
// recently seen code blocks. It is safe for concurrent use.
type Engine struct {
	langs    config.Languages
	mu       sync.Mutex
	grammars map[string]*grammar
	cache    map[cacheKey]map[int][]Span
}

type cacheKey struct {
	grammar string
	code    string
}

const maxCached = 128

func New(langs config.Languages) *Engine {
	return &Engine{
		langs:    langs,
		grammars: make(map[string]*grammar),
		cache:    make(map[cacheKey]map[int][]Span),
	}
}

// Grammar resolves a code block language tag to a grammar name, or "" when
// the tag is unknown.
func (e *Engine) Grammar(language string) string {
	lang := e.langs.Match(language)
	if lang == nil {
		return ""
	}
	if lang.Grammar == "json" || tsLanguageForName(lang.Grammar) != nil {
		return lang.Grammar
	}
	return ""
}

// Highlight returns the spans of code keyed by zero-based line. Unknown
// languages give nil.
func (e *Engine) Highlight(language, code string) map[int][]Span {
	name := e.Grammar(language)
	if name == "" || code == "" {
		return nil
	}
	key := cacheKey{grammar: name, code: code}

	e.mu.Lock()
	defer e.mu.Unlock()
	if spans, ok := e.cache[key]; ok {
		return spans
	}

	var spans map[int][]Span
	if name == "json" {
		spans = jsonHighlights([]byte(code))
	} else {
		g := e.grammarLocked(name)
		if g == nil {
			return nil
		}
		source := []byte(code)
		tree, err := g.parser.ParseCtx(context.Background(), nil, source)
		if err != nil || tree == nil {
			logger.Warn("highlight parse failed", "grammar", name, "err", err)
			return nil
		}
		spans = queryHighlights(g.query, tree, source, 0, strings.Count(code, "\n"))
	}

	if len(e.cache) >= maxCached {
		clear(e.cache)
	}
	e.cache[key] = spans
	return spans
}

func (e *Engine) grammarLocked(name string) *grammar {
	if g, ok := e.grammars[name]; ok {
		return g
	}
	lang := tsLanguageForName(name)
	if lang == nil {
		return nil
	}
	query, err := sitter.NewQuery([]byte(highlightQueries[name]), lang)
	if err != nil {
		logger.Error("highlight query rejected", "grammar", name, "err", err)
		e.grammars[name] = nil
		return nil
	}
	p := sitter.NewParser()
	p.SetLanguage(lang)
	g := &grammar{parser: p, query: query}
	e.grammars[name] = g
	return g
}

func queryHighlights(query *sitter.Query, tree *sitter.Tree, source []byte, startLine, endLine int) map[int][]Span {
	if query == nil || tree == nil {
		return nil
	}
	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.SetPointRange(
		sitter.Point{Row: uint32(startLine), Column: 0},
		sitter.Point{Row: uint32(endLine + 1), Column: 0},
	)
	cursor.Exec(query, tree.RootNode())

	out := make(map[int][]Span)
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		match = cursor.FilterPredicates(match, source)
		if match == nil {
			continue
		}
		for _, capture := range match.Captures {
			kind := query.CaptureNameForId(capture.Index)
			start := capture.Node.StartPoint()
			end := capture.Node.EndPoint()
			startRow, endRow := int(start.Row), int(end.Row)
			for row := startRow; row <= endRow; row++ {
				if row < startLine || row > endLine {
					continue
				}
				span := Span{Start: 0, End: math.MaxInt32, Kind: kind}
				if row == startRow {
					span.Start = int(start.Column)
				}
				if row == endRow {
					span.End = int(end.Column)
				}
				out[row] = append(out[row], span)
			}
		}
	}
	return out
}

// KindAt returns the highest priority kind among the spans covering byte
// col, or "".
func KindAt(spans []Span, col int) string {
	best, bestPriority := "", 0
	for _, s := range spans {
		if col < s.Start || col >= s.End {
			continue
		}
		if p := priority(s.Kind); p > bestPriority {
			best, bestPriority = s.Kind, p
		}
	}
	return best
}

func priority(kind string) int {
	switch kind {
	case "comment":
		return 7
	case "string":
		return 6
	case "keyword":
		return 5
	case "constant", "builtin":
		return 4
	case "parameter", "type", "function", "number":
		return 3
	case "field", "variable":
		return 2
	case "operator", "punctuation":
		return 1
	}
	return 0
}

func tsLanguageForName(name string) *sitter.Language {
	switch name {
	case "go":
		return golang.GetLanguage()
	case "yaml":
		return yaml.GetLanguage()
	case "toml":
		return toml.GetLanguage()
	case "bash":
		return bash.GetLanguage()
	default:
		return nil
	}
}

var (
	jsonString = regexp.MustCompile(`"(?:[^"\\]|\\.)*"`)
	jsonNumber = regexp.MustCompile(`-?\d+(?:\.\d+)?(?:[eE][+-]?\d+)?`)
	jsonWord   = regexp.MustCompile(`\b(true|false|null)\b`)
)

// jsonHighlights colors JSON by pattern, one line at a time.
func jsonHighlights(source []byte) map[int][]Span {
	out := make(map[int][]Span)
	for row, line := range strings.Split(string(source), "\n") {
		var spans []Span
		for _, loc := range jsonString.FindAllStringIndex(line, -1) {
			kind := "string"
			if rest := strings.TrimLeft(line[loc[1]:], " \t"); strings.HasPrefix(rest, ":") {
				kind = "field"
			}
			spans = append(spans, Span{Start: loc[0], End: loc[1], Kind: kind})
		}
		outside := func(at int) bool {
			before := line[:at]
			return (strings.Count(before, `"`)-strings.Count(before, `\"`))%2 == 0
		}
		for _, loc := range jsonNumber.FindAllStringIndex(line, -1) {
			if outside(loc[0]) {
				spans = append(spans, Span{Start: loc[0], End: loc[1], Kind: "number"})
			}
		}
		for _, loc := range jsonWord.FindAllStringIndex(line, -1) {
			if outside(loc[0]) {
				spans = append(spans, Span{Start: loc[0], End: loc[1], Kind: "constant"})
			}
		}
		if len(spans) > 0 {
			out[row] = spans
		}
	}
	return out
}
