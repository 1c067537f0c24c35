package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"
)

// ParserOptions controls how markup elements map to nodes.
type ParserOptions struct {
	BoldTags        []string `toml:"bold-tags"`
	ItalicTags      []string `toml:"italic-tags"`
	UnderlineTags   []string `toml:"underline-tags"`
	ParagraphTags   []string `toml:"paragraph-tags"`
	CodeTags        []string `toml:"code-tags"`
	BreakTags       []string `toml:"break-tags"`
	TransparentTags []string `toml:"transparent-tags"`
	DropTags        []string `toml:"drop-tags"`
	MentionClass    string   `toml:"mention-class"`
	CustomClass     string   `toml:"custom-class"`
	Normalize       string   `toml:"normalize"`
}

// RenderOptions selects the tags the renderer emits.
type RenderOptions struct {
	BoldTag      string `toml:"bold-tag"`
	ItalicTag    string `toml:"italic-tag"`
	UnderlineTag string `toml:"underline-tag"`
	ParagraphTag string `toml:"paragraph-tag"`
	CodeTag      string `toml:"code-tag"`
}

// InsertOptions holds the payloads used by the insert commands.
type InsertOptions struct {
	MentionContent string `toml:"mention-content"`
	MentionID      string `toml:"mention-id"`
	CustomContent  string `toml:"custom-content"`
	CustomData     string `toml:"custom-data"`
}

type LogOptions struct {
	Debug bool   `toml:"debug"`
	File  string `toml:"file"`
}

type Keymap struct {
	Normal map[string]string `toml:"normal"`
}

type Theme struct {
	Theme                string `toml:"theme"`
	Foreground           string `toml:"foreground"`
	Background           string `toml:"background"`
	StatuslineForeground string `toml:"statusline-foreground"`
	StatuslineBackground string `toml:"statusline-background"`
	SelectionForeground  string `toml:"selection-foreground"`
	SelectionBackground  string `toml:"selection-background"`
	HeadingForeground    string `toml:"heading-foreground"`
	MentionForeground    string `toml:"mention-foreground"`
	MentionBackground    string `toml:"mention-background"`
	CustomForeground     string `toml:"custom-foreground"`
	CustomBackground     string `toml:"custom-background"`
	CodeForeground       string `toml:"code-foreground"`
	CodeBackground       string `toml:"code-background"`
	SyntaxKeyword        string `toml:"syntax-keyword"`
	SyntaxString         string `toml:"syntax-string"`
	SyntaxComment        string `toml:"syntax-comment"`
	SyntaxType           string `toml:"syntax-type"`
	SyntaxFunction       string `toml:"syntax-function"`
	SyntaxNumber         string `toml:"syntax-number"`
	SyntaxConstant       string `toml:"syntax-constant"`
	SyntaxOperator       string `toml:"syntax-operator"`
	SyntaxPunctuation    string `toml:"syntax-punctuation"`
	SyntaxField          string `toml:"syntax-field"`
	SyntaxBuiltin        string `toml:"syntax-builtin"`
	SyntaxVariable       string `toml:"syntax-variable"`
	SyntaxParameter      string `toml:"syntax-parameter"`
}

type Config struct {
	Parser ParserOptions `toml:"parser"`
	Render RenderOptions `toml:"render"`
	Insert InsertOptions `toml:"insert"`
	Theme  Theme         `toml:"theme"`
	Keymap Keymap        `toml:"keymap"`
	Log    LogOptions    `toml:"log"`
}

func Default() Config {
	return Config{
		Parser: ParserOptions{
			BoldTags:        []string{"b", "strong"},
			ItalicTags:      []string{"i", "em"},
			UnderlineTags:   []string{"u", "ins"},
			ParagraphTags:   []string{"p"},
			CodeTags:        []string{"pre"},
			BreakTags:       []string{"br"},
			TransparentTags: []string{"span", "div", "section", "article", "main", "body", "html", "font"},
			DropTags:        []string{"script", "style", "head", "title", "template"},
			MentionClass:    "mention",
			CustomClass:     "custom",
			Normalize:       "nfc",
		},
		Render: RenderOptions{
			BoldTag:      "strong",
			ItalicTag:    "em",
			UnderlineTag: "u",
			ParagraphTag: "p",
			CodeTag:      "pre",
		},
		Insert: InsertOptions{
			MentionContent: "@User",
			MentionID:      "user123",
			CustomContent:  "[Custom Node]",
			CustomData:     "customData123",
		},
		Theme: Theme{
			Foreground:           "#B3B1AD",
			Background:           "#0A0E14",
			StatuslineForeground: "#B3B1AD",
			StatuslineBackground: "#0F1419",
			SelectionForeground:  "#B3B1AD",
			SelectionBackground:  "#27425A",
			HeadingForeground:    "#E6B450",
			MentionForeground:    "#59C2FF",
			MentionBackground:    "#0F1419",
			CustomForeground:     "#D4BFFF",
			CustomBackground:     "#0F1419",
			CodeForeground:       "#B3B1AD",
			CodeBackground:       "#0F1419",
			SyntaxKeyword:        "#FFA759",
			SyntaxString:         "#BAE67E",
			SyntaxComment:        "#5C6773",
			SyntaxType:           "#5CCFE6",
			SyntaxFunction:       "#FFD173",
			SyntaxNumber:         "#D4BFFF",
			SyntaxConstant:       "#FFDD8E",
			SyntaxOperator:       "#F29668",
			SyntaxPunctuation:    "#C0C0C0",
			SyntaxField:          "#E6B673",
			SyntaxBuiltin:        "#73D0FF",
			SyntaxVariable:       "#B3B1AD",
			SyntaxParameter:      "#B3B1AD",
		},
		Keymap: Keymap{
			Normal: map[string]string{
				"left":        "move_left",
				"right":       "move_right",
				"shift+left":  "extend_left",
				"shift+right": "extend_right",
				"home":        "doc_start",
				"end":         "doc_end",
				"esc":         "collapse_selection",
				"ctrl+a":      "select_all",
				"ctrl+b":      "bold",
				"ctrl+o":      "italic",
				"ctrl+u":      "underline",
				"ctrl+n":      "insert_mention",
				"ctrl+g":      "insert_custom",
				"ctrl+z":      "undo",
				"ctrl+y":      "redo",
				"u":           "undo",
				"U":           "redo",
				"ctrl+s":      "save",
				"ctrl+q":      "quit",
				"ctrl+c":      "quit",
			},
		},
	}
}

func Load() (Config, error) {
	cfg := Default()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	var userCfg Config
	if _, err := toml.Decode(string(data), &userCfg); err != nil {
		return cfg, fmt.Errorf("decode %s: %w", path, err)
	}

	mergeParser(&cfg.Parser, userCfg.Parser)
	mergeRender(&cfg.Render, userCfg.Render)
	mergeInsert(&cfg.Insert, userCfg.Insert)

	if userCfg.Theme.Theme != "" {
		cfg.Theme.Theme = userCfg.Theme.Theme
	}
	if cfg.Theme.Theme != "" {
		theme, err := LoadTheme(cfg.Theme.Theme)
		if err != nil {
			return cfg, err
		}
		mergeTheme(&cfg.Theme, theme)
	}
	mergeTheme(&cfg.Theme, userCfg.Theme)

	if userCfg.Keymap.Normal != nil {
		for k, v := range userCfg.Keymap.Normal {
			cfg.Keymap.Normal[k] = v
		}
	}
	if userCfg.Log.Debug {
		cfg.Log.Debug = true
	}
	if userCfg.Log.File != "" {
		cfg.Log.File = userCfg.Log.File
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports every inconsistency at once. Render tags must be tags the
// parser maps back to the same node, otherwise rendered markup would not
// parse to the forest it came from.
func (c Config) Validate() error {
	var err error
	check := func(name, tag string, set []string) {
		if tag == "" {
			err = multierr.Append(err, fmt.Errorf("render.%s is empty", name))
			return
		}
		if !slices.Contains(set, tag) {
			err = multierr.Append(err, fmt.Errorf("render.%s %q is not listed in the parser tags %v", name, tag, set))
		}
	}
	check("bold-tag", c.Render.BoldTag, c.Parser.BoldTags)
	check("italic-tag", c.Render.ItalicTag, c.Parser.ItalicTags)
	check("underline-tag", c.Render.UnderlineTag, c.Parser.UnderlineTags)
	check("paragraph-tag", c.Render.ParagraphTag, c.Parser.ParagraphTags)
	check("code-tag", c.Render.CodeTag, c.Parser.CodeTags)

	if c.Parser.MentionClass == "" {
		err = multierr.Append(err, fmt.Errorf("parser.mention-class is empty"))
	}
	if c.Parser.CustomClass == "" {
		err = multierr.Append(err, fmt.Errorf("parser.custom-class is empty"))
	}
	if c.Parser.MentionClass != "" && c.Parser.MentionClass == c.Parser.CustomClass {
		err = multierr.Append(err, fmt.Errorf("parser.mention-class and parser.custom-class are both %q", c.Parser.MentionClass))
	}
	switch c.Parser.Normalize {
	case "", "none", "nfc", "nfd", "nfkc", "nfkd":
	default:
		err = multierr.Append(err, fmt.Errorf("parser.normalize %q is not one of none, nfc, nfd, nfkc, nfkd", c.Parser.Normalize))
	}
	return err
}

func mergeParser(dst *ParserOptions, src ParserOptions) {
	setList(&dst.BoldTags, src.BoldTags)
	setList(&dst.ItalicTags, src.ItalicTags)
	setList(&dst.UnderlineTags, src.UnderlineTags)
	setList(&dst.ParagraphTags, src.ParagraphTags)
	setList(&dst.CodeTags, src.CodeTags)
	setList(&dst.BreakTags, src.BreakTags)
	setList(&dst.TransparentTags, src.TransparentTags)
	setList(&dst.DropTags, src.DropTags)
	setString(&dst.MentionClass, src.MentionClass)
	setString(&dst.CustomClass, src.CustomClass)
	setString(&dst.Normalize, src.Normalize)
}

func mergeRender(dst *RenderOptions, src RenderOptions) {
	setString(&dst.BoldTag, src.BoldTag)
	setString(&dst.ItalicTag, src.ItalicTag)
	setString(&dst.UnderlineTag, src.UnderlineTag)
	setString(&dst.ParagraphTag, src.ParagraphTag)
	setString(&dst.CodeTag, src.CodeTag)
}

func mergeInsert(dst *InsertOptions, src InsertOptions) {
	setString(&dst.MentionContent, src.MentionContent)
	setString(&dst.MentionID, src.MentionID)
	setString(&dst.CustomContent, src.CustomContent)
	setString(&dst.CustomData, src.CustomData)
}

func mergeTheme(dst *Theme, src Theme) {
	setString(&dst.Foreground, src.Foreground)
	setString(&dst.Background, src.Background)
	setString(&dst.StatuslineForeground, src.StatuslineForeground)
	setString(&dst.StatuslineBackground, src.StatuslineBackground)
	setString(&dst.SelectionForeground, src.SelectionForeground)
	setString(&dst.SelectionBackground, src.SelectionBackground)
	setString(&dst.HeadingForeground, src.HeadingForeground)
	setString(&dst.MentionForeground, src.MentionForeground)
	setString(&dst.MentionBackground, src.MentionBackground)
	setString(&dst.CustomForeground, src.CustomForeground)
	setString(&dst.CustomBackground, src.CustomBackground)
	setString(&dst.CodeForeground, src.CodeForeground)
	setString(&dst.CodeBackground, src.CodeBackground)
	setString(&dst.SyntaxKeyword, src.SyntaxKeyword)
	setString(&dst.SyntaxString, src.SyntaxString)
	setString(&dst.SyntaxComment, src.SyntaxComment)
	setString(&dst.SyntaxType, src.SyntaxType)
	setString(&dst.SyntaxFunction, src.SyntaxFunction)
	setString(&dst.SyntaxNumber, src.SyntaxNumber)
	setString(&dst.SyntaxConstant, src.SyntaxConstant)
	setString(&dst.SyntaxOperator, src.SyntaxOperator)
	setString(&dst.SyntaxPunctuation, src.SyntaxPunctuation)
	setString(&dst.SyntaxField, src.SyntaxField)
	setString(&dst.SyntaxBuiltin, src.SyntaxBuiltin)
	setString(&dst.SyntaxVariable, src.SyntaxVariable)
	setString(&dst.SyntaxParameter, src.SyntaxParameter)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setList(dst *[]string, v []string) {
	if len(v) > 0 {
		*dst = v
	}
}

func ThemePath(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "theme", name+".toml"), nil
}

func LoadTheme(name string) (Theme, error) {
	path, err := ThemePath(name)
	if err != nil {
		return Theme{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, err
	}
	var t Theme
	if _, err := toml.Decode(string(data), &t); err == nil {
		return t, nil
	}
	var wrap struct {
		Theme Theme `toml:"theme"`
	}
	if _, err := toml.Decode(string(data), &wrap); err != nil {
		return Theme{}, err
	}
	return wrap.Theme, nil
}

func ConfigDir() (string, error) {
	if v := os.Getenv("QDOC_CONFIG_HOME"); v != "" {
		return filepath.Join(v), nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "qdoc"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "qdoc"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}
