package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Language maps code block language tags to a highlight grammar.
type Language struct {
	Name    string   `toml:"name"`
	Grammar string   `toml:"grammar"`
	Aliases []string `toml:"aliases"`
}

type Languages struct {
	Languages []Language `toml:"language"`
}

// DefaultLanguages covers the grammars the highlighter ships with. json has
// no tree-sitter grammar and is highlighted by pattern.
func DefaultLanguages() Languages {
	return Languages{
		Languages: []Language{
			{Name: "go", Grammar: "go", Aliases: []string{"golang"}},
			{Name: "bash", Grammar: "bash", Aliases: []string{"sh", "shell", "zsh"}},
			{Name: "yaml", Grammar: "yaml", Aliases: []string{"yml"}},
			{Name: "toml", Grammar: "toml"},
			{Name: "json", Grammar: "json", Aliases: []string{"jsonc"}},
		},
	}
}

// Match resolves a code block language tag such as "golang", "{.go}" or
// "language-go".
func (l Languages) Match(tag string) *Language {
	tag = normalizeLanguageTag(tag)
	if tag == "" {
		return nil
	}
	for i := range l.Languages {
		lang := &l.Languages[i]
		if strings.EqualFold(lang.Name, tag) {
			return lang
		}
		for _, alias := range lang.Aliases {
			if strings.EqualFold(alias, tag) {
				return lang
			}
		}
	}
	return nil
}

func normalizeLanguageTag(tag string) string {
	s := strings.TrimSpace(tag)
	s = strings.TrimPrefix(s, "{")
	s = strings.TrimSuffix(s, "}")
	s = strings.TrimPrefix(s, ".")
	s = strings.TrimPrefix(s, "language-")
	s = strings.TrimPrefix(s, "lang-")
	return strings.ToLower(s)
}

// LoadLanguages reads languages.toml; entries there take precedence over
// the built-in ones.
func LoadLanguages() (Languages, error) {
	defaults := DefaultLanguages()
	path, err := LanguagesPath()
	if err != nil {
		return defaults, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaults, nil
		}
		return defaults, err
	}

	var cfg Languages
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return defaults, err
	}
	for i := range cfg.Languages {
		if cfg.Languages[i].Grammar == "" {
			cfg.Languages[i].Grammar = cfg.Languages[i].Name
		}
	}
	merged := Languages{Languages: append([]Language{}, cfg.Languages...)}
	for _, lang := range defaults.Languages {
		if merged.Match(lang.Name) == nil {
			merged.Languages = append(merged.Languages, lang)
		}
	}
	return merged, nil
}

func LanguagesPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "languages.toml"), nil
}
