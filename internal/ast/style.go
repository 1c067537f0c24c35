package ast

import "fmt"

// StyleSet holds the character styles of a text leaf. A zero field means the
// style is not set; renderers treat unset and false the same way.
type StyleSet struct {
	Bold            bool   `json:"bold,omitempty" yaml:"bold,omitempty"`
	Italic          bool   `json:"italic,omitempty" yaml:"italic,omitempty"`
	Underline       bool   `json:"underline,omitempty" yaml:"underline,omitempty"`
	Color           string `json:"color,omitempty" yaml:"color,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty" yaml:"backgroundColor,omitempty"`
}

// StyleKey names one attribute of a StyleSet.
type StyleKey string

const (
	StyleBold            StyleKey = "bold"
	StyleItalic          StyleKey = "italic"
	StyleUnderline       StyleKey = "underline"
	StyleColor           StyleKey = "color"
	StyleBackgroundColor StyleKey = "backgroundColor"
)

// ParseStyleKey validates a style name.
func ParseStyleKey(name string) (StyleKey, error) {
	switch k := StyleKey(name); k {
	case StyleBold, StyleItalic, StyleUnderline, StyleColor, StyleBackgroundColor:
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown style %q", ErrInvalidFormat, name)
}

// IsToggle reports whether the key is a boolean style.
func (k StyleKey) IsToggle() bool {
	return k == StyleBold || k == StyleItalic || k == StyleUnderline
}

// IsZero reports whether no style is set.
func (s StyleSet) IsZero() bool {
	return s == StyleSet{}
}

// Get returns the value of key: "true" or "" for boolean keys.
func (s StyleSet) Get(key StyleKey) string {
	switch key {
	case StyleBold:
		return boolValue(s.Bold)
	case StyleItalic:
		return boolValue(s.Italic)
	case StyleUnderline:
		return boolValue(s.Underline)
	case StyleColor:
		return s.Color
	case StyleBackgroundColor:
		return s.BackgroundColor
	}
	return ""
}

// Has reports whether key is set.
func (s StyleSet) Has(key StyleKey) bool {
	return s.Get(key) != ""
}

// With returns s with key set to value. For boolean keys any non-empty value
// sets the style; an empty value clears it.
func (s StyleSet) With(key StyleKey, value string) StyleSet {
	on := value != "" && value != "false"
	switch key {
	case StyleBold:
		s.Bold = on
	case StyleItalic:
		s.Italic = on
	case StyleUnderline:
		s.Underline = on
	case StyleColor:
		s.Color = value
	case StyleBackgroundColor:
		s.BackgroundColor = value
	}
	return s
}

// Merge returns s with every style set in o applied on top.
func (s StyleSet) Merge(o StyleSet) StyleSet {
	s.Bold = s.Bold || o.Bold
	s.Italic = s.Italic || o.Italic
	s.Underline = s.Underline || o.Underline
	if o.Color != "" {
		s.Color = o.Color
	}
	if o.BackgroundColor != "" {
		s.BackgroundColor = o.BackgroundColor
	}
	return s
}

func boolValue(b bool) string {
	if b {
		return "true"
	}
	return ""
}
