package ast

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// wireNode is the serialized shape of a Node. Field names are part of the
// interchange format and must not change.
type wireNode struct {
	Type       Kind        `json:"type" yaml:"type"`
	Level      int         `json:"level,omitempty" yaml:"level,omitempty"`
	Content    *string     `json:"content,omitempty" yaml:"content,omitempty"`
	Styles     *wireStyles `json:"styles,omitempty" yaml:"styles,omitempty"`
	ID         *string     `json:"id,omitempty" yaml:"id,omitempty"`
	CustomData *string     `json:"customData,omitempty" yaml:"customData,omitempty"`
	Language   string      `json:"language,omitempty" yaml:"language,omitempty"`
	Children   *[]*Node    `json:"children,omitempty" yaml:"children,omitempty"`
}

// wireStyles has no IsZero method, so yaml.v3 keeps the empty styles of an
// unstyled text leaf.
type wireStyles StyleSet

func (n *Node) wire() wireNode {
	w := wireNode{Type: n.Kind}
	content := n.Content
	switch n.Kind {
	case KindText:
		styles := n.Styles
		w.Content = &content
		w.Styles = (*wireStyles)(&styles)
	case KindParagraph, KindHeading:
		children := n.Children
		if children == nil {
			children = []*Node{}
		}
		w.Children = &children
		if n.Kind == KindHeading {
			w.Level = n.Level
		}
	case KindCode:
		w.Content = &content
		w.Language = n.Language
	case KindMention:
		id := n.ID
		w.Content = &content
		w.ID = &id
	case KindCustom:
		data := n.CustomData
		w.Content = &content
		w.CustomData = &data
	}
	return w
}

func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.wire())
}

func (n *Node) MarshalYAML() (interface{}, error) {
	return n.wire(), nil
}

func (n *Node) UnmarshalJSON(data []byte) error {
	var w wireNode
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	out := Node{Kind: w.Type, Level: w.Level, Language: w.Language}
	if w.Content != nil {
		out.Content = *w.Content
	}
	if w.Styles != nil {
		out.Styles = StyleSet(*w.Styles)
	}
	if w.ID != nil {
		out.ID = *w.ID
	}
	if w.CustomData != nil {
		out.CustomData = *w.CustomData
	}
	if w.Children != nil {
		out.Children = *w.Children
	}
	switch out.Kind {
	case KindText, KindParagraph, KindHeading, KindCode, KindMention, KindCustom:
	default:
		return fmt.Errorf("%w: unknown node type %q", ErrMalformedInput, w.Type)
	}
	*n = out
	return nil
}

// JSON renders f as indented JSON.
func (f Forest) JSON() (string, error) {
	nodes := []*Node(f)
	if nodes == nil {
		nodes = []*Node{}
	}
	data, err := json.MarshalIndent(nodes, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ParseJSON decodes a forest and validates it.
func ParseJSON(data []byte) (Forest, error) {
	var nodes []*Node
	if err := json.Unmarshal(data, &nodes); err != nil {
		return nil, err
	}
	f := Forest(nodes)
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// YAML renders v (a Forest, a Node or any structure holding them) as YAML.
func YAML(v interface{}) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
