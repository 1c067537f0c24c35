package treediff

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kobzarvs/qdoc/internal/ast"
)

type wireOp struct {
	Op    OpKind    `json:"op"`
	Path  string    `json:"path"`
	Value *ast.Node `json:"value,omitempty"`
	Delta string    `json:"delta,omitempty"`
}

// Pointer renders p as a JSON Pointer into the serialized forest, for
// example [0 1] becomes "/0/children/1".
func Pointer(p ast.Path) string {
	var sb strings.Builder
	for i, idx := range p {
		if i > 0 {
			sb.WriteString("/children")
		}
		sb.WriteByte('/')
		sb.WriteString(strconv.Itoa(idx))
	}
	return sb.String()
}

// ParsePointer is the inverse of Pointer.
func ParsePointer(s string) (ast.Path, error) {
	if s == "" {
		return ast.Path{}, nil
	}
	parts := strings.Split(strings.TrimPrefix(s, "/"), "/")
	if !strings.HasPrefix(s, "/") || len(parts)%2 != 1 {
		return nil, fmt.Errorf("%w: pointer %q", ast.ErrInvalidPath, s)
	}
	p := make(ast.Path, 0, len(parts)/2+1)
	for i, part := range parts {
		if i%2 == 1 {
			if part != "children" {
				return nil, fmt.Errorf("%w: pointer %q", ast.ErrInvalidPath, s)
			}
			continue
		}
		idx, err := strconv.Atoi(part)
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("%w: pointer %q", ast.ErrInvalidPath, s)
		}
		p = append(p, idx)
	}
	return p, nil
}

func (op Op) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireOp{Op: op.Op, Path: Pointer(op.Path), Value: op.Value, Delta: op.Delta})
}

func (op *Op) UnmarshalJSON(data []byte) error {
	var w wireOp
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	p, err := ParsePointer(w.Path)
	if err != nil {
		return err
	}
	switch w.Op {
	case OpAdd, OpReplace:
		if w.Value == nil {
			return fmt.Errorf("%w: %s without value", ast.ErrMalformedInput, w.Op)
		}
	case OpRemove:
	default:
		return fmt.Errorf("%w: unknown op %q", ast.ErrMalformedInput, w.Op)
	}
	*op = Op{Op: w.Op, Path: p, Value: w.Value, Delta: w.Delta}
	return nil
}

// JSON renders p as an indented JSON Patch document. An empty patch renders
// as "[]".
func (p Patch) JSON() (string, error) {
	ops := []Op(p)
	if ops == nil {
		ops = []Op{}
	}
	data, err := json.MarshalIndent(ops, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ParsePatch decodes a JSON Patch document produced by JSON.
func ParsePatch(data []byte) (Patch, error) {
	var ops []Op
	if err := json.Unmarshal(data, &ops); err != nil {
		return nil, err
	}
	return Patch(ops), nil
}

// String summarizes p one op per line for logs and terminal output.
func (p Patch) String() string {
	var sb strings.Builder
	for _, op := range p {
		sb.WriteString(string(op.Op))
		sb.WriteByte(' ')
		sb.WriteString(Pointer(op.Path))
		if op.Value != nil {
			sb.WriteByte(' ')
			sb.WriteString(string(op.Value.Kind))
			if !op.Value.IsContainer() {
				sb.WriteString(" " + strconv.Quote(op.Value.Content))
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
