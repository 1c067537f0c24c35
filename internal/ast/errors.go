package ast

import "errors"

// Operation errors
var (
	// ErrAmbiguous indicates that a selection no longer resolves against the
	// forest it is applied to, or that an operation has no single meaning at
	// an atomic node boundary. The forest is left unchanged.
	ErrAmbiguous = errors.New("ambiguous operation")

	// ErrInvalidFormat indicates an unknown style key.
	ErrInvalidFormat = errors.New("invalid format")
)

// Structure errors
var (
	// ErrInvalidPath indicates that a path does not address a node.
	ErrInvalidPath = errors.New("invalid path")

	// ErrMalformedInput indicates a forest that is not a well-formed tree.
	// The markup parser degrades instead of returning it.
	ErrMalformedInput = errors.New("malformed input")
)

// History errors
var (
	// ErrHistoryUnderflow indicates undo or redo with an empty stack. The
	// call is a no-op.
	ErrHistoryUnderflow = errors.New("history underflow")
)
