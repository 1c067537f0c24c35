package ast

import "fmt"

// Validate checks that f is a well-formed tree: no nil entries, leaves
// without children, known kinds and heading levels in 1..6.
func (f Forest) Validate() error {
	return validateNodes(f, nil)
}

func validateNodes(nodes []*Node, base Path) error {
	for i, n := range nodes {
		p := base.Child(i)
		if n == nil {
			return fmt.Errorf("%w: nil node at %v", ErrMalformedInput, p)
		}
		switch n.Kind {
		case KindParagraph:
		case KindHeading:
			if n.Level < 1 || n.Level > 6 {
				return fmt.Errorf("%w: heading level %d at %v", ErrMalformedInput, n.Level, p)
			}
		case KindText, KindCode, KindMention, KindCustom:
			if len(n.Children) > 0 {
				return fmt.Errorf("%w: %s leaf with children at %v", ErrMalformedInput, n.Kind, p)
			}
			continue
		default:
			return fmt.Errorf("%w: unknown kind %q at %v", ErrMalformedInput, n.Kind, p)
		}
		if err := validateNodes(n.Children, p); err != nil {
			return err
		}
	}
	return nil
}
