package domain

import (
	"fmt"
	"strings"
)

const MaxIdentifierLength = 255

// ValidateIdentifier rejects identifiers that could escape the base location.
func ValidateIdentifier(identifier string) error {
	switch {
	case identifier == "":
		return fmt.Errorf("%w: empty", ErrInvalidIdentifier)
	case strings.HasPrefix(identifier, "."):
		// hidden names are reserved for in-progress uploads
		return fmt.Errorf("%w: %q starts with a dot", ErrInvalidIdentifier, identifier)
	case len(identifier) > MaxIdentifierLength:
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidIdentifier, MaxIdentifierLength)
	case strings.ContainsAny(identifier, "/\\\x00"):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidIdentifier, identifier)
	case strings.Contains(identifier, ".."):
		return fmt.Errorf("%w: %q contains a traversal sequence", ErrInvalidIdentifier, identifier)
	}
	return nil
}
