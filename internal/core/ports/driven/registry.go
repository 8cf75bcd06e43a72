package driven

import "context"

// NormaliserRegistry selects the appropriate normaliser for a file.
type NormaliserRegistry interface {
	// Normalise converts a file using the best matching normaliser.
	// Returns domain.ErrUnsupportedFormat when nothing matches.
	Normalise(ctx context.Context, name string, data []byte) (*NormaliseResult, error)

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// Supports reports whether a file name has a registered normaliser.
	Supports(name string) bool
}
