// Package blueprint parses, validates and describes platform-native automation JSON.
package blueprint

import "errors"

// Blueprint errors.
var (
	ErrInvalidBlueprint  = errors.New("blueprint does not match platform schema")
	ErrPlaceholderModule = errors.New("blueprint uses a placeholder module identifier")
	ErrMalformedResponse = errors.New("malformed model response")
)
