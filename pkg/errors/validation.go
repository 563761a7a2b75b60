package errors

import (
	"regexp"
	"unicode"
)

// maxValueLength bounds element values read from text inputs.
const maxValueLength = 256

// ValidateValue validates an element value read from an external source
// (pair files, HTTP bodies). Values must be non-empty, at most 256 bytes,
// and free of control characters so they survive the printer and DOT output.
func ValidateValue(v string) error {
	if v == "" {
		return New(ErrCodeInvalidInput, "value cannot be empty")
	}

	if len(v) > maxValueLength {
		return New(ErrCodeInvalidInput, "value too long (max %d characters)", maxValueLength)
	}

	for _, r := range v {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "value %q contains control characters", v)
		}
	}

	return nil
}

// treeNameRegex matches store tree names: a letter or digit followed by
// letters, digits, dots, dashes or underscores.
var treeNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// ValidateTreeName validates the name under which a tree is saved in a store.
func ValidateTreeName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "tree name cannot be empty")
	}
	if !treeNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid tree name: %q", name)
	}
	return nil
}
