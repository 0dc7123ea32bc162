package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateNodeID validates a node identifier supplied by an external caller.
// It rejects ids that could collide with internal keys or corrupt document
// files.
//
// The validation rules are intentionally conservative:
//   - No empty ids
//   - No control characters or whitespace
//   - Not the reserved "root" pseudo-parent key
//   - Maximum length of 256 characters
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidNodeID, "node id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidNodeID, "node id too long (max 256 characters)")
	}

	if id == "root" {
		return New(ErrCodeInvalidNodeID, "node id %q is reserved", id)
	}

	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidNodeID, "node id contains invalid characters")
		}
	}

	return nil
}

// ValidateDocPath validates a document file path for safety.
// It prevents path traversal and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidateDocPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid characters")
		}
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidInput, "path cannot contain path traversal sequences (..)")
	}

	return nil
}

// panelNameRegex matches valid side-panel identifiers.
var panelNameRegex = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// ValidatePanelName validates a UI panel identifier passed to the layout
// configuration. An empty name is valid and means "no panel active".
func ValidatePanelName(name string) error {
	if name == "" {
		return nil
	}
	if !panelNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid panel name: %q", name)
	}
	return nil
}
