package errors

import (
	"strings"
	"unicode"
)

// maxGroupNameLength bounds group names; Photoshop itself caps layer names at 255.
const maxGroupNameLength = 255

// ValidateGroupName validates the name of the layer group that holds the
// placeholders. Names are matched exactly, so no trimming or case folding
// happens here: the only rejected inputs are ones no document can contain.
func ValidateGroupName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "group name cannot be empty")
	}
	if len([]rune(name)) > maxGroupNameLength {
		return New(ErrCodeInvalidInput, "group name too long (max %d characters)", maxGroupNameLength)
	}
	for _, r := range name {
		if r == '\x00' {
			return New(ErrCodeInvalidInput, "group name contains a null byte")
		}
	}
	return nil
}

// ValidateOutputPath validates a path the pipeline will write to.
// Relative and absolute paths are both accepted and are never normalised,
// since the configured canvas path is written into the collage config as-is.
//
// Validation rules:
//   - Path cannot be empty
//   - No null bytes or control characters
//   - Path must name a file, not a directory (no trailing separator)
func ValidateOutputPath(what, path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "%s path cannot be empty", what)
	}
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s path contains invalid characters", what)
		}
	}
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, "\\") {
		return New(ErrCodeInvalidInput, "%s path must name a file, not a directory", what)
	}
	return nil
}
