package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateColumnName validates the accessor name of a value column descriptor.
// Accessor names come from CSV headers and config files, so the rules are
// intentionally conservative:
//   - No empty names
//   - No control characters
//   - Maximum length of 256 characters
func ValidateColumnName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidDescriptor, "column name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidDescriptor, "column name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidDescriptor, "column name contains invalid control characters")
		}
	}

	return nil
}

// ValidatePath validates an output file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// LinkPlaceholder is the cell text placeholder of a link template. On its
// own it is the identity template: the cell text is the link.
const LinkPlaceholder = "${value}"

// ValidateLinkPattern validates the URL template of a link column.
// The template must use http or https and contain the ${value} placeholder.
func ValidateLinkPattern(pattern string) error {
	if pattern == "" || pattern == LinkPlaceholder {
		return nil
	}

	if !strings.HasPrefix(pattern, "http://") && !strings.HasPrefix(pattern, "https://") {
		return New(ErrCodeInvalidDescriptor, "link pattern must use http or https scheme")
	}

	if !strings.Contains(pattern, LinkPlaceholder) {
		return New(ErrCodeInvalidDescriptor, "link pattern %q has no ${value} placeholder", pattern)
	}

	return nil
}

// numberFormatRegex matches significant-digit formats such as ".3n" or ".2g"
// and fixed formats such as ".2f".
var numberFormatRegex = regexp.MustCompile(`^\.[0-9]{1,2}[nfge]$`)

// humanizePatternRegex matches go-humanize patterns such as "#,###.##".
var humanizePatternRegex = regexp.MustCompile(`^#[ ,.']?###([.,]#*)?$`)

// ValidateNumberFormat validates a number format rule.
// Accepted forms are ".<digits><n|g|f|e>" and go-humanize patterns.
func ValidateNumberFormat(format string) error {
	if format == "" {
		return nil
	}
	if numberFormatRegex.MatchString(format) || humanizePatternRegex.MatchString(format) {
		return nil
	}
	return New(ErrCodeInvalidFormat, "invalid number format: %q", format)
}
