package io

import (
	"path/filepath"
	"strings"

	"github.com/matzehuels/lineup/pkg/errors"
)

// Format is a record encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatBSON Format = "bson"
)

// Formats lists the supported formats.
var Formats = []Format{FormatJSON, FormatYAML, FormatTOML, FormatBSON}

var extensions = map[string]Format{
	".json": FormatJSON,
	".yaml": FormatYAML,
	".yml":  FormatYAML,
	".toml": FormatTOML,
	".bson": FormatBSON,
}

// ParseFormat resolves a format name, case-insensitively. "yml" is accepted
// for YAML.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if f, ok := extensions["."+s]; ok {
		return f, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown record format %q", s)
}

// FormatFromPath resolves the format from the extension of path.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := extensions[ext]; ok {
		return f, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "cannot infer record format of %s", path)
}

// Ext returns the canonical file extension of f.
func (f Format) Ext() string { return "." + string(f) }

// Binary reports whether f is not text.
func (f Format) Binary() bool { return f == FormatBSON }
