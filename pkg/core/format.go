package core

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// =============================================================================
// Format
// =============================================================================

// Format identifies the encoding of a structured data file.
type Format int

// Supported formats.
const (
	FormatUnknown Format = iota
	FormatCSV
	FormatParquet
	FormatXLSX
	FormatJSON
)

var formatTags = map[Format]string{
	FormatCSV:     "csv",
	FormatParquet: "parquet",
	FormatXLSX:    "xlsx",
	FormatJSON:    "json",
}

// String returns the canonical format tag (e.g. "csv").
func (f Format) String() string {
	if tag, ok := formatTags[f]; ok {
		return tag
	}
	return "unknown"
}

// MultiTable reports whether the format yields one table per worksheet.
func (f Format) MultiTable() bool {
	return f == FormatXLSX
}

// ParseFormat converts a tag to a Format. Matching is case-insensitive and a
// leading dot is ignored, so ".CSV" and "csv" are equivalent.
func ParseFormat(tag string) (Format, error) {
	tag = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(tag)), ".")
	for f, t := range formatTags {
		if t == tag {
			return f, nil
		}
	}
	return FormatUnknown, fmt.Errorf("%w: %s. Supported: %s", ErrUnsupportedFormat, tag, strings.Join(SupportedFormats(), ", "))
}

// DetectFormat derives the format from the extension of location.
// Works for local paths and for scheme-qualified object keys alike.
func DetectFormat(location string) (Format, error) {
	return ParseFormat(Extension(location))
}

// Extension returns the lower-cased extension of location without the dot.
func Extension(location string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(location)), ".")
}

// SupportedFormats returns the supported format tags in sorted order.
func SupportedFormats() []string {
	tags := make([]string, 0, len(formatTags))
	for _, t := range formatTags {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}
