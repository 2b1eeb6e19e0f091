package core

import "strings"

// Source identifies the transport a location is fetched through.
type Source int

// Supported sources. SourceLocal is the zero value.
const (
	SourceLocal Source = iota
	SourceS3
	SourceAzure
	SourceDatabase
)

// String returns the source tag.
func (s Source) String() string {
	switch s {
	case SourceS3:
		return "s3"
	case SourceAzure:
		return "azure"
	case SourceDatabase:
		return "database"
	default:
		return "local"
	}
}

// Remote reports whether the source is fetched over the network.
func (s Source) Remote() bool {
	return s != SourceLocal
}

// ParseSource converts a source tag to a Source.
// Any tag other than s3, azure or database means a local file.
func ParseSource(tag string) Source {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "s3":
		return SourceS3
	case "azure":
		return SourceAzure
	case "database", "db":
		return SourceDatabase
	default:
		return SourceLocal
	}
}
