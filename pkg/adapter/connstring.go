package adapter

import (
	"fmt"
	"net/url"
	"strings"
)

// Config is a parsed connection string.
//
// Connection strings use URL syntax, "scheme[+driver]://rest". The optional
// driver suffix names a client library in other ecosystems
// (postgresql+psycopg2) and is ignored when picking an adapter.
type Config struct {
	// Scheme is the lower-cased registry key, e.g. "postgresql".
	Scheme string
	// Driver is the optional suffix after '+'.
	Driver string
	// Rest is everything after "://".
	Rest string
}

// ParseConnectionString splits a connection string into a Config.
func ParseConnectionString(s string) (Config, error) {
	scheme, rest, ok := strings.Cut(strings.TrimSpace(s), "://")
	if !ok || scheme == "" {
		return Config{}, fmt.Errorf("invalid connection string: expected scheme://..., got %q", redact(s))
	}
	scheme = strings.ToLower(scheme)
	scheme, driver, _ := strings.Cut(scheme, "+")
	return Config{Scheme: scheme, Driver: driver, Rest: rest}, nil
}

// URL parses the connection string as a URL under the given scheme.
func (c Config) URL(scheme string) (*url.URL, error) {
	u, err := url.Parse(scheme + "://" + c.Rest)
	if err != nil {
		return nil, fmt.Errorf("invalid %s connection string: %w", c.Scheme, err)
	}
	return u, nil
}

// Path returns the database file for file-backed engines, following the
// "sqlite:///relative.db" and "sqlite:////absolute.db" convention. An
// empty path or ":memory:" selects an in-memory database.
func (c Config) Path() string {
	path, _, _ := strings.Cut(c.Rest, "?")
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return ":memory:"
	}
	return path
}

// Query returns the parsed query parameters, if any.
func (c Config) Query() url.Values {
	_, query, ok := strings.Cut(c.Rest, "?")
	if !ok {
		return url.Values{}
	}
	values, err := url.ParseQuery(query)
	if err != nil {
		return url.Values{}
	}
	return values
}

// String returns the connection string with any password masked.
func (c Config) String() string {
	return redact(c.Scheme + "://" + c.Rest)
}

// redact masks the password of a URL-shaped connection string.
func redact(s string) string {
	u, err := url.Parse(s)
	if err != nil || u.User == nil {
		return s
	}
	return u.Redacted()
}
