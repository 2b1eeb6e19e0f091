// Package format parses raw bytes of a supported file format into tables.
//
// Each format registers a Parser in init(). The loader looks parsers up by
// core.Format instead of comparing tags at call sites, so bytes read from
// disk and bytes fetched from object storage take the same path.
package format

import (
	"context"
	"sort"
	"sync"

	"github.com/leapstack-labs/structload/pkg/core"
)

// Parser converts the raw bytes of one file into one or more tables.
// Every format but xlsx yields exactly one table.
type Parser func(ctx context.Context, data []byte, opts Options) ([]*core.Table, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[core.Format]Parser)
)

// Register adds a parser to the registry.
// Called by parser implementations in their init() functions.
func Register(f core.Format, p Parser) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[f] = p
}

// Lookup retrieves the parser for a format.
func Lookup(f core.Format) (Parser, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	p, ok := registry[f]
	return p, ok
}

// Registered returns the registered format tags (sorted).
func Registered() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	tags := make([]string, 0, len(registry))
	for f := range registry {
		tags = append(tags, f.String())
	}
	sort.Strings(tags)
	return tags
}

// Parse looks up the parser for f and runs it over data.
func Parse(ctx context.Context, f core.Format, data []byte, opts Options) ([]*core.Table, error) {
	p, ok := Lookup(f)
	if !ok {
		return nil, core.DataLoadingError(core.ErrUnsupportedFormat,
			"no parser for format %s; supported formats: %v", f, Registered())
	}
	if err := opts.Validate(f); err != nil {
		return nil, err
	}
	return p(ctx, data, opts)
}
