package duckdb

import (
	"net/url"
	"sort"
	"strings"
)

// Params holds DuckDB-specific configuration, taken from the query string
// of the connection string:
//
//	duckdb:///warehouse.duckdb?extensions=httpfs,json&threads=4
type Params struct {
	// Extensions to install and load (e.g., "httpfs", "spatial", "json")
	Extensions []string

	// Settings are DuckDB configuration options (e.g., memory_limit,
	// threads) passed to the driver when the database is opened.
	Settings map[string]string
}

// parseParams splits query parameters into extensions and settings.
// Repeated and comma-separated extension values are both accepted.
func parseParams(q url.Values) *Params {
	p := &Params{}
	for key, values := range q {
		if key == "extensions" {
			for _, v := range values {
				for _, ext := range strings.Split(v, ",") {
					if ext = strings.TrimSpace(ext); ext != "" {
						p.Extensions = append(p.Extensions, ext)
					}
				}
			}
			continue
		}
		if len(values) == 0 {
			continue
		}
		if p.Settings == nil {
			p.Settings = make(map[string]string)
		}
		p.Settings[key] = values[len(values)-1]
	}
	return p
}

// dsn returns the go-duckdb data source name for a database path.
func (p *Params) dsn(path string) string {
	if path == ":memory:" {
		path = ""
	}
	if len(p.Settings) == 0 {
		return path
	}
	keys := make([]string, 0, len(p.Settings))
	for k := range p.Settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	q := url.Values{}
	for _, k := range keys {
		q.Set(k, p.Settings[k])
	}
	return path + "?" + q.Encode()
}
