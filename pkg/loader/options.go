package loader

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/go-viper/mapstructure/v2"
	"github.com/leapstack-labs/structload/pkg/core"
	"github.com/leapstack-labs/structload/pkg/format"
)

// optionsBag is the open-ended key/value form of the loader options, as
// accepted from callers that pass a plain map.
type optionsBag struct {
	Format string `mapstructure:"format"`

	// Database
	ConnectionString string `mapstructure:"connection_string"`
	Query            string `mapstructure:"query"`

	// Azure
	Container string `mapstructure:"container"`

	// S3
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	SessionToken    string `mapstructure:"session_token"`
	PathStyle       bool   `mapstructure:"path_style"`

	// Parsers
	Engine    string `mapstructure:"engine"`
	Sheets    any    `mapstructure:"sheets"`
	Delimiter string `mapstructure:"delimiter"`
	Encoding  string `mapstructure:"encoding"`
}

// FromOptions builds a Config from a location, a source tag and an options
// map. Recognized keys: format, connection_string, query, container,
// region, endpoint, access_key_id, secret_access_key, session_token,
// path_style, engine, sheets, delimiter, encoding.
//
// sheets takes a name, an index, or a list mixing both. Unknown keys and
// values of the wrong shape are configuration errors.
func FromOptions(location, source string, opts map[string]any) (Config, error) {
	var bag optionsBag
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &bag,
	})
	if err != nil {
		return Config{}, fmt.Errorf("failed to create options decoder: %w", err)
	}
	if err := dec.Decode(opts); err != nil {
		return Config{}, core.ConfigurationError(err, "invalid options")
	}

	sheets, err := parseSheets(bag.Sheets)
	if err != nil {
		return Config{}, core.ConfigurationError(err, "invalid options")
	}
	delim, err := parseDelimiter(bag.Delimiter)
	if err != nil {
		return Config{}, core.ConfigurationError(err, "invalid options")
	}

	return Config{
		Location: location,
		Source:   source,
		Format:   bag.Format,
		Options: format.Options{
			CSV:     format.CSVOptions{Delimiter: delim, Encoding: bag.Encoding},
			Parquet: format.ParquetOptions{Engine: format.ParquetEngine(bag.Engine)},
			Excel:   format.ExcelOptions{Sheets: sheets},
		},
		S3: S3Options{
			Region:          bag.Region,
			AccessKeyID:     bag.AccessKeyID,
			SecretAccessKey: bag.SecretAccessKey,
			SessionToken:    bag.SessionToken,
			Endpoint:        bag.Endpoint,
			UsePathStyle:    bag.PathStyle,
		},
		Azure: AzureOptions{
			ConnectionString: bag.ConnectionString,
			Container:        bag.Container,
		},
		Database: DatabaseOptions{
			ConnectionString: bag.ConnectionString,
			Query:            bag.Query,
		},
	}, nil
}

func parseSheets(v any) ([]format.Sheet, error) {
	switch s := v.(type) {
	case nil:
		return nil, nil
	case []any:
		sheets := make([]format.Sheet, 0, len(s))
		for _, item := range s {
			sh, err := parseSheet(item)
			if err != nil {
				return nil, err
			}
			sheets = append(sheets, sh)
		}
		return sheets, nil
	case []string:
		sheets := make([]format.Sheet, 0, len(s))
		for _, name := range s {
			sheets = append(sheets, format.SheetByName(name))
		}
		return sheets, nil
	case []int:
		sheets := make([]format.Sheet, 0, len(s))
		for _, i := range s {
			sheets = append(sheets, format.SheetByIndex(i))
		}
		return sheets, nil
	default:
		sh, err := parseSheet(v)
		if err != nil {
			return nil, err
		}
		return []format.Sheet{sh}, nil
	}
}

func parseSheet(v any) (format.Sheet, error) {
	switch s := v.(type) {
	case string:
		return format.SheetByName(s), nil
	case int:
		return sheetIndex(int64(s))
	case int64:
		return sheetIndex(s)
	case float64:
		if s != float64(int64(s)) {
			return format.Sheet{}, fmt.Errorf("sheet index must be an integer, got %v", s)
		}
		return sheetIndex(int64(s))
	default:
		return format.Sheet{}, fmt.Errorf("sheet must be a name or an index, got %T", v)
	}
}

func sheetIndex(i int64) (format.Sheet, error) {
	if i < 0 {
		return format.Sheet{}, fmt.Errorf("sheet index must not be negative, got %d", i)
	}
	return format.SheetByIndex(int(i)), nil
}

// parseDelimiter accepts a single character, or an escaped tab.
func parseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case `\t`, "tab":
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %s", strconv.Quote(s))
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}
