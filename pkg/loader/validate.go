package loader

import (
	"log/slog"

	"github.com/leapstack-labs/structload/pkg/core"
)

// Report summarizes the post-load check of one table. MissingByColumn
// only lists columns with at least one missing cell.
type Report struct {
	Table           string
	Rows            int
	Columns         int
	Empty           bool
	MissingValues   int
	MissingByColumn map[string]int
}

// Validate inspects t without modifying it.
func Validate(t *core.Table) Report {
	return Report{
		Table:           t.Name,
		Rows:            t.NumRows(),
		Columns:         t.NumColumns(),
		Empty:           t.Empty(),
		MissingValues:   t.NullCount(),
		MissingByColumn: t.NullCountsByColumn(),
	}
}

// validate runs Validate and logs the outcome: a warning for an empty
// result and the missing-value count at info when it is nonzero.
func validate(t *core.Table, logger *slog.Logger) Report {
	r := Validate(t)
	attrs := []any{"rows", r.Rows, "columns", r.Columns}
	if r.Table != "" {
		attrs = append(attrs, "table", r.Table)
	}
	if r.Empty {
		logger.Warn("empty result", attrs...)
		return r
	}
	if r.MissingValues > 0 {
		logger.Info("missing values", append(attrs, "count", r.MissingValues, "by_column", r.MissingByColumn)...)
	}
	return r
}
