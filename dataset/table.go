// Package dataset holds the in-memory table model and its CSV codec.
//
// A Table is immutable once built: every accessor returns a copy, so the
// same table can feed fitting and application without being altered.
package dataset

import (
	"math"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/examprep/pkg/errors"
)

// missingMarkers are the cell spellings read as a missing value.
var missingMarkers = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"NaN":  {},
	"nan":  {},
	"null": {},
	"NULL": {},
}

// IsMissing reports whether a raw cell denotes a missing value.
func IsMissing(cell string) bool {
	_, ok := missingMarkers[strings.TrimSpace(cell)]
	return ok
}

// Table is an ordered set of named columns of raw string cells.
type Table struct {
	header  []string
	index   map[string]int
	columns [][]string
}

// NewTable builds a table from a header and row-major records.
// Column names must be unique and every record must match the header width.
func NewTable(header []string, rows [][]string) (Table, error) {
	if len(header) == 0 {
		return Table{}, errors.NewDataError("dataset.NewTable", errors.Wrap(errors.ErrEmptyData, "no columns"))
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		if _, dup := index[name]; dup {
			return Table{}, errors.NewConfigurationError("dataset.NewTable", errors.Newf("duplicate column %q", name))
		}
		index[name] = i
	}

	columns := make([][]string, len(header))
	for j := range columns {
		columns[j] = make([]string, len(rows))
	}
	for i, row := range rows {
		if len(row) != len(header) {
			return Table{}, errors.NewDataError("dataset.NewTable",
				errors.NewDimensionError("dataset.NewTable", len(header), len(row), 1))
		}
		for j, cell := range row {
			columns[j][i] = cell
		}
	}

	return Table{
		header:  append([]string(nil), header...),
		index:   index,
		columns: columns,
	}, nil
}

// Header returns the column names in file order.
func (t Table) Header() []string {
	return append([]string(nil), t.header...)
}

// NumRows returns the number of records.
func (t Table) NumRows() int {
	if len(t.columns) == 0 {
		return 0
	}
	return len(t.columns[0])
}

// Has reports whether the table has a column named name.
func (t Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns a copy of the raw cells of the named column.
func (t Table) Column(name string) ([]string, error) {
	j, ok := t.index[name]
	if !ok {
		return nil, errors.NewConfigurationError("dataset.Table.Column",
			errors.Wrapf(errors.ErrMissingColumn, "column %q not found", name))
	}
	return append([]string(nil), t.columns[j]...), nil
}

// Float parses the named column as numbers. Missing cells become NaN.
func (t Table) Float(name string) ([]float64, error) {
	cells, err := t.Column(name)
	if err != nil {
		return nil, err
	}

	values := make([]float64, len(cells))
	for i, cell := range cells {
		if IsMissing(cell) {
			values[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil {
			return nil, errors.NewDataError("dataset.Table.Float",
				errors.Newf("column %q row %d: cannot parse %q as a number", name, i+1, cell))
		}
		values[i] = v
	}
	return values, nil
}

// Drop returns a new table without the named columns.
func (t Table) Drop(names ...string) (Table, error) {
	drop := make(map[string]struct{}, len(names))
	for _, name := range names {
		if !t.Has(name) {
			return Table{}, errors.NewConfigurationError("dataset.Table.Drop",
				errors.Wrapf(errors.ErrMissingColumn, "column %q not found", name))
		}
		drop[name] = struct{}{}
	}

	var keep []string
	for _, name := range t.header {
		if _, ok := drop[name]; !ok {
			keep = append(keep, name)
		}
	}
	return t.Select(keep...)
}

// Select returns a new table holding only the named columns, in the given order.
func (t Table) Select(names ...string) (Table, error) {
	out := Table{
		header:  make([]string, 0, len(names)),
		index:   make(map[string]int, len(names)),
		columns: make([][]string, 0, len(names)),
	}
	for _, name := range names {
		col, err := t.Column(name)
		if err != nil {
			return Table{}, err
		}
		out.index[name] = len(out.header)
		out.header = append(out.header, name)
		out.columns = append(out.columns, col)
	}
	return out, nil
}
