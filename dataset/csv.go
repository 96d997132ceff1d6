package dataset

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/examprep/pkg/errors"
)

// CSVLoader reads delimited files with a header row into a Table.
type CSVLoader struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune
}

// Load opens path and parses it. Open and read failures are IO errors,
// malformed records are data errors.
func (l CSVLoader) Load(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, errors.NewIOError("dataset.CSVLoader.Load", err)
	}
	defer f.Close()

	return l.Read(bufio.NewReader(f))
}

// Read parses CSV from r.
func (l CSVLoader) Read(r io.Reader) (Table, error) {
	reader := csv.NewReader(r)
	if l.Comma != 0 {
		reader.Comma = l.Comma
	}
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return Table{}, errors.NewDataError("dataset.CSVLoader.Read", err)
		}
		return Table{}, errors.NewIOError("dataset.CSVLoader.Read", err)
	}
	if len(records) == 0 {
		return Table{}, errors.NewDataError("dataset.CSVLoader.Read", errors.Wrap(errors.ErrEmptyData, "missing header row"))
	}

	return NewTable(records[0], records[1:])
}

// WriteMatrixCSV writes m as CSV with the given header to path, creating parent directories.
func WriteMatrixCSV(path string, header []string, m mat.Matrix) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.NewIOError("dataset.WriteMatrixCSV", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.NewIOError("dataset.WriteMatrixCSV", err)
	}
	defer f.Close()

	if err := EncodeMatrixCSV(f, header, m); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return errors.NewIOError("dataset.WriteMatrixCSV", err)
	}
	return nil
}

// EncodeMatrixCSV writes m as CSV with the given header to w.
func EncodeMatrixCSV(w io.Writer, header []string, m mat.Matrix) error {
	r, c := m.Dims()
	if len(header) != c {
		return errors.NewDimensionError("dataset.EncodeMatrixCSV", c, len(header), 1)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return errors.NewIOError("dataset.EncodeMatrixCSV", err)
	}
	record := make([]string, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			record[j] = strconv.FormatFloat(m.At(i, j), 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return errors.NewIOError("dataset.EncodeMatrixCSV", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.NewIOError("dataset.EncodeMatrixCSV", err)
	}
	return nil
}
