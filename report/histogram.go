// Package report renders diagnostic plots of transformed feature matrices.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/examprep/pkg/errors"
)

// DefaultBins is the histogram bin count used when bins <= 0.
const DefaultBins = 10

// render draws one histogram to path.
var render = renderHistogram

// WriteHistograms writes one PNG histogram per name to dir. names[j] labels
// column j of m; only the first len(names) columns are plotted. It returns the
// written paths in column order.
func WriteHistograms(m *mat.Dense, names []string, dir string, bins int) ([]string, error) {
	const op = "report.WriteHistograms"
	if m == nil {
		return nil, errors.NewDataError(op, errors.ErrEmptyData)
	}
	r, c := m.Dims()
	if len(names) > c {
		return nil, errors.NewDimensionError(op, c, len(names), 1)
	}
	if bins <= 0 {
		bins = DefaultBins
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.NewIOError(op, err)
	}

	paths := make([]string, 0, len(names))
	for j, name := range names {
		values := make(plotter.Values, r)
		mat.Col(values, j, m)

		path := filepath.Join(dir, fmt.Sprintf("%02d_%s.png", j, fileSafe(name)))
		// gonum/plot はフォントや描画の不整合で panic することがある
		err := errors.SafeExecute(op, func() error {
			return render(op, path, name, values, bins)
		})
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func renderHistogram(op, path, name string, values plotter.Values, bins int) error {
	p := plot.New()
	p.Title.Text = name
	p.X.Label.Text = "value"
	p.Y.Label.Text = "count"

	h, err := plotter.NewHist(values, bins)
	if err != nil {
		return errors.NewDataError(op, errors.Wrapf(err, "column %q", name))
	}
	p.Add(h)

	if err := p.Save(4*vg.Inch, 3*vg.Inch, path); err != nil {
		return errors.NewIOError(op, err)
	}
	return nil
}

// fileSafe replaces path separators and spaces in category-derived names.
func fileSafe(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ' ', ':', '\'':
			return '_'
		}
		return r
	}, name)
}
