package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot/plotter"

	"github.com/YuminosukeSato/examprep/pkg/errors"
)

func TestWriteHistograms(t *testing.T) {
	m := mat.NewDense(5, 3, []float64{
		-1.2, 0.3, 72,
		0.1, -0.8, 69,
		0.9, 1.1, 47,
		1.4, -0.2, 76,
		-0.5, 0.6, 88,
	})
	dir := filepath.Join(t.TempDir(), "plots")

	paths, err := WriteHistograms(m, []string{"writing_score", "lunch_free/reduced"}, dir, 0)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(dir, "00_writing_score.png"), paths[0])
	assert.Equal(t, filepath.Join(dir, "01_lunch_free_reduced.png"), paths[1])

	for _, p := range paths {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Equal(t, "\x89PNG", string(data[:4]))
	}
}

func TestWriteHistograms_Errors(t *testing.T) {
	m := mat.NewDense(2, 1, []float64{1, 2})

	_, err := WriteHistograms(m, []string{"a", "b"}, t.TempDir(), 5)
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))

	_, err = WriteHistograms(nil, nil, t.TempDir(), 5)
	assert.Equal(t, errors.KindData, errors.KindOf(err))

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	_, err = WriteHistograms(m, []string{"a"}, blocker, 5)
	assert.Equal(t, errors.KindIO, errors.KindOf(err))
}

func TestWriteHistograms_RecoversPanic(t *testing.T) {
	orig := render
	t.Cleanup(func() { render = orig })
	render = func(op, path, name string, values plotter.Values, bins int) error {
		if name == "b" {
			panic("font cache corrupted")
		}
		return orig(op, path, name, values, bins)
	}

	m := mat.NewDense(3, 2, []float64{1, 4, 2, 5, 3, 6})
	dir := t.TempDir()
	paths, err := WriteHistograms(m, []string{"a", "b"}, dir, 3)
	require.Error(t, err)
	assert.Nil(t, paths)

	var panicErr *errors.PanicError
	require.True(t, errors.As(err, &panicErr))
	assert.Equal(t, "report.WriteHistograms", panicErr.Operation)
	assert.Contains(t, err.Error(), "font cache corrupted")
	assert.Equal(t, errors.KindInternal, errors.KindOf(err))
	assert.FileExists(t, filepath.Join(dir, "00_a.png"))
}
