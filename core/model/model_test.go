package model

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/YuminosukeSato/examprep/pkg/errors"
)

type savedThing struct {
	Name  string
	Stats []float64
	State *StateManager
}

func TestGobStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "artifact", "thing.gob")

	state := NewStateManager()
	state.SetFitted(3, 10)
	in := savedThing{Name: "plan", Stats: []float64{1.5, 2.5}, State: state}

	var store GobStore
	if err := store.Save(path, in); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	var out savedThing
	if err := store.Load(path, &out); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if out.Name != in.Name || len(out.Stats) != 2 || out.Stats[1] != 2.5 {
		t.Errorf("Load() = %+v, want %+v", out, in)
	}
	if !out.State.IsFitted() {
		t.Error("fitted state should survive the round trip")
	}
	if f, s := out.State.GetDimensions(); f != 3 || s != 10 {
		t.Errorf("GetDimensions() = (%d, %d), want (3, 10)", f, s)
	}

	// 一時ファイルは残らない
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("expected only the artifact in the directory, got %d entries", len(entries))
	}
}

func TestGobStore_Errors(t *testing.T) {
	var store GobStore

	err := store.Load(filepath.Join(t.TempDir(), "missing.gob"), &savedThing{})
	if errors.KindOf(err) != errors.KindIO {
		t.Errorf("Load(missing) kind = %v, want io", errors.KindOf(err))
	}

	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	err = store.Save(filepath.Join(blocker, "thing.gob"), savedThing{Name: "x"})
	if errors.KindOf(err) != errors.KindIO {
		t.Errorf("Save(under a file) kind = %v, want io", errors.KindOf(err))
	}

	if err := LoadFromReader(&savedThing{}, bytes.NewReader([]byte("not gob"))); errors.KindOf(err) != errors.KindIO {
		t.Errorf("LoadFromReader(garbage) kind = %v, want io", errors.KindOf(err))
	}
}

func TestStateManager(t *testing.T) {
	s := NewStateManager()
	if s.IsFitted() {
		t.Error("new StateManager should not be fitted")
	}

	err := s.RequireFitted("ColumnTransformer", "Transform")
	var nfe *errors.NotFittedError
	if !errors.As(err, &nfe) {
		t.Fatalf("RequireFitted() = %v, want NotFittedError", err)
	}

	s.SetFitted(9, 4)
	if err := s.RequireFitted("ColumnTransformer", "Transform"); err != nil {
		t.Errorf("RequireFitted() after SetFitted = %v", err)
	}

	s.Reset()
	if s.IsFitted() {
		t.Error("Reset should clear the fitted flag")
	}
	if f, n := s.GetDimensions(); f != 0 || n != 0 {
		t.Errorf("Reset should clear dimensions, got (%d, %d)", f, n)
	}
}
