package errors

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestPipelineErrorConstructors(t *testing.T) {
	cause := fmt.Errorf("column 'gender' not found")

	tests := []struct {
		name     string
		build    func(op string, err error) error
		wantKind Kind
		wantMsg  string
	}{
		{
			name:     "configuration",
			build:    NewConfigurationError,
			wantKind: KindConfiguration,
			wantMsg:  "examprep: ColumnTransformer.Fit: configuration error: column 'gender' not found",
		},
		{
			name:     "io",
			build:    NewIOError,
			wantKind: KindIO,
			wantMsg:  "examprep: ColumnTransformer.Fit: io error: column 'gender' not found",
		},
		{
			name:     "data",
			build:    NewDataError,
			wantKind: KindData,
			wantMsg:  "examprep: ColumnTransformer.Fit: data error: column 'gender' not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build("ColumnTransformer.Fit", cause)

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			// スタックトレースの存在確認
			formatted := fmt.Sprintf("%+v", err)
			if !strings.Contains(formatted, "errors_test.go") {
				t.Error("Expected stack trace to contain test file name")
			}

			var pErr *PipelineError
			if !As(err, &pErr) {
				t.Fatal("Error should be castable to *PipelineError")
			}
			if pErr.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", pErr.Kind, tt.wantKind)
			}
			if !Is(err, cause) {
				t.Error("cause should be reachable with Is")
			}
		})
	}
}

func TestWrapOperation(t *testing.T) {
	inner := NewDataError("dataset.Table.Float", New("cannot parse \"abc\""))

	err := WrapOperation("DataTransformation.Transform", inner, "train_path", "train.csv")

	var opErr *OperationError
	if !As(err, &opErr) {
		t.Fatalf("expected *OperationError, got %T", err)
	}
	if opErr.Kind != KindData {
		t.Errorf("Kind = %v, want %v", opErr.Kind, KindData)
	}
	if opErr.Context["train_path"] != "train.csv" {
		t.Errorf("Context[train_path] = %v, want train.csv", opErr.Context["train_path"])
	}
	if !strings.Contains(err.Error(), "cannot parse") {
		t.Errorf("message should carry the cause, got %q", err.Error())
	}

	// 二重には包まない
	again := WrapOperation("cmd.transform", err, "config", "default")
	var outer *OperationError
	if !As(again, &outer) || outer != opErr {
		t.Error("WrapOperation should not nest OperationErrors")
	}
	if opErr.Context["config"] != "default" {
		t.Error("context should be merged into the existing OperationError")
	}

	if WrapOperation("noop", nil) != nil {
		t.Error("WrapOperation(nil) should return nil")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"plain", New("boom"), KindInternal},
		{"io", NewIOError("op", New("disk full")), KindIO},
		{"wrapped config", Wrap(NewConfigurationError("op", ErrMissingColumn), "ctx"), KindConfiguration},
		{"dimension", NewDimensionError("op", 2, 3, 1), KindData},
		{"validation", NewValidationError("strategy", "unknown", "mean"), KindConfiguration},
		{"panic", NewPanicError("op", "x"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("StandardScaler.Apply", 2, 3, 1)

	want := "examprep: StandardScaler.Apply: dimension mismatch on axis 1 (features). Expected 2, got 3"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Error("Error should be castable to *DimensionError")
	}
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("ColumnTransformer", "Transform")

	want := "examprep: ColumnTransformer: this transformer is not fitted yet. Call Fit() before using Transform()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestWarn(t *testing.T) {
	var got []error
	SetWarningHandler(func(w error) { got = append(got, w) })
	defer SetWarningHandler(func(w error) {})

	Warn(NewUnknownCategoryWarning("gender", []string{"other"}))

	if len(got) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(got))
	}
	if !strings.Contains(got[0].Error(), "gender") {
		t.Errorf("warning should mention the column, got %q", got[0].Error())
	}

	// zerologフックが優先される
	var hooked int
	SetZerologWarnFunc(func(w error) { hooked++ })
	defer SetZerologWarnFunc(nil)
	Warn(NewUnknownCategoryWarning("lunch", []string{"free"}))
	if hooked != 1 || len(got) != 1 {
		t.Errorf("zerolog hook should take precedence: hooked=%d handler=%d", hooked, len(got))
	}
}

func TestCheckMatrix(t *testing.T) {
	ok := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	if err := CheckMatrix("check", ok, 2, 2); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	bad := mat.NewDense(2, 2, []float64{1, math.NaN(), 3, math.Inf(1)})
	err := CheckMatrix("check", bad, 2, 2)
	if err == nil {
		t.Fatal("expected error for non-finite values")
	}
	if KindOf(err) != KindData {
		t.Errorf("KindOf() = %v, want %v", KindOf(err), KindData)
	}
	if !strings.Contains(err.Error(), "row 0, column 1") {
		t.Errorf("message should locate the first bad cell, got %q", err.Error())
	}

	if err := CheckValues("check", []float64{1, math.Inf(-1)}); err == nil {
		t.Error("CheckValues should reject -Inf")
	}
}
