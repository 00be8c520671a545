package errors

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"
)

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		kind    string
		err     error
		wantMsg string
	}{
		{
			name:    "with original error",
			op:      "Fit",
			kind:    "invalid input",
			err:     fmt.Errorf("test error"),
			wantMsg: "glmnet: Fit: invalid input: test error",
		},
		{
			name:    "without original error",
			op:      "Predict",
			kind:    "not fitted",
			err:     nil,
			wantMsg: "glmnet: Predict: not fitted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			// スタックトレースの存在確認
			formatted := fmt.Sprintf("%+v", err)
			if !strings.Contains(formatted, "errors_test.go") {
				t.Error("Expected stack trace to contain test file name")
			}

			var modelErr *ModelError
			if !As(err, &modelErr) {
				t.Error("Error should be castable to *ModelError")
			}
		})
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("glmnet.Fit", 10, 9, 0)

	want := "glmnet: glmnet.Fit: dimension mismatch on axis 0 (rows). Expected 10, got 9"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Fatal("Error should be castable to *DimensionError")
	}
	if dimErr.Expected != 10 || dimErr.Got != 9 {
		t.Errorf("unexpected fields %+v", dimErr)
	}
}

func TestNewSolverError(t *testing.T) {
	err := NewSolverError("elnet", 7777, "all used predictors have zero variance")

	want := "glmnet: elnet: all used predictors have zero variance (status 7777)"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var solverErr *SolverError
	if !As(err, &solverErr) {
		t.Fatal("Error should be castable to *SolverError")
	}
	if solverErr.Code != 7777 {
		t.Errorf("Code = %d, want 7777", solverErr.Code)
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("lambda_min_ratio", "must be in [0, 1]", 1.5)

	want := "glmnet: validation failed for parameter 'lambda_min_ratio': must be in [0, 1] (got: 1.5)"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var valErr *ValidationError
	if !As(err, &valErr) {
		t.Error("Error should be castable to *ValidationError")
	}
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("ElasticNetCV", "Predict")

	want := "glmnet: ElasticNetCV: this model is not fitted yet. Call Fit() before using Predict()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestSolverWarnings(t *testing.T) {
	conv := NewConvergenceWarning("lognet", 1000, 12)
	if !strings.Contains(conv.Error(), "12th lambda") || !strings.Contains(conv.Error(), "1000 iterations") {
		t.Errorf("unexpected message %q", conv.Error())
	}

	over := NewActiveSetWarning("elnet", 20, 7)
	if !strings.Contains(over.Error(), "pmax=20") || !strings.Contains(over.Error(), "7th lambda") {
		t.Errorf("unexpected message %q", over.Error())
	}
}

func TestWarnRouting(t *testing.T) {
	var mu sync.Mutex
	var got []error
	SetWarningHandler(func(w error) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, w)
	})
	defer SetWarningHandler(func(w error) {})

	SetZerologWarnFunc(nil)
	Warn(NewConvergenceWarning("elnet", 10, 3))

	if len(got) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(got))
	}

	var zerologGot int
	SetZerologWarnFunc(func(error) { zerologGot++ })
	defer SetZerologWarnFunc(nil)
	Warn(NewActiveSetWarning("elnet", 5, 4))

	if zerologGot != 1 || len(got) != 1 {
		t.Errorf("zerolog sink should take precedence: zerolog=%d handler=%d", zerologGot, len(got))
	}
}

func TestWrapAndIs(t *testing.T) {
	wrapped := Wrap(ErrEmptyData, "in glmnet.Fit")

	if !Is(wrapped, ErrEmptyData) {
		t.Error("Expected Is(wrapped, ErrEmptyData) to be true")
	}
	if !strings.Contains(wrapped.Error(), "in glmnet.Fit") {
		t.Error("Expected wrapped error to contain wrapping message")
	}

	wrappedf := Wrapf(ErrNoSolutions, "fold %d", 3)
	if !Is(wrappedf, ErrNoSolutions) || !strings.Contains(wrappedf.Error(), "fold 3") {
		t.Errorf("unexpected wrapped error %v", wrappedf)
	}
}

func TestNumericalHelpers(t *testing.T) {
	if err := CheckNumericalStability("loss", []float64{1, 2, 3}, 0); err != nil {
		t.Errorf("unexpected error %v", err)
	}
	err := CheckNumericalStability("loss", []float64{1, math.NaN()}, 4)
	var numErr *NumericalInstabilityError
	if !As(err, &numErr) || numErr.Iteration != 4 {
		t.Errorf("expected NumericalInstabilityError, got %v", err)
	}

	if ClipValue(2, 0, 1) != 1 || ClipValue(-1, 0, 1) != 0 || ClipValue(0.5, 0, 1) != 0.5 {
		t.Error("ClipValue did not clip")
	}
	if math.IsInf(StabilizeExp(1e6), 0) {
		t.Error("StabilizeExp overflowed")
	}
	if StabilizeExp(0) != 1 {
		t.Error("StabilizeExp(0) != 1")
	}
}
