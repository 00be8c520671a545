package glmnet

import (
	"github.com/YuminosukeSato/goglmnet/core/solver"
	"github.com/YuminosukeSato/goglmnet/pkg/errors"
)

// checkStatus decodes a solver status code. Fatal codes come back as a
// *errors.SolverError; non-convergence and active-set overflow come back as
// a warning and a nil error. Lambda indices in warnings are 1-based.
func checkStatus(routine string, code, maxit, pmax int) (warning, err error) {
	switch {
	case code == solver.StatusOK:
		return nil, nil
	case code == solver.StatusAllUnpenalized:
		return nil, errors.NewSolverError(routine, code, "all predictors are unpenalized")
	case code > 0 && code <= solver.MaxMemoryStatus:
		return nil, errors.NewSolverError(routine, code, "memory allocation error")
	case code == solver.StatusZeroVariance:
		return nil, errors.NewSolverError(routine, code, "all used predictors have zero variance")
	case code == solver.StatusDegenerateResponse:
		return nil, errors.NewSolverError(routine, code, "response is degenerate")
	case code == solver.StatusNegativeResponse:
		return nil, errors.NewSolverError(routine, code, "negative response values")
	case code > 0:
		return nil, errors.NewSolverError(routine, code, "unknown error")
	case code >= -solver.ActiveSetOverflowBase:
		return errors.NewConvergenceWarning(routine, maxit, -code), nil
	default:
		return errors.NewActiveSetWarning(routine, pmax, -code-solver.ActiveSetOverflowBase), nil
	}
}
