// Package goglmnet fits generalized linear models with elastic-net
// penalties along a full regularization path, in the manner of the
// Fortran glmnet library, and selects the penalty by k-fold
// cross-validation.
//
// Three response families are supported: Gaussian (identity link),
// binomial (logit link) and Poisson (log link).
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/goglmnet/glmnet"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    X := mat.NewDense(6, 2, []float64{
//	        1, 0.5,
//	        2, 0.1,
//	        3, 0.9,
//	        4, 0.4,
//	        5, 0.7,
//	        6, 0.2,
//	    })
//	    y := mat.NewDense(6, 1, []float64{1.1, 2.0, 3.2, 3.9, 5.1, 6.0})
//
//	    path, err := glmnet.Fit(X, y, glmnet.Normal, glmnet.WithAlpha(0.5))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    last := path.Len() - 1
//	    fmt.Println(path.Lambda[last], path.Betas.Column(last))
//	}
//
// # Packages
//
// The library is organized into several packages:
//
//   - glmnet: paths (Fit), prediction, held-out loss, cross-validation,
//     the compressed coefficient matrix and YAML configuration
//   - linear: ElasticNetCV, a Fit/Predict/Score estimator over glmnet
//   - metrics: regression metrics (MSE, RMSE, R²)
//   - core/solver: the coordinate-descent solver (elnet, lognet, fishnet)
//     behind an integer status-code contract
//   - core/model: fitted-state management, estimator interfaces and
//     serializable weights
//   - core/parallel: parallel processing utilities
//   - pkg/errors, pkg/log: structured errors, warnings and logging
//
// # Errors and warnings
//
// Invalid input is rejected before the solver runs. Fatal solver codes
// come back as *errors.SolverError. Non-convergence and active-set
// overflow truncate the path instead; they are logged, passed to
// errors.Warn and kept in Path.Warnings.
//
// # License
//
// goglmnet is released under the MIT License.
package goglmnet
