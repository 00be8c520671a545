package glmnet

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/goglmnet/pkg/errors"
)

// validate checks the inputs of a fit before anything reaches the solver.
func validate(X, y mat.Matrix, family Family, cfg *fitConfig) error {
	const op = "glmnet.Fit"
	if !family.valid() {
		return errors.NewValidationError("family", "unknown family", int(family))
	}
	if X == nil || y == nil {
		return errors.WithStack(errors.ErrEmptyData)
	}
	n, p := X.Dims()
	ny, yc := y.Dims()
	if n == 0 || p == 0 {
		return errors.WithStack(errors.ErrEmptyData)
	}
	if ny != n {
		return errors.NewDimensionError(op, n, ny, 0)
	}
	if yc != family.responseCols() {
		return errors.NewDimensionError(op, family.responseCols(), yc, 1)
	}
	for j := 0; j < p; j++ {
		if err := errors.CheckNumericalStability(op, mat.Col(nil, j, X), 0); err != nil {
			return err
		}
	}
	for j := 0; j < yc; j++ {
		if err := errors.CheckNumericalStability(op, mat.Col(nil, j, y), 0); err != nil {
			return err
		}
	}

	if cfg.weights != nil {
		if len(cfg.weights) != n {
			return errors.NewDimensionError(op, n, len(cfg.weights), 0)
		}
		if floats.Min(cfg.weights) < 0 {
			return errors.NewValidationError("weights", "must be non-negative", floats.Min(cfg.weights))
		}
		if floats.Sum(cfg.weights) <= 0 {
			return errors.NewValidationError("weights", "must have a positive sum", floats.Sum(cfg.weights))
		}
	}
	if cfg.offsets != nil {
		if len(cfg.offsets) != n {
			return errors.NewDimensionError(op, n, len(cfg.offsets), 0)
		}
		if family == Normal {
			for _, o := range cfg.offsets {
				if o != 0 {
					return errors.NewValidationError("offsets", "are not supported for the normal family", o)
				}
			}
		}
	}
	if cfg.penaltyFactor != nil {
		if len(cfg.penaltyFactor) != p {
			return errors.NewDimensionError(op, p, len(cfg.penaltyFactor), 1)
		}
		if floats.Min(cfg.penaltyFactor) < 0 {
			return errors.NewValidationError("penalty_factor", "must be non-negative", floats.Min(cfg.penaltyFactor))
		}
	}
	if cfg.constraints != nil {
		r, c := cfg.constraints.Dims()
		if r != 2 {
			return errors.NewDimensionError(op, 2, r, 0)
		}
		if c != p {
			return errors.NewDimensionError(op, p, c, 1)
		}
		for j := 0; j < p; j++ {
			if cfg.constraints.At(0, j) > 0 || cfg.constraints.At(1, j) < 0 {
				return errors.NewValidationError("constraints", "lower bounds must be <= 0 and upper bounds >= 0", j)
			}
		}
	}
	for _, j := range cfg.exclude {
		if j < 0 || j >= p {
			return errors.NewIndexError(op, j, p, 1)
		}
	}

	if cfg.alpha < 0 || cfg.alpha > 1 {
		return errors.NewValidationError("alpha", "must be in [0, 1]", cfg.alpha)
	}
	if cfg.nlambda < 1 {
		return errors.NewValidationError("nlambda", "must be positive", cfg.nlambda)
	}
	if cfg.lambdaMinRatioSet && (cfg.lambdaMinRatio < 0 || cfg.lambdaMinRatio > 1) {
		return errors.NewValidationError("lambda_min_ratio", "must be in [0, 1]", cfg.lambdaMinRatio)
	}
	if len(cfg.lambda) > 0 {
		if cfg.nlambdaSet && cfg.nlambda != defaultNLambda {
			return errors.NewValidationError("lambda", "cannot be combined with nlambda", cfg.nlambda)
		}
		if cfg.lambdaMinRatioSet && cfg.lambdaMinRatio != defaultLambdaMinRatio(n, p) {
			return errors.NewValidationError("lambda", "cannot be combined with lambda_min_ratio", cfg.lambdaMinRatio)
		}
		for _, l := range cfg.lambda {
			if l < 0 {
				return errors.NewValidationError("lambda", "must be non-negative", l)
			}
		}
	}
	if cfg.tol <= 0 {
		return errors.NewValidationError("tol", "must be positive", cfg.tol)
	}
	if cfg.maxIter <= 0 {
		return errors.NewValidationError("max_iter", "must be positive", cfg.maxIter)
	}
	if cfg.dfmax < 0 {
		return errors.NewValidationError("dfmax", "must be non-negative", cfg.dfmax)
	}
	if cfg.pmax < 0 {
		return errors.NewValidationError("pmax", "must be non-negative", cfg.pmax)
	}
	if cfg.algorithm < NewtonRaphson || cfg.algorithm > NZSame {
		return errors.NewValidationError("algorithm", "unknown algorithm", cfg.algorithm.String())
	}
	return nil
}
