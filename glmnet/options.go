package glmnet

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/goglmnet/pkg/log"
)

// Algorithm selects the Newton-Raphson variant used by the Binomial family.
type Algorithm int

const (
	// NewtonRaphson uses the exact Hessian.
	NewtonRaphson Algorithm = iota
	// ModifiedNewtonRaphson bounds the Hessian weights by 1/4.
	ModifiedNewtonRaphson
	// NZSame uses the exact Hessian; with two classes it matches
	// NewtonRaphson.
	NZSame
)

func (a Algorithm) String() string {
	switch a {
	case NewtonRaphson:
		return "newtonraphson"
	case ModifiedNewtonRaphson:
		return "modifiednewtonraphson"
	case NZSame:
		return "nzsame"
	default:
		return "unknown"
	}
}

const (
	defaultNLambda = 100
	defaultTol     = 1e-7
	defaultMaxIter = 1000000
)

// fitConfig holds the resolved options of one Fit call. Zero values mean
// "use the family default".
type fitConfig struct {
	weights       []float64
	offsets       []float64
	alpha         float64
	penaltyFactor []float64
	constraints   mat.Matrix
	exclude       []int
	dfmax         int
	pmax          int

	nlambda           int
	nlambdaSet        bool
	lambdaMinRatio    float64
	lambdaMinRatioSet bool
	lambda            []float64

	tol         float64
	standardize bool
	intercept   bool
	maxIter     int
	naive       *bool
	algorithm   Algorithm
	logger      log.Logger
}

func newFitConfig(opts ...Option) *fitConfig {
	cfg := &fitConfig{
		alpha:       1.0,
		nlambda:     defaultNLambda,
		tol:         defaultTol,
		standardize: true,
		intercept:   true,
		maxIter:     defaultMaxIter,
		algorithm:   NewtonRaphson,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = log.GetLoggerWithName("glmnet")
	}
	return cfg
}

// forFolds returns a copy that fits on the given lambda grid. The path
// length options are dropped because the grid supersedes them.
func (c *fitConfig) forFolds(lambda []float64) *fitConfig {
	out := *c
	out.nlambda = defaultNLambda
	out.nlambdaSet = false
	out.lambdaMinRatio = 0
	out.lambdaMinRatioSet = false
	out.lambda = lambda
	return &out
}

// Option configures Fit.
type Option func(*fitConfig)

// WithWeights sets per-observation weights. Default: all ones.
func WithWeights(w []float64) Option {
	return func(c *fitConfig) {
		c.weights = w
	}
}

// WithOffsets sets per-observation offsets added to the linear predictor.
// The Normal family only accepts all-zero offsets.
func WithOffsets(offsets []float64) Option {
	return func(c *fitConfig) {
		c.offsets = offsets
	}
}

// WithAlpha sets the elastic-net mixing parameter: 1 is the lasso, 0 is
// ridge. Default: 1.
func WithAlpha(alpha float64) Option {
	return func(c *fitConfig) {
		c.alpha = alpha
	}
}

// WithPenaltyFactor sets a relative penalty per predictor. Zero leaves a
// predictor unpenalized. Factors are rescaled to sum to the number of
// predictors.
func WithPenaltyFactor(pf []float64) Option {
	return func(c *fitConfig) {
		c.penaltyFactor = pf
	}
}

// WithConstraints sets a 2×P matrix of lower (row 0) and upper (row 1)
// coefficient bounds. Default: unbounded.
func WithConstraints(cl mat.Matrix) Option {
	return func(c *fitConfig) {
		c.constraints = cl
	}
}

// WithExclude keeps the given 0-based predictors out of every model.
func WithExclude(idx ...int) Option {
	return func(c *fitConfig) {
		c.exclude = append(c.exclude, idx...)
	}
}

// WithDFMax limits the number of non-zero predictors; the path stops once
// it is exceeded. Default: P.
func WithDFMax(n int) Option {
	return func(c *fitConfig) {
		c.dfmax = n
	}
}

// WithPMax limits the number of predictors that may ever become active.
// Default: min(2·dfmax+20, P).
func WithPMax(n int) Option {
	return func(c *fitConfig) {
		c.pmax = n
	}
}

// WithNLambda sets the number of lambda values. Default: 100.
func WithNLambda(n int) Option {
	return func(c *fitConfig) {
		c.nlambda = n
		c.nlambdaSet = true
	}
}

// WithLambdaMinRatio sets the ratio of the smallest to the largest lambda.
// Default: 1e-2 when N < P, otherwise 1e-4.
func WithLambdaMinRatio(r float64) Option {
	return func(c *fitConfig) {
		c.lambdaMinRatio = r
		c.lambdaMinRatioSet = true
	}
}

// WithLambda fits on an explicit lambda sequence. It cannot be combined
// with WithNLambda or WithLambdaMinRatio.
func WithLambda(lambda []float64) Option {
	return func(c *fitConfig) {
		c.lambda = lambda
	}
}

// WithTol sets the coordinate descent convergence threshold. Default: 1e-7.
func WithTol(tol float64) Option {
	return func(c *fitConfig) {
		c.tol = tol
	}
}

// WithStandardize controls predictor standardisation before fitting.
// Coefficients are always reported on the original scale. Default: true.
func WithStandardize(standardize bool) Option {
	return func(c *fitConfig) {
		c.standardize = standardize
	}
}

// WithIntercept controls whether an intercept is fitted. Default: true.
func WithIntercept(intercept bool) Option {
	return func(c *fitConfig) {
		c.intercept = intercept
	}
}

// WithMaxIter caps the total number of coordinate passes. Default: 1e6.
func WithMaxIter(n int) Option {
	return func(c *fitConfig) {
		c.maxIter = n
	}
}

// WithNaiveAlgorithm selects residual updates instead of covariance
// updates for the Normal family. Default: true when P >= 500.
func WithNaiveAlgorithm(naive bool) Option {
	return func(c *fitConfig) {
		c.naive = &naive
	}
}

// WithAlgorithm selects the Binomial Newton-Raphson variant.
func WithAlgorithm(a Algorithm) Option {
	return func(c *fitConfig) {
		c.algorithm = a
	}
}

// WithLogger sets the logger used for fit diagnostics.
func WithLogger(l log.Logger) Option {
	return func(c *fitConfig) {
		c.logger = l
	}
}

// OutType selects the scale of predictions.
type OutType int

const (
	// OutLink returns the linear predictor.
	OutLink OutType = iota
	// OutResponse applies the inverse link of the family. Binomial
	// probabilities are kept strictly inside (0, 1).
	OutResponse
)

type predictConfig struct {
	outType OutType
	offsets []float64
}

// PredictOption configures Predict.
type PredictOption func(*predictConfig)

// WithOutType sets the prediction scale. Default: OutLink.
func WithOutType(t OutType) PredictOption {
	return func(c *predictConfig) {
		c.outType = t
	}
}

// WithPredictOffsets adds per-observation offsets to the linear predictor.
func WithPredictOffsets(offsets []float64) PredictOption {
	return func(c *predictConfig) {
		c.offsets = offsets
	}
}
