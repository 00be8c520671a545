// Package solver implements the elastic-net coordinate descent routines for
// the Gaussian (Elnet), binomial (Lognet) and Poisson (Fishnet) families.
//
// The routines keep the classic glmnet calling convention: the design matrix
// is passed column-major, coefficients come back compressed in an nx × nlam
// buffer whose rows are mapped to predictors through a shared 1-based index
// array, and failures are reported through an integer status code rather
// than a Go error. Callers are expected to decode the code.
package solver

import (
	"math"

	"github.com/YuminosukeSato/goglmnet/pkg/errors"
)

// Status codes written to Result.JErr.
const (
	StatusOK = 0
	// 1..MaxMemoryStatus: coefficient buffers could not be allocated.
	MaxMemoryStatus = 7776
	// StatusZeroVariance: every predictor is constant or excluded.
	StatusZeroVariance = 7777
	// StatusAllUnpenalized: every penalty factor is zero.
	StatusAllUnpenalized = 1000
	// StatusDegenerateResponse: the binomial response is (almost) a single
	// class, or the Poisson response is identically zero.
	StatusDegenerateResponse = 8000
	// StatusNegativeResponse: a Poisson count is negative.
	StatusNegativeResponse = 8888
	// Non-convergence at lambda m is reported as -m; an active set larger
	// than nx at lambda m as -(ActiveSetOverflowBase + m).
	ActiveSetOverflowBase = 10000
)

// Algorithm variants.
const (
	// Elnet ka values.
	CovarianceUpdates = 1
	NaiveUpdates      = 2

	// Lognet kopt values.
	KoptNewton         = 0
	KoptModifiedNewton = 1
	KoptNZSame         = 2
)

const (
	// big stands in for the infinite first lambda of a solver-chosen grid.
	big = 9.9e35
	// minimum lambda ratio used when flmin is zero.
	eps = 1.0e-6
	// probability clamp used by the binomial family.
	pmin = 1.0e-5
	// path early-stopping thresholds.
	mnlam  = 5
	sml    = 1.0e-5
	devmax = 0.999
	// maxAlloc bounds the nx × nlam coefficient buffer.
	maxAlloc = 1 << 31
)

// Args carries the inputs of one solver call.
//
// X is nobs × nvars column-major. For Lognet, Y is nobs × 2 column-major
// holding weighted (success, failure) counts in that order and Weights is
// ignored. For Elnet and Fishnet, Y has length nobs.
type Args struct {
	Alpha float64 // elastic-net mixing, 1 = lasso
	NObs  int
	NVars int
	X     []float64
	Y     []float64

	Weights []float64
	Offsets []float64 // nil means zeros; Elnet ignores it

	// JD lists excluded predictors: JD[0] is the count, JD[1:] are 1-based
	// predictor indices.
	JD []int
	VP []float64 // penalty factors, length nvars
	CL []float64 // 2 × nvars column-major box constraints (lower, upper)

	NE    int     // max predictors allowed to be non-zero
	NX    int     // max predictors ever entering the active set
	NLam  int     // number of lambda values
	FLMin float64 // lambda ratio, or >= 1 to use ULam
	ULam  []float64

	Thr   float64
	ISD   bool // standardize predictors
	Intr  bool // fit an intercept
	MaxIt int
}

// Result carries the outputs of one solver call.
type Result struct {
	LMU  int       // number of solutions produced
	A0   []float64 // intercepts, length nlam
	CA   []float64 // nx × nlam column-major compressed coefficients
	IA   []int     // length nx, 1-based predictor index per storage row
	NIN  []int     // active rows per solution, length nlam
	Dev0 float64   // null deviance (Lognet and Fishnet)
	FDev []float64 // fraction of deviance explained, length nlam
	ALM  []float64 // lambda per solution, length nlam
	NLP  int       // total coordinate passes
	JErr int
}

// CAAt returns the coefficient stored in row l of solution m, both 0-based.
func (r *Result) CAAt(nx, l, m int) float64 {
	return r.CA[m*nx+l]
}

func (a *Args) validate(routine string, ycols int) error {
	if a.NObs <= 0 || a.NVars <= 0 {
		return errors.NewValueError(routine, "nobs and nvars must be positive")
	}
	if len(a.X) != a.NObs*a.NVars {
		return errors.NewDimensionError(routine, a.NObs*a.NVars, len(a.X), 0)
	}
	if len(a.Y) != a.NObs*ycols {
		return errors.NewDimensionError(routine, a.NObs*ycols, len(a.Y), 0)
	}
	if ycols == 1 && len(a.Weights) != a.NObs {
		return errors.NewDimensionError(routine, a.NObs, len(a.Weights), 0)
	}
	if a.Offsets != nil && len(a.Offsets) != a.NObs {
		return errors.NewDimensionError(routine, a.NObs, len(a.Offsets), 0)
	}
	if len(a.VP) != a.NVars {
		return errors.NewDimensionError(routine, a.NVars, len(a.VP), 1)
	}
	if len(a.CL) != 2*a.NVars {
		return errors.NewDimensionError(routine, 2*a.NVars, len(a.CL), 1)
	}
	if len(a.JD) == 0 || a.JD[0] != len(a.JD)-1 {
		return errors.NewValueError(routine, "jd[0] must hold the number of excluded predictors")
	}
	for _, j := range a.JD[1:] {
		if j < 1 || j > a.NVars {
			return errors.NewIndexError(routine, j, a.NVars, 1)
		}
	}
	if a.FLMin >= 1 && len(a.ULam) < a.NLam {
		return errors.NewDimensionError(routine, a.NLam, len(a.ULam), 0)
	}
	return nil
}

// newResult allocates the output buffers, or returns a result carrying a
// memory status when they would be too large.
func newResult(nx, nlam int) *Result {
	if nx <= 0 || nlam <= 0 || int64(nx)*int64(nlam) > maxAlloc {
		return &Result{JErr: 1}
	}
	return &Result{
		A0:   make([]float64, nlam),
		CA:   make([]float64, nx*nlam),
		IA:   make([]int, nx),
		NIN:  make([]int, nlam),
		FDev: make([]float64, nlam),
		ALM:  make([]float64, nlam),
	}
}

// lambdaPath yields the penalty for each path position in the solver's
// working scale.
type lambdaPath struct {
	flmin float64
	ulam  []float64
	scale float64 // user lambdas are divided by this
	alf   float64
	alpha float64
}

func newLambdaPath(a *Args, scale float64) *lambdaPath {
	lp := &lambdaPath{flmin: a.FLMin, ulam: a.ULam, scale: scale, alpha: a.Alpha}
	if a.FLMin < 1 {
		if a.NLam > 1 {
			lp.alf = math.Pow(math.Max(a.FLMin, eps), 1.0/float64(a.NLam-1))
		} else {
			lp.alf = 1
		}
	}
	return lp
}

// userGrid reports whether the caller supplied the lambda sequence.
func (lp *lambdaPath) userGrid() bool { return lp.flmin >= 1 }

// at returns the lambda for 0-based position m. prev is the lambda used at
// m-1 and alm0 the smallest lambda with an all-zero solution, computed by the
// caller at the null model.
func (lp *lambdaPath) at(m int, prev, alm0 float64) float64 {
	switch {
	case lp.userGrid():
		return lp.ulam[m] / lp.scale
	case m == 0:
		return big
	case m == 1:
		return lp.alf * alm0 / math.Max(lp.alpha, 1.0e-3)
	default:
		return prev * lp.alf
	}
}

// penalties rescales vp to sum to nvars. It reports StatusAllUnpenalized
// when no predictor carries a penalty.
func penalties(vp []float64) ([]float64, int) {
	out := make([]float64, len(vp))
	sum := 0.0
	maxv := 0.0
	for j, v := range vp {
		out[j] = math.Max(v, 0)
		sum += out[j]
		maxv = math.Max(maxv, out[j])
	}
	if maxv <= 0 {
		return nil, StatusAllUnpenalized
	}
	scale := float64(len(vp)) / sum
	for j := range out {
		out[j] *= scale
	}
	return out, StatusOK
}

// softThreshold applies the elastic-net coordinate update and box
// constraints to the partial residual correlation u.
func softThreshold(u, ab, dem, xv, lo, hi float64) float64 {
	au := math.Abs(u) - ab
	if au <= 0 {
		return 0
	}
	return math.Max(lo, math.Min(hi, math.Copysign(au, u)/(xv+dem)))
}

// failureStatus encodes a failure at 0-based path position m.
func failureStatus(overflow bool, m int) int {
	if overflow {
		return -(ActiveSetOverflowBase + m + 1)
	}
	return -(m + 1)
}
