package glmnet

import (
	"context"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/goglmnet/core/solver"
	"github.com/YuminosukeSato/goglmnet/pkg/errors"
	"github.com/YuminosukeSato/goglmnet/pkg/log"
)

// Path is a fitted regularisation path: one model per lambda, ordered by
// decreasing lambda.
type Path struct {
	Family Family
	// A0 holds the intercept of each solution.
	A0 []float64
	// Betas is the P×S coefficient matrix.
	Betas *CompressedPredictorMatrix
	// NullDev is the deviance of the intercept-only model.
	NullDev float64
	// DevRatio is the fraction of NullDev explained by each solution.
	DevRatio []float64
	Lambda   []float64
	// NPasses is the total number of coordinate descent passes.
	NPasses int
	// Warnings holds the non-fatal solver warnings raised while fitting.
	Warnings []error
}

// Len returns the number of solutions on the path.
func (p *Path) Len() int {
	return len(p.Lambda)
}

// Fit computes the elastic-net path of family on design X and response y.
// y has one column, or two (negative, positive) count columns for
// Binomial.
//
// Validation failures and fatal solver codes are returned as errors.
// Non-convergence and active-set overflow truncate the path; they are
// logged, passed to errors.Warn and kept in Path.Warnings.
func Fit(X, y mat.Matrix, family Family, opts ...Option) (*Path, error) {
	return fit(X, y, family, newFitConfig(opts...))
}

func fit(X, y mat.Matrix, family Family, cfg *fitConfig) (path *Path, err error) {
	defer errors.Recover(&err, "glmnet.Fit")

	start := time.Now()
	if err := validate(X, y, family, cfg); err != nil {
		return nil, err
	}
	n, p := X.Dims()
	logger := cfg.logger.With(
		log.FamilyKey, family.String(),
		log.OperationKey, log.OperationFit,
	)

	args := buildArgs(X, n, p, cfg)
	var (
		res     *solver.Result
		routine string
		nullDev float64
	)
	switch family {
	case Normal:
		routine = "elnet"
		args.Y = mat.Col(nil, 0, y)
		ka := solver.CovarianceUpdates
		if naive := cfg.naive; (naive != nil && *naive) || (naive == nil && p >= 500) {
			ka = solver.NaiveUpdates
		}
		nullDev = normalNullDeviance(args.Y)
		res, err = solver.Elnet(ka, args)
	case Binomial:
		routine = "lognet"
		// The solver expects the positive class first.
		args.Y = make([]float64, 2*n)
		for i := 0; i < n; i++ {
			args.Y[i] = y.At(i, 1) * args.Weights[i]
			args.Y[n+i] = y.At(i, 0) * args.Weights[i]
		}
		res, err = solver.Lognet(int(cfg.algorithm), args)
	case Poisson:
		routine = "fishnet"
		args.Y = mat.Col(nil, 0, y)
		res, err = solver.Fishnet(args)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "glmnet: %s", routine)
	}

	warning, err := checkStatus(routine, res.JErr, args.MaxIt, args.NX)
	if err != nil {
		logger.Error("solver failed", err, log.SolverCodeKey, res.JErr, log.ErrorCodeKey, log.ErrorSolverFatal)
		return nil, err
	}
	if res.LMU == 0 {
		return nil, errors.WithStack(errors.ErrNoSolutions)
	}
	if family != Normal {
		nullDev = res.Dev0
	}

	path, err = packagePath(family, res, args, nullDev)
	if err != nil {
		return nil, err
	}
	if warning != nil {
		path.Warnings = append(path.Warnings, warning)
		code := log.ErrorConvergence
		if res.JErr < -solver.ActiveSetOverflowBase {
			code = log.ErrorActiveSet
		}
		logger.Warn(warning.Error(), log.SolverCodeKey, res.JErr, log.ErrorCodeKey, code)
		errors.Warn(warning)
	}

	if logger.Enabled(context.Background(), log.LevelDebug) {
		logger.Debug("path fitted",
			log.SamplesKey, n,
			log.FeaturesKey, p,
			log.AlphaKey, cfg.alpha,
			log.LambdaCountKey, path.Len(),
			log.DevRatioKey, path.DevRatio[path.Len()-1],
			log.SolverPassesKey, path.NPasses,
			log.DurationMsKey, time.Since(start).Milliseconds(),
		)
	}
	return path, nil
}

// buildArgs lays out everything but the response in the solver's calling
// convention.
func buildArgs(X mat.Matrix, n, p int, cfg *fitConfig) *solver.Args {
	a := &solver.Args{
		Alpha: cfg.alpha,
		NObs:  n,
		NVars: p,
		X:     make([]float64, n*p),
		Thr:   cfg.tol,
		ISD:   cfg.standardize,
		Intr:  cfg.intercept,
		MaxIt: cfg.maxIter,
	}
	for j := 0; j < p; j++ {
		mat.Col(a.X[j*n:(j+1)*n], j, X)
	}

	a.Weights = cfg.weights
	if a.Weights == nil {
		a.Weights = filled(n, 1)
	}
	a.Offsets = cfg.offsets

	a.VP = cfg.penaltyFactor
	if a.VP == nil {
		a.VP = filled(p, 1)
	}
	a.CL = make([]float64, 2*p)
	for j := 0; j < p; j++ {
		if cfg.constraints != nil {
			a.CL[2*j] = cfg.constraints.At(0, j)
			a.CL[2*j+1] = cfg.constraints.At(1, j)
		} else {
			a.CL[2*j] = math.Inf(-1)
			a.CL[2*j+1] = math.Inf(1)
		}
	}
	a.JD = []int{len(cfg.exclude)}
	for _, j := range cfg.exclude {
		a.JD = append(a.JD, j+1)
	}

	a.NE = cfg.dfmax
	if a.NE <= 0 {
		a.NE = p
	}
	a.NX = cfg.pmax
	if a.NX <= 0 {
		a.NX = min(2*a.NE+20, p)
	}

	if len(cfg.lambda) > 0 {
		a.NLam = len(cfg.lambda)
		a.FLMin = 2.0
		a.ULam = cfg.lambda
	} else {
		a.NLam = cfg.nlambda
		a.FLMin = cfg.lambdaMinRatio
		if !cfg.lambdaMinRatioSet {
			a.FLMin = defaultLambdaMinRatio(n, p)
		}
	}
	return a
}

func defaultLambdaMinRatio(n, p int) float64 {
	if n < p {
		return 1e-2
	}
	return 1e-4
}

func filled(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// normalNullDeviance is the total sum of squares of y about its mean.
func normalNullDeviance(y []float64) float64 {
	mean := 0.0
	for _, v := range y {
		mean += v
	}
	mean /= float64(len(y))
	dev := 0.0
	for _, v := range y {
		dev += (v - mean) * (v - mean)
	}
	return dev
}

// packagePath converts the first lmu solutions of res into a Path.
func packagePath(family Family, res *solver.Result, args *solver.Args, nullDev float64) (*Path, error) {
	lmu := res.LMU
	rows := 1
	for _, k := range res.NIN[:lmu] {
		rows = max(rows, k)
	}
	ca := mat.NewDense(rows, lmu, nil)
	ia := make([]int, rows)
	for l := 0; l < rows; l++ {
		ia[l] = max(res.IA[l]-1, 0)
		for m := 0; m < lmu; m++ {
			if l < res.NIN[m] {
				ca.Set(l, m, res.CAAt(args.NX, l, m))
			}
		}
	}
	nin := make([]int, lmu)
	copy(nin, res.NIN[:lmu])
	betas, err := NewCompressedPredictorMatrix(args.NVars, ca, ia, nin)
	if err != nil {
		return nil, err
	}

	lambda := make([]float64, lmu)
	copy(lambda, res.ALM[:lmu])
	if args.FLMin < 1 && lmu >= 3 {
		lambda[0] = math.Exp(2*math.Log(lambda[1]) - math.Log(lambda[2]))
	}

	return &Path{
		Family:   family,
		A0:       append([]float64(nil), res.A0[:lmu]...),
		Betas:    betas,
		NullDev:  nullDev,
		DevRatio: append([]float64(nil), res.FDev[:lmu]...),
		Lambda:   lambda,
		NPasses:  res.NLP,
	}, nil
}
