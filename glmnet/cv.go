package glmnet

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/goglmnet/core/parallel"
	"github.com/YuminosukeSato/goglmnet/pkg/errors"
	"github.com/YuminosukeSato/goglmnet/pkg/log"
)

// CrossValidation is the result of k-fold cross-validation over a lambda
// path.
type CrossValidation struct {
	// Path is the reference fit on the full data.
	Path   *Path
	NFolds int
	// Lambda, MeanLoss and StdLoss are truncated to the shortest fold path.
	Lambda   []float64
	MeanLoss []float64
	StdLoss  []float64
	// FoldLoss holds the held-out loss of every fold, truncated likewise.
	FoldLoss [][]float64
	// Folds is the 1-based fold id of every row.
	Folds []int
}

// BestIndex returns the index of the smallest mean loss. Ties go to the
// larger lambda.
func (cv *CrossValidation) BestIndex() int {
	best := 0
	for i, l := range cv.MeanLoss {
		if l < cv.MeanLoss[best] {
			best = i
		}
	}
	return best
}

// BestLambda returns the lambda with the smallest mean loss.
func (cv *CrossValidation) BestLambda() float64 {
	return cv.Lambda[cv.BestIndex()]
}

// Lambda1SE returns the index of the largest lambda whose mean loss is
// within one standard error of the minimum.
func (cv *CrossValidation) Lambda1SE() int {
	best := cv.BestIndex()
	limit := cv.MeanLoss[best] + cv.StdLoss[best]
	for i := 0; i <= best; i++ {
		if cv.MeanLoss[i] <= limit {
			return i
		}
	}
	return best
}

type cvConfig struct {
	nfolds     int
	folds      []int
	parallel   bool
	seed       uint64
	seedSet    bool
	maxWorkers int
}

// CVOption configures CrossValidate.
type CVOption func(*cvConfig)

// WithNFolds sets the number of generated folds. Default: min(10, N/3).
func WithNFolds(n int) CVOption {
	return func(c *cvConfig) {
		c.nfolds = n
	}
}

// WithFolds supplies 1-based fold ids, one per row. The number of folds is
// the largest id.
func WithFolds(folds []int) CVOption {
	return func(c *cvConfig) {
		c.folds = folds
	}
}

// WithParallel fits the folds concurrently.
func WithParallel(parallel bool) CVOption {
	return func(c *cvConfig) {
		c.parallel = parallel
	}
}

// WithRandomSeed seeds the fold shuffle. Default: time based.
func WithRandomSeed(seed uint64) CVOption {
	return func(c *cvConfig) {
		c.seed = seed
		c.seedSet = true
	}
}

// WithMaxWorkers bounds the number of concurrent fold fits. Default: the
// number of CPUs.
func WithMaxWorkers(n int) CVOption {
	return func(c *cvConfig) {
		c.maxWorkers = n
	}
}

// CrossValidate runs k-fold cross-validation.
//
// The path is first fitted on all rows; every fold is then refitted on its
// held-in rows over that path's lambda grid, so WithNLambda,
// WithLambdaMinRatio and WithLambda only affect the reference fit. Held-out
// loss is weighted by the observation weights. Any fit error aborts the
// whole run.
func CrossValidate(X, y mat.Matrix, family Family, cvOpts []CVOption, fitOpts ...Option) (*CrossValidation, error) {
	return CrossValidateContext(context.Background(), X, y, family, cvOpts, fitOpts...)
}

// CrossValidateContext is CrossValidate with cancellation between fold
// fits.
func CrossValidateContext(ctx context.Context, X, y mat.Matrix, family Family, cvOpts []CVOption, fitOpts ...Option) (result *CrossValidation, err error) {
	defer errors.Recover(&err, "glmnet.CrossValidate")

	cv := &cvConfig{}
	for _, opt := range cvOpts {
		opt(cv)
	}
	cfg := newFitConfig(fitOpts...)

	ref, err := fit(X, y, family, cfg)
	if err != nil {
		return nil, err
	}
	n, _ := X.Dims()

	folds, nfolds, err := cv.resolveFolds(n)
	if err != nil {
		return nil, err
	}
	logger := cfg.logger.With(
		log.FamilyKey, family.String(),
		log.OperationKey, log.OperationCrossValidate,
		log.NFoldsKey, nfolds,
		log.ParallelKey, cv.parallel,
	)
	start := time.Now()

	foldCfg := cfg.forFolds(ref.Lambda)
	weights := cfg.weights
	if weights == nil {
		weights = filled(n, 1)
	}
	fitFold := func(ctx context.Context, k int) ([]float64, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var in, out []int
		for i, f := range folds {
			if f == k+1 {
				out = append(out, i)
			} else {
				in = append(in, i)
			}
		}
		fc := *foldCfg
		fc.weights = subsetVec(weights, in)
		fc.offsets = subsetVec(cfg.offsets, in)
		path, err := fit(subsetRows(X, in), subsetRows(y, in), family, &fc)
		if err != nil {
			return nil, errors.Wrapf(err, "fold %d", k+1)
		}
		loss, err := path.Loss(subsetRows(X, out), subsetRows(y, out), subsetVec(weights, out), nil, subsetVec(cfg.offsets, out))
		if err != nil {
			return nil, errors.Wrapf(err, "fold %d", k+1)
		}
		logger.Debug("fold fitted", log.FoldKey, k+1, log.LambdaCountKey, len(loss))
		return loss, nil
	}

	foldLoss := make([][]float64, nfolds)
	// Fold fits may run on other goroutines, so each one recovers its own
	// panics.
	runFold := func(ctx context.Context, k int) error {
		return errors.SafeExecute(fmt.Sprintf("glmnet.CrossValidate fold %d", k+1), func() error {
			loss, err := fitFold(ctx, k)
			foldLoss[k] = loss
			return err
		})
	}
	if cv.parallel {
		err = parallel.Map(ctx, nfolds, cv.maxWorkers, runFold)
	} else {
		for k := 0; k < nfolds && err == nil; k++ {
			err = runFold(ctx, k)
		}
	}
	if err != nil {
		logger.Error("cross-validation failed", err)
		return nil, err
	}

	result = aggregate(ref, folds, nfolds, foldLoss)
	logger.Info("cross-validation finished",
		log.LambdaCountKey, len(result.Lambda),
		log.LambdaKey, result.BestLambda(),
		log.LossKey, result.MeanLoss[result.BestIndex()],
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return result, nil
}

func (c *cvConfig) resolveFolds(n int) ([]int, int, error) {
	if c.folds != nil {
		nfolds, err := checkFolds(c.folds, n)
		if err != nil {
			return nil, 0, err
		}
		return append([]int(nil), c.folds...), nfolds, nil
	}
	nfolds := c.nfolds
	if nfolds == 0 {
		nfolds = min(10, n/3)
	}
	if nfolds < 2 || nfolds > n {
		return nil, 0, errors.NewValidationError("nfolds", "must be between 2 and the number of rows", nfolds)
	}
	seed := c.seed
	if !c.seedSet {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed))
	return GenerateFolds(n, nfolds, rng), nfolds, nil
}

// aggregate truncates the fold losses to the shortest and combines them
// weighted by fold size.
func aggregate(ref *Path, folds []int, nfolds int, foldLoss [][]float64) *CrossValidation {
	nlambda := len(ref.Lambda)
	for _, l := range foldLoss {
		nlambda = min(nlambda, len(l))
	}
	sizes := make([]float64, nfolds)
	for _, f := range folds {
		sizes[f-1]++
	}
	total := float64(len(folds))

	for k := range foldLoss {
		foldLoss[k] = foldLoss[k][:nlambda]
	}
	mean := make([]float64, nlambda)
	std := make([]float64, nlambda)
	for i := 0; i < nlambda; i++ {
		for k, l := range foldLoss {
			mean[i] += l[i] * sizes[k] / total
		}
		ss := 0.0
		for k, l := range foldLoss {
			d := l[i] - mean[i]
			ss += sizes[k] * d * d
		}
		std[i] = math.Sqrt(ss / total / float64(nfolds-1))
	}

	return &CrossValidation{
		Path:     ref,
		NFolds:   nfolds,
		Lambda:   append([]float64(nil), ref.Lambda[:nlambda]...),
		MeanLoss: mean,
		StdLoss:  std,
		FoldLoss: foldLoss,
		Folds:    folds,
	}
}

// subsetRows copies the given rows of m into a new matrix.
func subsetRows(m mat.Matrix, rows []int) *mat.Dense {
	_, c := m.Dims()
	out := mat.NewDense(len(rows), c, nil)
	for i, r := range rows {
		for j := 0; j < c; j++ {
			out.Set(i, j, m.At(r, j))
		}
	}
	return out
}

func subsetVec(v []float64, idx []int) []float64 {
	if v == nil {
		return nil
	}
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = v[j]
	}
	return out
}
