package glmnet

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/goglmnet/core/solver"
	"github.com/YuminosukeSato/goglmnet/pkg/errors"
	"github.com/YuminosukeSato/goglmnet/pkg/log"
)

func checkPathShape(t *testing.T, path *Path) {
	t.Helper()
	s := path.Len()
	require.Greater(t, s, 0)
	assert.Len(t, path.A0, s)
	assert.Len(t, path.DevRatio, s)
	_, c := path.Betas.Dims()
	assert.Equal(t, s, c)
}

func TestFitNormal(t *testing.T) {
	X, y := gaussianData(1, 100, 0.5, []float64{1.5, -1, 0.5, 0, 0}, 0.5)
	path, err := Fit(X, y, Normal)
	require.NoError(t, err)
	checkPathShape(t, path)
	assert.Empty(t, path.Warnings)

	for i := 1; i < path.Len(); i++ {
		assert.GreaterOrEqual(t, path.DevRatio[i], path.DevRatio[i-1]-1e-9, "dev ratio at %d", i)
		assert.Less(t, path.Lambda[i], path.Lambda[i-1])
	}
	assert.Equal(t, 0, path.Betas.CountActive(0))
	assert.Greater(t, path.DevRatio[path.Len()-1], 0.8)

	// The first lambda is extrapolated log-linearly from the next two.
	want := math.Exp(2*math.Log(path.Lambda[1]) - math.Log(path.Lambda[2]))
	assert.InDelta(t, want, path.Lambda[0], 1e-12*want)

	last := path.Betas.Column(path.Len() - 1)
	assert.InDelta(t, 1.5, last[0], 0.2)
	assert.InDelta(t, -1.0, last[1], 0.2)

	yv := mat.Col(nil, 0, y)
	mean := floats.Sum(yv) / float64(len(yv))
	ss := 0.0
	for _, v := range yv {
		ss += (v - mean) * (v - mean)
	}
	assert.InDelta(t, ss, path.NullDev, 1e-9)
}

func TestFitNormalNaiveMatchesCovariance(t *testing.T) {
	X, y := gaussianData(2, 80, 0, []float64{1, 0, -2, 0}, 1)
	cov, err := Fit(X, y, Normal, WithNaiveAlgorithm(false), WithTol(1e-12))
	require.NoError(t, err)
	naive, err := Fit(X, y, Normal, WithNaiveAlgorithm(true), WithTol(1e-12), WithLambda(cov.Lambda))
	require.NoError(t, err)
	require.Equal(t, cov.Len(), naive.Len())
	assert.InDeltaSlice(t, cov.A0, naive.A0, 1e-6)
	assert.True(t, mat.EqualApprox(cov.Betas, naive.Betas, 1e-6))
}

func TestFitExplicitLambda(t *testing.T) {
	X, y := gaussianData(3, 60, 0, []float64{1, 1, 0}, 1)
	lambda := []float64{0.5, 0.2, 0.1, 0.01}
	path, err := Fit(X, y, Normal, WithLambda(lambda))
	require.NoError(t, err)
	require.Equal(t, len(lambda), path.Len())
	assert.InDeltaSlice(t, lambda, path.Lambda, 1e-12)
}

func TestPredictLinkMatchesCoefficients(t *testing.T) {
	X, y := gaussianData(4, 50, 2, []float64{1, -1, 0.5}, 0.3)
	path, err := Fit(X, y, Normal)
	require.NoError(t, err)

	m := path.Len() / 2
	pred, err := path.PredictVec(X, m, WithOutType(OutLink))
	require.NoError(t, err)
	beta := mat.NewVecDense(3, path.Betas.Column(m))
	for i := 0; i < 50; i++ {
		want := path.A0[m] + mat.Dot(X.RowView(i), beta)
		assert.InDelta(t, want, pred[i], 1e-10)
	}

	all, err := path.Predict(X, nil)
	require.NoError(t, err)
	r, c := all.Dims()
	assert.Equal(t, 50, r)
	assert.Equal(t, path.Len(), c)
	assert.InDeltaSlice(t, pred, mat.Col(nil, m, all), 1e-12)
}

func TestPredictOffsets(t *testing.T) {
	X, y := poissonData(5, 80, 0.2, []float64{0.5, 0})
	path, err := Fit(X, y, Poisson)
	require.NoError(t, err)

	offsets := make([]float64, 80)
	for i := range offsets {
		offsets[i] = 0.25
	}
	base, err := path.PredictVec(X, 3)
	require.NoError(t, err)
	shifted, err := path.PredictVec(X, 3, WithPredictOffsets(offsets))
	require.NoError(t, err)
	for i := range base {
		assert.InDelta(t, base[i]+0.25, shifted[i], 1e-12)
	}

	_, err = path.PredictVec(X, 3, WithPredictOffsets(offsets[:10]))
	assert.Error(t, err)
	_, err = path.PredictVec(X, path.Len())
	assert.Error(t, err)
	_, err = path.Predict(mat.NewDense(3, 5, nil), nil)
	assert.Error(t, err)

	var ve *errors.ValidationError
	_, err = path.Predict(X, []int{})
	assert.True(t, errors.As(err, &ve))
	_, err = path.Loss(X, y, nil, []int{}, nil)
	assert.True(t, errors.As(err, &ve))
}

func TestPredictLargeInputUsesChunks(t *testing.T) {
	X, y := gaussianData(6, 3000, 1, []float64{0.5, 0.5}, 1)
	path, err := Fit(X, y, Normal, WithNLambda(10))
	require.NoError(t, err)
	pred, err := path.Predict(X, []int{path.Len() - 1})
	require.NoError(t, err)
	beta := path.Betas.Column(path.Len() - 1)
	for _, i := range []int{0, 1500, 2999} {
		want := path.A0[path.Len()-1] + beta[0]*X.At(i, 0) + beta[1]*X.At(i, 1)
		assert.InDelta(t, want, pred.At(i, 0), 1e-10)
	}
}

func TestFitBinomial(t *testing.T) {
	X, y := binomialData(7, 200, -0.3, []float64{1.5, 0, -1})
	for _, alg := range []Algorithm{NewtonRaphson, ModifiedNewtonRaphson, NZSame} {
		path, err := Fit(X, y, Binomial, WithAlgorithm(alg))
		require.NoError(t, err, alg.String())
		checkPathShape(t, path)
		assert.Greater(t, path.NullDev, 0.0)

		resp, err := path.Predict(X, nil, WithOutType(OutResponse))
		require.NoError(t, err)
		for _, v := range resp.RawMatrix().Data {
			assert.True(t, v > 0 && v < 1, "probability %v", v)
		}
		beta := path.Betas.Column(path.Len() - 1)
		assert.Greater(t, beta[0], 0.5, "positive column drives the fitted probability")
		assert.Less(t, beta[2], -0.3)
	}
}

func TestFitBinomialColumnSwapSymmetry(t *testing.T) {
	X, y := binomialData(8, 150, 0.4, []float64{1, -0.5})
	swapped := mat.NewDense(150, 2, nil)
	swapped.SetCol(0, mat.Col(nil, 1, y))
	swapped.SetCol(1, mat.Col(nil, 0, y))

	path, err := Fit(X, y, Binomial, WithTol(1e-12))
	require.NoError(t, err)
	mirror, err := Fit(X, swapped, Binomial, WithTol(1e-12), WithLambda(path.Lambda))
	require.NoError(t, err)
	require.Equal(t, path.Len(), mirror.Len())

	for m := 0; m < path.Len(); m++ {
		assert.InDelta(t, path.A0[m], -mirror.A0[m], 1e-6)
		a := path.Betas.Column(m)
		b := mirror.Betas.Column(m)
		for j := range a {
			assert.InDelta(t, a[j], -b[j], 1e-6)
		}
		assert.InDelta(t, path.DevRatio[m], mirror.DevRatio[m], 1e-6)
	}
}

func TestFitBinomialWeightsScaleCounts(t *testing.T) {
	X, y := binomialData(9, 120, 0, []float64{1, 0.5})
	w := make([]float64, 120)
	doubled := mat.NewDense(120, 2, nil)
	for i := range w {
		w[i] = 2
		doubled.Set(i, 0, 2*y.At(i, 0))
		doubled.Set(i, 1, 2*y.At(i, 1))
	}
	weighted, err := Fit(X, y, Binomial, WithWeights(w))
	require.NoError(t, err)
	counts, err := Fit(X, doubled, Binomial, WithLambda(weighted.Lambda))
	require.NoError(t, err)
	require.Equal(t, weighted.Len(), counts.Len())
	assert.InDeltaSlice(t, weighted.A0, counts.A0, 1e-6)
}

func TestFitPoisson(t *testing.T) {
	X, y := poissonData(10, 200, 0.5, []float64{0.6, 0, -0.4})
	path, err := Fit(X, y, Poisson)
	require.NoError(t, err)
	checkPathShape(t, path)

	resp, err := path.Predict(X, nil, WithOutType(OutResponse))
	require.NoError(t, err)
	for _, v := range resp.RawMatrix().Data {
		assert.Greater(t, v, 0.0)
	}
	beta := path.Betas.Column(path.Len() - 1)
	assert.InDelta(t, 0.6, beta[0], 0.2)
	assert.InDelta(t, -0.4, beta[2], 0.2)
}

func TestPathLoss(t *testing.T) {
	X, y := gaussianData(11, 60, 0, []float64{1, 0}, 1)
	path, err := Fit(X, y, Normal)
	require.NoError(t, err)

	loss, err := path.Loss(X, y, nil, nil, nil)
	require.NoError(t, err)
	require.Len(t, loss, path.Len())

	pred, err := path.PredictVec(X, 0)
	require.NoError(t, err)
	mse := 0.0
	for i, p := range pred {
		d := y.At(i, 0) - p
		mse += d * d
	}
	assert.InDelta(t, mse/60, loss[0], 1e-10)
	assert.Less(t, loss[len(loss)-1], loss[0])

	// Weights enter as Σ w·loss / Σ w.
	w := make([]float64, 60)
	w[0] = 1
	single, err := path.Loss(X, y, w, []int{0}, nil)
	require.NoError(t, err)
	d := y.At(0, 0) - pred[0]
	assert.InDelta(t, d*d, single[0], 1e-10)
}

func TestFitWarnings(t *testing.T) {
	X, y := gaussianData(12, 100, 0, []float64{2, 1, 0.5}, 0.1)
	path, err := Fit(X, y, Normal, WithMaxIter(1))
	require.NoError(t, err)
	require.Len(t, path.Warnings, 1)
	var cw *errors.ConvergenceWarning
	require.True(t, errors.As(path.Warnings[0], &cw))
	assert.Equal(t, 2, cw.LambdaIndex)
	assert.Equal(t, 1, path.Len())

	path, err = Fit(X, y, Normal, WithPMax(1))
	require.NoError(t, err)
	require.Len(t, path.Warnings, 1)
	var aw *errors.ActiveSetWarning
	require.True(t, errors.As(path.Warnings[0], &aw))
	assert.Equal(t, 1, aw.PMax)
	assert.Equal(t, aw.LambdaIndex-1, path.Len())
}

func TestFitSolverErrors(t *testing.T) {
	X := mat.NewDense(10, 2, nil)
	for i := 0; i < 10; i++ {
		X.Set(i, 0, 1)
		X.Set(i, 1, 2)
	}
	y := mat.NewDense(10, 1, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	_, err := Fit(X, y, Normal)
	var se *errors.SolverError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, solver.StatusZeroVariance, se.Code)

	X2, _ := gaussianData(13, 10, 0, []float64{1, 1}, 1)
	_, err = Fit(X2, y, Normal, WithPenaltyFactor([]float64{0, 0}))
	require.True(t, errors.As(err, &se))
	assert.Equal(t, solver.StatusAllUnpenalized, se.Code)

	counts := mat.NewDense(10, 1, []float64{1, 0, 2, -1, 0, 1, 3, 0, 1, 2})
	_, err = Fit(X2, counts, Poisson)
	require.True(t, errors.As(err, &se))
	assert.Equal(t, solver.StatusNegativeResponse, se.Code)
}

func TestFitValidation(t *testing.T) {
	X, y := gaussianData(14, 20, 0, []float64{1, 1}, 1)
	_, yb := binomialData(14, 20, 0, []float64{1, 1})
	nonzero := make([]float64, 20)
	nonzero[3] = 1

	tests := []struct {
		name   string
		X, y   mat.Matrix
		family Family
		opts   []Option
	}{
		{"row mismatch", X, mat.NewDense(19, 1, nil), Normal, nil},
		{"weights length", X, y, Normal, []Option{WithWeights(make([]float64, 3))}},
		{"negative weights", X, y, Normal, []Option{WithWeights(append(make([]float64, 19), -1))}},
		{"penalty factor length", X, y, Normal, []Option{WithPenaltyFactor([]float64{1})}},
		{"constraints shape", X, y, Normal, []Option{WithConstraints(mat.NewDense(3, 2, nil))}},
		{"lambda min ratio", X, y, Normal, []Option{WithLambdaMinRatio(1.5)}},
		{"lambda with nlambda", X, y, Normal, []Option{WithLambda([]float64{1, 0.5}), WithNLambda(50)}},
		{"lambda with ratio", X, y, Normal, []Option{WithLambda([]float64{1, 0.5}), WithLambdaMinRatio(0.5)}},
		{"negative lambda", X, y, Normal, []Option{WithLambda([]float64{1, -0.5})}},
		{"binomial one column", X, y, Binomial, nil},
		{"normal two columns", X, yb, Normal, nil},
		{"offsets length", X, yb, Binomial, []Option{WithOffsets(make([]float64, 5))}},
		{"normal offsets", X, y, Normal, []Option{WithOffsets(nonzero)}},
		{"alpha", X, y, Normal, []Option{WithAlpha(1.1)}},
		{"exclude", X, y, Normal, []Option{WithExclude(2)}},
		{"unknown family", X, y, Family(9), nil},
		{"non-finite", mat.NewDense(20, 2, append(make([]float64, 39), math.NaN())), y, Normal, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Fit(tt.X, tt.y, tt.family, tt.opts...)
			require.Error(t, err)
			var se *errors.SolverError
			assert.False(t, errors.As(err, &se), "must fail before the solver")
		})
	}

	// Default nlambda and ratio may accompany an explicit grid.
	_, err := Fit(X, y, Normal, WithLambda([]float64{1, 0.5}), WithNLambda(100), WithLambdaMinRatio(1e-4))
	assert.NoError(t, err)
	// Zero offsets are accepted for the normal family.
	_, err = Fit(X, y, Normal, WithOffsets(make([]float64, 20)))
	assert.NoError(t, err)
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		code      int
		fatal     bool
		warnIndex int
		overflow  bool
	}{
		{code: 0},
		{code: 1000, fatal: true},
		{code: 1, fatal: true},
		{code: 7776, fatal: true},
		{code: 7777, fatal: true},
		{code: 8000, fatal: true},
		{code: 8888, fatal: true},
		{code: 9999, fatal: true},
		{code: -1, warnIndex: 1},
		{code: -57, warnIndex: 57},
		{code: -9999, warnIndex: 9999},
		{code: -10000, warnIndex: 10000},
		{code: -10001, warnIndex: 1, overflow: true},
		{code: -10003, warnIndex: 3, overflow: true},
	}
	for _, tt := range tests {
		warning, err := checkStatus("elnet", tt.code, 100, 10)
		if tt.fatal {
			var se *errors.SolverError
			require.True(t, errors.As(err, &se), "code %d", tt.code)
			assert.Equal(t, tt.code, se.Code)
			assert.Nil(t, warning)
			continue
		}
		require.NoError(t, err, "code %d", tt.code)
		switch {
		case tt.warnIndex == 0:
			assert.Nil(t, warning)
		case tt.overflow:
			var aw *errors.ActiveSetWarning
			require.True(t, errors.As(warning, &aw))
			assert.Equal(t, tt.warnIndex, aw.LambdaIndex)
		default:
			var cw *errors.ConvergenceWarning
			require.True(t, errors.As(warning, &cw))
			assert.Equal(t, tt.warnIndex, cw.LambdaIndex)
		}
	}

	_, err := checkStatus("elnet", 1000, 0, 0)
	var se *errors.SolverError
	require.True(t, errors.As(err, &se))
	assert.Contains(t, se.Kind, "unpenalized")
}

func TestFitLogsWarnings(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelDebug)
	X, y := gaussianData(15, 100, 0, []float64{2, 1, 0.5}, 0.1)

	_, err := Fit(X, y, Normal, WithMaxIter(1), WithLogger(logger))
	require.NoError(t, err)
	assert.True(t, logger.ContainsMessage("2th lambda value"))
	assert.True(t, logger.ContainsField(log.SolverCodeKey, float64(-2)))
	assert.True(t, logger.ContainsField(log.FamilyKey, "normal"))
	assert.True(t, logger.ContainsField(log.ErrorCodeKey, log.ErrorConvergence))

	logger.Clear()
	_, err = Fit(X, y, Normal, WithLogger(logger))
	require.NoError(t, err)
	assert.True(t, logger.ContainsMessage("path fitted"))
}

func TestFitExclude(t *testing.T) {
	X, y := gaussianData(16, 80, 0, []float64{1, 2, -1}, 0.5)
	path, err := Fit(X, y, Normal, WithExclude(1))
	require.NoError(t, err)
	for m := 0; m < path.Len(); m++ {
		assert.Zero(t, path.Betas.At(1, m))
	}
	assert.NotZero(t, path.Betas.At(0, path.Len()-1))
}

func TestFitConstraints(t *testing.T) {
	X, y := gaussianData(17, 80, 0, []float64{1, -1}, 0.5)
	cl := mat.NewDense(2, 2, []float64{
		math.Inf(-1), -0.5,
		math.Inf(1), 0.5,
	})
	path, err := Fit(X, y, Normal, WithConstraints(cl))
	require.NoError(t, err)
	for m := 0; m < path.Len(); m++ {
		assert.GreaterOrEqual(t, path.Betas.At(1, m), -0.5-1e-12)
	}
	assert.InDelta(t, -0.5, path.Betas.At(1, path.Len()-1), 1e-9)
}

func TestFitPenaltyFactorZeroKeepsPredictor(t *testing.T) {
	X, y := binomialData(18, 120, 0, []float64{0.2, 1})
	path, err := Fit(X, y, Binomial, WithPenaltyFactor([]float64{0, 1}))
	require.NoError(t, err)
	for m := 1; m < path.Len(); m++ {
		assert.NotZero(t, path.Betas.At(0, m), "unpenalized predictor at %d", m)
	}
}
