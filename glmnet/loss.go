package glmnet

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/goglmnet/pkg/errors"
)

// Loss is the deviance contribution of one observation given its linear
// predictor mu.
type Loss interface {
	Loss(i int, mu float64) float64
	// Len is the number of observations.
	Len() int
}

// MSE is the squared error loss of the Normal family.
type MSE struct {
	y []float64
}

// NewMSE builds an MSE loss over the single column of y.
func NewMSE(y mat.Matrix) (*MSE, error) {
	col, err := responseVector("MSE", y)
	if err != nil {
		return nil, err
	}
	return &MSE{y: col}, nil
}

func (l *MSE) Loss(i int, mu float64) float64 {
	d := l.y[i] - mu
	return d * d
}

func (l *MSE) Len() int { return len(l.y) }

// LogisticDeviance is the Binomial deviance. Each row of y holds the
// (negative, positive) counts of one observation.
type LogisticDeviance struct {
	y       *mat.Dense
	fulldev []float64
}

// NewLogisticDeviance precomputes the saturated-model term of every row.
func NewLogisticDeviance(y mat.Matrix) (*LogisticDeviance, error) {
	n, c := y.Dims()
	if c != 2 {
		return nil, errors.NewDimensionError("LogisticDeviance", 2, c, 1)
	}
	l := &LogisticDeviance{y: mat.DenseCopyOf(y), fulldev: make([]float64, n)}
	for i := 0; i < n; i++ {
		l.fulldev[i] = xlogx(l.y.At(i, 0)) + xlogx(l.y.At(i, 1))
	}
	return l, nil
}

func (l *LogisticDeviance) Loss(i int, mu float64) float64 {
	lf := errors.ClipValue(1/(1+math.Exp(-mu)), 1e-5, 1-1e-5)
	return 2 * (l.fulldev[i] - (l.y.At(i, 0)*math.Log1p(-lf) + l.y.At(i, 1)*math.Log(lf)))
}

func (l *LogisticDeviance) Len() int { return len(l.fulldev) }

// PoissonDeviance is the Poisson deviance.
type PoissonDeviance struct {
	y       []float64
	fulldev []float64
}

// NewPoissonDeviance precomputes the saturated-model term of every count.
func NewPoissonDeviance(y mat.Matrix) (*PoissonDeviance, error) {
	col, err := responseVector("PoissonDeviance", y)
	if err != nil {
		return nil, err
	}
	l := &PoissonDeviance{y: col, fulldev: make([]float64, len(col))}
	for i, v := range col {
		if v != 0 {
			l.fulldev[i] = v*math.Log(v) - v
		}
	}
	return l, nil
}

func (l *PoissonDeviance) Loss(i int, mu float64) float64 {
	return 2 * (l.fulldev[i] - (l.y[i]*mu - errors.StabilizeExp(mu)))
}

func (l *PoissonDeviance) Len() int { return len(l.y) }

func xlogx(x float64) float64 {
	if x == 0 {
		return 0
	}
	return x * math.Log(x)
}

// responseVector extracts the single column of y.
func responseVector(op string, y mat.Matrix) ([]float64, error) {
	_, c := y.Dims()
	if c != 1 {
		return nil, errors.NewDimensionError(op, 1, c, 1)
	}
	return mat.Col(nil, 0, y), nil
}
