package glmnet

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/goglmnet/core/parallel"
	"github.com/YuminosukeSato/goglmnet/pkg/errors"
)

// parallelRows is the row count above which predictions are split across
// goroutines.
const parallelRows = 2048

// Predict returns an N×len(models) matrix of predictions for X, one column
// per selected solution. A nil models selects every solution in path
// order.
func (p *Path) Predict(X mat.Matrix, models []int, opts ...PredictOption) (*mat.Dense, error) {
	cfg := &predictConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if models == nil {
		models = make([]int, p.Len())
		for i := range models {
			models[i] = i
		}
	}
	if err := p.checkPredict(X, models, cfg.offsets); err != nil {
		return nil, err
	}

	n, _ := X.Dims()
	out := mat.NewDense(n, len(models), nil)
	offsets := cfg.offsets
	if offsets != nil && floats.Norm(offsets, 1) == 0 {
		offsets = nil
	}
	link := cfg.outType == OutLink
	parallel.ParallelizeWithThreshold(n, parallelRows, func(start, end int) {
		p.predictRows(out, X, models, offsets, link, start, end)
	})
	return out, nil
}

// predictRows fills rows [start, end) of out. Each solution walks only its
// active storage rows.
func (p *Path) predictRows(out *mat.Dense, X mat.Matrix, models []int, offsets []float64, link bool, start, end int) {
	b := p.Betas
	for k, m := range models {
		for r := start; r < end; r++ {
			out.Set(r, k, p.A0[m])
		}
		for i := 0; i < b.nin[m]; i++ {
			c := b.ca.At(i, m)
			if c == 0 {
				continue
			}
			col := b.ia[i]
			for r := start; r < end; r++ {
				out.Set(r, k, out.At(r, k)+c*X.At(r, col))
			}
		}
		for r := start; r < end; r++ {
			v := out.At(r, k)
			if offsets != nil {
				v += offsets[r]
			}
			if !link {
				v = p.Family.InverseLink(v)
			}
			out.Set(r, k, v)
		}
	}
}

// PredictVec returns the predictions of solution m.
func (p *Path) PredictVec(X mat.Matrix, m int, opts ...PredictOption) ([]float64, error) {
	out, err := p.Predict(X, []int{m}, opts...)
	if err != nil {
		return nil, err
	}
	return mat.Col(nil, 0, out), nil
}

func (p *Path) checkPredict(X mat.Matrix, models []int, offsets []float64) error {
	const op = "Path.Predict"
	if X == nil {
		return errors.WithStack(errors.ErrEmptyData)
	}
	n, c := X.Dims()
	if ni, _ := p.Betas.Dims(); c != ni {
		return errors.NewDimensionError(op, ni, c, 1)
	}
	if offsets != nil && len(offsets) != n {
		return errors.NewDimensionError(op, n, len(offsets), 0)
	}
	if len(models) == 0 {
		return errors.NewValidationError("models", "must select at least one solution", len(models))
	}
	for _, m := range models {
		if m < 0 || m >= p.Len() {
			return errors.NewIndexError(op, m, p.Len(), 1)
		}
	}
	return nil
}

// Loss returns, for each selected solution, the weighted mean deviance of
// the observations in X and y: Σ w_i loss_i / Σ w_i. Nil weights mean
// equal weights and nil models means every solution.
func (p *Path) Loss(X, y mat.Matrix, weights []float64, models []int, offsets []float64) ([]float64, error) {
	lossFn, err := p.Family.Loss(y)
	if err != nil {
		return nil, err
	}
	mu, err := p.Predict(X, models, WithPredictOffsets(offsets))
	if err != nil {
		return nil, err
	}
	n, k := mu.Dims()
	if lossFn.Len() != n {
		return nil, errors.NewDimensionError("Path.Loss", n, lossFn.Len(), 0)
	}
	if weights == nil {
		weights = filled(n, 1)
	}
	if len(weights) != n {
		return nil, errors.NewDimensionError("Path.Loss", n, len(weights), 0)
	}
	sw := floats.Sum(weights)
	if sw <= 0 {
		return nil, errors.NewValidationError("weights", "must have a positive sum", sw)
	}

	devs := make([]float64, k)
	for j := 0; j < k; j++ {
		for i := 0; i < n; i++ {
			devs[j] += lossFn.Loss(i, mu.At(i, j)) * weights[i]
		}
		devs[j] /= sw
	}
	return devs, nil
}
