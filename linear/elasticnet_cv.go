// Package linear provides a scikit-learn style estimator on top of the
// glmnet elastic-net paths.
package linear

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/goglmnet/core/model"
	"github.com/YuminosukeSato/goglmnet/glmnet"
	"github.com/YuminosukeSato/goglmnet/metrics"
	"github.com/YuminosukeSato/goglmnet/pkg/errors"
	"github.com/YuminosukeSato/goglmnet/pkg/log"
)

const (
	modelName    = "ElasticNetCV"
	modelVersion = "1.0"
)

// ElasticNetCV fits a GLM elastic-net path, picks lambda by k-fold
// cross-validation and predicts with the selected solution.
type ElasticNetCV struct {
	state *model.StateManager
	id    string

	family  glmnet.Family
	fitOpts []glmnet.Option
	cvOpts  []glmnet.CVOption
	oneSE   bool
	logger  log.Logger

	cv        *glmnet.CrossValidation
	lambda    float64
	coef      []float64
	intercept float64
}

var _ model.Regressor = (*ElasticNetCV)(nil)

// NewElasticNetCV creates a new ElasticNetCV
func NewElasticNetCV(opts ...Option) *ElasticNetCV {
	e := &ElasticNetCV{
		state:  model.NewStateManager(),
		id:     uuid.NewString(),
		family: glmnet.Normal,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = log.GetLoggerWithName(modelName)
	}
	e.logger = e.logger.With(
		log.ModelNameKey, modelName,
		log.EstimatorIDKey, e.id,
	)
	return e
}

// ID returns the estimator's unique id, as attached to its log records.
func (e *ElasticNetCV) ID() string {
	return e.id
}

// Fit cross-validates the path on X and y. For glmnet.Binomial, y is
// either an N×1 vector of 0/1 labels or an N×2 (negative, positive)
// count matrix.
func (e *ElasticNetCV) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "ElasticNetCV.Fit")

	start := time.Now()
	e.state.Reset()
	y, err = responseMatrix(e.family, y)
	if err != nil {
		return err
	}
	// The estimator's logger goes first so caller options can replace it.
	fitOpts := append([]glmnet.Option{glmnet.WithLogger(e.logger)}, e.fitOpts...)
	cv, err := glmnet.CrossValidate(X, y, e.family, e.cvOpts, fitOpts...)
	if err != nil {
		return errors.NewModelError("ElasticNetCV.Fit", "cross-validation failed", err)
	}

	index := cv.BestIndex()
	if e.oneSE {
		index = cv.Lambda1SE()
	}
	n, p := X.Dims()

	err = e.state.WithStateMut(func() error {
		e.cv = cv
		e.lambda = cv.Lambda[index]
		e.coef = cv.Path.Betas.Column(index)
		e.intercept = cv.Path.A0[index]
		return nil
	})
	if err != nil {
		return err
	}
	e.state.SetDimensions(p, n)
	e.state.SetFitted()

	e.logger.Info("model fitted",
		log.PhaseKey, log.PhaseTraining,
		log.FamilyKey, e.family.String(),
		log.LambdaKey, e.lambda,
		log.LossKey, cv.MeanLoss[index],
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// Predict returns N×1 predictions on the response scale: the mean for
// Normal, the positive-class probability for Binomial and the expected
// count for Poisson.
func (e *ElasticNetCV) Predict(X mat.Matrix) (mat.Matrix, error) {
	eta, err := e.linearPredictor(X)
	if err != nil {
		return nil, err
	}
	n := eta.Len()
	out := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		out.Set(i, 0, e.family.InverseLink(eta.AtVec(i)))
	}
	if e.logger.Enabled(context.Background(), log.LevelDebug) {
		e.logger.Debug("predicted", log.PhaseKey, log.PhaseInference, log.OperationKey, log.OperationPredict, log.SamplesKey, n)
	}
	return out, nil
}

// linearPredictor returns intercept + X·coef for the selected solution.
func (e *ElasticNetCV) linearPredictor(X mat.Matrix) (*mat.VecDense, error) {
	if err := e.state.RequireFitted(modelName, "Predict"); err != nil {
		return nil, err
	}
	if X == nil {
		return nil, errors.WithStack(errors.ErrEmptyData)
	}
	n, p := X.Dims()
	if err := e.state.RequireFeatures("ElasticNetCV.Predict", p); err != nil {
		return nil, err
	}

	var eta *mat.VecDense
	err := e.state.WithState(func() error {
		eta = mat.NewVecDense(n, nil)
		eta.MulVec(X, mat.NewVecDense(p, e.coef))
		for i := 0; i < n; i++ {
			eta.SetVec(i, eta.AtVec(i)+e.intercept)
		}
		return nil
	})
	return eta, err
}

// Score returns R² for the normal family and the negative mean deviance
// for the others, so that larger is better in every case.
func (e *ElasticNetCV) Score(X, y mat.Matrix) (float64, error) {
	y, err := responseMatrix(e.family, y)
	if err != nil {
		return 0, err
	}
	eta, err := e.linearPredictor(X)
	if err != nil {
		return 0, err
	}
	n := eta.Len()
	if r, _ := y.Dims(); r != n {
		return 0, errors.NewDimensionError("ElasticNetCV.Score", n, r, 0)
	}

	if e.family == glmnet.Normal {
		return metrics.R2Score(mat.NewVecDense(n, mat.Col(nil, 0, y)), eta)
	}
	loss, err := e.family.Loss(y)
	if err != nil {
		return 0, err
	}
	dev := 0.0
	for i := 0; i < n; i++ {
		dev += loss.Loss(i, eta.AtVec(i))
	}
	e.logger.Debug("scored", log.PhaseKey, log.PhaseValidation, log.OperationKey, log.OperationLoss, log.LossKey, dev/float64(n))
	return -dev / float64(n), nil
}

// MeanSquaredError returns the mean squared difference between y and the
// response-scale predictions. For Binomial, y holds 0/1 labels and the
// result is the Brier score.
func (e *ElasticNetCV) MeanSquaredError(X, y mat.Matrix) (float64, error) {
	pred, err := e.Predict(X)
	if err != nil {
		return 0, err
	}
	if y == nil {
		return 0, errors.WithStack(errors.ErrEmptyData)
	}
	return metrics.MSEMatrix(y, pred)
}

// Lambda returns the selected penalty strength.
func (e *ElasticNetCV) Lambda() float64 {
	var l float64
	_ = e.state.WithState(func() error {
		l = e.lambda
		return nil
	})
	return l
}

// Coef returns a copy of the selected coefficients, nil before Fit.
func (e *ElasticNetCV) Coef() []float64 {
	var c []float64
	_ = e.state.WithState(func() error {
		if e.coef != nil {
			c = append([]float64(nil), e.coef...)
		}
		return nil
	})
	return c
}

// Intercept returns the selected intercept.
func (e *ElasticNetCV) Intercept() float64 {
	var a0 float64
	_ = e.state.WithState(func() error {
		a0 = e.intercept
		return nil
	})
	return a0
}

// CV returns the cross-validation result, nil before Fit or after
// ImportWeights.
func (e *ElasticNetCV) CV() *glmnet.CrossValidation {
	var cv *glmnet.CrossValidation
	_ = e.state.WithState(func() error {
		cv = e.cv
		return nil
	})
	return cv
}

// ExportWeights returns the selected solution in serialisable form.
func (e *ElasticNetCV) ExportWeights() (*model.ModelWeights, error) {
	if err := e.state.RequireFitted(modelName, "ExportWeights"); err != nil {
		return nil, err
	}
	nFeatures, nSamples := e.state.GetDimensions()
	w := &model.ModelWeights{
		ModelType: modelName,
		Version:   modelVersion,
		Family:    e.family.String(),
		IsFitted:  true,
		Hyperparameters: map[string]interface{}{
			"one_se_rule":  e.oneSE,
			"estimator_id": e.id,
			"n_features":   nFeatures,
			"n_samples":    nSamples,
		},
	}
	err := e.state.WithState(func() error {
		w.Lambda = e.lambda
		w.Coefficients = append([]float64(nil), e.coef...)
		w.Intercept = e.intercept
		if e.cv != nil {
			w.Hyperparameters["nfolds"] = e.cv.NFolds
		}
		return nil
	})
	return w, err
}

// ImportWeights restores a solution written by ExportWeights. The
// estimator can predict and score afterwards; CV returns nil.
func (e *ElasticNetCV) ImportWeights(w *model.ModelWeights) error {
	if err := w.Validate(); err != nil {
		return err
	}
	if w.ModelType != modelName {
		return errors.NewValidationError("model_type", "must be "+modelName, w.ModelType)
	}
	if !w.IsFitted {
		return errors.NewValidationError("is_fitted", "weights of an unfitted model cannot be imported", w.IsFitted)
	}
	family, err := glmnet.ParseFamily(w.Family)
	if err != nil {
		return err
	}
	err = e.state.WithStateMut(func() error {
		e.family = family
		e.cv = nil
		e.lambda = w.Lambda
		e.coef = append([]float64(nil), w.Coefficients...)
		e.intercept = w.Intercept
		return nil
	})
	if err != nil {
		return err
	}
	e.state.SetDimensions(len(w.Coefficients), 0)
	e.state.SetFitted()
	return nil
}

// responseMatrix converts 0/1 binomial labels into (negative, positive)
// counts and passes every other response through.
func responseMatrix(family glmnet.Family, y mat.Matrix) (mat.Matrix, error) {
	if y == nil {
		return nil, errors.WithStack(errors.ErrEmptyData)
	}
	n, c := y.Dims()
	if family != glmnet.Binomial || c != 1 {
		return y, nil
	}
	counts := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		switch y.At(i, 0) {
		case 0:
			counts.Set(i, 0, 1)
		case 1:
			counts.Set(i, 1, 1)
		default:
			return nil, errors.NewValidationError("y", "binomial labels must be 0 or 1", y.At(i, 0))
		}
	}
	return counts, nil
}
