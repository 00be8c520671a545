// Package glmnet fits elastic-net regularised generalized linear models and
// cross-validates them.
//
// Fit computes the whole solution path, one model per penalty strength, for
// the Normal, Binomial and Poisson families. Coefficients are held in a
// CompressedPredictorMatrix, which stores only the predictors that ever
// became active. CrossValidate refits the path on k folds over a common
// lambda grid and reports the weighted mean and standard error of the
// held-out deviance.
//
//	path, err := glmnet.Fit(X, y, glmnet.Normal, glmnet.WithAlpha(0.5))
//	if err != nil {
//		return err
//	}
//	pred, err := path.Predict(Xnew, nil, glmnet.WithOutType(glmnet.OutResponse))
//
// The numerical work happens in core/solver; this package validates inputs,
// marshals them into the solver's calling convention and decodes its
// results.
package glmnet
