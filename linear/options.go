package linear

import (
	"github.com/YuminosukeSato/goglmnet/glmnet"
	"github.com/YuminosukeSato/goglmnet/pkg/log"
)

// Option is a function that configures ElasticNetCV
type Option func(*ElasticNetCV)

// WithFamily sets the response family. Default: glmnet.Normal
func WithFamily(family glmnet.Family) Option {
	return func(e *ElasticNetCV) {
		e.family = family
	}
}

// WithFitOptions appends options passed to every path fit
func WithFitOptions(opts ...glmnet.Option) Option {
	return func(e *ElasticNetCV) {
		e.fitOpts = append(e.fitOpts, opts...)
	}
}

// WithCVOptions appends cross-validation options
func WithCVOptions(opts ...glmnet.CVOption) Option {
	return func(e *ElasticNetCV) {
		e.cvOpts = append(e.cvOpts, opts...)
	}
}

// WithOneSERule selects the largest lambda within one standard error of
// the minimum instead of the minimum itself
func WithOneSERule(oneSE bool) Option {
	return func(e *ElasticNetCV) {
		e.oneSE = oneSE
	}
}

// WithConfig applies the family, fit and cv settings of a loaded Config
func WithConfig(cfg *glmnet.Config) Option {
	return func(e *ElasticNetCV) {
		e.family = cfg.Family()
		e.fitOpts = append(e.fitOpts, cfg.Options()...)
		e.cvOpts = append(e.cvOpts, cfg.CVOptions()...)
	}
}

// WithLogger sets the estimator's logger
func WithLogger(l log.Logger) Option {
	return func(e *ElasticNetCV) {
		e.logger = l
	}
}
