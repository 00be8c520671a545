package glmnet

import (
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/goglmnet/pkg/errors"
)

// Config is the YAML form of the fit and cross-validation options. Omitted
// fields keep their defaults.
//
//	family: binomial
//	alpha: 0.5
//	nlambda: 50
//	algorithm: modifiednewtonraphson
//	cv:
//	  nfolds: 5
//	  parallel: true
//	  seed: 42
type Config struct {
	FamilyName     string    `yaml:"family"`
	Alpha          *float64  `yaml:"alpha"`
	NLambda        *int      `yaml:"nlambda"`
	LambdaMinRatio *float64  `yaml:"lambda_min_ratio"`
	Lambda         []float64 `yaml:"lambda"`
	PenaltyFactor  []float64 `yaml:"penalty_factor"`
	Exclude        []int     `yaml:"exclude"`
	Tol            *float64  `yaml:"tol"`
	Standardize    *bool     `yaml:"standardize"`
	Intercept      *bool     `yaml:"intercept"`
	MaxIter        *int      `yaml:"max_iter"`
	DFMax          *int      `yaml:"dfmax"`
	PMax           *int      `yaml:"pmax"`
	Naive          *bool     `yaml:"naive"`
	Algorithm      string    `yaml:"algorithm"`
	CV             CVConfig  `yaml:"cv"`
}

// CVConfig is the cross-validation section of Config.
type CVConfig struct {
	NFolds     int     `yaml:"nfolds"`
	Parallel   bool    `yaml:"parallel"`
	Seed       *uint64 `yaml:"seed"`
	MaxWorkers int     `yaml:"max_workers"`
}

// LoadConfig decodes a YAML document. Unknown keys are rejected.
func LoadConfig(r io.Reader) (*Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	cfg := &Config{}
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "glmnet: decode config")
	}
	if cfg.FamilyName != "" {
		if _, err := ParseFamily(cfg.FamilyName); err != nil {
			return nil, err
		}
	}
	if _, err := parseAlgorithm(cfg.Algorithm); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Family returns the configured family, Normal when unset.
func (c *Config) Family() Family {
	if c.FamilyName == "" {
		return Normal
	}
	f, _ := ParseFamily(c.FamilyName)
	return f
}

// Options converts the fit settings into Options.
func (c *Config) Options() []Option {
	var opts []Option
	if c.Alpha != nil {
		opts = append(opts, WithAlpha(*c.Alpha))
	}
	if c.NLambda != nil {
		opts = append(opts, WithNLambda(*c.NLambda))
	}
	if c.LambdaMinRatio != nil {
		opts = append(opts, WithLambdaMinRatio(*c.LambdaMinRatio))
	}
	if len(c.Lambda) > 0 {
		opts = append(opts, WithLambda(c.Lambda))
	}
	if len(c.PenaltyFactor) > 0 {
		opts = append(opts, WithPenaltyFactor(c.PenaltyFactor))
	}
	if len(c.Exclude) > 0 {
		opts = append(opts, WithExclude(c.Exclude...))
	}
	if c.Tol != nil {
		opts = append(opts, WithTol(*c.Tol))
	}
	if c.Standardize != nil {
		opts = append(opts, WithStandardize(*c.Standardize))
	}
	if c.Intercept != nil {
		opts = append(opts, WithIntercept(*c.Intercept))
	}
	if c.MaxIter != nil {
		opts = append(opts, WithMaxIter(*c.MaxIter))
	}
	if c.DFMax != nil {
		opts = append(opts, WithDFMax(*c.DFMax))
	}
	if c.PMax != nil {
		opts = append(opts, WithPMax(*c.PMax))
	}
	if c.Naive != nil {
		opts = append(opts, WithNaiveAlgorithm(*c.Naive))
	}
	if c.Algorithm != "" {
		a, _ := parseAlgorithm(c.Algorithm)
		opts = append(opts, WithAlgorithm(a))
	}
	return opts
}

// CVOptions converts the cv section into CVOptions.
func (c *Config) CVOptions() []CVOption {
	var opts []CVOption
	if c.CV.NFolds != 0 {
		opts = append(opts, WithNFolds(c.CV.NFolds))
	}
	if c.CV.Parallel {
		opts = append(opts, WithParallel(true))
	}
	if c.CV.Seed != nil {
		opts = append(opts, WithRandomSeed(*c.CV.Seed))
	}
	if c.CV.MaxWorkers != 0 {
		opts = append(opts, WithMaxWorkers(c.CV.MaxWorkers))
	}
	return opts
}

func parseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(s) {
	case "", "newtonraphson":
		return NewtonRaphson, nil
	case "modifiednewtonraphson":
		return ModifiedNewtonRaphson, nil
	case "nzsame":
		return NZSame, nil
	default:
		return 0, errors.NewValidationError("algorithm", "must be one of newtonraphson, modifiednewtonraphson, nzsame", s)
	}
}
