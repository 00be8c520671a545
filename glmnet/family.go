package glmnet

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/goglmnet/pkg/errors"
)

// Family is the response distribution of a generalized linear model. Each
// family fixes a link function and a deviance loss.
type Family int

const (
	// Normal is least-squares regression with the identity link.
	Normal Family = iota
	// Binomial is two-class logistic regression with the logit link. The
	// response is an N×2 matrix of (negative, positive) counts.
	Binomial
	// Poisson is count regression with the log link.
	Poisson
)

func (f Family) String() string {
	switch f {
	case Normal:
		return "normal"
	case Binomial:
		return "binomial"
	case Poisson:
		return "poisson"
	default:
		return "unknown"
	}
}

// ParseFamily returns the family named s. "gaussian" is accepted for
// Normal.
func ParseFamily(s string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "normal", "gaussian":
		return Normal, nil
	case "binomial":
		return Binomial, nil
	case "poisson":
		return Poisson, nil
	default:
		return 0, errors.NewValidationError("family", "must be one of normal, binomial, poisson", s)
	}
}

func (f Family) valid() bool {
	return f == Normal || f == Binomial || f == Poisson
}

// responseCols is the number of columns y must have.
func (f Family) responseCols() int {
	if f == Binomial {
		return 2
	}
	return 1
}

// InverseLink maps a linear predictor to the mean of the response.
// Binomial probabilities stay strictly inside (0, 1) for any finite eta.
func (f Family) InverseLink(eta float64) float64 {
	switch f {
	case Binomial:
		return errors.ClipValue(1/(1+math.Exp(-eta)), math.SmallestNonzeroFloat64, math.Nextafter(1, 0))
	case Poisson:
		return math.Exp(eta)
	default:
		return eta
	}
}

// Loss builds the per-observation loss for response y.
func (f Family) Loss(y mat.Matrix) (Loss, error) {
	switch f {
	case Normal:
		return NewMSE(y)
	case Binomial:
		return NewLogisticDeviance(y)
	case Poisson:
		return NewPoissonDeviance(y)
	default:
		return nil, errors.NewValidationError("family", "unknown family", int(f))
	}
}
