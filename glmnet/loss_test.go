package glmnet

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestMSE(t *testing.T) {
	l, err := NewMSE(mat.NewDense(3, 1, []float64{1, 2, 3}))
	require.NoError(t, err)
	assert.Equal(t, 3, l.Len())
	assert.InDelta(t, 0.25, l.Loss(0, 1.5), 1e-12)
	assert.InDelta(t, 4.0, l.Loss(2, 1), 1e-12)

	_, err = NewMSE(mat.NewDense(3, 2, nil))
	assert.Error(t, err)
}

func TestLogisticDeviance(t *testing.T) {
	y := mat.NewDense(3, 2, []float64{
		1, 0,
		0, 1,
		2, 3,
	})
	l, err := NewLogisticDeviance(y)
	require.NoError(t, err)

	// A single negative at mu = 0 costs 2·log 2.
	assert.InDelta(t, 2*math.Log(2), l.Loss(0, 0), 1e-12)
	assert.InDelta(t, 2*math.Log(2), l.Loss(1, 0), 1e-12)

	// Grouped counts are scored against their saturated fit.
	lf := 1 / (1 + math.Exp(-0.3))
	fulldev := 2*math.Log(2) + 3*math.Log(3)
	want := 2 * (fulldev - (2*math.Log1p(-lf) + 3*math.Log(lf)))
	assert.InDelta(t, want, l.Loss(2, 0.3), 1e-12)

	// Extreme predictors hit the probability clamp instead of infinity.
	assert.InDelta(t, -2*math.Log(1e-5), l.Loss(1, -1000), 1e-9)

	_, err = NewLogisticDeviance(mat.NewDense(2, 1, nil))
	assert.Error(t, err)
}

func TestPoissonDeviance(t *testing.T) {
	l, err := NewPoissonDeviance(mat.NewDense(2, 1, []float64{0, 4}))
	require.NoError(t, err)
	assert.InDelta(t, 2*math.Exp(0.5), l.Loss(0, 0.5), 1e-12)
	// At the saturated fit mu = log y the deviance vanishes.
	assert.InDelta(t, 0.0, l.Loss(1, math.Log(4)), 1e-12)
	assert.Greater(t, l.Loss(1, 0), 0.0)
}

func TestFamilyLossMapping(t *testing.T) {
	y1 := mat.NewDense(2, 1, []float64{1, 2})
	y2 := mat.NewDense(2, 2, []float64{1, 0, 0, 1})

	l, err := Normal.Loss(y1)
	require.NoError(t, err)
	assert.IsType(t, &MSE{}, l)

	l, err = Binomial.Loss(y2)
	require.NoError(t, err)
	assert.IsType(t, &LogisticDeviance{}, l)

	l, err = Poisson.Loss(y1)
	require.NoError(t, err)
	assert.IsType(t, &PoissonDeviance{}, l)

	_, err = Family(7).Loss(y1)
	assert.Error(t, err)
}

func TestParseFamily(t *testing.T) {
	for s, want := range map[string]Family{
		"normal":   Normal,
		"Gaussian": Normal,
		"binomial": Binomial,
		"poisson":  Poisson,
	} {
		got, err := ParseFamily(s)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.NotEqual(t, "unknown", got.String())
	}
	_, err := ParseFamily("gamma")
	assert.Error(t, err)
}

func TestInverseLink(t *testing.T) {
	assert.Equal(t, 1.5, Normal.InverseLink(1.5))
	assert.InDelta(t, 0.5, Binomial.InverseLink(0), 1e-12)
	assert.InDelta(t, math.E, Poisson.InverseLink(1), 1e-12)

	for _, eta := range []float64{-1000, -745, -40, 37, 100, 1000} {
		p := Binomial.InverseLink(eta)
		assert.True(t, p > 0 && p < 1, "eta %v gave %v", eta, p)
	}
	assert.Less(t, Binomial.InverseLink(-40), Binomial.InverseLink(-30))
}
