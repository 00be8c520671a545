package glmnet

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

func newRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

func randomDesign(rng *rand.Rand, n, p int) *mat.Dense {
	X := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			X.Set(i, j, rng.NormFloat64())
		}
	}
	return X
}

func linearPredictor(X mat.Matrix, intercept float64, beta []float64, i int) float64 {
	eta := intercept
	for j, b := range beta {
		eta += b * X.At(i, j)
	}
	return eta
}

// gaussianData draws y = intercept + X·beta + sigma·ε.
func gaussianData(seed uint64, n int, intercept float64, beta []float64, sigma float64) (*mat.Dense, *mat.Dense) {
	rng := newRNG(seed)
	X := randomDesign(rng, n, len(beta))
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		y.Set(i, 0, linearPredictor(X, intercept, beta, i)+sigma*rng.NormFloat64())
	}
	return X, y
}

// binomialData draws one Bernoulli trial per row and returns the
// (negative, positive) count matrix.
func binomialData(seed uint64, n int, intercept float64, beta []float64) (*mat.Dense, *mat.Dense) {
	rng := newRNG(seed)
	X := randomDesign(rng, n, len(beta))
	y := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		prob := 1 / (1 + math.Exp(-linearPredictor(X, intercept, beta, i)))
		pos := distuv.Bernoulli{P: prob, Src: rng}.Rand()
		y.Set(i, 0, 1-pos)
		y.Set(i, 1, pos)
	}
	return X, y
}

func poissonData(seed uint64, n int, intercept float64, beta []float64) (*mat.Dense, *mat.Dense) {
	rng := newRNG(seed)
	X := randomDesign(rng, n, len(beta))
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		mu := math.Exp(linearPredictor(X, intercept, beta, i))
		y.Set(i, 0, distuv.Poisson{Lambda: mu, Src: rng}.Rand())
	}
	return X, y
}
