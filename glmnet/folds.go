package glmnet

import (
	"math/rand/v2"

	"github.com/YuminosukeSato/goglmnet/pkg/errors"
)

// GenerateFolds assigns each of n rows a 1-based fold id in [1, nfolds].
// Every fold gets n/nfolds rows and the first n%nfolds folds get one more;
// the assignment is then shuffled with rng.
func GenerateFolds(n, nfolds int, rng *rand.Rand) []int {
	folds := make([]int, 0, n)
	for r := 0; r < n/nfolds; r++ {
		for k := 1; k <= nfolds; k++ {
			folds = append(folds, k)
		}
	}
	for k := 1; k <= n%nfolds; k++ {
		folds = append(folds, k)
	}
	rng.Shuffle(len(folds), func(i, j int) {
		folds[i], folds[j] = folds[j], folds[i]
	})
	return folds
}

// checkFolds validates explicit fold ids for n rows and returns the number
// of folds.
func checkFolds(folds []int, n int) (int, error) {
	if len(folds) != n {
		return 0, errors.NewDimensionError("glmnet.CrossValidate", n, len(folds), 0)
	}
	nfolds := 0
	for _, f := range folds {
		if f < 1 {
			return 0, errors.NewValidationError("folds", "fold ids must be >= 1", f)
		}
		nfolds = max(nfolds, f)
	}
	if nfolds < 2 {
		return 0, errors.NewValidationError("folds", "at least two folds are required", nfolds)
	}
	sizes := make([]int, nfolds+1)
	for _, f := range folds {
		sizes[f]++
	}
	for k := 1; k <= nfolds; k++ {
		if sizes[k] == 0 {
			return 0, errors.NewValidationError("folds", "every fold id up to the largest must be used", k)
		}
	}
	return nfolds, nil
}
