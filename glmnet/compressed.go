package glmnet

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/goglmnet/pkg/errors"
)

// CompressedPredictorMatrix is a read-only P×S coefficient matrix, one
// column per solution on the path.
//
// Values live in a dense maxActive×S buffer ca. Storage row i of every
// column belongs to predictor ia[i], and only the first nin[b] rows of
// column b are meaningful. ia grows as predictors enter the model along the
// path, so one index array serves all columns. Element (a, b) is ca[i, b]
// for the i < nin[b] with ia[i] == a, or zero when there is none.
type CompressedPredictorMatrix struct {
	ni  int
	ca  *mat.Dense
	ia  []int
	nin []int
}

var _ mat.Matrix = (*CompressedPredictorMatrix)(nil)

// NewCompressedPredictorMatrix wraps ca, ia and nin without copying them.
// ia holds 0-based predictor indices.
func NewCompressedPredictorMatrix(ni int, ca *mat.Dense, ia, nin []int) (*CompressedPredictorMatrix, error) {
	const op = "NewCompressedPredictorMatrix"
	if ni <= 0 {
		return nil, errors.NewValidationError("ni", "must be positive", ni)
	}
	if ca == nil {
		return nil, errors.NewValidationError("ca", "must not be nil", nil)
	}
	r, c := ca.Dims()
	if r != len(ia) {
		return nil, errors.NewDimensionError(op, len(ia), r, 0)
	}
	if c != len(nin) {
		return nil, errors.NewDimensionError(op, len(nin), c, 1)
	}
	for _, n := range nin {
		if n < 0 || n > len(ia) {
			return nil, errors.NewIndexError(op, n, len(ia), 0)
		}
	}
	for _, a := range ia {
		if a < 0 || a >= ni {
			return nil, errors.NewIndexError(op, a, ni, 0)
		}
	}
	return &CompressedPredictorMatrix{ni: ni, ca: ca, ia: ia, nin: nin}, nil
}

// Dims returns the number of predictors and solutions.
func (m *CompressedPredictorMatrix) Dims() (r, c int) {
	return m.ni, len(m.nin)
}

// At returns element (a, b). It panics when either index is out of range.
func (m *CompressedPredictorMatrix) At(a, b int) float64 {
	if a < 0 || a >= m.ni {
		panic(mat.ErrRowAccess)
	}
	if b < 0 || b >= len(m.nin) {
		panic(mat.ErrColAccess)
	}
	return m.at(a, b)
}

func (m *CompressedPredictorMatrix) at(a, b int) float64 {
	for i := 0; i < m.nin[b]; i++ {
		if m.ia[i] == a {
			return m.ca.At(i, b)
		}
	}
	return 0
}

// Get is At with an error instead of a panic.
func (m *CompressedPredictorMatrix) Get(a, b int) (float64, error) {
	if a < 0 || a >= m.ni {
		return 0, errors.NewIndexError("CompressedPredictorMatrix.Get", a, m.ni, 0)
	}
	if b < 0 || b >= len(m.nin) {
		return 0, errors.NewIndexError("CompressedPredictorMatrix.Get", b, len(m.nin), 1)
	}
	return m.at(a, b), nil
}

// T returns the transpose.
func (m *CompressedPredictorMatrix) T() mat.Matrix {
	return mat.Transpose{Matrix: m}
}

// Range returns the dense values of predictors [lo, hi) in column b.
// Like Slice, it panics on an empty range.
func (m *CompressedPredictorMatrix) Range(lo, hi, b int) []float64 {
	if lo == hi {
		panic(mat.ErrZeroLength)
	}
	if lo < 0 || hi > m.ni || lo > hi {
		panic(mat.ErrIndexOutOfRange)
	}
	if b < 0 || b >= len(m.nin) {
		panic(mat.ErrColAccess)
	}
	out := make([]float64, hi-lo)
	m.scatter(out, lo, hi, b)
	return out
}

func (m *CompressedPredictorMatrix) scatter(dst []float64, lo, hi, b int) {
	for i := 0; i < m.nin[b]; i++ {
		if a := m.ia[i]; lo <= a && a < hi {
			dst[a-lo] = m.ca.At(i, b)
		}
	}
}

// Slice returns the dense (hi-lo)×len(cols) block of predictors [lo, hi)
// for the given solutions.
func (m *CompressedPredictorMatrix) Slice(lo, hi int, cols []int) *mat.Dense {
	if lo == hi || len(cols) == 0 {
		panic(mat.ErrZeroLength)
	}
	if lo < 0 || hi > m.ni || lo > hi {
		panic(mat.ErrIndexOutOfRange)
	}
	out := mat.NewDense(hi-lo, len(cols), nil)
	col := make([]float64, hi-lo)
	for k, b := range cols {
		if b < 0 || b >= len(m.nin) {
			panic(mat.ErrColAccess)
		}
		clear(col)
		m.scatter(col, lo, hi, b)
		out.SetCol(k, col)
	}
	return out
}

// Column returns the dense coefficient vector of solution b.
func (m *CompressedPredictorMatrix) Column(b int) []float64 {
	return m.Range(0, m.ni, b)
}

// Nin returns the number of storage rows used by solution b. It can exceed
// CountActive(b): a predictor keeps its row after its coefficient returns
// to zero.
func (m *CompressedPredictorMatrix) Nin(b int) int {
	return m.nin[b]
}

// CountActive returns the number of non-zero coefficients in solution b.
func (m *CompressedPredictorMatrix) CountActive(b int) int {
	n := 0
	for i := 0; i < m.nin[b]; i++ {
		if m.ca.At(i, b) != 0 {
			n++
		}
	}
	return n
}

// ActiveSet returns the predictors with non-zero coefficients in solution
// b, in ascending order.
func (m *CompressedPredictorMatrix) ActiveSet(b int) []int {
	var out []int
	for a, v := range m.Column(b) {
		if v != 0 {
			out = append(out, a)
		}
	}
	return out
}

// ToDense materialises the full P×S matrix.
func (m *CompressedPredictorMatrix) ToDense() *mat.Dense {
	out := mat.NewDense(m.ni, len(m.nin), nil)
	for b, n := range m.nin {
		for i := 0; i < n; i++ {
			out.Set(m.ia[i], b, m.ca.At(i, b))
		}
	}
	return out
}

// Format implements fmt.Formatter by formatting the dense form.
func (m *CompressedPredictorMatrix) Format(f fmt.State, c rune) {
	mat.Formatted(m.ToDense(), mat.Squeeze()).Format(f, c)
}

func (m *CompressedPredictorMatrix) String() string {
	return fmt.Sprintf("%v", m)
}
