package solver

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// design is the standardised working copy of the predictors.
type design struct {
	n, p int
	x    [][]float64 // centred and scaled columns
	w    []float64   // observation weights summing to one
	xm   []float64   // weighted column means (zero without intercept)
	xs   []float64   // column scales (one without standardisation)
	ju   []bool      // predictor may enter the model
	lo   []float64   // constraints in the working scale
	hi   []float64
}

// newDesign normalises w, flags constant and excluded predictors, and
// centres and scales the columns of the column-major matrix x. It reports
// StatusZeroVariance when no predictor is usable.
func newDesign(a *Args, w []float64) (*design, int) {
	n, p := a.NObs, a.NVars
	d := &design{
		n:  n,
		p:  p,
		x:  make([][]float64, p),
		w:  make([]float64, n),
		xm: make([]float64, p),
		xs: make([]float64, p),
		ju: make([]bool, p),
		lo: make([]float64, p),
		hi: make([]float64, p),
	}
	copy(d.w, w)
	floats.Scale(1/floats.Sum(d.w), d.w)

	for j := 0; j < p; j++ {
		col := a.X[j*n : (j+1)*n]
		d.ju[j] = floats.Max(col) > floats.Min(col)
	}
	for _, j := range a.JD[1:] {
		d.ju[j-1] = false
	}
	usable := false
	for _, ok := range d.ju {
		usable = usable || ok
	}
	if !usable {
		return nil, StatusZeroVariance
	}

	for j := 0; j < p; j++ {
		col := make([]float64, n)
		copy(col, a.X[j*n:(j+1)*n])
		d.x[j] = col
		d.xs[j] = 1
		if !d.ju[j] {
			continue
		}
		if a.Intr {
			mean, variance := stat.PopMeanVariance(col, d.w)
			d.xm[j] = mean
			floats.AddConst(-mean, col)
			if a.ISD {
				d.xs[j] = math.Sqrt(variance)
			}
		} else if a.ISD {
			d.xs[j] = math.Sqrt(weightedSumSq(col, d.w))
		}
		if d.xs[j] != 1 {
			floats.Scale(1/d.xs[j], col)
		}
	}
	return d, StatusOK
}

// constrain maps the caller's box constraints into the working scale, where
// a coefficient b corresponds to b·scale/xs on the original scale.
func (d *design) constrain(cl []float64, scale float64) {
	for j := 0; j < d.p; j++ {
		d.lo[j] = cl[2*j] * d.xs[j] / scale
		d.hi[j] = cl[2*j+1] * d.xs[j] / scale
	}
}

// weightedSumSq returns Σ w_i v_i².
func weightedSumSq(v, w []float64) float64 {
	s := 0.0
	for i, vi := range v {
		s += w[i] * vi * vi
	}
	return s
}

// weightedDot returns Σ w_i a_i b_i.
func weightedDot(a, b, w []float64) float64 {
	s := 0.0
	for i := range a {
		s += w[i] * a[i] * b[i]
	}
	return s
}

// activeSet tracks the order in which predictors first enter the model.
// A predictor keeps its storage row for the rest of the path.
type activeSet struct {
	mm  []int // storage row + 1 per predictor, 0 when never active
	ia  []int // 0-based predictor per storage row
	nx  int
	nin int
}

func newActiveSet(p, nx int) *activeSet {
	return &activeSet{mm: make([]int, p), ia: make([]int, 0, nx), nx: nx}
}

// enter assigns a storage row to j. It returns false when the set would
// exceed nx.
func (s *activeSet) enter(j int) bool {
	if s.mm[j] != 0 {
		return true
	}
	if s.nin >= s.nx {
		return false
	}
	s.ia = append(s.ia, j)
	s.nin++
	s.mm[j] = s.nin
	return true
}

// store writes the active coefficients of solution m into res, mapping them
// back to the original scale with coef.
func (s *activeSet) store(res *Result, m int, b []float64, coef func(j int, b float64) float64) {
	nx := len(res.IA)
	for l, j := range s.ia {
		res.CA[m*nx+l] = coef(j, b[j])
		res.IA[l] = j + 1
	}
	res.NIN[m] = s.nin
}

// nonzero counts the active predictors whose coefficient is non-zero.
func (s *activeSet) nonzero(b []float64) int {
	me := 0
	for _, j := range s.ia {
		if b[j] != 0 {
			me++
		}
	}
	return me
}
