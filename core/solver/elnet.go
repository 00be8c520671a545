package solver

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Elnet fits the Gaussian elastic-net path. ka selects covariance updates
// (CovarianceUpdates) or naive residual updates (NaiveUpdates). FDev holds
// the R² of each solution; Dev0 is left at zero.
//
// The returned error is non-nil only when the arguments break the calling
// convention; solver failures are reported in Result.JErr.
func Elnet(ka int, a *Args) (*Result, error) {
	if err := a.validate("elnet", 1); err != nil {
		return nil, err
	}
	res := newResult(a.NX, a.NLam)
	if res.JErr != 0 {
		return res, nil
	}
	vp, status := penalties(a.VP)
	if status != StatusOK {
		res.JErr = status
		return res, nil
	}
	d, status := newDesign(a, a.Weights)
	if status != StatusOK {
		res.JErr = status
		return res, nil
	}

	// Centre and scale the response.
	y := make([]float64, a.NObs)
	copy(y, a.Y)
	ym := 0.0
	if a.Intr {
		ym = floats.Dot(d.w, y)
		floats.AddConst(-ym, y)
	}
	ys := math.Sqrt(weightedSumSq(y, d.w))
	if ys == 0 {
		ys = 1
	}
	floats.Scale(1/ys, y)
	d.constrain(a.CL, ys)

	e := &elnetState{
		d:     d,
		vp:    vp,
		ka:    ka,
		alpha: a.Alpha,
		thr:   a.Thr,
		maxit: a.MaxIt,
		b:     make([]float64, d.p),
		xv:    make([]float64, d.p),
		g:     make([]float64, d.p),
		act:   newActiveSet(d.p, a.NX),
	}
	for j := 0; j < d.p; j++ {
		if d.ju[j] {
			e.xv[j] = weightedSumSq(d.x[j], d.w)
			e.g[j] = weightedDot(d.x[j], y, d.w)
		}
	}
	alm0 := 0.0
	for j := 0; j < d.p; j++ {
		if d.ju[j] && vp[j] > 0 {
			alm0 = math.Max(alm0, math.Abs(e.g[j])/vp[j])
		}
	}
	if ka == NaiveUpdates {
		// r holds w∘residual so that the gradient is a plain dot product.
		e.r = make([]float64, d.n)
		for i := range y {
			e.r[i] = d.w[i] * y[i]
		}
	} else {
		e.c = make([][]float64, 0, a.NX)
	}

	lp := newLambdaPath(a, ys)
	coef := func(j int, b float64) float64 { return ys * b / d.xs[j] }
	alm := 0.0
	rsq0 := 0.0
	mnl := min(mnlam, a.NLam)
	for m := 0; m < a.NLam; m++ {
		alm = lp.at(m, alm, alm0)
		if !e.solve(alm) {
			res.JErr = failureStatus(e.overflow, m)
			break
		}
		e.act.store(res, m, e.b, coef)
		res.FDev[m] = e.rsq
		res.ALM[m] = alm * ys
		if a.Intr {
			a0 := ym
			for l := 0; l < e.act.nin; l++ {
				a0 -= res.CA[m*a.NX+l] * d.xm[e.act.ia[l]]
			}
			res.A0[m] = a0
		}
		res.LMU = m + 1

		if m+1 < mnl || lp.userGrid() {
			rsq0 = e.rsq
			continue
		}
		if e.act.nonzero(e.b) > a.NE {
			break
		}
		if e.rsq-rsq0 < sml*e.rsq || e.rsq > devmax {
			break
		}
		rsq0 = e.rsq
	}
	res.NLP = e.nlp
	return res, nil
}

type elnetState struct {
	d     *design
	vp    []float64
	ka    int
	alpha float64
	thr   float64
	maxit int

	b   []float64   // working-scale coefficients
	xv  []float64   // Σ w x_j²
	g   []float64   // covariance mode: current gradient Σ w x_j r
	c   [][]float64 // covariance mode: Σ w x_j x_k per storage row k
	r   []float64   // naive mode: w∘residual
	act *activeSet

	rsq      float64
	nlp      int
	overflow bool
}

// gradient returns Σ w x_j r for predictor j.
func (e *elnetState) gradient(j int) float64 {
	if e.ka == NaiveUpdates {
		return floats.Dot(e.r, e.d.x[j])
	}
	return e.g[j]
}

// update moves coordinate j and returns the squared weighted step. It
// returns -1 when j cannot enter the active set.
func (e *elnetState) update(j int, ab, dem float64) float64 {
	gk := e.gradient(j)
	bk := e.b[j]
	u := gk + bk*e.xv[j]
	e.b[j] = softThreshold(u, ab*e.vp[j], dem*e.vp[j], e.xv[j], e.d.lo[j], e.d.hi[j])
	del := e.b[j] - bk
	if del == 0 {
		return 0
	}
	if e.act.mm[j] == 0 {
		if !e.act.enter(j) {
			e.b[j] = bk
			return -1
		}
		if e.ka != NaiveUpdates {
			col := make([]float64, e.d.p)
			for k := 0; k < e.d.p; k++ {
				if e.d.ju[k] {
					col[k] = weightedDot(e.d.x[j], e.d.x[k], e.d.w)
				}
			}
			e.c = append(e.c, col)
		}
	}
	e.rsq += del * (2*gk - del*e.xv[j])
	if e.ka == NaiveUpdates {
		for i, xi := range e.d.x[j] {
			e.r[i] -= del * e.d.w[i] * xi
		}
	} else {
		floats.AddScaled(e.g, -del, e.c[e.act.mm[j]-1])
	}
	return e.xv[j] * del * del
}

// solve runs coordinate descent at one lambda. It returns false on
// non-convergence or when the active set overflows (e.overflow set).
func (e *elnetState) solve(alm float64) bool {
	ab := alm * e.alpha
	dem := alm * (1 - e.alpha)
	for {
		e.nlp++
		dlx := 0.0
		for j := 0; j < e.d.p; j++ {
			if !e.d.ju[j] {
				continue
			}
			step := e.update(j, ab, dem)
			if step < 0 {
				e.overflow = true
				return false
			}
			dlx = math.Max(dlx, step)
		}
		if dlx < e.thr {
			return true
		}
		if e.nlp > e.maxit {
			return false
		}
		// Iterate on the active set until it settles, then sweep again.
		for {
			e.nlp++
			dlx := 0.0
			for _, j := range e.act.ia {
				dlx = math.Max(dlx, e.update(j, ab, dem))
			}
			if dlx < e.thr {
				break
			}
			if e.nlp > e.maxit {
				return false
			}
		}
	}
}
