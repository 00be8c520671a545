package solver

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/goglmnet/pkg/errors"
)

// glmFamily supplies the quantities the IRLS path needs for one response
// distribution. Weights are normalised to sum to one.
type glmFamily interface {
	// working fills the Hessian weights v and the weighted working residual
	// r = w(y - mu) at the linear predictor eta.
	working(eta, v, r []float64)
	// deviance is the deviance at eta relative to the saturated model.
	deviance(eta []float64) float64
	// null is the intercept of the intercept-only fit.
	null(intr bool) float64
	// saturated reports whether the fitted means have hit the boundary.
	saturated(eta []float64) bool
}

// Lognet fits the two-class logistic elastic-net path. Y holds the
// (success, failure) counts, already multiplied by observation weights.
// kopt selects exact (KoptNewton, KoptNZSame) or bounded
// (KoptModifiedNewton) Hessian weights.
func Lognet(kopt int, a *Args) (*Result, error) {
	if err := a.validate("lognet", 2); err != nil {
		return nil, err
	}
	res := newResult(a.NX, a.NLam)
	if res.JErr != 0 {
		return res, nil
	}
	n := a.NObs
	for _, v := range a.Y {
		if v < 0 {
			res.JErr = StatusNegativeResponse
			return res, nil
		}
	}
	ww := make([]float64, n)
	q := make([]float64, n)
	for i := 0; i < n; i++ {
		ww[i] = a.Y[i] + a.Y[n+i]
		if ww[i] > 0 {
			q[i] = a.Y[i] / ww[i]
		}
	}
	sw := floats.Sum(ww)
	if sw <= 0 {
		res.JErr = StatusDegenerateResponse
		return res, nil
	}
	vp, status := penalties(a.VP)
	if status != StatusOK {
		res.JErr = status
		return res, nil
	}
	d, status := newDesign(a, ww)
	if status != StatusOK {
		res.JErr = status
		return res, nil
	}
	if qbar := floats.Dot(d.w, q); qbar <= pmin || qbar >= 1-pmin {
		res.JErr = StatusDegenerateResponse
		return res, nil
	}
	g := offsetsOrZero(a)
	glmPath(a, d, &binomialFamily{q: q, w: d.w, g: g, kopt: kopt}, g, vp, sw, res)
	return res, nil
}

// Fishnet fits the Poisson elastic-net path with optional offsets.
func Fishnet(a *Args) (*Result, error) {
	if err := a.validate("fishnet", 1); err != nil {
		return nil, err
	}
	res := newResult(a.NX, a.NLam)
	if res.JErr != 0 {
		return res, nil
	}
	for _, v := range a.Y {
		if v < 0 {
			res.JErr = StatusNegativeResponse
			return res, nil
		}
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
	if floats.Dot(d.w, a.Y) <= 0 {
		res.JErr = StatusDegenerateResponse
		return res, nil
	}
	g := offsetsOrZero(a)
	glmPath(a, d, &poissonFamily{y: a.Y, w: d.w, g: g}, g, vp, floats.Sum(a.Weights), res)
	return res, nil
}

func offsetsOrZero(a *Args) []float64 {
	if a.Offsets == nil {
		return make([]float64, a.NObs)
	}
	return a.Offsets
}

// glmPath runs the IRLS coordinate-descent path and fills res. g holds the
// offsets and sw the total observation weight.
func glmPath(a *Args, d *design, fam glmFamily, g, vp []float64, sw float64, res *Result) {
	d.constrain(a.CL, 1)

	s := &irlsState{
		d:     d,
		fam:   fam,
		g:     g,
		vp:    vp,
		alpha: a.Alpha,
		thr:   a.Thr,
		maxit: a.MaxIt,
		intr:  a.Intr,
		b:     make([]float64, d.p),
		xv:    make([]float64, d.p),
		eta:   make([]float64, d.n),
		v:     make([]float64, d.n),
		r:     make([]float64, d.n),
		act:   newActiveSet(d.p, a.NX),
	}
	s.b0 = fam.null(a.Intr)
	s.refreshEta()
	dev0 := fam.deviance(s.eta)
	res.Dev0 = sw * dev0

	fam.working(s.eta, s.v, s.r)
	alm0 := 0.0
	for j := 0; j < d.p; j++ {
		if d.ju[j] && vp[j] > 0 {
			alm0 = math.Max(alm0, math.Abs(floats.Dot(s.r, d.x[j]))/vp[j])
		}
	}

	lp := newLambdaPath(a, 1)
	coef := func(j int, b float64) float64 { return b / d.xs[j] }
	alm := 0.0
	fdev0 := 0.0
	mnl := min(mnlam, a.NLam)
	for m := 0; m < a.NLam; m++ {
		alm = lp.at(m, alm, alm0)
		if !s.solve(alm) {
			res.JErr = failureStatus(s.overflow, m)
			break
		}
		s.act.store(res, m, s.b, coef)
		a0 := s.b0
		if a.Intr {
			for l := 0; l < s.act.nin; l++ {
				a0 -= res.CA[m*a.NX+l] * d.xm[s.act.ia[l]]
			}
		}
		res.A0[m] = a0
		fdev := 0.0
		if dev0 > 0 {
			fdev = 1 - fam.deviance(s.eta)/dev0
		}
		res.FDev[m] = fdev
		res.ALM[m] = alm
		res.LMU = m + 1

		if m+1 < mnl || lp.userGrid() {
			fdev0 = fdev
			continue
		}
		if s.act.nonzero(s.b) > a.NE {
			break
		}
		if fdev > devmax || fdev-fdev0 < sml*fdev || fam.saturated(s.eta) {
			break
		}
		fdev0 = fdev
	}
	res.NLP = s.nlp
}

type irlsState struct {
	d     *design
	fam   glmFamily
	g     []float64
	vp    []float64
	alpha float64
	thr   float64
	maxit int
	intr  bool

	b0  float64
	b   []float64
	xv  []float64 // Σ v x_j² at the current IRLS weights
	xmz float64   // Σ v
	eta []float64
	v   []float64
	r   []float64
	act *activeSet

	nlp      int
	overflow bool
}

func (s *irlsState) refreshEta() {
	for i := range s.eta {
		s.eta[i] = s.g[i] + s.b0
	}
	for _, j := range s.act.ia {
		if s.b[j] != 0 {
			floats.AddScaled(s.eta, s.b[j], s.d.x[j])
		}
	}
}

// solve iterates reweighted coordinate descent to convergence at one lambda.
func (s *irlsState) solve(alm float64) bool {
	ab := alm * s.alpha
	dem := alm * (1 - s.alpha)
	bs := make([]float64, s.d.p)
	for {
		s.fam.working(s.eta, s.v, s.r)
		s.xmz = floats.Sum(s.v)
		for j := 0; j < s.d.p; j++ {
			if s.d.ju[j] {
				s.xv[j] = weightedSumSq(s.d.x[j], s.v)
			}
		}
		copy(bs, s.b)
		b0s := s.b0

		if !s.descend(ab, dem) {
			return false
		}
		s.refreshEta()

		dlx := s.xmz * (s.b0 - b0s) * (s.b0 - b0s)
		for _, j := range s.act.ia {
			del := s.b[j] - bs[j]
			dlx = math.Max(dlx, s.xv[j]*del*del)
		}
		if dlx < s.thr {
			return true
		}
		if s.nlp > s.maxit {
			return false
		}
	}
}

// descend runs coordinate descent on the quadratic approximation held in
// v and r.
func (s *irlsState) descend(ab, dem float64) bool {
	for {
		s.nlp++
		dlx := s.updateIntercept()
		for j := 0; j < s.d.p; j++ {
			if !s.d.ju[j] {
				continue
			}
			step := s.update(j, ab, dem)
			if step < 0 {
				s.overflow = true
				return false
			}
			dlx = math.Max(dlx, step)
		}
		if dlx < s.thr {
			return true
		}
		if s.nlp > s.maxit {
			return false
		}
		for {
			s.nlp++
			dlx := s.updateIntercept()
			for _, j := range s.act.ia {
				dlx = math.Max(dlx, s.update(j, ab, dem))
			}
			if dlx < s.thr {
				break
			}
			if s.nlp > s.maxit {
				return false
			}
		}
	}
}

func (s *irlsState) updateIntercept() float64 {
	if !s.intr || s.xmz <= 0 {
		return 0
	}
	d := floats.Sum(s.r) / s.xmz
	s.b0 += d
	floats.AddScaled(s.r, -d, s.v)
	return s.xmz * d * d
}

func (s *irlsState) update(j int, ab, dem float64) float64 {
	x := s.d.x[j]
	gk := floats.Dot(s.r, x)
	bk := s.b[j]
	u := gk + bk*s.xv[j]
	s.b[j] = softThreshold(u, ab*s.vp[j], dem*s.vp[j], s.xv[j], s.d.lo[j], s.d.hi[j])
	del := s.b[j] - bk
	if del == 0 {
		return 0
	}
	if !s.act.enter(j) {
		s.b[j] = bk
		return -1
	}
	for i, xi := range x {
		s.r[i] -= del * s.v[i] * xi
	}
	return s.xv[j] * del * del
}

type binomialFamily struct {
	q, w, g []float64
	kopt    int
}

func (f *binomialFamily) prob(eta float64) float64 {
	return errors.ClipValue(1/(1+math.Exp(-eta)), pmin, 1-pmin)
}

func (f *binomialFamily) working(eta, v, r []float64) {
	for i, e := range eta {
		p := f.prob(e)
		if f.kopt == KoptModifiedNewton {
			v[i] = 0.25 * f.w[i]
		} else {
			v[i] = f.w[i] * p * (1 - p)
		}
		r[i] = f.w[i] * (f.q[i] - p)
	}
}

func (f *binomialFamily) deviance(eta []float64) float64 {
	dev := 0.0
	for i, e := range eta {
		if f.w[i] == 0 {
			continue
		}
		p := f.prob(e)
		dev += f.w[i] * (xlogy(f.q[i], f.q[i]/p) + xlogy(1-f.q[i], (1-f.q[i])/(1-p)))
	}
	return 2 * dev
}

func (f *binomialFamily) null(intr bool) float64 {
	if !intr {
		return 0
	}
	qbar := floats.Dot(f.w, f.q)
	b0 := math.Log(qbar / (1 - qbar))
	for iter := 0; iter < 100; iter++ {
		num, den := 0.0, 0.0
		for i, g := range f.g {
			p := f.prob(g + b0)
			num += f.w[i] * (f.q[i] - p)
			den += f.w[i] * p * (1 - p)
		}
		step := num / den
		b0 += step
		if math.Abs(step) < 1e-10 {
			break
		}
	}
	return b0
}

func (f *binomialFamily) saturated(eta []float64) bool {
	vmin := (1 + pmin) * pmin * (1 - pmin)
	xmz := 0.0
	for i, e := range eta {
		p := f.prob(e)
		xmz += f.w[i] * p * (1 - p)
	}
	return xmz <= vmin
}

type poissonFamily struct {
	y, w, g []float64
}

func (f *poissonFamily) working(eta, v, r []float64) {
	for i, e := range eta {
		mu := errors.StabilizeExp(e)
		v[i] = f.w[i] * mu
		r[i] = f.w[i] * (f.y[i] - mu)
	}
}

func (f *poissonFamily) deviance(eta []float64) float64 {
	dev := 0.0
	for i, e := range eta {
		if f.w[i] == 0 {
			continue
		}
		mu := errors.StabilizeExp(e)
		dev += f.w[i] * (xlogy(f.y[i], f.y[i]/mu) - (f.y[i] - mu))
	}
	return 2 * dev
}

func (f *poissonFamily) null(intr bool) float64 {
	if !intr {
		return 0
	}
	den := 0.0
	for i, g := range f.g {
		den += f.w[i] * errors.StabilizeExp(g)
	}
	return math.Log(floats.Dot(f.w, f.y) / den)
}

func (f *poissonFamily) saturated([]float64) bool { return false }

// xlogy returns x·log(y), taken as zero when x is zero.
func xlogy(x, y float64) float64 {
	if x == 0 {
		return 0
	}
	return x * math.Log(y)
}
