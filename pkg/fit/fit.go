// Package fit wraps the Levenberg-Marquardt optimizer in a weighted
// nonlinear least-squares fit over a named parameter set, with NaN
// masking, bounded parameters, and per-iteration chi-square logging.
package fit

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/maorshutman/lm"
	"gonum.org/v1/gonum/mat"

	"github.com/RK0429/JPE-circuit-model/pkg/params"
)

// DefaultMaxEval caps the optimizer iterations when Options.MaxEval is
// zero.
const DefaultMaxEval = 200

// Forward evaluates the model for the given parameters, returning
// predictions aligned with the dependent data. Points the model could not
// solve may be NaN; they are excluded from the residual.
type Forward func(p *params.Set) []float64

// Options tunes the optimizer.
type Options struct {
	// Weights multiplies each residual; nil means unit weights.
	Weights []float64
	// MaxEval caps the optimizer iterations; 0 uses DefaultMaxEval.
	MaxEval int
	// Tau, Eps1, Eps2 and ObjectiveTol pass through to the optimizer;
	// zero values take the usual defaults.
	Tau, Eps1, Eps2, ObjectiveTol float64
}

// Result holds the outcome of a fit. It is consumed read-only by the
// plotting helpers.
type Result struct {
	// Params carries the best-fit values.
	Params *params.Set
	// ChiSquare is the weighted sum of squared residuals at the solution
	// and RedChiSquare the same per degree of freedom.
	ChiSquare    float64
	RedChiSquare float64
	// Covar is the covariance of the varying parameters in internal
	// space, nil when the normal matrix was singular. Stderr maps each
	// varying parameter name to its standard error in external space.
	Covar  *mat.Dense
	Stderr map[string]float64
	// NEval counts objective evaluations; NPoints the residual points
	// that entered the fit.
	NEval   int
	NPoints int
	// Converged reports whether the optimizer terminated normally.
	// Best-fit values are populated either way.
	Converged bool
}

// Fit runs a weighted least-squares fit of model against y. Residuals at
// points where y or the model output is NaN are dropped. The chi-square
// is logged on every objective evaluation for monitoring; logging never
// halts the optimization.
func Fit(model Forward, p *params.Set, y []float64, opts Options) (*Result, error) {
	if opts.Weights != nil && len(opts.Weights) != len(y) {
		return nil, fmt.Errorf("fit: %d weights for %d points", len(opts.Weights), len(y))
	}
	dim := p.NumVary()
	if dim == 0 {
		return nil, fmt.Errorf("fit: no varying parameters")
	}
	valid := 0
	for _, v := range y {
		if !math.IsNaN(v) {
			valid++
		}
	}
	if valid < dim {
		return nil, fmt.Errorf("fit: %d valid points for %d varying parameters", valid, dim)
	}

	maxEval := opts.MaxEval
	if maxEval == 0 {
		maxEval = DefaultMaxEval
	}
	tau := defaultIfZero(opts.Tau, 1e-6)
	eps1 := defaultIfZero(opts.Eps1, 1e-8)
	eps2 := defaultIfZero(opts.Eps2, 1e-8)
	objTol := defaultIfZero(opts.ObjectiveTol, 1e-16)

	work := p.Clone()
	rawResid := func(dst, x []float64) {
		work.SetInternal(x)
		pred := model(work)
		for i := range dst {
			r := pred[i] - y[i]
			if opts.Weights != nil {
				r *= opts.Weights[i]
			}
			if math.IsNaN(r) {
				r = 0
			}
			dst[i] = r
		}
	}
	neval := 0
	resid := func(dst, x []float64) {
		rawResid(dst, x)
		chi := 0.0
		for _, r := range dst {
			chi += r * r
		}
		neval++
		slog.Info("fit iteration", "iteration", neval, "chi_square", chi)
	}

	// The Jacobian perturbs around the current iterate; give it the
	// unlogged residual so the chi-square log tracks iterations, not
	// finite-difference probes.
	jac := lm.NumJac{Func: rawResid}
	prob := lm.LMProblem{
		Dim:        dim,
		Size:       len(y),
		Func:       resid,
		Jac:        jac.Jac,
		InitParams: p.Internal(),
		Tau:        tau,
		Eps1:       eps1,
		Eps2:       eps2,
	}

	res, lmErr := lm.LM(prob, &lm.Settings{Iterations: maxEval, ObjectiveTol: objTol})
	converged := lmErr == nil
	xBest := p.Internal()
	if res != nil && len(res.X) == dim {
		xBest = res.X
	}
	if !converged {
		slog.Warn("fit did not converge", "err", lmErr)
	}

	best := p.Clone()
	best.SetInternal(xBest)

	out := &Result{
		Params:    best,
		NEval:     neval,
		NPoints:   valid,
		Converged: converged,
	}
	out.ChiSquare = chiSquare(model, best, y, opts.Weights)
	dof := valid - dim
	if dof > 0 {
		out.RedChiSquare = out.ChiSquare / float64(dof)
	}
	out.Covar, out.Stderr = covariance(rawResid, best, xBest, len(y), out.RedChiSquare)

	slog.Info("fitting completed",
		"chi_square", out.ChiSquare,
		"reduced_chi_square", out.RedChiSquare,
		"evaluations", out.NEval,
		"converged", out.Converged)
	return out, nil
}

func defaultIfZero(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func chiSquare(model Forward, p *params.Set, y, weights []float64) float64 {
	pred := model(p)
	chi := 0.0
	for i := range y {
		r := pred[i] - y[i]
		if weights != nil {
			r *= weights[i]
		}
		if math.IsNaN(r) {
			continue
		}
		chi += r * r
	}
	return chi
}

// covariance estimates (JᵀJ)⁻¹ scaled by the reduced chi-square from a
// forward-difference Jacobian at the solution, then propagates the
// diagonal through the bound transform.
func covariance(resid func(dst, x []float64), best *params.Set, x []float64, size int, redChi float64) (*mat.Dense, map[string]float64) {
	dim := len(x)
	r0 := make([]float64, size)
	resid(r0, x)

	j := mat.NewDense(size, dim, nil)
	r1 := make([]float64, size)
	xh := append([]float64(nil), x...)
	for c := 0; c < dim; c++ {
		h := 1e-8 * math.Max(1, math.Abs(x[c]))
		xh[c] = x[c] + h
		resid(r1, xh)
		xh[c] = x[c]
		for r := 0; r < size; r++ {
			j.Set(r, c, (r1[r]-r0[r])/h)
		}
	}

	var jtj mat.Dense
	jtj.Mul(j.T(), j)
	var cov mat.Dense
	if err := cov.Inverse(&jtj); err != nil {
		slog.Warn("covariance not available", "err", err)
		return nil, nil
	}
	cov.Scale(redChi, &cov)

	stderr := make(map[string]float64, dim)
	grad := best.ExternalGradient(x)
	i := 0
	for _, name := range best.Names() {
		p := best.Get(name)
		if !p.Vary {
			continue
		}
		v := cov.At(i, i)
		if v >= 0 {
			stderr[name] = math.Sqrt(v) * math.Abs(grad[i])
		} else {
			stderr[name] = math.NaN()
		}
		i++
	}
	return &cov, stderr
}

// ValidIndices returns the indices where every given array is finite,
// used to mask undefined samples before fitting.
func ValidIndices(arrays ...[]float64) []int {
	if len(arrays) == 0 {
		return nil
	}
	n := len(arrays[0])
	var idx []int
outer:
	for i := 0; i < n; i++ {
		for _, a := range arrays {
			if math.IsNaN(a[i]) || math.IsInf(a[i], 0) {
				continue outer
			}
		}
		idx = append(idx, i)
	}
	return idx
}

// Select gathers the values of xs at the given indices.
func Select(idx []int, xs []float64) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = xs[j]
	}
	return out
}
