package mesa

import (
	"log/slog"
	"math"

	"github.com/maorshutman/lm"
)

// Seeds and tolerances for the implicit solvers.
const (
	temperatureSeed = 30.0
	vintSeed        = 20e-3
	rootTol         = 1e-9
	rootIterations  = 100
)

// TemperatureResidual is the self-consistency residual
// T − (R_th(T)·P + T_bath); it is zero at the equilibrium temperature.
func TemperatureResidual(t, power float64, p Params) float64 {
	return t - PToT(power, TToRth(t, p), p.TBath)
}

// solveScalar finds a root of f near seed with the Levenberg-Marquardt
// solver on a one-dimensional residual. It returns the last iterate and
// whether the residual vanished within tolerance.
func solveScalar(f func(x float64) float64, seed float64) (float64, bool) {
	resid := func(dst, x []float64) {
		dst[0] = f(x[0])
	}
	jac := lm.NumJac{Func: resid}
	prob := lm.LMProblem{
		Dim:        1,
		Size:       1,
		Func:       resid,
		Jac:        jac.Jac,
		InitParams: []float64{seed},
		Tau:        1e-6,
		Eps1:       1e-8,
		Eps2:       1e-8,
	}
	res, err := lm.LM(prob, &lm.Settings{Iterations: rootIterations, ObjectiveTol: 1e-16})
	if res == nil || len(res.X) == 0 {
		return seed, false
	}
	x := res.X[0]
	ok := err == nil && math.Abs(f(x)) <= rootTol
	return x, ok
}

// SolveTemperature finds the self-consistent temperature for an applied
// power. Non-convergence is logged as a warning and the last iterate is
// returned with ok=false; callers decide whether to mask it.
func SolveTemperature(power float64, p Params) (float64, bool) {
	t, ok := solveScalar(func(t float64) float64 {
		return TemperatureResidual(t, power, p)
	}, temperatureSeed)
	if !ok {
		slog.Warn("temperature solve did not converge", "power", power)
	}
	return t, ok
}

// VintResidual computes the residual between a trial internal voltage and
// the voltage implied by the self-consistent temperature at that power.
func VintResidual(v, i float64, p Params) float64 {
	power := v * i
	t, _ := SolveTemperature(power, p)
	return v - TToRint(t, p)*i
}

// SolveVint finds the internal voltage consistent with the measured
// current. A point that fails to converge is NaN.
func SolveVint(i float64, p Params) (float64, bool) {
	v, ok := solveScalar(func(v float64) float64 {
		return VintResidual(v, i, p)
	}, vintSeed)
	if !ok {
		slog.Warn("voltage solve did not converge", "current", i)
		return math.NaN(), false
	}
	return v, true
}

// IintToVint maps an array of currents to self-consistent internal
// voltages, one independent solve per element. The output has the input's
// length; entries that failed to converge are NaN, with the matching
// converged flag false.
func IintToVint(currents []float64, p Params) ([]float64, []bool) {
	voltages := make([]float64, len(currents))
	converged := make([]bool, len(currents))
	for idx, i := range currents {
		if math.IsNaN(i) {
			voltages[idx] = math.NaN()
			continue
		}
		voltages[idx], converged[idx] = SolveVint(i, p)
	}
	return voltages, converged
}
