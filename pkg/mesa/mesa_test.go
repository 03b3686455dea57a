package mesa

import (
	"math"
	"testing"
)

func TestTToRint(t *testing.T) {
	p := Params{A: 100, B: 50, C: 2000, D: 10}
	temp := 25.0
	want := 100*(math.Exp(-temp/50)+math.Exp(-temp*temp/2000)) + 10
	if got := TToRint(temp, p); math.Abs(got-want) > 1e-12 {
		t.Errorf("TToRint = %g, want %g", got, want)
	}
}

func TestTToRthConstantWhenAlphaZero(t *testing.T) {
	p := DefaultParams() // alpha is 0
	for _, temp := range []float64{-40, 0, 30, 90} {
		if got := TToRth(temp, p); math.Abs(got-p.Gamma) > 1e-9 {
			t.Errorf("TToRth(%g) = %g, want gamma %g", temp, got, p.Gamma)
		}
	}
}

func TestTemperatureResidualAtFixedPoint(t *testing.T) {
	p := DefaultParams()
	// With alpha = 0 the thermal resistance is constant, so the
	// equilibrium temperature is gamma*P + Tbath exactly.
	power := 0.005
	tEq := p.Gamma*power + p.TBath
	if got := TemperatureResidual(tEq, power, p); math.Abs(got) > 1e-9 {
		t.Errorf("residual at fixed point = %g, want 0", got)
	}
}

func TestSolveTemperature(t *testing.T) {
	p := DefaultParams()
	power := 0.005
	want := p.Gamma*power + p.TBath

	got, ok := SolveTemperature(power, p)
	if !ok {
		t.Fatal("SolveTemperature did not converge")
	}
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("T = %g, want %g", got, want)
	}
}

func TestSolveVintSelfConsistent(t *testing.T) {
	p := DefaultParams()
	i := 1e-3

	v, ok := SolveVint(i, p)
	if !ok {
		t.Fatal("SolveVint did not converge")
	}
	temp, _ := SolveTemperature(v*i, p)
	if resid := v - TToRint(temp, p)*i; math.Abs(resid) > 1e-6 {
		t.Errorf("self-consistency residual = %g", resid)
	}
}

func TestIintToVintShapeAndNaN(t *testing.T) {
	p := DefaultParams()
	currents := []float64{1e-3, math.NaN(), 2e-3}

	voltages, converged := IintToVint(currents, p)
	if len(voltages) != len(currents) || len(converged) != len(currents) {
		t.Fatalf("output lengths %d/%d, want %d", len(voltages), len(converged), len(currents))
	}
	if !math.IsNaN(voltages[1]) {
		t.Errorf("voltage for NaN current = %g, want NaN", voltages[1])
	}
	if converged[1] {
		t.Error("NaN input marked converged")
	}
	for _, idx := range []int{0, 2} {
		if !converged[idx] {
			t.Errorf("point %d did not converge", idx)
		}
		if math.IsNaN(voltages[idx]) {
			t.Errorf("voltage[%d] is NaN", idx)
		}
	}
}
