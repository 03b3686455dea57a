package antenna

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestSeriesSum(t *testing.T) {
	got := SeriesSum(complex(1, 2), complex(3, -1), complex(0, 4))
	want := complex(4, 5)
	if got != want {
		t.Errorf("SeriesSum = %v, want %v", got, want)
	}
}

func TestParallelSumEqualBranches(t *testing.T) {
	z := complex(10, 5)
	got := ParallelSum(z, z)
	want := z / 2
	if cmplx.Abs(got-want) > 1e-12 {
		t.Errorf("ParallelSum(z, z) = %v, want %v", got, want)
	}
}

func TestParallelSumZeroBranchShorts(t *testing.T) {
	if got := ParallelSum(complex(10, 0), 0); got != 0 {
		t.Errorf("ParallelSum with shorted branch = %v, want 0", got)
	}
}

func TestParallelSumVanishingAdmittance(t *testing.T) {
	// Only open branches leave zero total admittance; the combination
	// must be an effectively infinite impedance, not a division error.
	got := ParallelSum(cmplx.Inf())
	if !math.IsInf(real(got), 1) {
		t.Errorf("ParallelSum of open branches = %v, want +Inf", got)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	want := (43.0 + 159.0) / (15.0 + 43.0 + 159.0)
	if math.Abs(cfg.VoltageRatio-want) > 1e-15 {
		t.Errorf("VoltageRatio = %g, want %g", cfg.VoltageRatio, want)
	}
	if cfg.NBottomMiddle != 808 {
		t.Errorf("NBottomMiddle = %d, want 808", cfg.NBottomMiddle)
	}
	if cfg.Gamma <= 0 {
		t.Errorf("Gamma = %g, want positive", cfg.Gamma)
	}
}

func TestOutputPowerFinite(t *testing.T) {
	cfg := DefaultConfig()
	p := DefaultParams(cfg)

	power := OutputPower(1.0, 50, p, cfg)
	if math.IsNaN(power) || math.IsInf(power, 0) {
		t.Fatalf("OutputPower = %g, want finite", power)
	}
	if power < 0 {
		t.Errorf("OutputPower = %g, want non-negative", power)
	}
}

func TestOutputPowersShape(t *testing.T) {
	cfg := DefaultConfig()
	p := DefaultParams(cfg)
	vs := []float64{0.2, 0.5, 1.0}
	rints := []float64{100, 60, 40}

	out := OutputPowers(vs, rints, p, cfg)
	if len(out) != len(vs) {
		t.Fatalf("len = %d, want %d", len(out), len(vs))
	}
	for i, pw := range out {
		if math.IsNaN(pw) {
			t.Errorf("power[%d] is NaN", i)
		}
	}
}

func TestParamsSetRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	p := DefaultParams(cfg)
	got := FromSet(p.Set())
	if math.Abs(got.R-p.R) > 1e-12 || math.Abs(got.L-p.L) > 1e-20 || math.Abs(got.N-p.N) > 1e-12 {
		t.Errorf("FromSet(Set()) = %+v, want %+v", got, p)
	}
}
