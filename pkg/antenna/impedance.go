// Package antenna models the mesa/antenna RLC network: complex branch
// impedances combined in series and parallel, and the output power
// radiated through the resistive branch. All functions are pure; the
// network is recomputed per evaluation point.
package antenna

import (
	"math"
	"math/cmplx"

	"github.com/RK0429/JPE-circuit-model/internal/consts"
	"github.com/RK0429/JPE-circuit-model/pkg/params"
)

// Config carries the device geometry constants that the original kept as
// module globals. It is passed explicitly so the model stays pure.
type Config struct {
	// VoltageRatio splits the excitation voltage across the stack.
	VoltageRatio float64
	// NBottomMiddle is the junction count of the bottom/middle stack.
	NBottomMiddle int
	// Gamma is the Josephson voltage-to-frequency scaling 2e/ħ/N.
	Gamma float64
	// Sb is the bolometer responsivity used for output scaling.
	Sb float64
}

// DefaultConfig returns the constants for the measured device.
func DefaultConfig() Config {
	const n = 808
	return Config{
		VoltageRatio:  (43.0 + 159.0) / (15.0 + 43.0 + 159.0),
		NBottomMiddle: n,
		Gamma:         2 * consts.Charge / consts.HBar / n,
		Sb:            consts.Sb,
	}
}

// epsilon guards the parallel combination against a vanishing total
// admittance.
const epsilon = 1e-20

// SeriesSum returns the series combination of impedances, their
// arithmetic sum.
func SeriesSum(zs ...complex128) complex128 {
	var sum complex128
	for _, z := range zs {
		sum += z
	}
	return sum
}

// ParallelSum returns the parallel combination of impedances, the
// reciprocal of the admittance sum. A zero branch short-circuits the
// combination; a vanishing total admittance yields an effectively
// infinite impedance instead of a division error.
func ParallelSum(zs ...complex128) complex128 {
	var y complex128
	for _, z := range zs {
		if z == 0 {
			return 0
		}
		if cmplx.IsInf(z) {
			continue // open branch, zero admittance
		}
		y += 1 / z
	}
	if cmplx.Abs(y) < epsilon {
		return complex(math.Inf(1), 0)
	}
	return 1 / y
}

// Params are the circuit-element values of the antenna network. The
// inductances and capacitances are pre-scaled by the Josephson factor so
// the excitation voltage acts directly as angular frequency.
type Params struct {
	Ratio                  float64 // coupling ratio of radiated to detected power
	R, L, C                float64 // resonant branch
	CIntTop, CIntBottom    float64 // internal stack capacitances
	RLossTop, RLossBottom  float64 // stack loss resistances
	Ic                     float64 // critical current excitation
	RExt, LExt             float64 // external lead
	RGnd, RMid, RFG        float64 // ground, middle, function-generator resistances
	LFG                    float64 // function-generator lead inductance
	N                      float64 // junction count of the full stack
}

// DefaultParams returns the published starting values for the antenna
// fit.
func DefaultParams(cfg Config) Params {
	return Params{
		Ratio:       1,
		R:           55.04,
		L:           3.27e-10 * cfg.Gamma,
		C:           2.748e-16 * cfg.Gamma,
		CIntTop:     4.339e-11 * cfg.Gamma,
		CIntBottom:  3.222e-12 * cfg.Gamma,
		RLossTop:    0.202,
		RLossBottom: 2.922,
		Ic:          18e-3,
		RExt:        1.15,
		LExt:        10e-9 * cfg.Gamma,
		RGnd:        7.20,
		RMid:        8.29,
		RFG:         50,
		LFG:         10e-9 * cfg.Gamma,
		N:           848,
	}
}

// Set maps the parameters into a bounded fit set. Only the resonant
// branch (R, L, C) varies; everything else is held at its measured value.
func (p Params) Set() *params.Set {
	inf := math.Inf(1)
	bounded := func(name string, v float64, vary bool) params.Param {
		return params.Param{Name: name, Value: v, Min: 0, Max: inf, Vary: vary}
	}
	return params.MustNewSet(
		bounded("ratio", p.Ratio, false),
		bounded("R", p.R, true),
		bounded("L", p.L, true),
		bounded("C", p.C, true),
		bounded("C_intt", p.CIntTop, false),
		bounded("C_intb", p.CIntBottom, false),
		bounded("R_loss_t", p.RLossTop, false),
		bounded("R_loss_b", p.RLossBottom, false),
		bounded("Ic", p.Ic, false),
		bounded("R_ext", p.RExt, false),
		bounded("L_ext", p.LExt, false),
		bounded("R_gnd", p.RGnd, false),
		bounded("R_mid", p.RMid, false),
		bounded("R_FG", p.RFG, false),
		bounded("L_FG", p.LFG, false),
		params.Param{Name: "N", Value: p.N, Min: 1, Max: inf, Vary: false},
	)
}

// FromSet reads the parameter values back out of a fit set.
func FromSet(s *params.Set) Params {
	return Params{
		Ratio:       s.Value("ratio"),
		R:           s.Value("R"),
		L:           s.Value("L"),
		C:           s.Value("C"),
		CIntTop:     s.Value("C_intt"),
		CIntBottom:  s.Value("C_intb"),
		RLossTop:    s.Value("R_loss_t"),
		RLossBottom: s.Value("R_loss_b"),
		Ic:          s.Value("Ic"),
		RExt:        s.Value("R_ext"),
		LExt:        s.Value("L_ext"),
		RGnd:        s.Value("R_gnd"),
		RMid:        s.Value("R_mid"),
		RFG:         s.Value("R_FG"),
		LFG:         s.Value("L_FG"),
		N:           s.Value("N"),
	}
}

// Impedance collects the reduced branch impedances of the network at one
// evaluation point.
type Impedance struct {
	ZC, ZRes, ZTop, ZBottom, ZOut, ZTot complex128
}

// MesaImpedance reduces the network at excitation voltage v and internal
// resistance rint. The angular frequency is the bottom-stack share of the
// excitation voltage (Josephson relation, pre-scaled element values).
func MesaImpedance(v, rint float64, p Params, cfg Config) Impedance {
	w := cfg.VoltageRatio * v

	rOut := SeriesSum(complex(p.RExt, 0), complex(p.RGnd, 0), complex(p.RMid, 0), complex(p.RFG, 0))
	lOut := p.LExt + p.LFG
	zOut := SeriesSum(rOut, complex(0, w*lOut))

	zC := complex(0, -1/(w*p.C))
	zL := complex(0, w*p.L)
	zRes := SeriesSum(complex(p.R, 0), zL, zC)

	zTop := ParallelSum(
		SeriesSum(complex(p.RLossTop, 0), complex(0, -1/(w*p.CIntTop))),
		complex((1-cfg.VoltageRatio)*rint, 0),
	)
	zBottom := ParallelSum(
		SeriesSum(complex(p.RLossBottom, 0), complex(0, -1/(w*p.CIntBottom))),
		complex(cfg.VoltageRatio*rint, 0),
	)

	zTot := ParallelSum(zBottom, SeriesSum(zTop, ParallelSum(zOut, zRes)))

	return Impedance{ZC: zC, ZRes: zRes, ZTop: zTop, ZBottom: zBottom, ZOut: zOut, ZTot: zTot}
}

// OutputPower computes the power dissipated in the resonant branch
// resistance from the current divider through the network.
func OutputPower(v, rint float64, p Params, cfg Config) float64 {
	z := MesaImpedance(v, rint, p, cfg)
	outer := ParallelSum(z.ZOut, z.ZRes)
	iExt := z.ZTot * complex(p.Ic, 0) / SeriesSum(z.ZTop, outer)
	iRes := outer * iExt / z.ZRes
	power := p.R * math.Pow(cmplx.Abs(iRes), 2) / 2
	return p.Ratio * power
}

// OutputPowers evaluates OutputPower element-wise over paired voltage and
// resistance arrays.
func OutputPowers(vs, rints []float64, p Params, cfg Config) []float64 {
	out := make([]float64, len(vs))
	for i := range vs {
		out[i] = OutputPower(vs[i], rints[i], p, cfg)
	}
	return out
}
