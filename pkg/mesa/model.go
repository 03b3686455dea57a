// Package mesa models the thermal/electrical response of the junction
// mesa: phenomenological resistance curves and the implicit solvers that
// make them self-consistent.
package mesa

import (
	"math"

	"github.com/RK0429/JPE-circuit-model/pkg/params"
)

// Params holds the thermal-model parameters. A..D shape the internal
// resistance curve, alpha/beta/gamma the thermal resistance curve, and
// TBath is the ambient reference temperature.
type Params struct {
	A, B, C, D         float64
	Alpha, Beta, Gamma float64
	TBath              float64
}

// DefaultParams returns the published initial values for the mesa device.
func DefaultParams() Params {
	return Params{
		A:     140.26315944091203,
		B:     74.42877017162486,
		C:     2993.7109475835937,
		D:     14.966433685735403,
		Alpha: 0.0,
		Beta:  0.07007291353077101,
		Gamma: 7162.304320037531,
		TBath: -26.29469185418874,
	}
}

// Set maps the parameters into a bounded fit set. Alpha and beta are held
// fixed during fits.
func (p Params) Set() *params.Set {
	inf := math.Inf(1)
	return params.MustNewSet(
		params.Param{Name: "A", Value: p.A, Min: 0, Max: inf, Vary: true},
		params.Param{Name: "B", Value: p.B, Min: 0, Max: 500, Vary: true},
		params.Param{Name: "C", Value: p.C, Min: 0, Max: 10000, Vary: true},
		params.Param{Name: "D", Value: p.D, Min: 0, Max: inf, Vary: true},
		params.Param{Name: "alpha", Value: p.Alpha, Min: 0, Max: 1.2, Vary: false},
		params.Param{Name: "beta", Value: p.Beta, Min: 0.005, Max: 0.1, Vary: false},
		params.Param{Name: "gamma", Value: p.Gamma, Min: 0, Max: 8000, Vary: true},
		params.Param{Name: "T_bath", Value: p.TBath, Min: -50, Max: 40, Vary: true},
	)
}

// FromSet reads the parameter values back out of a fit set.
func FromSet(s *params.Set) Params {
	return Params{
		A:     s.Value("A"),
		B:     s.Value("B"),
		C:     s.Value("C"),
		D:     s.Value("D"),
		Alpha: s.Value("alpha"),
		Beta:  s.Value("beta"),
		Gamma: s.Value("gamma"),
		TBath: s.Value("T_bath"),
	}
}

// TToRint converts temperature to the internal junction resistance.
func TToRint(t float64, p Params) float64 {
	return p.A*(math.Exp(-t/p.B)+math.Exp(-t*t/p.C)) + p.D
}

// PToT converts applied power to temperature for a given thermal
// resistance.
func PToT(power, rth, tBath float64) float64 {
	return rth*power + tBath
}

// TToRth converts temperature to thermal resistance.
func TToRth(t float64, p Params) float64 {
	return p.Gamma / (1 - p.Alpha*math.Exp(-p.Beta*t))
}
