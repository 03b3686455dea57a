// Package consts holds the physical constants shared by the mesa and
// antenna models.
package consts

import "math"

const (
	Planck   = 6.62607015e-34       // Planck constant (J s)
	HBar     = Planck / (2 * math.Pi) // Reduced Planck constant
	Mu0      = 1.25663706212e-6     // Vacuum permeability (H/m)
	Epsilon0 = 8.8541878128e-12     // Vacuum permittivity (F/m)
	Charge   = 1.60217663e-19       // Elementary charge (C)
	Sb       = 1.75e5               // Bolometer responsivity used for scaling
)
