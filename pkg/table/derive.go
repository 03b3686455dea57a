package table

import (
	"log/slog"
	"math"
)

// Column names shared by the measurement files.
const (
	ColCurrent        = "Current"
	ColReducedVoltage = "Reduced Voltage"
	ColPower          = "Power"
	ColResistance     = "Resistance"
	ColBolometer      = "Bolometer Output"
)

// SpiceAliases maps the probe names that vary between simulator runs to
// the canonical names used by the processing steps.
var SpiceAliases = map[string]string{
	"V(nd)":    "V(nt)",
	"V(n10)":   "V(nt)",
	"V(n0)":    "V(na)",
	"I(R_gnd)": "I(Rgnd)",
	"I(R_rad)": "I(Rrad)",
}

// DerivePowerResistance adds Power [W] and Resistance [Ω] from the
// measured Current [mA] and Reduced Voltage [V] columns.
func DerivePowerResistance(t *Table) error {
	if err := t.Require(ColReducedVoltage, ColCurrent); err != nil {
		slog.Error("missing columns for processing", "err", err)
		return err
	}
	v := t.Column(ColReducedVoltage)
	i := t.Column(ColCurrent)
	power := make([]float64, len(v))
	resistance := make([]float64, len(v))
	for r := range v {
		power[r] = v[r] * i[r] * 1e-3
		resistance[r] = v[r] / i[r] * 1e3
	}
	if err := t.SetColumn(ColPower, power); err != nil {
		return err
	}
	if err := t.SetColumn(ColResistance, resistance); err != nil {
		return err
	}
	slog.Info("derived columns", "columns", []string{ColPower, ColResistance})
	return nil
}

// DerivePhase adds the phase-difference columns dphase1/dphase2 and the
// instantaneous power column from the simulator probe outputs.
func DerivePhase(t *Table) error {
	if err := t.Require("time", "V(nphase1)", "V(nphase2)", "I(Rrad)"); err != nil {
		slog.Error("missing columns for processing", "err", err)
		return err
	}
	if err := t.Diff("V(nphase1)", "dphase1"); err != nil {
		return err
	}
	if err := t.Diff("V(nphase2)", "dphase2"); err != nil {
		return err
	}
	i := t.Column("I(Rrad)")
	power := make([]float64, len(i))
	for r := range i {
		power[r] = i[r] * i[r]
	}
	if err := t.SetColumn("power", power); err != nil {
		return err
	}
	slog.Info("derived columns", "columns", []string{"dphase1", "dphase2", "power"})
	return nil
}

// DeriveRadPower adds power = I(Rrad)²·rrad unless a power column already
// exists. A missing I(Rrad) column is logged and skipped, matching the
// original best-effort behavior.
func DeriveRadPower(t *Table, rrad float64) {
	switch {
	case t.Has("power"):
		slog.Info("power column already present, skipping calculation")
	case t.Has("I(Rrad)"):
		i := t.Column("I(Rrad)")
		power := make([]float64, len(i))
		for r := range i {
			power[r] = i[r] * i[r] * rrad
		}
		t.SetColumn("power", power)
		slog.Info("derived power from I(Rrad)", "rrad", rrad)
	default:
		slog.Warn("no I(Rrad) column, skipping power calculation")
	}
}

// PhaseDifference returns (V(nphase2) − V(nphase1)) mod 2π per row.
func PhaseDifference(t *Table) ([]float64, error) {
	if err := t.Require("V(nphase1)", "V(nphase2)"); err != nil {
		return nil, err
	}
	p1 := t.Column("V(nphase1)")
	p2 := t.Column("V(nphase2)")
	out := make([]float64, len(p1))
	for r := range p1 {
		out[r] = math.Mod(p2[r]-p1[r], 2*math.Pi)
		if out[r] < 0 {
			out[r] += 2 * math.Pi
		}
	}
	return out, nil
}
