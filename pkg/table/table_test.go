package table

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func almostEqual(a, b, tol float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return math.Abs(a-b) <= tol
}

func TestDerivePowerResistance(t *testing.T) {
	tab := New(ColCurrent, ColReducedVoltage)
	tab.AppendRow([]float64{1, 0.1})
	tab.AppendRow([]float64{2, 0.2})

	if err := DerivePowerResistance(tab); err != nil {
		t.Fatalf("DerivePowerResistance: %v", err)
	}

	wantPower := []float64{1e-4, 4e-4}
	wantRes := []float64{100, 100}
	power := tab.Column(ColPower)
	res := tab.Column(ColResistance)
	for i := range wantPower {
		if !almostEqual(power[i], wantPower[i], 1e-12) {
			t.Errorf("Power[%d] = %g, want %g", i, power[i], wantPower[i])
		}
		if !almostEqual(res[i], wantRes[i], 1e-9) {
			t.Errorf("Resistance[%d] = %g, want %g", i, res[i], wantRes[i])
		}
	}
}

func TestDerivePowerResistanceMissingColumns(t *testing.T) {
	tab := New(ColReducedVoltage)
	tab.AppendRow([]float64{0.1})

	err := DerivePowerResistance(tab)
	var missing *MissingColumnsError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %v, want *MissingColumnsError", err)
	}
	if len(missing.Columns) != 1 || missing.Columns[0] != ColCurrent {
		t.Errorf("missing columns = %v, want [%s]", missing.Columns, ColCurrent)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	tab := New("a", "b")
	tab.AppendRow([]float64{1.5, -2.25e-7})
	tab.AppendRow([]float64{math.NaN(), 3})

	path := filepath.Join(t.TempDir(), "out.dat")
	if err := tab.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path, Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !got.Has("index") {
		t.Error("saved table lacks index column")
	}
	for _, name := range []string{"a", "b"} {
		want := tab.Column(name)
		have := got.Column(name)
		if len(have) != len(want) {
			t.Fatalf("column %q has %d rows, want %d", name, len(have), len(want))
		}
		for i := range want {
			if !almostEqual(have[i], want[i], 0) {
				t.Errorf("column %q row %d = %g, want %g", name, i, have[i], want[i])
			}
		}
	}
}

func TestLoadWhitespace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.txt")
	content := "time  V(nt)   V(na)\n0\t1.5  bad\n1e-6   2.5\t0.5\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	tab, err := Load(path, Options{Whitespace: true})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tab.Len() != 2 {
		t.Fatalf("rows = %d, want 2", tab.Len())
	}
	if got := tab.Column("V(nt)")[1]; got != 2.5 {
		t.Errorf("V(nt)[1] = %g, want 2.5", got)
	}
	if got := tab.Column("V(na)")[0]; !math.IsNaN(got) {
		t.Errorf("unparseable cell = %g, want NaN", got)
	}
}

func TestRename(t *testing.T) {
	tab := New("V(nd)", "I(R_rad)", "time")
	tab.Rename(SpiceAliases)
	names := tab.Names()
	want := []string{"V(nt)", "I(Rrad)", "time"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestDiff(t *testing.T) {
	tab := New("x")
	for _, v := range []float64{1, 3, 6} {
		tab.AppendRow([]float64{v})
	}
	if err := tab.Diff("x", "dx"); err != nil {
		t.Fatalf("Diff: %v", err)
	}
	dx := tab.Column("dx")
	if !math.IsNaN(dx[0]) {
		t.Errorf("dx[0] = %g, want NaN", dx[0])
	}
	if dx[1] != 2 || dx[2] != 3 {
		t.Errorf("dx[1:] = %v, want [2 3]", dx[1:])
	}
}

func TestResample(t *testing.T) {
	tab := New("time", "val")
	rows := [][]float64{
		{0, 1},
		{40e-6, 2},
		{60e-6, 3},
		{120e-6, 4},
	}
	for _, r := range rows {
		tab.AppendRow(r)
	}

	out, err := tab.Resample(100 * time.Microsecond)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	if out.Len() != 2 {
		t.Fatalf("bins = %d, want 2", out.Len())
	}
	times := out.Column("time")
	vals := out.Column("val")
	if !almostEqual(times[0], 0, 1e-12) || !almostEqual(times[1], 100e-6, 1e-12) {
		t.Errorf("bin times = %v, want [0 1e-4]", times)
	}
	if !almostEqual(vals[0], 2, 1e-12) {
		t.Errorf("bin 0 mean = %g, want 2", vals[0])
	}
	if !almostEqual(vals[1], 4, 1e-12) {
		t.Errorf("bin 1 mean = %g, want 4", vals[1])
	}
}

func TestResampleSkipsNaN(t *testing.T) {
	tab := New("time", "val")
	tab.AppendRow([]float64{0, 1})
	tab.AppendRow([]float64{10e-6, math.NaN()})
	tab.AppendRow([]float64{20e-6, 3})

	out, err := tab.Resample(100 * time.Microsecond)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	if out.Len() != 1 {
		t.Fatalf("bins = %d, want 1", out.Len())
	}
	if got := out.Column("val")[0]; !almostEqual(got, 2, 1e-12) {
		t.Errorf("mean = %g, want 2 (NaN skipped)", got)
	}
}

func TestDeriveRadPower(t *testing.T) {
	tab := New("I(Rrad)")
	tab.AppendRow([]float64{2})
	DeriveRadPower(tab, 8.537)
	if got := tab.Column("power")[0]; !almostEqual(got, 4*8.537, 1e-12) {
		t.Errorf("power = %g, want %g", got, 4*8.537)
	}

	// An existing power column is kept.
	DeriveRadPower(tab, 100)
	if got := tab.Column("power")[0]; !almostEqual(got, 4*8.537, 1e-12) {
		t.Errorf("power recomputed to %g, want unchanged", got)
	}
}

func TestPhaseDifference(t *testing.T) {
	tab := New("V(nphase1)", "V(nphase2)")
	tab.AppendRow([]float64{0, math.Pi})
	tab.AppendRow([]float64{math.Pi, 0.5})

	out, err := PhaseDifference(tab)
	if err != nil {
		t.Fatalf("PhaseDifference: %v", err)
	}
	if !almostEqual(out[0], math.Pi, 1e-12) {
		t.Errorf("out[0] = %g, want pi", out[0])
	}
	want := math.Mod(0.5-math.Pi, 2*math.Pi) + 2*math.Pi
	if !almostEqual(out[1], want, 1e-12) {
		t.Errorf("out[1] = %g, want %g (non-negative)", out[1], want)
	}
}
