package asc

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleASC = `Version 4
SHEET 1 880 680
WIRE 128 80 48 80
SYMBOL 1stack 48 80 R0
WINDOW 0 36 40 Left 2
SYMATTR InstName X1
SYMATTR SpiceLine L=175n R=8.29
SYMBOL 1stack 48 256 R0
SYMATTR InstName X2
SYMATTR SpiceLine L=175n R=8.29
SYMBOL res 240 64 R0
SYMATTR InstName R1
SYMATTR Value 50
TEXT -48 400 Left 2 !.tran 1u
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jpe.asc")
	if err := os.WriteFile(path, []byte(sampleASC), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadComponents(t *testing.T) {
	sch, err := Load(writeSample(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	refs := sch.Components()
	want := []string{"X1", "X2", "R1"}
	if len(refs) != len(want) {
		t.Fatalf("refs = %v, want %v", refs, want)
	}
	for i := range want {
		if refs[i] != want[i] {
			t.Errorf("refs[%d] = %q, want %q", i, refs[i], want[i])
		}
	}

	c, err := sch.Component("X2")
	if err != nil {
		t.Fatalf("Component: %v", err)
	}
	if c.Symbol != "1stack" || c.Position.Y != 256 {
		t.Errorf("X2 = %+v, want 1stack at Y=256", c)
	}
	if got := c.Attribute("SpiceLine"); got != "L=175n R=8.29" {
		t.Errorf("SpiceLine = %q", got)
	}
}

func TestSetParametersMerges(t *testing.T) {
	sch, err := Load(writeSample(t))
	if err != nil {
		t.Fatal(err)
	}
	if err := sch.SetParameters("X1", map[string]string{"L": "200n", "C": "100n"}); err != nil {
		t.Fatalf("SetParameters: %v", err)
	}
	c, _ := sch.Component("X1")
	if got := c.Attribute("SpiceLine"); got != "L=200n R=8.29 C=100n" {
		t.Errorf("SpiceLine = %q, want existing keys updated in place and new keys appended", got)
	}
	params := c.Parameters()
	if params["L"] != "200n" || params["R"] != "8.29" || params["C"] != "100n" {
		t.Errorf("Parameters = %v", params)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	in := writeSample(t)
	sch, err := Load(in)
	if err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "out.asc")
	if err := sch.Save(out); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != sampleASC {
		t.Errorf("round trip changed content:\n%s", data)
	}
}

func TestAddDirectives(t *testing.T) {
	sch, err := Load(writeSample(t))
	if err != nil {
		t.Fatal(err)
	}
	sch.AddDirectives(".tran 5u", "; sweep settings")
	out := filepath.Join(t.TempDir(), "out.asc")
	if err := sch.Save(out); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(out)
	if !strings.Contains(string(data), "TEXT 0 0 Left 2 !.tran 5u") {
		t.Error("directive line missing")
	}
	if !strings.Contains(string(data), "TEXT 0 0 Left 2 ;sweep settings") {
		t.Error("comment line missing")
	}
}

func TestAdjustStacksGrow(t *testing.T) {
	sch, err := Load(writeSample(t))
	if err != nil {
		t.Fatal(err)
	}
	paramsList := []map[string]string{{"L": "150n"}, {}, {"R": "9.0"}}
	if err := AdjustStacks(sch, "1stack", 4, paramsList); err != nil {
		t.Fatalf("AdjustStacks: %v", err)
	}
	refs := stackRefs(sch, "1stack")
	if len(refs) != 4 {
		t.Fatalf("stacks = %v, want 4", refs)
	}
	x3, err := sch.Component("X3")
	if err != nil {
		t.Fatalf("clone X3 missing: %v", err)
	}
	// Spacing measured from the first two instances: 256-80 = 176.
	if x3.Position.Y != 80+2*176 {
		t.Errorf("X3 Y = %d, want %d", x3.Position.Y, 80+2*176)
	}
	x4, _ := sch.Component("X4")
	if x4.Position.Y != 80+3*176 {
		t.Errorf("X4 Y = %d, want %d", x4.Position.Y, 80+3*176)
	}
	x1, _ := sch.Component("X1")
	if got := x1.Parameters()["L"]; got != "150n" {
		t.Errorf("X1 L = %q, want 150n", got)
	}
	if got := x3.Parameters()["R"]; got != "9.0" {
		t.Errorf("X3 R = %q, want 9.0", got)
	}
}

func TestAdjustStacksShrink(t *testing.T) {
	sch, err := Load(writeSample(t))
	if err != nil {
		t.Fatal(err)
	}
	if err := AdjustStacks(sch, "1stack", 1, nil); err != nil {
		t.Fatalf("AdjustStacks: %v", err)
	}
	refs := stackRefs(sch, "1stack")
	if len(refs) != 1 || refs[0] != "X1" {
		t.Errorf("stacks = %v, want [X1]", refs)
	}
	// Unrelated components survive.
	if _, err := sch.Component("R1"); err != nil {
		t.Errorf("R1 removed: %v", err)
	}
}

func TestAdjustStacksNoTemplate(t *testing.T) {
	sch, err := Load(writeSample(t))
	if err != nil {
		t.Fatal(err)
	}
	if err := AdjustStacks(sch, "2stack", 3, nil); err == nil {
		t.Error("AdjustStacks accepted a symbol with no instances")
	}
}

func TestParseParams(t *testing.T) {
	got, err := ParseParams([]string{"L=175n,R=8.29", "", "C=100n"})
	if err != nil {
		t.Fatalf("ParseParams: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0]["L"] != "175n" || got[0]["R"] != "8.29" {
		t.Errorf("first set = %v", got[0])
	}
	if len(got[1]) != 0 {
		t.Errorf("empty spec = %v, want empty map", got[1])
	}
	if _, err := ParseParams([]string{"L175n"}); err == nil {
		t.Error("ParseParams accepted a pair without =")
	}
}

func TestParseValue(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"1k", 1e3},
		{"175n", 1.75e-7},
		{"8.29", 8.29},
		{"2meg", 2e6},
		{"-3.3m", -3.3e-3},
		{"1e-6", 1e-6},
		{"100pF", 1e-10},
	}
	for _, c := range cases {
		got, err := ParseValue(c.in)
		if err != nil {
			t.Errorf("ParseValue(%q): %v", c.in, err)
			continue
		}
		if math.Abs(got-c.want) > math.Abs(c.want)*1e-12 {
			t.Errorf("ParseValue(%q) = %g, want %g", c.in, got, c.want)
		}
	}
	if _, err := ParseValue("abc"); err == nil {
		t.Error("ParseValue accepted a non-numeric string")
	}
}

func TestRunnerMissingOutputs(t *testing.T) {
	dir := t.TempDir()
	ascPath := filepath.Join(dir, "sim.asc")
	if err := os.WriteFile(ascPath, []byte(sampleASC), 0o644); err != nil {
		t.Fatal(err)
	}
	r := &Runner{Command: "true"}
	if _, _, err := r.Run(context.Background(), ascPath); err == nil {
		t.Error("Run succeeded without simulator output files")
	}
}
