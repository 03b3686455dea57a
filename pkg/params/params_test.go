package params

import (
	"math"
	"testing"
)

func TestNewSetValidation(t *testing.T) {
	inf := math.Inf(1)
	cases := []struct {
		name string
		list []Param
	}{
		{"empty name", []Param{{Name: "", Value: 1}}},
		{"duplicate", []Param{Free("a", 1), Free("a", 2)}},
		{"nan value", []Param{{Name: "a", Value: math.NaN(), Max: inf, Min: -inf}}},
		{"min above max", []Param{{Name: "a", Value: 1, Min: 2, Max: 0}}},
		{"value below min", []Param{{Name: "a", Value: -1, Min: 0, Max: inf}}},
		{"value above max", []Param{{Name: "a", Value: 11, Min: 0, Max: 10}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := NewSet(c.list...); err == nil {
				t.Error("NewSet accepted invalid parameters")
			}
		})
	}
}

func TestInternalRoundTrip(t *testing.T) {
	inf := math.Inf(1)
	s := MustNewSet(
		Param{Name: "both", Value: 3, Min: 0, Max: 10, Vary: true},
		Param{Name: "min", Value: 5, Min: 1, Max: inf, Vary: true},
		Param{Name: "max", Value: -2, Min: -inf, Max: 0, Vary: true},
		Free("free", 7),
		Fixed("fixed", 42),
	)

	x := s.Internal()
	if len(x) != 4 {
		t.Fatalf("internal dim = %d, want 4", len(x))
	}
	out := s.Clone()
	out.SetInternal(x)
	for _, name := range s.Names() {
		want := s.Value(name)
		got := out.Value(name)
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("%s: round trip %g, want %g", name, got, want)
		}
	}
}

func TestSetInternalStaysBounded(t *testing.T) {
	s := MustNewSet(Param{Name: "a", Value: 3, Min: 0, Max: 10, Vary: true})
	for _, x := range []float64{-100, -1, 0, 1, 100} {
		s.SetInternal([]float64{x})
		v := s.Value("a")
		if v < 0 || v > 10 {
			t.Errorf("internal %g maps to %g, outside [0, 10]", x, v)
		}
	}
}

func TestFixedExcludedFromInternal(t *testing.T) {
	s := MustNewSet(Free("a", 1), Fixed("b", 2))
	if s.NumVary() != 1 {
		t.Fatalf("NumVary = %d, want 1", s.NumVary())
	}
	s.SetInternal([]float64{9})
	if s.Value("a") != 9 {
		t.Errorf("a = %g, want 9", s.Value("a"))
	}
	if s.Value("b") != 2 {
		t.Errorf("b = %g, want 2 (fixed)", s.Value("b"))
	}
}

func TestExternalGradientSigns(t *testing.T) {
	s := MustNewSet(
		Param{Name: "both", Value: 3, Min: 0, Max: 10, Vary: true},
		Free("free", 7),
	)
	grad := s.ExternalGradient(s.Internal())
	if len(grad) != 2 {
		t.Fatalf("gradient dim = %d, want 2", len(grad))
	}
	if grad[1] != 1 {
		t.Errorf("free gradient = %g, want 1", grad[1])
	}
	// Finite-difference check for the bounded transform.
	x := s.Internal()[0]
	h := 1e-6
	num := (toExternal(x+h, 0, 10) - toExternal(x-h, 0, 10)) / (2 * h)
	if math.Abs(grad[0]-num) > 1e-6 {
		t.Errorf("bounded gradient = %g, finite difference %g", grad[0], num)
	}
}
