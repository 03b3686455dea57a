// Package params defines named model parameters with bounds and vary
// flags, and the transforms that let an unbounded optimizer respect the
// bounds.
package params

import (
	"fmt"
	"math"
)

// Param is one named model parameter. Min and Max may be ±Inf for a
// one-sided or absent bound. Only parameters with Vary set are adjusted
// during a fit.
type Param struct {
	Name  string
	Value float64
	Min   float64
	Max   float64
	Vary  bool
}

// Free returns an unbounded varying parameter.
func Free(name string, value float64) Param {
	return Param{Name: name, Value: value, Min: math.Inf(-1), Max: math.Inf(1), Vary: true}
}

// Fixed returns a parameter held constant during fits.
func Fixed(name string, value float64) Param {
	return Param{Name: name, Value: value, Min: math.Inf(-1), Max: math.Inf(1), Vary: false}
}

// Set is an ordered collection of parameters, validated once at
// construction.
type Set struct {
	list  []Param
	index map[string]int
}

// NewSet validates the parameters and returns a Set. The initial value of
// every parameter must lie within its bounds.
func NewSet(list ...Param) (*Set, error) {
	s := &Set{index: make(map[string]int, len(list))}
	for _, p := range list {
		if p.Name == "" {
			return nil, fmt.Errorf("parameter with empty name")
		}
		if _, dup := s.index[p.Name]; dup {
			return nil, fmt.Errorf("duplicate parameter %q", p.Name)
		}
		if math.IsNaN(p.Value) {
			return nil, fmt.Errorf("parameter %q: value is NaN", p.Name)
		}
		if p.Min > p.Max {
			return nil, fmt.Errorf("parameter %q: min %g exceeds max %g", p.Name, p.Min, p.Max)
		}
		if p.Value < p.Min || p.Value > p.Max {
			return nil, fmt.Errorf("parameter %q: value %g outside bounds [%g, %g]", p.Name, p.Value, p.Min, p.Max)
		}
		s.index[p.Name] = len(s.list)
		s.list = append(s.list, p)
	}
	return s, nil
}

// MustNewSet is NewSet for statically known parameter lists.
func MustNewSet(list ...Param) *Set {
	s, err := NewSet(list...)
	if err != nil {
		panic(err)
	}
	return s
}

// Names returns the parameter names in order.
func (s *Set) Names() []string {
	names := make([]string, len(s.list))
	for i, p := range s.list {
		names[i] = p.Name
	}
	return names
}

// Get returns a pointer to the named parameter, or nil.
func (s *Set) Get(name string) *Param {
	i, ok := s.index[name]
	if !ok {
		return nil
	}
	return &s.list[i]
}

// Value returns the current value of the named parameter. Unknown names
// return NaN.
func (s *Set) Value(name string) float64 {
	p := s.Get(name)
	if p == nil {
		return math.NaN()
	}
	return p.Value
}

// Clone returns a deep copy of the set.
func (s *Set) Clone() *Set {
	out := &Set{list: append([]Param(nil), s.list...), index: make(map[string]int, len(s.index))}
	for k, v := range s.index {
		out.index[k] = v
	}
	return out
}

// NumVary returns the number of varying parameters.
func (s *Set) NumVary() int {
	n := 0
	for _, p := range s.list {
		if p.Vary {
			n++
		}
	}
	return n
}

// Internal maps the varying parameters into the optimizer's unbounded
// space.
func (s *Set) Internal() []float64 {
	var x []float64
	for _, p := range s.list {
		if p.Vary {
			x = append(x, toInternal(p.Value, p.Min, p.Max))
		}
	}
	return x
}

// SetInternal writes an internal-space vector back into the varying
// parameters as bounded external values.
func (s *Set) SetInternal(x []float64) {
	i := 0
	for j := range s.list {
		p := &s.list[j]
		if !p.Vary {
			continue
		}
		p.Value = toExternal(x[i], p.Min, p.Max)
		i++
	}
}

// ExternalGradient returns d(value)/d(internal) for each varying
// parameter at the given internal vector, used to propagate standard
// errors back into bounded space.
func (s *Set) ExternalGradient(x []float64) []float64 {
	grad := make([]float64, 0, len(x))
	i := 0
	for _, p := range s.list {
		if !p.Vary {
			continue
		}
		grad = append(grad, externalDerivative(x[i], p.Min, p.Max))
		i++
	}
	return grad
}

// The Minuit-style bound transforms used by lmfit: a doubly bounded value
// maps through arcsin, a one-sided bound through a hyperbola, and an
// unbounded value is the identity.
func toInternal(v, min, max float64) float64 {
	lo := !math.IsInf(min, -1)
	hi := !math.IsInf(max, 1)
	switch {
	case lo && hi:
		arg := 2*(v-min)/(max-min) - 1
		return math.Asin(math.Max(-1, math.Min(1, arg)))
	case lo:
		d := v - min + 1
		return math.Sqrt(d*d - 1)
	case hi:
		d := max - v + 1
		return math.Sqrt(d*d - 1)
	default:
		return v
	}
}

func toExternal(x, min, max float64) float64 {
	lo := !math.IsInf(min, -1)
	hi := !math.IsInf(max, 1)
	switch {
	case lo && hi:
		return min + (math.Sin(x)+1)*(max-min)/2
	case lo:
		return min - 1 + math.Sqrt(x*x+1)
	case hi:
		return max + 1 - math.Sqrt(x*x+1)
	default:
		return x
	}
}

func externalDerivative(x, min, max float64) float64 {
	lo := !math.IsInf(min, -1)
	hi := !math.IsInf(max, 1)
	switch {
	case lo && hi:
		return math.Cos(x) * (max - min) / 2
	case lo:
		return x / math.Sqrt(x*x+1)
	case hi:
		return -x / math.Sqrt(x*x+1)
	default:
		return 1
	}
}
