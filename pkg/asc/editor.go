// Package asc edits LTspice .asc schematic files: enumerating, adding and
// removing symbol instances, setting instance parameters, and driving an
// external simulator on the result.
package asc

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Point is a schematic coordinate.
type Point struct {
	X, Y int
}

type attrLine struct {
	window bool
	key    string // SYMATTR key; raw text for WINDOW lines
	value  string
}

// Component is one SYMBOL instance with its attribute lines.
type Component struct {
	Symbol   string
	Position Point
	Rotation string
	attrs    []attrLine
}

// Reference returns the instance name (SYMATTR InstName).
func (c *Component) Reference() string {
	return c.Attribute("InstName")
}

// SetReference renames the instance.
func (c *Component) SetReference(ref string) {
	c.SetAttribute("InstName", ref)
}

// Attribute returns the value of a SYMATTR entry, or "".
func (c *Component) Attribute(name string) string {
	for _, a := range c.attrs {
		if !a.window && a.key == name {
			return a.value
		}
	}
	return ""
}

// SetAttribute updates or appends a SYMATTR entry.
func (c *Component) SetAttribute(name, value string) {
	for i, a := range c.attrs {
		if !a.window && a.key == name {
			c.attrs[i].value = value
			return
		}
	}
	c.attrs = append(c.attrs, attrLine{key: name, value: value})
}

// Parameters parses the SpiceLine attribute into key=value pairs.
func (c *Component) Parameters() map[string]string {
	out := make(map[string]string)
	for _, field := range strings.Fields(c.Attribute("SpiceLine")) {
		if k, v, ok := strings.Cut(field, "="); ok {
			out[k] = v
		}
	}
	return out
}

// SetParameters merges key=value pairs into the SpiceLine attribute,
// keeping the order of existing keys and appending new ones in the order
// given.
func (c *Component) SetParameters(params map[string]string, order []string) {
	fields := strings.Fields(c.Attribute("SpiceLine"))
	seen := make(map[string]bool)
	for i, field := range fields {
		k, _, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		if v, update := params[k]; update {
			fields[i] = k + "=" + v
			seen[k] = true
		}
	}
	for _, k := range order {
		if !seen[k] {
			fields = append(fields, k+"="+params[k])
		}
	}
	c.SetAttribute("SpiceLine", strings.Join(fields, " "))
}

// Clone returns a deep copy of the component.
func (c *Component) Clone() *Component {
	out := *c
	out.attrs = append([]attrLine(nil), c.attrs...)
	return &out
}

func (c *Component) write(w *bufio.Writer) {
	fmt.Fprintf(w, "SYMBOL %s %d %d %s\n", c.Symbol, c.Position.X, c.Position.Y, c.Rotation)
	for _, a := range c.attrs {
		if a.window {
			fmt.Fprintf(w, "WINDOW %s\n", a.key)
			continue
		}
		fmt.Fprintf(w, "SYMATTR %s %s\n", a.key, a.value)
	}
}

type item struct {
	raw  string
	comp *Component
}

// Schematic is a parsed .asc file. Lines that are not symbol instances
// are preserved verbatim in their original order.
type Schematic struct {
	items []item
}

// Load parses an .asc schematic.
func Load(path string) (*Schematic, error) {
	f, err := os.Open(path)
	if err != nil {
		slog.Error("failed to load schematic", "path", path, "err", err)
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	defer f.Close()

	sch := &Schematic{}
	var cur *Component
	flush := func() {
		if cur != nil {
			sch.items = append(sch.items, item{comp: cur})
			cur = nil
		}
	}

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r\n")
		switch {
		case strings.HasPrefix(line, "SYMBOL "):
			flush()
			comp, err := parseSymbol(line)
			if err != nil {
				return nil, fmt.Errorf("load %s: %w", path, err)
			}
			cur = comp
		case cur != nil && strings.HasPrefix(line, "SYMATTR "):
			rest := strings.TrimPrefix(line, "SYMATTR ")
			key, value, _ := strings.Cut(rest, " ")
			cur.attrs = append(cur.attrs, attrLine{key: key, value: value})
		case cur != nil && strings.HasPrefix(line, "WINDOW "):
			cur.attrs = append(cur.attrs, attrLine{window: true, key: strings.TrimPrefix(line, "WINDOW ")})
		default:
			flush()
			sch.items = append(sch.items, item{raw: line})
		}
	}
	flush()
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	slog.Info("schematic loaded", "path", path, "components", len(sch.Components()))
	return sch, nil
}

func parseSymbol(line string) (*Component, error) {
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return nil, fmt.Errorf("malformed symbol line: %s", line)
	}
	x, err := strconv.Atoi(fields[2])
	if err != nil {
		return nil, fmt.Errorf("symbol %s: bad x position: %w", fields[1], err)
	}
	y, err := strconv.Atoi(fields[3])
	if err != nil {
		return nil, fmt.Errorf("symbol %s: bad y position: %w", fields[1], err)
	}
	return &Component{
		Symbol:   fields[1],
		Position: Point{X: x, Y: y},
		Rotation: fields[4],
	}, nil
}

// Components returns the instance references in file order.
func (s *Schematic) Components() []string {
	var refs []string
	for _, it := range s.items {
		if it.comp != nil {
			refs = append(refs, it.comp.Reference())
		}
	}
	return refs
}

// Component returns the instance with the given reference.
func (s *Schematic) Component(ref string) (*Component, error) {
	for _, it := range s.items {
		if it.comp != nil && it.comp.Reference() == ref {
			return it.comp, nil
		}
	}
	return nil, fmt.Errorf("component %q not found", ref)
}

// AddComponent appends an instance to the schematic.
func (s *Schematic) AddComponent(c *Component) {
	s.items = append(s.items, item{comp: c})
}

// RemoveComponent deletes the instance with the given reference.
func (s *Schematic) RemoveComponent(ref string) error {
	for i, it := range s.items {
		if it.comp != nil && it.comp.Reference() == ref {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("component %q not found", ref)
}

// SetParameters merges SpiceLine parameters into the named instance. The
// keys are applied in sorted order when appended.
func (s *Schematic) SetParameters(ref string, params map[string]string) error {
	c, err := s.Component(ref)
	if err != nil {
		return err
	}
	c.SetParameters(params, sortedKeys(params))
	return nil
}

// AddDirectives appends simulation directives as schematic text. Lines
// starting with ";" stay comments; everything else becomes a dot
// directive.
func (s *Schematic) AddDirectives(lines ...string) {
	for _, line := range lines {
		prefix := "!"
		if strings.HasPrefix(line, ";") {
			prefix = ";"
			line = strings.TrimPrefix(line, ";")
			line = strings.TrimSpace(line)
		}
		s.items = append(s.items, item{raw: fmt.Sprintf("TEXT 0 0 Left 2 %s%s", prefix, line)})
	}
}

// Save writes the schematic back out.
func (s *Schematic) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		slog.Error("failed to save schematic", "path", path, "err", err)
		return fmt.Errorf("save %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, it := range s.items {
		if it.comp != nil {
			it.comp.write(w)
			continue
		}
		w.WriteString(it.raw)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	slog.Info("schematic saved", "path", path)
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}
