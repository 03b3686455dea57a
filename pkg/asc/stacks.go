package asc

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
)

// defaultSpacing is the vertical distance between cloned stack instances
// when the schematic has fewer than two to measure from.
const defaultSpacing = 176

// stackRefs returns the references of all instances of the given symbol,
// sorted by their numeric suffix (X1, X2, ...).
func stackRefs(sch *Schematic, symbol string) []string {
	var refs []string
	for _, ref := range sch.Components() {
		c, err := sch.Component(ref)
		if err != nil {
			continue
		}
		if c.Symbol == symbol {
			refs = append(refs, ref)
		}
	}
	sort.Slice(refs, func(i, j int) bool {
		return refNumber(refs[i]) < refNumber(refs[j])
	})
	return refs
}

func refNumber(ref string) int {
	i := strings.IndexFunc(ref, func(r rune) bool { return r >= '0' && r <= '9' })
	if i < 0 {
		return 0
	}
	n, err := strconv.Atoi(ref[i:])
	if err != nil {
		return 0
	}
	return n
}

// AdjustStacks grows or shrinks the number of instances of symbol to n,
// cloning the lowest-numbered instance as a template for new ones and
// stacking clones vertically below it. Parameter maps in paramsList are
// applied to the surviving instances in reference order.
func AdjustStacks(sch *Schematic, symbol string, n int, paramsList []map[string]string) error {
	if n < 1 {
		return fmt.Errorf("stack count must be at least 1, got %d", n)
	}
	refs := stackRefs(sch, symbol)
	if len(refs) == 0 {
		return fmt.Errorf("no instances of symbol %q to clone", symbol)
	}

	spacing := defaultSpacing
	if len(refs) >= 2 {
		first, _ := sch.Component(refs[0])
		second, _ := sch.Component(refs[1])
		if dy := second.Position.Y - first.Position.Y; dy != 0 {
			spacing = dy
		}
	}

	for _, ref := range refs[min(n, len(refs)):] {
		if err := sch.RemoveComponent(ref); err != nil {
			return err
		}
		slog.Debug("removed stack instance", "ref", ref)
	}

	template, err := sch.Component(refs[0])
	if err != nil {
		return err
	}
	base := refNumber(refs[0])
	for i := len(refs); i < n; i++ {
		c := template.Clone()
		c.SetReference(fmt.Sprintf("X%d", base+i))
		c.Position.Y = template.Position.Y + i*spacing
		sch.AddComponent(c)
		slog.Debug("added stack instance", "ref", c.Reference(), "y", c.Position.Y)
	}

	refs = stackRefs(sch, symbol)
	for i, params := range paramsList {
		if i >= len(refs) {
			slog.Warn("more parameter sets than stack instances", "sets", len(paramsList), "instances", len(refs))
			break
		}
		if len(params) == 0 {
			continue
		}
		if err := sch.SetParameters(refs[i], params); err != nil {
			return err
		}
	}
	slog.Info("stacks adjusted", "symbol", symbol, "count", n)
	return nil
}

// ParseParams converts comma-separated key=value strings, one per stack
// instance, into parameter maps. Empty strings yield empty maps so
// positional alignment with instances is preserved.
func ParseParams(specs []string) ([]map[string]string, error) {
	out := make([]map[string]string, len(specs))
	for i, spec := range specs {
		out[i] = make(map[string]string)
		if strings.TrimSpace(spec) == "" {
			continue
		}
		for _, field := range strings.Split(spec, ",") {
			field = strings.TrimSpace(field)
			k, v, ok := strings.Cut(field, "=")
			if !ok || k == "" {
				return nil, fmt.Errorf("malformed parameter %q, want key=value", field)
			}
			out[i][k] = v
		}
	}
	return out, nil
}
