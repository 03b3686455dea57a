// Package table provides the in-memory tabular structure used by the
// analysis tools: named float64 columns loaded from delimited text files,
// derived-column helpers, and time resampling.
package table

import (
	"bufio"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// MissingColumnsError reports the set of required columns absent from a
// table. It is always fatal to the calling tool.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing columns: %s", strings.Join(e.Columns, ", "))
}

// Table is an ordered set of equally sized float64 columns. Cells that
// could not be parsed are NaN.
type Table struct {
	names []string
	cols  [][]float64
}

// New returns an empty table with the given column names.
func New(names ...string) *Table {
	t := &Table{names: append([]string(nil), names...)}
	t.cols = make([][]float64, len(t.names))
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if len(t.cols) == 0 {
		return 0
	}
	return len(t.cols[0])
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	return append([]string(nil), t.names...)
}

// Has reports whether a column exists.
func (t *Table) Has(name string) bool {
	return t.index(name) >= 0
}

func (t *Table) index(name string) int {
	for i, n := range t.names {
		if n == name {
			return i
		}
	}
	return -1
}

// Column returns the backing slice of a column, or nil if absent.
func (t *Table) Column(name string) []float64 {
	i := t.index(name)
	if i < 0 {
		return nil
	}
	return t.cols[i]
}

// SetColumn replaces a column or appends a new one. The length must match
// the existing rows unless the table is empty.
func (t *Table) SetColumn(name string, vals []float64) error {
	if len(t.names) > 0 && t.Len() != 0 && len(vals) != t.Len() {
		return fmt.Errorf("column %q length %d does not match table length %d", name, len(vals), t.Len())
	}
	if i := t.index(name); i >= 0 {
		t.cols[i] = vals
		return nil
	}
	t.names = append(t.names, name)
	t.cols = append(t.cols, vals)
	return nil
}

// Require returns a MissingColumnsError naming every column in names that
// the table lacks, or nil when all are present.
func (t *Table) Require(names ...string) error {
	var missing []string
	for _, n := range names {
		if !t.Has(n) {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &MissingColumnsError{Columns: missing}
	}
	return nil
}

// Rename applies a name mapping to the columns. Names not in the mapping
// are left alone.
func (t *Table) Rename(mapping map[string]string) {
	for i, n := range t.names {
		if to, ok := mapping[n]; ok {
			t.names[i] = to
		}
	}
}

// Copy returns a deep copy of the table.
func (t *Table) Copy() *Table {
	out := &Table{names: append([]string(nil), t.names...)}
	out.cols = make([][]float64, len(t.cols))
	for i, c := range t.cols {
		out.cols[i] = append([]float64(nil), c...)
	}
	return out
}

// AppendRow adds one row; vals must be in column order.
func (t *Table) AppendRow(vals []float64) error {
	if len(vals) != len(t.names) {
		return fmt.Errorf("row has %d values, table has %d columns", len(vals), len(t.names))
	}
	for i, v := range vals {
		t.cols[i] = append(t.cols[i], v)
	}
	return nil
}

// Options controls parsing of delimited text tables.
type Options struct {
	// Whitespace splits fields on any run of whitespace instead of tabs.
	Whitespace bool
}

// Load reads a delimited text table with a header row naming the columns.
// The default delimiter is a tab; Options.Whitespace switches to
// any-whitespace splitting (for simulator output files).
func Load(path string, opts Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		slog.Error("failed to load data", "path", path, "err", err)
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	defer f.Close()

	split := func(s string) []string {
		if opts.Whitespace {
			return strings.Fields(s)
		}
		return strings.Split(s, "\t")
	}

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		return nil, fmt.Errorf("load %s: empty file", path)
	}
	header := split(strings.TrimRight(sc.Text(), "\r\n"))
	t := New(header...)

	row := make([]float64, len(header))
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := split(line)
		for i := range row {
			if i < len(fields) {
				v, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
				if err != nil {
					v = math.NaN()
				}
				row[i] = v
			} else {
				row[i] = math.NaN()
			}
		}
		if err := t.AppendRow(row); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	if err := sc.Err(); err != nil {
		slog.Error("failed to load data", "path", path, "err", err)
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	slog.Info("data loaded", "path", path, "rows", t.Len(), "columns", t.names)
	return t, nil
}

// Save writes the table tab-delimited with a leading index column, so a
// saved table loads back through Load with identical numeric values.
func (t *Table) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		slog.Error("failed to save data", "path", path, "err", err)
		return fmt.Errorf("save %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "index\t%s\n", strings.Join(t.names, "\t"))
	for r := 0; r < t.Len(); r++ {
		fmt.Fprintf(w, "%d", r)
		for c := range t.cols {
			w.WriteByte('\t')
			w.WriteString(strconv.FormatFloat(t.cols[c][r], 'g', -1, 64))
		}
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		slog.Error("failed to save data", "path", path, "err", err)
		return fmt.Errorf("save %s: %w", path, err)
	}
	slog.Info("data saved", "path", path, "rows", t.Len())
	return nil
}

// Diff stores the first differences of column src in column dst. The
// first row is NaN.
func (t *Table) Diff(src, dst string) error {
	if err := t.Require(src); err != nil {
		return err
	}
	in := t.Column(src)
	out := make([]float64, len(in))
	if len(out) > 0 {
		out[0] = math.NaN()
	}
	for i := 1; i < len(in); i++ {
		out[i] = in[i] - in[i-1]
	}
	return t.SetColumn(dst, out)
}

// Resample interprets the "time" column as seconds, bins the rows into
// fixed intervals, and means every column per bin, skipping NaNs the way
// the original resampler did. Empty bins are dropped and "time" becomes
// the bin start.
func (t *Table) Resample(interval time.Duration) (*Table, error) {
	if err := t.Require("time"); err != nil {
		return nil, err
	}
	if interval <= 0 {
		return nil, fmt.Errorf("resample: interval must be positive, got %v", interval)
	}
	times := t.Column("time")
	if len(times) == 0 {
		return t.Copy(), nil
	}

	dt := interval.Seconds()
	t0 := times[0]
	type bin struct {
		sums   []float64
		counts []int
	}
	bins := make(map[int64]*bin)
	var order []int64
	for r, tv := range times {
		if math.IsNaN(tv) {
			continue
		}
		k := int64(math.Floor((tv - t0) / dt))
		b, ok := bins[k]
		if !ok {
			b = &bin{sums: make([]float64, len(t.cols)), counts: make([]int, len(t.cols))}
			bins[k] = b
			order = append(order, k)
		}
		for c := range t.cols {
			v := t.cols[c][r]
			if math.IsNaN(v) {
				continue
			}
			b.sums[c] += v
			b.counts[c]++
		}
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	out := New(t.names...)
	ti := t.index("time")
	row := make([]float64, len(t.cols))
	for _, k := range order {
		b := bins[k]
		for c := range row {
			if b.counts[c] == 0 {
				row[c] = math.NaN()
				continue
			}
			row[c] = b.sums[c] / float64(b.counts[c])
		}
		row[ti] = t0 + float64(k)*dt
		if err := out.AppendRow(row); err != nil {
			return nil, err
		}
	}
	slog.Info("resampled data", "interval", interval, "bins", out.Len())
	return out, nil
}
