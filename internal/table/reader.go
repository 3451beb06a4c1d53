package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// CommentMarker starts a comment line. A leading comment of the form
// "# columns: a, b, c" declares the header.
const (
	CommentMarker   = "#"
	columnsDeclared = "columns:"
)

// #region table
// Table is a row-validated, columnar view of one source.
type Table struct {
	Source string
	Schema Schema

	n      int
	floats map[string][]float64
	texts  map[string][]string
	ints   map[string][]int

	// Violations holds row-level problems. The offending rows are excluded.
	Violations []*SchemaViolation
}

// Unusable returns an empty table that carries a table-level violation, such
// as a missing required column, so callers can keep going without its rows.
func Unusable(v *SchemaViolation) *Table {
	return &Table{Source: v.Source, Violations: []*SchemaViolation{v}}
}

// Len returns the number of valid rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return t.n
}

// Has reports whether the column was present in the source.
func (t *Table) Has(col string) bool {
	if t == nil {
		return false
	}
	if _, ok := t.floats[col]; ok {
		return true
	}
	if _, ok := t.texts[col]; ok {
		return true
	}
	_, ok := t.ints[col]
	return ok
}

// Floats returns a float column, or nil when absent.
func (t *Table) Floats(col string) []float64 {
	if t == nil {
		return nil
	}
	return t.floats[col]
}

// Texts returns a text column, or nil when absent.
func (t *Table) Texts(col string) []string {
	if t == nil {
		return nil
	}
	return t.texts[col]
}

// Ints returns an integer column, or nil when absent.
func (t *Table) Ints(col string) []int {
	if t == nil {
		return nil
	}
	return t.ints[col]
}

// Err joins all row violations, or returns nil.
func (t *Table) Err() error {
	if t == nil || len(t.Violations) == 0 {
		return nil
	}
	errs := make([]error, len(t.Violations))
	for i, v := range t.Violations {
		errs[i] = v
	}
	return errors.Join(errs...)
}

// #endregion table

// #region read-file
// ReadFile loads path against the first matching schema.
func ReadFile(path string, schemas ...Schema) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(filepath.Base(path), f, schemas...)
}

// #endregion read-file

// #region read
// Read parses CSV from r. name identifies the source in violations.
func Read(name string, r io.Reader, schemas ...Schema) (*Table, error) {
	if len(schemas) == 0 {
		return nil, fmt.Errorf("read %s: no schema given", name)
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var (
		header   []string
		declared bool
		records  [][]string
		lines    []int
	)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		if isComment(rec) {
			if header == nil {
				if cols, ok := declaredColumns(rec); ok {
					header = cols
					declared = true
				}
			}
			continue
		}
		if header == nil {
			header = trimAll(rec)
			continue
		}
		if declared && sameFields(trimAll(rec), header) {
			continue
		}
		line, _ := cr.FieldPos(0)
		records = append(records, rec)
		lines = append(lines, line)
	}
	if header == nil {
		return nil, &SchemaViolation{Source: name, Column: firstRequired(schemas[0]), Row: -1, Reason: "missing header"}
	}

	schema, index, err := matchSchema(name, header, schemas)
	if err != nil {
		return nil, err
	}

	t := &Table{
		Source: name,
		Schema: schema,
		floats: map[string][]float64{},
		texts:  map[string][]string{},
		ints:   map[string][]int{},
	}
	for _, c := range schema.Columns {
		if _, ok := index[c.Name]; !ok {
			continue
		}
		switch c.Kind {
		case KindFloat:
			t.floats[c.Name] = make([]float64, 0, len(records))
		case KindInt:
			t.ints[c.Name] = make([]int, 0, len(records))
		default:
			t.texts[c.Name] = make([]string, 0, len(records))
		}
	}

	for row, rec := range records {
		if v := t.appendRow(schema, index, rec, row); v != nil {
			v.Line = lines[row]
			t.Violations = append(t.Violations, v)
		}
	}
	return t, nil
}

// #endregion read

// #region rows
type parsedCell struct {
	name string
	kind Kind
	f    float64
	s    string
	i    int
}

// appendRow validates every column of rec before appending any of them, so a
// rejected row leaves all columns the same length.
func (t *Table) appendRow(schema Schema, index map[string]int, rec []string, row int) *SchemaViolation {
	cells := make([]parsedCell, 0, len(schema.Columns))
	for _, c := range schema.Columns {
		i, ok := index[c.Name]
		if !ok {
			continue
		}
		raw := ""
		if i < len(rec) {
			raw = strings.TrimSpace(rec[i])
		}
		cell, reason := parseCell(c, raw)
		if reason != "" {
			v := &SchemaViolation{Source: t.Source, Column: c.Name, Row: row, Value: raw, Reason: reason}
			v.TrapID, v.RunID = keyCells(index, rec)
			return v
		}
		cells = append(cells, cell)
	}
	for _, cell := range cells {
		switch cell.kind {
		case KindFloat:
			t.floats[cell.name] = append(t.floats[cell.name], cell.f)
		case KindInt:
			t.ints[cell.name] = append(t.ints[cell.name], cell.i)
		default:
			t.texts[cell.name] = append(t.texts[cell.name], cell.s)
		}
	}
	t.n++
	return nil
}

func parseCell(c Column, raw string) (parsedCell, string) {
	cell := parsedCell{name: c.Name, kind: c.Kind}
	switch c.Kind {
	case KindFloat:
		cell.f = math.NaN()
		if raw != "" {
			f, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return cell, "not a number"
			}
			cell.f = f
		}
		if err := Check(c.Relation, cell.f); err != nil {
			return cell, err.Error()
		}
	case KindInt:
		// blank integer cells are stored as -1 (unset)
		cell.i = -1
		if raw != "" {
			i, err := strconv.Atoi(raw)
			if err != nil {
				f, ferr := strconv.ParseFloat(raw, 64)
				if ferr != nil || f != math.Trunc(f) {
					return cell, "not an integer"
				}
				i = int(f)
			}
			cell.i = i
			if err := Check(c.Relation, i); err != nil {
				return cell, err.Error()
			}
		}
	default:
		cell.s = raw
		if err := Check(c.Relation, raw); err != nil {
			return cell, err.Error()
		}
	}
	return cell, ""
}

func keyCells(index map[string]int, rec []string) (string, string) {
	get := func(col string) string {
		if i, ok := index[col]; ok && i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}
	return get("trap_id"), get("run_id")
}

// #endregion rows

// #region header
func matchSchema(name string, header []string, schemas []Schema) (Schema, map[string]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}
	var firstMissing string
	for si, s := range schemas {
		index := map[string]int{}
		missing := ""
		for _, c := range s.Columns {
			i, ok := lookup(pos, c)
			if ok {
				index[c.Name] = i
				continue
			}
			if !c.Optional && missing == "" {
				missing = c.Name
			}
		}
		if missing == "" {
			return s, index, nil
		}
		if si == 0 {
			firstMissing = missing
		}
	}
	return Schema{}, nil, &SchemaViolation{Source: name, Column: firstMissing, Row: -1, Reason: "missing required column"}
}

func lookup(pos map[string]int, c Column) (int, bool) {
	if i, ok := pos[c.Name]; ok {
		return i, true
	}
	for _, a := range c.Aliases {
		if i, ok := pos[a]; ok {
			return i, true
		}
	}
	return 0, false
}

func isComment(rec []string) bool {
	return len(rec) > 0 && strings.HasPrefix(strings.TrimSpace(rec[0]), CommentMarker)
}

// declaredColumns parses "# columns: a, b, c". csv splits the declaration on
// commas, so the first field carries the marker and the keyword.
func declaredColumns(rec []string) ([]string, bool) {
	first := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rec[0]), CommentMarker))
	if !strings.HasPrefix(strings.ToLower(first), columnsDeclared) {
		return nil, false
	}
	first = strings.TrimSpace(first[len(columnsDeclared):])
	cols := append([]string{first}, trimAll(rec[1:])...)
	for _, c := range cols {
		if c == "" {
			return nil, false
		}
	}
	return cols, true
}

func trimAll(rec []string) []string {
	out := make([]string, len(rec))
	for i, s := range rec {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

func sameFields(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func firstRequired(s Schema) string {
	if req := s.Required(); len(req) > 0 {
		return req[0]
	}
	return ""
}

// #endregion header
