package table

import (
	"errors"
	"fmt"
)

// #region kind
// Kind is the storage type of a column.
type Kind int

const (
	KindText Kind = iota
	KindFloat
	KindInt
)

// #endregion kind

// #region relation
// Relation names a constraint a cell value must satisfy. The set is closed;
// each relation is backed by a validator tag registered in relations.go.
type Relation string

const (
	RelNone        Relation = ""
	RelFinite      Relation = "finite"
	RelPositive    Relation = "positive"
	RelNonNegative Relation = "nonnegative"
	RelBinary      Relation = "binary"
	RelNonEmpty    Relation = "nonempty"
)

// #endregion relation

// #region schema
// Column describes one expected column. Aliases are accepted header spellings
// that map onto Name.
type Column struct {
	Name     string
	Aliases  []string
	Kind     Kind
	Relation Relation
	Optional bool
}

// Schema is the required-column contract for one table form.
type Schema struct {
	Name    string
	Columns []Column
}

// Required returns the names of all non-optional columns.
func (s Schema) Required() []string {
	var out []string
	for _, c := range s.Columns {
		if !c.Optional {
			out = append(out, c.Name)
		}
	}
	return out
}

// #endregion schema

// #region errors
// ErrSourceNotFound is returned when the table source does not exist.
var ErrSourceNotFound = errors.New("source not found")

// SchemaViolation names the missing or malformed field and the offending
// data row.
type SchemaViolation struct {
	Source string
	Column string
	// Row is the 0-based index among data records, not counting the header
	// or comment lines. It is -1 when the violation concerns the header.
	Row int
	// Line is the 1-based line of the record in the source; 0 when unknown.
	Line   int
	Value  string
	Reason string

	// Run key cells of the offending row, when readable.
	TrapID string
	RunID  string
}

func (v *SchemaViolation) Error() string {
	if v.Row < 0 {
		return fmt.Sprintf("schema violation in %s: column %q: %s", v.Source, v.Column, v.Reason)
	}
	if v.Line > 0 {
		return fmt.Sprintf("schema violation in %s row %d (line %d): column %q value %q: %s",
			v.Source, v.Row, v.Line, v.Column, v.Value, v.Reason)
	}
	return fmt.Sprintf("schema violation in %s row %d: column %q value %q: %s",
		v.Source, v.Row, v.Column, v.Value, v.Reason)
}

// #endregion errors
