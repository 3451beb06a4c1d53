package table

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchema = Schema{
	Name: "test",
	Columns: []Column{
		{Name: "trap_id", Kind: KindText, Relation: RelNonEmpty, Optional: true},
		{Name: "run_id", Kind: KindText, Relation: RelNonEmpty, Optional: true},
		{Name: "seq", Aliases: []string{"trial_id"}, Kind: KindInt, Optional: true},
		{Name: "x", Kind: KindFloat, Relation: RelPositive},
		{Name: "b", Kind: KindFloat, Relation: RelBinary},
	},
}

var altSchema = Schema{
	Name:    "alt",
	Columns: []Column{{Name: "y", Kind: KindFloat, Relation: RelFinite}},
}

func read(t *testing.T, body string, schemas ...Schema) *Table {
	t.Helper()
	if len(schemas) == 0 {
		schemas = []Schema{testSchema}
	}
	tab, err := Read("test.csv", strings.NewReader(body), schemas...)
	require.NoError(t, err)
	return tab
}

func TestViolationCarriesFileLine(t *testing.T) {
	tab := read(t, "# run log\ntrap_id,run_id,x,b\n# calibrated\nT1,R1,1,0\nT1,R2,-1,0\n")

	require.Len(t, tab.Violations, 1)
	v := tab.Violations[0]
	assert.Equal(t, 1, v.Row, "data records only")
	assert.Equal(t, 5, v.Line)
	assert.Contains(t, v.Error(), "row 1 (line 5)")
}

func TestUnusableTable(t *testing.T) {
	_, err := Read("test.csv", strings.NewReader("trap_id,run_id,x\nT1,R1,1\n"), testSchema)
	var sv *SchemaViolation
	require.ErrorAs(t, err, &sv)

	tab := Unusable(sv)
	assert.Equal(t, 0, tab.Len())
	assert.Equal(t, "test.csv", tab.Source)
	assert.False(t, tab.Has("x"))
	assert.Nil(t, tab.Floats("x"))
	require.Len(t, tab.Violations, 1)
	assert.ErrorIs(t, tab.Err(), sv)
	assert.NotContains(t, sv.Error(), "line")
}

func TestReadValidRows(t *testing.T) {
	tab := read(t, "trap_id,run_id,x,b\nT1,R1,1.5,0\nT1,R2, 2e3 ,1\n")

	assert.Equal(t, 2, tab.Len())
	assert.Equal(t, []float64{1.5, 2000}, tab.Floats("x"))
	assert.Equal(t, []string{"T1", "T1"}, tab.Texts("trap_id"))
	assert.False(t, tab.Has("seq"))
	assert.Nil(t, tab.Ints("seq"))
	assert.NoError(t, tab.Err())
}

func TestReadRowViolationExcludesRow(t *testing.T) {
	tab := read(t, "trap_id,run_id,x,b\nT1,R1,1,0\nT1,R2,-1,0\nT1,R3,2,0.5\nT1,R4,abc,1\n")

	assert.Equal(t, 1, tab.Len())
	require.Len(t, tab.Violations, 3)

	v := tab.Violations[0]
	assert.Equal(t, "x", v.Column)
	assert.Equal(t, 1, v.Row)
	assert.Equal(t, "-1", v.Value)
	assert.Equal(t, "violates positive", v.Reason)
	assert.Equal(t, "T1", v.TrapID)
	assert.Equal(t, "R2", v.RunID)

	assert.Equal(t, "b", tab.Violations[1].Column)
	assert.Equal(t, "violates binary", tab.Violations[1].Reason)
	assert.Equal(t, "not a number", tab.Violations[2].Reason)

	// every column keeps the same length
	assert.Len(t, tab.Texts("run_id"), 1)
	assert.Len(t, tab.Floats("b"), 1)

	var sv *SchemaViolation
	require.True(t, errors.As(tab.Err(), &sv))
	assert.Contains(t, tab.Err().Error(), "row 1")
}

func TestReadBlankCells(t *testing.T) {
	tab := read(t, "seq,x,b\n,1,\n3,2,1\n")

	require.Equal(t, 2, tab.Len())
	assert.Equal(t, []int{-1, 3}, tab.Ints("seq"))
	assert.True(t, math.IsNaN(tab.Floats("b")[0]))
}

func TestReadIntegralFloatAsInt(t *testing.T) {
	tab := read(t, "seq,x,b\n4.0,1,0\n4.5,1,0\n")
	assert.Equal(t, []int{4}, tab.Ints("seq"))
	require.Len(t, tab.Violations, 1)
	assert.Equal(t, "not an integer", tab.Violations[0].Reason)
}

func TestReadBlankKeyIsViolation(t *testing.T) {
	tab := read(t, "trap_id,run_id,x,b\n,R1,1,0\n")
	assert.Equal(t, 0, tab.Len())
	require.Len(t, tab.Violations, 1)
	assert.Equal(t, "trap_id", tab.Violations[0].Column)
	assert.Equal(t, "violates nonempty", tab.Violations[0].Reason)
}

func TestReadAlias(t *testing.T) {
	tab := read(t, "trial_id,x,b\n7,1,1\n")
	assert.Equal(t, []int{7}, tab.Ints("seq"))
}

func TestReadMissingRequiredColumn(t *testing.T) {
	_, err := Read("test.csv", strings.NewReader("trap_id,x\nT1,1\n"), testSchema)
	require.Error(t, err)

	var sv *SchemaViolation
	require.True(t, errors.As(err, &sv))
	assert.Equal(t, "b", sv.Column)
	assert.Equal(t, -1, sv.Row)
	assert.Equal(t, "missing required column", sv.Reason)
}

func TestReadSecondSchemaMatches(t *testing.T) {
	tab := read(t, "y\n1\n2\n", testSchema, altSchema)
	assert.Equal(t, "alt", tab.Schema.Name)
	assert.Equal(t, []float64{1, 2}, tab.Floats("y"))
}

func TestReadMissingHeader(t *testing.T) {
	_, err := Read("test.csv", strings.NewReader("# only a comment\n"), testSchema)
	var sv *SchemaViolation
	require.True(t, errors.As(err, &sv))
	assert.Equal(t, "missing header", sv.Reason)
	assert.Equal(t, "x", sv.Column)
}

func TestReadCommentsAndDeclaredHeader(t *testing.T) {
	body := strings.Join([]string{
		"# columns: x, b",
		"# generated by the bench",
		"x,b",
		"1,0",
		"# mid-file note",
		"2,1",
	}, "\n")
	tab := read(t, body)
	assert.Equal(t, []float64{1, 2}, tab.Floats("x"))
	assert.Empty(t, tab.Violations)
}

func TestReadDeclaredHeaderWithoutHeaderRow(t *testing.T) {
	tab := read(t, "# columns: x, b\n1,0\n2,1\n")
	assert.Equal(t, 2, tab.Len())
}

func TestReadNoSchema(t *testing.T) {
	_, err := Read("test.csv", strings.NewReader("x\n"))
	assert.Error(t, err)
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "absent.csv"), testSchema)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceNotFound)
}

func TestReadFileNamesSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.csv")
	require.NoError(t, os.WriteFile(path, []byte("x,b\n0,0\n"), 0o644))

	tab, err := ReadFile(path, testSchema)
	require.NoError(t, err)
	assert.Equal(t, "events.csv", tab.Source)
	require.Len(t, tab.Violations, 1)
	assert.Contains(t, tab.Violations[0].Error(), "events.csv row 0")
}

func TestNilTable(t *testing.T) {
	var tab *Table
	assert.Equal(t, 0, tab.Len())
	assert.False(t, tab.Has("x"))
	assert.NoError(t, tab.Err())
}
