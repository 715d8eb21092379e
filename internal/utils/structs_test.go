package utils

import (
	"testing"
	"time"

	"familyhub/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRow struct {
	ID        string  `db:"id"`
	Name      string  `db:"name"`
	Note      *string `db:"note"`
	Ignored   string  `db:"-"`
	NoTag     string
	CreatedAt time.Time `db:"created_at"`
	hidden    string    `db:"hidden"`
}

type samplePatch struct {
	A types.Optional[int]    `db:"a"`
	B types.Optional[int]    `db:"b"`
	C types.Optional[string] `db:"c"`
	D types.Optional[string] `db:"-"`
}

func TestStructColumnsOrder(t *testing.T) {
	for _, input := range []any{sampleRow{}, &sampleRow{}} {
		var names []string
		for _, c := range StructColumns(input) {
			names = append(names, c.Name)
		}
		assert.Equal(t, []string{"id", "name", "note", "created_at"}, names)
	}
}

func TestStructColumnsNullable(t *testing.T) {
	columns := StructColumns(sampleRow{})
	require.Len(t, columns, 4)

	assert.Equal(t, Column{Name: "name", Nullable: false}, columns[1])
	assert.Equal(t, Column{Name: "note", Nullable: true}, columns[2])
}

func TestStructToMap(t *testing.T) {
	note := "hello"
	row := sampleRow{ID: "x", Name: "n", Note: &note, Ignored: "skip", hidden: "h"}

	m := StructToMap(&row)
	assert.Len(t, m, 4)
	assert.Equal(t, "x", m["id"])
	assert.Equal(t, &note, m["note"])
	assert.NotContains(t, m, "hidden")
}

func TestStructColumnsPanicsOnNonStruct(t *testing.T) {
	assert.Panics(t, func() { StructColumns(42) })
}

func TestChangesFromPatchSkipsUndefinedKeepsNull(t *testing.T) {
	patch := samplePatch{
		A: types.Some(1),
		C: types.Null[string](),
		D: types.Some("never"),
	}

	changes := ChangesFromPatch(patch)
	require.Len(t, changes, 2)

	assert.Equal(t, types.Change{Column: "a", Value: 1}, changes[0])
	assert.Equal(t, "c", changes[1].Column)
	assert.Nil(t, changes[1].Value)
}

func TestChangesFromPatchEmpty(t *testing.T) {
	assert.Empty(t, ChangesFromPatch(&samplePatch{}))
}

func TestChangesFromPatchRejectsPlainFields(t *testing.T) {
	type badPatch struct {
		Name string `db:"name"`
	}
	assert.Panics(t, func() { ChangesFromPatch(badPatch{Name: "x"}) })
}

func TestNanoID(t *testing.T) {
	a, b := NanoID(), NanoID()
	assert.Len(t, a, NanoidSize)
	assert.NotEqual(t, a, b)
	assert.Len(t, NanoIDSize(8), 8)
}
