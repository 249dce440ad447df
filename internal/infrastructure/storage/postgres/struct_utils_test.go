package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vetdesk/internal/core/entity"
	"vetdesk/internal/core/id"
)

type mockCatalog struct {
	entity.Catalog
	Notes string `db:"notes" json:"notes"`
	Skip  string `db:"-" json:"skip"`
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[mockCatalog]()

	for _, expected := range []string{"id", "deletion_mark", "version", "code", "name", "notes"} {
		assert.Contains(t, cols, expected)
	}
	assert.NotContains(t, cols, "-")
}

func TestStructToMap(t *testing.T) {
	cat := mockCatalog{Notes: "vaccinated"}
	cat.ID = id.New()
	cat.DeletionMark = true
	cat.Version = 5
	cat.Code = "T-001"
	cat.Name = "Test Name"
	cat.Skip = "ignored"

	m := StructToMap(cat)

	assert.Equal(t, cat.ID, m["id"])
	assert.Equal(t, true, m["deletion_mark"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, "T-001", m["code"])
	assert.Equal(t, "Test Name", m["name"])
	assert.Equal(t, "vaccinated", m["notes"])
	assert.NotContains(t, m, "skip")
}
