package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"granel/internal/core/entity"
	"granel/internal/core/id"
)

type mockCatalog struct {
	entity.Catalog
	Code  string `db:"code" json:"code"`
	Notes string `db:"notes" json:"notes"`
}

func TestExtractDBColumns_EmbeddedFields(t *testing.T) {
	cols := ExtractDBColumns[mockCatalog]()

	expectedCols := []string{
		"id", "active", "version", "name", "code", "notes",
	}

	for _, expected := range expectedCols {
		assert.Contains(t, cols, expected)
	}
}

func TestStructToMap_EmbeddedFields(t *testing.T) {
	cat := mockCatalog{
		Catalog: entity.Catalog{
			BaseEntity: entity.BaseEntity{
				ID:      id.New(),
				Active:  true,
				Version: 5,
			},
			Name: "Test Name",
		},
		Code:  "TEST",
		Notes: "bulk item",
	}

	m := StructToMap(cat)

	assert.Equal(t, cat.ID, m["id"])
	assert.Equal(t, true, m["active"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, "Test Name", m["name"])
	assert.Equal(t, "TEST", m["code"])
	assert.Equal(t, "bulk item", m["notes"])
}

func TestStructToMap_PointerInput(t *testing.T) {
	cat := &mockCatalog{Code: "PTR"}
	m := StructToMap(cat)
	assert.Equal(t, "PTR", m["code"])
}
