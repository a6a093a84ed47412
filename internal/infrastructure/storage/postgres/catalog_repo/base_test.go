package catalog_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"granel/internal/domain/catalogs/product"
	"granel/internal/infrastructure/storage/postgres"
)

func testRepo() *BaseCatalogRepo[*product.Product] {
	cols := postgres.ExtractDBColumns[product.Product]()
	return NewBaseCatalogRepo(nil, "cat_products", cols, func() *product.Product {
		return &product.Product{}
	})
}

func TestParseOrderBy_Default(t *testing.T) {
	r := testRepo()

	orderBy, err := r.parseOrderBy("")
	require.NoError(t, err)
	assert.Equal(t, "name ASC", orderBy)
}

func TestParseOrderBy_Descending(t *testing.T) {
	r := testRepo()

	orderBy, err := r.parseOrderBy("-price_retail")
	require.NoError(t, err)
	assert.Equal(t, "price_retail DESC", orderBy)
}

func TestParseOrderBy_UnknownColumn(t *testing.T) {
	r := testRepo()

	_, err := r.parseOrderBy("drop table cat_products")
	require.Error(t, err)
}

func TestParseOrderBy_EmbeddedColumn(t *testing.T) {
	r := testRepo()

	// Columns from the embedded catalog base are orderable too.
	orderBy, err := r.parseOrderBy("version")
	require.NoError(t, err)
	assert.Equal(t, "version ASC", orderBy)
}
