package store

import (
	"context"
	"testing"

	"github.com/aurelab/aurelab-manager/internal/entity"
	gerr "github.com/aurelab/aurelab-manager/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProduct(name, slug string, stock int) *entity.ProductInsert {
	return &entity.ProductInsert{
		Name:        name,
		Slug:        slug,
		Description: "test product",
		CategoryID:  1,
		Price:       decimal.NewFromInt(199),
		Cost:        decimal.NewNullDecimal(decimal.NewFromInt(80)),
		Stock:       stock,
	}
}

func TestProductCRUD(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	defer db.Close()
	ps := db.Products()

	id, err := ps.AddProduct(ctx, testProduct("Studio Monitor", "studio-monitor", 10))
	require.NoError(t, err)

	prd, err := ps.GetProductById(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Studio Monitor", prd.Name)
	assert.Equal(t, 10, prd.Stock)

	upd := testProduct("Studio Monitor Mk2", "studio-monitor", 10)
	err = ps.UpdateProduct(ctx, upd, id)
	require.NoError(t, err)

	prd, err = ps.GetProductBySlugNoHidden(ctx, "studio-monitor")
	require.NoError(t, err)
	assert.Equal(t, "Studio Monitor Mk2", prd.Name)

	// hidden products disappear from the storefront lookup
	err = ps.SetHidden(ctx, id, true)
	require.NoError(t, err)
	_, err = ps.GetProductBySlugNoHidden(ctx, "studio-monitor")
	assert.ErrorIs(t, err, gerr.ErrProductNotFound)

	// but stay reachable by id for the back office
	prd, err = ps.GetProductById(ctx, id)
	require.NoError(t, err)
	assert.True(t, prd.Hidden)

	err = ps.DeleteProductById(ctx, id)
	require.NoError(t, err)
	_, err = ps.GetProductById(ctx, id)
	assert.ErrorIs(t, err, gerr.ErrProductNotFound)
}

func TestAdjustStock(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	defer db.Close()
	ps := db.Products()

	id, err := ps.AddProduct(ctx, testProduct("Tube Amp", "tube-amp", 5))
	require.NoError(t, err)

	err = ps.AdjustStock(ctx, id, -3, entity.StockSourceAdminAdjust, "damaged units")
	require.NoError(t, err)

	prd, err := ps.GetProductById(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, prd.Stock)

	// stock can't go negative
	err = ps.AdjustStock(ctx, id, -5, entity.StockSourceAdminAdjust, "oversell")
	assert.ErrorIs(t, err, gerr.ErrInsufficientStock)

	prd, err = ps.GetProductById(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, prd.Stock)

	changes, err := ps.GetStockChanges(ctx, id, 0)
	require.NoError(t, err)
	// failed adjustment leaves no audit row
	require.Len(t, changes, 1)
	assert.Equal(t, -3, changes[0].Delta)
	assert.Equal(t, string(entity.StockSourceAdminAdjust), changes[0].Source)
}

func TestGetProductsPaged(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	defer db.Close()
	ps := db.Products()

	_, err := ps.AddProduct(ctx, testProduct("Visible", "visible", 1))
	require.NoError(t, err)
	hidden := testProduct("Hidden", "hidden", 1)
	hidden.Hidden = true
	_, err = ps.AddProduct(ctx, hidden)
	require.NoError(t, err)

	prds, total, err := ps.GetProductsPaged(ctx, 10, 0, false)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, prds, 1)
	assert.Equal(t, "Visible", prds[0].Name)

	_, total, err = ps.GetProductsPaged(ctx, 10, 0, true)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}
