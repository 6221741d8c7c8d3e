// internal/services/product_service_test.go
package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductCRUD(t *testing.T) {
	db := newTestDB(t)
	svc := NewProductService(db)
	ctx := context.Background()

	category := seedCategory(t, db, "Knitwear")

	created, err := svc.CreateProduct(ctx, &CreateProductRequest{
		Name:       "Wool Sweater",
		Price:      decimal.RequireFromString("59.90"),
		Stock:      7,
		CategoryID: &category.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, created.Category)
	assert.Equal(t, "Knitwear", *created.Category)
	assert.True(t, decimal.RequireFromString("59.9").Equal(created.Price))

	stock := 3
	updated, err := svc.UpdateProduct(ctx, created.ID, &UpdateProductRequest{Stock: &stock, ClearCategory: true})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Stock)
	assert.Nil(t, updated.Category)
	assert.Equal(t, "Wool Sweater", updated.Name)

	require.NoError(t, svc.DeleteProduct(ctx, created.ID))
	_, err = svc.GetProduct(ctx, created.ID)
	assert.True(t, IsKind(err, KindNotFound))
	assert.True(t, IsKind(svc.DeleteProduct(ctx, created.ID), KindNotFound))
}

func TestCreateProductValidatesInput(t *testing.T) {
	db := newTestDB(t)
	svc := NewProductService(db)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, &CreateProductRequest{Name: "Socks", Price: decimal.NewFromInt(-1)})
	assert.True(t, IsKind(err, KindValidation))

	_, err = svc.CreateProduct(ctx, &CreateProductRequest{Name: "Socks", Price: decimal.NewFromInt(5), Stock: -2})
	assert.True(t, IsKind(err, KindValidation))

	missing := uint(4242)
	_, err = svc.CreateProduct(ctx, &CreateProductRequest{Name: "Socks", Price: decimal.NewFromInt(5), CategoryID: &missing})
	assert.True(t, IsKind(err, KindNotFound))
}

func TestListProductsFiltersByCategoryName(t *testing.T) {
	db := newTestDB(t)
	svc := NewProductService(db)

	dresses := seedCategory(t, db, "Dresses")
	shoes := seedCategory(t, db, "Shoes")
	seedProduct(t, db, "Slip Dress", 70, 2, &dresses.ID)
	seedProduct(t, db, "Loafers", 90, 2, &shoes.ID)
	seedProduct(t, db, "Gift Card", 25, 100, nil)

	all, err := svc.ListProducts(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	filtered, err := svc.ListProducts(context.Background(), "dresses")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Slip Dress", filtered[0].Name)

	none, err := svc.ListProducts(context.Background(), "Hats")
	require.NoError(t, err)
	assert.Empty(t, none)
}
