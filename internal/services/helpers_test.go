// internal/services/helpers_test.go
package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/javajoker/fashion-storefront/internal/database"
	"github.com/javajoker/fashion-storefront/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price int64, stock int, categoryID *uint) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:       name,
		Price:      decimal.NewFromInt(price),
		Stock:      stock,
		CategoryID: categoryID,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func seedCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()

	category, err := NewCategoryService(db).CreateCategory(context.Background(), &CreateCategoryRequest{Name: name})
	require.NoError(t, err)
	return category
}

func seedUser(t *testing.T, db *gorm.DB, email, password string, role models.Role) *models.User {
	t.Helper()

	user, err := NewUserService(db).CreateUser(context.Background(), CreateUserParams{
		Name:     "Test User",
		Email:    email,
		Password: password,
		Role:     role,
	})
	require.NoError(t, err)
	return user
}

func stockOf(t *testing.T, db *gorm.DB, productID uint) int {
	t.Helper()

	var product models.Product
	require.NoError(t, db.First(&product, productID).Error)
	return product.Stock
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(model).Count(&count).Error)
	return count
}
