// internal/services/product_service.go
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/javajoker/fashion-storefront/internal/database"
	"github.com/javajoker/fashion-storefront/internal/models"
	"github.com/javajoker/fashion-storefront/internal/utils"
)

type ProductService struct {
	db *gorm.DB
}

type CreateProductRequest struct {
	Name        string          `json:"name" validate:"required,max=255"`
	Description *string         `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price" validate:"min=0"`
	ImageURL    *string         `json:"imageUrl,omitempty" validate:"omitempty,max=1024"`
	Stock       int             `json:"stock" validate:"min=0"`
	CategoryID  *uint           `json:"categoryId,omitempty"`
}

// UpdateProductRequest only touches the fields present in the body. Stock is
// an absolute value, not a delta.
type UpdateProductRequest struct {
	Name        *string          `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty" validate:"omitempty,min=0"`
	ImageURL    *string          `json:"imageUrl,omitempty" validate:"omitempty,max=1024"`
	Stock       *int             `json:"stock,omitempty" validate:"omitempty,min=0"`
	CategoryID  *uint            `json:"categoryId,omitempty"`
	// ClearCategory detaches the product from its category.
	ClearCategory bool `json:"clearCategory,omitempty"`
}

type ProductResponse struct {
	models.Product
	Category *string `json:"category"`
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{
		db: db,
	}
}

func toProductResponse(p models.Product) ProductResponse {
	resp := ProductResponse{Product: p}
	if p.Category != nil {
		name := p.Category.Name
		resp.Category = &name
	}
	return resp
}

// ListProducts returns all products newest first. The category filter is a
// case-insensitive match on the category name.
func (s *ProductService) ListProducts(ctx context.Context, category string) ([]ProductResponse, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).Preload("Category").Order("created_at DESC, id DESC").Find(&products).Error; err != nil {
		return nil, NewInternalError("failed to list products", err)
	}

	category = strings.TrimSpace(category)
	result := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		resp := toProductResponse(p)
		if category != "" && (resp.Category == nil || !strings.EqualFold(*resp.Category, category)) {
			continue
		}
		result = append(result, resp)
	}
	return result, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id uint) (*ProductResponse, error) {
	product, err := s.find(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	resp := toProductResponse(*product)
	return &resp, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*ProductResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid product", utils.GetValidationErrors(err))
	}

	product := &models.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureCategoryExists(tx, product.CategoryID); err != nil {
			return err
		}
		if err := tx.Create(product).Error; err != nil {
			return translateProductWriteError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetProduct(ctx, product.ID)
}

func (s *ProductService) UpdateProduct(ctx context.Context, id uint, req *UpdateProductRequest) (*ProductResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid product", utils.GetValidationErrors(err))
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := s.find(tx, id)
		if err != nil {
			return err
		}

		if req.Name != nil {
			product.Name = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			product.Description = emptyToNil(*req.Description)
		}
		if req.Price != nil {
			product.Price = *req.Price
		}
		if req.ImageURL != nil {
			product.ImageURL = emptyToNil(*req.ImageURL)
		}
		if req.Stock != nil {
			product.Stock = *req.Stock
		}
		if req.ClearCategory {
			product.CategoryID = nil
		} else if req.CategoryID != nil {
			if err := ensureCategoryExists(tx, req.CategoryID); err != nil {
				return err
			}
			product.CategoryID = req.CategoryID
		}

		// Avoid saving the preloaded association back.
		product.Category = nil
		if err := tx.Save(product).Error; err != nil {
			return translateProductWriteError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetProduct(ctx, id)
}

// DeleteProduct removes the product. Past order items keep their snapshot.
func (s *ProductService) DeleteProduct(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Product{}, id)
	if result.Error != nil {
		return NewInternalError("failed to delete product", result.Error)
	}
	if result.RowsAffected == 0 {
		return NewNotFoundError("product not found")
	}
	return nil
}

func (s *ProductService) find(db *gorm.DB, id uint) (*models.Product, error) {
	var product models.Product
	if err := db.Preload("Category").First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("product not found")
		}
		return nil, NewInternalError("failed to load product", err)
	}
	return &product, nil
}

func ensureCategoryExists(db *gorm.DB, categoryID *uint) error {
	if categoryID == nil {
		return nil
	}
	var count int64
	if err := db.Model(&models.Category{}).Where("id = ?", *categoryID).Count(&count).Error; err != nil {
		return NewInternalError("failed to load category", err)
	}
	if count == 0 {
		return NewNotFoundError("category not found")
	}
	return nil
}

func translateProductWriteError(err error) error {
	if database.IsForeignKeyViolation(err) {
		return NewNotFoundError("category not found")
	}
	return NewInternalError("failed to save product", err)
}
