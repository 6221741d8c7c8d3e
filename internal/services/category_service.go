// internal/services/category_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/javajoker/fashion-storefront/internal/database"
	"github.com/javajoker/fashion-storefront/internal/models"
	"github.com/javajoker/fashion-storefront/internal/utils"
)

type CategoryService struct {
	db *gorm.DB
}

type CreateCategoryRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Slug        string  `json:"slug,omitempty" validate:"omitempty,max=255"`
	ImageURL    *string `json:"imageUrl,omitempty" validate:"omitempty,max=1024"`
	Description *string `json:"description,omitempty"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Slug        *string `json:"slug,omitempty" validate:"omitempty,max=255"`
	ImageURL    *string `json:"imageUrl,omitempty" validate:"omitempty,max=1024"`
	Description *string `json:"description,omitempty"`
}

type CategoryResponse struct {
	models.Category
	ProductCount int64 `json:"productCount"`
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{
		db: db,
	}
}

func (s *CategoryService) ListCategories(ctx context.Context) ([]CategoryResponse, error) {
	var categories []models.Category
	if err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&categories).Error; err != nil {
		return nil, NewInternalError("failed to list categories", err)
	}

	counts, err := s.productCounts(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		result = append(result, CategoryResponse{Category: c, ProductCount: counts[c.ID]})
	}
	return result, nil
}

func (s *CategoryService) GetCategory(ctx context.Context, id uint) (*CategoryResponse, error) {
	category, err := s.find(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}

	count, err := countProducts(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}

	return &CategoryResponse{Category: *category, ProductCount: count}, nil
}

func (s *CategoryService) CreateCategory(ctx context.Context, req *CreateCategoryRequest) (*models.Category, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid category", utils.GetValidationErrors(err))
	}

	slug, err := resolveSlug(req.Name, req.Slug)
	if err != nil {
		return nil, err
	}

	category := &models.Category{
		Name:        strings.TrimSpace(req.Name),
		Slug:        slug,
		ImageURL:    req.ImageURL,
		Description: req.Description,
	}

	if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, translateCategoryWriteError(err)
	}

	return category, nil
}

func (s *CategoryService) UpdateCategory(ctx context.Context, id uint, req *UpdateCategoryRequest) (*models.Category, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid category", utils.GetValidationErrors(err))
	}

	category, err := s.find(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}

	// A blank slug is not an override: the slug follows the (new) name.
	if req.Name != nil || req.Slug != nil {
		source := category.Name
		if req.Name != nil {
			source = *req.Name
		}
		explicit := ""
		if req.Slug != nil {
			explicit = *req.Slug
		}
		slug, err := resolveSlug(source, explicit)
		if err != nil {
			return nil, err
		}
		category.Slug = slug
	}

	if req.Name != nil {
		category.Name = strings.TrimSpace(*req.Name)
	}
	if req.ImageURL != nil {
		category.ImageURL = emptyToNil(*req.ImageURL)
	}
	if req.Description != nil {
		category.Description = emptyToNil(*req.Description)
	}

	if err := s.db.WithContext(ctx).Save(category).Error; err != nil {
		return nil, translateCategoryWriteError(err)
	}

	return category, nil
}

// DeleteCategory refuses to delete a category that products still point at.
// The foreign key restricts the delete as well, in case a product is assigned
// concurrently.
func (s *CategoryService) DeleteCategory(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.find(tx, id); err != nil {
			return err
		}

		count, err := countProducts(tx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return NewDependencyError(
				fmt.Sprintf("cannot delete category with %d product(s)", count),
				map[string]interface{}{"productCount": count},
			)
		}

		if err := tx.Delete(&models.Category{}, id).Error; err != nil {
			return translateCategoryDeleteError(err)
		}
		return nil
	})
}

func (s *CategoryService) find(db *gorm.DB, id uint) (*models.Category, error) {
	var category models.Category
	if err := db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("category not found")
		}
		return nil, NewInternalError("failed to load category", err)
	}
	return &category, nil
}

func (s *CategoryService) productCounts(ctx context.Context) (map[uint]int64, error) {
	var rows []struct {
		CategoryID uint
		Count      int64
	}
	err := s.db.WithContext(ctx).Model(&models.Product{}).
		Select("category_id, COUNT(*) AS count").
		Where("category_id IS NOT NULL").
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, NewInternalError("failed to count products", err)
	}

	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.CategoryID] = r.Count
	}
	return counts, nil
}

func countProducts(db *gorm.DB, categoryID uint) (int64, error) {
	var count int64
	if err := db.Model(&models.Product{}).Where("category_id = ?", categoryID).Count(&count).Error; err != nil {
		return 0, NewInternalError("failed to count products", err)
	}
	return count, nil
}

func resolveSlug(name, explicit string) (string, error) {
	source := name
	if strings.TrimSpace(explicit) != "" {
		source = explicit
	}

	slug := utils.Slugify(source)
	if slug == "" {
		return "", NewValidationError("slug must contain at least one letter or digit", nil)
	}
	return slug, nil
}

func translateCategoryWriteError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return NewConflictError("category with this slug already exists", err)
	}
	return NewInternalError("failed to save category", err)
}

func translateCategoryDeleteError(err error) error {
	if database.IsForeignKeyViolation(err) {
		return NewDependencyError("category is still referenced by products", nil)
	}
	return NewInternalError("failed to delete category", err)
}

func emptyToNil(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
