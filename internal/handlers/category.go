// internal/handlers/category.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/fashion-storefront/internal/i18n"
	"github.com/javajoker/fashion-storefront/internal/services"
	"github.com/javajoker/fashion-storefront/internal/utils"
)

type CategoryHandler struct {
	categoryService *services.CategoryService
}

func NewCategoryHandler(categoryService *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
	}
}

// GET /categories
func (h *CategoryHandler) GetCategories(c *gin.Context) {
	categories, err := h.categoryService.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, categories)
}

// GET /categories/:id
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "category")
	if !ok {
		return
	}

	category, err := h.categoryService.GetCategory(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.localize(c, err))
		return
	}

	utils.SuccessResponse(c, category)
}

// POST /categories
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req services.CreateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.categoryService.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.localize(c, err))
		return
	}

	utils.CreatedResponse(c, category)
}

// PUT /categories/:id
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "category")
	if !ok {
		return
	}

	var req services.UpdateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.categoryService.UpdateCategory(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.localize(c, err))
		return
	}

	utils.SuccessResponse(c, category)
}

// DELETE /categories/:id
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "category")
	if !ok {
		return
	}

	if err := h.categoryService.DeleteCategory(c.Request.Context(), id); err != nil {
		respondError(c, h.localize(c, err))
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyCategoryDeleted),
	})
}

func (h *CategoryHandler) localize(c *gin.Context, err error) error {
	lang := utils.GetLangFromContext(c)

	err = localize(err, services.KindNotFound, i18n.T(lang, i18n.KeyCategoryNotFound))
	err = localize(err, services.KindConflict, i18n.T(lang, i18n.KeyCategorySlugTaken))

	var appErr *services.AppError
	if errors.As(err, &appErr) && appErr.Kind == services.KindValidation && appErr.Details == nil {
		err = localize(err, services.KindValidation, i18n.T(lang, i18n.KeyCategorySlugEmpty))
	}
	if errors.As(err, &appErr) && appErr.Kind == services.KindDependency {
		if details, ok := appErr.Details.(map[string]interface{}); ok {
			if count, ok := details["productCount"].(int64); ok {
				err = localize(err, services.KindDependency, i18n.T(lang, i18n.KeyCategoryInUse, count))
			}
		}
	}
	return err
}
