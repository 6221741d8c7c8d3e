// internal/handlers/upload.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/fashion-storefront/internal/i18n"
	"github.com/javajoker/fashion-storefront/internal/services"
	"github.com/javajoker/fashion-storefront/internal/utils"
)

type UploadHandler struct {
	storageService *services.StorageService
}

func NewUploadHandler(storageService *services.StorageService) *UploadHandler {
	return &UploadHandler{
		storageService: storageService,
	}
}

// POST /uploads
// Multipart field "file". Returns the public image URL for product and
// category forms.
func (h *UploadHandler) UploadImage(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, string(services.KindValidation), i18n.T(lang, i18n.KeyFileMissing), nil)
		return
	}
	defer file.Close()

	result, err := h.storageService.UploadImage(file, header, h.storageService.ImageUploadOptions("images"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyFileUploadSuccess),
		"imageUrl": result.URL,
		"key":      result.Key,
		"size":     result.Size,
		"mimeType": result.MimeType,
	})
}
