// internal/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/fashion-storefront/internal/i18n"
	"github.com/javajoker/fashion-storefront/internal/services"
	"github.com/javajoker/fashion-storefront/internal/utils"
)

var kindStatus = map[services.ErrorKind]int{
	services.KindValidation:        http.StatusBadRequest,
	services.KindUnauthorized:      http.StatusUnauthorized,
	services.KindForbidden:         http.StatusForbidden,
	services.KindNotFound:          http.StatusNotFound,
	services.KindConflict:          http.StatusBadRequest,
	services.KindDependency:        http.StatusBadRequest,
	services.KindInsufficientStock: http.StatusConflict,
	services.KindInternal:          http.StatusInternalServerError,
}

// respondError writes err using the API envelope. Causes of internal errors
// are logged and never sent to the client.
func respondError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)

	var appErr *services.AppError
	if !errors.As(err, &appErr) || appErr.Kind == services.KindInternal {
		logrus.WithError(err).WithFields(logrus.Fields{
			"path":       c.Request.URL.Path,
			"request_id": c.GetString(utils.ContextKeyRequestID),
		}).Error("Request failed")
		utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyInternalError))
		return
	}

	status, ok := kindStatus[appErr.Kind]
	if !ok {
		status = http.StatusBadRequest
	}
	utils.ErrorResponse(c, status, string(appErr.Kind), appErr.Message, appErr.Details)
}

// bindJSON decodes the body and reports malformed JSON as a validation error.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.ValidationErrorResponse(c, err.Error())
		return false
	}
	return true
}

func parseIDParam(c *gin.Context, resource string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.NotFoundResponse(c, resource)
		return 0, false
	}
	return uint(id), true
}

// localize swaps the message of an error of the given kind for a translated
// one, leaving other errors untouched.
func localize(err error, kind services.ErrorKind, message string) error {
	var appErr *services.AppError
	if errors.As(err, &appErr) && appErr.Kind == kind {
		localized := *appErr
		localized.Message = message
		return &localized
	}
	return err
}
