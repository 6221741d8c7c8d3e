// internal/middleware/auth.go
package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/fashion-storefront/internal/i18n"
	"github.com/javajoker/fashion-storefront/internal/models"
	"github.com/javajoker/fashion-storefront/internal/services"
	"github.com/javajoker/fashion-storefront/internal/utils"
)

// Session cookie names. Admin and customer sessions never share a cookie.
const (
	CustomerCookie = "auth-token"
	AdminCookie    = "admin-token"
)

// CustomerRequired accepts a customer session, or an admin session when no
// customer cookie is present.
func CustomerRequired(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := utils.GetLangFromContext(c)

		token := sessionToken(c, CustomerCookie, AdminCookie)
		if token == "" {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
			c.Abort()
			return
		}

		user, err := authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			abortWithAuthError(c, err)
			return
		}

		setUser(c, user, token)
		c.Next()
	}
}

// AdminRequired checks the admin cookie and re-reads the role from the
// database on every request.
func AdminRequired(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := utils.GetLangFromContext(c)

		token := sessionToken(c, AdminCookie)
		if token == "" {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
			c.Abort()
			return
		}

		user, err := authService.AuthenticateAdmin(c.Request.Context(), token)
		if err != nil {
			abortWithAuthError(c, err)
			return
		}

		setUser(c, user, token)
		c.Next()
	}
}

// OptionalAuth attaches the customer session when a valid one is present and
// lets the request through either way.
func OptionalAuth(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c, CustomerCookie)
		if token == "" {
			c.Next()
			return
		}

		user, err := authService.Authenticate(c.Request.Context(), token)
		if err == nil {
			setUser(c, user, token)
		}
		c.Next()
	}
}

func GetUserFromContext(c *gin.Context) (*models.User, bool) {
	if v, exists := c.Get(utils.ContextKeyUser); exists {
		if user, ok := v.(*models.User); ok {
			return user, true
		}
	}
	return nil, false
}

func sessionToken(c *gin.Context, cookies ...string) string {
	for _, name := range cookies {
		if token, err := c.Cookie(name); err == nil && token != "" {
			return token
		}
	}
	return ""
}

func setUser(c *gin.Context, user *models.User, token string) {
	c.Set(utils.ContextKeyUserID, user.ID)
	c.Set(utils.ContextKeyUser, user)
	c.Set("token", token)
}

func abortWithAuthError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)

	switch services.KindOf(err) {
	case services.KindForbidden:
		utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyAdminAccessDenied))
	case services.KindUnauthorized:
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidToken))
	default:
		utils.InternalErrorResponse(c, "")
	}
	c.Abort()
}
