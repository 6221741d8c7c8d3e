// internal/handlers/auth.go
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/fashion-storefront/internal/i18n"
	"github.com/javajoker/fashion-storefront/internal/middleware"
	"github.com/javajoker/fashion-storefront/internal/services"
	"github.com/javajoker/fashion-storefront/internal/utils"
)

type AuthHandler struct {
	authService  *services.AuthService
	secureCookie bool
}

func NewAuthHandler(authService *services.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		secureCookie: secureCookie,
	}
}

// POST /auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.SignupRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.Signup(c.Request.Context(), &req)
	if err != nil {
		respondError(c, localize(err, services.KindConflict, i18n.T(lang, i18n.KeyAuthUserExists)))
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyAuthRegisterSuccess),
		"user":    user,
	})
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	h.login(c, middleware.CustomerCookie, h.authService.Login)
}

// POST /auth/admin/login
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	h.login(c, middleware.AdminCookie, h.authService.AdminLogin)
}

// POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.logout(c, middleware.CustomerCookie)
}

// POST /auth/admin/logout
func (h *AuthHandler) AdminLogout(c *gin.Context) {
	h.logout(c, middleware.AdminCookie)
}

// GET /auth/me and GET /auth/admin/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyAuthRequired))
		return
	}

	utils.SuccessResponse(c, gin.H{"user": user})
}

func (h *AuthHandler) login(c *gin.Context, cookie string, login func(context.Context, *services.LoginRequest) (*services.Session, error)) {
	lang := utils.GetLangFromContext(c)

	var req services.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := login(c.Request.Context(), &req)
	if err != nil {
		err = localize(err, services.KindUnauthorized, i18n.T(lang, i18n.KeyAuthInvalidCredentials))
		respondError(c, localize(err, services.KindForbidden, i18n.T(lang, i18n.KeyAdminAccessDenied)))
		return
	}

	h.setSessionCookie(c, cookie, session.Token, int(h.authService.TokenTTL().Seconds()))

	utils.SuccessResponse(c, gin.H{
		"message":   i18n.T(lang, i18n.KeyAuthLoginSuccess),
		"user":      session.User,
		"expiresAt": session.ExpiresAt,
	})
}

func (h *AuthHandler) logout(c *gin.Context, cookie string) {
	lang := utils.GetLangFromContext(c)

	if token, err := c.Cookie(cookie); err == nil && token != "" {
		if err := h.authService.Logout(c.Request.Context(), token); err != nil {
			respondError(c, err)
			return
		}
	}

	h.setSessionCookie(c, cookie, "", -1)
	utils.SuccessResponse(c, gin.H{"message": i18n.T(lang, i18n.KeyAuthLogoutSuccess)})
}

// setSessionCookie writes an HTTP-only, same-site lax cookie on "/". A
// negative maxAge deletes it.
func (h *AuthHandler) setSessionCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", h.secureCookie, true)
}
