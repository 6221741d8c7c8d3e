// internal/services/auth_service.go
package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/fashion-storefront/internal/models"
	"github.com/javajoker/fashion-storefront/internal/utils"
)

// AuthService turns credentials into session tokens and session tokens back
// into users. Roles are always read from the credential store, never from
// the token.
type AuthService struct {
	users   *UserService
	tokens  *utils.TokenManager
	revoker TokenRevoker
}

type SignupRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,max=50"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type Session struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

func NewAuthService(users *UserService, tokens *utils.TokenManager, revoker TokenRevoker) *AuthService {
	return &AuthService{
		users:   users,
		tokens:  tokens,
		revoker: revoker,
	}
}

func (s *AuthService) Signup(ctx context.Context, req *SignupRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid signup request", utils.GetValidationErrors(err))
	}

	if _, err := s.users.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, NewConflictError("user with this email already exists", nil)
	} else if !IsKind(err, KindNotFound) {
		return nil, err
	}

	// The unique index still decides if two signups race.
	return s.users.CreateUser(ctx, CreateUserParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Role:     models.RoleCustomer,
	})
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*Session, error) {
	user, err := s.checkCredentials(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.newSession(user)
}

// AdminLogin verifies the password before the role so that a wrong password
// never reveals whether the account is an admin.
func (s *AuthService) AdminLogin(ctx context.Context, req *LoginRequest) (*Session, error) {
	user, err := s.checkCredentials(ctx, req)
	if err != nil {
		return nil, err
	}

	if !user.IsAdmin() {
		utils.AuthFailuresTotal.WithLabelValues("not_admin").Inc()
		logrus.WithField("user_id", user.ID).Warn("Admin login attempt by non-admin account")
		return nil, NewForbiddenError("admin access required")
	}

	return s.newSession(user)
}

// Logout revokes the token until its natural expiry. Invalid tokens are
// ignored since they cannot be used anyway.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, ok := s.tokens.VerifyToken(token)
	if !ok {
		return nil
	}

	if err := s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return NewInternalError("failed to revoke session", err)
	}

	logrus.WithField("user_id", claims.UserID).Debug("Session revoked")
	return nil
}

// Authenticate resolves a session token to its user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, NewUnauthorizedError("authentication required")
	}

	claims, ok := s.tokens.VerifyToken(token)
	if !ok {
		utils.AuthFailuresTotal.WithLabelValues("invalid_token").Inc()
		return nil, NewUnauthorizedError("invalid or expired session")
	}

	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, NewInternalError("failed to check session revocation", err)
	}
	if revoked {
		utils.AuthFailuresTotal.WithLabelValues("revoked_token").Inc()
		return nil, NewUnauthorizedError("session has been logged out")
	}

	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if IsKind(err, KindNotFound) {
			return nil, NewUnauthorizedError("invalid or expired session")
		}
		return nil, err
	}

	return user, nil
}

// AuthenticateAdmin is Authenticate plus a role check against the store.
func (s *AuthService) AuthenticateAdmin(ctx context.Context, token string) (*models.User, error) {
	user, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() {
		return nil, NewForbiddenError("admin access required")
	}
	return user, nil
}

func (s *AuthService) TokenTTL() time.Duration {
	return s.tokens.TTL()
}

func (s *AuthService) checkCredentials(ctx context.Context, req *LoginRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid login request", utils.GetValidationErrors(err))
	}

	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if IsKind(err, KindNotFound) {
			utils.AuthFailuresTotal.WithLabelValues("bad_credentials").Inc()
			return nil, NewUnauthorizedError("invalid email or password")
		}
		return nil, err
	}

	if !user.CheckPassword(req.Password) {
		utils.AuthFailuresTotal.WithLabelValues("bad_credentials").Inc()
		return nil, NewUnauthorizedError("invalid email or password")
	}

	return user, nil
}

func (s *AuthService) newSession(user *models.User) (*Session, error) {
	token, err := s.tokens.IssueToken(user.ID, user.Email)
	if err != nil {
		return nil, NewInternalError("failed to issue session token", err)
	}

	return &Session{
		User:      user,
		Token:     token,
		ExpiresAt: time.Now().Add(s.tokens.TTL()),
	}, nil
}
