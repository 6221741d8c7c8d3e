// internal/services/user_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/fashion-storefront/internal/models"
)

// UserService is the credential store for customer and admin accounts.
type UserService struct {
	db *gorm.DB
}

type CreateUserParams struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Role     models.Role
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{
		db: db,
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("user not found")
		}
		return nil, NewInternalError("failed to load user", err)
	}
	return &user, nil
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("user not found")
		}
		return nil, NewInternalError("failed to load user", err)
	}
	return &user, nil
}

func (s *UserService) CreateUser(ctx context.Context, params CreateUserParams) (*models.User, error) {
	user := &models.User{
		Name:  strings.TrimSpace(params.Name),
		Email: NormalizeEmail(params.Email),
		Role:  params.Role,
	}
	if user.Role == "" {
		user.Role = models.RoleCustomer
	}
	if phone := strings.TrimSpace(params.Phone); phone != "" {
		user.Phone = &phone
	}

	if err := user.SetPassword(params.Password); err != nil {
		return nil, NewInternalError("failed to hash password", err)
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, NewConflictError("user with this email already exists", err)
		}
		return nil, NewInternalError("failed to create user", err)
	}

	return user, nil
}

// EnsureAdmin creates an admin account, or promotes an existing account and
// resets its password. Used for out-of-band provisioning.
func (s *UserService) EnsureAdmin(ctx context.Context, params CreateUserParams) (*models.User, bool, error) {
	existing, err := s.GetUserByEmail(ctx, params.Email)
	if err != nil && !IsKind(err, KindNotFound) {
		return nil, false, err
	}

	if existing == nil {
		params.Role = models.RoleAdmin
		user, err := s.CreateUser(ctx, params)
		if err != nil {
			return nil, false, err
		}
		logrus.WithField("user_id", user.ID).Info("Admin account created")
		return user, true, nil
	}

	if err := existing.SetPassword(params.Password); err != nil {
		return nil, false, NewInternalError("failed to hash password", err)
	}
	existing.Role = models.RoleAdmin
	if name := strings.TrimSpace(params.Name); name != "" {
		existing.Name = name
	}

	if err := s.db.WithContext(ctx).Save(existing).Error; err != nil {
		return nil, false, NewInternalError(fmt.Sprintf("failed to promote user %d", existing.ID), err)
	}

	logrus.WithField("user_id", existing.ID).Info("Existing account promoted to admin")
	return existing, false, nil
}
