// internal/services/auth_service_test.go
package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/javajoker/fashion-storefront/internal/models"
	"github.com/javajoker/fashion-storefront/internal/utils"
)

type AuthServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *AuthService
	ctx     context.Context
}

func (s *AuthServiceTestSuite) SetupTest() {
	utils.SetBcryptCost(utils.MinBcryptCost)
	s.db = newTestDB(s.T())
	tokens := utils.NewTokenManager("test-secret", utils.DefaultTokenTTL)
	s.service = NewAuthService(NewUserService(s.db), tokens, NewDBRevoker(s.db))
	s.ctx = context.Background()
}

func (s *AuthServiceTestSuite) TestSignupStoresHashedPassword() {
	user, err := s.service.Signup(s.ctx, &SignupRequest{
		Name:     "Ava",
		Email:    "Ava@Example.com",
		Password: "secret123",
	})
	s.Require().NoError(err)

	s.Equal("ava@example.com", user.Email)
	s.Equal(models.RoleCustomer, user.Role)
	s.NotEqual("secret123", user.PasswordHash)
	s.True(utils.VerifySecret("secret123", user.PasswordHash))
}

func (s *AuthServiceTestSuite) TestSignupRejectsDuplicateEmail() {
	seedUser(s.T(), s.db, "ava@example.com", "secret123", models.RoleCustomer)

	_, err := s.service.Signup(s.ctx, &SignupRequest{Name: "Ava", Email: "AVA@example.com", Password: "another1"})
	s.True(IsKind(err, KindConflict))
}

func (s *AuthServiceTestSuite) TestSignupValidatesInput() {
	_, err := s.service.Signup(s.ctx, &SignupRequest{Name: "Ava", Email: "not-an-email", Password: "123"})

	var appErr *AppError
	s.Require().ErrorAs(err, &appErr)
	s.Equal(KindValidation, appErr.Kind)
	s.Zero(countRows(s.T(), s.db, &models.User{}))
}

func (s *AuthServiceTestSuite) TestLoginIssuesVerifiableSession() {
	user := seedUser(s.T(), s.db, "ben@example.com", "secret123", models.RoleCustomer)

	session, err := s.service.Login(s.ctx, &LoginRequest{Email: "ben@example.com", Password: "secret123"})
	s.Require().NoError(err)
	s.Equal(user.ID, session.User.ID)
	s.WithinDuration(time.Now().Add(utils.DefaultTokenTTL), session.ExpiresAt, time.Minute)

	authenticated, err := s.service.Authenticate(s.ctx, session.Token)
	s.Require().NoError(err)
	s.Equal(user.ID, authenticated.ID)
}

func (s *AuthServiceTestSuite) TestLoginRejectsBadCredentials() {
	seedUser(s.T(), s.db, "ben@example.com", "secret123", models.RoleCustomer)

	_, err := s.service.Login(s.ctx, &LoginRequest{Email: "ben@example.com", Password: "wrong-password"})
	s.True(IsKind(err, KindUnauthorized))

	_, err = s.service.Login(s.ctx, &LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	s.True(IsKind(err, KindUnauthorized))
}

func (s *AuthServiceTestSuite) TestAdminLoginRequiresAdminRole() {
	seedUser(s.T(), s.db, "customer@example.com", "secret123", models.RoleCustomer)
	seedUser(s.T(), s.db, "admin@example.com", "secret123", models.RoleAdmin)

	_, err := s.service.AdminLogin(s.ctx, &LoginRequest{Email: "customer@example.com", Password: "secret123"})
	s.True(IsKind(err, KindForbidden))

	_, err = s.service.AdminLogin(s.ctx, &LoginRequest{Email: "customer@example.com", Password: "wrong-password"})
	s.True(IsKind(err, KindUnauthorized), "a wrong password is reported before the role")

	session, err := s.service.AdminLogin(s.ctx, &LoginRequest{Email: "admin@example.com", Password: "secret123"})
	s.Require().NoError(err)

	admin, err := s.service.AuthenticateAdmin(s.ctx, session.Token)
	s.Require().NoError(err)
	s.True(admin.IsAdmin())
}

func (s *AuthServiceTestSuite) TestAuthenticateAdminRereadsRole() {
	user := seedUser(s.T(), s.db, "admin@example.com", "secret123", models.RoleAdmin)
	session, err := s.service.AdminLogin(s.ctx, &LoginRequest{Email: "admin@example.com", Password: "secret123"})
	s.Require().NoError(err)

	s.Require().NoError(s.db.Model(user).Update("role", models.RoleCustomer).Error)

	_, err = s.service.AuthenticateAdmin(s.ctx, session.Token)
	s.True(IsKind(err, KindForbidden))
}

func (s *AuthServiceTestSuite) TestLogoutRevokesToken() {
	seedUser(s.T(), s.db, "ben@example.com", "secret123", models.RoleCustomer)
	session, err := s.service.Login(s.ctx, &LoginRequest{Email: "ben@example.com", Password: "secret123"})
	s.Require().NoError(err)

	s.Require().NoError(s.service.Logout(s.ctx, session.Token))
	s.Require().NoError(s.service.Logout(s.ctx, session.Token), "logging out twice is harmless")
	s.NoError(s.service.Logout(s.ctx, "garbage"))

	_, err = s.service.Authenticate(s.ctx, session.Token)
	s.True(IsKind(err, KindUnauthorized))
}

func (s *AuthServiceTestSuite) TestAuthenticateRejectsDeletedUser() {
	user := seedUser(s.T(), s.db, "ben@example.com", "secret123", models.RoleCustomer)
	session, err := s.service.Login(s.ctx, &LoginRequest{Email: "ben@example.com", Password: "secret123"})
	s.Require().NoError(err)

	s.Require().NoError(s.db.Delete(&models.User{}, user.ID).Error)

	_, err = s.service.Authenticate(s.ctx, session.Token)
	s.True(IsKind(err, KindUnauthorized))

	_, err = s.service.Authenticate(s.ctx, "")
	s.True(IsKind(err, KindUnauthorized))
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
