// internal/tests/suite_test.go
package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/javajoker/fashion-storefront/internal/config"
	"github.com/javajoker/fashion-storefront/internal/database"
	"github.com/javajoker/fashion-storefront/internal/i18n"
	"github.com/javajoker/fashion-storefront/internal/models"
	"github.com/javajoker/fashion-storefront/internal/router"
	"github.com/javajoker/fashion-storefront/internal/services"
	"github.com/javajoker/fashion-storefront/internal/utils"
)

const testPassword = "secret123"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
	Meta json.RawMessage `json:"meta"`
}

// StorefrontSuite runs the real router against a fresh in-memory database
// for every test.
type StorefrontSuite struct {
	suite.Suite
	db     *gorm.DB
	cfg    *config.Config
	router *router.Router
}

func (s *StorefrontSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	s.Require().NoError(i18n.Initialize("en"))
}

func (s *StorefrontSuite) SetupTest() {
	db, err := database.NewInMemory()
	s.Require().NoError(err)
	s.db = db

	s.cfg = testConfig(s.T().TempDir())
	s.router, err = router.Initialize(db, s.cfg, router.Dependencies{})
	s.Require().NoError(err)
}

func (s *StorefrontSuite) TearDownTest() {
	s.NoError(s.router.Close(context.Background()))
	database.Close(s.db)
}

func testConfig(uploadDir string) *config.Config {
	cfg := &config.Config{Environment: "test"}
	cfg.JWT.SecretKey = "integration-test-secret"
	cfg.JWT.TokenTTL = utils.DefaultTokenTTL
	cfg.JWT.Issuer = "fashion-storefront"
	cfg.Security.BcryptCost = utils.MinBcryptCost
	cfg.Observability.MetricsEnabled = true
	cfg.Storage.UploadDir = uploadDir
	cfg.Storage.PublicBaseURL = "http://localhost:8080"
	cfg.Storage.MaxUploadSize = 5 << 20
	cfg.Shipping.FlatRate = "10"
	cfg.Shipping.FreeThreshold = "50"
	cfg.I18n.DefaultLocale = "en"
	cfg.Frontend.AllowedOrigins = []string{"http://localhost:3000"}
	return cfg
}

func (s *StorefrontSuite) do(method, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	return s.serve(s.newRequest(method, path, body, cookies...))
}

func (s *StorefrontSuite) doWithHeader(method, path string, body interface{}, header, value string) *httptest.ResponseRecorder {
	req := s.newRequest(method, path, body)
	req.Header.Set(header, value)
	return s.serve(req)
}

func (s *StorefrontSuite) newRequest(method, path string, body interface{}, cookies ...*http.Cookie) *http.Request {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	s.Require().NoError(err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func (s *StorefrontSuite) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *StorefrontSuite) decode(w *httptest.ResponseRecorder, data interface{}) envelope {
	var resp envelope
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	if data != nil && len(resp.Data) > 0 {
		s.Require().NoError(json.Unmarshal(resp.Data, data))
	}
	return resp
}

func (s *StorefrontSuite) errorCode(w *httptest.ResponseRecorder) string {
	resp := s.decode(w, nil)
	s.Require().NotNil(resp.Error, w.Body.String())
	s.False(resp.Success)
	return resp.Error.Code
}

func cookieNamed(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (s *StorefrontSuite) createUser(email string, role models.Role) *models.User {
	user, err := services.NewUserService(s.db).CreateUser(context.Background(), services.CreateUserParams{
		Name:     "Test " + string(role),
		Email:    email,
		Password: testPassword,
		Role:     role,
	})
	s.Require().NoError(err)
	return user
}

func (s *StorefrontSuite) login(path, email, cookie string) *http.Cookie {
	w := s.do(http.MethodPost, path, gin.H{"email": email, "password": testPassword})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	c := cookieNamed(w, cookie)
	s.Require().NotNil(c)
	return c
}

func (s *StorefrontSuite) customerSession(email string) (*models.User, *http.Cookie) {
	user := s.createUser(email, models.RoleCustomer)
	return user, s.login("/auth/login", email, "auth-token")
}

func (s *StorefrontSuite) adminSession() *http.Cookie {
	s.createUser("admin@example.com", models.RoleAdmin)
	return s.login("/auth/admin/login", "admin@example.com", "admin-token")
}

type productJSON struct {
	ID         uint    `json:"id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Stock      int     `json:"stock"`
	CategoryID *uint   `json:"categoryId"`
	Category   *string `json:"category"`
}

type categoryJSON struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	ProductCount int64  `json:"productCount"`
}

func (s *StorefrontSuite) createProduct(admin *http.Cookie, name string, price float64, stock int, categoryID *uint) productJSON {
	body := gin.H{"name": name, "price": price, "stock": stock}
	if categoryID != nil {
		body["categoryId"] = *categoryID
	}

	w := s.do(http.MethodPost, "/products", body, admin)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var product productJSON
	s.decode(w, &product)
	return product
}

func (s *StorefrontSuite) createCategory(admin *http.Cookie, name string) categoryJSON {
	w := s.do(http.MethodPost, "/categories", gin.H{"name": name}, admin)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var category categoryJSON
	s.decode(w, &category)
	return category
}

func (s *StorefrontSuite) productStock(id uint) int {
	var product models.Product
	s.Require().NoError(s.db.WithContext(context.Background()).First(&product, id).Error)
	return product.Stock
}
