// internal/tests/catalog_test.go
package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
)

type CatalogTestSuite struct {
	StorefrontSuite
}

func (suite *CatalogTestSuite) TestPublicCatalogReads() {
	admin := suite.adminSession()
	dresses := suite.createCategory(admin, "Summer Dresses")
	suite.Equal("summer-dresses", dresses.Slug)
	suite.createProduct(admin, "Linen Dress", 89.5, 4, &dresses.ID)
	suite.createProduct(admin, "Canvas Tote", 25, 10, nil)

	w := suite.do(http.MethodGet, "/products", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var products []productJSON
	suite.decode(w, &products)
	suite.Len(products, 2)

	w = suite.do(http.MethodGet, "/products?category=summer%20dresses", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.decode(w, &products)
	suite.Require().Len(products, 1)
	suite.Equal("Linen Dress", products[0].Name)
	suite.Equal(89.5, products[0].Price)
	suite.Require().NotNil(products[0].Category)
	suite.Equal("Summer Dresses", *products[0].Category)

	w = suite.do(http.MethodGet, fmt.Sprintf("/categories/%d", dresses.ID), nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var category categoryJSON
	suite.decode(w, &category)
	suite.Equal(int64(1), category.ProductCount)

	w = suite.do(http.MethodGet, "/products/9999", nil)
	suite.Equal(http.StatusNotFound, w.Code)
	w = suite.do(http.MethodGet, "/products/abc", nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *CatalogTestSuite) TestMutationsRequireAdmin() {
	body := gin.H{"name": "Scarf", "price": 10, "stock": 1}

	w := suite.do(http.MethodPost, "/products", body)
	suite.Equal(http.StatusUnauthorized, w.Code)

	_, customer := suite.customerSession("shopper@example.com")
	w = suite.do(http.MethodPost, "/products", body, customer)
	suite.Equal(http.StatusUnauthorized, w.Code, "customer cookies never reach admin routes")

	w = suite.do(http.MethodPost, "/products", body, &http.Cookie{Name: "admin-token", Value: customer.Value})
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.do(http.MethodDelete, "/categories/1", nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *CatalogTestSuite) TestUpdateProduct() {
	admin := suite.adminSession()
	product := suite.createProduct(admin, "Denim Jacket", 120, 3, nil)

	w := suite.do(http.MethodPut, fmt.Sprintf("/products/%d", product.ID), gin.H{"price": 99.99, "stock": 8}, admin)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var updated productJSON
	suite.decode(w, &updated)
	suite.Equal("Denim Jacket", updated.Name)
	suite.Equal(99.99, updated.Price)
	suite.Equal(8, updated.Stock)

	w = suite.do(http.MethodPut, fmt.Sprintf("/products/%d", product.ID), gin.H{"stock": -1}, admin)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("VALIDATION_ERROR", suite.errorCode(w))

	missing := 4242
	w = suite.do(http.MethodPut, fmt.Sprintf("/products/%d", product.ID), gin.H{"categoryId": missing}, admin)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *CatalogTestSuite) TestDuplicateCategorySlugIsRejected() {
	admin := suite.adminSession()
	first := suite.createCategory(admin, "New Arrivals")

	w := suite.do(http.MethodPost, "/categories", gin.H{"name": "new   arrivals"}, admin)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("CONFLICT", suite.errorCode(w))

	w = suite.do(http.MethodGet, fmt.Sprintf("/categories/%d", first.ID), nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var category categoryJSON
	suite.decode(w, &category)
	suite.Equal("New Arrivals", category.Name)
}

func (suite *CatalogTestSuite) TestCategoryDeleteIsBlockedWhileProductsReferenceIt() {
	admin := suite.adminSession()
	category := suite.createCategory(admin, "Bags")
	product := suite.createProduct(admin, "Tote", 30, 2, &category.ID)
	path := fmt.Sprintf("/categories/%d", category.ID)

	w := suite.do(http.MethodDelete, path, nil, admin)
	suite.Equal(http.StatusBadRequest, w.Code)
	resp := suite.decode(w, nil)
	suite.Require().NotNil(resp.Error)
	suite.Equal("DEPENDENCY_ERROR", resp.Error.Code)
	suite.Contains(resp.Error.Message, "1 product")
	suite.JSONEq(`{"productCount":1}`, string(resp.Error.Details))

	w = suite.do(http.MethodGet, path, nil)
	suite.Equal(http.StatusOK, w.Code, "category remains")

	w = suite.do(http.MethodDelete, fmt.Sprintf("/products/%d", product.ID), nil, admin)
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.do(http.MethodDelete, path, nil, admin)
	suite.Equal(http.StatusOK, w.Code)
	w = suite.do(http.MethodGet, path, nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *CatalogTestSuite) TestAdminMutationsAreAudited() {
	admin := suite.adminSession()
	suite.createProduct(admin, "Silk Scarf", 45, 6, nil)
	suite.do(http.MethodPost, "/auth/signup", gin.H{"name": "X", "email": "x@example.com", "password": "secret123"})

	w := suite.do(http.MethodGet, "/admin/audit-logs?resourceType=products", nil, admin)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Equal("1", w.Header().Get("X-Total-Count"))

	var logs []struct {
		Action       string                 `json:"action"`
		ResourceType string                 `json:"resourceType"`
		StatusCode   int                    `json:"statusCode"`
		UserID       *uint                  `json:"userId"`
		NewValues    map[string]interface{} `json:"newValues"`
	}
	suite.decode(w, &logs)
	suite.Require().Len(logs, 1)
	suite.Equal("POST /products", logs[0].Action)
	suite.Equal(http.StatusCreated, logs[0].StatusCode)
	suite.NotNil(logs[0].UserID)
	suite.Equal("Silk Scarf", logs[0].NewValues["name"])

	w = suite.do(http.MethodGet, "/admin/audit-logs", nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *CatalogTestSuite) TestImageUpload() {
	admin := suite.adminSession()
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "look.png")
	suite.Require().NoError(err)
	_, err = part.Write(png)
	suite.Require().NoError(err)
	suite.Require().NoError(writer.Close())

	req, _ := http.NewRequest(http.MethodPost, "/uploads", bytes.NewReader(body.Bytes()))
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.AddCookie(admin)
	w := suite.serve(req)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var result struct {
		ImageURL string `json:"imageUrl"`
		Key      string `json:"key"`
	}
	suite.decode(w, &result)
	suite.True(strings.HasPrefix(result.ImageURL, "http://localhost:8080/uploads/images/"))

	w = suite.do(http.MethodGet, "/uploads/"+result.Key, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(png, w.Body.Bytes())

	req, _ = http.NewRequest(http.MethodPost, "/uploads", bytes.NewReader(body.Bytes()))
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w = suite.serve(req)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *CatalogTestSuite) TestDashboardStats() {
	admin := suite.adminSession()
	suite.createProduct(admin, "Anklet", 15, 2, nil)

	w := suite.do(http.MethodGet, "/admin/stats", nil, admin)
	suite.Require().Equal(http.StatusOK, w.Code)

	var stats map[string]json.RawMessage
	suite.decode(w, &stats)
	suite.JSONEq("1", string(stats["totalProducts"]))
	suite.JSONEq("0", string(stats["totalOrders"]))
}

func (suite *CatalogTestSuite) TestHealthAndMetrics() {
	w := suite.do(http.MethodGet, "/health", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "healthy")

	w = suite.do(http.MethodGet, "/metrics", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "http_requests_total")
}

func TestCatalogSuite(t *testing.T) {
	suite.Run(t, new(CatalogTestSuite))
}
