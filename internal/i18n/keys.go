// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	KeyInternalError = "error.internal"
	KeyRateLimited   = "error.rate_limited"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthLogoutSuccess      = "auth.logout_success"
	KeyAuthRegisterSuccess    = "auth.register_success"
	KeyAdminAccessDenied      = "admin.access_denied"

	// Catalog
	KeyProductNotFound   = "product.not_found"
	KeyProductDeleted    = "product.deleted"
	KeyCategoryNotFound  = "category.not_found"
	KeyCategoryDeleted   = "category.deleted"
	KeyCategoryInUse     = "category.in_use"
	KeyCategorySlugTaken = "category.slug_taken"
	KeyCategorySlugEmpty = "category.slug_empty"

	// Orders
	KeyOrderNotFound          = "order.not_found"
	KeyOrderMissingFields     = "order.missing_fields"
	KeyOrderTotalsMismatch    = "order.totals_mismatch"
	KeyOrderInsufficientStock = "order.insufficient_stock"

	// Validation
	KeyValidationInvalid = "validation.invalid"

	// File Upload
	KeyFileUploadSuccess = "file.upload_success"
	KeyFileMissing       = "file.missing"
)
