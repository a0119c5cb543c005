package errors

// Error code constants.
// Format: CATEGORY_SPECIFIC_DETAIL
// Frontends map these codes to display messages.

const (
	// ==================== Auth (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND"
	AuthzAdminOnly    = "AUTHZ_ADMIN_ONLY"
	AuthzOwnerOnly    = "AUTHZ_OWNER_ONLY"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"
	ValidationInvalidGeo   = "VALIDATION_INVALID_GEO"
	ValidationInvalidRange = "VALIDATION_INVALID_RANGE"
	ValidationRequired     = "VALIDATION_REQUIRED"

	// ==================== Resource (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Merchant (MERCHANT_) ====================
	MerchantNotFound = "MERCHANT_NOT_FOUND"
	MerchantInactive = "MERCHANT_INACTIVE"

	// ==================== Deal (DEAL_) ====================
	DealNotFound        = "DEAL_NOT_FOUND"
	DealInactive        = "DEAL_INACTIVE"
	DealInvalidPricing  = "DEAL_INVALID_PRICING"
	DealInvalidWindow   = "DEAL_INVALID_WINDOW"
	DealInvalidInterval = "DEAL_INVALID_INTERVAL"
	DealNotRecurring    = "DEAL_NOT_RECURRING"

	// ==================== Claim (CLAIM_) ====================
	ClaimAlreadyClaimed = "CLAIM_ALREADY_CLAIMED"
	ClaimExhausted      = "CLAIM_EXHAUSTED"

	// ==================== Region gate (REGION_) ====================
	RegionUnknown  = "REGION_UNKNOWN"
	RegionDisabled = "REGION_DISABLED"

	// ==================== Upload (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
)
