package utils

// API error codes carried in the response envelope.
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeConflict          = "CONFIRMATION_REQUIRED"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeInvalidToken      = "INVALID_TOKEN"
	CodeInvalidCredential = "INVALID_CREDENTIALS"
	CodeAccountInactive   = "ACCOUNT_INACTIVE"
	CodeRateLimited       = "RATE_LIMITED"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeUploadFailed      = "UPLOAD_FAILED"
	CodeInternal          = "INTERNAL_ERROR"
)
