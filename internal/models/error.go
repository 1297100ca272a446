package models

// APIError represents a standardized error response for the API
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error code constants
const (
	// General errors
	ErrBadRequest       = "BAD_REQUEST"
	ErrUnauthorized     = "UNAUTHORIZED"
	ErrForbidden        = "FORBIDDEN"
	ErrNotFound         = "NOT_FOUND"
	ErrConflict         = "CONFLICT"
	ErrInternalServer   = "INTERNAL_SERVER_ERROR"
	ErrValidationFailed = "VALIDATION_FAILED"
	ErrTooManyRequests  = "TOO_MANY_REQUESTS"

	// Kitchen-specific errors
	ErrCookNotFound       = "COOK_NOT_FOUND"
	ErrDishNotFound       = "DISH_NOT_FOUND"
	ErrDishTypeNotFound   = "DISH_TYPE_NOT_FOUND"
	ErrIngredientNotFound = "INGREDIENT_NOT_FOUND"
	ErrPageNotFound       = "PAGE_NOT_FOUND"
	ErrSentinelProtected  = "SENTINEL_DISH_TYPE_PROTECTED"
	ErrInvalidCredentials = "INVALID_CREDENTIALS"
	ErrSessionExpired     = "SESSION_EXPIRED"
)

// NewAPIError creates a new API error with the given code and message
func NewAPIError(code, message string, details ...map[string]interface{}) APIError {
	err := APIError{
		Code:    code,
		Message: message,
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}
