package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xyz-asif/mangrovewatch/pkg/errors"
)

// APIResponse is the envelope every endpoint answers with
type APIResponse struct {
	Success    bool        `json:"success" example:"true"`
	StatusCode int         `json:"statusCode" example:"200"`
	Message    string      `json:"message,omitempty" example:"ok"`
	Code       string      `json:"code,omitempty" example:"VALIDATION_FAILED"`
	Data       interface{} `json:"data,omitempty"`
}

// PageData is the data payload of a paginated list
type PageData struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total" example:"25"`
	Limit int         `json:"limit" example:"10"`
	Page  int         `json:"page" example:"1"`
}

// Success sends a 200 OK response with data
func Success(c *gin.Context, data interface{}, message ...string) {
	c.JSON(http.StatusOK, APIResponse{
		Success:    true,
		StatusCode: http.StatusOK,
		Message:    first(message),
		Data:       data,
	})
}

// Created sends a 201 Created response
func Created(c *gin.Context, data interface{}, message ...string) {
	c.JSON(http.StatusCreated, APIResponse{
		Success:    true,
		StatusCode: http.StatusCreated,
		Message:    first(message),
		Data:       data,
	})
}

// Paginated sends a paginated response
func Paginated(c *gin.Context, items interface{}, total int64, limit int, page int) {
	Success(c, PageData{
		Items: items,
		Total: total,
		Limit: limit,
		Page:  page,
	})
}

// Error sends an error response with custom status code and message
func Error(c *gin.Context, statusCode int, message string, errorCode ...string) {
	c.JSON(statusCode, APIResponse{
		Success:    false,
		StatusCode: statusCode,
		Message:    message,
		Code:       first(errorCode),
	})
}

// ErrorWithData sends an error response that carries extra data
func ErrorWithData(c *gin.Context, statusCode int, message, errorCode string, data interface{}) {
	c.JSON(statusCode, APIResponse{
		Success:    false,
		StatusCode: statusCode,
		Message:    message,
		Code:       errorCode,
		Data:       data,
	})
}

// BadRequest sends a 400 Bad Request error
func BadRequest(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusBadRequest, message, errorCode...)
}

// Unauthorized sends a 401 Unauthorized error
func Unauthorized(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusUnauthorized, message, errorCode...)
}

// Forbidden sends a 403 Forbidden error
func Forbidden(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusForbidden, message, errorCode...)
}

// NotFound sends a 404 Not Found error
func NotFound(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusNotFound, message, errorCode...)
}

// Conflict sends a 409 Conflict error
func Conflict(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusConflict, message, errorCode...)
}

// ValidationError sends a 422 Unprocessable Entity error
func ValidationError(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusUnprocessableEntity, message, errorCode...)
}

// InternalServerError sends a 500 Internal Server Error
func InternalServerError(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusInternalServerError, message, errorCode...)
}

// BindJSONError handles JSON decode errors in request body
func BindJSONError(c *gin.Context, err error) {
	BadRequest(c, "Invalid request format", "INVALID_JSON")
}

// FromError writes the response matching err's place in the error taxonomy.
func FromError(c *gin.Context, err error) {
	var (
		validationErr *apperrors.ValidationError
		transitionErr *apperrors.IllegalTransitionError
		identityErr   *apperrors.IdentityServiceError
	)

	switch {
	case errors.As(err, &validationErr):
		ValidationError(c, validationErr.Error(), "VALIDATION_FAILED")
	case errors.Is(err, apperrors.ErrAuthentication):
		Unauthorized(c, err.Error(), "AUTH_FAILED")
	case errors.Is(err, apperrors.ErrAuthorization):
		Forbidden(c, "You are not allowed to perform this action", "FORBIDDEN")
	case errors.As(err, &transitionErr):
		Conflict(c, transitionErr.Error(), "ILLEGAL_TRANSITION")
	case errors.Is(err, apperrors.ErrConflict):
		Conflict(c, "The resource was changed by another request, reload and retry", "STALE_REPORT")
	case errors.Is(err, apperrors.ErrDuplicate):
		Conflict(c, "Resource already exists", "DUPLICATE")
	case errors.Is(err, apperrors.ErrNotFound):
		NotFound(c, "Resource not found", "NOT_FOUND")
	case errors.As(err, &identityErr):
		Error(c, http.StatusBadGateway, identityErr.Error(), "IDENTITY_SERVICE")
	default:
		InternalServerError(c, "Internal server error", "INTERNAL")
	}
}

func first(values []string) string {
	if len(values) > 0 {
		return values[0]
	}
	return ""
}
