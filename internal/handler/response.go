package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"invoflow/internal/domain"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// MissingConcepts is set for prompt validation failures.
	MissingConcepts []string `json:"missing_concepts,omitempty"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "VALIDATION_ERROR", "invalid request"
	case errors.Is(err, domain.ErrVendorNotFound):
		return http.StatusNotFound, "VENDOR_NOT_FOUND", "vendor not found"
	case errors.Is(err, domain.ErrPromptNotFound):
		return http.StatusNotFound, "PROMPT_NOT_FOUND", "prompt not found"
	case errors.Is(err, domain.ErrPromptTextEmpty):
		return http.StatusBadRequest, "PROMPT_TEXT_EMPTY", "prompt text must not be empty"
	case errors.Is(err, domain.ErrTemplateHasVendor):
		return http.StatusBadRequest, "TEMPLATE_HAS_VENDOR", "template prompts cannot be vendor-scoped"
	case errors.Is(err, domain.ErrPromptInUse):
		return http.StatusConflict, "PROMPT_IN_USE", "prompt is active and cannot be deleted; activate another version first"
	case errors.Is(err, domain.ErrInvalidActivationTarget):
		return http.StatusConflict, "INVALID_ACTIVATION_TARGET", "prompt cannot be activated; it is missing, deleted, or not bound to a vendor"
	case errors.Is(err, domain.ErrNoActivePrompt):
		return http.StatusConflict, "NO_ACTIVE_PROMPT", "vendor has no active extraction prompt; activate one before uploading invoices"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: pdf, html"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusBadRequest, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrUnsupportedDocument):
		return http.StatusBadRequest, "UNSUPPORTED_DOCUMENT", "the document could not be parsed"
	case errors.Is(err, domain.ErrContentExpired):
		return http.StatusNotFound, "CONTENT_EXPIRED", "uploaded document content has expired; upload the document again"
	case errors.Is(err, domain.ErrUploadFailed):
		return http.StatusInternalServerError, "UPLOAD_FAILED", "file upload to storage failed"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] internal error: %v", requestID, err)
	}
	RespondError(c, status, code, msg)
}
