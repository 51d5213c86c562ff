package handler_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"invoflow/internal/domain"
	"invoflow/internal/handler"
)

func TestMapDomainError(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"vendor not found", domain.ErrVendorNotFound, http.StatusNotFound, "VENDOR_NOT_FOUND"},
		{"prompt not found", domain.ErrPromptNotFound, http.StatusNotFound, "PROMPT_NOT_FOUND"},
		{"prompt text empty", domain.ErrPromptTextEmpty, http.StatusBadRequest, "PROMPT_TEXT_EMPTY"},
		{"template has vendor", domain.ErrTemplateHasVendor, http.StatusBadRequest, "TEMPLATE_HAS_VENDOR"},
		{"prompt in use", domain.ErrPromptInUse, http.StatusConflict, "PROMPT_IN_USE"},
		{"invalid activation target", domain.ErrInvalidActivationTarget, http.StatusConflict, "INVALID_ACTIVATION_TARGET"},
		{"no active prompt", domain.ErrNoActivePrompt, http.StatusConflict, "NO_ACTIVE_PROMPT"},
		{"unsupported file type", domain.ErrUnsupportedFileType, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE"},
		{"file too large", domain.ErrFileTooLarge, http.StatusBadRequest, "FILE_TOO_LARGE"},
		{"unsupported document", domain.ErrUnsupportedDocument, http.StatusBadRequest, "UNSUPPORTED_DOCUMENT"},
		{"content expired", domain.ErrContentExpired, http.StatusNotFound, "CONTENT_EXPIRED"},
		{"upload failed", domain.ErrUploadFailed, http.StatusInternalServerError, "UPLOAD_FAILED"},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, code, _ := handler.MapDomainError(tc.err)
			assert.Equal(t, tc.wantStatus, status)
			assert.Equal(t, tc.wantCode, code)
		})
	}
}

func TestMapDomainError_WrappedErrorsStillMatch(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), domain.ErrNoActivePrompt)
	status, code, _ := handler.MapDomainError(wrapped)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "NO_ACTIVE_PROMPT", code)
}
