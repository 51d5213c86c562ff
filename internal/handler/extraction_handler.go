package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"invoflow/internal/domain"
	"invoflow/internal/service"
)

// ExtractionHandler handles the test and production extraction endpoints.
type ExtractionHandler struct {
	extractionService service.ExtractionService
}

// NewExtractionHandler creates a new ExtractionHandler.
func NewExtractionHandler(extractionService service.ExtractionService) *ExtractionHandler {
	return &ExtractionHandler{extractionService: extractionService}
}

// TestRunRequest is the body for POST /api/v1/prompts/:id/test-run.
type TestRunRequest struct {
	PromptText string `json:"prompt_text" binding:"required"`
	TempFileID string `json:"temp_file_id" binding:"required"`
}

// kindStatus maps a classified extraction failure to its HTTP status.
var kindStatus = map[domain.ErrorKind]int{
	domain.KindPromptValidationFailed:  http.StatusBadRequest,
	domain.KindExpiredOrMissingContent: http.StatusNotFound,
	domain.KindUnsupportedDocument:     http.StatusBadRequest,
	domain.KindUpstreamExtractionFail:  http.StatusBadGateway,
	domain.KindDuplicateDetected:       http.StatusConflict,
}

// TestUpload handles POST /api/v1/prompts/:id/test-upload. The prompt id
// routes the UI; the upload itself is prompt-agnostic, the text is cached
// for whatever prompt text the operator tries next.
func (h *ExtractionHandler) TestUpload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	session, err := h.extractionService.TestUpload(c.Request.Context(), file, header)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, gin.H{
		"temp_file_id":      session.TempFileID,
		"file_name":         session.FileName,
		"document_type":     session.DocumentType,
		"extracted_content": session.ExtractedContent,
		"text_length":       len(session.ExtractedContent),
	})
}

// TestRun handles POST /api/v1/prompts/:id/test-run
func (h *ExtractionHandler) TestRun(c *gin.Context) {
	var req TestRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	result, err := h.extractionService.RunTest(c.Request.Context(), req.PromptText, req.TempFileID)
	if err != nil {
		HandleError(c, err)
		return
	}

	respondExtraction(c, result)
}

// Upload handles POST /api/v1/invoices/upload
func (h *ExtractionHandler) Upload(c *gin.Context) {
	vendorID, err := uuid.Parse(c.PostForm("vendor_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "vendor_id form field must be a valid UUID")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	result, err := h.extractionService.RunProduction(c.Request.Context(), vendorID, file, header)
	if err != nil {
		HandleError(c, err)
		return
	}

	respondExtraction(c, result)
}

// respondExtraction writes the uniform extraction envelope. Failures keep
// the envelope as the data payload so callers still see what was extracted,
// duplicate rejections included.
func respondExtraction(c *gin.Context, result *domain.ExtractionResult) {
	if result.Success {
		RespondOK(c, result)
		return
	}

	status := http.StatusInternalServerError
	apiErr := &APIError{Code: "EXTRACTION_FAILED", Message: "extraction failed"}
	if result.Error != nil {
		if s, ok := kindStatus[result.Error.Kind]; ok {
			status = s
		}
		apiErr = &APIError{
			Code:            strings.ToUpper(string(result.Error.Kind)),
			Message:         result.Error.Message,
			MissingConcepts: result.Error.MissingConcepts,
		}
	}

	c.JSON(status, APIResponse{
		Success: false,
		Data:    result,
		Error:   apiErr,
	})
}
