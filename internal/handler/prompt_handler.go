package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"invoflow/internal/port"
	"invoflow/internal/service"
)

// PromptHandler handles prompt management endpoints.
type PromptHandler struct {
	promptService service.PromptService
}

// NewPromptHandler creates a new PromptHandler.
func NewPromptHandler(promptService service.PromptService) *PromptHandler {
	return &PromptHandler{promptService: promptService}
}

// CreatePromptRequest is the body for POST /api/v1/prompts.
type CreatePromptRequest struct {
	VendorID   *uuid.UUID `json:"vendor_id"`
	Name       string     `json:"name" binding:"required"`
	Text       string     `json:"text" binding:"required"`
	IsTemplate bool       `json:"is_template"`
	CreatedBy  string     `json:"created_by"`
}

// RevisePromptRequest is the body for PUT /api/v1/prompts/:id.
type RevisePromptRequest struct {
	Text      string `json:"text" binding:"required"`
	CreatedBy string `json:"created_by"`
}

// Create handles POST /api/v1/prompts
func (h *PromptHandler) Create(c *gin.Context) {
	var req CreatePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	prompt, err := h.promptService.Create(c.Request.Context(), service.CreatePromptInput{
		VendorID:   req.VendorID,
		Name:       req.Name,
		Text:       req.Text,
		IsTemplate: req.IsTemplate,
		CreatedBy:  req.CreatedBy,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, prompt)
}

// Revise handles PUT /api/v1/prompts/:id. Editing never mutates the stored
// version; it creates and returns a new one linked to its parent.
func (h *PromptHandler) Revise(c *gin.Context) {
	parentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid prompt ID")
		return
	}

	var req RevisePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	revision, err := h.promptService.Revise(c.Request.Context(), parentID, req.Text, req.CreatedBy)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, revision)
}

// List handles GET /api/v1/prompts
func (h *PromptHandler) List(c *gin.Context) {
	var filter port.PromptFilter

	if s := c.Query("vendor_id"); s != "" {
		vendorID, err := uuid.Parse(s)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid vendor_id filter")
			return
		}
		filter.VendorID = &vendorID
	}
	if s := c.Query("is_active"); s != "" {
		active := s == "true"
		filter.IsActive = &active
	}
	if s := c.Query("is_template"); s != "" {
		template := s == "true"
		filter.IsTemplate = &template
	}

	prompts, err := h.promptService.List(c.Request.Context(), filter)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, prompts)
}

// GetByID handles GET /api/v1/prompts/:id
func (h *PromptHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid prompt ID")
		return
	}

	prompt, err := h.promptService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, prompt)
}

// History handles GET /api/v1/prompts/:id/history
func (h *PromptHandler) History(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid prompt ID")
		return
	}

	chain, err := h.promptService.History(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, chain)
}

// Activate handles POST /api/v1/prompts/:id/activate
func (h *PromptHandler) Activate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid prompt ID")
		return
	}

	prompt, err := h.promptService.Activate(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, prompt)
}

// Delete handles DELETE /api/v1/prompts/:id
func (h *PromptHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid prompt ID")
		return
	}

	if err := h.promptService.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"deleted": true})
}

// ActiveForVendor handles GET /api/v1/vendors/:id/active-prompt
func (h *PromptHandler) ActiveForVendor(c *gin.Context) {
	vendorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid vendor ID")
		return
	}

	prompt, err := h.promptService.ActiveForVendor(c.Request.Context(), vendorID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, prompt)
}
