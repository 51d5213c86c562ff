package router

import (
	"github.com/gin-gonic/gin"

	"invoflow/internal/handler"
	"invoflow/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	allowedOrigins []string,
	vendorH *handler.VendorHandler,
	promptH *handler.PromptHandler,
	extractionH *handler.ExtractionHandler,
	invoiceH *handler.InvoiceHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Vendor registry
	vendors := v1.Group("/vendors")
	vendors.POST("", vendorH.Create)
	vendors.GET("", vendorH.List)
	vendors.GET("/:id", vendorH.GetByID)
	vendors.GET("/:id/active-prompt", promptH.ActiveForVendor)

	// Prompt store and test workflow
	prompts := v1.Group("/prompts")
	prompts.POST("", promptH.Create)
	prompts.GET("", promptH.List)
	prompts.GET("/:id", promptH.GetByID)
	prompts.PUT("/:id", promptH.Revise)
	prompts.DELETE("/:id", promptH.Delete)
	prompts.GET("/:id/history", promptH.History)
	prompts.POST("/:id/activate", promptH.Activate)
	prompts.POST("/:id/test-upload", extractionH.TestUpload)
	prompts.POST("/:id/test-run", extractionH.TestRun)

	// Production invoice ingestion and review
	invoices := v1.Group("/invoices")
	invoices.POST("/upload", extractionH.Upload)
	invoices.GET("", invoiceH.List)
	invoices.GET("/review-queue", invoiceH.ReviewQueue)
	invoices.GET("/:id", invoiceH.GetByID)
	invoices.GET("/:id/file", invoiceH.DownloadFile)

	return r
}
