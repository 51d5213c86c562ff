package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"invoflow/internal/config"
	"invoflow/internal/domain"
	"invoflow/internal/port"
	"invoflow/internal/service"
	"invoflow/mocks"
)

const validPromptText = "extract invoice_header and line_items including invoice_number and customer_name"

var sampleHTML = []byte("<!DOCTYPE html><html><body><p>Invoice INV-100 for Globex, total 250.00 USD</p></body></html>")

var samplePayload = json.RawMessage(`{
	"invoice_header": {
		"invoice_number": "INV-100",
		"customer_name": "Globex",
		"invoice_date": "2026-08-01",
		"currency": "USD",
		"subtotal_amount": 200,
		"tax_amount": 50,
		"total_amount": 250
	},
	"line_items": [
		{"description": "Widgets", "quantity": 10, "unit_price": 20, "total_amount": 200}
	]
}`)

type extractionFixture struct {
	cache    *mocks.MockDocumentCache
	text     *mocks.MockTextExtractor
	ai       *mocks.MockStructuredExtractor
	prompts  *mocks.MockPromptRepo
	invoices *mocks.MockInvoiceRepo
	vendors  *mocks.MockVendorRepo
	files    *mocks.MockFileMetaRepo
	storage  *mocks.MockObjectStorage
	svc      service.ExtractionService
}

func newExtractionFixture() *extractionFixture {
	f := &extractionFixture{
		cache:    new(mocks.MockDocumentCache),
		text:     new(mocks.MockTextExtractor),
		ai:       new(mocks.MockStructuredExtractor),
		prompts:  new(mocks.MockPromptRepo),
		invoices: new(mocks.MockInvoiceRepo),
		vendors:  new(mocks.MockVendorRepo),
		files:    new(mocks.MockFileMetaRepo),
		storage:  new(mocks.MockObjectStorage),
	}
	cfg := &config.Config{
		S3:        config.S3Config{Bucket: "test-bucket"},
		Cache:     config.CacheConfig{TTL: 5 * time.Minute},
		Extractor: config.ExtractorConfig{Provider: "claude", TimeoutSecs: 5},
		Guard: config.GuardConfig{
			ConfidenceThreshold: 0.7,
			DuplicateFields:     []string{"invoice_number", "total_amount"},
		},
		Upload: config.UploadConfig{MaxFileSizeMB: 10},
	}
	f.svc = service.NewExtractionService(
		f.cache, f.text, f.ai,
		f.prompts, f.invoices, f.vendors, f.files,
		f.storage, cfg,
	)
	return f
}

func makeUpload(t *testing.T, filename string, content []byte) (multipart.File, *multipart.FileHeader) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	file, header, err := req.FormFile("file")
	require.NoError(t, err)
	return file, header
}

func TestExtractionService_TestUpload_CachesExtractedText(t *testing.T) {
	f := newExtractionFixture()
	file, header := makeUpload(t, "invoice.html", sampleHTML)

	f.text.On("Extract", mock.Anything, mock.Anything, domain.DocumentTypeHTML).
		Return(&port.ExtractedText{Content: "Invoice INV-100 for Globex"}, nil)
	f.cache.On("Put", mock.Anything, mock.AnythingOfType("*domain.TestSession"), 5*time.Minute).
		Return(nil)

	session, err := f.svc.TestUpload(context.Background(), file, header)

	require.NoError(t, err)
	assert.Len(t, session.TempFileID, 32)
	assert.Equal(t, "Invoice INV-100 for Globex", session.ExtractedContent)
	assert.Equal(t, domain.DocumentTypeHTML, session.DocumentType)
	assert.Equal(t, "invoice.html", session.FileName)
	f.cache.AssertExpectations(t)
}

func TestExtractionService_TestUpload_RejectsUnsupportedExtension(t *testing.T) {
	f := newExtractionFixture()
	file, header := makeUpload(t, "invoice.docx", []byte("not a supported format"))

	_, err := f.svc.TestUpload(context.Background(), file, header)

	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
	f.text.AssertNotCalled(t, "Extract")
	f.cache.AssertNotCalled(t, "Put")
}

func TestExtractionService_TestUpload_RejectsMismatchedContent(t *testing.T) {
	f := newExtractionFixture()
	// .pdf extension but the bytes are HTML.
	file, header := makeUpload(t, "invoice.pdf", sampleHTML)

	_, err := f.svc.TestUpload(context.Background(), file, header)

	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
	f.text.AssertNotCalled(t, "Extract")
}

func TestExtractionService_TestUpload_RejectsOversizeFile(t *testing.T) {
	f := newExtractionFixture()
	big := bytes.Repeat([]byte("a"), 11*1024*1024)
	file, header := makeUpload(t, "invoice.html", big)

	_, err := f.svc.TestUpload(context.Background(), file, header)

	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
	f.text.AssertNotCalled(t, "Extract")
}

func TestExtractionService_RunTest_Succeeds(t *testing.T) {
	f := newExtractionFixture()
	session := &domain.TestSession{
		TempFileID:       "abc123",
		ExtractedContent: "Invoice INV-100 for Globex",
		DocumentType:     domain.DocumentTypeHTML,
	}
	f.cache.On("Get", mock.Anything, "abc123").Return(session, nil)
	f.ai.On("Extract", mock.Anything, mock.MatchedBy(func(in port.ExtractInput) bool {
		return in.PromptText == validPromptText && in.DocumentText == session.ExtractedContent
	})).Return(&port.ExtractOutput{Data: samplePayload, Confidence: 0.93}, nil)

	result, err := f.svc.RunTest(context.Background(), validPromptText, "abc123")

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "INV-100", result.ExtractedData.Header.InvoiceNumber)
	assert.Equal(t, "Globex", result.ExtractedData.Header.CustomerName)
	assert.Len(t, result.ExtractedData.LineItems, 1)
	assert.Equal(t, 0.93, result.ConfidenceScore)
	assert.False(t, result.LowConfidence)
}

func TestExtractionService_RunTest_MissingConceptsSkipAICall(t *testing.T) {
	f := newExtractionFixture()
	session := &domain.TestSession{TempFileID: "abc123", ExtractedContent: "some text"}
	f.cache.On("Get", mock.Anything, "abc123").Return(session, nil)

	result, err := f.svc.RunTest(context.Background(), "extract the totals", "abc123")

	require.NoError(t, err)
	assert.False(t, result.Success)
	require.NotNil(t, result.Error)
	assert.Equal(t, domain.KindPromptValidationFailed, result.Error.Kind)
	assert.Equal(t, []string{"line_items", "invoice_number", "customer_name"}, result.Error.MissingConcepts)
	f.ai.AssertNotCalled(t, "Extract")
}

func TestExtractionService_RunTest_ExpiredHandle(t *testing.T) {
	f := newExtractionFixture()
	f.cache.On("Get", mock.Anything, "stale").Return(nil, domain.ErrContentExpired)

	result, err := f.svc.RunTest(context.Background(), validPromptText, "stale")

	require.NoError(t, err)
	assert.False(t, result.Success)
	require.NotNil(t, result.Error)
	assert.Equal(t, domain.KindExpiredOrMissingContent, result.Error.Kind)
	f.ai.AssertNotCalled(t, "Extract")
}

func TestExtractionService_RunTest_UpstreamFailureSurfaced(t *testing.T) {
	f := newExtractionFixture()
	session := &domain.TestSession{TempFileID: "abc123", ExtractedContent: "some text"}
	f.cache.On("Get", mock.Anything, "abc123").Return(session, nil)
	f.ai.On("Extract", mock.Anything, mock.Anything).
		Return(nil, errors.New("model overloaded, try again later"))

	result, err := f.svc.RunTest(context.Background(), validPromptText, "abc123")

	require.NoError(t, err)
	assert.False(t, result.Success)
	require.NotNil(t, result.Error)
	assert.Equal(t, domain.KindUpstreamExtractionFail, result.Error.Kind)
	assert.Contains(t, result.Error.Message, "model overloaded")
	assert.Contains(t, result.Error.Message, "claude", "failure names the provider")
}

func TestExtractionService_RunTest_CacheBackendDownIsAnError(t *testing.T) {
	f := newExtractionFixture()
	f.cache.On("Get", mock.Anything, "abc123").
		Return(nil, errors.New("dial tcp 127.0.0.1:6379: connection refused"))

	result, err := f.svc.RunTest(context.Background(), validPromptText, "abc123")

	// A backend outage is not an expired handle; re-uploading would not help.
	require.Error(t, err)
	assert.Nil(t, result)
	assert.NotErrorIs(t, err, domain.ErrContentExpired)
	f.ai.AssertNotCalled(t, "Extract")
}

func (f *extractionFixture) expectProductionPipeline(vendorID uuid.UUID, confidence float64) {
	f.vendors.On("GetByID", mock.Anything, vendorID).
		Return(&domain.Vendor{ID: vendorID, Name: "Globex"}, nil)
	f.files.On("Create", mock.Anything, mock.AnythingOfType("*domain.FileMeta")).Return(nil)
	f.storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).Return(nil)
	f.files.On("UpdateStatus", mock.Anything, mock.Anything, domain.FileStatusUploaded).Return(nil)
	f.text.On("Extract", mock.Anything, mock.Anything, domain.DocumentTypeHTML).
		Return(&port.ExtractedText{Content: "Invoice INV-100 for Globex"}, nil)
	f.prompts.On("GetActiveByVendor", mock.Anything, vendorID).
		Return(&domain.Prompt{ID: uuid.New(), VendorID: &vendorID, Text: validPromptText, IsActive: true}, nil)
	f.ai.On("Extract", mock.Anything, mock.Anything).
		Return(&port.ExtractOutput{Data: samplePayload, Confidence: confidence}, nil)
}

func TestExtractionService_RunProduction_PersistsInvoice(t *testing.T) {
	f := newExtractionFixture()
	vendorID := uuid.New()
	file, header := makeUpload(t, "invoice.html", sampleHTML)

	f.expectProductionPipeline(vendorID, 0.91)
	f.invoices.On("FindDuplicate", mock.Anything, vendorID,
		map[string]any{"invoice_number": "INV-100", "total_amount": 250.0}).
		Return(nil, nil)

	var persisted *domain.Invoice
	f.invoices.On("Create", mock.Anything, mock.AnythingOfType("*domain.Invoice"), mock.Anything).
		Run(func(args mock.Arguments) {
			persisted = args.Get(1).(*domain.Invoice)
		}).
		Return(nil)

	result, err := f.svc.RunProduction(context.Background(), vendorID, file, header)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.NotEmpty(t, result.InvoiceID)
	require.NotNil(t, persisted)
	assert.Equal(t, "INV-100", persisted.InvoiceNumber)
	assert.Equal(t, 250.0, persisted.TotalAmount)
	assert.Equal(t, domain.ReviewStatusApproved, persisted.ReviewStatus)
	f.invoices.AssertExpectations(t)
}

func TestExtractionService_RunProduction_DuplicateRejectedWithoutPersisting(t *testing.T) {
	f := newExtractionFixture()
	vendorID := uuid.New()
	file, header := makeUpload(t, "invoice.html", sampleHTML)

	f.expectProductionPipeline(vendorID, 0.91)
	existing := &port.DuplicateMatch{
		ID:            uuid.New(),
		InvoiceNumber: "INV-100",
		CreatedAt:     time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC),
	}
	f.invoices.On("FindDuplicate", mock.Anything, vendorID, mock.Anything).Return(existing, nil)

	result, err := f.svc.RunProduction(context.Background(), vendorID, file, header)

	require.NoError(t, err)
	assert.False(t, result.Success)
	require.NotNil(t, result.Error)
	assert.Equal(t, domain.KindDuplicateDetected, result.Error.Kind)
	assert.Contains(t, result.Error.Message, "INV-100")
	assert.Contains(t, result.Error.Message, "2026-08-15")
	// Extracted data still rides along for the operator.
	require.NotNil(t, result.ExtractedData)
	assert.Equal(t, "INV-100", result.ExtractedData.Header.InvoiceNumber)
	f.invoices.AssertNotCalled(t, "Create")
}

func TestExtractionService_RunProduction_LowConfidenceFlaggedForReview(t *testing.T) {
	f := newExtractionFixture()
	vendorID := uuid.New()
	file, header := makeUpload(t, "invoice.html", sampleHTML)

	f.expectProductionPipeline(vendorID, 0.42)
	f.invoices.On("FindDuplicate", mock.Anything, vendorID, mock.Anything).Return(nil, nil)

	var persisted *domain.Invoice
	f.invoices.On("Create", mock.Anything, mock.AnythingOfType("*domain.Invoice"), mock.Anything).
		Run(func(args mock.Arguments) {
			persisted = args.Get(1).(*domain.Invoice)
		}).
		Return(nil)

	result, err := f.svc.RunProduction(context.Background(), vendorID, file, header)

	require.NoError(t, err)
	assert.True(t, result.Success, "low confidence does not block ingestion")
	assert.True(t, result.LowConfidence)
	require.NotNil(t, persisted)
	assert.Equal(t, domain.ReviewStatusNeedsReview, persisted.ReviewStatus)
	assert.Equal(t, 0.42, persisted.ConfidenceScore)
}

func TestExtractionService_RunProduction_NoActivePrompt(t *testing.T) {
	f := newExtractionFixture()
	vendorID := uuid.New()
	file, header := makeUpload(t, "invoice.html", sampleHTML)

	f.vendors.On("GetByID", mock.Anything, vendorID).
		Return(&domain.Vendor{ID: vendorID}, nil)
	f.files.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.storage.On("Upload", mock.Anything, mock.Anything).Return(nil)
	f.files.On("UpdateStatus", mock.Anything, mock.Anything, domain.FileStatusUploaded).Return(nil)
	f.text.On("Extract", mock.Anything, mock.Anything, domain.DocumentTypeHTML).
		Return(&port.ExtractedText{Content: "text"}, nil)
	f.prompts.On("GetActiveByVendor", mock.Anything, vendorID).
		Return(nil, domain.ErrNoActivePrompt)

	_, err := f.svc.RunProduction(context.Background(), vendorID, file, header)

	assert.ErrorIs(t, err, domain.ErrNoActivePrompt)
	f.ai.AssertNotCalled(t, "Extract")
}

func TestExtractionService_RunProduction_PersistFailureRemovesArchivedFile(t *testing.T) {
	f := newExtractionFixture()
	vendorID := uuid.New()
	file, header := makeUpload(t, "invoice.html", sampleHTML)

	f.expectProductionPipeline(vendorID, 0.91)
	f.invoices.On("FindDuplicate", mock.Anything, vendorID, mock.Anything).Return(nil, nil)
	f.invoices.On("Create", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("deadlock detected"))
	f.storage.On("Delete", mock.Anything, "test-bucket", mock.AnythingOfType("string")).Return(nil)
	f.files.On("UpdateStatus", mock.Anything, mock.Anything, domain.FileStatusFailed).Return(nil)

	_, err := f.svc.RunProduction(context.Background(), vendorID, file, header)

	require.Error(t, err)
	f.storage.AssertCalled(t, "Delete", mock.Anything, "test-bucket", mock.AnythingOfType("string"))
	f.files.AssertCalled(t, "UpdateStatus", mock.Anything, mock.Anything, domain.FileStatusFailed)
}

func TestExtractionService_RunProduction_StorageFailureAborts(t *testing.T) {
	f := newExtractionFixture()
	vendorID := uuid.New()
	file, header := makeUpload(t, "invoice.html", sampleHTML)

	f.vendors.On("GetByID", mock.Anything, vendorID).
		Return(&domain.Vendor{ID: vendorID}, nil)
	f.files.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.storage.On("Upload", mock.Anything, mock.Anything).Return(errors.New("bucket unreachable"))
	f.files.On("UpdateStatus", mock.Anything, mock.Anything, domain.FileStatusFailed).Return(nil)

	_, err := f.svc.RunProduction(context.Background(), vendorID, file, header)

	assert.ErrorIs(t, err, domain.ErrUploadFailed)
	f.ai.AssertNotCalled(t, "Extract")
	f.invoices.AssertNotCalled(t, "Create")
	f.files.AssertExpectations(t)
}
