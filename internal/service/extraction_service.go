package service

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"invoflow/internal/config"
	"invoflow/internal/domain"
	"invoflow/internal/port"
	"invoflow/internal/validator"
)

// ExtractionService orchestrates the two extraction workflows: the test
// path (cached document text, ad-hoc prompt) and the production path
// (archived file, the vendor's active prompt, guarded persistence).
type ExtractionService interface {
	// TestUpload validates an uploaded document, extracts its text, and
	// caches it under a fresh opaque handle for later test runs.
	TestUpload(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*domain.TestSession, error)

	// RunTest runs promptText against previously cached document text.
	// Nothing is persisted.
	RunTest(ctx context.Context, promptText, tempFileID string) (*domain.ExtractionResult, error)

	// RunProduction archives the file, extracts with the vendor's active
	// prompt, and persists the invoice unless the guard rejects it.
	RunProduction(ctx context.Context, vendorID uuid.UUID, file multipart.File, header *multipart.FileHeader) (*domain.ExtractionResult, error)
}

type extractionService struct {
	cache       port.DocumentCache
	textExtract port.TextExtractor
	aiExtract   port.StructuredExtractor
	promptRepo  port.PromptRepository
	invoiceRepo port.InvoiceRepository
	vendorRepo  port.VendorRepository
	fileRepo    port.FileMetaRepository
	storage     port.ObjectStorage

	cacheCfg  *config.CacheConfig
	guardCfg  *config.GuardConfig
	uploadCfg *config.UploadConfig
	extCfg    *config.ExtractorConfig
	s3Cfg     *config.S3Config
}

// NewExtractionService wires the orchestrator with its collaborators.
func NewExtractionService(
	cache port.DocumentCache,
	textExtract port.TextExtractor,
	aiExtract port.StructuredExtractor,
	promptRepo port.PromptRepository,
	invoiceRepo port.InvoiceRepository,
	vendorRepo port.VendorRepository,
	fileRepo port.FileMetaRepository,
	storage port.ObjectStorage,
	cfg *config.Config,
) ExtractionService {
	return &extractionService{
		cache:       cache,
		textExtract: textExtract,
		aiExtract:   aiExtract,
		promptRepo:  promptRepo,
		invoiceRepo: invoiceRepo,
		vendorRepo:  vendorRepo,
		fileRepo:    fileRepo,
		storage:     storage,
		cacheCfg:    &cfg.Cache,
		guardCfg:    &cfg.Guard,
		uploadCfg:   &cfg.Upload,
		extCfg:      &cfg.Extractor,
		s3Cfg:       &cfg.S3,
	}
}

// attempt tracks one extraction attempt through its stages. A failed attempt
// is terminal; callers start a new attempt instead of resuming.
type attempt struct {
	id    string
	stage domain.AttemptStage
}

func newAttempt() *attempt {
	return &attempt{id: uuid.New().String()[:8], stage: domain.StageReceived}
}

func (a *attempt) advance(stage domain.AttemptStage) {
	a.stage = stage
	log.Printf("extraction attempt %s: stage=%s", a.id, stage)
}

func (s *extractionService) TestUpload(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*domain.TestSession, error) {
	docType, data, err := s.readValidated(file, header)
	if err != nil {
		return nil, err
	}

	text, err := s.textExtract.Extract(ctx, data, docType)
	if err != nil {
		return nil, err
	}

	handle, err := newTempFileID()
	if err != nil {
		return nil, fmt.Errorf("generating temp file id: %w", err)
	}

	session := &domain.TestSession{
		TempFileID:       handle,
		ExtractedContent: text.Content,
		DocumentType:     docType,
		FileName:         header.Filename,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.cache.Put(ctx, session, s.cacheCfg.TTL); err != nil {
		return nil, fmt.Errorf("caching test session: %w", err)
	}

	log.Printf("cached test upload %s (%s, %d bytes of text, ttl %s)",
		handle, docType, len(text.Content), s.cacheCfg.TTL)
	return session, nil
}

func (s *extractionService) RunTest(ctx context.Context, promptText, tempFileID string) (*domain.ExtractionResult, error) {
	att := newAttempt()

	session, err := s.cache.Get(ctx, tempFileID)
	if errors.Is(err, domain.ErrContentExpired) {
		att.advance(domain.StageFailed)
		return failure(domain.KindExpiredOrMissingContent,
			"uploaded document content has expired or was never uploaded; upload the document again"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching cached document content: %w", err)
	}
	att.advance(domain.StageTextResolved)

	if err := validator.CheckPrompt(promptText); err != nil {
		att.advance(domain.StageFailed)
		return validationFailure(err), nil
	}
	att.advance(domain.StagePromptValidated)

	data, confidence, elapsed, err := s.invokeAI(ctx, att, promptText, session.ExtractedContent, session.DocumentType)
	if err != nil {
		att.advance(domain.StageFailed)
		return upstreamFailure(err, elapsed), nil
	}

	att.advance(domain.StageSucceeded)
	return &domain.ExtractionResult{
		Success:          true,
		ExtractedData:    data,
		ConfidenceScore:  confidence,
		ProcessingTimeMS: elapsed.Milliseconds(),
		LowConfidence:    confidence < s.guardCfg.ConfidenceThreshold,
	}, nil
}

func (s *extractionService) RunProduction(ctx context.Context, vendorID uuid.UUID, file multipart.File, header *multipart.FileHeader) (*domain.ExtractionResult, error) {
	if _, err := s.vendorRepo.GetByID(ctx, vendorID); err != nil {
		return nil, err
	}

	docType, data, err := s.readValidated(file, header)
	if err != nil {
		return nil, err
	}

	att := newAttempt()

	meta, err := s.archive(ctx, vendorID, header, docType, data)
	if err != nil {
		return nil, err
	}

	text, err := s.textExtract.Extract(ctx, data, docType)
	if err != nil {
		att.advance(domain.StageFailed)
		return failure(domain.KindUnsupportedDocument,
			"the document could not be parsed into text"), nil
	}
	att.advance(domain.StageTextResolved)

	prompt, err := s.promptRepo.GetActiveByVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	if err := validator.CheckPrompt(prompt.Text); err != nil {
		att.advance(domain.StageFailed)
		return validationFailure(err), nil
	}
	att.advance(domain.StagePromptValidated)

	extracted, confidence, elapsed, err := s.invokeAI(ctx, att, prompt.Text, text.Content, docType)
	if err != nil {
		att.advance(domain.StageFailed)
		return upstreamFailure(err, elapsed), nil
	}

	// Duplicate check runs on the freshly extracted values, before any
	// persistence, so a rejected upload leaves no invoice rows behind.
	match, err := s.findDuplicate(ctx, vendorID, extracted)
	if err != nil {
		return nil, err
	}
	if match != nil {
		att.advance(domain.StageFailed)
		log.Printf("extraction attempt %s: duplicate of invoice %s (ingested %s)",
			att.id, match.ID, match.CreatedAt.Format(time.RFC3339))
		dupErr := &domain.DuplicateInvoiceError{
			InvoiceNumber: match.InvoiceNumber,
			ExistingID:    match.ID.String(),
			UploadedAt:    match.CreatedAt,
			Extracted:     extracted,
		}
		return &domain.ExtractionResult{
			Success:          false,
			ExtractedData:    dupErr.Extracted,
			ConfidenceScore:  confidence,
			ProcessingTimeMS: elapsed.Milliseconds(),
			Error: &domain.ExtractionError{
				Kind:    domain.KindDuplicateDetected,
				Message: dupErr.Error(),
			},
		}, nil
	}

	lowConfidence := confidence < s.guardCfg.ConfidenceThreshold
	reviewStatus := domain.ReviewStatusApproved
	if lowConfidence {
		reviewStatus = domain.ReviewStatusNeedsReview
		log.Printf("extraction attempt %s: confidence %.2f below threshold %.2f, flagging for review",
			att.id, confidence, s.guardCfg.ConfidenceThreshold)
	}

	inv := &domain.Invoice{
		ID:               uuid.New(),
		VendorID:         vendorID,
		PromptID:         prompt.ID,
		FileID:           &meta.ID,
		InvoiceNumber:    extracted.Header.InvoiceNumber,
		CustomerName:     extracted.Header.CustomerName,
		InvoiceDate:      extracted.Header.InvoiceDate,
		Currency:         extracted.Header.Currency,
		SubtotalAmount:   extracted.Header.SubtotalAmount,
		TaxAmount:        extracted.Header.TaxAmount,
		TotalAmount:      extracted.Header.TotalAmount,
		ConfidenceScore:  confidence,
		ProcessingTimeMS: elapsed.Milliseconds(),
		ReviewStatus:     reviewStatus,
		CreatedAt:        time.Now().UTC(),
	}
	items := make([]domain.InvoiceLineItem, 0, len(extracted.LineItems))
	for i, li := range extracted.LineItems {
		items = append(items, domain.InvoiceLineItem{
			ID:          uuid.New(),
			InvoiceID:   inv.ID,
			Position:    i + 1,
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice,
			TotalAmount: li.TotalAmount,
		})
	}
	if err := s.invoiceRepo.Create(ctx, inv, items); err != nil {
		// The archived object has no invoice row pointing at it; remove it
		// so a retried upload does not leave orphans behind.
		if derr := s.storage.Delete(ctx, meta.S3Bucket, meta.S3Key); derr != nil {
			log.Printf("extraction attempt %s: removing orphaned archive %s: %v", att.id, meta.S3Key, derr)
		}
		if uerr := s.fileRepo.UpdateStatus(ctx, meta.ID, domain.FileStatusFailed); uerr != nil {
			log.Printf("extraction attempt %s: marking file %s failed: %v", att.id, meta.ID, uerr)
		}
		return nil, fmt.Errorf("persisting invoice: %w", err)
	}

	att.advance(domain.StageSucceeded)
	return &domain.ExtractionResult{
		Success:          true,
		ExtractedData:    extracted,
		ConfidenceScore:  confidence,
		ProcessingTimeMS: elapsed.Milliseconds(),
		LowConfidence:    lowConfidence,
		InvoiceID:        inv.ID.String(),
	}, nil
}

// invokeAI performs the timed collaborator call and decodes its payload.
// The attempt moves to ai_invoked once the call returns, success or not.
func (s *extractionService) invokeAI(ctx context.Context, att *attempt, promptText, documentText string, docType domain.DocumentType) (*domain.InvoiceData, float64, time.Duration, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.extCfg.Timeout())
	defer cancel()

	start := time.Now()
	out, err := s.aiExtract.Extract(callCtx, port.ExtractInput{
		DocumentText: documentText,
		PromptText:   promptText,
		DocumentType: docType,
	})
	elapsed := time.Since(start)
	att.advance(domain.StageAIInvoked)

	if err != nil {
		return nil, 0, elapsed, &domain.UpstreamExtractionError{Provider: s.extCfg.Provider, Err: err}
	}

	var data domain.InvoiceData
	if err := json.Unmarshal(out.Data, &data); err != nil {
		return nil, 0, elapsed, &domain.UpstreamExtractionError{
			Provider: s.extCfg.Provider,
			Err:      fmt.Errorf("decoding extraction payload: %w", err),
		}
	}
	return &data, out.Confidence, elapsed, nil
}

// readValidated enforces the upload policy: extension and detected MIME type
// must both name a supported document type, and the file must fit the size
// limit. The whole file is read into memory; uploads are capped well below
// anything that would hurt.
func (s *extractionService) readValidated(file multipart.File, header *multipart.FileHeader) (domain.DocumentType, []byte, error) {
	if header.Size > s.uploadCfg.MaxBytes() {
		return "", nil, domain.ErrFileTooLarge
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), ".")
	docType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return "", nil, domain.ErrUnsupportedFileType
	}

	data, err := io.ReadAll(io.LimitReader(file, s.uploadCfg.MaxBytes()+1))
	if err != nil {
		return "", nil, fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(data)) > s.uploadCfg.MaxBytes() {
		return "", nil, domain.ErrFileTooLarge
	}

	detected := http.DetectContentType(data)
	if base, _, found := strings.Cut(detected, ";"); found {
		detected = base
	}
	detected = strings.TrimSpace(detected)
	if detectedType, ok := domain.AllowedContentTypes[detected]; !ok || detectedType != docType {
		return "", nil, domain.ErrUnsupportedFileType
	}

	return docType, data, nil
}

// archive stores the original file in object storage and records its
// metadata. A storage failure aborts the attempt; the metadata row keeps
// status failed for later inspection.
func (s *extractionService) archive(ctx context.Context, vendorID uuid.UUID, header *multipart.FileHeader, docType domain.DocumentType, data []byte) (*domain.FileMeta, error) {
	now := time.Now().UTC()
	meta := &domain.FileMeta{
		ID:           uuid.New(),
		VendorID:     vendorID,
		FileName:     fmt.Sprintf("%s.%s", uuid.New(), docType),
		OriginalName: header.Filename,
		FileType:     docType,
		FileSize:     int64(len(data)),
		S3Bucket:     s.s3Cfg.Bucket,
		ContentType:  domain.AllowedDocumentTypes[docType],
		Status:       domain.FileStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	meta.S3Key = fmt.Sprintf("invoices/%s/%s", vendorID, meta.FileName)

	if err := s.fileRepo.Create(ctx, meta); err != nil {
		return nil, fmt.Errorf("recording file metadata: %w", err)
	}

	err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      meta.S3Bucket,
		Key:         meta.S3Key,
		Body:        bytes.NewReader(data),
		ContentType: meta.ContentType,
		Size:        meta.FileSize,
	})
	if err != nil {
		log.Printf("archiving upload %s failed: %v", meta.ID, err)
		if uerr := s.fileRepo.UpdateStatus(ctx, meta.ID, domain.FileStatusFailed); uerr != nil {
			log.Printf("marking file %s failed: %v", meta.ID, uerr)
		}
		return nil, domain.ErrUploadFailed
	}
	if err := s.fileRepo.UpdateStatus(ctx, meta.ID, domain.FileStatusUploaded); err != nil {
		return nil, fmt.Errorf("marking file uploaded: %w", err)
	}
	meta.Status = domain.FileStatusUploaded
	return meta, nil
}

// findDuplicate builds the match key from the configured duplicate fields
// and the extracted header values.
func (s *extractionService) findDuplicate(ctx context.Context, vendorID uuid.UUID, data *domain.InvoiceData) (*port.DuplicateMatch, error) {
	key := make(map[string]any, len(s.guardCfg.DuplicateFields))
	for _, field := range s.guardCfg.DuplicateFields {
		switch field {
		case "invoice_number":
			key[field] = data.Header.InvoiceNumber
		case "total_amount":
			key[field] = data.Header.TotalAmount
		case "customer_name":
			key[field] = data.Header.CustomerName
		case "invoice_date":
			key[field] = data.Header.InvoiceDate
		default:
			return nil, fmt.Errorf("unknown duplicate field in config: %s", field)
		}
	}
	if len(key) == 0 {
		return nil, nil
	}
	return s.invoiceRepo.FindDuplicate(ctx, vendorID, key)
}

func failure(kind domain.ErrorKind, message string) *domain.ExtractionResult {
	return &domain.ExtractionResult{
		Success: false,
		Error:   &domain.ExtractionError{Kind: kind, Message: message},
	}
}

func validationFailure(err error) *domain.ExtractionResult {
	var verr *domain.PromptValidationError
	result := &domain.ExtractionResult{
		Success: false,
		Error: &domain.ExtractionError{
			Kind:    domain.KindPromptValidationFailed,
			Message: err.Error(),
		},
	}
	if errors.As(err, &verr) {
		result.Error.MissingConcepts = verr.Missing
	}
	return result
}

func upstreamFailure(err error, elapsed time.Duration) *domain.ExtractionResult {
	return &domain.ExtractionResult{
		Success:          false,
		ProcessingTimeMS: elapsed.Milliseconds(),
		Error: &domain.ExtractionError{
			Kind:    domain.KindUpstreamExtractionFail,
			Message: err.Error(),
		},
	}
}

// newTempFileID returns a 32-hex-character capability handle. Knowing the
// handle is the only way to reach the cached content.
func newTempFileID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
