package domain

// DocumentType represents the allowed document types for extraction.
type DocumentType string

const (
	DocumentTypePDF  DocumentType = "pdf"
	DocumentTypeHTML DocumentType = "html"
)

// AllowedDocumentTypes maps DocumentType to its MIME content type.
var AllowedDocumentTypes = map[DocumentType]string{
	DocumentTypePDF:  "application/pdf",
	DocumentTypeHTML: "text/html",
}

// AllowedContentTypes maps MIME content types back to DocumentType.
var AllowedContentTypes = map[string]DocumentType{
	"application/pdf": DocumentTypePDF,
	"text/html":       DocumentTypeHTML,
}

// AllowedExtensions maps file extensions (without dot) to DocumentType.
var AllowedExtensions = map[string]DocumentType{
	"pdf":  DocumentTypePDF,
	"html": DocumentTypeHTML,
	"htm":  DocumentTypeHTML,
}

// FileStatus represents the lifecycle of an archived upload.
type FileStatus string

const (
	FileStatusPending  FileStatus = "pending"
	FileStatusUploaded FileStatus = "uploaded"
	FileStatusFailed   FileStatus = "failed"
)

// ReviewStatus marks whether an extracted invoice needs human review.
type ReviewStatus string

const (
	ReviewStatusApproved    ReviewStatus = "approved"
	ReviewStatusNeedsReview ReviewStatus = "needs_review"
)
