// Package textextract converts uploaded document bytes into plain text.
package textextract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/net/html"

	"invoflow/internal/domain"
	"invoflow/internal/port"
)

type extractor struct{}

// New creates the built-in TextExtractor for PDF and HTML documents.
func New() port.TextExtractor {
	return &extractor{}
}

func (e *extractor) Extract(ctx context.Context, data []byte, docType domain.DocumentType) (*port.ExtractedText, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch docType {
	case domain.DocumentTypePDF:
		return extractPDF(data)
	case domain.DocumentTypeHTML:
		return extractHTML(data)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedDocument, docType)
	}
}

func extractPDF(data []byte) (*port.ExtractedText, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: opening pdf: %v", domain.ErrUnsupportedDocument, err)
	}

	var buf strings.Builder
	numPages := reader.NumPage()

	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		buf.WriteString(text)
		buf.WriteString("\n")
	}

	content := strings.TrimSpace(buf.String())
	if content == "" {
		return nil, fmt.Errorf("%w: pdf contains no extractable text", domain.ErrUnsupportedDocument)
	}

	return &port.ExtractedText{Content: content, Pages: numPages}, nil
}

// extractHTML tokenizes the document and keeps text nodes outside script
// and style elements, collapsing whitespace.
func extractHTML(data []byte) (*port.ExtractedText, error) {
	tokenizer := html.NewTokenizer(bytes.NewReader(data))

	var buf strings.Builder
	skipDepth := 0

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			content := strings.Join(strings.Fields(buf.String()), " ")
			if content == "" {
				return nil, fmt.Errorf("%w: html contains no extractable text", domain.ErrUnsupportedDocument)
			}
			return &port.ExtractedText{Content: content, Pages: 1}, nil
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if skippedTag(string(name)) {
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if skippedTag(string(name)) && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth == 0 {
				buf.Write(tokenizer.Text())
				buf.WriteString(" ")
			}
		}
	}
}

func skippedTag(name string) bool {
	return name == "script" || name == "style" || name == "noscript"
}
