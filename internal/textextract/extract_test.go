package textextract_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoflow/internal/domain"
	"invoflow/internal/textextract"
)

func TestExtract_HTML(t *testing.T) {
	doc := []byte(`<!DOCTYPE html>
<html>
<head>
  <title>Invoice</title>
  <style>body { color: red; }</style>
  <script>console.log("tracking");</script>
</head>
<body>
  <h1>Invoice INV-100</h1>
  <p>Customer:   Globex</p>
  <p>Total: 250.00 USD</p>
</body>
</html>`)

	e := textextract.New()
	text, err := e.Extract(context.Background(), doc, domain.DocumentTypeHTML)

	require.NoError(t, err)
	assert.Contains(t, text.Content, "Invoice INV-100")
	assert.Contains(t, text.Content, "Customer: Globex")
	assert.Contains(t, text.Content, "Total: 250.00 USD")
	assert.NotContains(t, text.Content, "color: red")
	assert.NotContains(t, text.Content, "tracking")
}

func TestExtract_HTMLWithoutText(t *testing.T) {
	doc := []byte(`<html><head><script>var x = 1;</script></head><body></body></html>`)

	e := textextract.New()
	_, err := e.Extract(context.Background(), doc, domain.DocumentTypeHTML)

	assert.ErrorIs(t, err, domain.ErrUnsupportedDocument)
}

func TestExtract_InvalidPDF(t *testing.T) {
	e := textextract.New()
	_, err := e.Extract(context.Background(), []byte("definitely not a pdf"), domain.DocumentTypePDF)

	assert.ErrorIs(t, err, domain.ErrUnsupportedDocument)
}

func TestExtract_UnknownDocumentType(t *testing.T) {
	e := textextract.New()
	_, err := e.Extract(context.Background(), []byte("data"), domain.DocumentType("xlsx"))

	assert.ErrorIs(t, err, domain.ErrUnsupportedDocument)
}
