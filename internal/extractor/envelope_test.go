package extractor_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoflow/internal/domain"
	"invoflow/internal/extractor"
)

func TestBuildRequestText(t *testing.T) {
	text := extractor.BuildRequestText("extract invoice_header", "Invoice INV-100", domain.DocumentTypePDF)

	assert.Contains(t, text, "extract invoice_header")
	assert.Contains(t, text, `"confidence"`)
	assert.Contains(t, text, "The pdf document content follows:")
	assert.Contains(t, text, "Invoice INV-100")
}

func TestDecodeModelOutput(t *testing.T) {
	raw := `{"data":{"invoice_header":{"invoice_number":"INV-100"},"line_items":[]},"confidence":0.88}`

	data, confidence, err := extractor.DecodeModelOutput(raw)

	require.NoError(t, err)
	assert.Equal(t, 0.88, confidence)

	var parsed domain.InvoiceData
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, "INV-100", parsed.Header.InvoiceNumber)
}

func TestDecodeModelOutput_NotJSON(t *testing.T) {
	_, _, err := extractor.DecodeModelOutput("Sure! Here is the extraction you asked for:")
	assert.Error(t, err)
}

func TestDecodeModelOutput_MissingData(t *testing.T) {
	_, _, err := extractor.DecodeModelOutput(`{"confidence":0.9}`)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "missing data key")
}
