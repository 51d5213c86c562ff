package validator_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoflow/internal/domain"
	"invoflow/internal/validator"
)

func TestCheckPrompt_AllConceptsPresent(t *testing.T) {
	err := validator.CheckPrompt(
		"extract invoice_header and line_items including invoice_number and customer_name")
	assert.NoError(t, err)
}

func TestCheckPrompt_NaturalLanguageKeywords(t *testing.T) {
	err := validator.CheckPrompt(
		"Pull the header totals, all line items, the invoice number and the customer name")
	assert.NoError(t, err)
}

func TestCheckPrompt_TotalsOnlyPromptReportsMissing(t *testing.T) {
	err := validator.CheckPrompt("extract the totals")
	require.Error(t, err)

	var verr *domain.PromptValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"line_items", "invoice_number", "customer_name"}, verr.Missing)
}

func TestCheckPrompt_EmptyPromptMissesEverything(t *testing.T) {
	err := validator.CheckPrompt("")
	require.Error(t, err)

	var verr *domain.PromptValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t,
		[]string{"invoice_header", "line_items", "invoice_number", "customer_name"},
		verr.Missing)
}

func TestCheckPrompt_CaseInsensitive(t *testing.T) {
	err := validator.CheckPrompt(
		"Extract the INVOICE_HEADER, Line Items, Invoice Number and CUSTOMER NAME")
	assert.NoError(t, err)
}
