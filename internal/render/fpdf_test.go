package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodePDFProducesValidHeader(t *testing.T) {
	data, err := EncodePDF(Layout(sampleInvoiceDoc()))
	require.NoError(t, err)
	require.Greater(t, len(data), 4)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestEncodePDFDeterministic(t *testing.T) {
	doc := sampleInvoiceDoc()
	first, err := EncodePDF(Layout(doc))
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := EncodePDF(Layout(doc))
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestEncodePDFQuotation(t *testing.T) {
	data, err := EncodePDF(Layout(sampleQuotationDoc()))
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestAsciiCurrency(t *testing.T) {
	assert.Equal(t, "Rs. 286.00", asciiCurrency("₹286.00"))
	assert.Equal(t, "plain", asciiCurrency("plain"))
}
