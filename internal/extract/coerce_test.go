package extract_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturio/invoice-ingest/internal/extract"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *time.Time
	}{
		{name: "iso date", input: "2024-03-15", want: dateOf(2024, 3, 15)},
		{name: "iso date-time without zone", input: "2024-03-15T10:30:00", want: timeOf(2024, 3, 15, 10, 30, 0)},
		{name: "day month year with slashes", input: "15/03/2024", want: dateOf(2024, 3, 15)},
		{name: "not a date", input: "not-a-date", want: nil},
		{name: "empty", input: "", want: nil},
		{name: "us style slashes parse as day first", input: "03/04/2024", want: dateOf(2024, 4, 3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extract.ParseDate(tt.input)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "want %v, got %v", tt.want, got)
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		want    float64
		wantErr bool
	}{
		{name: "european thousands and decimal comma", input: "1.234,56", want: 1234.56},
		{name: "decimal comma only", input: "0,99", want: 0.99},
		{name: "plain integer", input: "1500", want: 1500},
		{name: "ascii spaces stripped", input: "1 234,56", want: 1234.56},
		{name: "non-breaking spaces stripped", input: "1 234,56", want: 1234.56},
		{name: "absent value is zero", input: nil, want: 0},
		{name: "garbage fails hard", input: "abc", wantErr: true},
		{name: "empty string fails hard", input: "", wantErr: true},
		// Known limitation of the decimal-comma convention: a dot-decimal
		// input loses its separator and parses as a larger integer.
		{name: "dot decimal input is corrupted", input: "1234.56", want: 123456},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extract.ParseAmount(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, extract.ErrAmountFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCoerceInvoiceFields(t *testing.T) {
	t.Run("all fields present", func(t *testing.T) {
		fields := map[string]extract.FieldEntry{
			"NumeroFacture": {Value: "INV-42", Confidence: 0.98},
			"DateEmission":  {Value: "2024-01-10", Confidence: 0.95},
			"DateEcheance":  {Value: "10/02/2024", Confidence: 0.90},
			"MontantTotal":  {Value: "1.500,00", Confidence: 0.91},
		}

		got, err := extract.CoerceInvoiceFields(fields)
		require.NoError(t, err)
		assert.Equal(t, "INV-42", got.Number)
		require.NotNil(t, got.IssueDate)
		assert.True(t, dateOf(2024, 1, 10).Equal(*got.IssueDate))
		require.NotNil(t, got.DueDate)
		assert.True(t, dateOf(2024, 2, 10).Equal(*got.DueDate))
		assert.Equal(t, 1500.00, got.Amount)
	})

	t.Run("everything absent", func(t *testing.T) {
		got, err := extract.CoerceInvoiceFields(map[string]extract.FieldEntry{})
		require.NoError(t, err)
		assert.Equal(t, "", got.Number, "number is empty string, never null")
		assert.Nil(t, got.IssueDate)
		assert.Nil(t, got.DueDate)
		assert.Equal(t, 0.0, got.Amount)
	})

	t.Run("unparseable dates degrade to null", func(t *testing.T) {
		fields := map[string]extract.FieldEntry{
			"DateEmission": {Value: "janvier 2024"},
			"DateEcheance": {Value: ""},
		}
		got, err := extract.CoerceInvoiceFields(fields)
		require.NoError(t, err)
		assert.Nil(t, got.IssueDate)
		assert.Nil(t, got.DueDate)
	})

	t.Run("malformed amount aborts coercion", func(t *testing.T) {
		fields := map[string]extract.FieldEntry{
			"NumeroFacture": {Value: "INV-42"},
			"MontantTotal":  {Value: "abc"},
		}
		_, err := extract.CoerceInvoiceFields(fields)
		require.Error(t, err)
		assert.ErrorIs(t, err, extract.ErrAmountFormat)
	})

	t.Run("nil entry value treated as absent", func(t *testing.T) {
		fields := map[string]extract.FieldEntry{
			"MontantTotal": {Value: nil},
		}
		got, err := extract.CoerceInvoiceFields(fields)
		require.NoError(t, err)
		assert.Equal(t, 0.0, got.Amount)
	})
}

func dateOf(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func timeOf(y int, m time.Month, d, hh, mm, ss int) *time.Time {
	t := time.Date(y, m, d, hh, mm, ss, 0, time.UTC)
	return &t
}
