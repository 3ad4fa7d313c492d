package extract

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/facturio/invoice-ingest/constants"
)

// ErrAmountFormat marks an amount that cannot be parsed after normalization.
// An invalid amount must never be silently recorded as zero next to a real
// invoice number, so this aborts persistence for the document.
var ErrAmountFormat = errors.New("unparseable amount")

// dateFormats are attempted in priority order; the first successful parse wins.
var dateFormats = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"02/01/2006",
}

// InvoiceFields holds the coerced domain values for one document.
type InvoiceFields struct {
	Number    string
	IssueDate *time.Time
	DueDate   *time.Time
	Amount    float64
}

// CoerceInvoiceFields reads the four well-known entries from the normalized
// field map and coerces them into typed domain values. Missing entries and
// unparseable dates degrade to empty/null; a malformed amount fails hard.
func CoerceInvoiceFields(fields map[string]FieldEntry) (InvoiceFields, error) {
	number := fieldText(fields, constants.FieldInvoiceNumber)
	issue := ParseDate(fieldText(fields, constants.FieldIssueDate))
	due := ParseDate(fieldText(fields, constants.FieldDueDate))

	amount, err := ParseAmount(fieldValue(fields, constants.FieldTotalAmount))
	if err != nil {
		return InvoiceFields{}, err
	}

	return InvoiceFields{
		Number:    number,
		IssueDate: issue,
		DueDate:   due,
		Amount:    amount,
	}, nil
}

// ParseDate attempts the accepted formats in order and returns nil when the
// input is empty or matches none of them.
func ParseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// ParseAmount converts a loosely formatted amount into a number. An absent
// value is zero. Otherwise spaces (ASCII and non-breaking) are stripped, dots
// are removed as thousands separators, and the decimal comma becomes a dot:
// "1.234,56" parses as 1234.56. Dot-decimal input is corrupted by this rule;
// that is a known limitation of the convention, not special-cased here.
func ParseAmount(v any) (float64, error) {
	if v == nil {
		return 0, nil
	}
	s := fmt.Sprint(v)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")

	amount, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrAmountFormat, v)
	}
	return amount, nil
}

// fieldValue returns the normalized value of a named entry, or nil when the
// entry is absent.
func fieldValue(fields map[string]FieldEntry, name string) any {
	entry, ok := fields[name]
	if !ok {
		return nil
	}
	return entry.Value
}

// fieldText renders a normalized value as text; absent entries and nil
// values become the empty string, never null, since the invoice number is a
// non-nullable column downstream.
func fieldText(fields map[string]FieldEntry, name string) string {
	v := fieldValue(fields, name)
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
