package constants

// Well-known field names declared by the invoice analysis model.
// The coercer reads exactly these four entries; anything else is archived
// but not persisted to the invoice row.
const (
	FieldInvoiceNumber = "NumeroFacture"
	FieldIssueDate     = "DateEmission"
	FieldDueDate       = "DateEcheance"
	FieldTotalAmount   = "MontantTotal"
)
