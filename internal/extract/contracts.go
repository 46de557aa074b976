// Package extract defines the receipt extraction gateway: given an image
// reference, an external model returns a best-effort structured guess. The
// output is untrusted input and goes through the same validation as manual
// entry before it touches the ledger.
package extract

import "context"

// LineItem is one recognized receipt row.
type LineItem struct {
	Description string `json:"description"`
	Amount      string `json:"amount"` // decimal string
}

// ReceiptFields is the normalized suggestion shape. Every field is optional;
// callers treat the whole thing as a hint, never ground truth.
type ReceiptFields struct {
	Total      string     `json:"total,omitempty"` // decimal string
	Date       string     `json:"date,omitempty"`  // YYYY-MM-DD
	Items      []LineItem `json:"items,omitempty"`
	Confidence float32    `json:"confidence,omitempty"` // 0..1
}

type Request struct {
	ImageURL        string
	DefaultCurrency string
}

// FieldExtractor is the interface the receipt handler depends on. The second
// return value is the raw model JSON, kept for audit on the receipt row.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, req Request) (ReceiptFields, []byte, error)
}
