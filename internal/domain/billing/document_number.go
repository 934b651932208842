package billing

import (
	"fmt"
	"strconv"
	"strings"
)

// Document number prefixes. Numbers follow the pattern PFX-YYYY-#### with a
// per-tenant, per-year sequence.
const (
	InvoiceNumberPrefix    = "INV"
	ReceiptNumberPrefix    = "RCT"
	CreditNoteNumberPrefix = "CN"
)

// FormatDocumentNumber renders a document number such as "INV-2026-0042".
func FormatDocumentNumber(prefix string, year int, sequence int) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, year, sequence)
}

// DocumentNumberPattern returns the SQL LIKE pattern matching all numbers
// for a prefix and year, e.g. "RCT-2026-%".
func DocumentNumberPattern(prefix string, year int) string {
	return fmt.Sprintf("%s-%d-%%", prefix, year)
}

// ParseDocumentSequence extracts the trailing sequence from a document
// number. Returns false for numbers that do not end in an integer segment,
// which happens for caller-supplied free-form numbers.
func ParseDocumentSequence(number string) (int, bool) {
	idx := strings.LastIndex(number, "-")
	if idx < 0 || idx == len(number)-1 {
		return 0, false
	}
	seq, err := strconv.Atoi(number[idx+1:])
	if err != nil || seq < 0 {
		return 0, false
	}
	return seq, true
}

// NextDocumentNumber derives the successor of the highest existing number
// for a tenant/year. An empty or unparseable highest number starts the
// sequence at 1.
func NextDocumentNumber(prefix string, year int, highest string) string {
	seq := 1
	if highest != "" {
		if n, ok := ParseDocumentSequence(highest); ok {
			seq = n + 1
		}
	}
	return FormatDocumentNumber(prefix, year, seq)
}
