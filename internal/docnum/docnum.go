// Package docnum generates sequential document numbers such as INV-2026-0042.
package docnum

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Document types with their own yearly sequences.
const (
	TypeInvoice   = "INV"
	TypeQuotation = "QT"
)

// Prefix returns the yearly number prefix for a document type, e.g. "INV-2026-".
func Prefix(docType string, year int) string {
	return fmt.Sprintf("%s-%d-", docType, year)
}

// Format builds a full document number from a prefix and sequence value.
// The sequence is zero-padded to four digits and widens naturally past 9999.
func Format(prefix string, seq int64) string {
	return fmt.Sprintf("%s%04d", prefix, seq)
}

// NextFromExisting derives the next number in a sequence by scanning already
// issued numbers. Numbers with a different prefix or a non-numeric suffix are
// ignored. An empty set starts the sequence at 0001.
//
// This mirrors how historical data was numbered and is used for backfill and
// verification; live allocation goes through Repository.Allocate, which is
// race-free.
func NextFromExisting(prefix string, existing []string) string {
	var max int64
	for _, number := range existing {
		if !strings.HasPrefix(number, prefix) {
			continue
		}
		seq, err := strconv.ParseInt(number[len(prefix):], 10, 64)
		if err != nil {
			continue
		}
		if seq > max {
			max = seq
		}
	}
	return Format(prefix, max+1)
}

// PrefixFor returns the prefix for a document type on a given date.
func PrefixFor(docType string, date time.Time) string {
	return Prefix(docType, date.Year())
}
