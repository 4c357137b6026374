package formatter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidIdentifier indicates a missing or non-numeric identifier value.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// ErrUnknownStyle indicates a style name other than "standard" or "legacy".
var ErrUnknownStyle = errors.New("unknown output style")

// maxListedRows caps how many offending rows are spelled out in the message.
const maxListedRows = 20

// InvalidIdentifierError lists every source row that failed normalization.
// It matches ErrInvalidIdentifier with errors.Is.
type InvalidIdentifierError struct {
	// Rows holds the 1-based source row numbers, in source order.
	Rows []int
}

func (e *InvalidIdentifierError) Error() string {
	listed := e.Rows
	if len(listed) > maxListedRows {
		listed = listed[:maxListedRows]
	}
	parts := make([]string, len(listed))
	for i, r := range listed {
		parts[i] = strconv.Itoa(r)
	}
	msg := fmt.Sprintf("%s: %d missing or non-numeric value(s) at row(s) %s",
		ErrInvalidIdentifier, len(e.Rows), strings.Join(parts, ", "))
	if len(e.Rows) > maxListedRows {
		msg += fmt.Sprintf(" and %d more", len(e.Rows)-maxListedRows)
	}
	return msg
}

// Unwrap exposes ErrInvalidIdentifier to errors.Is.
func (e *InvalidIdentifierError) Unwrap() error {
	return ErrInvalidIdentifier
}
