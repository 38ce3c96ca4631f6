package shared

import (
	"errors"
	"net/http"
)

var (
	// ErrValidation indicates a missing or malformed field.
	ErrValidation = errors.New("accounting: invalid input")
	// ErrUnbalanced indicates debit != credit.
	ErrUnbalanced = errors.New("accounting: journal lines must balance")
	// ErrInvalidLine indicates a line violates the debit-xor-credit rule.
	ErrInvalidLine = errors.New("accounting: invalid journal line")
	// ErrTooFewLines indicates less than two lines.
	ErrTooFewLines = errors.New("accounting: journal requires at least two lines")
	// ErrNotFound indicates a missing account or entry.
	ErrNotFound = errors.New("accounting: not found")
	// ErrDuplicateCode indicates an account code collision.
	ErrDuplicateCode = errors.New("accounting: account code already exists")
	// ErrAlreadyInitialized indicates the chart of accounts is already seeded.
	ErrAlreadyInitialized = errors.New("accounting: chart of accounts already initialized")
	// ErrAlreadyPosted indicates a repeated post attempt.
	ErrAlreadyPosted = errors.New("accounting: journal entry already posted")
	// ErrReferenced indicates a delete blocked by journal references.
	ErrReferenced = errors.New("accounting: account is referenced by journal lines")
)

// HTTPStatus maps the accounting error taxonomy onto HTTP status codes.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateCode),
		errors.Is(err, ErrAlreadyInitialized),
		errors.Is(err, ErrAlreadyPosted),
		errors.Is(err, ErrReferenced):
		return http.StatusConflict
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrUnbalanced),
		errors.Is(err, ErrInvalidLine),
		errors.Is(err, ErrTooFewLines):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
