// Package errors provides severity-aware error types for the pricing pipeline.
package errors

import (
	"fmt"
	"unicode/utf8"
)

// Severity indicates error impact level.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// PricingError is a structured error with a stable code.
type PricingError struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Severity    Severity `json:"severity"`
	Detail      string   `json:"detail,omitempty"`
	Recoverable bool     `json:"recoverable"`
	Err         error    `json:"-"`
}

func (e *PricingError) Error() string {
	msg := fmt.Sprintf("[%s] %s: %s", e.Severity, e.Code, e.Message)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PricingError) Unwrap() error { return e.Err }

// Is reports whether target carries the same code, so the sentinels below
// work with errors.Is.
func (e *PricingError) Is(target error) bool {
	t, ok := target.(*PricingError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Error codes
const (
	CodeEmptyDescription     = "EMPTY_DESCRIPTION"
	CodeGeneratorCallFailed  = "GENERATOR_CALL_FAILED"
	CodeGeneratorTimeout     = "GENERATOR_TIMEOUT"
	CodeParseMalformed       = "PARSE_MALFORMED"
	CodeStaleResponse        = "STALE_RESPONSE"
	CodeStoragePersistFailed = "STORAGE_PERSIST_FAILED"
	CodeStorageLoadFailed    = "STORAGE_LOAD_FAILED"
	CodeInvalidItem          = "INVALID_ITEM"
	CodeIndexOutOfRange      = "INDEX_OUT_OF_RANGE"
)

// Sentinels for errors.Is.
var (
	ErrEmptyDescription     = &PricingError{Code: CodeEmptyDescription}
	ErrGeneratorCallFailed  = &PricingError{Code: CodeGeneratorCallFailed}
	ErrGeneratorTimeout     = &PricingError{Code: CodeGeneratorTimeout}
	ErrParseMalformed       = &PricingError{Code: CodeParseMalformed}
	ErrStaleResponse        = &PricingError{Code: CodeStaleResponse}
	ErrStoragePersistFailed = &PricingError{Code: CodeStoragePersistFailed}
	ErrStorageLoadFailed    = &PricingError{Code: CodeStorageLoadFailed}
	ErrInvalidItem          = &PricingError{Code: CodeInvalidItem}
	ErrIndexOutOfRange      = &PricingError{Code: CodeIndexOutOfRange}
)

// maxSnippet bounds the generator text kept on a malformed-output error.
const maxSnippet = 200

// NewEmptyDescriptionError is returned before any generator call when the form is blank.
func NewEmptyDescriptionError() *PricingError {
	return &PricingError{
		Code:        CodeEmptyDescription,
		Message:     "product description is empty",
		Severity:    SeverityError,
		Recoverable: true,
	}
}

// NewGeneratorCallError wraps a transport, auth or quota failure from the generator.
func NewGeneratorCallError(err error) *PricingError {
	return &PricingError{
		Code:        CodeGeneratorCallFailed,
		Message:     "generator call failed",
		Severity:    SeverityError,
		Recoverable: true,
		Err:         err,
	}
}

// NewGeneratorTimeoutError reports a generator call that hit the configured ceiling.
func NewGeneratorTimeoutError(limit fmt.Stringer, err error) *PricingError {
	return &PricingError{
		Code:        CodeGeneratorTimeout,
		Message:     "generator did not answer in time",
		Severity:    SeverityError,
		Detail:      "limit " + limit.String(),
		Recoverable: true,
		Err:         err,
	}
}

// NewMalformedError carries the offending text, truncated for diagnostics.
func NewMalformedError(text string, err error) *PricingError {
	return &PricingError{
		Code:        CodeParseMalformed,
		Message:     "generator output is not a valid analysis document",
		Severity:    SeverityError,
		Detail:      Truncate(text, maxSnippet),
		Recoverable: true,
		Err:         err,
	}
}

// NewStaleResponseError marks a response superseded by a newer request.
func NewStaleResponseError(token, latest uint64) *PricingError {
	return &PricingError{
		Code:        CodeStaleResponse,
		Message:     "response discarded, a newer analysis was started",
		Severity:    SeverityInfo,
		Detail:      fmt.Sprintf("token %d, latest %d", token, latest),
		Recoverable: true,
	}
}

// NewPersistError reports a backend write failure. The in-memory state stays authoritative.
func NewPersistError(key string, err error) *PricingError {
	return &PricingError{
		Code:        CodeStoragePersistFailed,
		Message:     "catalog change kept in memory but not saved",
		Severity:    SeverityWarning,
		Detail:      "key " + key,
		Recoverable: true,
		Err:         err,
	}
}

// NewLoadError reports an unreadable or corrupt stored category.
func NewLoadError(key string, err error) *PricingError {
	return &PricingError{
		Code:        CodeStorageLoadFailed,
		Message:     "stored catalog unreadable, starting empty",
		Severity:    SeverityWarning,
		Detail:      "key " + key,
		Recoverable: true,
		Err:         err,
	}
}

// NewInvalidItemError rejects an item that fails validation.
func NewInvalidItemError(reason string) *PricingError {
	return &PricingError{
		Code:        CodeInvalidItem,
		Message:     "invalid catalog item",
		Severity:    SeverityError,
		Detail:      reason,
		Recoverable: true,
	}
}

// NewIndexOutOfRangeError rejects a delete outside the list bounds.
func NewIndexOutOfRangeError(index, length int) *PricingError {
	return &PricingError{
		Code:        CodeIndexOutOfRange,
		Message:     "catalog index out of range",
		Severity:    SeverityError,
		Detail:      fmt.Sprintf("index %d, length %d", index, length),
		Recoverable: true,
	}
}

// Truncate shortens s to at most n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "…"
}
