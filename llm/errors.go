package llm

import (
	"fmt"
)

// ErrorKind classifies what went wrong, independent of the vendor.
type ErrorKind string

const (
	// ErrKindTransport covers connection, DNS, TLS and timeout failures.
	ErrKindTransport ErrorKind = "transport"
	// ErrKindAuth covers unauthorized and forbidden responses.
	ErrKindAuth ErrorKind = "auth"
	// ErrKindRateLimit covers throttling responses. Retry policy is the
	// caller's decision; nothing is retried here.
	ErrKindRateLimit ErrorKind = "rate_limit"
	// ErrKindBadRequest covers requests the vendor rejected as invalid.
	ErrKindBadRequest ErrorKind = "bad_request"
	// ErrKindNotFound covers unknown models and endpoints.
	ErrKindNotFound ErrorKind = "not_found"
	// ErrKindContextLength covers prompts too large for the model.
	ErrKindContextLength ErrorKind = "context_length"
	// ErrKindServer covers vendor-side failures.
	ErrKindServer ErrorKind = "server"
	// ErrKindParse covers vendor payloads that could not be decoded.
	ErrKindParse ErrorKind = "parse"
)

// Error is the canonical error for anything a vendor exchange can produce.
type Error struct {
	// Vendor that produced the error.
	Vendor string
	// Kind is the canonical classification.
	Kind ErrorKind
	// Status is the HTTP status code, if the exchange got that far.
	Status int
	// Message is the vendor's own message, when one could be extracted.
	Message string
	// Raw preserves the vendor's error body for diagnostics.
	Raw string
	// Cause is the underlying error, if any.
	Cause error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d): %s", e.Vendor, e.Kind, e.Status, msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Vendor, e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Retryable reports whether retrying the same request could plausibly
// succeed. Rate limits, vendor-side failures and transport failures qualify;
// auth and request-shape problems do not.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case ErrKindRateLimit, ErrKindServer, ErrKindTransport:
		return true
	}
	return false
}

// KindFromStatus maps an HTTP status code to the canonical error kind.
func KindFromStatus(status int) ErrorKind {
	switch {
	case status == 400:
		return ErrKindBadRequest
	case status == 401 || status == 403:
		return ErrKindAuth
	case status == 404:
		return ErrKindNotFound
	case status == 413:
		return ErrKindContextLength
	case status == 429:
		return ErrKindRateLimit
	default:
		// Anything unrecognized, 418 as much as 503, is treated as a
		// vendor-side failure and stays retryable.
		return ErrKindServer
	}
}

// StatusError builds an Error classified from an HTTP status code, keeping
// the vendor's message and raw body.
func StatusError(vendor string, status int, message, raw string) *Error {
	return &Error{
		Vendor:  vendor,
		Kind:    KindFromStatus(status),
		Status:  status,
		Message: message,
		Raw:     raw,
	}
}

// TransportError wraps a failure to reach or read from the vendor.
func TransportError(vendor string, cause error) *Error {
	return &Error{Vendor: vendor, Kind: ErrKindTransport, Cause: cause}
}

// ParseError wraps a vendor payload that could not be decoded.
func ParseError(vendor string, cause error) *Error {
	return &Error{Vendor: vendor, Kind: ErrKindParse, Cause: cause}
}
