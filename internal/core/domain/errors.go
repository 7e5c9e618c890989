package domain

import "fmt"

// ErrorCode represents categorized error types.
// These codes are stable and can be used for programmatic error handling.
type ErrorCode string

const (
	ErrCodeInvalidCanonicalMethod ErrorCode = "invalid_canonical_method"
	ErrCodeUnsupportedAlgorithm   ErrorCode = "unsupported_algorithm"
	ErrCodeReferenceInvalid       ErrorCode = "reference_invalid"
	ErrCodeSignatureInvalid       ErrorCode = "signature_invalid"
	ErrCodeMalformedSignature     ErrorCode = "malformed_signature"
	ErrCodeFetchFailed            ErrorCode = "fetch_failed"
	ErrCodeInvalidKey             ErrorCode = "invalid_key"
	ErrCodeBadRequest             ErrorCode = "bad_request"
)

// String returns the error code as a string.
func (c ErrorCode) String() string {
	return string(c)
}

// Title returns a user-friendly title for this error code.
func (c ErrorCode) Title() string {
	switch c {
	case ErrCodeInvalidCanonicalMethod:
		return "Invalid Canonicalization Method"
	case ErrCodeUnsupportedAlgorithm:
		return "Unsupported Algorithm"
	case ErrCodeReferenceInvalid:
		return "Reference Invalid"
	case ErrCodeSignatureInvalid:
		return "Signature Invalid"
	case ErrCodeMalformedSignature:
		return "Malformed Signature"
	case ErrCodeFetchFailed:
		return "Fetch Failed"
	case ErrCodeInvalidKey:
		return "Invalid Key"
	case ErrCodeBadRequest:
		return "Invalid Request"
	default:
		return "Error"
	}
}

// AppError is a structured error with code, message, and optional cause.
//
// Errors derived from a sentinel with With keep a link to it, so
// errors.Is(err, ErrReferenceValidationFailed) holds for every
// reference failure regardless of the detail message.
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error

	kind *AppError
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is e or the sentinel e was derived from.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e == t || (e.kind != nil && e.kind == t)
}

// With derives a new error of the same kind with extra detail and an
// optional cause.
func (e *AppError) With(detail string, cause error) *AppError {
	kind := e
	if e.kind != nil {
		kind = e.kind
	}
	msg := e.Message
	if detail != "" {
		msg = msg + ": " + detail
	}
	return &AppError{Code: e.Code, Message: msg, Cause: cause, kind: kind}
}

// Withf is With with a formatted detail and no cause.
func (e *AppError) Withf(format string, args ...any) *AppError {
	return e.With(fmt.Sprintf(format, args...), nil)
}

func newKind(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Sentinel errors. Match with errors.Is.
var (
	ErrInvalidCanonicalMethod      = newKind(ErrCodeInvalidCanonicalMethod, "invalid canonical method")
	ErrUnsupportedDigestAlgorithm  = newKind(ErrCodeUnsupportedAlgorithm, "unsupported digest algorithm")
	ErrUnsupportedSignatureMethod  = newKind(ErrCodeUnsupportedAlgorithm, "unsupported signature method")
	ErrNoReferencesFound           = newKind(ErrCodeMalformedSignature, "reference nodes not found")
	ErrReferenceValidationFailed   = newKind(ErrCodeReferenceInvalid, "reference validation failed")
	ErrReferenceTargetNotFound     = newKind(ErrCodeReferenceInvalid, "reference target not found")
	ErrAmbiguousReference          = newKind(ErrCodeReferenceInvalid, "reference identifier is not unique")
	ErrSignatureValueNotFound      = newKind(ErrCodeMalformedSignature, "unable to locate SignatureValue")
	ErrSignatureNotFound           = newKind(ErrCodeMalformedSignature, "signature element not found")
	ErrSignedInfoNotFound          = newKind(ErrCodeMalformedSignature, "SignedInfo element not found")
	ErrSignatureMethodNotFound     = newKind(ErrCodeMalformedSignature, "SignatureMethod algorithm not found")
	ErrSignatureInvalid            = newKind(ErrCodeSignatureInvalid, "signature verification failed")
	ErrInvalidParentNode           = newKind(ErrCodeBadRequest, "invalid parent node")
	ErrExternalResourceFetchFailed = newKind(ErrCodeFetchFailed, "external resource fetch failed")
	ErrInvalidKey                  = newKind(ErrCodeInvalidKey, "invalid key")
)

// BadRequestError creates a bad request error.
func BadRequestError(message string) *AppError {
	return &AppError{Code: ErrCodeBadRequest, Message: message}
}

// SignatureError creates a signature verification error with optional cause.
func SignatureError(message string, cause error) *AppError {
	return ErrSignatureInvalid.With(message, cause)
}
