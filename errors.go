package xmldsig

import (
	"github.com/philiph/xmldsig/internal/core/domain"
)

// Re-export error types from domain package
type ErrorCode = domain.ErrorCode
type AppError = domain.AppError

// Re-export error code constants
const (
	ErrCodeInvalidCanonicalMethod = domain.ErrCodeInvalidCanonicalMethod
	ErrCodeUnsupportedAlgorithm   = domain.ErrCodeUnsupportedAlgorithm
	ErrCodeReferenceInvalid       = domain.ErrCodeReferenceInvalid
	ErrCodeSignatureInvalid       = domain.ErrCodeSignatureInvalid
	ErrCodeMalformedSignature     = domain.ErrCodeMalformedSignature
	ErrCodeFetchFailed            = domain.ErrCodeFetchFailed
	ErrCodeInvalidKey             = domain.ErrCodeInvalidKey
	ErrCodeBadRequest             = domain.ErrCodeBadRequest
)

// Re-export sentinel errors. Match with errors.Is.
var (
	ErrInvalidCanonicalMethod      = domain.ErrInvalidCanonicalMethod
	ErrUnsupportedDigestAlgorithm  = domain.ErrUnsupportedDigestAlgorithm
	ErrUnsupportedSignatureMethod  = domain.ErrUnsupportedSignatureMethod
	ErrNoReferencesFound           = domain.ErrNoReferencesFound
	ErrReferenceValidationFailed   = domain.ErrReferenceValidationFailed
	ErrReferenceTargetNotFound     = domain.ErrReferenceTargetNotFound
	ErrAmbiguousReference          = domain.ErrAmbiguousReference
	ErrSignatureValueNotFound      = domain.ErrSignatureValueNotFound
	ErrSignatureNotFound           = domain.ErrSignatureNotFound
	ErrSignedInfoNotFound          = domain.ErrSignedInfoNotFound
	ErrSignatureMethodNotFound     = domain.ErrSignatureMethodNotFound
	ErrSignatureInvalid            = domain.ErrSignatureInvalid
	ErrInvalidParentNode           = domain.ErrInvalidParentNode
	ErrExternalResourceFetchFailed = domain.ErrExternalResourceFetchFailed
	ErrInvalidKey                  = domain.ErrInvalidKey
)

// Re-export error constructors
var (
	BadRequestError = domain.BadRequestError
	SignatureError  = domain.SignatureError
)
