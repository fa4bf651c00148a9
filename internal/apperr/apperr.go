// Package apperr defines the error taxonomy shared by services and HTTP
// handlers. Every error carries a Kind that decides the HTTP status and a
// stable machine-readable Reason that clients can switch on.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindConflict
	KindAuth
	KindForbidden
	KindStore
)

var kindNames = map[Kind]string{
	KindValidation: "validation",
	KindNotFound:   "not_found",
	KindConflict:   "conflict",
	KindAuth:       "auth",
	KindForbidden:  "forbidden",
	KindStore:      "store",
}

// Duplicates and insufficient stock are reported as 400, matching the
// public API contract for registration and sales.
var kindStatus = map[Kind]int{
	KindValidation: http.StatusBadRequest,
	KindNotFound:   http.StatusNotFound,
	KindConflict:   http.StatusBadRequest,
	KindAuth:       http.StatusUnauthorized,
	KindForbidden:  http.StatusForbidden,
	KindStore:      http.StatusInternalServerError,
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// Error is the concrete error type returned by the service layer.
type Error struct {
	Kind    Kind
	Reason  string
	Message string
	Details map[string]any
	Status  int // overrides the kind's default status when non-zero
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Reason, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by Kind and Reason so that sentinels declared
// below can be used with errors.Is even after details were attached.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Reason == t.Reason
}

// HTTPStatus resolves the response status for the error.
func (e *Error) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	if s, ok := kindStatus[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// WithDetails returns a copy of e carrying the given details.
func (e *Error) WithDetails(details map[string]any) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

// WithMessage returns a copy of e with a more specific message.
func (e *Error) WithMessage(msg string) *Error {
	cp := *e
	cp.Message = msg
	return &cp
}

func New(kind Kind, reason, message string) *Error {
	return &Error{Kind: kind, Reason: reason, Message: message}
}

// Wrap attaches cause to a new error of the given kind.
func Wrap(kind Kind, reason, message string, cause error) *Error {
	return &Error{Kind: kind, Reason: reason, Message: message, Err: cause}
}

// Store wraps a persistence failure. The message stays generic; the cause
// is only meant for logs.
func Store(op string, cause error) *Error {
	return &Error{Kind: KindStore, Reason: "store_failure", Message: "internal error", Err: fmt.Errorf("%s: %w", op, cause)}
}

// From extracts an *Error from err, converting anything else into a store
// failure.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindStore, Reason: "store_failure", Message: "internal error", Err: err}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Sentinels used across the service layer.
var (
	ErrValidation        = New(KindValidation, "validation_failed", "request validation failed")
	ErrWeakPassword      = &Error{Kind: KindValidation, Reason: "weak_password", Message: "password does not meet policy", Status: http.StatusUnprocessableEntity}
	ErrPasswordMismatch  = New(KindValidation, "password_mismatch", "passwords do not match")
	ErrInvalidDigest     = New(KindValidation, "invalid_digest_format", "stored password digest is malformed")
	ErrInvalidQuantity   = New(KindValidation, "invalid_quantity", "quantity must be greater than zero")
	ErrUnsupportedFile   = New(KindValidation, "unsupported_file_type", "Unsupported file format. Please upload CSV or Excel file.")
	ErrInvalidImage      = New(KindValidation, "invalid_image", "only image uploads are allowed")
	ErrInvalidID         = New(KindValidation, "invalid_id", "invalid id")
	ErrInvalidStatus     = New(KindValidation, "invalid_status", "invalid contact status")
	ErrInvalidTemplate   = New(KindValidation, "invalid_template_type", "Invalid template type")
	ErrUnreadableFile    = New(KindValidation, "unreadable_file", "file could not be parsed")
	ErrEmailExists       = New(KindConflict, "email_exists", "Email already registered")
	ErrProductNameExists = New(KindConflict, "product_name_exists", "Product name already exists")
	ErrVendorEmailExists = New(KindConflict, "vendor_email_exists", "Vendor email already exists")
	ErrInsufficientStock = New(KindConflict, "insufficient_stock", "not enough stock")
	ErrUserNotFound      = New(KindNotFound, "user_not_found", "user not found")
	ErrProductNotFound   = New(KindNotFound, "product_not_found", "product not found")
	ErrSaleNotFound      = New(KindNotFound, "sale_not_found", "sale not found")
	ErrVendorNotFound    = New(KindNotFound, "vendor_not_found", "vendor not found")
	ErrContactNotFound   = New(KindNotFound, "contact_not_found", "contact not found")
	ErrImportNotFound    = New(KindNotFound, "import_not_found", "Import record not found")
	ErrBadCredentials    = New(KindAuth, "invalid_credentials", "invalid credentials")
	ErrMissingToken      = New(KindAuth, "missing_token", "missing bearer token")
	ErrInvalidSignature  = New(KindAuth, "invalid_signature", "token signature is invalid")
	ErrTokenExpired      = New(KindAuth, "token_expired", "token has expired")
	ErrWrongTokenKind    = New(KindAuth, "wrong_token_kind", "unexpected token kind")
	ErrTokenRevoked      = New(KindAuth, "token_revoked", "token has been revoked")
	ErrUnknownSubject    = New(KindAuth, "unknown_subject", "token subject no longer exists")
	ErrForbidden         = New(KindForbidden, "forbidden", "forbidden")
)
