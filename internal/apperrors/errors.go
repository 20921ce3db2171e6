package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrAlreadyBorrowed indicates the user already holds an active loan of the book.
var ErrAlreadyBorrowed = errors.New("book already borrowed by user")

// ErrAlreadyReturned indicates the loan is no longer active.
var ErrAlreadyReturned = errors.New("loan already returned")

// ErrAlreadyDecided indicates the verification request is no longer pending.
var ErrAlreadyDecided = errors.New("verification already decided")

// ErrAlreadyVerified indicates the user is verified and cannot resubmit.
var ErrAlreadyVerified = errors.New("user already verified")

// ErrStale indicates the resource changed between being read and being written.
var ErrStale = errors.New("resource changed concurrently")

// ErrUnavailable indicates the book cannot be lent in its current status.
var ErrUnavailable = errors.New("book unavailable")

// ErrNotVerified indicates the borrower must be verified first.
var ErrNotVerified = errors.New("user not verified")

// ErrStoreUnavailable indicates the primary store could not be reached.
var ErrStoreUnavailable = errors.New("store unavailable")

var (
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal error")
)

// Error carries a sentinel kind together with the entity it concerns.
type Error struct {
	Kind   error
	Entity string
	ID     string
	Msg    string
	Cause  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.Error()
	}
	if e.Entity != "" && e.ID != "" {
		msg = fmt.Sprintf("%s: %s %s", msg, e.Entity, e.ID)
	} else if e.Entity != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Entity)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Is reports whether target is the kind of this error.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NotFound builds a not-found error for the given entity id.
func NotFound(entity, id string) error {
	return &Error{Kind: ErrNotFound, Entity: entity, ID: id}
}

// Validation builds a validation error naming the offending field.
func Validation(field, msg string) error {
	return &Error{Kind: ErrValidation, Entity: field, Msg: msg}
}

// Conflict builds an error of a state-conflict kind such as ErrAlreadyBorrowed.
func Conflict(kind error, entity, id string) error {
	return &Error{Kind: kind, Entity: entity, ID: id}
}

// Stale builds an error for a check-then-act write whose snapshot no longer holds.
func Stale(entity, id, msg string) error {
	return &Error{Kind: ErrStale, Entity: entity, ID: id, Msg: msg}
}

// StoreUnavailable wraps a connectivity failure of the primary store.
func StoreUnavailable(op string, cause error) error {
	return &Error{Kind: ErrStoreUnavailable, Msg: "store unavailable during " + op, Cause: cause}
}

var kindCodes = []struct {
	kind error
	code string
}{
	{ErrNotFound, "NOT_FOUND"},
	{ErrValidation, "VALIDATION_ERROR"},
	{ErrDuplicate, "DUPLICATE"},
	{ErrAlreadyBorrowed, "ALREADY_BORROWED"},
	{ErrAlreadyReturned, "ALREADY_RETURNED"},
	{ErrAlreadyDecided, "ALREADY_DECIDED"},
	{ErrAlreadyVerified, "ALREADY_VERIFIED"},
	{ErrStale, "STALE"},
	{ErrUnavailable, "UNAVAILABLE"},
	{ErrNotVerified, "NOT_VERIFIED"},
	{ErrStoreUnavailable, "STORE_UNAVAILABLE"},
	{ErrForbidden, "FORBIDDEN"},
	{ErrUnauthorized, "UNAUTHORIZED"},
}

// KindOf returns a stable code for err, or INTERNAL if it has no known kind.
func KindOf(err error) string {
	for _, k := range kindCodes {
		if errors.Is(err, k.kind) {
			return k.code
		}
	}
	return "INTERNAL"
}

// Details extracts the entity and id from err, if it carries them.
func Details(err error) (entity, id string) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Entity, appErr.ID
	}
	return "", ""
}
