package domain

import "errors"

// Kind classifies business errors. The HTTP layer maps each kind to a status code.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindInvalidState
	KindNotFound
	KindAuth
	KindUnauthenticated
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindInvalidState:
		return "invalid_state"
	case KindNotFound:
		return "not_found"
	case KindAuth:
		return "auth"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

// Error is a business error carrying a client-safe message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, msg string, cause []error) *Error {
	e := &Error{Kind: kind, Message: msg}
	if len(cause) > 0 {
		e.Err = cause[0]
	}
	return e
}

// Validation reports malformed input.
func Validation(msg string, cause ...error) *Error {
	return newError(KindValidation, msg, cause)
}

// Conflict reports a resource that already exists.
func Conflict(msg string, cause ...error) *Error {
	return newError(KindConflict, msg, cause)
}

// InvalidState reports a state transition that is not allowed, such as
// confirming an account twice.
func InvalidState(msg string, cause ...error) *Error {
	return newError(KindInvalidState, msg, cause)
}

func NotFound(msg string, cause ...error) *Error {
	return newError(KindNotFound, msg, cause)
}

// Auth reports rejected credentials.
func Auth(msg string, cause ...error) *Error {
	return newError(KindAuth, msg, cause)
}

func Unauthenticated(msg string, cause ...error) *Error {
	return newError(KindUnauthenticated, msg, cause)
}

func RateLimited(msg string, cause ...error) *Error {
	return newError(KindRateLimited, msg, cause)
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsConflict reports duplicate resources and rejected repeat transitions alike.
func IsConflict(err error) bool {
	kind := KindOf(err)
	return kind == KindConflict || kind == KindInvalidState
}
