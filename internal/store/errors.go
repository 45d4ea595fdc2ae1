package store

import "errors"

// Kind classifies a Store error so callers up the stack (Control API, the
// CLI, the HTTP adapter) can map it to a user-facing response without
// inspecting error strings.
type Kind int

const (
	// KindNone is the zero value; Err never wraps it.
	KindNone Kind = iota
	KindBadRequest
	KindAlreadyActive
	KindNotActive
	KindDuplicateException
	KindExceptionNotFound
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "BadRequest"
	case KindAlreadyActive:
		return "AlreadyActive"
	case KindNotActive:
		return "NotActive"
	case KindDuplicateException:
		return "DuplicateException"
	case KindExceptionNotFound:
		return "ExceptionNotFound"
	case KindStorage:
		return "Storage"
	default:
		return "Unknown"
	}
}

// Error wraps an underlying error with a Kind so it can be classified
// without string matching.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(k Kind, err error) *Error {
	return &Error{Kind: k, Err: err}
}

// KindOf extracts the Kind from err, returning KindNone if err is nil or
// does not wrap a *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindNone
}
