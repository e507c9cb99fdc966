// Package apperr classifies errors into the categories the HTTP layer and
// the retry loops care about. Synchronous handlers map kinds to status
// codes; the reconciliation paths use Transient vs Permanent to decide
// whether another attempt is worth making.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// Validation: malformed or missing input. Reject immediately, no retry.
	Validation Kind = iota + 1
	// Conflict: slot or duplicate-resource conflict. Caller must change input.
	Conflict
	// NotFound: the referenced resource does not exist.
	NotFound
	// Authorization: the actor does not own the resource.
	Authorization
	// InvalidTransition: the booking's current status does not permit the
	// requested action. Distinct from Authorization on purpose.
	InvalidTransition
	// Transient: remote unavailable, replication lag, timeout. Retried
	// internally with bounded backoff, never surfaced mid-retry.
	Transient
	// Permanent: retries exhausted or a non-transient failure.
	Permanent
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Conflict:
		return "conflict"
	case NotFound:
		return "not_found"
	case Authorization:
		return "authorization"
	case InvalidTransition:
		return "invalid_transition"
	case Transient:
		return "transient"
	case Permanent:
		return "permanent"
	}
	return "unknown"
}

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

func (e *Error) Unwrap() error { return e.Err }

// New builds an error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap attaches a kind to an underlying error.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func Validationf(format string, args ...any) *Error {
	return &Error{Kind: Validation, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) *Error {
	return &Error{Kind: Conflict, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: NotFound, Message: fmt.Sprintf(format, args...)}
}

func Authorizationf(format string, args ...any) *Error {
	return &Error{Kind: Authorization, Message: fmt.Sprintf(format, args...)}
}

func InvalidTransitionf(format string, args ...any) *Error {
	return &Error{Kind: InvalidTransition, Message: fmt.Sprintf(format, args...)}
}

func Permanentf(format string, args ...any) *Error {
	return &Error{Kind: Permanent, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind carried by err, or 0 when err is not an apperr.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
