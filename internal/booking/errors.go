package booking

import "errors"

type Kind int

const (
	KindFormat Kind = iota + 1
	KindValidation
	KindAuthorization
	KindConflict
)

// Error is a business-rule failure. Message is safe to return to clients.
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

// Is matches on Kind and Message so wrapped copies compare equal to the
// sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// Messages are kept byte-for-byte with the existing clients, typo included.
var (
	ErrValidation  = &Error{Kind: KindValidation, Message: "Validation error"}
	ErrNotProvider = &Error{Kind: KindAuthorization, Message: "You can only create appointments with providers"}
	ErrPastDate    = &Error{Kind: KindValidation, Message: "Past dates are note permitted."}
	ErrUnavailable = &Error{Kind: KindConflict, Message: "Unavailable date."}
)

func formatError(err error) *Error {
	return &Error{Kind: KindFormat, Message: "Validation error", Err: err}
}

// KindOf returns the Kind of err, or 0 when err is not a booking error.
func KindOf(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return 0
}
