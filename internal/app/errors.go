package app

import "errors"

// Kind classifies an operation failure so boundaries can map it to a
// transport signal without parsing messages.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindUnauthorized
	KindInvalid
)

// Error is the tagged failure returned by every operation. All failures
// are caller-recoverable; none abort the process.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func notFound(msg string) error     { return &Error{Kind: KindNotFound, Message: msg} }
func unauthorized(msg string) error { return &Error{Kind: KindUnauthorized, Message: msg} }
func invalid(msg string) error      { return &Error{Kind: KindInvalid, Message: msg} }

// KindOf extracts the failure kind, or 0 for foreign errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return 0
}

func IsNotFound(err error) bool     { return KindOf(err) == KindNotFound }
func IsUnauthorized(err error) bool { return KindOf(err) == KindUnauthorized }
func IsInvalid(err error) bool      { return KindOf(err) == KindInvalid }
