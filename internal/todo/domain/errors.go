package domain

import "errors"

// Kind classifies service errors. The HTTP boundary maps each kind onto a
// status code; anything that is not an *Error is an internal failure.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindAuthentication
	KindNotFound
	KindConfiguration
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindNotFound:
		return "not_found"
	case KindConfiguration:
		return "configuration"
	default:
		return "unknown"
	}
}

// Error is a classified failure whose Message is safe to show to clients.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// Is matches another *Error with the same kind and message, so the
// sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

func ValidationError(msg string) error     { return &Error{Kind: KindValidation, Message: msg} }
func AuthenticationError(msg string) error { return &Error{Kind: KindAuthentication, Message: msg} }
func NotFoundError(msg string) error       { return &Error{Kind: KindNotFound, Message: msg} }
func ConfigurationError(msg string) error  { return &Error{Kind: KindConfiguration, Message: msg} }

// KindOf returns the kind of err, or 0 when err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

var (
	ErrEmailExists          = ValidationError("Email already exists")
	ErrInvalidCredentials   = AuthenticationError("Invalid credentials")
	ErrRefreshTokenNotFound = NotFoundError("Refresh token not found")
	ErrRefreshTokenInvalid  = AuthenticationError("Invalid or expired refresh token")
	ErrTokenAccountNotFound = NotFoundError("Associated user not found for the refresh token")
	ErrAccountNotFound      = NotFoundError("User not found")
	ErrTaskNotFound         = NotFoundError("Task not found")
)
