package service

import (
	"errors"
	"fmt"
)

// Error classes. Every service error matches exactly one of these with
// errors.Is; anything that matches none is an internal failure.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
)

type classError struct {
	class error
	msg   string
}

func (e *classError) Error() string        { return e.msg }
func (e *classError) Is(target error) bool { return target == e.class }

func newError(class error, msg string) error {
	return &classError{class: class, msg: msg}
}

func validationf(format string, args ...any) error {
	return newError(ErrValidation, fmt.Sprintf(format, args...))
}

var (
	ErrUserNotFound         = newError(ErrNotFound, "user not found")
	ErrEmailTaken           = newError(ErrConflict, "email is already registered")
	ErrInvalidEmail         = newError(ErrValidation, "email must contain @")
	ErrPasswordTooShort     = newError(ErrValidation, "password must be at least 8 characters")
	ErrInvalidCredentials   = newError(ErrValidation, "email or password is incorrect")
	ErrSelfFollow           = newError(ErrValidation, "cannot follow yourself")
	ErrAlreadyFollowing     = newError(ErrConflict, "already following this user")
	ErrFollowNotFound       = newError(ErrNotFound, "follow relationship not found")
	ErrScoreOutOfRange      = newError(ErrValidation, "rate must be between 0 and 5")
	ErrDuplicateRating      = newError(ErrConflict, "rating already exists for this user")
	ErrRatingNotFound       = newError(ErrNotFound, "rating not found")
	ErrNotRater             = newError(ErrForbidden, "only the author can edit this rating")
	ErrNotificationNotFound = newError(ErrNotFound, "notification not found")
	ErrEmailAuthNotFound    = newError(ErrNotFound, "no pending verification code for this email")
	ErrInvalidImage         = newError(ErrValidation, "profile image must be an image under 5MB")
	ErrAccountInactive      = newError(ErrForbidden, "account is no longer active")
)

// Message returns the client-facing text for err. Internal failures get a
// generic message; their details belong in logs.
func Message(err error) string {
	var ce *classError
	if errors.As(err, &ce) {
		return ce.msg
	}
	return "internal server error"
}

// Kind returns the class sentinel err belongs to, or nil for an internal
// failure.
func Kind(err error) error {
	for _, class := range []error{ErrValidation, ErrNotFound, ErrForbidden, ErrConflict} {
		if errors.Is(err, class) {
			return class
		}
	}
	return nil
}
