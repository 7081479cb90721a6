package identity

import (
	"errors"
)

// ErrUserNotFound is returned by stores when no record matches
var ErrUserNotFound = errors.New("user not found")

// ErrMalformedSubject is returned when a token identifier is not numeric
var ErrMalformedSubject = errors.New("malformed subject identifier")

// ErrSignInDenied is returned by Service when the sign-in gate rejects a profile
var ErrSignInDenied = errors.New("sign-in denied")

// ErrMissingSecret is returned when no token signing secret is configured
var ErrMissingSecret = errors.New("missing token secret")

// ErrUnmodeledAccountField is returned when a linked account carries a field
// the accounts table does not store
var ErrUnmodeledAccountField = errors.New("account field is not modeled")

// ErrNilToken is returned when a reconcile call has no token to work on
var ErrNilToken = errors.New("token is nil")

// IsNotFound checks for missing user records
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

// IsMalformedSubject checks for identifier parse failures
func IsMalformedSubject(err error) bool {
	return errors.Is(err, ErrMalformedSubject)
}
