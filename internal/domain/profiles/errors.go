package profiles

import "errors"

var (
	ErrProfileNotFound  = errors.New("profile not found")
	ErrFieldsRequired   = errors.New("all fields are mandatory")
	ErrUnderage         = errors.New("minimum age is 13 years")
	ErrUsernameTooShort = errors.New("username too short")
	ErrUsernameTaken    = errors.New("username already taken")
	ErrUserIDRequired   = errors.New("user id is required")
)
