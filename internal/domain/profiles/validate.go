package profiles

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

// NormalizeUsername lowercases and drops every whitespace rune.
func NormalizeUsername(value string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, value)
}

// Validate checks a setup form and returns it normalized.
func Validate(input SetupInput) (SetupInput, error) {
	input.UserID = strings.TrimSpace(input.UserID)
	input.FullName = strings.TrimSpace(input.FullName)
	input.Username = NormalizeUsername(input.Username)
	input.City = strings.TrimSpace(input.City)
	input.AvatarURL = strings.TrimSpace(input.AvatarURL)

	if input.FullName == "" || input.Username == "" || input.City == "" || input.Age == 0 {
		return input, ErrFieldsRequired
	}
	if input.Age < MinAge {
		return input, ErrUnderage
	}
	if utf8.RuneCountInString(input.Username) < MinUsernameLength {
		return input, ErrUsernameTooShort
	}
	return input, nil
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrFieldsRequired) ||
		errors.Is(err, ErrUnderage) ||
		errors.Is(err, ErrUsernameTooShort)
}
