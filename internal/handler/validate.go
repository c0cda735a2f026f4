package handler

import (
	"regexp"
	"unicode"
)

var (
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9._-]{3,30}$`)
	itemNameRe = regexp.MustCompile(`^[a-zA-Z0-9\s\-_]+$`)
)

func validEmail(s string) bool { return len(s) <= 255 && emailRe.MatchString(s) }

func validUsername(s string) bool { return usernameRe.MatchString(s) }

// validPassword enforces the registration password policy: at least 8
// characters with at least one lowercase letter, one uppercase letter and
// one digit.
func validPassword(s string) bool {
	if len(s) < 8 {
		return false
	}
	var lower, upper, digit bool
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return lower && upper && digit
}
