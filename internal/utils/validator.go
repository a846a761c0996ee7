package utils

import (
	"strings"
	"unicode"
)

const (
	PasswordMinLength = 8
	PasswordMaxLength = 16
)

// ValidatePassword validates a password
// 8 to 16 characters, no whitespace, at least one digit, one lowercase letter,
// one uppercase letter and one symbol
func ValidatePassword(password string) bool {
	length := len([]rune(password))
	if length < PasswordMinLength || length > PasswordMaxLength {
		return false
	}

	var hasUpper, hasLower, hasNumber, hasSymbol bool
	for _, char := range password {
		switch {
		case unicode.IsSpace(char):
			return false
		case 'A' <= char && char <= 'Z':
			hasUpper = true
		case 'a' <= char && char <= 'z':
			hasLower = true
		case '0' <= char && char <= '9':
			hasNumber = true
		case char != '_':
			hasSymbol = true
		}
	}

	return hasUpper && hasLower && hasNumber && hasSymbol
}

// SanitizeEmail sanitizes an email address
func SanitizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
