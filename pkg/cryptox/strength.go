package cryptox

import (
	"strings"
	"unicode"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 12

// symbolSet is the punctuation accepted as the "symbol" character class.
const symbolSet = "!@#$%^&*()_+-=[]{};':\"\\|,.<>/?`~"

// commonPasswords are rejected outright regardless of character mix.
// Matched case-insensitively against the whole password.
var commonPasswords = []string{
	"password",
	"password123",
	"password123!",
	"qwerty123456",
	"letmein12345",
	"admin1234567",
	"welcome12345",
	"iloveyou1234",
	"changeme1234",
	"restaurant123",
}

// StrengthResult reports every rule a candidate password violates, so a UI
// can render the full checklist rather than one failure at a time.
type StrengthResult struct {
	Valid      bool
	Violations []string
}

// ValidateStrength checks a candidate password against the platform policy:
// minimum length, one uppercase, one lowercase, one digit, one symbol, and
// not a well-known password.
func ValidateStrength(password string) StrengthResult {
	var violations []string

	if len(password) < MinPasswordLength {
		violations = append(violations, "must be at least 12 characters long")
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(symbolSet, r):
			hasSymbol = true
		}
	}

	if !hasUpper {
		violations = append(violations, "must contain an uppercase letter")
	}
	if !hasLower {
		violations = append(violations, "must contain a lowercase letter")
	}
	if !hasDigit {
		violations = append(violations, "must contain a digit")
	}
	if !hasSymbol {
		violations = append(violations, "must contain a symbol")
	}

	lowered := strings.ToLower(password)
	for _, common := range commonPasswords {
		if lowered == common {
			violations = append(violations, "is too common")
			break
		}
	}

	return StrengthResult{
		Valid:      len(violations) == 0,
		Violations: violations,
	}
}
