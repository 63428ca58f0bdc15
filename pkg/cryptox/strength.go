package cryptox

import (
	"strings"
	"unicode"
)

// Symbols is the punctuation set a password must draw at least one
// character from to pass the symbol rule.
const Symbols = `!@#$%^&*()_+-=[]{};':"\|,.<>/?` + "`~"

// minPasswordLength is the shortest password the registration gate accepts.
const minPasswordLength = 8

// StrengthResult reports the outcome of password strength validation.
// Score awards 20 points per passed rule; Valid is true only when every
// rule passes (Errors is empty).
type StrengthResult struct {
	Valid  bool
	Errors []string
	Score  int
}

type strengthRule struct {
	message string
	passes  func(string) bool
}

// Rules are evaluated in a fixed order so error lists are stable.
var strengthRules = []strengthRule{
	{
		message: "password must be at least 8 characters long",
		passes:  func(p string) bool { return len(p) >= minPasswordLength },
	},
	{
		message: "password must contain at least one lowercase letter",
		passes:  containsClass(unicode.IsLower),
	},
	{
		message: "password must contain at least one uppercase letter",
		passes:  containsClass(unicode.IsUpper),
	},
	{
		message: "password must contain at least one digit",
		passes:  containsClass(unicode.IsDigit),
	},
	{
		message: "password must contain at least one symbol",
		passes: func(p string) bool {
			return strings.ContainsAny(p, Symbols)
		},
	},
}

// ValidateStrength scores a plaintext password against five independent
// rules: minimum length, lowercase, uppercase, digit, and symbol. It is pure
// and never inspects anything beyond the supplied string.
func ValidateStrength(password string) StrengthResult {
	res := StrengthResult{}
	per := 100 / len(strengthRules)

	for _, rule := range strengthRules {
		if rule.passes(password) {
			res.Score += per
		} else {
			res.Errors = append(res.Errors, rule.message)
		}
	}

	res.Valid = len(res.Errors) == 0
	return res
}

func containsClass(class func(rune) bool) func(string) bool {
	return func(p string) bool {
		for _, r := range p {
			if class(r) {
				return true
			}
		}
		return false
	}
}
