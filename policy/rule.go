package policy

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultDescriptor requires upper, lower and digit characters and at
	// least eight characters in total.
	DefaultDescriptor = "Y-Y-Y-N-8"

	// SpecialCharacters is the fixed set satisfying the special-character requirement.
	SpecialCharacters = "`!@#$%^&*()_+-=[]{};':\"\\|,.<>/?~"

	descriptorFields = 5
)

// ErrMalformedRule is returned by ParseRule when a descriptor is not of the
// form U-L-D-S-N.
var ErrMalformedRule = errors.New("policy: malformed password rule descriptor")

// Rule is the parsed form of a password rule descriptor.
type Rule struct {
	RequireUpper   bool
	RequireLower   bool
	RequireDigit   bool
	RequireSpecial bool
	MinLength      int
}

// ParseRule parses a U-L-D-S-N descriptor. Malformed descriptors fail
// instead of falling back to a permissive rule.
func ParseRule(descriptor string) (Rule, error) {
	fields := strings.Split(descriptor, "-")
	if len(fields) != descriptorFields {
		return Rule{}, fmt.Errorf("%w: %q has %d fields, want %d", ErrMalformedRule, descriptor, len(fields), descriptorFields)
	}

	minLength, err := strconv.Atoi(fields[4])
	if err != nil || !allDigits(fields[4]) {
		return Rule{}, fmt.Errorf("%w: %q has invalid minimum length %q", ErrMalformedRule, descriptor, fields[4])
	}

	return Rule{
		RequireUpper:   fields[0] == "Y",
		RequireLower:   fields[1] == "Y",
		RequireDigit:   fields[2] == "Y",
		RequireSpecial: fields[3] == "Y",
		MinLength:      minLength,
	}, nil
}

// MustParseRule is like ParseRule but panics on a malformed descriptor.
// It is intended for package-level rule constants.
func MustParseRule(descriptor string) Rule {
	rule, err := ParseRule(descriptor)
	if err != nil {
		panic(err)
	}
	return rule
}

// String renders the rule back into descriptor form.
func (r Rule) String() string {
	return strings.Join([]string{
		yesNo(r.RequireUpper),
		yesNo(r.RequireLower),
		yesNo(r.RequireDigit),
		yesNo(r.RequireSpecial),
		strconv.Itoa(r.MinLength),
	}, "-")
}

// ValidatePassword reports whether password satisfies every requirement of
// rule. All checks run regardless of earlier failures.
func ValidatePassword(password string, rule Rule) bool {
	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(SpecialCharacters, r):
			hasSpecial = true
		}
	}

	valid := true
	if rule.RequireUpper && !hasUpper {
		valid = false
	}
	if rule.RequireLower && !hasLower {
		valid = false
	}
	if rule.RequireDigit && !hasDigit {
		valid = false
	}
	if rule.RequireSpecial && !hasSpecial {
		valid = false
	}
	if utf8.RuneCountInString(password) < rule.MinLength {
		valid = false
	}
	return valid
}

func yesNo(v bool) string {
	if v {
		return "Y"
	}
	return "N"
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
