package policy

import (
	"errors"
	"strings"
	"testing"
)

func TestParseRuleDefault(t *testing.T) {
	rule, err := ParseRule(DefaultDescriptor)
	if err != nil {
		t.Fatalf("ParseRule error: %v", err)
	}
	want := Rule{RequireUpper: true, RequireLower: true, RequireDigit: true, MinLength: 8}
	if rule != want {
		t.Fatalf("unexpected rule: %+v", rule)
	}
	if rule.String() != DefaultDescriptor {
		t.Fatalf("expected round trip to %q, got %q", DefaultDescriptor, rule.String())
	}
}

func TestParseRuleNonYesFlagsDisable(t *testing.T) {
	rule, err := ParseRule("y-x--N-0")
	if err != nil {
		t.Fatalf("ParseRule error: %v", err)
	}
	if rule.RequireUpper || rule.RequireLower || rule.RequireDigit || rule.RequireSpecial {
		t.Fatalf("expected every flag disabled, got %+v", rule)
	}
}

func TestParseRuleRejectsMalformed(t *testing.T) {
	for _, descriptor := range []string{"", "Y-Y-Y-N", "Y-Y-Y-N-eight", "Y-Y-Y-N--1", "Y-Y-Y-N-8-9", "Y-Y-Y-N-", "Y-Y-Y-N-+8", "Y-Y-Y-N- 8", "Y-Y-Y-N-0x8"} {
		if _, err := ParseRule(descriptor); !errors.Is(err, ErrMalformedRule) {
			t.Fatalf("expected ErrMalformedRule for %q, got %v", descriptor, err)
		}
	}
}

func TestMustParseRulePanicsOnMalformed(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	MustParseRule("nope")
}

// Every combination of flags and a handful of lengths: a password carrying
// exactly the required classes at exactly the minimum length passes, and
// dropping any required class or one character fails.
func TestValidatePasswordExhaustive(t *testing.T) {
	classes := []struct {
		flag   func(*Rule) *bool
		sample byte
	}{
		{func(r *Rule) *bool { return &r.RequireUpper }, 'A'},
		{func(r *Rule) *bool { return &r.RequireLower }, 'a'},
		{func(r *Rule) *bool { return &r.RequireDigit }, '1'},
		{func(r *Rule) *bool { return &r.RequireSpecial }, '!'},
	}

	for mask := 0; mask < 16; mask++ {
		for _, minLength := range []int{0, 4, 9, 16} {
			var rule Rule
			var required []byte
			for i, c := range classes {
				if mask&(1<<i) != 0 {
					*c.flag(&rule) = true
					required = append(required, c.sample)
				}
			}
			rule.MinLength = minLength

			parsed, err := ParseRule(rule.String())
			if err != nil {
				t.Fatalf("ParseRule(%q) error: %v", rule.String(), err)
			}
			if parsed != rule {
				t.Fatalf("descriptor %q parsed to %+v", rule.String(), parsed)
			}

			length := minLength
			if length < len(required) {
				length = len(required)
			}
			// ' ' belongs to no class, so padding never satisfies a requirement.
			password := string(required) + strings.Repeat(" ", length-len(required))
			if !ValidatePassword(password, parsed) {
				t.Fatalf("rule %q rejected %q", rule.String(), password)
			}

			for i := range required {
				missing := password[:i] + " " + password[i+1:]
				if ValidatePassword(missing, parsed) {
					t.Fatalf("rule %q accepted %q missing class %q", rule.String(), missing, required[i])
				}
			}

			if minLength > 0 && len(required) < minLength {
				short := password[:len(password)-1]
				if ValidatePassword(short, parsed) {
					t.Fatalf("rule %q accepted short password %q", rule.String(), short)
				}
			}
		}
	}
}

func TestValidatePasswordSpecialSet(t *testing.T) {
	rule := Rule{RequireSpecial: true}
	for _, r := range SpecialCharacters {
		if !ValidatePassword(string(r), rule) {
			t.Fatalf("expected %q to satisfy special requirement", r)
		}
	}
	if ValidatePassword("abc 123", rule) {
		t.Fatal("space must not satisfy special requirement")
	}
}

func TestValidatePasswordCountsCharacters(t *testing.T) {
	rule := Rule{MinLength: 3}
	if !ValidatePassword("äöü", rule) {
		t.Fatal("expected three multi-byte characters to satisfy length 3")
	}
	if ValidatePassword("äö", rule) {
		t.Fatal("expected two characters to fail length 3")
	}
}
