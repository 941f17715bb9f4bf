package policy

import "testing"

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"a@b.com",
		"first.last@example.co.uk",
		"user+tag@sub-domain.example.org",
		`"quoted local"@example.com`,
		"ip@[192.168.0.1]",
	}
	for _, email := range valid {
		if !ValidateEmail(email) {
			t.Fatalf("expected %q to be valid", email)
		}
	}

	invalid := []string{
		"",
		"plain",
		"a@b",
		"a@b.c",
		"a@@b.com",
		"a b@example.com",
		".a@example.com",
		"a.@example.com",
		"a@example.c0m",
		"a@[192.168.0]",
	}
	for _, email := range invalid {
		if ValidateEmail(email) {
			t.Fatalf("expected %q to be invalid", email)
		}
	}
}
