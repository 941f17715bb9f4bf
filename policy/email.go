package policy

import "regexp"

// emailPattern accepts a dotted or quoted local part followed by either a
// domain with a 2+ letter top-level label or a bracketed IPv4 literal.
var emailPattern = regexp.MustCompile(`^(([^<>()\[\]\\.,;:\s@"]+(\.[^<>()\[\]\\.,;:\s@"]+)*)|(".+"))@((\[[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\])|(([a-zA-Z\-0-9]+\.)+[a-zA-Z]{2,}))$`)

// ValidateEmail reports whether email is structurally well formed. It does
// not verify that the mailbox or domain exists.
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}
