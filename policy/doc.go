// Package policy parses password-complexity rule descriptors and applies
// password and email format checks.
//
// Every function in this package is a pure predicate or parser: nothing
// here performs I/O or holds state, so results depend only on inputs.
//
// # Rule descriptors
//
// A descriptor has the form U-L-D-S-N. The first four fields toggle the
// uppercase, lowercase, digit and special-character requirements ("Y"
// enables a requirement, anything else disables it). N is the minimum
// password length in characters.
package policy
