// Package jwt issues and verifies the signed identity tokens used by authtools.
//
// Tokens are HS256 JWTs carrying only the subject id, an issued-at time and a
// random token id. Access tokens carry an expiry; refresh tokens are signed
// without one and are tracked by the host's token store instead.
//
// Verification is total: malformed, tampered, wrongly signed and expired
// tokens all collapse to an invalid result and never surface as an error.
package jwt
