// Package middleware guards net/http handlers with
// authtools.Engine.ValidateAccessToken.
//
// [RequireAccessToken] reads a bearer-style header, answers a missing token
// with 400 and code 1 and an invalid one with 403 and code 2, both in the
// standard response envelope. A valid token's payload is attached to the
// request context; read it with [PayloadFromContext].
//
// The package holds no token logic of its own. Route states do not apply.
package middleware
