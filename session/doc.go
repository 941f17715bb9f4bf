// Package session stores live refresh tokens in Redis.
//
// Tokens are never written in clear: each key is the SHA-256 of the token
// under a configurable prefix. The value is a compact binary [Record]. A
// counter key tracks the number of live tokens and is maintained by Lua
// scripts so it can never go negative.
//
// [Store] satisfies authtools.TokenStore and is registered with
// Builder.WithTokenStore.
package session
