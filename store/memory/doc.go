// Package memory provides in-process user and refresh token stores for
// tests, examples and single-node development servers.
package memory
