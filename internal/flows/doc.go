// Package flows contains the pure-function pipelines behind every Engine
// request: register, login, logout, refresh, check and access-token
// validation.
//
// Each Run function takes its input, a Deps value holding the resolved
// hooks and token capability, and the flow's intercept callback. It returns
// a Result whose Failure names the first step that stopped the pipeline.
// Mapping failures to response codes, logging and metrics belong to the
// root package.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import authtools (to avoid import cycles).
//   - Perform I/O directly; every lookup and write goes through Deps.
//   - Invoke two hooks concurrently within one request.
package flows
