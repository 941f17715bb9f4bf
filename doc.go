// Package authtools is an embeddable authentication engine: register,
// login, logout, refresh and check flows over signed access and refresh
// tokens, with persistence and policy delegated to host hooks.
//
// An [Engine] is assembled once through a [Builder]:
//
//	engine, err := authtools.New().
//		WithOptions(opts).
//		WithUserStore(users).
//		WithTokenStore(tokens).
//		Intercept(authtools.FlowLogin, allowList).
//		Build()
//
// Every flow answers with a [Response] whose [Status] carries a stable
// numeric [Code]. Raw errors from hooks are logged and never returned.
//
// # Hooks
//
// Use hooks supply data and policy. The six persistence hooks are required;
// a flow that reaches an unregistered one logs an error and answers with
// [CodeServerError]. The policy hooks default to the policy, password and
// jwt packages. Intercept hooks, one per [Flow], may veto an otherwise
// successful flow with a host-defined intercept code.
//
// # Concurrency
//
// Engine methods are safe for concurrent use after Build. Hooks are invoked
// sequentially within a request and must be safe for concurrent requests.
package authtools
