package authtools

import "errors"

var (
	// ErrHookNotRegistered is returned by a required use hook that the host never registered.
	ErrHookNotRegistered = errors.New("required use hook not registered")
	// ErrMissingSecret is returned by Build when a token secret is empty.
	ErrMissingSecret = errors.New("token secret missing")
	// ErrSharedSecret is returned by Build when access and refresh tokens would share a secret.
	ErrSharedSecret = errors.New("access and refresh token secrets must differ")
	// ErrInvalidPasswordRule is returned by Build for a malformed password rule descriptor.
	ErrInvalidPasswordRule = errors.New("invalid password rule descriptor")
	// ErrInvalidRouteState is returned by Build for an unknown route state.
	ErrInvalidRouteState = errors.New("invalid route state")
	// ErrInvalidIDFormat is returned by Build for an unknown id format.
	ErrInvalidIDFormat = errors.New("invalid id format")
	// ErrInvalidConfig is returned by Build for any other configuration error.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrBuilderUsed is returned when Build is called twice on one Builder.
	ErrBuilderUsed = errors.New("builder already used")
	// ErrFlowPanicked wraps a recovered panic inside a flow.
	ErrFlowPanicked = errors.New("flow panicked")
)
