package flows

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/authtools/jwt"
)

// User is the identity record owned by the host's user store.
type User struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Username       string `json:"username"`
	HashedPassword string `json:"-"`
}

// Failure classifies the step that stopped a flow.
type Failure int

const (
	FailureNone Failure = iota
	FailureMissingInput
	FailureMalformedEmail
	FailureWeakPassword
	FailureEmailTaken
	FailureUsernameTaken
	FailureUserNotFound
	FailurePasswordMismatch
	FailureInvalidToken
	FailureTokenNotFound
	FailureInvalidAccessToken
	FailureIntercepted
	FailureServer
)

var failureNames = [...]string{
	FailureNone:               "none",
	FailureMissingInput:       "missing_input",
	FailureMalformedEmail:     "malformed_email",
	FailureWeakPassword:       "weak_password",
	FailureEmailTaken:         "email_taken",
	FailureUsernameTaken:      "username_taken",
	FailureUserNotFound:       "user_not_found",
	FailurePasswordMismatch:   "password_mismatch",
	FailureInvalidToken:       "invalid_token",
	FailureTokenNotFound:      "token_not_found",
	FailureInvalidAccessToken: "invalid_access_token",
	FailureIntercepted:        "intercepted",
	FailureServer:             "server_error",
}

func (f Failure) String() string {
	if f < 0 || int(f) >= len(failureNames) {
		return fmt.Sprintf("failure(%d)", int(f))
	}
	return failureNames[f]
}

// Result carries the outcome of one flow run. Fields beyond Failure are
// populated only as far as the flow progressed.
type Result struct {
	Failure       Failure
	Err           error
	InterceptCode int
	User          *User
	Payload       jwt.Payload
	AccessToken   string
	RefreshToken  string
}

// OK reports whether the flow ran to completion.
func (r Result) OK() bool {
	return r.Failure == FailureNone
}

var errInterceptFailed = errors.New("intercept hook failed")

type decisionKind uint8

const (
	decisionProceed decisionKind = iota
	decisionReject
	decisionFail
)

// Decision is the outcome of an intercept hook: proceed, reject with a host
// code, or fail as a server error. The zero value proceeds.
type Decision struct {
	kind decisionKind
	code int
	err  error
}

// Proceed lets the flow continue.
func Proceed() Decision {
	return Decision{}
}

// Reject vetoes the flow; code is echoed to the client as the intercept code.
func Reject(code int) Decision {
	return Decision{kind: decisionReject, code: code}
}

// Fail aborts the flow with a server error.
func Fail(err error) Decision {
	if err == nil {
		err = errInterceptFailed
	}
	return Decision{kind: decisionFail, err: err}
}

// Rejected reports whether d vetoes the flow and with which code.
func (d Decision) Rejected() (int, bool) {
	return d.code, d.kind == decisionReject
}

// Err returns the failure carried by d, or nil.
func (d Decision) Err() error {
	if d.kind != decisionFail {
		return nil
	}
	return d.err
}

// InterceptEvent is the fully resolved flow context handed to an intercept
// hook. Fields a flow does not produce are left zero: register carries only
// User, logout and refresh carry RefreshToken and Payload.
type InterceptEvent struct {
	User         *User
	AccessToken  string
	RefreshToken string
	Payload      jwt.Payload
}

// InterceptFunc is the per-flow veto callback.
type InterceptFunc func(ctx context.Context, event InterceptEvent) Decision

func intercept(ctx context.Context, fn InterceptFunc, event InterceptEvent) (Result, bool) {
	if fn == nil {
		return Result{}, false
	}

	d := fn(ctx, event)
	switch d.kind {
	case decisionReject:
		return Result{Failure: FailureIntercepted, InterceptCode: d.code}, true
	case decisionFail:
		return serverFailure("intercept", d.err), true
	default:
		return Result{}, false
	}
}

func fail(f Failure) Result {
	return Result{Failure: f}
}

func serverFailure(step string, err error) Result {
	return Result{Failure: FailureServer, Err: fmt.Errorf("%s: %w", step, err)}
}
