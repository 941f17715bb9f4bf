package authtools

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/oops"

	"github.com/MrEthical07/authtools/internal/audit"
	"github.com/MrEthical07/authtools/internal/flows"
)

// Engine runs the five auth flows. It is immutable after Build and safe for
// concurrent use; concurrency guarantees of the hooks are the host's.
type Engine struct {
	config     Config
	log        engineLogger
	deps       flows.Deps
	intercepts [flowCount]InterceptFunc
	metrics    *Metrics
	audit      *audit.Dispatcher
}

// Register creates a user. On success Data carries the public user fields.
func (e *Engine) Register(ctx context.Context, req RegisterRequest) Response[RegisterData] {
	return execute(ctx, e, FlowRegister,
		func(ctx context.Context) flows.Result {
			return flows.RunRegister(ctx, req, e.deps, e.intercepts[FlowRegister])
		},
		func(res flows.Result) *RegisterData {
			return &RegisterData{ID: res.User.ID, Email: res.User.Email, Username: res.User.Username}
		})
}

// Login authenticates by email or username and returns a token pair.
func (e *Engine) Login(ctx context.Context, req LoginRequest) Response[LoginData] {
	return execute(ctx, e, FlowLogin,
		func(ctx context.Context) flows.Result {
			return flows.RunLogin(ctx, req, e.deps, e.intercepts[FlowLogin])
		},
		func(res flows.Result) *LoginData {
			return &LoginData{AccessToken: res.AccessToken, RefreshToken: res.RefreshToken}
		})
}

// Logout deletes a live refresh token.
func (e *Engine) Logout(ctx context.Context, req LogoutRequest) Response[NoData] {
	return execute(ctx, e, FlowLogout,
		func(ctx context.Context) flows.Result {
			return flows.RunLogout(ctx, req, e.deps, e.intercepts[FlowLogout])
		},
		noData)
}

// Refresh mints a new access token from a live refresh token.
func (e *Engine) Refresh(ctx context.Context, req RefreshRequest) Response[RefreshData] {
	return execute(ctx, e, FlowRefresh,
		func(ctx context.Context) flows.Result {
			return flows.RunRefresh(ctx, req, e.deps, e.intercepts[FlowRefresh])
		},
		func(res flows.Result) *RefreshData {
			return &RefreshData{AccessToken: res.AccessToken}
		})
}

// Check reports whether a token pair is still valid. It mints and stores
// nothing.
func (e *Engine) Check(ctx context.Context, req CheckRequest) Response[NoData] {
	return execute(ctx, e, FlowCheck,
		func(ctx context.Context) flows.Result {
			return flows.RunCheck(ctx, req, e.deps, e.intercepts[FlowCheck])
		},
		noData)
}

func noData(flows.Result) *NoData { return nil }

// execute applies the route state, recovers panics and turns a flow result
// into a response, log lines, metrics and an audit event.
func execute[T any](ctx context.Context, e *Engine, flow Flow, body func(context.Context) flows.Result, data func(flows.Result) *T) (resp Response[T]) {
	if ctx == nil {
		ctx = context.Background()
	}

	codes := codeTable[flow]

	if state := e.config.Routes.State(flow); state != RouteActive {
		e.log.debug(fmt.Sprintf("%s: route %s", flow, state))
		st := Status{Error: true, Code: codes.disabled}
		e.metrics.Inc(FlowMetric(flow, OutcomeDisabled))
		e.emitAudit(ctx, flow, st, flows.Result{}, "route_"+string(state))
		return Failure[T](codes.disabled)
	}

	start := time.Now()
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		err := oops.Code("AUTHTOOLS_FLOW_PANIC").With("flow", flow.String()).Wrapf(ErrFlowPanicked, "%v", r)
		e.log.warn(fmt.Sprintf("%s: %v", flow, err))
		e.metrics.Inc(FlowMetric(flow, OutcomeServerError))
		e.metrics.Observe(FlowLatencyMetric(flow), time.Since(start))
		e.emitAudit(ctx, flow, Status{Error: true, Code: CodeServerError}, flows.Result{}, "panic")
		resp = ServerError[T]()
	}()

	res := body(ctx)

	st := e.status(flow, res)
	e.narrate(flow, res)
	e.metrics.Inc(FlowMetric(flow, outcomeOf(res)))
	e.metrics.Observe(FlowLatencyMetric(flow), time.Since(start))
	e.emitAudit(ctx, flow, st, res, "")

	switch {
	case res.Failure == flows.FailureIntercepted:
		return Intercepted[T](st.Code, st.InterceptCode)
	case !res.OK():
		return Failure[T](st.Code)
	default:
		return Success(st.Code, data(res))
	}
}

func outcomeOf(res flows.Result) Outcome {
	switch res.Failure {
	case flows.FailureNone:
		return OutcomeSuccess
	case flows.FailureIntercepted:
		return OutcomeIntercepted
	case flows.FailureServer:
		return OutcomeServerError
	default:
		return OutcomeFailure
	}
}

func (e *Engine) status(flow Flow, res flows.Result) Status {
	if res.OK() {
		return Status{Code: codeTable[flow].success}
	}
	st := Status{Error: true, Code: e.codeFor(flow, res.Failure)}
	if res.Failure == flows.FailureIntercepted {
		st.InterceptCode = res.InterceptCode
	}
	return st
}

// codeFor maps a failure to the client code of flow. SensitiveAPI folds
// the identity collisions and the credential failures into one code each.
func (e *Engine) codeFor(flow Flow, failure flows.Failure) Code {
	codes := codeTable[flow]
	sensitive := e.config.SensitiveAPI

	switch failure {
	case flows.FailureNone:
		return codes.success
	case flows.FailureMissingInput:
		return codes.missing
	case flows.FailureMalformedEmail:
		return CodeRegisterMalformedMail
	case flows.FailureWeakPassword:
		return CodeRegisterWeakPassword
	case flows.FailureEmailTaken:
		if sensitive {
			return CodeRegisterLoginTaken
		}
		return CodeRegisterEmailTaken
	case flows.FailureUsernameTaken:
		if sensitive {
			return CodeRegisterLoginTaken
		}
		return CodeRegisterUsernameTaken
	case flows.FailureUserNotFound:
		if sensitive {
			return CodeLoginInvalidCredentials
		}
		return CodeLoginUserNotFound
	case flows.FailurePasswordMismatch:
		if sensitive {
			return CodeLoginInvalidCredentials
		}
		return CodeLoginPasswordMismatch
	case flows.FailureInvalidToken:
		return codes.invalid
	case flows.FailureTokenNotFound:
		return codes.notFound
	case flows.FailureInvalidAccessToken:
		return CodeCheckInvalidAccessToken
	case flows.FailureIntercepted:
		return codes.intercepted
	default:
		return CodeServerError
	}
}

// narrate writes the debug line of a client failure or the warn line of a
// server failure. SensitiveLogs applies the same folding as SensitiveAPI.
func (e *Engine) narrate(flow Flow, res flows.Result) {
	sensitive := e.config.SensitiveLogs

	var msg string
	switch res.Failure {
	case flows.FailureNone:
		return
	case flows.FailureServer:
		e.log.warn(fmt.Sprintf("%s: %v", flow, res.Err))
		return
	case flows.FailureMissingInput:
		msg = missingInputMessage(flow)
	case flows.FailureMalformedEmail:
		msg = "email is malformed"
	case flows.FailureWeakPassword:
		msg = "password is too weak"
	case flows.FailureEmailTaken:
		msg = "email is already used"
		if sensitive {
			msg = "login is already used"
		}
	case flows.FailureUsernameTaken:
		msg = "username is already used"
		if sensitive {
			msg = "login is already used"
		}
	case flows.FailureUserNotFound:
		msg = "user was not found"
		if sensitive {
			msg = "user was not found or password is incorrect"
		}
	case flows.FailurePasswordMismatch:
		msg = "password is incorrect"
		if sensitive {
			msg = "user was not found or password is incorrect"
		}
	case flows.FailureInvalidToken:
		msg = "refresh token is invalid"
	case flows.FailureTokenNotFound:
		msg = "refresh token does not exist"
	case flows.FailureInvalidAccessToken:
		msg = "access token is invalid"
	case flows.FailureIntercepted:
		msg = fmt.Sprintf("intercepted with code %d", res.InterceptCode)
	default:
		msg = res.Failure.String()
	}

	e.log.debug(flow.String() + ": " + msg)
}

func missingInputMessage(flow Flow) string {
	switch flow {
	case FlowRegister:
		return "email, username or password missing"
	case FlowLogin:
		return "login or password missing"
	case FlowCheck:
		return "access token or refresh token missing"
	default:
		return "refresh token missing"
	}
}

// ValidateAccessToken verifies a bearer access token outside any flow. It
// honours no route state.
func (e *Engine) ValidateAccessToken(token string) AccessValidation {
	start := time.Now()
	res := flows.RunValidateAccess(token, e.deps)
	e.metrics.Observe(MetricValidateLatency, time.Since(start))

	switch res.Failure {
	case flows.FailureNone:
		e.metrics.Inc(MetricValidateAccessSuccess)
		payload := res.Payload
		return AccessValidation{Valid: true, Code: CodeOK, Payload: &payload}
	case flows.FailureMissingInput:
		e.metrics.Inc(MetricValidateAccessFailure)
		e.log.debug("validateAccessToken: access token missing")
		return AccessValidation{Code: CodeAccessTokenMissing}
	default:
		e.metrics.Inc(MetricValidateAccessFailure)
		e.log.debug("validateAccessToken: access token is invalid")
		return AccessValidation{Code: CodeAccessTokenInvalid}
	}
}

// ValidateEmail runs the validateEmail hook.
func (e *Engine) ValidateEmail(ctx context.Context, email string) (bool, error) {
	return e.deps.ValidateEmail(ctx, email)
}

// ValidatePassword runs the validatePassword hook with the configured rule.
func (e *Engine) ValidatePassword(ctx context.Context, password string) (bool, error) {
	return e.deps.ValidatePassword(ctx, password, e.config.PasswordRules, e.config.PasswordRule)
}

// Config returns a copy of the resolved configuration.
func (e *Engine) Config() Config {
	return cloneConfig(e.config)
}

// RouteState returns the configured state of flow.
func (e *Engine) RouteState(flow Flow) RouteState {
	return e.config.Routes.State(flow)
}

// MetricsSnapshot returns the current counters. It is empty when metrics
// are disabled.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return emptySnapshot()
	}
	return e.metrics.Snapshot()
}

// AuditDropped returns the number of audit events dropped under backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// Close flushes pending audit events. The engine must not be used after.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}
